package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/thankstars/pkg/cache"
	"github.com/matzehuels/thankstars/pkg/observability"
)

// Client provides shared HTTP functionality for the registry and GitHub API
// clients. It handles response caching, retries, hooks and default headers.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	prefix  string
	ttl     time.Duration
	headers map[string]string
	retry   cache.RetryPolicy
}

// NewClient creates a Client that stores cached responses in backend under
// keys starting with prefix, each kept for ttl. A nil backend disables
// caching. Headers are applied to all requests made through this client;
// pass nil if no default headers are needed.
func NewClient(backend cache.Cache, prefix string, ttl time.Duration, headers map[string]string) *Client {
	return &Client{
		http:    NewHTTPClient(),
		cache:   cache.NewScoped(backend, prefix),
		prefix:  prefix,
		ttl:     ttl,
		headers: headers,
		retry:   cache.DefaultRetryPolicy,
	}
}

// SetRetryPolicy replaces the policy used for transient failures.
func (c *Client) SetRetryPolicy(p cache.RetryPolicy) { c.retry = p }

// SetHTTPClient replaces the underlying *http.Client.
func (c *Client) SetHTTPClient(h *http.Client) {
	if h != nil {
		c.http = h
	}
}

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// The fetch function should populate v; on success, v is stored in the cache.
// Fetch is retried according to the client's retry policy.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	kind := strings.TrimSuffix(c.prefix, ":")
	hooks := observability.Cache()

	if !refresh {
		if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			if json.Unmarshal(data, v) == nil {
				hooks.OnCacheHit(ctx, kind)
				return nil
			}
		}
		hooks.OnCacheMiss(ctx, kind)
	}

	if err := c.retry.Do(ctx, fetch); err != nil {
		return err
	}

	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, key, data, c.ttl) == nil {
			hooks.OnCacheSet(ctx, kind, len(data))
		}
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
// It uses the client's default headers. Callers wanting retries wrap the
// call in [Client.Cached].
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	body, err := c.do(ctx, http.MethodGet, url, headers, nil)
	if err != nil {
		return err
	}
	defer body.Close()
	return json.NewDecoder(body).Decode(v)
}

// GetText performs an HTTP GET request and returns the response body as a string.
// Useful for non-JSON endpoints such as .cabal files, POMs and HTML pages.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	body, err := c.do(ctx, http.MethodGet, url, nil, nil)
	if err != nil {
		return "", err
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	return string(data), err
}

// Send performs a request with an optional JSON body and decodes a JSON
// response into out when out is non-nil and the response has a body.
// Transient failures are retried; the request body is replayed on each attempt.
func (c *Client) Send(ctx context.Context, method, url string, headers map[string]string, in, out any) error {
	var payload []byte
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = data
	}

	return c.retry.Do(ctx, func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		body, err := c.do(ctx, method, url, headers, reader)
		if err != nil {
			return err
		}
		defer body.Close()

		data, err := io.ReadAll(body)
		if err != nil {
			return cache.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
		}
		if out == nil || len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		return json.Unmarshal(data, out)
	})
}

func (c *Client) do(ctx context.Context, method, url string, headers map[string]string, body io.Reader) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, host, path, err)
		return nil, cache.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	hooks.OnResponse(ctx, method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		var se *StatusError
		if errors.As(err, &se) {
			se.Method, se.URL, se.Body = method, url, strings.TrimSpace(string(snippet))
		}
		return nil, err
	}
	return resp.Body, nil
}

const maxErrorBody = 4 << 10

// StatusError reports an unexpected HTTP status. It unwraps to [ErrNotFound]
// for 404 responses and to [ErrNetwork] otherwise.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("status %d", e.Code)
	if e.Method != "" {
		msg = fmt.Sprintf("%s %s: %s", e.Method, e.URL, msg)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusNotFound {
		return ErrNotFound
	}
	return ErrNetwork
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300, code == http.StatusNotModified:
		return nil
	case code >= 500:
		return cache.Retryable(&StatusError{Code: code})
	default:
		return &StatusError{Code: code}
	}
}
