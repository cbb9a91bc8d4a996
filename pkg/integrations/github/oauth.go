package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultScopes are requested by device login. Starring public repositories
// needs public_repo.
var DefaultScopes = []string{"public_repo", "read:user"}

// Device-flow polling outcomes reported by GitHub in the "error" field.
var (
	ErrAuthorizationPending = errors.New("authorization_pending")
	ErrSlowDown             = errors.New("slow_down")
	ErrExpiredToken         = errors.New("expired_token")
	ErrAccessDenied         = errors.New("access_denied")
)

// OAuthClient handles the GitHub OAuth device flow.
type OAuthClient struct {
	config     OAuthConfig
	httpClient *http.Client
	minPoll    time.Duration
}

// NewOAuthClient creates a new OAuth client.
func NewOAuthClient(config OAuthConfig) *OAuthClient {
	if config.BaseURL == "" {
		config.BaseURL = "https://github.com"
	}
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	if len(config.Scopes) == 0 {
		config.Scopes = DefaultScopes
	}
	return &OAuthClient{
		config:     config,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		minPoll:    5 * time.Second,
	}
}

// RequestDeviceCode initiates the device authorization flow.
// The user must visit the VerificationURI and enter the UserCode.
func (c *OAuthClient) RequestDeviceCode(ctx context.Context) (*DeviceCodeResponse, error) {
	if c.config.ClientID == "" {
		return nil, errors.New("device login requires an OAuth app client ID")
	}
	data := url.Values{
		"client_id": {c.config.ClientID},
		"scope":     {strings.Join(c.config.Scopes, " ")},
	}

	var result DeviceCodeResponse
	if err := c.post(ctx, "/login/device/code", data, &result); err != nil {
		return nil, err
	}
	if result.DeviceCode == "" {
		return nil, errors.New("device code missing from response")
	}
	return &result, nil
}

// PollForToken polls GitHub for the access token after user authorization.
// It respects the interval from the device code response and backs off
// when GitHub answers slow_down. Returns the token when authorized, or an
// error if the code expired or the user denied access.
func (c *OAuthClient) PollForToken(ctx context.Context, deviceCode string, interval int) (*OAuthToken, error) {
	wait := time.Duration(interval) * time.Second
	if wait < c.minPoll {
		wait = c.minPoll
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			token, err := c.checkDeviceToken(ctx, deviceCode)
			switch {
			case errors.Is(err, ErrAuthorizationPending):
			case errors.Is(err, ErrSlowDown):
				wait += 5 * time.Second
			case err != nil:
				return nil, err
			default:
				return token, nil
			}
			timer.Reset(wait)
		}
	}
}

// checkDeviceToken attempts to exchange the device code for a token.
func (c *OAuthClient) checkDeviceToken(ctx context.Context, deviceCode string) (*OAuthToken, error) {
	data := url.Values{
		"client_id":   {c.config.ClientID},
		"device_code": {deviceCode},
		"grant_type":  {"urn:ietf:params:oauth:grant-type:device_code"},
	}

	var result struct {
		OAuthToken
		Error     string `json:"error"`
		ErrorDesc string `json:"error_description"`
	}
	if err := c.post(ctx, "/login/oauth/access_token", data, &result); err != nil {
		return nil, err
	}

	if result.Error != "" {
		for _, known := range []error{ErrAuthorizationPending, ErrSlowDown, ErrExpiredToken, ErrAccessDenied} {
			if result.Error == known.Error() {
				return nil, fmt.Errorf("%w: %s", known, result.ErrorDesc)
			}
		}
		return nil, fmt.Errorf("%s: %s", result.Error, result.ErrorDesc)
	}
	return &result.OAuthToken, nil
}

func (c *OAuthClient) post(ctx context.Context, path string, data url.Values, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, Body: resp.Status}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
