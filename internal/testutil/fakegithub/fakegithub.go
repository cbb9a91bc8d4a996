// Package fakegithub serves the slice of the GitHub API thankstars uses:
// the viewerHasStarred GraphQL query, PUT /user/starred/{owner}/{repo} and
// GET /user. Requests must carry the configured bearer token.
package fakegithub

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Server is an in-memory GitHub API. It is safe for concurrent use.
type Server struct {
	*httptest.Server

	Token string
	Login string

	mu      sync.Mutex
	starred map[string]bool
	queries []string
	stars   []string
	fail    map[string]int
}

// New starts a server that accepts token and closes it when t finishes.
// Repositories in starred ("owner/name") start out starred.
func New(t *testing.T, token string, starred ...string) *Server {
	t.Helper()
	s := &Server{
		Token:   token,
		Login:   "octocat",
		starred: make(map[string]bool),
		fail:    make(map[string]int),
	}
	for _, key := range starred {
		s.starred[key] = true
	}

	r := chi.NewRouter()
	r.Use(s.authenticate)
	r.Post("/graphql", s.graphql)
	r.Put("/user/starred/{owner}/{repo}", s.star)
	r.Get("/user", s.user)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// FailStar makes the next PUT for key answer with status.
func (s *Server) FailStar(key string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[key] = status
}

// Starred returns every starred repository, sorted.
func (s *Server) Starred() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.starred))
	for k := range s.starred {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Queries returns the repositories queried through GraphQL, in order.
func (s *Server) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

// Stars returns the repositories starred through PUT, in order.
func (s *Server) Stars() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.stars...)
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+s.Token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Bad credentials"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) graphql(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query     string            `json:"query"`
		Variables map[string]string `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Problems parsing JSON"})
		return
	}
	if !strings.Contains(req.Query, "viewerHasStarred") {
		writeJSON(w, http.StatusOK, map[string]any{
			"errors": []map[string]string{{"message": "unsupported query"}},
		})
		return
	}

	key := req.Variables["owner"] + "/" + req.Variables["name"]
	s.mu.Lock()
	s.queries = append(s.queries, key)
	starred := s.starred[key]
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"repository": map[string]bool{"viewerHasStarred": starred},
		},
	})
}

func (s *Server) star(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "owner") + "/" + chi.URLParam(r, "repo")

	s.mu.Lock()
	defer s.mu.Unlock()
	if status, ok := s.fail[key]; ok {
		delete(s.fail, key)
		writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
		return
	}
	s.stars = append(s.stars, key)
	if s.starred[key] {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	s.starred[key] = true
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) user(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"id": 1, "login": s.Login, "name": "The Octocat"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
