package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fedit/internal/logging"
	"fedit/internal/models"
	"fedit/internal/utils"

	"github.com/stretchr/testify/assert"
)

// brokenStore fails every call with a backend error.
type brokenStore struct{}

var errBackend = errors.New("redis: connection refused")

func (brokenStore) ListPosts(context.Context) ([]*models.Post, error) { return nil, errBackend }
func (brokenStore) CreatePost(context.Context, models.NewPost) (*models.Post, error) {
	return nil, errBackend
}
func (brokenStore) Vote(context.Context, int64, models.VoteDelta) (*models.Post, bool, error) {
	return nil, false, utils.NewDatabaseError("Failed to read fedit_posts", errBackend)
}
func (brokenStore) Login(context.Context, string, string) (*models.Session, error) {
	return nil, errBackend
}
func (brokenStore) Register(context.Context, string, string, string) (*models.Session, error) {
	return nil, errBackend
}
func (brokenStore) Logout(context.Context) error { return errBackend }
func (brokenStore) GetSession(context.Context) (*models.Session, bool, error) {
	return nil, false, errBackend
}
func (brokenStore) Counts(context.Context) (int, int, error) { return 0, 0, errBackend }

// sessionStore answers session lookups with a fixed session (nil means
// logged out) and records whether a post operation reached it.
type sessionStore struct {
	brokenStore
	session *models.Session
	calls   int
}

func (s *sessionStore) GetSession(context.Context) (*models.Session, bool, error) {
	return s.session, s.session != nil, nil
}

func (s *sessionStore) Vote(_ context.Context, id int64, delta models.VoteDelta) (*models.Post, bool, error) {
	s.calls++
	return &models.Post{ID: id, Score: int(delta)}, true, nil
}

func (s *sessionStore) CreatePost(_ context.Context, p models.NewPost) (*models.Post, error) {
	s.calls++
	return &models.Post{ID: 7, Title: p.Title, Author: p.Author}, nil
}

func TestBackendFailuresBecome500(t *testing.T) {
	server := NewServer(brokenStore{}, utils.NewMetricsCollector(), logging.Discard())
	router := server.Router()

	cases := []struct{ method, path, body string }{
		{"GET", "/posts", ""},
		{"POST", "/posts/1/vote", `{"delta":1}`},
		{"POST", "/logout", ""},
		{"GET", "/session", ""},
		{"GET", "/health", ""},
		{"POST", "/posts", `{"title":"x"}`},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body)))
		assert.Equal(t, http.StatusInternalServerError, w.Code, tc.path)
		assert.NotContains(t, w.Body.String(), "connection refused", "backend detail must not leak on %s", tc.path)
	}
}

func TestMalformedBodies(t *testing.T) {
	server := NewServer(brokenStore{}, utils.NewMetricsCollector(), logging.Discard())
	router := server.Router()

	for _, path := range []string{"/login", "/register"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("POST", path, strings.NewReader("{")))
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}

	store := &sessionStore{session: &models.Session{Username: "dev_guru", ID: 1}}
	w := httptest.NewRecorder()
	NewServer(store, utils.NewMetricsCollector(), logging.Discard()).Router().
		ServeHTTP(w, httptest.NewRequest("POST", "/posts/1/vote", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, store.calls)
}

func TestWritesRequireSession(t *testing.T) {
	cases := []struct{ path, body string }{
		{"/posts/1/vote", `{"delta":1}`},
		{"/posts", `{"title":"x"}`},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			anonymous := &sessionStore{}
			w := httptest.NewRecorder()
			NewServer(anonymous, utils.NewMetricsCollector(), logging.Discard()).Router().
				ServeHTTP(w, httptest.NewRequest("POST", tc.path, strings.NewReader(tc.body)))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Zero(t, anonymous.calls, "the store must not be touched without a session")

			loggedIn := &sessionStore{session: &models.Session{Username: "dev_guru", ID: 1}}
			w = httptest.NewRecorder()
			NewServer(loggedIn, utils.NewMetricsCollector(), logging.Discard()).Router().
				ServeHTTP(w, httptest.NewRequest("POST", tc.path, strings.NewReader(tc.body)))
			assert.Less(t, w.Code, 300)
			assert.Equal(t, 1, loggedIn.calls)
		})
	}
}

func TestMetricsRouteCanBeDisabled(t *testing.T) {
	server := NewServer(brokenStore{}, utils.NewMetricsCollector(), logging.Discard())
	server.MetricsEnabled = false

	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
