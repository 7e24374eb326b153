package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fedit/internal/config"
	"fedit/internal/database"
	"fedit/internal/handlers"
	"fedit/internal/logging"
	"fedit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestIntegrationFlow(t *testing.T) {
	cfg := &config.Config{
		Server:         config.DefaultConfig(),
		Storage:        config.DefaultStorageConfig(),
		AllowedOrigins: []string{"*"},
	}
	server, fedit, err := buildServer(context.Background(), cfg, logging.Discard(), database.NewMemoryStore())
	require.NoError(t, err)
	defer fedit.Stop()
	router := server.Router()

	// Step 1: Seeded feed is visible
	w := do(t, router, "GET", "/posts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var feed []*models.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feed))
	require.Len(t, feed, 3)
	assert.Equal(t, "Just learned React and it's amazing!", feed[0].Title)

	// Step 2: Nobody is logged in, so posting is refused
	w = do(t, router, "GET", "/session", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", strings.TrimSpace(w.Body.String()))

	w = do(t, router, "POST", "/posts", handlers.CreatePostRequest{Title: "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, "POST", "/posts/1/vote", handlers.VoteRequest{Delta: 1})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, "GET", "/posts", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feed))
	for _, post := range feed {
		if post.ID == 1 {
			assert.Equal(t, 42, post.Score, "an anonymous vote must not change the score")
		}
	}

	// Step 3: Registration checks the confirmation and duplicates
	w = do(t, router, "POST", "/register", handlers.RegisterUserRequest{
		Username: "user1", Email: "user1@example.com", Password: "pw1", ConfirmPassword: "pw2",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, "POST", "/register", handlers.RegisterUserRequest{
		Username: "dev_guru", Email: "new@example.com", Password: "pw", ConfirmPassword: "pw",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	var errBody handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errBody))
	assert.Equal(t, "USER_ALREADY_EXISTS", errBody.Code)

	w = do(t, router, "POST", "/register", handlers.RegisterUserRequest{
		Username: "user1", Email: "user1@example.com", Password: "pw1", ConfirmPassword: "pw1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var session models.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.Equal(t, "user1", session.Username)

	// Step 4: Create a post as the registered user
	w = do(t, router, "POST", "/posts", handlers.CreatePostRequest{
		Title: "Test Post", Content: "This is a test post", Community: "golang",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "user1", created.Author)
	assert.Equal(t, 0, created.Score)

	// Step 5: Vote it up twice and down once
	votePath := "/posts/" + jsonNumber(created.ID) + "/vote"
	for _, delta := range []int{1, 1, -1} {
		w = do(t, router, "POST", votePath, handlers.VoteRequest{Delta: delta})
		require.Equal(t, http.StatusOK, w.Code)
	}
	var voted models.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &voted))
	assert.Equal(t, 1, voted.Score)

	w = do(t, router, "POST", "/posts/999/vote", handlers.VoteRequest{Delta: 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, "POST", votePath, handlers.VoteRequest{Delta: 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Step 6: New post leads the feed
	w = do(t, router, "GET", "/posts", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feed))
	require.Len(t, feed, 4)
	assert.Equal(t, created.ID, feed[0].ID)

	// Step 7: Logout, then log back in with the seeded account
	w = do(t, router, "POST", "/logout", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, router, "POST", "/login", handlers.LoginRequest{Username: "dev_guru", Password: "wrong"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, "POST", "/login", handlers.LoginRequest{Username: "dev_guru", Password: "password123"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, "GET", "/session", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.Equal(t, "dev_guru", session.Username)

	// Step 8: Health and metrics
	w = do(t, router, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Total Posts: 4")
	assert.Contains(t, w.Body.String(), "Total Users: 2")

	w = do(t, router, "GET", "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fedit_requests_total")
}

func TestEmptySessionRecordIsNotALogin(t *testing.T) {
	cfg := &config.Config{
		Server:         config.DefaultConfig(),
		Storage:        config.DefaultStorageConfig(),
		AllowedOrigins: []string{"*"},
	}
	kv := database.NewMemoryStore()
	require.NoError(t, kv.Set(context.Background(), "fedit_session", "{}"))
	server, fedit, err := buildServer(context.Background(), cfg, logging.Discard(), kv)
	require.NoError(t, err)
	defer fedit.Stop()
	router := server.Router()

	w := do(t, router, "GET", "/session", nil)
	assert.Equal(t, "null", strings.TrimSpace(w.Body.String()))

	w = do(t, router, "POST", "/posts", handlers.CreatePostRequest{Title: "ghost"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, "POST", "/posts/1/vote", handlers.VoteRequest{Delta: 1})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, router, "GET", "/posts", nil)
	var feed []*models.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feed))
	assert.Len(t, feed, 3)
}

func jsonNumber(id int64) string {
	data, _ := json.Marshal(id)
	return string(data)
}
