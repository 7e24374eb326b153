package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fedit/internal/middleware"
	"fedit/internal/models"
	"fedit/internal/utils"

	"github.com/gorilla/mux"
)

// CreatePostRequest represents a request to create a new post. The author
// comes from the active session, not the body.
type CreatePostRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Community string `json:"community"`
}

// VoteRequest represents a request to vote on a post
type VoteRequest struct {
	Delta int `json:"delta"`
}

// HandleHealth handles health check requests
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postCount, userCount, err := s.Store.Counts(r.Context())
		if err != nil {
			http.Error(w, "Failed to get counts", http.StatusInternalServerError)
			return
		}

		response := fmt.Sprintf("FEDIT Status:\n"+
			"- Total Posts: %d\n"+
			"- Total Users: %d\n"+
			"- Uptime: %s\n",
			postCount,
			userCount,
			s.Metrics.Uptime().Truncate(time.Second),
		)

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, response)
	}
}

// HandleListPosts returns the whole feed, newest first
func (s *Server) HandleListPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := s.Store.ListPosts(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, posts)
	}
}

// HandleCreatePost creates a post authored by the logged-in user
func (s *Server) HandleCreatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := middleware.GetSessionFromContext(r.Context())
		if !ok {
			s.writeError(w, r, utils.NewUnauthorizedError("login required"))
			return
		}

		var req CreatePostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request format", http.StatusBadRequest)
			return
		}

		post, err := s.Store.CreatePost(r.Context(), models.NewPost{
			Title:     req.Title,
			Content:   req.Content,
			Author:    session.Username,
			Community: req.Community,
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, post)
	}
}

// HandleVote applies an up or down vote to a post
func (s *Server) HandleVote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			http.Error(w, "Invalid post ID format", http.StatusBadRequest)
			return
		}

		var req VoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request format", http.StatusBadRequest)
			return
		}

		post, found, err := s.Store.Vote(r.Context(), postID, models.VoteDelta(req.Delta))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if !found {
			s.writeError(w, r, utils.NewAppError(utils.ErrNotFound, "Post not found", nil))
			return
		}
		s.writeJSON(w, http.StatusOK, post)
	}
}
