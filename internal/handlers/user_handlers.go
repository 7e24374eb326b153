package handlers

import (
	"encoding/json"
	"net/http"

	"fedit/internal/utils"
)

// RegisterUserRequest represents a request to register a new user
type RegisterUserRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// LoginRequest represents a request to log in a user
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleUserRegistration registers and logs in a new user
func (s *Server) HandleUserRegistration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		if req.Password != req.ConfirmPassword {
			s.writeError(w, r, utils.NewInvalidInputError("passwords do not match"))
			return
		}

		session, err := s.Store.Register(r.Context(), req.Username, req.Email, req.Password)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.Logger.Info("HTTP Handler: registered user", "username", session.Username)
		s.writeJSON(w, http.StatusOK, session)
	}
}

// HandleUserLogin handles requests to log in a user
func (s *Server) HandleUserLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		session, err := s.Store.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, session)
	}
}

// HandleUserLogout clears the session whether or not one exists
func (s *Server) HandleUserLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Store.Logout(r.Context()); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleSession returns the active session or null
func (s *Server) HandleSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok, err := s.Store.GetSession(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if !ok {
			s.writeJSON(w, http.StatusOK, nil)
			return
		}
		s.writeJSON(w, http.StatusOK, session)
	}
}
