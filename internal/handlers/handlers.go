package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"fedit/internal/middleware"
	"fedit/internal/models"
	"fedit/internal/utils"

	"github.com/gorilla/mux"
)

// Store is the store API the HTTP layer drives.
type Store interface {
	ListPosts(ctx context.Context) ([]*models.Post, error)
	CreatePost(ctx context.Context, post models.NewPost) (*models.Post, error)
	Vote(ctx context.Context, postID int64, delta models.VoteDelta) (*models.Post, bool, error)
	Login(ctx context.Context, username, password string) (*models.Session, error)
	Register(ctx context.Context, username, email, password string) (*models.Session, error)
	Logout(ctx context.Context) error
	GetSession(ctx context.Context) (*models.Session, bool, error)
	Counts(ctx context.Context) (posts int, users int, err error)
}

// Server holds all server dependencies
type Server struct {
	Store          Store
	Metrics        *utils.MetricsCollector
	Logger         *slog.Logger
	AllowedOrigins []string
	MetricsEnabled bool
}

// NewServer creates a new Server instance with the given components
func NewServer(store Store, metrics *utils.MetricsCollector, logger *slog.Logger) *Server {
	return &Server{
		Store:          store,
		Metrics:        metrics,
		Logger:         logger,
		AllowedOrigins: []string{"*"},
		MetricsEnabled: true,
	}
}

// Router registers every route and wraps the result in CORS handling.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.HandleHealth()).Methods(http.MethodGet)

	r.HandleFunc("/posts", s.HandleListPosts()).Methods(http.MethodGet)
	r.Handle("/posts", middleware.RequireSession(s.Store, s.Logger)(s.HandleCreatePost())).Methods(http.MethodPost)
	r.Handle("/posts/{id:[0-9]+}/vote", middleware.RequireSession(s.Store, s.Logger)(s.HandleVote())).Methods(http.MethodPost)

	r.HandleFunc("/register", s.HandleUserRegistration()).Methods(http.MethodPost)
	r.HandleFunc("/login", s.HandleUserLogin()).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.HandleUserLogout()).Methods(http.MethodPost)
	r.HandleFunc("/session", s.HandleSession()).Methods(http.MethodGet)

	if s.MetricsEnabled && s.Metrics != nil {
		r.Handle("/metrics", s.Metrics.Handler()).Methods(http.MethodGet)
	}

	return middleware.CORSMiddleware(middleware.DefaultCORSConfig(s.AllowedOrigins))(r)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.Logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps store errors onto HTTP statuses; anything that is not an
// AppError is reported as a 500 without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		status := utils.AppErrorToHTTPStatus(appErr.Code)
		if status >= http.StatusInternalServerError {
			s.Logger.Error("request failed", "path", r.URL.Path, "error", err)
		}
		s.writeJSON(w, status, ErrorResponse{Code: appErr.Code, Error: appErr.Message})
		return
	}

	s.Logger.Error("request failed", "path", r.URL.Path, "error", err)
	s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Code: utils.ErrDatabase, Error: "Internal server error"})
}

// ErrorResponse is the body of every non-2xx JSON answer.
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}
