package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/mx42/stargazer/cfg"
	"github.com/mx42/stargazer/internal/githubapi"
	"github.com/mx42/stargazer/internal/neighbors"
	"github.com/mx42/stargazer/pkg/log"
)

// Owner, repo and user names accepted in the URL
var namePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Service is what the handler needs from the api facade.
type Service interface {
	GetStarNeighbors(ctx context.Context, owner, repo, token string) ([]neighbors.Neighbor, error)
	Ping() error
}

// Handler maps HTTP requests onto star-neighbour queries.
type Handler struct {
	Logger  log.Logger
	Config  *cfg.Config
	Service Service
}

func NewHandler(logger log.Logger, config *cfg.Config, service Service) (*Handler, error) {
	return &Handler{
		Logger:  logger,
		Config:  config,
		Service: service,
	}, nil
}

// RegisterRoutes sets up the HTTP routes
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /repos/{owner}/{repo}/starneighbours", h.getStarNeighbours)
	mux.HandleFunc("GET /healthz", h.getHealth)
}

type errorResponse struct {
	Message string `json:"message"`
}

// getStarNeighbours handles GET /repos/{owner}/{repo}/starneighbours.
// Status codes: 400 invalid owner or repo name, 401 invalid credentials,
// 404 repository or user missing upstream, 500 anything else (including a
// partially failed batch round; cached data is kept either way).
func (h *Handler) getStarNeighbours(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")
	repo := r.PathValue("repo")

	if !namePattern.MatchString(owner) {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid username, should only contain letters, numbers, _, - and ."})
		return
	}
	if !namePattern.MatchString(repo) {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid repository, should only contain letters, numbers, _, - and ."})
		return
	}

	// Optional per-request token override
	token := r.URL.Query().Get("gh_token")

	result, err := h.Service.GetStarNeighbors(r.Context(), owner, repo, token)
	if err != nil {
		switch {
		case errors.Is(err, githubapi.ErrInvalidCredentials):
			h.writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "Invalid credentials"})
		case errors.Is(err, githubapi.ErrNotFound):
			h.writeJSON(w, http.StatusNotFound, errorResponse{Message: "Repository or user not found"})
		default:
			h.Logger.Error(r.Context(), "Star neighbour query for %s/%s failed: %v", owner, repo, err)
			h.writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Unexpected error"})
		}
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Ping(); err != nil {
		h.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Message: "Database not reachable"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Logger.Error(context.Background(), "Failed to encode response: %v", err)
	}
}
