// Package api provides HTTP handlers for the assistant API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vidplan/assistant/internal/core/domain"
	"github.com/vidplan/assistant/internal/shell/store"
)

// Version is the API version reported by the root endpoint.
const Version = "1.0.0"

// WorkspaceHeader carries the active workspace ID on scoped requests.
const WorkspaceHeader = "X-Workspace-Id"

// =============================================================================
// Handler
// =============================================================================

// Handler provides HTTP handlers for the API.
type Handler struct {
	store      store.Store
	logger     *slog.Logger
	corsOrigin string
}

// NewHandler creates a new API handler. corsOrigin is the frontend origin
// allowed to call the API; empty disables CORS headers.
func NewHandler(s store.Store, l *slog.Logger, corsOrigin string) *Handler {
	if l == nil {
		l = slog.Default()
	}
	return &Handler{
		store:      s,
		logger:     l,
		corsOrigin: corsOrigin,
	}
}

// Routes returns the router with all routes configured.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.cors)
	r.Use(h.jsonContentType)
	r.Use(h.requestIDHeader)

	r.Get("/", h.handleRoot)
	r.Get("/api/health", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/workspaces", func(r chi.Router) {
			r.Post("/", h.handleCreateWorkspace)
			r.Get("/", h.handleListWorkspaces)
			r.Get("/{id}", h.handleGetWorkspace)
			r.Put("/{id}", h.handleUpdateWorkspace)
			r.Delete("/{id}", h.handleDeleteWorkspace)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", h.handleCreateProject)
			r.Get("/", h.handleListProjects)
			r.Get("/{id}", h.handleGetProject)
			r.Put("/{id}", h.handleUpdateProject)
			r.Delete("/{id}", h.handleDeleteProject)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Post("/", h.handleCreateTemplate)
			r.Get("/", h.handleListTemplates)
			r.Get("/{id}", h.handleGetTemplate)
			r.Put("/{id}", h.handleUpdateTemplate)
			r.Delete("/{id}", h.handleDeleteTemplate)
		})
	})

	return r
}

// =============================================================================
// Middleware
// =============================================================================

// jsonContentType sets Content-Type header to application/json.
func (h *Handler) jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// requestIDHeader copies the request ID to the response header.
func (h *Handler) requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			w.Header().Set("X-Request-ID", reqID)
		}
		next.ServeHTTP(w, r)
	})
}

// cors allows the configured frontend origin.
func (h *Handler) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.corsOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", h.corsOrigin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+WorkspaceHeader)
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Info Handlers
// =============================================================================

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, RootResponse{
		Message: "YouTube Assistant API",
		Version: Version,
		Status:  "running",
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

// =============================================================================
// Response Helpers
// =============================================================================

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, detail string) {
	h.writeJSON(w, status, ErrorResponse{Detail: detail})
}

// =============================================================================
// Request Helpers
// =============================================================================

// idParam parses the {id} path parameter.
func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// headerWorkspace returns the workspace ID from the X-Workspace-Id header, if
// present. An unparseable value is reported as an error.
func headerWorkspace(r *http.Request) (int64, bool, error) {
	raw := r.Header.Get(WorkspaceHeader)
	if raw == "" {
		return 0, false, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// scopedWorkspace resolves the workspace for list-style endpoints: the header
// value when present, the default workspace otherwise.
func scopedWorkspace(r *http.Request) (int64, error) {
	id, ok, err := headerWorkspace(r)
	if err != nil {
		return 0, err
	}
	if !ok {
		return domain.DefaultWorkspaceID, nil
	}
	return id, nil
}

// isNotFound checks if an error is a not found error.
func isNotFound(err error) bool {
	var storeErr *store.StoreError
	if errors.As(err, &storeErr) {
		return errors.Is(storeErr.Unwrap(), store.ErrNotFound)
	}
	return false
}

// isDuplicate checks if an error is a uniqueness violation.
func isDuplicate(err error) bool {
	var storeErr *store.StoreError
	if errors.As(err, &storeErr) {
		return errors.Is(storeErr.Unwrap(), store.ErrDuplicate)
	}
	return false
}
