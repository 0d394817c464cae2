// Package httpapi exposes the achievement pipeline over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Lllllllleong/achievementflow/internal/models"
	"github.com/Lllllllleong/achievementflow/internal/view"
)

// multipartMemory is how much of a multipart body is buffered in memory
// before spilling file parts to disk.
const multipartMemory = 8 << 20

// Handler serves the achievements endpoints.
type Handler struct {
	pipeline       view.Pipeline
	maxUploadBytes int64
}

// NewHandler returns a Handler over p. maxUploadBytes bounds a submission body.
func NewHandler(p view.Pipeline, maxUploadBytes int64) *Handler {
	return &Handler{pipeline: p, maxUploadBytes: maxUploadBytes}
}

// NewRouter mounts the endpoints at both "/" and "/achievements" so the same
// handler works behind a function URL or a path-routed gateway.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	routes := func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.submit)
	}
	r.Route("/achievements", routes)
	r.Group(routes)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err, "requestId", middleware.GetReqID(r.Context()))
	}
}

// writeError maps the pipeline's error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := classify(err)
	writeJSON(w, r, status, models.ErrorResponse{Status: "error", Kind: kind, Error: err.Error()})
}

func classify(err error) (int, string) {
	var (
		vErr *models.ValidationError
		uErr *models.UploadError
		wErr *models.WriteError
		rErr *models.ReadError
		mErr *http.MaxBytesError
	)
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, "validation"
	case errors.As(err, &mErr):
		return http.StatusRequestEntityTooLarge, "validation"
	case errors.As(err, &uErr):
		return http.StatusBadGateway, "upload"
	case errors.As(err, &wErr):
		return http.StatusBadGateway, "write"
	case errors.As(err, &rErr):
		return http.StatusServiceUnavailable, "read"
	case errors.Is(err, view.ErrSubmitInFlight):
		return http.StatusConflict, "busy"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
