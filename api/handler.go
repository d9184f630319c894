// Package api exposes conversation sessions over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	orchestratorx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/agents/orchestrator"
	statex "github.com/tanpawarit/Chative-Banking-Dialogue/agent/state"
)

const maxBodyBytes = 64 << 10

// SessionService is the orchestrator surface the handlers need.
type SessionService interface {
	Start(ctx context.Context) (orchestratorx.TurnResult, error)
	HandleMessage(ctx context.Context, sessionID string, text string) (orchestratorx.TurnResult, error)
	Session(ctx context.Context, sessionID string) (*statex.Session, error)
	Reset(ctx context.Context, sessionID string) error
}

type Handler struct {
	sessions SessionService
	validate *validator.Validate
}

func NewHandler(sessions SessionService) *Handler {
	return &Handler{
		sessions: sessions,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

type messageRequest struct {
	Text string `json:"text" validate:"max=2000"`
}

// RegisterRoutes registers the session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)
			r.Post("/messages", h.PostMessage)
		})
	})
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	result, err := h.sessions.Start(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, result)
}

func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		Error(w, http.StatusBadRequest, "text must be at most 2000 characters")
		return
	}

	result, err := h.sessions.HandleMessage(r.Context(), chi.URLParam(r, "sessionID"), req.Text)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, result)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	st, err := h.sessions.Session(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, st)
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Reset(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response failed")
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, orchestratorx.ErrSessionEnded):
		Error(w, http.StatusGone, err.Error())
	case errors.Is(err, orchestratorx.ErrSessionNotFound):
		Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, orchestratorx.ErrInvalidSession), errors.Is(err, orchestratorx.ErrInvalidMessage):
		Error(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("session request failed")
		Error(w, http.StatusInternalServerError, "internal error")
	}
}
