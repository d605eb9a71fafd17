package reducer

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/akmalmuhammed/hifzer-backend/internal/authadapter"
	"github.com/akmalmuhammed/hifzer-backend/internal/httpserver"
	"github.com/akmalmuhammed/hifzer-backend/pkg/review"
)

// Handler serves POST /api/v1/review/event, the single entry point for
// both review and transition attempts.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler creates a reducer Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// Routes returns a chi.Router with the review event route mounted.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/event", h.handleEvent)
	return r
}

// eventRequest mirrors review.Event's wire shape. Exactly one of the
// REVIEW_ATTEMPTED or TRANSITION_ATTEMPTED field groups must be set,
// selected by Type — enforced by review.Event.Validate, not struct tags.
type eventRequest struct {
	Type            review.EventType    `json:"type" validate:"required,oneof=REVIEW_ATTEMPTED TRANSITION_ATTEMPTED"`
	SessionRunID    *uuid.UUID          `json:"session_run_id,omitempty"`
	ClientEventID   uuid.UUID           `json:"client_event_id" validate:"required"`
	SessionType     string              `json:"session_type,omitempty"`
	OccurredAt      time.Time           `json:"occurred_at" validate:"required"`

	ItemAyahID      *int                `json:"item_ayah_id,omitempty"`
	ReviewTier      *review.Tier        `json:"review_tier,omitempty"`
	StepType        *review.StepType    `json:"step_type,omitempty"`
	AttemptNumber   *int                `json:"attempt_number,omitempty"`
	ScaffoldingUsed *string             `json:"scaffolding_used,omitempty"`
	LinkedAyahID    *int                `json:"linked_ayah_id,omitempty"`
	Success         *bool               `json:"success,omitempty"`
	ErrorsCount     *int                `json:"errors_count,omitempty"`
	DurationSeconds *int                `json:"duration_seconds,omitempty"`
	ErrorTags       []string            `json:"error_tags,omitempty"`

	FromAyahID        *int  `json:"from_ayah_id,omitempty"`
	ToAyahID          *int  `json:"to_ayah_id,omitempty"`
	TransitionSuccess *bool `json:"transition_success,omitempty"`
}

type eventResponse struct {
	Deduplicated bool       `json:"deduplicated"`
	EventID      *uuid.UUID `json:"event_id,omitempty"`
}

func (h *Handler) handleEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}

	identity := authadapter.FromContext(r.Context())
	if identity == nil {
		httpserver.RespondError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
		return
	}

	now := time.Now().UTC()
	e := review.Event{
		UserID:          identity.UserID,
		Type:            req.Type,
		SessionRunID:    req.SessionRunID,
		ClientEventID:   req.ClientEventID,
		SessionType:     req.SessionType,
		OccurredAt:      req.OccurredAt,
		ReceivedAt:      now,
		ItemAyahID:      req.ItemAyahID,
		ReviewTier:      req.ReviewTier,
		StepType:        req.StepType,
		AttemptNumber:   req.AttemptNumber,
		ScaffoldingUsed: req.ScaffoldingUsed,
		LinkedAyahID:    req.LinkedAyahID,
		Success:         req.Success,
		ErrorsCount:     req.ErrorsCount,
		DurationSeconds: req.DurationSeconds,
		ErrorTags:       req.ErrorTags,

		FromAyahID:        req.FromAyahID,
		ToAyahID:          req.ToAyahID,
		TransitionSuccess: req.TransitionSuccess,
	}

	result, err := h.service.Ingest(r.Context(), e)
	if err != nil {
		if errors.Is(err, review.ErrMalformedEvent) {
			httpserver.RespondError(w, http.StatusBadRequest, "bad_request", "malformed review event")
			return
		}
		h.logger.Error("ingesting review event", "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to ingest event")
		return
	}

	resp := eventResponse{Deduplicated: result.Deduplicated}
	if !result.Deduplicated {
		resp.EventID = &result.EventID
	}
	httpserver.Respond(w, http.StatusOK, resp)
}
