package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/akmalmuhammed/hifzer-backend/internal/authadapter"
	"github.com/akmalmuhammed/hifzer-backend/internal/httpserver"
	"github.com/akmalmuhammed/hifzer-backend/pkg/dailysession"
	"github.com/akmalmuhammed/hifzer-backend/pkg/queue"
	"github.com/akmalmuhammed/hifzer-backend/pkg/review"
	"github.com/akmalmuhammed/hifzer-backend/pkg/user"
)

// UserGetter reads the current user row. *user.Store satisfies this.
type UserGetter interface {
	Get(ctx context.Context, id uuid.UUID) (user.User, error)
}

// Handler serves the session protocol endpoints.
type Handler struct {
	logger       *slog.Logger
	service      *Service
	runs         *Store
	users        UserGetter
	queueHandler *queue.Handler
	rollup       *dailysession.Service
}

// NewHandler creates a session Handler.
func NewHandler(logger *slog.Logger, service *Service, runs *Store, users UserGetter, queueHandler *queue.Handler, rollup *dailysession.Service) *Handler {
	return &Handler{logger: logger, service: service, runs: runs, users: users, queueHandler: queueHandler, rollup: rollup}
}

// Routes returns a chi.Router with the session routes mounted.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/start", h.handleStart)
	r.Post("/step-complete", h.handleStepComplete)
	r.Post("/complete", h.handleComplete)
	return r
}

type startRequest struct {
	ClientSessionID *uuid.UUID `json:"client_session_id,omitempty"`
	Mode            string     `json:"mode,omitempty" validate:"omitempty,oneof=NORMAL CONSOLIDATION REVIEW_ONLY"`
	WarmupPassed    *bool      `json:"warmup_passed,omitempty"`
}

type startResponse struct {
	SessionID    uuid.UUID `json:"session_id"`
	Mode         string    `json:"mode"`
	WarmupPassed bool      `json:"warmup_passed"`
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}

	identity := authadapter.FromContext(r.Context())
	if identity == nil {
		httpserver.RespondError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
		return
	}

	u, err := h.users.Get(r.Context(), identity.UserID)
	if err != nil {
		h.logger.Error("reading user", "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to read user")
		return
	}
	if u.RequiresPreHifz || !u.FluencyGatePassed {
		httpserver.RespondError(w, http.StatusForbidden, "fluency_gate_blocked", "complete the fluency gate before starting a session")
		return
	}

	now := time.Now().UTC()
	mode := req.Mode
	warmupPassed := true
	if mode == "" || req.WarmupPassed == nil {
		q, err := queue.Build(r.Context(), h.queueHandler, identity.UserID, now)
		if err != nil {
			h.logger.Error("building today queue for session start", "error", err)
			httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to derive session mode")
			return
		}
		if mode == "" {
			mode = string(q.Mode)
		}
		warmupPassed = q.Warmup.Status != queue.WarmupFailed
	}
	if req.WarmupPassed != nil {
		warmupPassed = *req.WarmupPassed
	}

	run, _, err := h.runs.Start(r.Context(), identity.UserID, req.ClientSessionID, mode, warmupPassed, now)
	if err != nil {
		h.logger.Error("starting session", "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to start session")
		return
	}

	httpserver.Respond(w, http.StatusCreated, startResponse{
		SessionID:    run.ID,
		Mode:         run.Mode,
		WarmupPassed: run.WarmupPassed,
	})
}

type stepCompleteRequest struct {
	SessionRunID    uuid.UUID        `json:"session_run_id" validate:"required"`
	AyahID          int              `json:"ayah_id" validate:"required"`
	StepType        review.StepType  `json:"step_type" validate:"required,oneof=EXPOSURE GUIDED BLIND LINK"`
	AttemptNumber   int              `json:"attempt_number" validate:"gte=1,lte=3"`
	ScaffoldingUsed string           `json:"scaffolding_used"`
	LinkedAyahID    *int             `json:"linked_ayah_id,omitempty"`
	Success         bool             `json:"success"`
	ErrorsCount     int              `json:"errors_count" validate:"gte=0"`
	DurationSeconds int              `json:"duration_seconds" validate:"gte=0"`
}

type stepCompleteResponse struct {
	Recorded     bool   `json:"recorded"`
	NextStep     string `json:"next_step,omitempty"`
	NextAttempt  int    `json:"next_attempt,omitempty"`
	StepStatus   string `json:"step_status,omitempty"`
	ProtocolDone bool   `json:"protocol_done"`
}

func (h *Handler) handleStepComplete(w http.ResponseWriter, r *http.Request) {
	var req stepCompleteRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}

	identity := authadapter.FromContext(r.Context())
	if identity == nil {
		httpserver.RespondError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
		return
	}

	u, err := h.users.Get(r.Context(), identity.UserID)
	if err != nil {
		h.logger.Error("reading user", "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to read user")
		return
	}

	sub := StepSubmission{
		SessionRunID:    req.SessionRunID,
		AyahID:          req.AyahID,
		StepType:        req.StepType,
		AttemptNumber:   req.AttemptNumber,
		ScaffoldingUsed: req.ScaffoldingUsed,
		LinkedAyahID:    req.LinkedAyahID,
		Success:         req.Success,
		ErrorsCount:     req.ErrorsCount,
		DurationSeconds: req.DurationSeconds,
	}

	result, err := h.service.SubmitStep(r.Context(), sub, identity.UserID, ScaffoldingLevelName(u.ScaffoldingLevel), time.Now().UTC())
	if err != nil {
		var invalid ErrInvalidStepSequence
		if errors.As(err, &invalid) {
			httpserver.Respond(w, http.StatusConflict, stepCompleteResponse{
				Recorded:     false,
				NextStep:     string(result.NextStep),
				NextAttempt:  result.NextAttempt,
				ProtocolDone: result.ProtocolDone,
			})
			return
		}
		h.logger.Error("submitting session step", "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to submit step")
		return
	}

	httpserver.Respond(w, http.StatusOK, stepCompleteResponse{
		Recorded:     result.Recorded,
		NextStep:     string(result.NextStep),
		NextAttempt:  result.NextAttempt,
		StepStatus:   string(result.StepStatus),
		ProtocolDone: result.ProtocolDone,
	})
}

type completeRequest struct {
	SessionID uuid.UUID `json:"session_id" validate:"required"`
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}

	agg, err := h.rollup.Complete(r.Context(), req.SessionID, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, dailysession.ErrSessionNotActive):
			httpserver.RespondError(w, http.StatusNotFound, "not_found", "session is not active")
		case errors.Is(err, dailysession.ErrFluencyGateBlocked):
			httpserver.RespondError(w, http.StatusConflict, "fluency_gate_blocked", "user became fluency-gate blocked during this session")
		default:
			h.logger.Error("completing session", "error", err)
			httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to complete session")
		}
		return
	}

	httpserver.Respond(w, http.StatusOK, agg)
}
