package fluencygate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/akmalmuhammed/hifzer-backend/internal/authadapter"
	"github.com/akmalmuhammed/hifzer-backend/internal/httpserver"
	"github.com/akmalmuhammed/hifzer-backend/pkg/user"
)

// UserGetter reads the current user row. *user.Store satisfies this.
type UserGetter interface {
	Get(ctx context.Context, id uuid.UUID) (user.User, error)
}

// Handler serves the fluency gate endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	tests   *Store
	users   UserGetter
}

// NewHandler creates a fluency gate Handler.
func NewHandler(logger *slog.Logger, service *Service, tests *Store, users UserGetter) *Handler {
	return &Handler{logger: logger, service: service, tests: tests, users: users}
}

// Routes returns a chi.Router with the fluency gate routes mounted.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/start", h.handleStart)
	r.Post("/submit", h.handleSubmit)
	r.Get("/status", h.handleStatus)
	return r
}

type startResponse struct {
	TestID     uuid.UUID `json:"test_id"`
	PageNumber int       `json:"page_number"`
	AyahIDs    []int     `json:"ayah_ids"`
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	identity := authadapter.FromContext(r.Context())
	if identity == nil {
		httpserver.RespondError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
		return
	}

	test, err := h.service.Start(r.Context(), identity.UserID, time.Now().UTC())
	if err != nil {
		h.logger.Error("starting fluency gate test", "error", err)
		httpserver.RespondError(w, http.StatusConflict, "corpus_not_seeded", "no candidate page available")
		return
	}

	httpserver.Respond(w, http.StatusCreated, startResponse{
		TestID:     test.ID,
		PageNumber: test.PageNumber,
		AyahIDs:    test.AyahIDs,
	})
}

type submitRequest struct {
	TestID          uuid.UUID `json:"test_id" validate:"required"`
	DurationSeconds int       `json:"duration_seconds" validate:"gte=0"`
	ErrorCount      int       `json:"error_count" validate:"gte=0"`
}

type submitResponse struct {
	Score  int  `json:"score"`
	Passed bool `json:"passed"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}

	test, err := h.service.Submit(r.Context(), req.TestID, req.DurationSeconds, req.ErrorCount, time.Now().UTC())
	if err != nil {
		if errors.Is(err, ErrTestNotSubmittable) {
			httpserver.RespondError(w, http.StatusNotFound, "not_found", "test is already terminal or does not exist")
			return
		}
		h.logger.Error("submitting fluency gate test", "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to submit test")
		return
	}

	httpserver.Respond(w, http.StatusOK, submitResponse{Score: *test.Score, Passed: test.Status == StatusPassed})
}

type statusResponse struct {
	FluencyGatePassed bool       `json:"fluency_gate_passed"`
	RequiresPreHifz   bool       `json:"requires_pre_hifz"`
	FluencyScore      *int       `json:"fluency_score,omitempty"`
	LatestTest        *Test      `json:"latest_test,omitempty"`
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
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

	resp := statusResponse{
		FluencyGatePassed: u.FluencyGatePassed,
		RequiresPreHifz:   u.RequiresPreHifz,
		FluencyScore:      u.FluencyScore,
	}

	latest, err := h.tests.GetLatestForUser(r.Context(), identity.UserID)
	switch {
	case err == nil:
		resp.LatestTest = &latest
	case errors.Is(err, pgx.ErrNoRows):
		// no test attempted yet; leave LatestTest nil.
	default:
		h.logger.Error("reading latest fluency gate test", "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to read latest test")
		return
	}

	httpserver.Respond(w, http.StatusOK, resp)
}
