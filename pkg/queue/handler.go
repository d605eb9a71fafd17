package queue

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/akmalmuhammed/hifzer-backend/internal/authadapter"
	"github.com/akmalmuhammed/hifzer-backend/internal/httpserver"
	"github.com/akmalmuhammed/hifzer-backend/pkg/dailysession"
	"github.com/akmalmuhammed/hifzer-backend/pkg/reducer"
	"github.com/akmalmuhammed/hifzer-backend/pkg/review"
	"github.com/akmalmuhammed/hifzer-backend/pkg/timeid"
	"github.com/akmalmuhammed/hifzer-backend/pkg/transition"
	"github.com/akmalmuhammed/hifzer-backend/pkg/user"
)

// ItemSource supplies every item state for a user. *reducer.Store
// satisfies this.
type ItemSource interface {
	ListAllForUser(ctx context.Context, userID uuid.UUID) ([]reducer.UserItemState, error)
}

// AttemptSource supplies today's REVIEW_ATTEMPTED events for a user.
// *review.Store satisfies this.
type AttemptSource interface {
	ListReviewAttemptedForUserSince(ctx context.Context, userID uuid.UUID, since, until time.Time) ([]review.Event, error)
}

// RetentionSource supplies the rolling seven-day retention mean.
type RetentionSource interface {
	ListRetentionScoresSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]float64, error)
}

// TransitionSource supplies weak transitions. *transition.Store satisfies
// this.
type TransitionSource interface {
	WeakTransitions(ctx context.Context, userID uuid.UUID, limit int) ([]transition.Score, error)
	CountWeakTransitions(ctx context.Context, userID uuid.UUID) (int, error)
}

// UserGetter reads the current user row. *user.Store satisfies this.
type UserGetter interface {
	Get(ctx context.Context, id uuid.UUID) (user.User, error)
}

// Handler serves GET /api/v1/queue/today.
type Handler struct {
	logger      *slog.Logger
	items       ItemSource
	attempts    AttemptSource
	retention   RetentionSource
	transitions TransitionSource
	users       UserGetter
}

// NewHandler creates a queue Handler.
func NewHandler(logger *slog.Logger, items ItemSource, attempts AttemptSource, retention RetentionSource, transitions TransitionSource, users UserGetter) *Handler {
	return &Handler{logger: logger, items: items, attempts: attempts, retention: retention, transitions: transitions, users: users}
}

// Routes returns a chi.Router with the queue routes mounted.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/today", h.handleToday)
	return r
}

// Build assembles today's TodayQueue for the given user, gathering every
// input Plan needs from the stores. Exposed so session start can reuse
// the same derivation when choosing a default mode.
func Build(ctx context.Context, h *Handler, userID uuid.UUID, now time.Time) (TodayQueue, error) {
	u, err := h.users.Get(ctx, userID)
	if err != nil {
		return TodayQueue{}, err
	}

	items, err := h.items.ListAllForUser(ctx, userID)
	if err != nil {
		return TodayQueue{}, err
	}

	dayStart := timeid.StartOfUTCDay(now)
	events, err := h.attempts.ListReviewAttemptedForUserSince(ctx, userID, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return TodayQueue{}, err
	}
	attemptsToday := make([]TodayAttempt, 0, len(events))
	for _, e := range events {
		if e.ItemAyahID == nil || e.Success == nil || e.ErrorsCount == nil {
			continue
		}
		attemptsToday = append(attemptsToday, TodayAttempt{
			ItemAyahID:  *e.ItemAyahID,
			Success:     *e.Success,
			ErrorsCount: *e.ErrorsCount,
		})
	}

	retention7d, err := dailysession.RollingRetention7d(ctx, h.retention, userID, now)
	if err != nil {
		return TodayQueue{}, err
	}

	weak, err := h.transitions.WeakTransitions(ctx, userID, 10)
	if err != nil {
		return TodayQueue{}, err
	}
	weakCount, err := h.transitions.CountWeakTransitions(ctx, userID)
	if err != nil {
		return TodayQueue{}, err
	}

	return Plan(u, now, items, attemptsToday, retention7d, weak, weakCount), nil
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	identity := authadapter.FromContext(r.Context())
	if identity == nil {
		httpserver.RespondError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
		return
	}

	q, err := Build(r.Context(), h, identity.UserID, time.Now().UTC())
	if err != nil {
		h.logger.Error("building today queue", "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to build today queue")
		return
	}

	httpserver.Respond(w, http.StatusOK, q)
}
