package analytics

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
	"github.com/akmalmuhammed/hifzer-backend/pkg/queue"
	"github.com/akmalmuhammed/hifzer-backend/pkg/reducer"
	"github.com/akmalmuhammed/hifzer-backend/pkg/spacing"
	"github.com/akmalmuhammed/hifzer-backend/pkg/transition"
	"github.com/akmalmuhammed/hifzer-backend/pkg/user"
)

// calendarWindowDays bounds the streak lookback when no month is given.
const calendarWindowDays = 90

// ItemSource supplies every item state for a user. *reducer.Store
// satisfies this.
type ItemSource interface {
	ListAllForUser(ctx context.Context, userID uuid.UUID) ([]reducer.UserItemState, error)
}

// SessionSource supplies daily rollups in a date range. *dailysession.Store
// satisfies this.
type SessionSource interface {
	ListForUserInRange(ctx context.Context, userID uuid.UUID, fromDate, toDate string) ([]dailysession.Aggregate, error)
}

// TransitionSource supplies weak and strong transitions. *transition.Store
// satisfies this.
type TransitionSource interface {
	WeakTransitions(ctx context.Context, userID uuid.UUID, limit int) ([]transition.Score, error)
	StrongTransitions(ctx context.Context, userID uuid.UUID, limit int) ([]transition.Score, error)
}

// QueueBuilder produces today's debt snapshot for the stats overview.
// Callers pass queue.Build bound to their *queue.Handler, since Build is a
// package function rather than a method (it's shared with session start's
// default-mode derivation).
type QueueBuilder func(ctx context.Context, userID uuid.UUID, now time.Time) (queue.TodayQueue, error)

// UserGetter reads the current user row, used for the best fluency score
// surfaced on the achievements read model. *user.Store satisfies this.
type UserGetter interface {
	Get(ctx context.Context, id uuid.UUID) (user.User, error)
}

// Handler serves the GET /api/v1/user/{stats,calendar,achievements,progress}
// read models.
type Handler struct {
	logger      *slog.Logger
	items       ItemSource
	sessions    SessionSource
	transitions TransitionSource
	queueH      QueueBuilder
	users       UserGetter
}

// NewHandler creates an analytics Handler.
func NewHandler(logger *slog.Logger, items ItemSource, sessions SessionSource, transitions TransitionSource, queueH QueueBuilder, users UserGetter) *Handler {
	return &Handler{logger: logger, items: items, sessions: sessions, transitions: transitions, queueH: queueH, users: users}
}

// Routes returns a chi.Router with the analytics routes mounted.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/stats", h.handleStats)
	r.Get("/calendar", h.handleCalendar)
	r.Get("/achievements", h.handleAchievements)
	r.Get("/progress", h.handleProgress)
	return r
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	identity := authadapter.FromContext(r.Context())
	if identity == nil {
		httpserver.RespondError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
		return
	}

	items, err := h.items.ListAllForUser(r.Context(), identity.UserID)
	if err != nil {
		h.logger.Error("reading item states", "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to read items")
		return
	}

	q, err := h.queueH(r.Context(), identity.UserID, time.Now().UTC())
	if err != nil {
		h.logger.Error("building today queue for stats overview", "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to read debt snapshot")
		return
	}

	httpserver.Respond(w, http.StatusOK, BuildOverview(items, q.Debt))
}

func (h *Handler) handleCalendar(w http.ResponseWriter, r *http.Request) {
	identity := authadapter.FromContext(r.Context())
	if identity == nil {
		httpserver.RespondError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
		return
	}

	now := time.Now().UTC()
	fromDate, toDate := "", ""
	if month := r.URL.Query().Get("month"); month != "" {
		var ok bool
		fromDate, toDate, ok = MonthRange(month)
		if !ok {
			httpserver.RespondError(w, http.StatusBadRequest, "bad_request", "month must be formatted YYYY-MM")
			return
		}
	} else {
		fromDate = now.AddDate(0, 0, -calendarWindowDays).Format(dayLayout)
		toDate = now.Format(dayLayout)
	}

	sessions, err := h.sessions.ListForUserInRange(r.Context(), identity.UserID, fromDate, toDate)
	if err != nil {
		h.logger.Error("reading daily sessions", "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to read calendar")
		return
	}

	httpserver.Respond(w, http.StatusOK, BuildCalendar(fromDate, toDate, sessions))
}

func (h *Handler) handleAchievements(w http.ResponseWriter, r *http.Request) {
	identity := authadapter.FromContext(r.Context())
	if identity == nil {
		httpserver.RespondError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
		return
	}

	stats, err := h.gatherStats(r.Context(), identity.UserID)
	if err != nil {
		h.logger.Error("gathering achievement stats", "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to read achievements")
		return
	}

	httpserver.Respond(w, http.StatusOK, Evaluate(stats))
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	identity := authadapter.FromContext(r.Context())
	if identity == nil {
		httpserver.RespondError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
		return
	}

	items, err := h.items.ListAllForUser(r.Context(), identity.UserID)
	if err != nil {
		h.logger.Error("reading item states", "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to read progress")
		return
	}
	weak, err := h.transitions.WeakTransitions(r.Context(), identity.UserID, 50)
	if err != nil {
		h.logger.Error("reading weak transitions", "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to read progress")
		return
	}
	strong, err := h.transitions.StrongTransitions(r.Context(), identity.UserID, 50)
	if err != nil {
		h.logger.Error("reading strong transitions", "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to read progress")
		return
	}

	httpserver.Respond(w, http.StatusOK, BuildProgress(items, weak, strong))
}

func (h *Handler) gatherStats(ctx context.Context, userID uuid.UUID) (Stats, error) {
	items, err := h.items.ListAllForUser(ctx, userID)
	if err != nil {
		return Stats{}, err
	}

	now := time.Now().UTC()
	fromDate := now.AddDate(0, 0, -calendarWindowDays).Format(dayLayout)
	toDate := now.Format(dayLayout)
	sessions, err := h.sessions.ListForUserInRange(ctx, userID, fromDate, toDate)
	if err != nil {
		return Stats{}, err
	}
	cal := BuildCalendar(fromDate, toDate, sessions)

	u, err := h.users.Get(ctx, userID)
	if err != nil {
		return Stats{}, err
	}

	ayahsMemorized, manzilItems, lifetimeReviews := 0, 0, 0
	for _, it := range items {
		if it.Status == reducer.StatusMemorized {
			ayahsMemorized++
		}
		if it.Tier == spacing.TierManzil {
			manzilItems++
		}
		lifetimeReviews += it.TotalReviews
	}

	bestFluencyScore := 0
	if u.FluencyScore != nil {
		bestFluencyScore = *u.FluencyScore
	}

	return Stats{
		AyahsMemorized:    ayahsMemorized,
		CurrentStreakDays: cal.CurrentStreak,
		LifetimeReviews:   lifetimeReviews,
		ManzilItems:       manzilItems,
		BestFluencyScore:  bestFluencyScore,
	}, nil
}
