package dailysession

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akmalmuhammed/hifzer-backend/pkg/reducer"
	"github.com/akmalmuhammed/hifzer-backend/pkg/review"
	"github.com/akmalmuhammed/hifzer-backend/pkg/session"
	"github.com/akmalmuhammed/hifzer-backend/pkg/timeid"
	"github.com/akmalmuhammed/hifzer-backend/pkg/user"
)

// SessionEvents supplies a session run's REVIEW_ATTEMPTED events.
// *review.Store satisfies this.
type SessionEvents interface {
	ListReviewAttemptedForSession(ctx context.Context, sessionRunID uuid.UUID) ([]review.Event, error)
}

// ItemLister counts items newly memorized today. *reducer.Store satisfies
// this via ListAllForUser.
type ItemLister interface {
	ListAllForUser(ctx context.Context, userID uuid.UUID) ([]reducer.UserItemState, error)
}

// UserGetter reads the current user row. *user.Store satisfies this.
type UserGetter interface {
	Get(ctx context.Context, id uuid.UUID) (user.User, error)
}

// DebtSnapshot returns the day's backlog/overdue debt estimate and
// whether new-item (sabaq) introduction is currently allowed, as
// computed by the Today Queue planner's debt and warm-up steps. It is a
// function type rather than a narrow interface over pkg/queue because
// pkg/queue already imports pkg/dailysession (for RollingRetention7d);
// importing pkg/queue back here would be a cycle, so the caller in
// internal/app closes over its own *queue.Handler instead.
type DebtSnapshot func(ctx context.Context, userID uuid.UUID, now time.Time) (backlogMinutesEstimate, overdueDaysMax int, sabaqAllowed bool, err error)

// Service implements session completion (the write half of C9).
type Service struct {
	runs   *session.Store
	events SessionEvents
	items  ItemLister
	users  UserGetter
	debt   DebtSnapshot
	rollup *Store
}

func NewService(runs *session.Store, events SessionEvents, items ItemLister, users UserGetter, debt DebtSnapshot, rollup *Store) *Service {
	return &Service{runs: runs, events: events, items: items, users: users, debt: debt, rollup: rollup}
}

// Complete performs the full session-completion rollup: compare-and-set
// the run to COMPLETED, compute the day's aggregate, and upsert it.
func (s *Service) Complete(ctx context.Context, sessionRunID uuid.UUID, now time.Time) (Aggregate, error) {
	run, err := s.runs.Get(ctx, sessionRunID)
	if err != nil {
		return Aggregate{}, fmt.Errorf("reading session run: %w", err)
	}
	if run.Status != session.StatusActive {
		return Aggregate{}, ErrSessionNotActive
	}

	u, err := s.users.Get(ctx, run.UserID)
	if err != nil {
		return Aggregate{}, fmt.Errorf("reading user: %w", err)
	}
	if u.RequiresPreHifz || !u.FluencyGatePassed {
		return Aggregate{}, ErrFluencyGateBlocked
	}

	events, err := s.events.ListReviewAttemptedForSession(ctx, sessionRunID)
	if err != nil {
		return Aggregate{}, fmt.Errorf("reading session events: %w", err)
	}

	items, err := s.items.ListAllForUser(ctx, run.UserID)
	if err != nil {
		return Aggregate{}, fmt.Errorf("reading item states: %w", err)
	}
	todayStart := timeid.StartOfUTCDay(now)
	newAyahsMemorized := 0
	for _, it := range items {
		if it.FirstMemorizedAt != nil && !it.FirstMemorizedAt.Before(todayStart) {
			newAyahsMemorized++
		}
	}

	backlogMinutesEstimate, overdueDaysMax, sabaqAllowed, err := s.debt(ctx, run.UserID, now)
	if err != nil {
		return Aggregate{}, fmt.Errorf("reading today's debt snapshot: %w", err)
	}

	agg := Compute(run.UserID, timeid.UTCDayString(now), run.Mode, backlogMinutesEstimate, overdueDaysMax, run.WarmupPassed, sabaqAllowed, events, newAyahsMemorized)

	completed, err := s.runs.Complete(ctx, sessionRunID, now, agg.MinutesTotal)
	if err != nil {
		return Aggregate{}, ErrSessionNotActive
	}
	_ = completed

	if err := s.rollup.Upsert(ctx, agg); err != nil {
		return Aggregate{}, err
	}
	return agg, nil
}
