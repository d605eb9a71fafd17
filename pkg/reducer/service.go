package reducer

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/akmalmuhammed/hifzer-backend/internal/db"
	"github.com/akmalmuhammed/hifzer-backend/pkg/review"
	"github.com/akmalmuhammed/hifzer-backend/pkg/timeid"
	"github.com/akmalmuhammed/hifzer-backend/pkg/transition"
)

// IngestResult is the outcome of Service.Ingest: whether the event was a
// duplicate of one already recorded, and the event's canonical ID.
type IngestResult struct {
	Deduplicated bool
	EventID      uuid.UUID
}

// Service implements the ingest(userId, event) operation: append the
// event to the store, replay the affected item's full event history
// under an advisory lock, and persist the recomputed UserItemState and
// (when the event carries a link) TransitionScore in one transaction.
type Service struct {
	beginner   db.Beginner
	reviews    *review.Store
	items      *Store
	transitions *transition.Store
}

func NewService(beginner db.Beginner, reviews *review.Store, items *Store, transitions *transition.Store) *Service {
	return &Service{beginner: beginner, reviews: reviews, items: items, transitions: transitions}
}

// Ingest appends e and, if it was not a duplicate, recomputes and
// persists the state of the item(s) it touches. The whole operation runs
// inside a single Postgres transaction holding the advisory lock keyed by
// (userId, itemAyahId), so concurrent submissions for the same item
// serialize instead of racing on the read-modify-write of UserItemState.
func (s *Service) Ingest(ctx context.Context, e review.Event) (IngestResult, error) {
	if err := e.Validate(); err != nil {
		return IngestResult{}, err
	}

	tx, err := s.beginner.Begin(ctx)
	if err != nil {
		return IngestResult{}, fmt.Errorf("beginning ingest transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	lockAyahID := 0
	if e.ItemAyahID != nil {
		lockAyahID = *e.ItemAyahID
	} else if e.FromAyahID != nil {
		lockAyahID = *e.FromAyahID
	}
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, timeid.AdvisoryLockKey(e.UserID, lockAyahID)); err != nil {
		return IngestResult{}, fmt.Errorf("acquiring advisory lock: %w", err)
	}

	txReviews := review.NewStore(tx)
	txItems := NewStore(tx)
	txTransitions := transition.NewStore(tx)

	eventID, deduplicated, err := txReviews.Insert(ctx, e)
	if err != nil {
		return IngestResult{}, fmt.Errorf("inserting event: %w", err)
	}
	if deduplicated {
		return IngestResult{Deduplicated: true, EventID: eventID}, tx.Commit(ctx)
	}

	if e.SessionRunID != nil {
		if err := txReviews.IncrementSessionEventsCount(ctx, *e.SessionRunID); err != nil {
			return IngestResult{}, fmt.Errorf("incrementing session events count: %w", err)
		}
	}

	switch e.Type {
	case review.EventReviewAttempted:
		if err := s.recomputeItem(ctx, txReviews, txItems, e.UserID, *e.ItemAyahID); err != nil {
			return IngestResult{}, err
		}
		if e.StepType != nil && *e.StepType == review.StepLink && e.LinkedAyahID != nil {
			success := e.Success != nil && *e.Success
			if err := txTransitions.Upsert(ctx, e.UserID, *e.ItemAyahID, *e.LinkedAyahID, success, e.OccurredAt); err != nil {
				return IngestResult{}, err
			}
		}
	case review.EventTransitionAttempted:
		success := e.TransitionSuccess != nil && *e.TransitionSuccess
		if err := txTransitions.Upsert(ctx, e.UserID, *e.FromAyahID, *e.ToAyahID, success, e.OccurredAt); err != nil {
			return IngestResult{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return IngestResult{}, fmt.Errorf("committing ingest transaction: %w", err)
	}
	return IngestResult{Deduplicated: false, EventID: eventID}, nil
}

func (s *Service) recomputeItem(ctx context.Context, reviews *review.Store, items *Store, userID uuid.UUID, ayahID int) error {
	events, err := reviews.ListReviewAttemptedForItem(ctx, userID, ayahID)
	if err != nil {
		return fmt.Errorf("replaying item history: %w", err)
	}
	state := Reduce(events)
	state.UserID = userID
	state.AyahID = ayahID
	if err := items.Upsert(ctx, state); err != nil {
		return fmt.Errorf("persisting item state: %w", err)
	}
	return nil
}
