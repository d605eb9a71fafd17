package review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akmalmuhammed/hifzer-backend/internal/db"
)

// Store provides database operations for the review event stream.
type Store struct {
	dbtx db.DBTX
}

// NewStore creates a review Store backed by the given database handle.
func NewStore(dbtx db.DBTX) *Store {
	return &Store{dbtx: dbtx}
}

// Insert appends the event, returning (eventID, false) on a fresh insert
// or (existingEventID, true) when (userId, clientEventId) already exists —
// the idempotent no-op path required by spec §3/§4.2.
func (s *Store) Insert(ctx context.Context, e Event) (uuid.UUID, bool, error) {
	id := uuid.New()
	query := `INSERT INTO review_events (
		id, user_id, event_type, session_run_id, client_event_id, session_type,
		occurred_at, received_at,
		item_ayah_id, review_tier, step_type, attempt_number, scaffolding_used,
		linked_ayah_id, success, errors_count, duration_seconds, error_tags,
		from_ayah_id, to_ayah_id, transition_success
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
	ON CONFLICT (user_id, client_event_id) DO NOTHING`

	tag, err := s.dbtx.Exec(ctx, query,
		id, e.UserID, e.Type, e.SessionRunID, e.ClientEventID, e.SessionType,
		e.OccurredAt, e.ReceivedAt,
		e.ItemAyahID, e.ReviewTier, e.StepType, e.AttemptNumber, e.ScaffoldingUsed,
		e.LinkedAyahID, e.Success, e.ErrorsCount, e.DurationSeconds, e.ErrorTags,
		e.FromAyahID, e.ToAyahID, e.TransitionSuccess,
	)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("inserting review event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var existingID uuid.UUID
		err := s.dbtx.QueryRow(ctx, `SELECT id FROM review_events WHERE user_id = $1 AND client_event_id = $2`,
			e.UserID, e.ClientEventID).Scan(&existingID)
		if err != nil {
			return uuid.Nil, true, fmt.Errorf("reading deduplicated review event: %w", err)
		}
		return existingID, true, nil
	}
	return id, false, nil
}

// IncrementSessionEventsCount bumps SessionRun.eventsCount for the given
// session, when a sessionRunId is present on the event.
func (s *Store) IncrementSessionEventsCount(ctx context.Context, sessionRunID uuid.UUID) error {
	_, err := s.dbtx.Exec(ctx, `UPDATE session_runs SET events_count = events_count + 1 WHERE id = $1`, sessionRunID)
	if err != nil {
		return fmt.Errorf("incrementing session events count: %w", err)
	}
	return nil
}

const reviewAttemptedColumns = `id, user_id, client_event_id, session_run_id, session_type,
	occurred_at, received_at, item_ayah_id, review_tier, step_type, attempt_number,
	scaffolding_used, linked_ayah_id, success, errors_count, duration_seconds, error_tags`

func scanReviewAttempted(row interface {
	Scan(dest ...any) error
}) (Event, error) {
	var e Event
	e.Type = EventReviewAttempted
	err := row.Scan(
		&e.ID, &e.UserID, &e.ClientEventID, &e.SessionRunID, &e.SessionType,
		&e.OccurredAt, &e.ReceivedAt, &e.ItemAyahID, &e.ReviewTier, &e.StepType, &e.AttemptNumber,
		&e.ScaffoldingUsed, &e.LinkedAyahID, &e.Success, &e.ErrorsCount, &e.DurationSeconds, &e.ErrorTags,
	)
	return e, err
}

// ListReviewAttemptedForItem returns every REVIEW_ATTEMPTED event for a
// (user, ayah) pair, ordered by (occurredAt, id) — the replay order the
// state reducer requires.
func (s *Store) ListReviewAttemptedForItem(ctx context.Context, userID uuid.UUID, ayahID int) ([]Event, error) {
	query := `SELECT ` + reviewAttemptedColumns + ` FROM review_events
		WHERE user_id = $1 AND event_type = 'REVIEW_ATTEMPTED' AND item_ayah_id = $2
		ORDER BY occurred_at ASC, id ASC`
	rows, err := s.dbtx.Query(ctx, query, userID, ayahID)
	if err != nil {
		return nil, fmt.Errorf("listing review events for item: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		e, err := scanReviewAttempted(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning review event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ListReviewAttemptedForSession returns every REVIEW_ATTEMPTED event
// recorded in a session run, used by the daily rollup (C9).
func (s *Store) ListReviewAttemptedForSession(ctx context.Context, sessionRunID uuid.UUID) ([]Event, error) {
	query := `SELECT ` + reviewAttemptedColumns + ` FROM review_events
		WHERE session_run_id = $1 AND event_type = 'REVIEW_ATTEMPTED'
		ORDER BY occurred_at ASC, id ASC`
	rows, err := s.dbtx.Query(ctx, query, sessionRunID)
	if err != nil {
		return nil, fmt.Errorf("listing session review events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		e, err := scanReviewAttempted(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session review event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ListReviewAttemptedForUserSince returns REVIEW_ATTEMPTED events for the
// given user whose occurredAt falls within [since, until) — used by the
// queue planner's warm-up evaluation.
func (s *Store) ListReviewAttemptedForUserSince(ctx context.Context, userID uuid.UUID, since, until time.Time) ([]Event, error) {
	query := `SELECT ` + reviewAttemptedColumns + ` FROM review_events
		WHERE user_id = $1 AND event_type = 'REVIEW_ATTEMPTED' AND occurred_at >= $2 AND occurred_at < $3
		ORDER BY occurred_at ASC, id ASC`
	rows, err := s.dbtx.Query(ctx, query, userID, since, until)
	if err != nil {
		return nil, fmt.Errorf("listing review events in window: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		e, err := scanReviewAttempted(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning windowed review event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
