package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akmalmuhammed/hifzer-backend/internal/db"
	"github.com/akmalmuhammed/hifzer-backend/pkg/review"
)

// Store persists session_runs rows.
type Store struct {
	dbtx db.DBTX
}

func NewStore(dbtx db.DBTX) *Store {
	return &Store{dbtx: dbtx}
}

const runColumns = `id, user_id, client_session_id, mode, warmup_passed, status,
	started_at, ended_at, events_count, minutes_total`

func scanRun(row interface {
	Scan(dest ...any) error
}) (Run, error) {
	var r Run
	err := row.Scan(&r.ID, &r.UserID, &r.ClientSessionID, &r.Mode, &r.WarmupPassed, &r.Status,
		&r.StartedAt, &r.EndedAt, &r.EventsCount, &r.MinutesTotal)
	return r, err
}

// Start creates a new ACTIVE session run. If clientSessionID is non-nil
// and a run already exists for (userID, clientSessionID), that existing
// run is returned instead — session start is idempotent on the supplied
// client key.
func (s *Store) Start(ctx context.Context, userID uuid.UUID, clientSessionID *uuid.UUID, mode string, warmupPassed bool, now time.Time) (Run, bool, error) {
	if clientSessionID != nil {
		existing, err := s.getByClientSessionID(ctx, userID, *clientSessionID)
		if err == nil {
			return existing, true, nil
		}
	}

	r := Run{
		ID:              uuid.New(),
		UserID:          userID,
		ClientSessionID: clientSessionID,
		Mode:            mode,
		WarmupPassed:    warmupPassed,
		Status:          StatusActive,
		StartedAt:       now,
	}
	_, err := s.dbtx.Exec(ctx, `
		INSERT INTO session_runs (`+runColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		r.ID, r.UserID, r.ClientSessionID, r.Mode, r.WarmupPassed, r.Status,
		r.StartedAt, r.EndedAt, r.EventsCount, r.MinutesTotal,
	)
	if err != nil {
		return Run{}, false, fmt.Errorf("creating session run: %w", err)
	}
	return r, false, nil
}

func (s *Store) getByClientSessionID(ctx context.Context, userID uuid.UUID, clientSessionID uuid.UUID) (Run, error) {
	row := s.dbtx.QueryRow(ctx, `SELECT `+runColumns+` FROM session_runs
		WHERE user_id = $1 AND client_session_id = $2`, userID, clientSessionID)
	return scanRun(row)
}

// Get returns a session run by id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Run, error) {
	return scanRun(s.dbtx.QueryRow(ctx, `SELECT `+runColumns+` FROM session_runs WHERE id = $1`, id))
}

// Complete performs the compare-and-set ACTIVE -> COMPLETED. Returns
// pgx.ErrNoRows if the run was not ACTIVE (a second completion fails, per
// the single-shot invariant).
func (s *Store) Complete(ctx context.Context, id uuid.UUID, endedAt time.Time, minutesTotal int) (Run, error) {
	row := s.dbtx.QueryRow(ctx, `
		UPDATE session_runs SET status = 'COMPLETED', ended_at = $2, minutes_total = $3
		WHERE id = $1 AND status = 'ACTIVE'
		RETURNING `+runColumns,
		id, endedAt, minutesTotal,
	)
	return scanRun(row)
}

// StepCounts returns the observed (stepType -> count) multiset for a
// (session, ayah) pair, read from the REVIEW_ATTEMPTED event stream.
func (s *Store) StepCounts(ctx context.Context, sessionRunID uuid.UUID, ayahID int) (map[review.StepType]int, error) {
	rows, err := s.dbtx.Query(ctx, `
		SELECT step_type, count(*) FROM review_events
		WHERE session_run_id = $1 AND item_ayah_id = $2 AND event_type = 'REVIEW_ATTEMPTED'
		GROUP BY step_type`, sessionRunID, ayahID)
	if err != nil {
		return nil, fmt.Errorf("reading step counts: %w", err)
	}
	defer rows.Close()

	counts := map[review.StepType]int{}
	for rows.Next() {
		var stepType review.StepType
		var count int
		if err := rows.Scan(&stepType, &count); err != nil {
			return nil, fmt.Errorf("scanning step count: %w", err)
		}
		counts[stepType] = count
	}
	return counts, rows.Err()
}
