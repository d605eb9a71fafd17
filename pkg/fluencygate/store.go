package fluencygate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akmalmuhammed/hifzer-backend/internal/db"
)

// Store persists fluency_gate_tests rows.
type Store struct {
	dbtx db.DBTX
}

func NewStore(dbtx db.DBTX) *Store {
	return &Store{dbtx: dbtx}
}

const testColumns = `id, user_id, page_number, ayah_ids, status, score, created_at, submitted_at`

func scanTest(row interface {
	Scan(dest ...any) error
}) (Test, error) {
	var t Test
	err := row.Scan(&t.ID, &t.UserID, &t.PageNumber, &t.AyahIDs, &t.Status, &t.Score, &t.CreatedAt, &t.SubmittedAt)
	return t, err
}

// Create inserts a new IN_PROGRESS test and returns it with its assigned ID.
func (s *Store) Create(ctx context.Context, userID uuid.UUID, pageNumber int, ayahIDs []int, now time.Time) (Test, error) {
	t := Test{
		ID:         uuid.New(),
		UserID:     userID,
		PageNumber: pageNumber,
		AyahIDs:    ayahIDs,
		Status:     StatusInProgress,
		CreatedAt:  now,
	}
	_, err := s.dbtx.Exec(ctx, `
		INSERT INTO fluency_gate_tests (`+testColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.UserID, t.PageNumber, t.AyahIDs, t.Status, t.Score, t.CreatedAt, t.SubmittedAt,
	)
	if err != nil {
		return Test{}, fmt.Errorf("creating fluency gate test: %w", err)
	}
	return t, nil
}

// Get returns a test by id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Test, error) {
	row := s.dbtx.QueryRow(ctx, `SELECT `+testColumns+` FROM fluency_gate_tests WHERE id = $1`, id)
	return scanTest(row)
}

// GetLatestForUser returns the most recently created test for userID, if
// any.
func (s *Store) GetLatestForUser(ctx context.Context, userID uuid.UUID) (Test, error) {
	row := s.dbtx.QueryRow(ctx, `
		SELECT `+testColumns+` FROM fluency_gate_tests
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`, userID)
	return scanTest(row)
}

// Submit transitions an IN_PROGRESS test to PASSED/FAILED, recording its
// score. Returns the updated row, or pgx.ErrNoRows if the test does not
// exist or is no longer IN_PROGRESS (the "only IN_PROGRESS tests may be
// submitted" rule is enforced by the WHERE clause, not read-then-write).
func (s *Store) Submit(ctx context.Context, id uuid.UUID, score int, passed bool, submittedAt time.Time) (Test, error) {
	status := StatusFailed
	if passed {
		status = StatusPassed
	}
	row := s.dbtx.QueryRow(ctx, `
		UPDATE fluency_gate_tests
		SET status = $2, score = $3, submitted_at = $4
		WHERE id = $1 AND status = 'IN_PROGRESS'
		RETURNING `+testColumns,
		id, status, score, submittedAt,
	)
	return scanTest(row)
}
