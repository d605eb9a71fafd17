package transition

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akmalmuhammed/hifzer-backend/internal/db"
)

// Store provides database operations for transition scores.
type Store struct {
	dbtx db.DBTX
}

// NewStore creates a transition Store backed by the given database handle.
func NewStore(dbtx db.DBTX) *Store {
	return &Store{dbtx: dbtx}
}

// Upsert increments attemptCount (and successCount when success) for the
// (user, fromAyah, toAyah) triple, creating the row on first practice.
func (s *Store) Upsert(ctx context.Context, userID uuid.UUID, fromAyahID, toAyahID int, success bool, practicedAt time.Time) error {
	successIncrement := 0
	if success {
		successIncrement = 1
	}
	query := `INSERT INTO transition_scores (user_id, from_ayah_id, to_ayah_id, attempt_count, success_count, last_practiced_at)
		VALUES ($1, $2, $3, 1, $4, $5)
		ON CONFLICT (user_id, from_ayah_id, to_ayah_id) DO UPDATE SET
			attempt_count = transition_scores.attempt_count + 1,
			success_count = transition_scores.success_count + $4,
			last_practiced_at = $5`
	_, err := s.dbtx.Exec(ctx, query, userID, fromAyahID, toAyahID, successIncrement, practicedAt)
	if err != nil {
		return fmt.Errorf("upserting transition score: %w", err)
	}
	return nil
}

const scoreColumns = `from_ayah_id, to_ayah_id, attempt_count, success_count, last_practiced_at`

// WeakTransitions returns transition scores meeting the weakness
// threshold, ascending by success rate, capped at limit.
func (s *Store) WeakTransitions(ctx context.Context, userID uuid.UUID, limit int) ([]Score, error) {
	query := `SELECT ` + scoreColumns + ` FROM transition_scores
		WHERE user_id = $1 AND attempt_count >= $2
		  AND success_count::float8 / attempt_count::float8 < $3
		ORDER BY (success_count::float8 / attempt_count::float8) ASC
		LIMIT $4`
	rows, err := s.dbtx.Query(ctx, query, userID, WeaknessThresholdAttempts, WeaknessThresholdRate, limit)
	if err != nil {
		return nil, fmt.Errorf("listing weak transitions: %w", err)
	}
	defer rows.Close()

	var scores []Score
	for rows.Next() {
		var sc Score
		if err := rows.Scan(&sc.FromAyahID, &sc.ToAyahID, &sc.AttemptCount, &sc.SuccessCount, &sc.LastPracticedAt); err != nil {
			return nil, fmt.Errorf("scanning transition score: %w", err)
		}
		scores = append(scores, sc)
	}
	return scores, rows.Err()
}

// CountWeakTransitions returns the number of transitions meeting the
// weakness threshold, used to set link_repair_recommended.
func (s *Store) CountWeakTransitions(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT count(*) FROM transition_scores
		WHERE user_id = $1 AND attempt_count >= $2
		  AND success_count::float8 / attempt_count::float8 < $3`
	var count int
	err := s.dbtx.QueryRow(ctx, query, userID, WeaknessThresholdAttempts, WeaknessThresholdRate).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting weak transitions: %w", err)
	}
	return count, nil
}

// StrongTransitions returns transition scores meeting the strength
// threshold, descending by success rate, capped at limit. Used by the
// analytics progress view alongside WeakTransitions.
func (s *Store) StrongTransitions(ctx context.Context, userID uuid.UUID, limit int) ([]Score, error) {
	query := `SELECT ` + scoreColumns + ` FROM transition_scores
		WHERE user_id = $1 AND attempt_count >= $2
		  AND success_count::float8 / attempt_count::float8 >= $3
		ORDER BY (success_count::float8 / attempt_count::float8) DESC
		LIMIT $4`
	rows, err := s.dbtx.Query(ctx, query, userID, StrongThresholdAttempts, StrongThresholdRate, limit)
	if err != nil {
		return nil, fmt.Errorf("listing strong transitions: %w", err)
	}
	defer rows.Close()

	var scores []Score
	for rows.Next() {
		var sc Score
		if err := rows.Scan(&sc.FromAyahID, &sc.ToAyahID, &sc.AttemptCount, &sc.SuccessCount, &sc.LastPracticedAt); err != nil {
			return nil, fmt.Errorf("scanning transition score: %w", err)
		}
		scores = append(scores, sc)
	}
	return scores, rows.Err()
}

// CountStrongTransitions returns the number of transitions meeting the
// strength threshold.
func (s *Store) CountStrongTransitions(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT count(*) FROM transition_scores
		WHERE user_id = $1 AND attempt_count >= $2
		  AND success_count::float8 / attempt_count::float8 >= $3`
	var count int
	err := s.dbtx.QueryRow(ctx, query, userID, StrongThresholdAttempts, StrongThresholdRate).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting strong transitions: %w", err)
	}
	return count, nil
}
