package dailysession

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akmalmuhammed/hifzer-backend/internal/db"
)

// Store persists daily_sessions rows.
type Store struct {
	dbtx db.DBTX
}

func NewStore(dbtx db.DBTX) *Store {
	return &Store{dbtx: dbtx}
}

const aggregateColumns = `user_id, session_date, mode, retention_score, backlog_minutes_estimate,
	overdue_days_max, minutes_total, reviews_total, reviews_successful, new_ayahs_memorized,
	warmup_passed, sabaq_allowed`

// Upsert writes agg for (userID, sessionDate). On conflict it increments
// minutesTotal/reviewsTotal/reviewsSuccessful (multiple sessions in a day
// accumulate) and overwrites every other field with the latest values.
func (s *Store) Upsert(ctx context.Context, agg Aggregate) error {
	_, err := s.dbtx.Exec(ctx, `
		INSERT INTO daily_sessions (`+aggregateColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (user_id, session_date) DO UPDATE SET
			mode = EXCLUDED.mode,
			retention_score = EXCLUDED.retention_score,
			backlog_minutes_estimate = EXCLUDED.backlog_minutes_estimate,
			overdue_days_max = EXCLUDED.overdue_days_max,
			minutes_total = daily_sessions.minutes_total + EXCLUDED.minutes_total,
			reviews_total = daily_sessions.reviews_total + EXCLUDED.reviews_total,
			reviews_successful = daily_sessions.reviews_successful + EXCLUDED.reviews_successful,
			new_ayahs_memorized = EXCLUDED.new_ayahs_memorized,
			warmup_passed = EXCLUDED.warmup_passed,
			sabaq_allowed = EXCLUDED.sabaq_allowed`,
		agg.UserID, agg.SessionDate, agg.Mode, agg.RetentionScore, agg.BacklogMinutesEstimate,
		agg.OverdueDaysMax, agg.MinutesTotal, agg.ReviewsTotal, agg.ReviewsSuccessful, agg.NewAyahsMemorized,
		agg.WarmupPassed, agg.SabaqAllowed,
	)
	if err != nil {
		return fmt.Errorf("upserting daily session: %w", err)
	}
	return nil
}

// Get returns the rollup for (userID, sessionDate), if any.
func (s *Store) Get(ctx context.Context, userID uuid.UUID, sessionDate string) (Aggregate, error) {
	var a Aggregate
	err := s.dbtx.QueryRow(ctx, `SELECT `+aggregateColumns+` FROM daily_sessions WHERE user_id = $1 AND session_date = $2`,
		userID, sessionDate).Scan(
		&a.UserID, &a.SessionDate, &a.Mode, &a.RetentionScore, &a.BacklogMinutesEstimate,
		&a.OverdueDaysMax, &a.MinutesTotal, &a.ReviewsTotal, &a.ReviewsSuccessful, &a.NewAyahsMemorized,
		&a.WarmupPassed, &a.SabaqAllowed,
	)
	return a, err
}

// ListRetentionScoresSince returns every retentionScore for the user with
// sessionDate on or after since's UTC day.
func (s *Store) ListRetentionScoresSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]float64, error) {
	rows, err := s.dbtx.Query(ctx, `
		SELECT retention_score FROM daily_sessions
		WHERE user_id = $1 AND session_date >= $2`,
		userID, since.UTC().Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("listing retention scores: %w", err)
	}
	defer rows.Close()

	var scores []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning retention score: %w", err)
		}
		scores = append(scores, v)
	}
	return scores, rows.Err()
}

// ListForUserInRange returns every rollup for the user with sessionDate in
// [fromDate, toDate], ordered ascending — used by the analytics calendar.
func (s *Store) ListForUserInRange(ctx context.Context, userID uuid.UUID, fromDate, toDate string) ([]Aggregate, error) {
	rows, err := s.dbtx.Query(ctx, `
		SELECT `+aggregateColumns+` FROM daily_sessions
		WHERE user_id = $1 AND session_date BETWEEN $2 AND $3
		ORDER BY session_date ASC`, userID, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("listing daily sessions: %w", err)
	}
	defer rows.Close()

	var out []Aggregate
	for rows.Next() {
		var a Aggregate
		if err := rows.Scan(
			&a.UserID, &a.SessionDate, &a.Mode, &a.RetentionScore, &a.BacklogMinutesEstimate,
			&a.OverdueDaysMax, &a.MinutesTotal, &a.ReviewsTotal, &a.ReviewsSuccessful, &a.NewAyahsMemorized,
			&a.WarmupPassed, &a.SabaqAllowed,
		); err != nil {
			return nil, fmt.Errorf("scanning daily session: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
