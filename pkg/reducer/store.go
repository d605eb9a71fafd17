package reducer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/akmalmuhammed/hifzer-backend/internal/db"
)

// Store persists UserItemState rows. Rows are always fully recomputed by
// Reduce and written with Upsert — there is no incremental update path,
// since the row is defined as a pure function of the event history.
type Store struct {
	dbtx db.DBTX
}

func NewStore(dbtx db.DBTX) *Store {
	return &Store{dbtx: dbtx}
}

const userItemStateColumns = `
	user_id, ayah_id, status, tier, next_review_at, review_interval_seconds,
	interval_checkpoint_index, introduced_at, first_memorized_at, difficulty_score,
	total_reviews, successful_reviews, lapses, success_streak, consecutive_perfect_days,
	average_duration_seconds, last_errors_count, last_reviewed_at, last_event_occurred_at
`

func scanUserItemState(row pgx.Row) (UserItemState, error) {
	var s UserItemState
	err := row.Scan(
		&s.UserID, &s.AyahID, &s.Status, &s.Tier, &s.NextReviewAt, &s.ReviewIntervalSeconds,
		&s.IntervalCheckpointIndex, &s.IntroducedAt, &s.FirstMemorizedAt, &s.DifficultyScore,
		&s.TotalReviews, &s.SuccessfulReviews, &s.Lapses, &s.SuccessStreak, &s.ConsecutivePerfectDays,
		&s.AverageDurationSeconds, &s.LastErrorsCount, &s.LastReviewedAt, &s.LastEventOccurredAt,
	)
	return s, err
}

// Get returns the persisted state for (userID, ayahID), or pgx.ErrNoRows
// if the item has never been reviewed.
func (st *Store) Get(ctx context.Context, userID uuid.UUID, ayahID int) (UserItemState, error) {
	row := st.dbtx.QueryRow(ctx, `SELECT `+userItemStateColumns+` FROM user_item_states WHERE user_id = $1 AND ayah_id = $2`, userID, ayahID)
	return scanUserItemState(row)
}

// Upsert writes the fully-recomputed state for (userID, ayahID).
func (st *Store) Upsert(ctx context.Context, s UserItemState) error {
	_, err := st.dbtx.Exec(ctx, `
		INSERT INTO user_item_states (`+userItemStateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (user_id, ayah_id) DO UPDATE SET
			status = EXCLUDED.status,
			tier = EXCLUDED.tier,
			next_review_at = EXCLUDED.next_review_at,
			review_interval_seconds = EXCLUDED.review_interval_seconds,
			interval_checkpoint_index = EXCLUDED.interval_checkpoint_index,
			introduced_at = EXCLUDED.introduced_at,
			first_memorized_at = EXCLUDED.first_memorized_at,
			difficulty_score = EXCLUDED.difficulty_score,
			total_reviews = EXCLUDED.total_reviews,
			successful_reviews = EXCLUDED.successful_reviews,
			lapses = EXCLUDED.lapses,
			success_streak = EXCLUDED.success_streak,
			consecutive_perfect_days = EXCLUDED.consecutive_perfect_days,
			average_duration_seconds = EXCLUDED.average_duration_seconds,
			last_errors_count = EXCLUDED.last_errors_count,
			last_reviewed_at = EXCLUDED.last_reviewed_at,
			last_event_occurred_at = EXCLUDED.last_event_occurred_at`,
		s.UserID, s.AyahID, s.Status, s.Tier, s.NextReviewAt, s.ReviewIntervalSeconds,
		s.IntervalCheckpointIndex, s.IntroducedAt, s.FirstMemorizedAt, s.DifficultyScore,
		s.TotalReviews, s.SuccessfulReviews, s.Lapses, s.SuccessStreak, s.ConsecutivePerfectDays,
		s.AverageDurationSeconds, s.LastErrorsCount, s.LastReviewedAt, s.LastEventOccurredAt,
	)
	return err
}

// ListDue returns items whose nextReviewAt has passed, for planner
// consumption (pkg/queue).
func (st *Store) ListDue(ctx context.Context, userID uuid.UUID, asOf time.Time) ([]UserItemState, error) {
	rows, err := st.dbtx.Query(ctx, `SELECT `+userItemStateColumns+` FROM user_item_states
		WHERE user_id = $1 AND next_review_at <= $2
		ORDER BY next_review_at ASC`, userID, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserItemState
	for rows.Next() {
		s, err := scanUserItemState(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListAllForUser returns every UserItemState row for the user, for
// planner and analytics consumption.
func (st *Store) ListAllForUser(ctx context.Context, userID uuid.UUID) ([]UserItemState, error) {
	rows, err := st.dbtx.Query(ctx, `SELECT `+userItemStateColumns+` FROM user_item_states WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserItemState
	for rows.Next() {
		s, err := scanUserItemState(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
