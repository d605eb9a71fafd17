package user

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akmalmuhammed/hifzer-backend/internal/authadapter"
	"github.com/akmalmuhammed/hifzer-backend/internal/db"
)

// Store provides database operations for users. It also implements
// authadapter.UserProvisioner so the HTTP auth middleware can resolve a
// verified email to a durable user record.
type Store struct {
	dbtx db.DBTX
}

// NewStore creates a user Store backed by the given database handle.
func NewStore(dbtx db.DBTX) *Store {
	return &Store{dbtx: dbtx}
}

const userColumns = `id, email, created_at, time_budget_minutes, fluency_score,
	fluency_gate_passed, requires_pre_hifz, scaffolding_level, variant,
	daily_new_target_ayahs, review_ratio_target, retention_threshold,
	backlog_freeze_ratio, consolidation_retention_floor, manzil_rotation_days,
	avg_seconds_per_item, overdue_cap_seconds, prior_juz_band, goal,
	has_teacher, tajwid_confidence`

func scanUser(row interface {
	Scan(dest ...any) error
}) (User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.CreatedAt, &u.TimeBudgetMinutes, &u.FluencyScore,
		&u.FluencyGatePassed, &u.RequiresPreHifz, &u.ScaffoldingLevel, &u.Variant,
		&u.DailyNewTargetAyahs, &u.ReviewRatioTarget, &u.RetentionThreshold,
		&u.BacklogFreezeRatio, &u.ConsolidationRetentionFloor, &u.ManzilRotationDays,
		&u.AvgSecondsPerItem, &u.OverdueCapSeconds, &u.PriorJuzBand, &u.Goal,
		&u.HasTeacher, &u.TajwidConfidence,
	)
	return u, err
}

// Get returns a single user by ID.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.dbtx.QueryRow(ctx, query, id))
}

// GetByEmail returns a single user by email.
func (s *Store) GetByEmail(ctx context.Context, email string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(s.dbtx.QueryRow(ctx, query, email))
}

// insert creates a user row from the given defaults.
func (s *Store) insert(ctx context.Context, u User) (User, error) {
	query := `INSERT INTO users (
		id, email, created_at, time_budget_minutes, fluency_score,
		fluency_gate_passed, requires_pre_hifz, scaffolding_level, variant,
		daily_new_target_ayahs, review_ratio_target, retention_threshold,
		backlog_freeze_ratio, consolidation_retention_floor, manzil_rotation_days,
		avg_seconds_per_item, overdue_cap_seconds, prior_juz_band, goal,
		has_teacher, tajwid_confidence
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
	ON CONFLICT (email) DO NOTHING
	RETURNING ` + userColumns
	row := s.dbtx.QueryRow(ctx, query,
		u.ID, u.Email, u.CreatedAt, u.TimeBudgetMinutes, u.FluencyScore,
		u.FluencyGatePassed, u.RequiresPreHifz, u.ScaffoldingLevel, u.Variant,
		u.DailyNewTargetAyahs, u.ReviewRatioTarget, u.RetentionThreshold,
		u.BacklogFreezeRatio, u.ConsolidationRetentionFloor, u.ManzilRotationDays,
		u.AvgSecondsPerItem, u.OverdueCapSeconds, u.PriorJuzBand, u.Goal,
		u.HasTeacher, u.TajwidConfidence,
	)
	return scanUser(row)
}

// FindOrCreateByEmail resolves an authenticated email to a durable user,
// provisioning one with default scheduling parameters on first sight. It
// implements authadapter.UserProvisioner.
func (s *Store) FindOrCreateByEmail(ctx context.Context, email string) (authadapter.Identity, error) {
	existing, err := s.GetByEmail(ctx, email)
	if err == nil {
		return authadapter.Identity{UserID: existing.ID, Email: existing.Email}, nil
	}

	candidate := NewDefault(uuid.New(), email, time.Now().UTC())
	created, err := s.insert(ctx, candidate)
	if err != nil {
		return authadapter.Identity{}, fmt.Errorf("provisioning user %s: %w", email, err)
	}

	// A concurrent provisioning request may have won the race; ON CONFLICT
	// DO NOTHING leaves `created` zero-valued in that case, so re-read.
	if created.ID == uuid.Nil {
		existing, err := s.GetByEmail(ctx, email)
		if err != nil {
			return authadapter.Identity{}, fmt.Errorf("re-reading provisioned user %s: %w", email, err)
		}
		return authadapter.Identity{UserID: existing.ID, Email: existing.Email}, nil
	}

	return authadapter.Identity{UserID: created.ID, Email: created.Email}, nil
}

// AssessmentUpdate holds the fields mutated by the assessment planner.
type AssessmentUpdate struct {
	TimeBudgetMinutes           int
	ScaffoldingLevel            ScaffoldingLevel
	Variant                     Variant
	DailyNewTargetAyahs         int
	ReviewRatioTarget           int
	RetentionThreshold          float64
	BacklogFreezeRatio          float64
	ConsolidationRetentionFloor float64
	ManzilRotationDays          int
	AvgSecondsPerItem           int
	OverdueCapSeconds           int64
	PriorJuzBand                JuzBand
	Goal                        string
	HasTeacher                  bool
	TajwidConfidence            TajwidConfidence
}

// ApplyAssessment persists the parameters computed by the assessment
// planner for the given user.
func (s *Store) ApplyAssessment(ctx context.Context, id uuid.UUID, u AssessmentUpdate) (User, error) {
	query := `UPDATE users SET
		time_budget_minutes = $2, scaffolding_level = $3, variant = $4,
		daily_new_target_ayahs = $5, review_ratio_target = $6, retention_threshold = $7,
		backlog_freeze_ratio = $8, consolidation_retention_floor = $9, manzil_rotation_days = $10,
		avg_seconds_per_item = $11, overdue_cap_seconds = $12, prior_juz_band = $13,
		goal = $14, has_teacher = $15, tajwid_confidence = $16
	WHERE id = $1
	RETURNING ` + userColumns
	row := s.dbtx.QueryRow(ctx, query,
		id, u.TimeBudgetMinutes, u.ScaffoldingLevel, u.Variant,
		u.DailyNewTargetAyahs, u.ReviewRatioTarget, u.RetentionThreshold,
		u.BacklogFreezeRatio, u.ConsolidationRetentionFloor, u.ManzilRotationDays,
		u.AvgSecondsPerItem, u.OverdueCapSeconds, u.PriorJuzBand,
		u.Goal, u.HasTeacher, u.TajwidConfidence,
	)
	return scanUser(row)
}

// ApplyFluencyGateResult persists the user-level effects of a completed
// fluency-gate submission.
func (s *Store) ApplyFluencyGateResult(ctx context.Context, id uuid.UUID, score int, passed bool) (User, error) {
	query := `UPDATE users SET
		fluency_score = $2, fluency_gate_passed = $3, requires_pre_hifz = $4
	WHERE id = $1
	RETURNING ` + userColumns
	row := s.dbtx.QueryRow(ctx, query, id, score, passed, !passed)
	return scanUser(row)
}
