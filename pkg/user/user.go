// Package user holds the User entity: identity plus the scheduling
// parameters mutated only by the assessment planner (pkg/assessment) and
// fluency-gate completion (pkg/fluencygate).
package user

import (
	"time"

	"github.com/google/uuid"
)

// ScaffoldingLevel controls the session-protocol variant (pkg/session).
type ScaffoldingLevel string

const (
	ScaffoldingBeginner ScaffoldingLevel = "BEGINNER"
	ScaffoldingStandard ScaffoldingLevel = "STANDARD"
	ScaffoldingMinimal  ScaffoldingLevel = "MINIMAL"
)

// Variant controls the daily-new-target and thresholds computed by the
// assessment planner.
type Variant string

const (
	VariantConservative Variant = "CONSERVATIVE"
	VariantStandard     Variant = "STANDARD"
	VariantMomentum     Variant = "MOMENTUM"
)

// JuzBand buckets prior memorization experience reported at assessment.
type JuzBand string

const (
	JuzBandZero     JuzBand = "ZERO"
	JuzBandSome     JuzBand = "SOME"
	JuzBandFivePlus JuzBand = "FIVE_PLUS"
)

// TajwidConfidence is a self-reported confidence level.
type TajwidConfidence string

const (
	TajwidLow    TajwidConfidence = "LOW"
	TajwidMedium TajwidConfidence = "MEDIUM"
	TajwidHigh   TajwidConfidence = "HIGH"
)

// User is identity plus the scheduling parameters that drive every other
// component.
type User struct {
	ID        uuid.UUID
	Email     string
	CreatedAt time.Time

	TimeBudgetMinutes int
	FluencyScore      *int // null until a fluency-gate test completes
	FluencyGatePassed bool
	RequiresPreHifz   bool

	ScaffoldingLevel ScaffoldingLevel
	Variant          Variant

	DailyNewTargetAyahs         int
	ReviewRatioTarget           int
	RetentionThreshold          float64
	BacklogFreezeRatio          float64
	ConsolidationRetentionFloor float64
	ManzilRotationDays          int
	AvgSecondsPerItem           int
	OverdueCapSeconds           int64

	PriorJuzBand     JuzBand
	Goal             string
	HasTeacher       bool
	TajwidConfidence TajwidConfidence
}

// NewDefault returns the parameter set assigned to a freshly provisioned
// user, before any assessment has run. The fluency gate and assessment
// steps are mandatory prerequisites, so these defaults never reach the
// queue planner in a passing state — requiresPreHifz stays true until the
// fluency gate says otherwise.
func NewDefault(id uuid.UUID, email string, now time.Time) User {
	return User{
		ID:        id,
		Email:     email,
		CreatedAt: now,

		TimeBudgetMinutes: 30,
		FluencyGatePassed: false,
		RequiresPreHifz:   true,

		ScaffoldingLevel: ScaffoldingStandard,
		Variant:          VariantStandard,

		DailyNewTargetAyahs:         5,
		ReviewRatioTarget:           70,
		RetentionThreshold:          0.85,
		BacklogFreezeRatio:          0.8,
		ConsolidationRetentionFloor: 0.77,
		ManzilRotationDays:          30,
		AvgSecondsPerItem:           70,
		OverdueCapSeconds:           48 * 3600,

		PriorJuzBand:     JuzBandZero,
		Goal:             "",
		HasTeacher:       false,
		TajwidConfidence: TajwidMedium,
	}
}
