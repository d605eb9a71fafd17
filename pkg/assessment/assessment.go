// Package assessment implements the assessment planner (C6): a pure
// function from a user's self-reported inputs to the scheduling
// parameters that govern their daily queue and session protocol.
package assessment

import (
	"math"

	"github.com/akmalmuhammed/hifzer-backend/pkg/user"
)

// Inputs is the self-reported assessment form.
type Inputs struct {
	TimeBudgetMinutes int
	FluencyScore      int
	TajwidConfidence  user.TajwidConfidence
	Goal              string
	HasTeacher        bool
	PriorJuzBand      user.JuzBand
}

// Plan is the computed scheduling parameter set.
type Plan struct {
	ScaffoldingLevel            user.ScaffoldingLevel
	Variant                     user.Variant
	DailyNewTargetAyahs         int
	ReviewRatioTarget           int
	RetentionThreshold          float64
	BacklogFreezeRatio          float64
	ConsolidationRetentionFloor float64
	ManzilRotationDays          int
	AvgSecondsPerItem           int
	OverdueCapSeconds           int64
	RecommendedMinutes          int
	Warning                     string
}

const (
	reviewRatioTarget  = 70
	backlogFreezeRatio = 0.8
	manzilRotationDays = 30
	overdueCapSeconds  = 48 * 3600
)

// Compute computes the scheduling parameters for a set of assessment inputs.
func Compute(in Inputs) Plan {
	p := Plan{
		ReviewRatioTarget:  reviewRatioTarget,
		BacklogFreezeRatio: backlogFreezeRatio,
		ManzilRotationDays: manzilRotationDays,
		OverdueCapSeconds:  overdueCapSeconds,
	}

	p.ScaffoldingLevel = scaffoldingLevel(in)
	p.Variant = variant(in)
	p.DailyNewTargetAyahs = dailyNewTarget(in, p.Variant)
	p.RetentionThreshold = retentionThreshold(p.Variant)
	p.ConsolidationRetentionFloor = math.Max(0.70, p.RetentionThreshold-0.08)
	p.AvgSecondsPerItem = avgSecondsPerItem(in.FluencyScore)

	if in.TimeBudgetMinutes == 15 {
		p.RecommendedMinutes = 30
		p.Warning = "15 minutes a day is tight for steady progress; consider 30 if you can find the time."
	}

	return p
}

func scaffoldingLevel(in Inputs) user.ScaffoldingLevel {
	switch {
	case in.FluencyScore < 75 || in.PriorJuzBand == user.JuzBandZero:
		return user.ScaffoldingBeginner
	case in.FluencyScore > 85 && in.PriorJuzBand == user.JuzBandFivePlus && in.HasTeacher:
		return user.ScaffoldingMinimal
	default:
		return user.ScaffoldingStandard
	}
}

func variant(in Inputs) user.Variant {
	switch {
	case in.TimeBudgetMinutes == 15 || in.FluencyScore < 45 || in.TajwidConfidence == user.TajwidLow || !in.HasTeacher:
		return user.VariantConservative
	case in.TimeBudgetMinutes >= 90 && in.FluencyScore >= 70 && in.TajwidConfidence != user.TajwidLow && in.HasTeacher:
		return user.VariantMomentum
	default:
		return user.VariantStandard
	}
}

func dailyNewTarget(in Inputs, v user.Variant) int {
	switch {
	case in.TimeBudgetMinutes == 15:
		return 3
	case v == user.VariantMomentum:
		return 10
	case in.TimeBudgetMinutes == 90:
		return 7
	case v == user.VariantConservative || in.TimeBudgetMinutes == 30:
		return 5
	default:
		return 7
	}
}

func retentionThreshold(v user.Variant) float64 {
	switch v {
	case user.VariantConservative:
		return 0.88
	case user.VariantMomentum:
		return 0.82
	default:
		return 0.85
	}
}

// ToUserUpdate combines a computed Plan with the raw inputs it was
// derived from into the update shape user.Store.ApplyAssessment expects.
func (p Plan) ToUserUpdate(in Inputs) user.AssessmentUpdate {
	return user.AssessmentUpdate{
		TimeBudgetMinutes:           in.TimeBudgetMinutes,
		ScaffoldingLevel:            p.ScaffoldingLevel,
		Variant:                     p.Variant,
		DailyNewTargetAyahs:         p.DailyNewTargetAyahs,
		ReviewRatioTarget:           p.ReviewRatioTarget,
		RetentionThreshold:          p.RetentionThreshold,
		BacklogFreezeRatio:          p.BacklogFreezeRatio,
		ConsolidationRetentionFloor: p.ConsolidationRetentionFloor,
		ManzilRotationDays:          p.ManzilRotationDays,
		AvgSecondsPerItem:           p.AvgSecondsPerItem,
		OverdueCapSeconds:           p.OverdueCapSeconds,
		PriorJuzBand:                in.PriorJuzBand,
		Goal:                        in.Goal,
		HasTeacher:                  in.HasTeacher,
		TajwidConfidence:            in.TajwidConfidence,
	}
}

func avgSecondsPerItem(fluencyScore int) int {
	switch {
	case fluencyScore >= 75:
		return 55
	case fluencyScore >= 50:
		return 70
	default:
		return 90
	}
}
