package assessment

import (
	"testing"

	"github.com/akmalmuhammed/hifzer-backend/pkg/user"
)

func TestCompute_ScaffoldingLevel(t *testing.T) {
	tests := []struct {
		name string
		in   Inputs
		want user.ScaffoldingLevel
	}{
		{"low fluency forces beginner", Inputs{FluencyScore: 50, PriorJuzBand: user.JuzBandSome}, user.ScaffoldingBeginner},
		{"zero prior juz forces beginner even with high fluency", Inputs{FluencyScore: 95, PriorJuzBand: user.JuzBandZero, HasTeacher: true}, user.ScaffoldingBeginner},
		{"minimal requires all three conditions", Inputs{FluencyScore: 90, PriorJuzBand: user.JuzBandFivePlus, HasTeacher: true}, user.ScaffoldingMinimal},
		{"high fluency without teacher falls to standard", Inputs{FluencyScore: 90, PriorJuzBand: user.JuzBandFivePlus, HasTeacher: false}, user.ScaffoldingStandard},
		{"default standard", Inputs{FluencyScore: 80, PriorJuzBand: user.JuzBandSome}, user.ScaffoldingStandard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compute(tt.in).ScaffoldingLevel; got != tt.want {
				t.Errorf("ScaffoldingLevel = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompute_Variant(t *testing.T) {
	tests := []struct {
		name string
		in   Inputs
		want user.Variant
	}{
		{"15 minutes forces conservative", Inputs{TimeBudgetMinutes: 15, FluencyScore: 90, HasTeacher: true, TajwidConfidence: user.TajwidHigh}, user.VariantConservative},
		{"momentum requires all conditions", Inputs{TimeBudgetMinutes: 90, FluencyScore: 70, TajwidConfidence: user.TajwidMedium, HasTeacher: true}, user.VariantMomentum},
		{"low tajwid confidence forces conservative", Inputs{TimeBudgetMinutes: 60, FluencyScore: 80, TajwidConfidence: user.TajwidLow, HasTeacher: true}, user.VariantConservative},
		{"no teacher forces conservative", Inputs{TimeBudgetMinutes: 60, FluencyScore: 80, TajwidConfidence: user.TajwidHigh, HasTeacher: false}, user.VariantConservative},
		{"default standard", Inputs{TimeBudgetMinutes: 45, FluencyScore: 60, TajwidConfidence: user.TajwidMedium, HasTeacher: true}, user.VariantStandard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compute(tt.in).Variant; got != tt.want {
				t.Errorf("Variant = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompute_DailyNewTarget(t *testing.T) {
	tests := []struct {
		name string
		in   Inputs
		want int
	}{
		{"15 minutes hard cap", Inputs{TimeBudgetMinutes: 15, FluencyScore: 90, HasTeacher: true, TajwidConfidence: user.TajwidHigh}, 3},
		{"momentum target", Inputs{TimeBudgetMinutes: 90, FluencyScore: 70, TajwidConfidence: user.TajwidMedium, HasTeacher: true}, 10},
		{"30 minutes without momentum", Inputs{TimeBudgetMinutes: 30, FluencyScore: 60, TajwidConfidence: user.TajwidMedium, HasTeacher: true}, 5},
		{"90 minute floor", Inputs{TimeBudgetMinutes: 90, FluencyScore: 40, TajwidConfidence: user.TajwidMedium, HasTeacher: true}, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compute(tt.in).DailyNewTargetAyahs; got != tt.want {
				t.Errorf("DailyNewTargetAyahs = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCompute_RetentionThresholdAndConsolidationFloor(t *testing.T) {
	p := Compute(Inputs{TimeBudgetMinutes: 15, FluencyScore: 30, HasTeacher: false, TajwidConfidence: user.TajwidLow})
	if p.RetentionThreshold != 0.88 {
		t.Errorf("RetentionThreshold = %v, want 0.88", p.RetentionThreshold)
	}
	if p.ConsolidationRetentionFloor != 0.80 {
		t.Errorf("ConsolidationRetentionFloor = %v, want 0.80", p.ConsolidationRetentionFloor)
	}
}

func TestCompute_FifteenMinuteWarning(t *testing.T) {
	p := Compute(Inputs{TimeBudgetMinutes: 15})
	if p.RecommendedMinutes != 30 || p.Warning == "" {
		t.Error("expected a recommendedMinutes=30 and a non-empty warning at 15 minutes")
	}
	p = Compute(Inputs{TimeBudgetMinutes: 30})
	if p.RecommendedMinutes != 0 || p.Warning != "" {
		t.Error("expected no recommendation or warning above 15 minutes")
	}
}

func TestCompute_AvgSecondsPerItem(t *testing.T) {
	if got := Compute(Inputs{FluencyScore: 80}).AvgSecondsPerItem; got != 55 {
		t.Errorf("AvgSecondsPerItem(80) = %d, want 55", got)
	}
	if got := Compute(Inputs{FluencyScore: 60}).AvgSecondsPerItem; got != 70 {
		t.Errorf("AvgSecondsPerItem(60) = %d, want 70", got)
	}
	if got := Compute(Inputs{FluencyScore: 30}).AvgSecondsPerItem; got != 90 {
		t.Errorf("AvgSecondsPerItem(30) = %d, want 90", got)
	}
}
