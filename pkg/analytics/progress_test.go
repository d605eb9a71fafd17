package analytics

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/akmalmuhammed/hifzer-backend/pkg/reducer"
	"github.com/akmalmuhammed/hifzer-backend/pkg/spacing"
	"github.com/akmalmuhammed/hifzer-backend/pkg/transition"
)

func TestBuildProgress_RetentionAndDistribution(t *testing.T) {
	userID := uuid.New()
	items := []reducer.UserItemState{
		{UserID: userID, AyahID: 1, Status: reducer.StatusMemorized, Tier: spacing.TierManzil, IntervalCheckpointIndex: 6, TotalReviews: 10, SuccessfulReviews: 9},
		{UserID: userID, AyahID: 2, Status: reducer.StatusLearning, Tier: spacing.TierSabaq, IntervalCheckpointIndex: 0, TotalReviews: 4, SuccessfulReviews: 2},
	}
	report := BuildProgress(items, nil, nil)

	if report.TotalItems != 2 {
		t.Errorf("TotalItems = %d, want 2", report.TotalItems)
	}
	if report.MemorizedItems != 1 {
		t.Errorf("MemorizedItems = %d, want 1", report.MemorizedItems)
	}
	wantRetention := 11.0 / 14.0
	if report.OverallRetention != wantRetention {
		t.Errorf("OverallRetention = %v, want %v", report.OverallRetention, wantRetention)
	}
	if report.CheckpointCounts[6] != 1 || report.CheckpointCounts[0] != 1 {
		t.Errorf("CheckpointCounts = %v, want [0]=1 [6]=1", report.CheckpointCounts)
	}
}

func TestBuildProgress_DefaultsRetentionToOneWithNoReviews(t *testing.T) {
	report := BuildProgress(nil, nil, nil)
	if report.OverallRetention != 1 {
		t.Errorf("OverallRetention = %v, want 1 with no items", report.OverallRetention)
	}
}

func TestRecommend_ManyWeakTransitionsRecommendsLinkRepair(t *testing.T) {
	weak := make([]transition.Score, 11)
	report := BuildProgress(nil, weak, nil)
	if !strings.Contains(report.Recommendation, "weak transitions") {
		t.Errorf("Recommendation = %q, want mention of weak transitions", report.Recommendation)
	}
}

func TestRecommend_LowRetentionWithoutWeakLinks(t *testing.T) {
	userID := uuid.New()
	items := []reducer.UserItemState{
		{UserID: userID, AyahID: 1, TotalReviews: 10, SuccessfulReviews: 5},
	}
	report := BuildProgress(items, nil, nil)
	if !strings.Contains(report.Recommendation, "Retention") {
		t.Errorf("Recommendation = %q, want mention of retention", report.Recommendation)
	}
}

func TestRecommend_HealthySteadyState(t *testing.T) {
	userID := uuid.New()
	items := []reducer.UserItemState{
		{UserID: userID, AyahID: 1, TotalReviews: 10, SuccessfulReviews: 9},
	}
	report := BuildProgress(items, nil, nil)
	if !strings.Contains(report.Recommendation, "healthy") {
		t.Errorf("Recommendation = %q, want steady-state message", report.Recommendation)
	}
}

func TestManzilShare(t *testing.T) {
	userID := uuid.New()
	items := []reducer.UserItemState{
		{UserID: userID, AyahID: 1, Tier: spacing.TierManzil},
		{UserID: userID, AyahID: 2, Tier: spacing.TierSabqi},
	}
	if got := ManzilShare(items); got != 0.5 {
		t.Errorf("ManzilShare() = %v, want 0.5", got)
	}
}

func TestManzilShare_EmptyIsZero(t *testing.T) {
	if got := ManzilShare(nil); got != 0 {
		t.Errorf("ManzilShare() = %v, want 0", got)
	}
}
