package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/akmalmuhammed/hifzer-backend/pkg/queue"
	"github.com/akmalmuhammed/hifzer-backend/pkg/reducer"
	"github.com/akmalmuhammed/hifzer-backend/pkg/spacing"
)

func TestBuildOverview_TalliesStatusAndTier(t *testing.T) {
	userID := uuid.New()
	items := []reducer.UserItemState{
		{UserID: userID, AyahID: 1, Status: reducer.StatusMemorized, Tier: spacing.TierManzil},
		{UserID: userID, AyahID: 2, Status: reducer.StatusLearning, Tier: spacing.TierSabaq},
		{UserID: userID, AyahID: 3, Status: reducer.StatusLearning, Tier: spacing.TierSabaq},
	}
	debt := queue.DebtMetrics{DueCount: 5, BacklogMinutesEstimate: 20, EarliestDueAt: time.Now()}

	overview := BuildOverview(items, debt)

	if overview.TotalItems != 3 {
		t.Errorf("TotalItems = %d, want 3", overview.TotalItems)
	}
	if overview.ByStatus[reducer.StatusLearning] != 2 {
		t.Errorf("ByStatus[LEARNING] = %d, want 2", overview.ByStatus[reducer.StatusLearning])
	}
	if overview.ByTier[spacing.TierSabaq] != 2 {
		t.Errorf("ByTier[SABAQ] = %d, want 2", overview.ByTier[spacing.TierSabaq])
	}
	if overview.Debt.DueCount != 5 {
		t.Errorf("Debt.DueCount = %d, want 5", overview.Debt.DueCount)
	}
}

func TestBuildOverview_EmptyItems(t *testing.T) {
	overview := BuildOverview(nil, queue.DebtMetrics{})
	if overview.TotalItems != 0 {
		t.Errorf("TotalItems = %d, want 0", overview.TotalItems)
	}
}
