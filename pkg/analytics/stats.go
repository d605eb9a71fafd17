package analytics

import (
	"github.com/akmalmuhammed/hifzer-backend/pkg/queue"
	"github.com/akmalmuhammed/hifzer-backend/pkg/reducer"
	"github.com/akmalmuhammed/hifzer-backend/pkg/spacing"
)

// StatusCounts tallies items by lifecycle status.
type StatusCounts map[reducer.ItemStatus]int

// TierCounts tallies items by effective tier.
type TierCounts map[spacing.Tier]int

// Overview is the GET /api/v1/user/stats composition: item counts plus
// today's debt snapshot, reusing the queue planner's DebtMetrics (the
// caller runs queue.Plan once and passes its Debt field through here
// rather than recomputing it).
type Overview struct {
	TotalItems int
	ByStatus   StatusCounts
	ByTier     TierCounts
	Debt       queue.DebtMetrics
}

// BuildOverview tallies item states by status and tier and attaches the
// already-computed debt snapshot for today.
func BuildOverview(items []reducer.UserItemState, debt queue.DebtMetrics) Overview {
	byStatus := make(StatusCounts)
	byTier := make(TierCounts)
	for _, it := range items {
		byStatus[it.Status]++
		byTier[it.Tier]++
	}
	return Overview{
		TotalItems: len(items),
		ByStatus:   byStatus,
		ByTier:     byTier,
		Debt:       debt,
	}
}
