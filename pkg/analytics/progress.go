package analytics

import (
	"fmt"

	"github.com/akmalmuhammed/hifzer-backend/pkg/reducer"
	"github.com/akmalmuhammed/hifzer-backend/pkg/spacing"
	"github.com/akmalmuhammed/hifzer-backend/pkg/transition"
)

// CheckpointDistribution counts items at each checkpoint-ladder index
// (0..7) across a user's items.
type CheckpointDistribution [8]int

// ProgressReport is the overall progress read model (C10's "progress" view).
type ProgressReport struct {
	TotalItems          int
	MemorizedItems      int
	OverallRetention    float64
	CheckpointCounts    CheckpointDistribution
	WeakTransitions     []transition.Score
	StrongTransitions   []transition.Score
	Recommendation      string
}

// weakTransitionSurfaceLimit bounds how many weak transitions feed the
// recommendation and progress view (matches the queue planner's surfacing
// cap).
const weakTransitionSurfaceLimit = 10

// BuildProgress derives the overall progress report from a user's item
// states and transition scores.
func BuildProgress(items []reducer.UserItemState, weak, strong []transition.Score) ProgressReport {
	var dist CheckpointDistribution
	memorized := 0
	successSum, reviewSum := 0, 0
	for _, it := range items {
		if it.IntervalCheckpointIndex >= 0 && it.IntervalCheckpointIndex < len(dist) {
			dist[it.IntervalCheckpointIndex]++
		}
		if it.Status == reducer.StatusMemorized {
			memorized++
		}
		successSum += it.SuccessfulReviews
		reviewSum += it.TotalReviews
	}

	retention := 1.0
	if reviewSum > 0 {
		retention = float64(successSum) / float64(reviewSum)
	}

	report := ProgressReport{
		TotalItems:        len(items),
		MemorizedItems:    memorized,
		OverallRetention:  retention,
		CheckpointCounts:  dist,
		WeakTransitions:   weak,
		StrongTransitions: strong,
	}
	report.Recommendation = recommend(report)
	return report
}

// recommend produces a short textual suggestion from the report's shape.
// Checked in priority order: weak links first (cheapest, highest-leverage
// fix), then low retention, then a generic steady-state nudge.
func recommend(r ProgressReport) string {
	switch {
	case len(r.WeakTransitions) > weakTransitionSurfaceLimit:
		return fmt.Sprintf("You have %d weak transitions — spend today's session on link repair before adding new ayahs.", len(r.WeakTransitions))
	case len(r.WeakTransitions) > 0:
		return "A few transitions are still shaky. Keep practicing the links between ayahs during review."
	case r.OverallRetention < 0.70:
		return "Retention has dipped below 70%. Consider slowing new intake and focusing on review."
	case r.TotalItems == 0:
		return "Start your first fluency gate to begin memorizing."
	default:
		return "Retention and link strength look healthy. Keep up the current pace."
	}
}

// ManzilShare returns the fraction of items whose effective tier is
// MANZIL (checkpoint index >= 6 and the promotion gate met).
func ManzilShare(items []reducer.UserItemState) float64 {
	if len(items) == 0 {
		return 0
	}
	manzil := 0
	for _, it := range items {
		if it.Tier == spacing.TierManzil {
			manzil++
		}
	}
	return float64(manzil) / float64(len(items))
}
