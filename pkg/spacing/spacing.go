// Package spacing implements the checkpoint-ladder spaced-repetition
// algorithm: outcome classification from a single review attempt, the
// checkpoint-index transition, interval and difficulty updates, and the
// checkpoint-derived tier mapping. Every function here is pure; the
// reducer (pkg/reducer) is the only caller that folds these over an
// event stream.
package spacing

import "time"

// Tier is the checkpoint-derived tier before the promotion gate is applied.
type Tier string

const (
	TierSabaq Tier = "SABAQ"
	TierSabqi Tier = "SABQI"
	TierManzil Tier = "MANZIL"
)

// Outcome classifies a single review attempt.
type Outcome string

const (
	OutcomePerfect Outcome = "perfect"
	OutcomeMinor   Outcome = "minor"
	OutcomeFail    Outcome = "fail"
)

// Ladder holds the fixed checkpoint intervals, in seconds, index 0..7.
var Ladder = [8]int64{
	int64(4 * time.Hour / time.Second),
	int64(8 * time.Hour / time.Second),
	int64(24 * time.Hour / time.Second),
	int64(3 * 24 * time.Hour / time.Second),
	int64(7 * 24 * time.Hour / time.Second),
	int64(14 * 24 * time.Hour / time.Second),
	int64(30 * 24 * time.Hour / time.Second),
	int64(90 * 24 * time.Hour / time.Second),
}

const maxCheckpointIndex = 7

// ClassifyOutcome determines the outcome of a single attempt from its
// reported success flag and error count.
func ClassifyOutcome(success bool, errorsCount int) Outcome {
	switch {
	case success && errorsCount == 0:
		return OutcomePerfect
	case success && errorsCount >= 1 && errorsCount <= 2:
		return OutcomeMinor
	default:
		return OutcomeFail
	}
}

// NextCheckpointIndex applies the outcome transition to a checkpoint index.
func NextCheckpointIndex(index int, outcome Outcome) int {
	switch outcome {
	case OutcomePerfect:
		if index+1 > maxCheckpointIndex {
			return maxCheckpointIndex
		}
		return index + 1
	case OutcomeMinor:
		return index
	default:
		return 0
	}
}

// IntervalSeconds returns the ladder interval for a checkpoint index.
func IntervalSeconds(index int) int64 {
	return Ladder[index]
}

// NextReviewAt adds the interval for newIndex to occurredAt.
func NextReviewAt(occurredAt time.Time, newIndex int) time.Time {
	return occurredAt.Add(time.Duration(IntervalSeconds(newIndex)) * time.Second)
}

// NextDifficultyScore applies the EWMA adjustment for the given outcome,
// clamped to [0, 1].
func NextDifficultyScore(current float64, outcome Outcome) float64 {
	var delta float64
	switch outcome {
	case OutcomeFail:
		delta = 0.1
	case OutcomeMinor:
		delta = 0.03
	case OutcomePerfect:
		delta = -0.05
	}
	next := current + delta
	if next < 0 {
		return 0
	}
	if next > 1 {
		return 1
	}
	return next
}

// CheckpointTier maps a checkpoint index to its checkpoint-derived tier,
// before the promotion-gate demotion in pkg/reducer is applied.
func CheckpointTier(index int) Tier {
	switch {
	case index <= 1:
		return TierSabaq
	case index <= 5:
		return TierSabqi
	default:
		return TierManzil
	}
}
