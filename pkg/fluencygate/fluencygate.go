// Package fluencygate implements the pre-memorization reading-competence
// check (C5): a timed, error-counted page read that gates entry to the
// scheduling core.
package fluencygate

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle status of a FluencyGateTest.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusPassed     Status = "PASSED"
	StatusFailed     Status = "FAILED"
)

// PassThreshold is the minimum fluencyScore required to pass the gate.
const PassThreshold = 70

// Test is a single fluency-gate attempt.
type Test struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	PageNumber  int
	AyahIDs     []int
	Status      Status
	Score       *int
	CreatedAt   time.Time
	SubmittedAt *time.Time
}

// Score computes fluencyScore = timeScore + accuracyScore from a
// submission's duration and error count.
func Score(durationSeconds, errorCount int) int {
	timeScore := 50.0
	if durationSeconds >= 180 {
		timeScore = 50.0 - float64(durationSeconds-180)/6.0
		if timeScore < 0 {
			timeScore = 0
		}
	}

	accuracyScore := 50.0
	if errorCount >= 5 {
		accuracyScore = 50.0 - float64(errorCount-5)*5.0
		if accuracyScore < 0 {
			accuracyScore = 0
		}
	}

	return int(math.Round(timeScore + accuracyScore))
}

// Passed reports whether a fluencyScore clears PassThreshold.
func Passed(score int) bool {
	return score >= PassThreshold
}
