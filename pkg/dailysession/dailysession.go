// Package dailysession implements the daily session rollup (C9): the
// per-(user, UTC day) aggregate computed at session completion.
package dailysession

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/akmalmuhammed/hifzer-backend/pkg/review"
)

// Aggregate is one (user, UTC day) rollup row.
type Aggregate struct {
	UserID                 uuid.UUID
	SessionDate            string // YYYY-MM-DD, UTC
	Mode                   string
	RetentionScore         float64
	BacklogMinutesEstimate int
	OverdueDaysMax         int
	MinutesTotal           int
	ReviewsTotal           int
	ReviewsSuccessful      int
	NewAyahsMemorized      int
	WarmupPassed           bool
	SabaqAllowed           bool
}

// ErrSessionNotActive is returned when completion targets a run that is
// not ACTIVE.
var ErrSessionNotActive = fmt.Errorf("dailysession: session is not active")

// ErrFluencyGateBlocked is returned when the user has become fluency-gate
// blocked since the session started; completion is rejected.
var ErrFluencyGateBlocked = fmt.Errorf("dailysession: user is fluency-gate blocked")

// Compute derives the rollup fields from a completed session's
// REVIEW_ATTEMPTED events and the count of items newly memorized today.
func Compute(userID uuid.UUID, sessionDate string, mode string, backlogMinutesEstimate, overdueDaysMax int, warmupPassed, sabaqAllowed bool, events []review.Event, newAyahsMemorized int) Aggregate {
	reviewsTotal := len(events)
	reviewsSuccessful := 0
	var totalDuration int
	for _, e := range events {
		if e.Success != nil && *e.Success {
			reviewsSuccessful++
		}
		if e.DurationSeconds != nil {
			totalDuration += *e.DurationSeconds
		}
	}

	retentionScore := 1.0
	if reviewsTotal > 0 {
		retentionScore = float64(reviewsSuccessful) / float64(reviewsTotal)
	}

	minutesTotal := int(math.Ceil(float64(totalDuration) / 60.0))

	return Aggregate{
		UserID:                 userID,
		SessionDate:            sessionDate,
		Mode:                   mode,
		RetentionScore:         retentionScore,
		BacklogMinutesEstimate: backlogMinutesEstimate,
		OverdueDaysMax:         overdueDaysMax,
		MinutesTotal:           minutesTotal,
		ReviewsTotal:           reviewsTotal,
		ReviewsSuccessful:      reviewsSuccessful,
		NewAyahsMemorized:      newAyahsMemorized,
		WarmupPassed:           warmupPassed,
		SabaqAllowed:           sabaqAllowed,
	}
}

// RollingRetention7d returns the mean retentionScore over the trailing
// seven UTC days, defaulting to 1 when there are no sessions at all in
// that window (the queue planner's Step 4).
func RollingRetention7d(ctx context.Context, source RetentionSource, userID uuid.UUID, asOf time.Time) (float64, error) {
	scores, err := source.ListRetentionScoresSince(ctx, userID, asOf.AddDate(0, 0, -7))
	if err != nil {
		return 0, err
	}
	if len(scores) == 0 {
		return 1, nil
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores)), nil
}

// RetentionSource supplies recent retentionScore values. *Store satisfies
// this.
type RetentionSource interface {
	ListRetentionScoresSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]float64, error)
}
