// Package reducer implements the state reducer (C4): a deterministic,
// pure left-fold over a (user, ayah)'s REVIEW_ATTEMPTED events that
// produces the per-item learning state, including the seven-consecutive-
// perfect-UTC-day promotion gate. Reduce never reads or writes the
// database itself — Service (service.go) owns replay and persistence.
package reducer

import (
	"time"

	"github.com/google/uuid"

	"github.com/akmalmuhammed/hifzer-backend/pkg/review"
	"github.com/akmalmuhammed/hifzer-backend/pkg/spacing"
	"github.com/akmalmuhammed/hifzer-backend/pkg/timeid"
)

// ItemStatus is the lifecycle status of a UserItemState row.
type ItemStatus string

const (
	StatusLearning  ItemStatus = "LEARNING"
	StatusMemorized ItemStatus = "MEMORIZED"
	StatusReviewing ItemStatus = "REVIEWING"
	StatusPaused    ItemStatus = "PAUSED"
)

// promotionGateDays is the number of consecutive perfect UTC days
// required before an item holds the MANZIL tier (spec §4.3).
const promotionGateDays = 7

// UserItemState is the sparse per-(user, ayah) learning record: a pure
// function of the ordered REVIEW_ATTEMPTED events for that pair.
type UserItemState struct {
	UserID uuid.UUID
	AyahID int

	Status ItemStatus
	Tier   spacing.Tier

	NextReviewAt            time.Time
	ReviewIntervalSeconds    int64
	IntervalCheckpointIndex  int

	IntroducedAt     time.Time
	FirstMemorizedAt *time.Time

	DifficultyScore float64

	TotalReviews           int
	SuccessfulReviews      int
	Lapses                 int
	SuccessStreak          int
	ConsecutivePerfectDays int

	AverageDurationSeconds float64
	LastErrorsCount        int
	LastReviewedAt         time.Time
	LastEventOccurredAt    time.Time

	// lastPerfectDay is recomputed on every full replay, not persisted
	// independently; it drives the promotion-gate transition in Reduce.
	lastPerfectDay string
}

// Reduce folds an ordered (occurredAt ASC, eventId ASC) slice of
// REVIEW_ATTEMPTED events for a single (user, ayah) pair into its
// resulting state. Callers are responsible for ordering; Reduce does not
// re-sort, so that the determinism invariant (spec §8.1) is visible at
// the call site rather than hidden inside this function.
func Reduce(events []review.Event) UserItemState {
	var s UserItemState
	s.Status = StatusLearning
	s.Tier = spacing.TierSabaq
	s.IntervalCheckpointIndex = 0
	s.ReviewIntervalSeconds = spacing.IntervalSeconds(0)
	s.DifficultyScore = 0

	for i, e := range events {
		if i == 0 {
			s.IntroducedAt = e.OccurredAt
		}
		applyEvent(&s, e)
	}

	if s.IntervalCheckpointIndex >= 2 {
		s.Status = StatusMemorized
	} else {
		s.Status = StatusLearning
	}

	checkpointTier := spacing.CheckpointTier(s.IntervalCheckpointIndex)
	if checkpointTier == spacing.TierManzil && s.ConsecutivePerfectDays < promotionGateDays {
		s.Tier = spacing.TierSabqi
	} else {
		s.Tier = checkpointTier
	}

	return s
}

func applyEvent(s *UserItemState, e review.Event) {
	success := e.Success != nil && *e.Success
	errorsCount := 0
	if e.ErrorsCount != nil {
		errorsCount = *e.ErrorsCount
	}
	duration := 0
	if e.DurationSeconds != nil {
		duration = *e.DurationSeconds
	}

	outcome := spacing.ClassifyOutcome(success, errorsCount)
	newIndex := spacing.NextCheckpointIndex(s.IntervalCheckpointIndex, outcome)
	newInterval := spacing.IntervalSeconds(newIndex)

	s.IntervalCheckpointIndex = newIndex
	s.ReviewIntervalSeconds = newInterval
	s.NextReviewAt = spacing.NextReviewAt(e.OccurredAt, newIndex)
	s.DifficultyScore = spacing.NextDifficultyScore(s.DifficultyScore, outcome)

	s.TotalReviews++
	if success {
		s.SuccessfulReviews++
		s.SuccessStreak++
	} else {
		s.Lapses++
		s.SuccessStreak = 0
	}

	// Running mean of durationSeconds.
	s.AverageDurationSeconds += (float64(duration) - s.AverageDurationSeconds) / float64(s.TotalReviews)
	s.LastErrorsCount = errorsCount
	s.LastReviewedAt = e.OccurredAt
	s.LastEventOccurredAt = e.OccurredAt

	if s.FirstMemorizedAt == nil && newIndex >= 2 {
		t := e.OccurredAt
		s.FirstMemorizedAt = &t
	}

	applyPromotionGate(s, outcome, e.OccurredAt)
}

func applyPromotionGate(s *UserItemState, outcome spacing.Outcome, occurredAt time.Time) {
	if outcome != spacing.OutcomePerfect {
		s.ConsecutivePerfectDays = 0
		s.lastPerfectDay = ""
		return
	}

	day := timeid.UTCDayString(occurredAt)
	switch {
	case s.lastPerfectDay == "":
		s.ConsecutivePerfectDays = 1
	case day == s.lastPerfectDay:
		// Same UTC day as the last perfect event: counter holds.
	default:
		gap := daysBetween(s.lastPerfectDay, day)
		if gap == 1 {
			s.ConsecutivePerfectDays++
		} else {
			s.ConsecutivePerfectDays = 1
		}
	}
	s.lastPerfectDay = day
}

// daysBetween returns the number of whole days between two YYYY-MM-DD
// UTC-day strings (b - a).
func daysBetween(a, b string) int {
	ta, errA := time.Parse("2006-01-02", a)
	tb, errB := time.Parse("2006-01-02", b)
	if errA != nil || errB != nil {
		return 0
	}
	return int(tb.Sub(ta).Hours() / 24)
}
