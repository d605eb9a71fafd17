package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akmalmuhammed/hifzer-backend/pkg/reducer"
	"github.com/akmalmuhammed/hifzer-backend/pkg/review"
	"github.com/akmalmuhammed/hifzer-backend/pkg/timeid"
)

// StepSubmission is one client submission of a session-protocol step.
type StepSubmission struct {
	SessionRunID    uuid.UUID
	AyahID          int
	StepType        review.StepType
	AttemptNumber   int
	ScaffoldingUsed string
	LinkedAyahID    *int
	Success         bool
	ErrorsCount     int
	DurationSeconds int
}

// StepResult is the response to a valid step submission.
type StepResult struct {
	Recorded     bool
	NextStep     review.StepType
	NextAttempt  int
	StepStatus   StepStatus
	ProtocolDone bool
}

// Ingester is the C3/C4 ingest operation. *reducer.Service satisfies this.
type Ingester interface {
	Ingest(ctx context.Context, e review.Event) (reducer.IngestResult, error)
}

// Service implements the session protocol's step validation and
// submission. It never writes UserItemState directly: every valid
// submission is channeled through Ingester so a full event replay always
// reproduces the same outcome.
type Service struct {
	runs   *Store
	ingest Ingester
}

func NewService(runs *Store, ingest Ingester) *Service {
	return &Service{runs: runs, ingest: ingest}
}

// SubmitStep validates sub against the scaffolding level's canonical
// protocol and, if valid, ingests it as a REVIEW_ATTEMPTED event.
func (s *Service) SubmitStep(ctx context.Context, sub StepSubmission, userID uuid.UUID, scaffoldingLevel string, now time.Time) (StepResult, error) {
	protocol := ProtocolFor(scaffoldingLevel)

	countsBefore, err := s.runs.StepCounts(ctx, sub.SessionRunID, sub.AyahID)
	if err != nil {
		return StepResult{}, fmt.Errorf("reading step counts: %w", err)
	}

	if err := protocol.Validate(countsBefore, sub.StepType, sub.AttemptNumber); err != nil {
		invalid, ok := err.(ErrInvalidStepSequence)
		if !ok {
			return StepResult{}, err
		}
		return StepResult{
			Recorded:     false,
			NextStep:     invalid.Expected.StepType,
			NextAttempt:  invalid.Expected.AttemptNumber,
			ProtocolDone: invalid.Expected.Completed,
		}, err
	}

	clientEventID := timeid.DeterministicStepEventID(sub.SessionRunID, sub.AyahID, string(sub.StepType), sub.AttemptNumber)
	sessionRunID := sub.SessionRunID
	tier := review.TierSabaq
	stepType := sub.StepType
	attemptNumber := sub.AttemptNumber

	e := review.Event{
		UserID:          userID,
		Type:            review.EventReviewAttempted,
		SessionRunID:    &sessionRunID,
		ClientEventID:   clientEventID,
		SessionType:     "SABAQ",
		OccurredAt:      now,
		ReceivedAt:      now,
		ItemAyahID:      &sub.AyahID,
		ReviewTier:      &tier,
		StepType:        &stepType,
		AttemptNumber:   &attemptNumber,
		ScaffoldingUsed: &sub.ScaffoldingUsed,
		LinkedAyahID:    sub.LinkedAyahID,
		Success:         &sub.Success,
		ErrorsCount:     &sub.ErrorsCount,
		DurationSeconds: &sub.DurationSeconds,
	}

	if _, err := s.ingest.Ingest(ctx, e); err != nil {
		return StepResult{}, fmt.Errorf("ingesting step event: %w", err)
	}

	countsAfter, err := s.runs.StepCounts(ctx, sub.SessionRunID, sub.AyahID)
	if err != nil {
		return StepResult{}, fmt.Errorf("reading post-submission step counts: %w", err)
	}
	status := protocol.StatusAfter(countsAfter, sub.StepType)
	expectation := protocol.Expected(countsAfter)

	return StepResult{
		Recorded:     true,
		NextStep:     expectation.StepType,
		NextAttempt:  expectation.AttemptNumber,
		StepStatus:   status,
		ProtocolDone: expectation.Completed,
	}, nil
}
