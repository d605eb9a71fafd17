// Package review implements the append-only event store (C3): the single
// entry point through which every review or transition attempt reaches
// durable storage, keyed for idempotent re-ingestion.
package review

import (
	"time"

	"github.com/google/uuid"
)

// EventType discriminates the ReviewEvent sum type.
type EventType string

const (
	EventReviewAttempted     EventType = "REVIEW_ATTEMPTED"
	EventTransitionAttempted EventType = "TRANSITION_ATTEMPTED"
)

// StepType is the session-protocol step a REVIEW_ATTEMPTED event records.
type StepType string

const (
	StepExposure StepType = "EXPOSURE"
	StepGuided   StepType = "GUIDED"
	StepBlind    StepType = "BLIND"
	StepLink     StepType = "LINK"
)

// Tier is the tier recorded on the event at submission time (SABAQ for
// session-protocol submissions; review submissions may carry any tier).
type Tier string

const (
	TierSabaq  Tier = "SABAQ"
	TierSabqi  Tier = "SABQI"
	TierManzil Tier = "MANZIL"
)

// Event is a single append-only row in the review event stream. Exactly
// one of the REVIEW_ATTEMPTED or TRANSITION_ATTEMPTED field groups is
// populated, selected by Type.
type Event struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Type          EventType
	SessionRunID  *uuid.UUID
	ClientEventID uuid.UUID
	SessionType   string
	OccurredAt    time.Time
	ReceivedAt    time.Time

	// REVIEW_ATTEMPTED fields.
	ItemAyahID      *int
	ReviewTier      *Tier
	StepType        *StepType
	AttemptNumber   *int
	ScaffoldingUsed *string
	LinkedAyahID    *int
	Success         *bool
	ErrorsCount     *int
	DurationSeconds *int
	ErrorTags       []string

	// TRANSITION_ATTEMPTED fields.
	FromAyahID        *int
	ToAyahID          *int
	TransitionSuccess *bool
}

// IngestResult is the outcome of submitting an event.
type IngestResult struct {
	Deduplicated bool
	EventID      uuid.UUID
}

// Validate enforces the per-variant shape invariants from spec §3: LINK
// steps require a linked ayah, and each variant's required fields are set.
func (e *Event) Validate() error {
	switch e.Type {
	case EventReviewAttempted:
		if e.ItemAyahID == nil || e.ReviewTier == nil || e.Success == nil || e.ErrorsCount == nil || e.DurationSeconds == nil {
			return ErrMalformedEvent
		}
		if *e.ErrorsCount < 0 {
			return ErrMalformedEvent
		}
		if *e.DurationSeconds <= 0 {
			return ErrMalformedEvent
		}
		if e.AttemptNumber != nil && (*e.AttemptNumber < 1 || *e.AttemptNumber > 3) {
			return ErrMalformedEvent
		}
		if e.StepType != nil && *e.StepType == StepLink && e.LinkedAyahID == nil {
			return ErrMalformedEvent
		}
	case EventTransitionAttempted:
		if e.FromAyahID == nil || e.ToAyahID == nil || e.TransitionSuccess == nil {
			return ErrMalformedEvent
		}
	default:
		return ErrMalformedEvent
	}
	return nil
}
