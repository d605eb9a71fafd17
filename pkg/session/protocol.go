package session

import "github.com/akmalmuhammed/hifzer-backend/pkg/review"

// StepSpec is one entry in a scaffolding level's canonical step sequence.
type StepSpec struct {
	StepType         review.StepType
	RequiredAttempts int
	Optional         bool
}

// Protocol is the ordered step sequence for a scaffolding level.
type Protocol []StepSpec

var protocols = map[string]Protocol{
	"BEGINNER": {
		{StepType: review.StepExposure, RequiredAttempts: 3},
		{StepType: review.StepGuided, RequiredAttempts: 3},
		{StepType: review.StepBlind, RequiredAttempts: 3},
		{StepType: review.StepLink, RequiredAttempts: 3},
	},
	"STANDARD": {
		{StepType: review.StepExposure, RequiredAttempts: 3},
		{StepType: review.StepGuided, RequiredAttempts: 1},
		{StepType: review.StepBlind, RequiredAttempts: 3},
		{StepType: review.StepLink, RequiredAttempts: 3},
	},
	"MINIMAL": {
		{StepType: review.StepExposure, RequiredAttempts: 3, Optional: true},
		{StepType: review.StepGuided, RequiredAttempts: 3, Optional: true},
		{StepType: review.StepBlind, RequiredAttempts: 3},
		{StepType: review.StepLink, RequiredAttempts: 3},
	},
}

// ProtocolFor returns the canonical step sequence for a scaffolding level
// name (BEGINNER/STANDARD/MINIMAL).
func ProtocolFor(scaffoldingLevel string) Protocol {
	return protocols[scaffoldingLevel]
}

// Expectation is the result of evaluating a protocol against observed
// step counts: the next step the protocol expects, or completed=true if
// every non-optional step has met its required attempts.
type Expectation struct {
	StepType      review.StepType
	AttemptNumber int
	Completed     bool
}

// Expected returns the first non-optional step whose observed count is
// below its required attempts, with its expected next attempt number.
func (p Protocol) Expected(counts map[review.StepType]int) Expectation {
	for _, spec := range p {
		if spec.Optional {
			continue
		}
		observed := counts[spec.StepType]
		if observed < spec.RequiredAttempts {
			return Expectation{StepType: spec.StepType, AttemptNumber: observed + 1}
		}
	}
	return Expectation{Completed: true}
}

// specFor returns the StepSpec for a step type, if the protocol names it.
func (p Protocol) specFor(stepType review.StepType) (StepSpec, bool) {
	for _, spec := range p {
		if spec.StepType == stepType {
			return spec, true
		}
	}
	return StepSpec{}, false
}

// ErrInvalidStepSequence is returned when a submitted step does not
// match what the protocol currently expects.
type ErrInvalidStepSequence struct {
	Expected Expectation
}

func (e ErrInvalidStepSequence) Error() string { return "session: invalid step sequence" }

// Validate checks a submitted (stepType, attemptNumber) against the
// protocol's current expectation, computed from the prior observed
// counts for this (session, ayah) pair.
func (p Protocol) Validate(counts map[review.StepType]int, stepType review.StepType, attemptNumber int) error {
	expected := p.Expected(counts)
	if expected.Completed {
		return ErrInvalidStepSequence{Expected: expected}
	}

	spec, known := p.specFor(stepType)
	if known && spec.Optional {
		if expected.StepType != review.StepBlind {
			return ErrInvalidStepSequence{Expected: expected}
		}
		observed := counts[stepType]
		if attemptNumber != observed+1 || attemptNumber > spec.RequiredAttempts {
			return ErrInvalidStepSequence{Expected: expected}
		}
		return nil
	}

	if stepType != expected.StepType || attemptNumber != expected.AttemptNumber {
		return ErrInvalidStepSequence{Expected: expected}
	}
	return nil
}

// StepStatus classifies the result of a valid submission.
type StepStatus string

const (
	StepInProgress  StepStatus = "IN_PROGRESS"
	StepComplete    StepStatus = "STEP_COMPLETE"
	AyahComplete    StepStatus = "AYAH_COMPLETE"
)

// StatusAfter classifies a valid submission's outcome from the step
// counts as they stand after recording it.
func (p Protocol) StatusAfter(countsAfter map[review.StepType]int, submittedStep review.StepType) StepStatus {
	if p.Expected(countsAfter).Completed {
		return AyahComplete
	}
	spec, known := p.specFor(submittedStep)
	if known && countsAfter[submittedStep] >= spec.RequiredAttempts {
		return StepComplete
	}
	return StepInProgress
}
