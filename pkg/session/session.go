// Package session implements the session protocol (C8): the 3x3
// exposure/guided/blind/link state machine a session runs through per
// ayah, and the SessionRun it is scoped to.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/akmalmuhammed/hifzer-backend/pkg/user"
)

// Status is the lifecycle status of a SessionRun.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusAbandoned Status = "ABANDONED"
)

// Run is one user sitting.
type Run struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	ClientSessionID *uuid.UUID
	Mode            string
	WarmupPassed    bool
	Status          Status
	StartedAt       time.Time
	EndedAt         *time.Time
	EventsCount     int
	MinutesTotal    int
}

// ScaffoldingLevelName maps a user's scaffolding level to the protocol
// registry key.
func ScaffoldingLevelName(level user.ScaffoldingLevel) string {
	return string(level)
}
