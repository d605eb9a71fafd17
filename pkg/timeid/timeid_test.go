package timeid

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestUTCDayString(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"utc midnight", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), "2026-02-01"},
		{"non-utc offset crosses day boundary", time.Date(2026, 2, 1, 1, 0, 0, 0, time.FixedZone("X", 3*3600)), "2026-01-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UTCDayString(tt.in); got != tt.want {
				t.Errorf("UTCDayString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDaysBetweenUTC(t *testing.T) {
	a := time.Date(2026, 2, 1, 23, 0, 0, 0, time.UTC)
	b := time.Date(2026, 2, 2, 1, 0, 0, 0, time.UTC)
	if got := DaysBetweenUTC(a, b); got != 1 {
		t.Errorf("DaysBetweenUTC() = %d, want 1", got)
	}
	if got := DaysBetweenUTC(b, a); got != -1 {
		t.Errorf("DaysBetweenUTC() reversed = %d, want -1", got)
	}
	if got := DaysBetweenUTC(a, a); got != 0 {
		t.Errorf("DaysBetweenUTC() same instant = %d, want 0", got)
	}
}

func TestDeterministicStepEventID_StableAcrossCalls(t *testing.T) {
	sessionID := uuid.New()

	first := DeterministicStepEventID(sessionID, 42, "EXPOSURE", 1)
	second := DeterministicStepEventID(sessionID, 42, "EXPOSURE", 1)

	if first != second {
		t.Errorf("DeterministicStepEventID() not stable: %v != %v", first, second)
	}
}

func TestDeterministicStepEventID_VariesByInput(t *testing.T) {
	sessionID := uuid.New()

	base := DeterministicStepEventID(sessionID, 42, "EXPOSURE", 1)

	variants := []uuid.UUID{
		DeterministicStepEventID(sessionID, 42, "EXPOSURE", 2),
		DeterministicStepEventID(sessionID, 42, "GUIDED", 1),
		DeterministicStepEventID(sessionID, 43, "EXPOSURE", 1),
		DeterministicStepEventID(uuid.New(), 42, "EXPOSURE", 1),
	}
	for _, v := range variants {
		if v == base {
			t.Errorf("DeterministicStepEventID() collided with differing input: %v", v)
		}
	}
}

func TestAdvisoryLockKey_StableAndDistinct(t *testing.T) {
	u1, u2 := uuid.New(), uuid.New()

	if AdvisoryLockKey(u1, 1) != AdvisoryLockKey(u1, 1) {
		t.Error("AdvisoryLockKey() not stable across calls")
	}
	if AdvisoryLockKey(u1, 1) == AdvisoryLockKey(u2, 2) {
		t.Error("AdvisoryLockKey() collided for distinct (user, ayah) pairs")
	}
	if AdvisoryLockKey(u1, 1) == AdvisoryLockKey(u1, 2) {
		t.Error("AdvisoryLockKey() collided when only ayah differs")
	}
}
