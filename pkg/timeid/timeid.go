// Package timeid provides the UTC-day arithmetic and deterministic
// identifier helpers shared by the event store, reducer, and session
// protocol: stable UUIDs for idempotent retries, and a Postgres
// advisory-lock key for per-(user, ayah) reducer serialization.
package timeid

import (
	"hash/fnv"
	"time"

	"github.com/google/uuid"
)

// eventNamespace is a fixed namespace UUID used to derive deterministic
// step-event IDs via uuid.NewSHA1. Any stable UUID works; this one is
// generated once and never changes, so the same (session, ayah, step,
// attempt) tuple always yields the same event ID across retries.
var eventNamespace = uuid.MustParse("7b3f9f0e-7e9b-4d2a-9f1a-8d4c9c2b6a11")

// UTCDayString formats t as a YYYY-MM-DD string in UTC, the canonical day
// key used by the promotion gate, warm-up evaluation, and calendar views.
func UTCDayString(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// StartOfUTCDay returns the start of t's UTC calendar day.
func StartOfUTCDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetweenUTC returns the number of whole UTC calendar days between a
// and b's day boundaries (b - a), which may be negative.
func DaysBetweenUTC(a, b time.Time) int {
	return int(StartOfUTCDay(b).Sub(StartOfUTCDay(a)).Hours() / 24)
}

// DeterministicStepEventID synthesizes a stable clientEventId for a
// session-protocol step submission so that retries of the same
// (session, ayah, step, attempt) tuple dedupe at the event store.
func DeterministicStepEventID(sessionID uuid.UUID, ayahID int, stepType string, attemptNumber int) uuid.UUID {
	key := sessionID.String() + ":" + itoa(ayahID) + ":" + stepType + ":" + itoa(attemptNumber)
	return uuid.NewSHA1(eventNamespace, []byte(key))
}

// AdvisoryLockKey derives the int64 Postgres advisory-lock key used to
// serialize reducer work for a given (user, ayah) pair.
func AdvisoryLockKey(userID uuid.UUID, ayahID int) int64 {
	h := fnv.New64a()
	_, _ = h.Write(userID[:])
	_, _ = h.Write([]byte(itoa(ayahID)))
	return int64(h.Sum64())
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
