package analytics

import (
	"testing"

	"github.com/google/uuid"

	"github.com/akmalmuhammed/hifzer-backend/pkg/dailysession"
)

func TestXP(t *testing.T) {
	if got := XP(30, 10, 2); got != 30*2+10+2*10 {
		t.Errorf("XP() = %d, want %d", got, 30*2+10+2*10)
	}
}

func TestMonthRange(t *testing.T) {
	from, to, ok := MonthRange("2026-02")
	if !ok {
		t.Fatal("MonthRange() ok = false, want true")
	}
	if from != "2026-02-01" || to != "2026-02-28" {
		t.Errorf("MonthRange() = (%s, %s), want (2026-02-01, 2026-02-28)", from, to)
	}
}

func TestMonthRange_InvalidMonth(t *testing.T) {
	if _, _, ok := MonthRange("not-a-month"); ok {
		t.Error("MonthRange() ok = true for invalid input, want false")
	}
}

func TestBuildCalendar_StreaksAndXP(t *testing.T) {
	userID := uuid.New()
	sessions := []dailysession.Aggregate{
		{UserID: userID, SessionDate: "2026-02-01", MinutesTotal: 20, ReviewsSuccessful: 5, NewAyahsMemorized: 1},
		{UserID: userID, SessionDate: "2026-02-02", MinutesTotal: 10, ReviewsSuccessful: 3, NewAyahsMemorized: 0},
		// 2026-02-03 is a gap.
		{UserID: userID, SessionDate: "2026-02-04", MinutesTotal: 15, ReviewsSuccessful: 4, NewAyahsMemorized: 2},
		{UserID: userID, SessionDate: "2026-02-05", MinutesTotal: 15, ReviewsSuccessful: 4, NewAyahsMemorized: 0},
	}
	cal := BuildCalendar("2026-02-01", "2026-02-05", sessions)

	if len(cal.Days) != 5 {
		t.Fatalf("len(Days) = %d, want 5", len(cal.Days))
	}
	if cal.Days[2].Active {
		t.Error("Days[2] (2026-02-03) should be inactive")
	}
	if cal.LongestStreak != 2 {
		t.Errorf("LongestStreak = %d, want 2", cal.LongestStreak)
	}
	if cal.CurrentStreak != 2 {
		t.Errorf("CurrentStreak = %d, want 2", cal.CurrentStreak)
	}
	wantXP := XP(20, 5, 1)
	if cal.Days[0].XP != wantXP {
		t.Errorf("Days[0].XP = %d, want %d", cal.Days[0].XP, wantXP)
	}
}

func TestBuildCalendar_NoActiveDaysZeroStreak(t *testing.T) {
	cal := BuildCalendar("2026-02-01", "2026-02-03", nil)
	if cal.CurrentStreak != 0 || cal.LongestStreak != 0 {
		t.Errorf("streaks = (%d, %d), want (0, 0) with no sessions", cal.CurrentStreak, cal.LongestStreak)
	}
}
