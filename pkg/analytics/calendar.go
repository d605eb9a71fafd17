// Package analytics implements the read-only derived views (C10):
// calendar, achievements, progress, and the stats overview. The
// derivation functions are pure over data owned by other components and
// return empty collections rather than erroring on empty input; the HTTP
// handlers respond 500 when a backing store read fails.
package analytics

import (
	"time"

	"github.com/akmalmuhammed/hifzer-backend/pkg/dailysession"
	"github.com/akmalmuhammed/hifzer-backend/pkg/timeid"
)

const dayLayout = "2006-01-02"

// CalendarDay is one day's entry in the monthly calendar view.
type CalendarDay struct {
	Date              string
	Active            bool
	MinutesTotal      int
	ReviewsSuccessful int
	NewAyahsMemorized int
	XP                int
}

// Calendar is the full month view plus the streak computed from it.
type Calendar struct {
	Days          []CalendarDay
	CurrentStreak int
	LongestStreak int
}

// XP computes a day's experience points from its rollup.
func XP(minutesTotal, reviewsSuccessful, newAyahsMemorized int) int {
	return minutesTotal*2 + reviewsSuccessful + newAyahsMemorized*10
}

// BuildCalendar derives a CalendarDay for every UTC day in [fromDate,
// toDate] (inclusive, YYYY-MM-DD), sourced from the rollups present in
// sessions, and the streak lengths over consecutive active days.
func BuildCalendar(fromDate, toDate string, sessions []dailysession.Aggregate) Calendar {
	byDate := make(map[string]dailysession.Aggregate, len(sessions))
	for _, s := range sessions {
		byDate[s.SessionDate] = s
	}

	var days []CalendarDay
	for _, date := range datesInRange(fromDate, toDate) {
		agg, active := byDate[date]
		day := CalendarDay{Date: date, Active: active}
		if active {
			day.MinutesTotal = agg.MinutesTotal
			day.ReviewsSuccessful = agg.ReviewsSuccessful
			day.NewAyahsMemorized = agg.NewAyahsMemorized
			day.XP = XP(agg.MinutesTotal, agg.ReviewsSuccessful, agg.NewAyahsMemorized)
		}
		days = append(days, day)
	}

	current, longest := streaks(days)
	return Calendar{Days: days, CurrentStreak: current, LongestStreak: longest}
}

// MonthRange returns the first and last day (YYYY-MM-DD) of a "YYYY-MM"
// month string. Falls back to an empty range on a malformed month.
func MonthRange(month string) (fromDate, toDate string, ok bool) {
	first, err := time.Parse("2006-01", month)
	if err != nil {
		return "", "", false
	}
	last := first.AddDate(0, 1, 0).AddDate(0, 0, -1)
	return first.Format(dayLayout), last.Format(dayLayout), true
}

func datesInRange(fromDate, toDate string) []string {
	from, err1 := time.Parse(dayLayout, fromDate)
	to, err2 := time.Parse(dayLayout, toDate)
	if err1 != nil || err2 != nil || to.Before(from) {
		return nil
	}
	var out []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, timeid.UTCDayString(d))
	}
	return out
}

func streaks(days []CalendarDay) (current, longest int) {
	run := 0
	for _, d := range days {
		if d.Active {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	for i := len(days) - 1; i >= 0; i-- {
		if !days[i].Active {
			break
		}
		current++
	}
	return current, longest
}
