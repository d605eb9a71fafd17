// Package queue implements the today-queue planner (C7): the nine-step
// derivation of a user's daily review/new-item plan from their item
// states, recent session history, and transition scores.
package queue

import (
	"math"
	"sort"
	"time"

	"github.com/akmalmuhammed/hifzer-backend/pkg/reducer"
	"github.com/akmalmuhammed/hifzer-backend/pkg/spacing"
	"github.com/akmalmuhammed/hifzer-backend/pkg/timeid"
	"github.com/akmalmuhammed/hifzer-backend/pkg/transition"
	"github.com/akmalmuhammed/hifzer-backend/pkg/user"
)

// Mode is the session mode selected for the day.
type Mode string

const (
	ModeNormal       Mode = "NORMAL"
	ModeConsolidation Mode = "CONSOLIDATION"
	ModeReviewOnly   Mode = "REVIEW_ONLY"
)

// WarmupStatus is the outcome of warm-up evaluation.
type WarmupStatus string

const (
	WarmupPassed  WarmupStatus = "passed"
	WarmupFailed  WarmupStatus = "failed"
	WarmupPending WarmupStatus = "pending"
)

// BlockedReason explains why the sabaq (new-item) task is disallowed.
type BlockedReason string

const (
	BlockedNone           BlockedReason = "none"
	BlockedWarmupFailed   BlockedReason = "warmup_failed"
	BlockedModeReviewOnly BlockedReason = "mode_review_only"
	BlockedWarmupPending  BlockedReason = "warmup_pending"
)

// Action is returned when the fluency gate guard stops planning early.
const ActionCompleteFluencyGate = "COMPLETE_FLUENCY_GATE"

// DebtMetrics summarizes the user's due-item backlog.
type DebtMetrics struct {
	DueCount               int
	EarliestDueAt          time.Time
	BacklogMinutesEstimate int
	OverdueDaysMax         int
	FreezeThresholdMinutes int
}

// Warmup is the result of step 3's warm-up evaluation.
type Warmup struct {
	Status  WarmupStatus
	Passed  []int
	Failed  []int
	Pending []int
}

// SabaqTask is the day's new-item task.
type SabaqTask struct {
	TargetAyahs   int
	Allowed       bool
	BlockedReason BlockedReason
}

// TodayQueue is the full planner output.
type TodayQueue struct {
	FluencyGateRequired bool
	Action              string

	Debt             DebtMetrics
	Warmup           Warmup
	RetentionRolling7d float64
	Mode             Mode

	SabqiList     []reducer.UserItemState
	ManzilList    []reducer.UserItemState
	WeakTransitions []transition.Score
	LinkRepairRecommended bool

	Sabaq SabaqTask
}

// Plan runs the full nine-step derivation. items is every UserItemState
// for the user; attemptsToday is every REVIEW_ATTEMPTED event whose
// occurredAt falls within today's UTC day (used for warm-up evaluation);
// retentionRolling7d is the caller-computed mean DailySession retention
// over the trailing seven UTC days (default 1 with no sessions, per the
// daily-rollup component); weakTransitions/weakCount come from the
// transition-score store.
func Plan(u user.User, now time.Time, items []reducer.UserItemState, attemptsToday []TodayAttempt, retentionRolling7d float64, weakTransitions []transition.Score, weakCount int) TodayQueue {
	if u.RequiresPreHifz || !u.FluencyGatePassed {
		return TodayQueue{FluencyGateRequired: true, Action: ActionCompleteFluencyGate}
	}

	debt := computeDebt(u, now, items)
	warmup := evaluateWarmup(items, attemptsToday, now)
	mode := selectMode(u, debt, warmup, retentionRolling7d)

	sabqi := sabqiList(items, now)
	manzil := manzilRotation(items, now, u.ManzilRotationDays)

	linkRepair := weakCount > 5
	if len(weakTransitions) > 10 {
		weakTransitions = weakTransitions[:10]
	}

	sabaq := sabaqTask(u, mode, warmup)

	return TodayQueue{
		Debt:                  debt,
		Warmup:                warmup,
		RetentionRolling7d:    retentionRolling7d,
		Mode:                  mode,
		SabqiList:             sabqi,
		ManzilList:            manzil,
		WeakTransitions:       weakTransitions,
		LinkRepairRecommended: linkRepair,
		Sabaq:                 sabaq,
	}
}

// TodayAttempt is the minimal projection of a REVIEW_ATTEMPTED event the
// warm-up evaluator needs.
type TodayAttempt struct {
	ItemAyahID  int
	Success     bool
	ErrorsCount int
}

func computeDebt(u user.User, now time.Time, items []reducer.UserItemState) DebtMetrics {
	var due []reducer.UserItemState
	for _, it := range items {
		if !it.NextReviewAt.After(now) {
			due = append(due, it)
		}
	}

	var earliest time.Time
	for i, it := range due {
		if i == 0 || it.NextReviewAt.Before(earliest) {
			earliest = it.NextReviewAt
		}
	}

	overdueDaysMax := 0
	if len(due) > 0 && !earliest.After(now) {
		overdueDaysMax = int(now.Sub(earliest).Hours() / 24)
	}

	backlogMinutes := int(math.Ceil(float64(len(due)) * float64(u.AvgSecondsPerItem) / 60.0))
	freezeThreshold := int(math.Floor(float64(u.TimeBudgetMinutes) * u.BacklogFreezeRatio))

	return DebtMetrics{
		DueCount:               len(due),
		EarliestDueAt:          earliest,
		BacklogMinutesEstimate: backlogMinutes,
		OverdueDaysMax:         overdueDaysMax,
		FreezeThresholdMinutes: freezeThreshold,
	}
}

func evaluateWarmup(items []reducer.UserItemState, attemptsToday []TodayAttempt, now time.Time) Warmup {
	yesterdayStart := timeid.StartOfUTCDay(now.AddDate(0, 0, -1))
	todayStart := timeid.StartOfUTCDay(now)

	introducedYesterday := map[int]bool{}
	for _, it := range items {
		if !it.IntroducedAt.Before(yesterdayStart) && it.IntroducedAt.Before(todayStart) {
			introducedYesterday[it.AyahID] = true
		}
	}

	attemptsByAyah := map[int][]TodayAttempt{}
	for _, a := range attemptsToday {
		if introducedYesterday[a.ItemAyahID] {
			attemptsByAyah[a.ItemAyahID] = append(attemptsByAyah[a.ItemAyahID], a)
		}
	}

	var passed, failed, pending []int
	for ayahID := range introducedYesterday {
		attempts, ok := attemptsByAyah[ayahID]
		if !ok {
			pending = append(pending, ayahID)
			continue
		}
		hasPass := false
		for _, a := range attempts {
			if a.Success && a.ErrorsCount <= 1 {
				hasPass = true
				break
			}
		}
		if hasPass {
			passed = append(passed, ayahID)
		} else {
			failed = append(failed, ayahID)
		}
	}
	sort.Ints(passed)
	sort.Ints(failed)
	sort.Ints(pending)

	status := WarmupPassed
	switch {
	case len(failed) > 0:
		status = WarmupFailed
	case len(pending) > 0:
		status = WarmupPending
	}

	return Warmup{Status: status, Passed: passed, Failed: failed, Pending: pending}
}

func selectMode(u user.User, debt DebtMetrics, warmup Warmup, retentionRolling7d float64) Mode {
	debtFreeze := debt.BacklogMinutesEstimate > debt.FreezeThresholdMinutes || debt.OverdueDaysMax > 2
	switch {
	case debtFreeze || warmup.Status == WarmupFailed:
		return ModeReviewOnly
	case retentionRolling7d < u.RetentionThreshold:
		return ModeConsolidation
	default:
		return ModeNormal
	}
}

// riskLess orders two due items by the risk comparator: larger overdue
// seconds first, then more lapses, then higher difficulty, then larger
// lastErrorsCount.
func riskLess(a, b reducer.UserItemState, now time.Time) bool {
	overdueA := now.Sub(a.NextReviewAt)
	overdueB := now.Sub(b.NextReviewAt)
	if overdueA != overdueB {
		return overdueA > overdueB
	}
	if a.Lapses != b.Lapses {
		return a.Lapses > b.Lapses
	}
	if a.DifficultyScore != b.DifficultyScore {
		return a.DifficultyScore > b.DifficultyScore
	}
	return a.LastErrorsCount > b.LastErrorsCount
}

func sabqiList(items []reducer.UserItemState, now time.Time) []reducer.UserItemState {
	var due []reducer.UserItemState
	for _, it := range items {
		if it.Tier != spacing.TierManzil && !it.NextReviewAt.After(now) {
			due = append(due, it)
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return riskLess(due[i], due[j], now) })
	return due
}

// manzilRotation implements step 7: a target-sized slice of MANZIL items,
// due ones first, topped up with non-due active ones when short.
func manzilRotation(items []reducer.UserItemState, now time.Time, manzilRotationDays int) []reducer.UserItemState {
	var active, due, notDue []reducer.UserItemState
	for _, it := range items {
		if it.Tier != spacing.TierManzil {
			continue
		}
		active = append(active, it)
		if !it.NextReviewAt.After(now) {
			due = append(due, it)
		} else {
			notDue = append(notDue, it)
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return riskLess(due[i], due[j], now) })
	sort.SliceStable(notDue, func(i, j int) bool { return riskLess(notDue[i], notDue[j], now) })

	days := manzilRotationDays
	if days < 1 {
		days = 1
	}
	target := int(math.Ceil(float64(len(active)) / float64(days)))
	if target < 1 {
		target = 1
	}

	if len(due) >= target {
		return due
	}

	result := due
	for _, it := range notDue {
		if len(result) >= target {
			break
		}
		result = append(result, it)
	}
	return result
}

func sabaqTask(u user.User, mode Mode, warmup Warmup) SabaqTask {
	target := u.DailyNewTargetAyahs
	switch mode {
	case ModeConsolidation:
		target = target / 2
		if target < 1 {
			target = 1
		}
	case ModeReviewOnly:
		target = 0
	}

	allowed := mode != ModeReviewOnly && warmup.Status == WarmupPassed

	reason := BlockedNone
	switch {
	case warmup.Status == WarmupFailed:
		reason = BlockedWarmupFailed
	case mode == ModeReviewOnly:
		reason = BlockedModeReviewOnly
	case warmup.Status == WarmupPending:
		reason = BlockedWarmupPending
	}

	return SabaqTask{TargetAyahs: target, Allowed: allowed, BlockedReason: reason}
}
