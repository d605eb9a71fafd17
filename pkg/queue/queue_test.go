package queue

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/akmalmuhammed/hifzer-backend/pkg/reducer"
	"github.com/akmalmuhammed/hifzer-backend/pkg/spacing"
	"github.com/akmalmuhammed/hifzer-backend/pkg/user"
)

func eligibleUser() user.User {
	u := user.NewDefault(uuid.New(), "student@example.com", time.Now())
	u.FluencyGatePassed = true
	u.RequiresPreHifz = false
	return u
}

func TestPlan_FluencyGateGuard(t *testing.T) {
	u := user.NewDefault(uuid.New(), "blocked@example.com", time.Now())
	q := Plan(u, time.Now(), nil, nil, 1, nil, 0)
	if !q.FluencyGateRequired || q.Action != ActionCompleteFluencyGate {
		t.Fatal("expected the fluency gate guard to stop planning with FLUENCY_GATE_REQUIRED")
	}
	if len(q.SabqiList) != 0 || len(q.ManzilList) != 0 {
		t.Error("expected empty queues when fluency-gate-blocked")
	}
}

func TestPlan_WarmupPassedWithNoIntroducedYesterday(t *testing.T) {
	// Open Question 2: zero introduced-yesterday items means W is empty,
	// and warm-up is vacuously passed — not pending.
	u := eligibleUser()
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	q := Plan(u, now, nil, nil, 1, nil, 0)
	if q.Warmup.Status != WarmupPassed {
		t.Errorf("Warmup.Status = %v, want passed for an empty warm-up set", q.Warmup.Status)
	}
	if !q.Sabaq.Allowed {
		t.Error("expected the sabaq task to be allowed when warm-up vacuously passes")
	}
}

func TestPlan_WarmupFailedForcesReviewOnly(t *testing.T) {
	u := eligibleUser()
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	items := []reducer.UserItemState{
		{AyahID: 10, IntroducedAt: now.AddDate(0, 0, -1), NextReviewAt: now.Add(time.Hour)},
	}
	attempts := []TodayAttempt{{ItemAyahID: 10, Success: false, ErrorsCount: 4}}
	q := Plan(u, now, items, attempts, 1, nil, 0)
	if q.Warmup.Status != WarmupFailed {
		t.Fatalf("Warmup.Status = %v, want failed", q.Warmup.Status)
	}
	if q.Mode != ModeReviewOnly {
		t.Errorf("Mode = %v, want REVIEW_ONLY after a failed warm-up", q.Mode)
	}
	if q.Sabaq.Allowed || q.Sabaq.BlockedReason != BlockedWarmupFailed {
		t.Errorf("Sabaq = %+v, want blocked by warmup_failed", q.Sabaq)
	}
}

func TestPlan_LowRetentionSelectsConsolidation(t *testing.T) {
	u := eligibleUser()
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	q := Plan(u, now, nil, nil, 0.5, nil, 0)
	if q.Mode != ModeConsolidation {
		t.Errorf("Mode = %v, want CONSOLIDATION when rolling retention is below threshold", q.Mode)
	}
	if q.Sabaq.TargetAyahs != u.DailyNewTargetAyahs/2 {
		t.Errorf("Sabaq.TargetAyahs = %d, want half the daily target under CONSOLIDATION", q.Sabaq.TargetAyahs)
	}
}

func TestPlan_DebtFreezeSelectsReviewOnly(t *testing.T) {
	u := eligibleUser()
	u.TimeBudgetMinutes = 10
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	var items []reducer.UserItemState
	for i := 0; i < 50; i++ {
		items = append(items, reducer.UserItemState{AyahID: i + 1, NextReviewAt: now.Add(-time.Hour), Tier: spacing.TierSabqi})
	}
	q := Plan(u, now, items, nil, 1, nil, 0)
	if q.Mode != ModeReviewOnly {
		t.Errorf("Mode = %v, want REVIEW_ONLY under debt freeze", q.Mode)
	}
}

func TestSabqiList_SortedByRiskComparator(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	items := []reducer.UserItemState{
		{AyahID: 1, Tier: spacing.TierSabqi, NextReviewAt: now.Add(-1 * time.Hour), Lapses: 0, DifficultyScore: 0.1},
		{AyahID: 2, Tier: spacing.TierSabqi, NextReviewAt: now.Add(-5 * time.Hour), Lapses: 0, DifficultyScore: 0.1},
		{AyahID: 3, Tier: spacing.TierManzil, NextReviewAt: now.Add(-10 * time.Hour)},
	}
	sorted := sabqiList(items, now)
	if len(sorted) != 2 {
		t.Fatalf("sabqiList() returned %d items, want 2 (MANZIL excluded)", len(sorted))
	}
	if sorted[0].AyahID != 2 {
		t.Errorf("sabqiList()[0].AyahID = %d, want 2 (most overdue first)", sorted[0].AyahID)
	}
}

func TestManzilRotation_FillerWhenShortOfTarget(t *testing.T) {
	// Open Question 1: when due MANZIL items fall short of the rotation
	// target, non-due active MANZIL items fill the remainder.
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	var items []reducer.UserItemState
	for i := 0; i < 14; i++ { // 14 active manzil items, rotationDays=7 -> target=2
		items = append(items, reducer.UserItemState{
			AyahID:       i + 1,
			Tier:         spacing.TierManzil,
			NextReviewAt: now.Add(time.Duration(i+1) * time.Hour), // none due
		})
	}
	result := manzilRotation(items, now, 7)
	if len(result) != 2 {
		t.Errorf("manzilRotation() returned %d items, want target=2 filled with non-due items", len(result))
	}
}

func TestManzilRotation_DueItemsSufficeWithoutFiller(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	items := []reducer.UserItemState{
		{AyahID: 1, Tier: spacing.TierManzil, NextReviewAt: now.Add(-time.Hour)},
		{AyahID: 2, Tier: spacing.TierManzil, NextReviewAt: now.Add(-time.Hour)},
	}
	result := manzilRotation(items, now, 30) // target = ceil(2/30) = 1
	if len(result) != 2 {
		t.Errorf("manzilRotation() returned %d items, want all due items returned (|D| >= t)", len(result))
	}
}

func TestLinkRepairRecommended(t *testing.T) {
	u := eligibleUser()
	now := time.Now()
	q := Plan(u, now, nil, nil, 1, nil, 6)
	if !q.LinkRepairRecommended {
		t.Error("expected link_repair_recommended with more than 5 weak transitions")
	}
	q = Plan(u, now, nil, nil, 1, nil, 5)
	if q.LinkRepairRecommended {
		t.Error("expected link_repair_recommended false at exactly 5 weak transitions")
	}
}
