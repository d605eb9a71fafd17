package fluencygate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akmalmuhammed/hifzer-backend/pkg/ayah"
	"github.com/akmalmuhammed/hifzer-backend/pkg/user"
)

// AyahLister returns the ayahs on a page. *ayah.Store satisfies this.
type AyahLister interface {
	ListByPage(ctx context.Context, pageNumber int) ([]ayah.Ayah, error)
}

// UserFluencyUpdater applies a submitted gate result to a user. *user.Store
// satisfies this.
type UserFluencyUpdater interface {
	ApplyFluencyGateResult(ctx context.Context, id uuid.UUID, score int, passed bool) (user.User, error)
}

// Service implements the fluency gate's start/submit lifecycle.
type Service struct {
	tests  *Store
	pages  *PageCache
	ayahs  AyahLister
	users  UserFluencyUpdater
}

func NewService(tests *Store, pages *PageCache, ayahs AyahLister, users UserFluencyUpdater) *Service {
	return &Service{tests: tests, pages: pages, ayahs: ayahs, users: users}
}

// Start chooses a candidate page for userID, creates its IN_PROGRESS test,
// and returns the test with the page's ayahs populated.
func (s *Service) Start(ctx context.Context, userID uuid.UUID, now time.Time) (Test, error) {
	pageNumber, err := s.pages.RandomCandidatePage(ctx, userID)
	if err != nil {
		return Test{}, fmt.Errorf("choosing candidate page: %w", err)
	}

	ayahs, err := s.ayahs.ListByPage(ctx, pageNumber)
	if err != nil {
		return Test{}, fmt.Errorf("listing page ayahs: %w", err)
	}
	ayahIDs := make([]int, len(ayahs))
	for i, a := range ayahs {
		ayahIDs[i] = a.ID
	}

	return s.tests.Create(ctx, userID, pageNumber, ayahIDs, now)
}

// ErrTestNotSubmittable is returned when a submit targets a test that
// does not exist or is no longer IN_PROGRESS.
var ErrTestNotSubmittable = fmt.Errorf("fluencygate: test not found or already submitted")

// Submit scores a submission, transitions the test, and applies the
// result to the user's fluency flags.
func (s *Service) Submit(ctx context.Context, testID uuid.UUID, durationSeconds, errorCount int, now time.Time) (Test, error) {
	score := Score(durationSeconds, errorCount)
	passed := Passed(score)

	t, err := s.tests.Submit(ctx, testID, score, passed, now)
	if err != nil {
		return Test{}, ErrTestNotSubmittable
	}

	if _, err := s.users.ApplyFluencyGateResult(ctx, t.UserID, score, passed); err != nil {
		return Test{}, fmt.Errorf("applying fluency gate result to user: %w", err)
	}

	return t, nil
}
