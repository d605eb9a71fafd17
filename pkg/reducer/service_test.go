package reducer_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/akmalmuhammed/hifzer-backend/internal/platform"
	"github.com/akmalmuhammed/hifzer-backend/pkg/ayah"
	"github.com/akmalmuhammed/hifzer-backend/pkg/reducer"
	"github.com/akmalmuhammed/hifzer-backend/pkg/review"
	"github.com/akmalmuhammed/hifzer-backend/pkg/transition"
	"github.com/akmalmuhammed/hifzer-backend/pkg/user"
)

// newTestPool starts a disposable, migrated Postgres container and returns
// a connected pool. The reducer's advisory-lock serialization can only be
// observed against a real database, not a mock.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("hifzer_test"),
		postgres.WithUsername("hifzer"),
		postgres.WithPassword("hifzer"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Skipf("skipping: could not start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminating postgres container: %v", err)
		}
	})

	databaseURL, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("getting connection string: %v", err)
	}
	if err := platform.RunMigrations(databaseURL, "../../migrations"); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	pool, err := platform.NewPostgresPool(ctx, databaseURL)
	if err != nil {
		t.Fatalf("connecting pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func seedUserAndAyah(t *testing.T, pool *pgxpool.Pool) (uuid.UUID, int) {
	t.Helper()
	ctx := context.Background()

	users := user.NewStore(pool)
	identity, err := users.FindOrCreateByEmail(ctx, uuid.NewString()+"@example.com")
	if err != nil {
		t.Fatalf("provisioning user: %v", err)
	}

	ayahs := ayah.NewStore(pool)
	a := ayah.Ayah{ID: 1, SurahNumber: 1, AyahNumber: 1, JuzNumber: 1, PageNumber: 1, HizbQuarter: 1, TextUthmani: "bismillah"}
	if err := ayahs.InsertAll(ctx, []ayah.Ayah{a}); err != nil {
		t.Fatalf("seeding ayah: %v", err)
	}

	return identity.UserID, a.ID
}

func reviewAttemptEvent(userID uuid.UUID, ayahID int, clientEventID uuid.UUID, occurredAt time.Time) review.Event {
	tier := review.TierSabaq
	step := review.StepExposure
	success := true
	errorsCount := 0
	duration := 20
	return review.Event{
		ID:            uuid.New(),
		UserID:        userID,
		Type:          review.EventReviewAttempted,
		ClientEventID: clientEventID,
		OccurredAt:    occurredAt,
		ReceivedAt:    occurredAt,

		ItemAyahID:      &ayahID,
		ReviewTier:      &tier,
		StepType:        &step,
		AttemptNumber:   intPtr(1),
		Success:         &success,
		ErrorsCount:     &errorsCount,
		DurationSeconds: &duration,
	}
}

func intPtr(v int) *int { return &v }

func TestService_Ingest_DeduplicatesByClientEventID(t *testing.T) {
	pool := newTestPool(t)
	userID, ayahID := seedUserAndAyah(t, pool)

	svc := reducer.NewService(pool, review.NewStore(pool), reducer.NewStore(pool), transition.NewStore(pool))

	clientEventID := uuid.New()
	e := reviewAttemptEvent(userID, ayahID, clientEventID, time.Now().UTC())

	first, err := svc.Ingest(context.Background(), e)
	if err != nil {
		t.Fatalf("first Ingest: %v", err)
	}
	if first.Deduplicated {
		t.Fatalf("expected first ingest to be new, got deduplicated")
	}

	e.ID = uuid.New()
	second, err := svc.Ingest(context.Background(), e)
	if err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if !second.Deduplicated {
		t.Fatalf("expected second ingest with same clientEventId to be deduplicated")
	}
	if second.EventID != first.EventID {
		t.Fatalf("deduplicated ingest returned a different event id: %v != %v", second.EventID, first.EventID)
	}

	store := reducer.NewStore(pool)
	state, err := store.Get(context.Background(), userID, ayahID)
	if err != nil {
		t.Fatalf("reading item state: %v", err)
	}
	if state.TotalReviews != 1 {
		t.Fatalf("expected exactly one recorded review, got %d", state.TotalReviews)
	}
}

func TestService_Ingest_SerializesConcurrentAttemptsForSameItem(t *testing.T) {
	pool := newTestPool(t)
	userID, ayahID := seedUserAndAyah(t, pool)

	svc := reducer.NewService(pool, review.NewStore(pool), reducer.NewStore(pool), transition.NewStore(pool))

	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	now := time.Now().UTC()

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e := reviewAttemptEvent(userID, ayahID, uuid.New(), now.Add(time.Duration(i)*time.Second))
			if _, err := svc.Ingest(context.Background(), e); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent Ingest: %v", err)
	}

	store := reducer.NewStore(pool)
	state, err := store.Get(context.Background(), userID, ayahID)
	if err != nil {
		t.Fatalf("reading item state: %v", err)
	}
	if state.TotalReviews != attempts {
		t.Fatalf("expected %d recorded reviews after serialized concurrent ingest, got %d", attempts, state.TotalReviews)
	}
}
