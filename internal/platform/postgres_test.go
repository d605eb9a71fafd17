package platform_test

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/akmalmuhammed/hifzer-backend/internal/platform"
)

// newTestDatabaseURL starts a disposable Postgres container, migrates it,
// and returns its connection string. Tests in this package call this
// rather than mocking pgx; pkg/reducer's service test carries its own
// copy of the same bootstrap, since this helper is not exported.
func newTestDatabaseURL(t *testing.T, migrationsDir string) string {
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

	if err := platform.RunMigrations(databaseURL, migrationsDir); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	return databaseURL
}

func TestNewPostgresPool_ConnectsToMigratedDatabase(t *testing.T) {
	databaseURL := newTestDatabaseURL(t, "../../migrations")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := platform.NewPostgresPool(ctx, databaseURL)
	if err != nil {
		t.Fatalf("NewPostgresPool: %v", err)
	}
	defer pool.Close()

	var count int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM ayahs`).Scan(&count); err != nil {
		t.Fatalf("querying migrated ayahs table: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected an empty freshly migrated ayahs table, got %d rows", count)
	}
}
