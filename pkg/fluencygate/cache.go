package fluencygate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

// candidateCacheTTL is how long a user's candidate-page list is cached
// before the next start() call re-scans the corpus.
const candidateCacheTTL = 10 * time.Minute

func candidateCacheKey(userID uuid.UUID) string {
	return "fluencygate:candidates:" + userID.String()
}

// CandidatePageSource looks up the pages a user has not yet memorized.
// *ayah.Store satisfies this.
type CandidatePageSource interface {
	CandidatePages(ctx context.Context, userID uuid.UUID) ([]int, error)
	MaxPageNumber(ctx context.Context) (int, error)
}

// PageCache wraps a CandidatePageSource with a Redis hot path, circuit
// breaker protected, so that repeated start() calls don't each re-scan
// user_item_states against every seeded page. A broken circuit or a cache
// miss falls through to the database; Redis is an accelerator here, never
// the source of truth.
type PageCache struct {
	rdb     *redis.Client
	breaker *gobreaker.CircuitBreaker
	source  CandidatePageSource
	logger  *slog.Logger
}

func NewPageCache(rdb *redis.Client, source CandidatePageSource, logger *slog.Logger) *PageCache {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "fluencygate-page-cache",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &PageCache{rdb: rdb, breaker: breaker, source: source, logger: logger}
}

// RandomCandidatePage returns a random page the user has not yet
// memorized, preferring a cached candidate list over a fresh table scan.
func (c *PageCache) RandomCandidatePage(ctx context.Context, userID uuid.UUID) (int, error) {
	pages := c.readCache(ctx, userID)
	if pages == nil {
		fresh, err := c.source.CandidatePages(ctx, userID)
		if err != nil {
			return 0, err
		}
		pages = fresh
		c.writeCache(ctx, userID, pages)
	}

	if len(pages) == 0 {
		max, err := c.source.MaxPageNumber(ctx)
		if err != nil {
			return 0, err
		}
		if max == 0 {
			return 0, errors.New("fluencygate: ayah corpus not seeded")
		}
		//nolint:gosec // non-cryptographic selection among candidate pages
		return rand.Intn(max) + 1, nil
	}

	//nolint:gosec // non-cryptographic selection among candidate pages
	return pages[rand.Intn(len(pages))], nil
}

// readCache returns the cached candidate list, or nil on a cache miss,
// breaker trip, or decode failure — any of which falls through to the DB.
func (c *PageCache) readCache(ctx context.Context, userID uuid.UUID) []int {
	result, err := c.breaker.Execute(func() (any, error) {
		val, err := c.rdb.Get(ctx, candidateCacheKey(userID)).Result()
		if err != nil {
			return nil, err
		}
		var pages []int
		if err := json.Unmarshal([]byte(val), &pages); err != nil {
			return nil, err
		}
		return pages, nil
	})
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("fluency gate page cache read failed, falling back to database", "error", err)
		}
		return nil
	}
	pages, _ := result.([]int)
	return pages
}

// writeCache warms the cache after a DB scan. Failures are logged, not
// propagated: the cache is an optimization, not a write the caller needs.
func (c *PageCache) writeCache(ctx context.Context, userID uuid.UUID, pages []int) {
	encoded, err := json.Marshal(pages)
	if err != nil {
		return
	}
	if _, err := c.breaker.Execute(func() (any, error) {
		return nil, c.rdb.Set(ctx, candidateCacheKey(userID), encoded, candidateCacheTTL).Err()
	}); err != nil {
		c.logger.Warn("fluency gate page cache write failed", "error", err)
	}
}
