package ayah

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/akmalmuhammed/hifzer-backend/internal/db"
)

// Store provides read access to the ayah reference table and the bulk
// insert used by the one-time corpus seed.
type Store struct {
	dbtx db.DBTX
}

// NewStore creates an ayah Store backed by the given database handle.
func NewStore(dbtx db.DBTX) *Store {
	return &Store{dbtx: dbtx}
}

const ayahColumns = `id, surah_number, ayah_number, juz_number, page_number, hizb_quarter, text_uthmani`

func scanAyah(row interface {
	Scan(dest ...any) error
}) (Ayah, error) {
	var a Ayah
	err := row.Scan(&a.ID, &a.SurahNumber, &a.AyahNumber, &a.JuzNumber, &a.PageNumber, &a.HizbQuarter, &a.TextUthmani)
	return a, err
}

// Count returns the number of seeded ayah rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.dbtx.QueryRow(ctx, `SELECT count(*) FROM ayahs`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting ayahs: %w", err)
	}
	return count, nil
}

// Get returns a single ayah by id.
func (s *Store) Get(ctx context.Context, id int) (Ayah, error) {
	query := `SELECT ` + ayahColumns + ` FROM ayahs WHERE id = $1`
	return scanAyah(s.dbtx.QueryRow(ctx, query, id))
}

// ListByPage returns every ayah on the given page, ordered by ayah id.
func (s *Store) ListByPage(ctx context.Context, pageNumber int) ([]Ayah, error) {
	query := `SELECT ` + ayahColumns + ` FROM ayahs WHERE page_number = $1 ORDER BY id`
	rows, err := s.dbtx.Query(ctx, query, pageNumber)
	if err != nil {
		return nil, fmt.Errorf("listing ayahs for page %d: %w", pageNumber, err)
	}
	defer rows.Close()

	var out []Ayah
	for rows.Next() {
		a, err := scanAyah(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ayah row: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// MaxPageNumber returns the highest seeded page number (up to 604).
func (s *Store) MaxPageNumber(ctx context.Context) (int, error) {
	var max int
	err := s.dbtx.QueryRow(ctx, `SELECT coalesce(max(page_number), 0) FROM ayahs`).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("reading max page number: %w", err)
	}
	return max, nil
}

// CandidatePages returns every page number the given user has not yet
// memorized (no MEMORIZED UserItemState on any ayah of that page). This is
// the slow, full-scan query the fluency-gate page cache exists to shield.
func (s *Store) CandidatePages(ctx context.Context, userID uuid.UUID) ([]int, error) {
	query := `
		SELECT page_number FROM ayahs a
		WHERE NOT EXISTS (
			SELECT 1 FROM user_item_states s
			WHERE s.user_id = $1 AND s.ayah_id = a.id AND s.status = 'MEMORIZED'
		)
		GROUP BY page_number`
	rows, err := s.dbtx.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing candidate pages: %w", err)
	}
	defer rows.Close()

	var pages []int
	for rows.Next() {
		var p int
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning candidate page: %w", err)
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// RandomUnmemorizedPage returns a page number the given user has not yet
// memorized, chosen uniformly at random. If every page has been touched,
// it falls back to any page.
func (s *Store) RandomUnmemorizedPage(ctx context.Context, userID uuid.UUID) (int, error) {
	pages, err := s.CandidatePages(ctx, userID)
	if err != nil {
		return 0, err
	}

	if len(pages) == 0 {
		max, err := s.MaxPageNumber(ctx)
		if err != nil {
			return 0, err
		}
		if max == 0 {
			return 0, fmt.Errorf("ayah corpus not seeded")
		}
		//nolint:gosec // non-cryptographic selection among candidate pages
		return rand.Intn(max) + 1, nil
	}

	//nolint:gosec // non-cryptographic selection among candidate pages
	return pages[rand.Intn(len(pages))], nil
}

// InsertAll bulk-inserts the seed corpus; used only by internal/seed.
func (s *Store) InsertAll(ctx context.Context, rows []Ayah) error {
	for _, a := range rows {
		_, err := s.dbtx.Exec(ctx, `
			INSERT INTO ayahs (id, surah_number, ayah_number, juz_number, page_number, hizb_quarter, text_uthmani)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO NOTHING`,
			a.ID, a.SurahNumber, a.AyahNumber, a.JuzNumber, a.PageNumber, a.HizbQuarter, a.TextUthmani,
		)
		if err != nil {
			return fmt.Errorf("inserting ayah %d: %w", a.ID, err)
		}
	}
	return nil
}
