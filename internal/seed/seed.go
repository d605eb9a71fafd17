// Package seed loads the static 6236-row ayah reference corpus from a CSV
// file into the database. It is idempotent: if the corpus is already
// fully seeded it logs a message and returns nil.
package seed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akmalmuhammed/hifzer-backend/pkg/ayah"
)

// ExpectedAyahCount is the size of the full Qur'an corpus.
const ExpectedAyahCount = 6236

// Run reads csvPath and bulk-inserts its rows into the ayahs table.
// csvPath columns: id,surah_number,ayah_number,juz_number,page_number,hizb_quarter,text_uthmani
func Run(ctx context.Context, pool *pgxpool.Pool, csvPath string, logger *slog.Logger) error {
	store := ayah.NewStore(pool)

	count, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("checking existing ayah count: %w", err)
	}
	if count >= ExpectedAyahCount {
		logger.Info("seed: ayah corpus already loaded, skipping", "count", count)
		return nil
	}

	rows, err := readAyahCSV(csvPath)
	if err != nil {
		return fmt.Errorf("reading ayah corpus: %w", err)
	}

	if err := store.InsertAll(ctx, rows); err != nil {
		return fmt.Errorf("inserting ayah corpus: %w", err)
	}

	logger.Info("seed: loaded ayah corpus", "rows", len(rows), "path", csvPath)
	return nil
}

func readAyahCSV(path string) ([]ayah.Ayah, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 7

	// Skip the header row.
	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	var rows []ayah.Ayah
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", len(rows)+2, err)
		}

		a, err := parseAyahRow(record)
		if err != nil {
			return nil, fmt.Errorf("parsing row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, a)
	}

	return rows, nil
}

func parseAyahRow(record []string) (ayah.Ayah, error) {
	id, err := strconv.Atoi(record[0])
	if err != nil {
		return ayah.Ayah{}, fmt.Errorf("id: %w", err)
	}
	surah, err := strconv.Atoi(record[1])
	if err != nil {
		return ayah.Ayah{}, fmt.Errorf("surah_number: %w", err)
	}
	ayahNumber, err := strconv.Atoi(record[2])
	if err != nil {
		return ayah.Ayah{}, fmt.Errorf("ayah_number: %w", err)
	}
	juz, err := strconv.Atoi(record[3])
	if err != nil {
		return ayah.Ayah{}, fmt.Errorf("juz_number: %w", err)
	}
	page, err := strconv.Atoi(record[4])
	if err != nil {
		return ayah.Ayah{}, fmt.Errorf("page_number: %w", err)
	}
	hizbQuarter, err := strconv.Atoi(record[5])
	if err != nil {
		return ayah.Ayah{}, fmt.Errorf("hizb_quarter: %w", err)
	}

	return ayah.Ayah{
		ID:          id,
		SurahNumber: surah,
		AyahNumber:  ayahNumber,
		JuzNumber:   juz,
		PageNumber:  page,
		HizbQuarter: hizbQuarter,
		TextUthmani: record[6],
	}, nil
}
