// Package activity derives activity logs and statistics from stored task records.
package activity

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/thebtf/zenplan/internal/storage"
	"github.com/thebtf/zenplan/pkg/models"
)

// Aggregator scans a data directory and sums solved counts per date.
// Nothing is cached: every call re-reads every record file.
type Aggregator struct {
	dir string
}

// NewAggregator creates an Aggregator over the given data directory.
func NewAggregator(dir string) *Aggregator {
	return &Aggregator{dir: dir}
}

// ActivityLog returns one point per date whose records sum to a positive
// solved count, in directory-listing order. Files that cannot be read or
// parsed are skipped so one corrupt day does not hide the rest.
func (a *Aggregator) ActivityLog(ctx context.Context) ([]models.ActivityPoint, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []models.ActivityPoint{}, nil
		}
		return nil, fmt.Errorf("scan data dir: %w: %w", storage.ErrIO, err)
	}

	points := make([]models.ActivityPoint, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}
		date, ok := storage.DateKeyFromFilename(entry.Name())
		if !ok {
			continue
		}

		path := filepath.Join(a.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("Skipping unreadable record file")
			continue
		}
		records, err := storage.ParseRecords(data)
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("Skipping malformed record file")
			continue
		}

		if total := models.TotalSolved(records); total > 0 {
			points = append(points, models.ActivityPoint{Date: date, Count: total})
		}
	}
	return points, nil
}
