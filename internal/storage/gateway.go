// Package storage provides the per-date file storage for zenplan notes and task records.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/thebtf/zenplan/pkg/models"
)

// Gateway reads and writes notes and task records under a data directory.
// It holds no state besides the directory path; every call goes to disk.
type Gateway struct {
	dir string
}

// NewGateway creates a Gateway rooted at dir. The directory is created lazily.
func NewGateway(dir string) *Gateway {
	return &Gateway{dir: dir}
}

// Dir returns the configured data directory without touching the filesystem.
func (g *Gateway) Dir() string {
	return g.dir
}

// ResolveDataDirectory returns the data directory, creating it and its
// parents if missing. Repeated calls are no-ops returning the same path.
func (g *Gateway) ResolveDataDirectory() (string, error) {
	if err := os.MkdirAll(g.dir, 0750); err != nil {
		return "", fmt.Errorf("create data dir %s: %w: %w", g.dir, ErrIO, err)
	}
	return g.dir, nil
}

func (g *Gateway) path(date, ext string) (string, error) {
	stem, err := EncodeDateKey(date)
	if err != nil {
		return "", err
	}
	dir, err := g.ResolveDataDirectory()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, stem+ext), nil
}

// SaveNote writes content verbatim as the note for date, replacing any previous note.
func (g *Gateway) SaveNote(date, content string) error {
	path, err := g.path(date, NoteExt)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, []byte(content)); err != nil {
		return fmt.Errorf("save note %q: %w: %w", date, ErrIO, err)
	}
	log.Debug().Str("date", date).Int("bytes", len(content)).Msg("Note saved")
	return nil
}

// LoadNote returns the note for date, or "" if none was saved.
func (g *Gateway) LoadNote(date string) (string, error) {
	path, err := g.path(date, NoteExt)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("load note %q: %w: %w", date, ErrIO, err)
	}
	return string(data), nil
}

// SaveRecords replaces the records stored under date. A nil or empty
// slice writes an empty array.
func (g *Gateway) SaveRecords(date string, records []models.TaskRecord) error {
	path, err := g.path(date, RecordExt)
	if err != nil {
		return err
	}
	if records == nil {
		records = []models.TaskRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode records %q: %w", date, err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("save records %q: %w: %w", date, ErrIO, err)
	}
	log.Debug().Str("date", date).Int("records", len(records)).Msg("Records saved")
	return nil
}

// LoadRecords returns the records stored under date. A missing file yields
// an empty slice; a file that does not parse yields an ErrParse error.
func (g *Gateway) LoadRecords(date string) ([]models.TaskRecord, error) {
	path, err := g.path(date, RecordExt)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []models.TaskRecord{}, nil
		}
		return nil, fmt.Errorf("load records %q: %w: %w", date, ErrIO, err)
	}
	records, err := ParseRecords(data)
	if err != nil {
		return nil, fmt.Errorf("load records %q: %w", date, err)
	}
	return records, nil
}

// AppendRecord adds record to the end of the list stored under date and
// returns it with its id filled in.
func (g *Gateway) AppendRecord(date string, record models.TaskRecord) (models.TaskRecord, error) {
	if record.Solved == 0 {
		return models.TaskRecord{}, ErrEmptyRecord
	}
	records, err := g.LoadRecords(date)
	if err != nil {
		return models.TaskRecord{}, err
	}
	record.EnsureID()
	records = append(records, record)
	if err := g.SaveRecords(date, records); err != nil {
		return models.TaskRecord{}, err
	}
	return record, nil
}

// RemoveRecord deletes the record with the given id from date.
func (g *Gateway) RemoveRecord(date, id string) error {
	records, err := g.LoadRecords(date)
	if err != nil {
		return err
	}
	kept := make([]models.TaskRecord, 0, len(records))
	for _, r := range records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		return fmt.Errorf("%w: %s on %q", ErrRecordNotFound, id, date)
	}
	return g.SaveRecords(date, kept)
}

// ListDates returns the date keys of all record files, sorted.
// A missing data directory yields no dates.
func (g *Gateway) ListDates() ([]string, error) {
	entries, err := os.ReadDir(g.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list data dir: %w: %w", ErrIO, err)
	}
	dates := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if date, ok := DateKeyFromFilename(e.Name()); ok {
			dates = append(dates, date)
		}
	}
	sort.Strings(dates)
	return dates, nil
}

// ParseRecords decodes a record file body. JSON null decodes to an empty slice.
func ParseRecords(data []byte) ([]models.TaskRecord, error) {
	var records []models.TaskRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if records == nil {
		records = []models.TaskRecord{}
	}
	return records, nil
}

// writeFileAtomic writes data to a hidden temp file next to path and renames
// it into place, so readers see either the old or the new content in full.
func writeFileAtomic(path string, data []byte) error {
	dir, name := filepath.Split(path)
	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
