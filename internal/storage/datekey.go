package storage

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// NoteExt is the extension of free-text note files.
	NoteExt = ".md"

	// RecordExt is the extension of task record files.
	RecordExt = ".json"
)

// EncodeDateKey maps a date key to a filename stem. The mapping is
// path-segment escaping, so distinct keys never share a file and no
// key can climb out of the data directory.
func EncodeDateKey(date string) (string, error) {
	if date == "" || date == "." || date == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	stem := url.PathEscape(date)
	// PathEscape leaves a leading dot alone; hidden files are reserved for temp writes.
	if strings.HasPrefix(stem, ".") {
		stem = "%2E" + stem[1:]
	}
	return stem, nil
}

// DecodeDateKey reverses EncodeDateKey. Stems that are not valid escapes
// (files written by hand or by older builds) are returned unchanged.
func DecodeDateKey(stem string) string {
	date, err := url.PathUnescape(stem)
	if err != nil {
		return stem
	}
	return date
}

// DateKeyFromFilename returns the date key of a record file name, or false
// if the name is not a record file.
func DateKeyFromFilename(name string) (string, bool) {
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, RecordExt) {
		return "", false
	}
	stem := strings.TrimSuffix(name, RecordExt)
	if stem == "" {
		return "", false
	}
	return DecodeDateKey(stem), true
}
