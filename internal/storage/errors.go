package storage

import "errors"

var (
	// ErrIO wraps filesystem failures: directory creation, reads and writes.
	ErrIO = errors.New("storage i/o error")

	// ErrParse is returned when a record file exists but is not a valid record array.
	ErrParse = errors.New("malformed record file")

	// ErrInvalidDate is returned for date keys that cannot name a file.
	ErrInvalidDate = errors.New("invalid date key")

	// ErrRecordNotFound is returned by RemoveRecord when no record has the given id.
	ErrRecordNotFound = errors.New("record not found")

	// ErrEmptyRecord is returned by AppendRecord for records with nothing solved.
	ErrEmptyRecord = errors.New("record has zero solved tasks")
)
