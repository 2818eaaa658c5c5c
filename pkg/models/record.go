// Package models contains domain models for zenplan.
package models

import (
	"github.com/google/uuid"
)

// TaskRecord is one logged batch of practice attempts.
// Correct <= Solved is expected but not enforced.
type TaskRecord struct {
	ID       string `json:"id"`
	Subject  string `json:"subject"`
	TaskType string `json:"task_type"`
	Solved   uint32 `json:"solved"`
	Correct  uint32 `json:"correct"`
}

// NewTaskRecord creates a record with a fresh id.
func NewTaskRecord(subject, taskType string, solved, correct uint32) TaskRecord {
	return TaskRecord{
		ID:       uuid.NewString(),
		Subject:  subject,
		TaskType: taskType,
		Solved:   solved,
		Correct:  correct,
	}
}

// EnsureID assigns a fresh id if the record has none.
func (r *TaskRecord) EnsureID() {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
}

// ActivityPoint is the total solved count for one date. Derived, never persisted.
type ActivityPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// TotalSolved sums Solved across records.
func TotalSolved(records []TaskRecord) int {
	total := 0
	for _, r := range records {
		total += int(r.Solved)
	}
	return total
}

// TotalCorrect sums Correct across records.
func TotalCorrect(records []TaskRecord) int {
	total := 0
	for _, r := range records {
		total += int(r.Correct)
	}
	return total
}
