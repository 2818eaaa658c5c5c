package models

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaskRecord(t *testing.T) {
	a := NewTaskRecord("Физика", "№ 1", 5, 4)
	b := NewTaskRecord("Физика", "№ 1", 5, 4)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "Физика", a.Subject)
	assert.Equal(t, "№ 1", a.TaskType)
	assert.Equal(t, uint32(5), a.Solved)
	assert.Equal(t, uint32(4), a.Correct)
}

func TestEnsureID(t *testing.T) {
	r := TaskRecord{Subject: "math"}
	r.EnsureID()
	assert.NotEmpty(t, r.ID)

	r = TaskRecord{ID: "1729000000000"}
	r.EnsureID()
	assert.Equal(t, "1729000000000", r.ID)
}

func TestTaskRecord_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(TaskRecord{ID: "1", Subject: "s", TaskType: "t", Solved: 3, Correct: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1","subject":"s","task_type":"t","solved":3,"correct":2}`, string(data))
}

func TestTotals(t *testing.T) {
	records := []TaskRecord{
		{Solved: 5, Correct: 4},
		{Solved: 0, Correct: 0},
		{Solved: 3, Correct: 3},
	}
	assert.Equal(t, 8, TotalSolved(records))
	assert.Equal(t, 7, TotalCorrect(records))
	assert.Equal(t, 0, TotalSolved(nil))
}
