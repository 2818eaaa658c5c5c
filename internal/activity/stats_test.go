package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thebtf/zenplan/pkg/models"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		records []models.TaskRecord
		want    models.DayStats
	}{
		{
			name: "no records",
			want: models.DayStats{},
		},
		{
			name:    "rounds half up",
			records: []models.TaskRecord{{Solved: 8, Correct: 1}},
			want:    models.DayStats{Solved: 8, Correct: 1, Accuracy: 13},
		},
		{
			name:    "rounds down",
			records: []models.TaskRecord{{Solved: 3, Correct: 1}},
			want:    models.DayStats{Solved: 3, Correct: 1, Accuracy: 33},
		},
		{
			name:    "sums across records",
			records: []models.TaskRecord{{Solved: 30, Correct: 25}, {Solved: 10, Correct: 8}},
			want:    models.DayStats{Solved: 40, Correct: 33, Accuracy: 83},
		},
		{
			name:    "correct above solved is not clamped",
			records: []models.TaskRecord{{Solved: 2, Correct: 3}},
			want:    models.DayStats{Solved: 2, Correct: 3, Accuracy: 150},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.records))
		})
	}
}

func TestGroupings(t *testing.T) {
	records := []models.TaskRecord{
		{Subject: "Информатика", TaskType: "Тип 1", Solved: 20, Correct: 15},
		{Subject: "Математика", TaskType: "Тип 13", Solved: 4, Correct: 1},
		{Subject: "Информатика", TaskType: "Тип 13", Solved: 16, Correct: 17},
	}

	assert.Equal(t, []models.GroupStats{
		{Name: "Информатика", DayStats: models.DayStats{Solved: 36, Correct: 32, Accuracy: 89}},
		{Name: "Математика", DayStats: models.DayStats{Solved: 4, Correct: 1, Accuracy: 25}},
	}, BySubject(records))

	assert.Equal(t, []models.GroupStats{
		{Name: "Тип 1", DayStats: models.DayStats{Solved: 20, Correct: 15, Accuracy: 75}},
		{Name: "Тип 13", DayStats: models.DayStats{Solved: 20, Correct: 18, Accuracy: 90}},
	}, ByTaskType(records))

	assert.Empty(t, BySubject(nil))
}

func TestReport(t *testing.T) {
	records := []models.TaskRecord{{Subject: "Физика", TaskType: "№ 1", Solved: 5, Correct: 4}}

	report := Report("2025-10-19", records)
	assert.Equal(t, "2025-10-19", report.Date)
	assert.Equal(t, models.DayStats{Solved: 5, Correct: 4, Accuracy: 80}, report.Total)
	assert.Len(t, report.BySubject, 1)
	assert.Len(t, report.ByTaskType, 1)
}
