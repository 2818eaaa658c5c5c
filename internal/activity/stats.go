package activity

import (
	"github.com/thebtf/zenplan/pkg/models"
)

// Summarize totals a set of records. Accuracy is a rounded percentage.
func Summarize(records []models.TaskRecord) models.DayStats {
	return newStats(models.TotalSolved(records), models.TotalCorrect(records))
}

// BySubject groups records by subject in first-appearance order.
func BySubject(records []models.TaskRecord) []models.GroupStats {
	return groupBy(records, func(r models.TaskRecord) string { return r.Subject })
}

// ByTaskType groups records by task type in first-appearance order.
func ByTaskType(records []models.TaskRecord) []models.GroupStats {
	return groupBy(records, func(r models.TaskRecord) string { return r.TaskType })
}

// Report builds the statistics view of a single date.
func Report(date string, records []models.TaskRecord) models.DayReport {
	return models.DayReport{
		Date:       date,
		Total:      Summarize(records),
		BySubject:  BySubject(records),
		ByTaskType: ByTaskType(records),
	}
}

func groupBy(records []models.TaskRecord, key func(models.TaskRecord) string) []models.GroupStats {
	index := make(map[string]int)
	groups := make([]models.GroupStats, 0)
	for _, r := range records {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, models.GroupStats{Name: k})
		}
		groups[i].Solved += int(r.Solved)
		groups[i].Correct += int(r.Correct)
	}
	for i := range groups {
		groups[i].DayStats = newStats(groups[i].Solved, groups[i].Correct)
	}
	return groups
}

func newStats(solved, correct int) models.DayStats {
	stats := models.DayStats{Solved: solved, Correct: correct}
	if solved > 0 {
		// round half up, matching Math.round for non-negative values
		stats.Accuracy = (correct*200 + solved) / (solved * 2)
	}
	return stats
}
