package activity

import (
	"time"

	"github.com/thebtf/zenplan/pkg/models"
)

// DefaultWeeks is the heatmap span when the caller does not ask for one.
const DefaultWeeks = 20

// Level buckets a day's solved count into five intensity steps.
func Level(count int) int {
	switch {
	case count > 30:
		return 4
	case count > 15:
		return 3
	case count > 5:
		return 2
	case count > 0:
		return 1
	default:
		return 0
	}
}

// BuildHeatmap lays points out on a grid of weeks*7 days, Monday first,
// whose last week is the week containing today. Points whose key is not a
// recognizable date are left off the grid.
func BuildHeatmap(points []models.ActivityPoint, today time.Time, weeks int) models.Heatmap {
	if weeks <= 0 {
		weeks = DefaultWeeks
	}
	counts := countsByDay(points, today.Location())

	day := truncateDay(today)
	// time.Weekday is Sunday=0; shift so Monday=0.
	offset := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -offset-(weeks-1)*7)

	hm := models.Heatmap{
		Weeks: weeks,
		Cells: make([]models.HeatmapCell, 0, weeks*7),
	}
	for i := 0; i < weeks*7; i++ {
		day := start.AddDate(0, 0, i).Format(ISODate)
		count := counts[day]
		hm.Cells = append(hm.Cells, models.HeatmapCell{Date: day, Count: count, Level: Level(count)})
		hm.Total += count
		if count > 0 {
			hm.Active++
		}
	}
	hm.Start = hm.Cells[0].Date
	hm.End = hm.Cells[len(hm.Cells)-1].Date
	return hm
}
