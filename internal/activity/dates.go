package activity

import (
	"sort"
	"time"

	"github.com/thebtf/zenplan/pkg/models"
)

// ISODate is the layout used on the heatmap and by the web shell.
const ISODate = "2006-01-02"

// dateLayouts are the DateKey formats the shells are known to produce.
var dateLayouts = []string{
	ISODate,
	"02.01.2006",
}

// ParseDateKey interprets a date key as a calendar day in loc.
func ParseDateKey(date string, loc *time.Location) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, date, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SortByDate orders points chronologically. Keys that are not dates sort
// after all dates, lexicographically among themselves.
func SortByDate(points []models.ActivityPoint) {
	sort.SliceStable(points, func(i, j int) bool {
		ti, okI := ParseDateKey(points[i].Date, time.UTC)
		tj, okJ := ParseDateKey(points[j].Date, time.UTC)
		switch {
		case okI && okJ:
			return ti.Before(tj)
		case okI != okJ:
			return okI
		default:
			return points[i].Date < points[j].Date
		}
	})
}

// countsByDay folds points into ISO day keys, merging keys that name the same day.
func countsByDay(points []models.ActivityPoint, loc *time.Location) map[string]int {
	counts := make(map[string]int, len(points))
	for _, p := range points {
		t, ok := ParseDateKey(p.Date, loc)
		if !ok {
			continue
		}
		counts[t.Format(ISODate)] += p.Count
	}
	return counts
}

// Streak returns the number of consecutive active days ending today.
// A day without activity yet does not break a streak that ran through yesterday.
func Streak(points []models.ActivityPoint, today time.Time) int {
	counts := countsByDay(points, today.Location())
	day := truncateDay(today)
	if counts[day.Format(ISODate)] == 0 {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for counts[day.Format(ISODate)] > 0 {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
