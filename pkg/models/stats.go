package models

// DayStats holds totals for a set of records.
type DayStats struct {
	Solved   int `json:"solved"`
	Correct  int `json:"correct"`
	Accuracy int `json:"accuracy"` // percent, 0 when nothing was solved
}

// GroupStats holds totals for one subject or task type.
type GroupStats struct {
	Name string `json:"name"`
	DayStats
}

// DayReport is the full statistics view of a single date.
type DayReport struct {
	Date       string       `json:"date"`
	Total      DayStats     `json:"total"`
	BySubject  []GroupStats `json:"by_subject"`
	ByTaskType []GroupStats `json:"by_task_type"`
}

// HeatmapCell is one day on the activity grid.
type HeatmapCell struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

// Heatmap is a Monday-aligned grid of days, oldest first.
type Heatmap struct {
	Weeks  int           `json:"weeks"`
	Start  string        `json:"start"`
	End    string        `json:"end"`
	Cells  []HeatmapCell `json:"cells"`
	Total  int           `json:"total"`
	Active int           `json:"active_days"`
}
