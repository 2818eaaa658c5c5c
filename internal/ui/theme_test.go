package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thebtf/zenplan/pkg/models"
)

func TestHeading(t *testing.T) {
	assert.Contains(t, Heading(IconChart, "Статистика"), "Статистика")
	assert.Contains(t, Heading("  ", "Plain"), "Plain")
}

func TestLabelValue(t *testing.T) {
	out := LabelValue("Решено", 12)
	assert.Contains(t, out, "Решено:")
	assert.Contains(t, out, "12")
}

func TestAccuracy(t *testing.T) {
	for _, p := range []int{0, 49, 50, 79, 80, 100} {
		assert.Contains(t, Accuracy(p), "%")
	}
}

func TestHeatCell_ClampsLevel(t *testing.T) {
	assert.Equal(t, HeatCell(0), HeatCell(-1))
	assert.Equal(t, HeatCell(4), HeatCell(9))
	assert.Contains(t, HeatCell(2), heatCell)
}

func TestHeatmap_Layout(t *testing.T) {
	hm := models.Heatmap{Weeks: 3, Cells: make([]models.HeatmapCell, 21)}
	hm.Cells[0].Level = 4

	lines := strings.Split(Heatmap(hm), "\n")
	// Seven weekday rows plus the legend.
	assert.Len(t, lines, 8)
	for day := 0; day < 7; day++ {
		assert.Contains(t, lines[day], weekdayLabels[day])
		assert.Equal(t, 3, strings.Count(lines[day], heatCell), lines[day])
	}
	assert.Contains(t, lines[7], "больше")
}

func TestBar(t *testing.T) {
	assert.Empty(t, Bar(1, 0, 10))
	assert.Equal(t, 10, strings.Count(Bar(5, 10, 10), "█")+strings.Count(Bar(5, 10, 10), "░"))
	assert.Equal(t, 1, strings.Count(Bar(1, 1000, 10), "█"))
	assert.Equal(t, 10, strings.Count(Bar(50, 10, 10), "█"))
}
