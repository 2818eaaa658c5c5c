package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/thebtf/zenplan/pkg/models"
)

// ZenPlan theme for CLI output.

const (
	IconNote    = "📝"
	IconTask    = "✏️"
	IconChart   = "📊"
	IconFire    = "🔥"
	IconCal     = "📅"
	IconBook    = "📚"
	IconDone    = "✅"
	IconInfo    = "ℹ️"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconWorker  = "🛰️"
	IconSparkle = "✨"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
)

// heatLevels are the cell colors for levels 0..4, empty to busiest.
var heatLevels = [5]lipgloss.Style{
	lipgloss.NewStyle().Foreground(lipgloss.Color("237")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("22")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
}

const heatCell = "■"

var weekdayLabels = [7]string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// Accuracy colors a percentage: green from 80, orange from 50, red below.
func Accuracy(percent int) string {
	text := fmt.Sprintf("%d%%", percent)
	switch {
	case percent >= 80:
		return Good.Render(text)
	case percent >= 50:
		return Warn.Render(text)
	default:
		return Bad.Render(text)
	}
}

// HeatCell renders one grid cell for level, clamped to 0..4.
func HeatCell(level int) string {
	if level < 0 {
		level = 0
	}
	if level > 4 {
		level = 4
	}
	return heatLevels[level].Render(heatCell)
}

// Heatmap draws the grid with weekdays as rows and weeks as columns.
func Heatmap(hm models.Heatmap) string {
	var b strings.Builder
	for day := 0; day < 7; day++ {
		b.WriteString(Muted.Render(weekdayLabels[day]))
		for week := 0; week < hm.Weeks; week++ {
			i := week*7 + day
			if i >= len(hm.Cells) {
				break
			}
			b.WriteString(" ")
			b.WriteString(HeatCell(hm.Cells[i].Level))
		}
		b.WriteString("\n")
	}
	b.WriteString(Muted.Render("меньше "))
	for level := 0; level < len(heatLevels); level++ {
		b.WriteString(HeatCell(level))
		b.WriteString(" ")
	}
	b.WriteString(Muted.Render("больше"))
	return b.String()
}

// Bar is a horizontal bar of width cells scaled to value/max.
func Bar(value, max, width int) string {
	if max <= 0 || width <= 0 {
		return ""
	}
	n := value * width / max
	if value > 0 && n == 0 {
		n = 1
	}
	if n > width {
		n = width
	}
	if n < 0 {
		n = 0
	}
	return Good.Render(strings.Repeat("█", n)) + Muted.Render(strings.Repeat("░", width-n))
}
