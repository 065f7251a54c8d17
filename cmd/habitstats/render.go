package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/comitanigiacomo/kanso-habit-stats/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habit-stats/internal/core/stats"
)

var (
	gold    = lipgloss.Color("#FFD700")
	amber   = lipgloss.Color("#FFBF00")
	emerald = lipgloss.Color("#50C878")
	ruby    = lipgloss.Color("#E0115F")
	dim     = lipgloss.Color("#666666")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(gold)
	keyStyle   = lipgloss.NewStyle().Foreground(amber)
	valueStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(dim)
	doneStyle  = lipgloss.NewStyle().Foreground(emerald)
	warnStyle  = lipgloss.NewStyle().Foreground(amber)
	errorStyle = lipgloss.NewStyle().Foreground(ruby)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(gold).
			Padding(0, 1)
)

func kv(key, value string) string {
	return keyStyle.Render(fmt.Sprintf("%-16s", key)) + " " + valueStyle.Render(value)
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// weekRow renders the histogram as one cell per weekday, Sunday first.
// Inactive days are dimmed.
func weekRow(hist [domain.DaysPerWeek]int, schedule domain.ScheduleMask) string {
	cells := make([]string, 0, domain.DaysPerWeek)
	for d := time.Sunday; d <= time.Saturday; d++ {
		label := d.String()[:2]
		mark := "·"
		if hist[d] > 0 {
			mark = "✓"
		}

		cell := label + " " + mark
		switch {
		case !schedule.IsActive(d):
			cell = mutedStyle.Render(cell)
		case hist[d] > 0:
			cell = doneStyle.Render(cell)
		}
		cells = append(cells, cell)
	}
	return strings.Join(cells, "  ")
}

func renderStats(title string, s domain.HabitStats, asOf domain.CalendarDay, schedule domain.ScheduleMask) string {
	lines := []string{
		titleStyle.Render(title) + mutedStyle.Render("  as of "+asOf.String()),
		"",
		kv("Current streak", plural(s.CurrentStreak, "day")),
		kv("Best streak", plural(s.BestStreak, "day")),
		kv("Completion", fmt.Sprintf("%d%% of last %d days", s.CompletionRate, stats.RateWindowDays)),
		kv("Total days", fmt.Sprintf("%d", s.TotalDays)),
		kv("Schedule", schedule.String()),
		"",
		weekRow(s.LastWeekCompletion, schedule),
	}
	return panelStyle.Render(strings.Join(lines, "\n")) + "\n"
}
