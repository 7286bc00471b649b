// Package stats derives adherence figures from an ordered log window. It is
// pure: callers pass the window and today, and
// every figure is recomputed from scratch on every call because backfill
// mutates the log immediately before computation.
package stats

import (
	"fmt"

	"medtrack/internal/adherence/models"
)

// weekWindow is positional: the last 7 log rows, not a calendar week.
const weekWindow = 7

// Summary are the figures both dashboards render.
type Summary struct {
	// AdherenceRate is 100 × taken / total, one decimal place; "0.0" for an
	// empty window.
	AdherenceRate string
	// Streak counts consecutive taken entries from the most recent entry
	// backward, stopping at the first non-taken entry.
	Streak int
	// TodayStatus is the status of today's entry, or "not marked" if absent.
	TodayStatus string
	// TakenInWeek counts taken among the last 7 entries.
	TakenInWeek int
	// MissedInMonth counts non-taken entries over the whole supplied window.
	MissedInMonth int
}

// Compute derives the summary from entries ordered by day ascending.
func Compute(entries []models.MedicationLog, today models.Day) Summary {
	return Summary{
		AdherenceRate: adherenceRate(entries),
		Streak:        streak(entries),
		TodayStatus:   todayStatus(entries, today),
		TakenInWeek:   takenInWeek(entries),
		MissedInMonth: missedInMonth(entries),
	}
}

func adherenceRate(entries []models.MedicationLog) string {
	if len(entries) == 0 {
		return "0.0"
	}
	taken := 0
	for _, e := range entries {
		if e.Status == models.StatusTaken {
			taken++
		}
	}
	return fmt.Sprintf("%.1f", 100*float64(taken)/float64(len(entries)))
}

func streak(entries []models.MedicationLog) int {
	count := 0
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Status != models.StatusTaken {
			break
		}
		count++
	}
	return count
}

func todayStatus(entries []models.MedicationLog, today models.Day) string {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Day == today {
			return string(entries[i].Status)
		}
	}
	return models.NotMarked
}

func takenInWeek(entries []models.MedicationLog) int {
	start := len(entries) - weekWindow
	if start < 0 {
		start = 0
	}
	taken := 0
	for _, e := range entries[start:] {
		if e.Status == models.StatusTaken {
			taken++
		}
	}
	return taken
}

func missedInMonth(entries []models.MedicationLog) int {
	missed := 0
	for _, e := range entries {
		if e.Status != models.StatusTaken {
			missed++
		}
	}
	return missed
}
