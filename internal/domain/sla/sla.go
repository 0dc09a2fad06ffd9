// Package sla holds the service-level-agreement date arithmetic: due dates,
// elapsed progress and countdown labels. Everything here is pure.
package sla

import (
	"fmt"
	"math"
	"time"
)

const day = 24 * time.Hour

// AtRiskThresholdDays is the countdown at or below which a case is flagged.
const AtRiskThresholdDays = 3

// DueDate computes a case's due date from its submission time and SLA
// window. Computed once at creation and never recomputed.
func DueDate(submittedAt time.Time, slaDays int) time.Time {
	return submittedAt.Add(time.Duration(slaDays) * day)
}

// Progress returns the percentage of the SLA window elapsed at now, clamped
// to [0,100]. A zero-width window counts as fully elapsed once now reaches
// the due date.
func Progress(now, submittedAt, dueAt time.Time) float64 {
	window := dueAt.Sub(submittedAt)
	if window <= 0 {
		if !now.Before(dueAt) {
			return 100
		}
		return 0
	}
	pct := float64(now.Sub(submittedAt)) / float64(window) * 100
	return math.Min(100, math.Max(0, pct))
}

// DaysLeft is the whole-day countdown to the due date, rounded up. Negative
// once overdue.
func DaysLeft(now, dueAt time.Time) int {
	return int(math.Ceil(float64(dueAt.Sub(now)) / float64(day)))
}

// Label renders the countdown the way the case view shows it.
func Label(daysLeft int) string {
	if daysLeft < 0 {
		return fmt.Sprintf("Overdue %dd", -daysLeft)
	}
	return fmt.Sprintf("Due in %dd", daysLeft)
}

// AtRisk reports whether the countdown is inside the warning threshold.
func AtRisk(daysLeft int) bool {
	return daysLeft <= AtRiskThresholdDays
}
