package view

import (
	"fmt"
	"math"
	"sort"
	"time"

	"privacydesk/internal/domain/request"
)

// avgDaysFallback is reported when no request has been completed yet.
const avgDaysFallback = 30

// WeeklyTarget is the completion target the dashboard progress bar tracks.
const WeeklyTarget = 10

type Stats struct {
	Open           int `json:"open"`
	DueToday       int `json:"dueToday"`
	Overdue        int `json:"overdue"`
	AvgDaysToClose int `json:"avgDaysToClose"`
	Completed      int `json:"completed"`
	Target         int `json:"target"`
	PctDone        int `json:"pctDone"`
	PctRemain      int `json:"pctRemain"`
}

// DashboardStats computes the headline aggregates over a request snapshot.
func DashboardStats(now time.Time, list []request.PrivacyRequest) Stats {
	stats := Stats{Target: WeeklyTarget}
	var doneDaysSum float64
	today := now.UTC().Format("2006-01-02")

	for _, r := range list {
		if !request.IsTerminal(r.Status) {
			stats.Open++
		}
		if r.DueAt.UTC().Format("2006-01-02") == today {
			stats.DueToday++
		}
		if r.DueAt.Before(now) && r.Status != request.StatusDone {
			stats.Overdue++
		}
		if r.Status == request.StatusDone {
			stats.Completed++
			days := r.DueAt.Sub(r.SubmittedAt).Hours() / 24
			doneDaysSum += math.Max(1, days)
		}
	}

	if stats.Completed > 0 {
		stats.AvgDaysToClose = int(math.Round(doneDaysSum / float64(stats.Completed)))
	} else {
		stats.AvgDaysToClose = avgDaysFallback
	}

	pctDone := int(math.Round(float64(stats.Completed) / float64(stats.Target) * 100))
	if pctDone > 100 {
		pctDone = 100
	}
	stats.PctDone = pctDone
	stats.PctRemain = 100 - pctDone
	return stats
}

// ActivityEvent is one humanised history line for the dashboard feed.
type ActivityEvent struct {
	RequestID string    `json:"requestId"`
	Type      string    `json:"type"`
	At        time.Time `json:"at"`
	Text      string    `json:"text"`
}

// RecentActivity flattens every case's history, newest first, and returns
// the top n events with display text.
func RecentActivity(list []request.PrivacyRequest, n int) []ActivityEvent {
	var events []ActivityEvent
	for _, r := range list {
		for _, h := range r.History {
			events = append(events, ActivityEvent{
				RequestID: r.ID,
				Type:      r.Type,
				At:        h.At,
				Text:      eventText(h),
			})
		}
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].At.After(events[j].At) })
	if n > 0 && len(events) > n {
		events = events[:n]
	}
	return events
}

func eventText(h request.HistoryEntry) string {
	switch h.Action {
	case request.ActionCreated:
		return fmt.Sprintf("Request created by %s", h.Who)
	case request.ActionOwnerSet:
		return fmt.Sprintf("Owner set to %s by %s", h.Details, h.Who)
	case request.ActionStatusChanged:
		return fmt.Sprintf("Status changed to %s by %s", h.Details, h.Who)
	case request.ActionClosed:
		return fmt.Sprintf("Status changed to done by %s", h.Who)
	case request.ActionRejected:
		return fmt.Sprintf("Status changed to rejected by %s", h.Who)
	default:
		if h.Details != "" {
			return h.Details
		}
		return h.Action
	}
}
