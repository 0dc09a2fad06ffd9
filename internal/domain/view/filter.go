package view

import (
	"strings"
	"time"

	"privacydesk/internal/domain/request"
)

// FilterAll is the wildcard value for the type and status filters.
const FilterAll = "all"

// Filter is a conjunctive predicate over the request list. Zero values
// mean "no constraint": empty type/status (or "all"), empty owner set,
// zero time bounds, empty search.
type Filter struct {
	Type   string
	Status string
	Owners []string
	From   time.Time // inclusive lower bound on submittedAt
	To     time.Time // inclusive upper bound on submittedAt
	Search string    // case-insensitive substring of requester email
}

// Matches reports whether a request passes every active predicate.
func (f Filter) Matches(r request.PrivacyRequest) bool {
	if f.Type != "" && f.Type != FilterAll && r.Type != f.Type {
		return false
	}
	if f.Status != "" && f.Status != FilterAll && r.Status != f.Status {
		return false
	}
	if len(f.Owners) > 0 && !contains(f.Owners, r.Owner) {
		return false
	}
	if !f.From.IsZero() && r.SubmittedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && r.SubmittedAt.After(f.To) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(r.Requester.Email), needle) {
			return false
		}
	}
	return true
}

// Apply returns the subset of list matching the filter, preserving order.
func Apply(list []request.PrivacyRequest, f Filter) []request.PrivacyRequest {
	out := make([]request.PrivacyRequest, 0, len(list))
	for _, r := range list {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
