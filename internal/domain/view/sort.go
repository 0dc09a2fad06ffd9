// Package view holds the pure derived-view computations over request-list
// snapshots: multi-key sorting, filtering, pagination and dashboard
// aggregates. Nothing in here keeps state.
package view

import (
	"sort"
	"strings"

	"privacydesk/internal/domain/request"
)

// Column names a sortable field. Comparators are typed accessors rather
// than dotted-path reflection over the record.
type Column string

const (
	ColID             Column = "id"
	ColType           Column = "type"
	ColStatus         Column = "status"
	ColOwner          Column = "owner"
	ColSubmittedAt    Column = "submittedAt"
	ColDueAt          Column = "dueAt"
	ColRequesterName  Column = "requester.name"
	ColRequesterEmail Column = "requester.email"
)

type SortKey struct {
	Column Column
	Desc   bool
}

type comparator func(a, b request.PrivacyRequest) int

var comparators = map[Column]comparator{
	ColID:          func(a, b request.PrivacyRequest) int { return strings.Compare(a.ID, b.ID) },
	ColType:        func(a, b request.PrivacyRequest) int { return strings.Compare(a.Type, b.Type) },
	ColStatus:      func(a, b request.PrivacyRequest) int { return strings.Compare(a.Status, b.Status) },
	ColOwner:       func(a, b request.PrivacyRequest) int { return strings.Compare(a.Owner, b.Owner) },
	ColSubmittedAt: func(a, b request.PrivacyRequest) int { return a.SubmittedAt.Compare(b.SubmittedAt) },
	ColDueAt:       func(a, b request.PrivacyRequest) int { return a.DueAt.Compare(b.DueAt) },
	ColRequesterName: func(a, b request.PrivacyRequest) int {
		return strings.Compare(a.Requester.Name, b.Requester.Name)
	},
	ColRequesterEmail: func(a, b request.PrivacyRequest) int {
		return strings.Compare(a.Requester.Email, b.Requester.Email)
	},
}

// ValidColumn reports whether a column name has a comparator.
func ValidColumn(name string) bool {
	_, ok := comparators[Column(name)]
	return ok
}

// SortBy returns a new slice ordered by the given keys: the first key that
// distinguishes two records decides, later keys break ties, and records
// equal under every key keep their input order (stable).
func SortBy(list []request.PrivacyRequest, keys []SortKey) []request.PrivacyRequest {
	out := append([]request.PrivacyRequest(nil), list...)
	if len(keys) == 0 {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		for _, key := range keys {
			cmp, ok := comparators[key.Column]
			if !ok {
				continue
			}
			c := cmp(out[i], out[j])
			if c == 0 {
				continue
			}
			if key.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return out
}
