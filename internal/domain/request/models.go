package request

import "time"

const (
	TypeAccess  = "access"
	TypeDelete  = "delete"
	TypeExport  = "export"
	TypeCorrect = "correct"
)

const (
	StatusNew        = "new"
	StatusInProgress = "in_progress"
	StatusWaiting    = "waiting"
	StatusDone       = "done"
	StatusRejected   = "rejected"
)

const OwnerUnassigned = "Unassigned"

var Types = []string{TypeAccess, TypeDelete, TypeExport, TypeCorrect}

var Statuses = []string{StatusNew, StatusInProgress, StatusWaiting, StatusDone, StatusRejected}

// IsTerminal reports whether a status admits no further status transitions.
func IsTerminal(status string) bool {
	return status == StatusDone || status == StatusRejected
}

func ValidType(t string) bool {
	for _, candidate := range Types {
		if t == candidate {
			return true
		}
	}
	return false
}

type Requester struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Country string `json:"country,omitempty"`
}

type Note struct {
	ID   string    `json:"id"`
	At   time.Time `json:"at"`
	Who  string    `json:"who"`
	Text string    `json:"text"`
}

type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// HistoryEntry is one line of a case's append-only audit trail. Every
// status- or ownership-changing mutation appends exactly one entry.
type HistoryEntry struct {
	At      time.Time `json:"at"`
	Who     string    `json:"who"`
	Action  string    `json:"action"`
	Details string    `json:"details,omitempty"`
}

const (
	ActionCreated       = "created"
	ActionOwnerSet      = "owner_set"
	ActionStatusChanged = "status_changed"
	ActionClosed        = "closed"
	ActionRejected      = "rejected"
)

// PrivacyRequest is a single data-subject request case.
type PrivacyRequest struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Requester   Requester      `json:"requester"`
	SubmittedAt time.Time      `json:"submittedAt"`
	DueAt       time.Time      `json:"dueAt"`
	Status      string         `json:"status"`
	Owner       string         `json:"owner"`
	Notes       []Note         `json:"notes"`
	Attachments []Attachment   `json:"attachments"`
	History     []HistoryEntry `json:"history"`
}

// Clone returns a deep copy so store snapshots cannot be mutated by callers.
func (r PrivacyRequest) Clone() PrivacyRequest {
	out := r
	out.Notes = append([]Note(nil), r.Notes...)
	out.Attachments = append([]Attachment(nil), r.Attachments...)
	out.History = append([]HistoryEntry(nil), r.History...)
	return out
}

// Settings is the process-wide configuration record. SLA windows apply at
// request-creation time only; changing them never recomputes existing dueAt.
type Settings struct {
	SLADays   map[string]int `json:"slaDays"`
	Owners    []string       `json:"owners"`
	Templates string         `json:"templates"`
}

const DefaultSLADays = 30

func DefaultSettings() Settings {
	return Settings{
		SLADays: map[string]int{
			TypeAccess:  DefaultSLADays,
			TypeDelete:  DefaultSLADays,
			TypeExport:  DefaultSLADays,
			TypeCorrect: DefaultSLADays,
		},
		Owners:    []string{"Alex", "Priya", "Jordan", "Sam", "Taylor"},
		Templates: "",
	}
}

func (s Settings) Clone() Settings {
	out := s
	out.SLADays = make(map[string]int, len(s.SLADays))
	for k, v := range s.SLADays {
		out.SLADays[k] = v
	}
	out.Owners = append([]string(nil), s.Owners...)
	return out
}

// SLAFor returns the SLA window for a request type, falling back to the
// 30-day default for unknown types.
func (s Settings) SLAFor(requestType string) int {
	if days, ok := s.SLADays[requestType]; ok && days > 0 {
		return days
	}
	return DefaultSLADays
}

// Merge applies a partial settings update: top-level fields replace when
// set, slaDays merges key-wise.
func (s Settings) Merge(partial SettingsPatch) Settings {
	next := s.Clone()
	if partial.SLADays != nil {
		if next.SLADays == nil {
			next.SLADays = map[string]int{}
		}
		for k, v := range partial.SLADays {
			next.SLADays[k] = v
		}
	}
	if partial.Owners != nil {
		next.Owners = append([]string(nil), partial.Owners...)
	}
	if partial.Templates != nil {
		next.Templates = *partial.Templates
	}
	return next
}

// SettingsPatch is a partial settings update; nil fields are left alone.
type SettingsPatch struct {
	SLADays   map[string]int `json:"slaDays,omitempty"`
	Owners    []string       `json:"owners,omitempty"`
	Templates *string        `json:"templates,omitempty"`
}
