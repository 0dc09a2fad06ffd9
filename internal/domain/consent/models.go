package consent

import "time"

const (
	ChannelWeb   = "web"
	ChannelEmail = "email"
	ChannelPhone = "phone"
)

// Record tracks one consent grant for a data subject. WithdrawnAt stays nil
// until the consent is withdrawn; withdrawal is a one-way transition.
type Record struct {
	ID           string     `json:"id"`
	SubjectEmail string     `json:"subjectEmail"`
	Purpose      string     `json:"purpose"`
	GrantedAt    time.Time  `json:"grantedAt"`
	WithdrawnAt  *time.Time `json:"withdrawnAt,omitempty"`
	Channel      string     `json:"channel"`
}

func (r Record) Active() bool {
	return r.WithdrawnAt == nil
}

func (r Record) Clone() Record {
	out := r
	if r.WithdrawnAt != nil {
		at := *r.WithdrawnAt
		out.WithdrawnAt = &at
	}
	return out
}
