package request

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"privacydesk/internal/domain/consent"
	"privacydesk/internal/platform/storage"
)

// Consents returns a copy of every consent record, ordered by id.
func (s *Store) Consents() []consent.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]consent.Record, 0, len(s.consents))
	for _, rec := range s.consents {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ConsentsFor returns the consent records for one subject, ordered by id.
func (s *Store) ConsentsFor(subjectEmail string) []consent.Record {
	needle := strings.ToLower(strings.TrimSpace(subjectEmail))
	all := s.Consents()
	out := all[:0]
	for _, rec := range all {
		if strings.ToLower(rec.SubjectEmail) == needle {
			out = append(out, rec)
		}
	}
	return out
}

func (s *Store) GrantConsent(ctx context.Context, subjectEmail, purpose, channel string) (consent.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var issues []FieldIssue
	if !emailPattern.MatchString(strings.TrimSpace(subjectEmail)) {
		issues = append(issues, FieldIssue{Field: "subjectEmail", Reason: "must look like an email address"})
	}
	if strings.TrimSpace(purpose) == "" {
		issues = append(issues, FieldIssue{Field: "purpose", Reason: "must not be empty"})
	}
	if len(issues) > 0 {
		return consent.Record{}, validationError(issues...)
	}
	if channel == "" {
		channel = consent.ChannelWeb
	}

	rec := consent.Record{
		ID:           uuid.NewString(),
		SubjectEmail: strings.TrimSpace(subjectEmail),
		Purpose:      purpose,
		GrantedAt:    s.now().UTC(),
		Channel:      channel,
	}
	if err := s.persistConsent(ctx, rec); err != nil {
		return consent.Record{}, err
	}
	s.consents[rec.ID] = rec
	return rec.Clone(), nil
}

// WithdrawConsent marks a consent withdrawn. Withdrawal is one-way; a
// second withdrawal fails with ErrStateConflict.
func (s *Store) WithdrawConsent(ctx context.Context, id string) (consent.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.consents[id]
	if !ok {
		return consent.Record{}, fmt.Errorf("consent %s: %w", id, ErrNotFound)
	}
	if !rec.Active() {
		return consent.Record{}, fmt.Errorf("consent %s: %w", id, ErrStateConflict)
	}

	updated := rec.Clone()
	at := s.now().UTC()
	updated.WithdrawnAt = &at

	if err := s.persistConsent(ctx, updated); err != nil {
		return consent.Record{}, err
	}
	s.consents[id] = updated
	return updated.Clone(), nil
}

func (s *Store) persistConsent(ctx context.Context, rec consent.Record) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode consent %s: %w", rec.ID, err)
	}
	return s.db.Put(context.WithoutCancel(ctx), storage.CollectionConsents, rec.ID, doc)
}
