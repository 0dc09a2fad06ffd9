package request

import (
	"context"
	"errors"
	"testing"

	"privacydesk/internal/domain/consent"
)

func TestGrantAndWithdrawConsent(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.GrantConsent(context.Background(), "mina@example.com", "marketing", "")
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if rec.Channel != consent.ChannelWeb {
		t.Fatalf("expected web channel default, got %s", rec.Channel)
	}
	if !rec.Active() {
		t.Fatal("fresh consent must be active")
	}

	withdrawn, err := s.WithdrawConsent(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if withdrawn.Active() {
		t.Fatal("withdrawn consent must not be active")
	}
	if withdrawn.WithdrawnAt == nil || !withdrawn.WithdrawnAt.Equal(testNow) {
		t.Fatalf("unexpected withdrawnAt %v", withdrawn.WithdrawnAt)
	}

	if _, err := s.WithdrawConsent(context.Background(), rec.ID); !errors.Is(err, ErrStateConflict) {
		t.Fatalf("expected ErrStateConflict on double withdraw, got %v", err)
	}
}

func TestWithdrawMissingConsent(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.WithdrawConsent(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGrantConsentValidation(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GrantConsent(context.Background(), "broken-email", "", "")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %+v", verr.Issues)
	}
}

func TestConsentsForFiltersBySubject(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GrantConsent(context.Background(), "mina@example.com", "marketing", "web"); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if _, err := s.GrantConsent(context.Background(), "lee@example.com", "analytics", "email"); err != nil {
		t.Fatalf("grant: %v", err)
	}

	got := s.ConsentsFor("MINA@example.com")
	if len(got) != 1 || got[0].SubjectEmail != "mina@example.com" {
		t.Fatalf("unexpected subject filter result %+v", got)
	}
	if all := s.Consents(); len(all) != 2 {
		t.Fatalf("expected 2 consents, got %d", len(all))
	}
}
