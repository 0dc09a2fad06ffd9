package request

import (
	"context"
	"errors"
	"testing"
	"time"

	"privacydesk/internal/platform/storage"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var testNow = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(storage.NewMemory(), WithClock(fixedClock(testNow)))
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return s
}

func addCase(t *testing.T, s *Store) PrivacyRequest {
	t.Helper()
	rec, err := s.AddRequest(context.Background(), AddRequestInput{
		Type:      TypeAccess,
		Requester: Requester{Name: "Mina Park", Email: "mina@example.com"},
		Actor:     "Alex",
	})
	if err != nil {
		t.Fatalf("add request: %v", err)
	}
	return rec
}

func TestAddRequestDefaults(t *testing.T) {
	s := newTestStore(t)
	rec := addCase(t, s)

	if rec.ID != "REQ-1001" {
		t.Fatalf("expected REQ-1001, got %s", rec.ID)
	}
	if rec.Status != StatusNew {
		t.Fatalf("expected status new, got %s", rec.Status)
	}
	if rec.Owner != OwnerUnassigned {
		t.Fatalf("expected Unassigned owner, got %s", rec.Owner)
	}
	if !rec.SubmittedAt.Equal(testNow) {
		t.Fatalf("expected submittedAt %v, got %v", testNow, rec.SubmittedAt)
	}
	wantDue := testNow.Add(30 * 24 * time.Hour)
	if !rec.DueAt.Equal(wantDue) {
		t.Fatalf("expected dueAt %v, got %v", wantDue, rec.DueAt)
	}
	if len(rec.History) != 1 {
		t.Fatalf("expected one history entry, got %d", len(rec.History))
	}
	if rec.History[0].Action != ActionCreated || rec.History[0].Who != "Alex" {
		t.Fatalf("unexpected history entry %+v", rec.History[0])
	}
}

func TestAddRequestUsesSettingsWindow(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.SaveSettings(context.Background(), SettingsPatch{
		SLADays: map[string]int{TypeDelete: 15},
	}); err != nil {
		t.Fatalf("save settings: %v", err)
	}

	rec, err := s.AddRequest(context.Background(), AddRequestInput{
		Type:      TypeDelete,
		Requester: Requester{Name: "Lee Chan", Email: "lee@example.com"},
	})
	if err != nil {
		t.Fatalf("add request: %v", err)
	}
	wantDue := testNow.Add(15 * 24 * time.Hour)
	if !rec.DueAt.Equal(wantDue) {
		t.Fatalf("expected dueAt %v, got %v", wantDue, rec.DueAt)
	}
	if rec.History[0].Who != "system" {
		t.Fatalf("expected system actor, got %s", rec.History[0].Who)
	}
}

func TestAddRequestValidation(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddRequest(context.Background(), AddRequestInput{
		Type:      "purge",
		Requester: Requester{Name: "", Email: "not-an-email"},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Issues) != 3 {
		t.Fatalf("expected 3 field issues, got %d: %+v", len(verr.Issues), verr.Issues)
	}

	if got := s.Requests(); len(got) != 0 {
		t.Fatalf("rejected request must not be stored, found %d", len(got))
	}
}

func TestAddRequestRejectsPastDueDate(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddRequest(context.Background(), AddRequestInput{
		Type:      TypeAccess,
		Requester: Requester{Name: "Mina Park", Email: "mina@example.com"},
		DueAt:     testNow.Add(-48 * time.Hour),
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Issues) != 1 || verr.Issues[0].Field != "dueAt" {
		t.Fatalf("expected a dueAt issue, got %+v", verr.Issues)
	}

	// A future due date supplied by the caller is kept verbatim.
	future := testNow.Add(10 * 24 * time.Hour)
	rec, err := s.AddRequest(context.Background(), AddRequestInput{
		Type:      TypeAccess,
		Requester: Requester{Name: "Mina Park", Email: "mina@example.com"},
		DueAt:     future,
	})
	if err != nil {
		t.Fatalf("add request: %v", err)
	}
	if !rec.DueAt.Equal(future) {
		t.Fatalf("expected dueAt %v, got %v", future, rec.DueAt)
	}
	if rec.DueAt.Before(rec.SubmittedAt) {
		t.Fatal("dueAt must never precede submittedAt")
	}
}

func TestSetOwnerAppendsHistory(t *testing.T) {
	s := newTestStore(t)
	rec := addCase(t, s)

	updated, err := s.SetOwner(context.Background(), rec.ID, "Priya", "Alex")
	if err != nil {
		t.Fatalf("set owner: %v", err)
	}
	if updated.Owner != "Priya" {
		t.Fatalf("expected owner Priya, got %s", updated.Owner)
	}
	last := updated.History[len(updated.History)-1]
	if last.Action != ActionOwnerSet || last.Details != "Priya" || last.Who != "Alex" {
		t.Fatalf("unexpected history entry %+v", last)
	}
}

func TestSetOwnerOnClosedCaseConflicts(t *testing.T) {
	s := newTestStore(t)
	rec := addCase(t, s)
	if _, err := s.CloseRequest(context.Background(), rec.ID, StatusDone, "fulfilled", "", "Alex"); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, err := s.SetOwner(context.Background(), rec.ID, "Priya", "Alex")
	if !errors.Is(err, ErrStateConflict) {
		t.Fatalf("expected ErrStateConflict, got %v", err)
	}
}

func TestAddNote(t *testing.T) {
	s := newTestStore(t)
	rec := addCase(t, s)
	historyBefore := len(rec.History)

	note, err := s.AddNote(context.Background(), rec.ID, "verified identity document", "Priya")
	if err != nil {
		t.Fatalf("add note: %v", err)
	}
	if note.ID == "" {
		t.Fatal("expected generated note id")
	}
	if note.Who != "Priya" || note.Text != "verified identity document" {
		t.Fatalf("unexpected note %+v", note)
	}

	stored, err := s.Request(rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(stored.Notes) != 1 {
		t.Fatalf("expected one note, got %d", len(stored.Notes))
	}
	if len(stored.History) != historyBefore {
		t.Fatal("adding a note must not append history")
	}

	if _, err := s.AddNote(context.Background(), rec.ID, "   ", "Priya"); err == nil {
		t.Fatal("expected validation error for blank note")
	}
}

func TestCloseRequest(t *testing.T) {
	s := newTestStore(t)
	rec := addCase(t, s)

	closed, err := s.CloseRequest(context.Background(), rec.ID, StatusRejected,
		"incomplete identity proof", "policy-7", "Jordan")
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != StatusRejected {
		t.Fatalf("expected rejected, got %s", closed.Status)
	}
	last := closed.History[len(closed.History)-1]
	if last.Action != ActionRejected {
		t.Fatalf("expected rejected action, got %s", last.Action)
	}
	if last.Details != "incomplete identity proof (policy-7)" {
		t.Fatalf("unexpected details %q", last.Details)
	}

	if _, err := s.CloseRequest(context.Background(), rec.ID, StatusDone, "done again", "", "Jordan"); !errors.Is(err, ErrStateConflict) {
		t.Fatalf("expected ErrStateConflict on double close, got %v", err)
	}
}

func TestCloseRequestValidation(t *testing.T) {
	s := newTestStore(t)
	rec := addCase(t, s)

	if _, err := s.CloseRequest(context.Background(), rec.ID, "abandoned", "reason", "", ""); err == nil {
		t.Fatal("expected error for unknown decision")
	}
	if _, err := s.CloseRequest(context.Background(), rec.ID, StatusDone, "  ", "", ""); err == nil {
		t.Fatal("expected error for blank rationale")
	}
}

func TestMutationsOnMissingCase(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Request("REQ-9999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.SetOwner(context.Background(), "REQ-9999", "Priya", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.AddNote(context.Background(), "REQ-9999", "text", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.CloseRequest(context.Background(), "REQ-9999", StatusDone, "r", "", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.UpdateRequest(context.Background(), PrivacyRequest{ID: "REQ-9999"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// failingStore wraps Memory and fails writes once armed.
type failingStore struct {
	*storage.Memory
	fail bool
}

func (f *failingStore) Put(ctx context.Context, collection, key string, doc []byte) error {
	if f.fail {
		return storage.ErrStorage
	}
	return f.Memory.Put(ctx, collection, key, doc)
}

func TestMutationRollsBackOnPersistFailure(t *testing.T) {
	db := &failingStore{Memory: storage.NewMemory()}
	s := NewStore(db, WithClock(fixedClock(testNow)))
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	rec := addCase(t, s)

	db.fail = true
	if _, err := s.SetOwner(context.Background(), rec.ID, "Priya", "Alex"); !errors.Is(err, storage.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}

	stored, err := s.Request(rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Owner != OwnerUnassigned {
		t.Fatalf("memory must not change when persist fails, owner is %s", stored.Owner)
	}
	if len(stored.History) != 1 {
		t.Fatalf("history grew despite failed persist: %d entries", len(stored.History))
	}
}

func TestUpdateRequestReplacesVerbatim(t *testing.T) {
	s := newTestStore(t)
	rec := addCase(t, s)

	rec.Attachments = append(rec.Attachments, Attachment{ID: "att-1", Name: "id-scan.pdf"})
	if err := s.UpdateRequest(context.Background(), rec); err != nil {
		t.Fatalf("update: %v", err)
	}

	stored, err := s.Request(rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(stored.Attachments) != 1 || stored.Attachments[0].Name != "id-scan.pdf" {
		t.Fatalf("unexpected attachments %+v", stored.Attachments)
	}
	if len(stored.History) != 1 {
		t.Fatal("update must not append history")
	}
}

func TestStateSurvivesReload(t *testing.T) {
	db := storage.NewMemory()
	s := NewStore(db, WithClock(fixedClock(testNow)))
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	rec := addCase(t, s)
	if _, err := s.SetOwner(context.Background(), rec.ID, "Sam", "Alex"); err != nil {
		t.Fatalf("set owner: %v", err)
	}

	reloaded := NewStore(db, WithClock(fixedClock(testNow)))
	if err := reloaded.Load(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	stored, err := reloaded.Request(rec.ID)
	if err != nil {
		t.Fatalf("get after reload: %v", err)
	}
	if stored.Owner != "Sam" || len(stored.History) != 2 {
		t.Fatalf("reloaded state diverges: %+v", stored)
	}
}

func TestSaveSettingsMergesKeyWise(t *testing.T) {
	s := newTestStore(t)

	templates := "Dear requester,"
	merged, err := s.SaveSettings(context.Background(), SettingsPatch{
		SLADays:   map[string]int{TypeAccess: 20},
		Templates: &templates,
	})
	if err != nil {
		t.Fatalf("save settings: %v", err)
	}
	if merged.SLADays[TypeAccess] != 20 {
		t.Fatalf("expected access window 20, got %d", merged.SLADays[TypeAccess])
	}
	if merged.SLADays[TypeDelete] != DefaultSLADays {
		t.Fatalf("untouched keys must keep defaults, got %d", merged.SLADays[TypeDelete])
	}
	if merged.Templates != templates {
		t.Fatalf("expected templates replaced, got %q", merged.Templates)
	}
	if len(merged.Owners) != 5 {
		t.Fatalf("owners must be untouched, got %v", merged.Owners)
	}
}

func TestRequestsReturnsCopies(t *testing.T) {
	s := newTestStore(t)
	rec := addCase(t, s)

	list := s.Requests()
	list[0].History[0].Who = "tampered"

	stored, err := s.Request(rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.History[0].Who != "Alex" {
		t.Fatal("caller mutation leaked into the store")
	}
}
