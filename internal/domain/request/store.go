package request

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"privacydesk/internal/domain/consent"
	"privacydesk/internal/domain/sla"
	"privacydesk/internal/platform/storage"
)

// emailPattern is deliberately loose: anything with an @ and a dotted host.
var emailPattern = regexp.MustCompile(`.+@.+\..+`)

const actorSystem = "system"

// Seeder populates an empty backing store before first load.
type Seeder interface {
	LoadIfEmpty(ctx context.Context, store storage.Store) error
}

// Store is the single state container for requests, consents and settings.
// Every mutation is serialized behind one mutex and follows the same
// discipline: build the updated record, persist it, then swap it into
// memory. A failed write therefore never leaves memory ahead of disk.
type Store struct {
	mu     sync.Mutex
	db     storage.Store
	seeder Seeder
	now    func() time.Time

	requests map[string]PrivacyRequest
	consents map[string]consent.Record
	settings Settings
}

type Option func(*Store)

// WithClock overrides the store's time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithSeeder makes Load populate an empty backing store first.
func WithSeeder(seeder Seeder) Option {
	return func(s *Store) { s.seeder = seeder }
}

func NewStore(db storage.Store, opts ...Option) *Store {
	s := &Store{
		db:       db,
		now:      time.Now,
		requests: map[string]PrivacyRequest{},
		consents: map[string]consent.Record{},
		settings: DefaultSettings(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load seeds the backing store if empty, then reads the three collections
// into memory. The structured collections are the sole source of truth.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seeder != nil {
		if err := s.seeder.LoadIfEmpty(ctx, s.db); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	requestDocs, err := s.db.GetAll(ctx, storage.CollectionRequests)
	if err != nil {
		return fmt.Errorf("load requests: %w", err)
	}
	requests := make(map[string]PrivacyRequest, len(requestDocs))
	for id, doc := range requestDocs {
		var rec PrivacyRequest
		if err := json.Unmarshal(doc, &rec); err != nil {
			return fmt.Errorf("decode request %s: %w", id, err)
		}
		requests[id] = rec
	}

	consentDocs, err := s.db.GetAll(ctx, storage.CollectionConsents)
	if err != nil {
		return fmt.Errorf("load consents: %w", err)
	}
	consents := make(map[string]consent.Record, len(consentDocs))
	for id, doc := range consentDocs {
		var rec consent.Record
		if err := json.Unmarshal(doc, &rec); err != nil {
			return fmt.Errorf("decode consent %s: %w", id, err)
		}
		consents[id] = rec
	}

	settings := DefaultSettings()
	if doc, ok, err := s.db.Get(ctx, storage.CollectionSettings, storage.SettingsKey); err != nil {
		return fmt.Errorf("load settings: %w", err)
	} else if ok {
		if err := json.Unmarshal(doc, &settings); err != nil {
			return fmt.Errorf("decode settings: %w", err)
		}
	}

	s.requests = requests
	s.consents = consents
	s.settings = settings
	return nil
}

// Requests returns a copy of every case, ordered by id.
func (s *Store) Requests() []PrivacyRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PrivacyRequest, 0, len(s.requests))
	for _, rec := range s.requests {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) Request(id string) (PrivacyRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.requests[id]
	if !ok {
		return PrivacyRequest{}, fmt.Errorf("request %s: %w", id, ErrNotFound)
	}
	return rec.Clone(), nil
}

func (s *Store) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.Clone()
}

type AddRequestInput struct {
	Type      string
	Requester Requester
	Owner     string
	Status    string    // defaults to "new"
	DueAt     time.Time // zero value: computed from the current SLA settings
	Actor     string
}

// AddRequest validates the requester, assigns the next REQ-<n> id, stamps
// submittedAt/dueAt and records the "created" history entry.
func (s *Store) AddRequest(ctx context.Context, in AddRequestInput) (PrivacyRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()

	var issues []FieldIssue
	if !ValidType(in.Type) {
		issues = append(issues, FieldIssue{Field: "type", Reason: "must be one of access, delete, export, correct"})
	}
	if strings.TrimSpace(in.Requester.Name) == "" {
		issues = append(issues, FieldIssue{Field: "requester.name", Reason: "must not be empty"})
	}
	if !emailPattern.MatchString(strings.TrimSpace(in.Requester.Email)) {
		issues = append(issues, FieldIssue{Field: "requester.email", Reason: "must look like an email address"})
	}
	status := in.Status
	if status == "" {
		status = StatusNew
	}
	if !validStatus(status) {
		issues = append(issues, FieldIssue{Field: "status", Reason: "unknown status"})
	}
	if !in.DueAt.IsZero() && in.DueAt.Before(now) {
		issues = append(issues, FieldIssue{Field: "dueAt", Reason: "must not be before submission time"})
	}
	if len(issues) > 0 {
		return PrivacyRequest{}, validationError(issues...)
	}

	owner := in.Owner
	if owner == "" {
		owner = OwnerUnassigned
	}

	ids := make([]string, 0, len(s.requests))
	for id := range s.requests {
		ids = append(ids, id)
	}
	dueAt := in.DueAt
	if dueAt.IsZero() {
		dueAt = sla.DueDate(now, s.settings.SLAFor(in.Type))
	}

	rec := PrivacyRequest{
		ID:          NextID(ids),
		Type:        in.Type,
		Requester:   in.Requester,
		SubmittedAt: now,
		DueAt:       dueAt,
		Status:      status,
		Owner:       owner,
		Notes:       []Note{},
		Attachments: []Attachment{},
		History: []HistoryEntry{
			{At: now, Who: actorOrSystem(in.Actor), Action: ActionCreated},
		},
	}

	if err := s.persistRequest(ctx, rec); err != nil {
		return PrivacyRequest{}, err
	}
	s.requests[rec.ID] = rec
	return rec.Clone(), nil
}

// UpdateRequest replaces the stored record verbatim. It appends no history;
// callers use it for attachment-list edits and own the audit trail.
func (s *Store) UpdateRequest(ctx context.Context, rec PrivacyRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requests[rec.ID]; !ok {
		return fmt.Errorf("request %s: %w", rec.ID, ErrNotFound)
	}
	clone := rec.Clone()
	if err := s.persistRequest(ctx, clone); err != nil {
		return err
	}
	s.requests[clone.ID] = clone
	return nil
}

func (s *Store) SetOwner(ctx context.Context, id, owner, actor string) (PrivacyRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.requests[id]
	if !ok {
		return PrivacyRequest{}, fmt.Errorf("request %s: %w", id, ErrNotFound)
	}
	if IsTerminal(rec.Status) {
		return PrivacyRequest{}, fmt.Errorf("request %s: %w", id, ErrStateConflict)
	}

	updated := rec.Clone()
	updated.Owner = owner
	updated.History = append(updated.History, HistoryEntry{
		At:      s.now().UTC(),
		Who:     actorOrSystem(actor),
		Action:  ActionOwnerSet,
		Details: owner,
	})

	if err := s.persistRequest(ctx, updated); err != nil {
		return PrivacyRequest{}, err
	}
	s.requests[id] = updated
	return updated.Clone(), nil
}

// AddNote appends to the case's note list. The note itself is the record of
// the action, so no history entry is written.
func (s *Store) AddNote(ctx context.Context, id, text, who string) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.requests[id]
	if !ok {
		return Note{}, fmt.Errorf("request %s: %w", id, ErrNotFound)
	}
	if strings.TrimSpace(text) == "" {
		return Note{}, validationError(FieldIssue{Field: "text", Reason: "must not be empty"})
	}

	note := Note{
		ID:   uuid.NewString(),
		At:   s.now().UTC(),
		Who:  actorOrSystem(who),
		Text: text,
	}
	updated := rec.Clone()
	updated.Notes = append(updated.Notes, note)

	if err := s.persistRequest(ctx, updated); err != nil {
		return Note{}, err
	}
	s.requests[id] = updated
	return note, nil
}

// CloseRequest transitions a case into a terminal status. Closing an
// already-closed case fails with ErrStateConflict; an empty rationale fails
// validation. The history entry carries the rationale and, when present,
// the citation in parentheses.
func (s *Store) CloseRequest(ctx context.Context, id, decision, rationale, citation, actor string) (PrivacyRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var issues []FieldIssue
	if decision != StatusDone && decision != StatusRejected {
		issues = append(issues, FieldIssue{Field: "decision", Reason: "must be done or rejected"})
	}
	if strings.TrimSpace(rationale) == "" {
		issues = append(issues, FieldIssue{Field: "rationale", Reason: "must not be empty"})
	}
	if len(issues) > 0 {
		return PrivacyRequest{}, validationError(issues...)
	}

	rec, ok := s.requests[id]
	if !ok {
		return PrivacyRequest{}, fmt.Errorf("request %s: %w", id, ErrNotFound)
	}
	if IsTerminal(rec.Status) {
		return PrivacyRequest{}, fmt.Errorf("request %s: %w", id, ErrStateConflict)
	}

	details := rationale
	if citation != "" {
		details = fmt.Sprintf("%s (%s)", rationale, citation)
	}
	action := ActionClosed
	if decision == StatusRejected {
		action = ActionRejected
	}

	updated := rec.Clone()
	updated.Status = decision
	updated.History = append(updated.History, HistoryEntry{
		At:      s.now().UTC(),
		Who:     actorOrSystem(actor),
		Action:  action,
		Details: details,
	})

	if err := s.persistRequest(ctx, updated); err != nil {
		return PrivacyRequest{}, err
	}
	s.requests[id] = updated
	return updated.Clone(), nil
}

// SaveSettings shallow-merges the patch into current settings, with slaDays
// merged key-wise, and persists the merged record.
func (s *Store) SaveSettings(ctx context.Context, patch SettingsPatch) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := s.settings.Merge(patch)
	doc, err := json.Marshal(merged)
	if err != nil {
		return Settings{}, fmt.Errorf("encode settings: %w", err)
	}
	if err := s.db.Put(context.WithoutCancel(ctx), storage.CollectionSettings, storage.SettingsKey, doc); err != nil {
		return Settings{}, err
	}
	s.settings = merged
	return merged.Clone(), nil
}

func (s *Store) persistRequest(ctx context.Context, rec PrivacyRequest) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode request %s: %w", rec.ID, err)
	}
	// A client disconnect must not abort a write mid-mutation.
	return s.db.Put(context.WithoutCancel(ctx), storage.CollectionRequests, rec.ID, doc)
}

func validStatus(status string) bool {
	for _, candidate := range Statuses {
		if status == candidate {
			return true
		}
	}
	return false
}

func actorOrSystem(actor string) string {
	if strings.TrimSpace(actor) == "" {
		return actorSystem
	}
	return actor
}
