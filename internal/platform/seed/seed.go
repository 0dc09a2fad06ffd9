// Package seed populates an empty store with the bundled demo dataset on
// first run. Existing user data is never overwritten.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"privacydesk/internal/domain/consent"
	"privacydesk/internal/domain/request"
	"privacydesk/internal/platform/storage"
)

//go:embed dataset.json
var datasetJSON []byte

type dataset struct {
	Requests []request.PrivacyRequest `json:"requests"`
	Consents []consent.Record         `json:"consents"`
	Settings request.Settings         `json:"settings"`
}

// Loader seeds at most once per process. The done marker plays the role of
// the original's session flag; the emptiness check below is what actually
// protects user data across restarts.
type Loader struct {
	done atomic.Bool
}

func NewLoader() *Loader {
	return &Loader{}
}

// LoadIfEmpty no-ops when it already ran this process or when the requests
// collection holds any data. Otherwise it writes the bundled dataset.
func (l *Loader) LoadIfEmpty(ctx context.Context, store storage.Store) error {
	if l.done.Load() {
		return nil
	}

	existing, err := store.GetAll(ctx, storage.CollectionRequests)
	if err != nil {
		return fmt.Errorf("check existing requests: %w", err)
	}
	if len(existing) > 0 {
		l.done.Store(true)
		return nil
	}

	var data dataset
	if err := json.Unmarshal(datasetJSON, &data); err != nil {
		return fmt.Errorf("decode seed dataset: %w", err)
	}

	for _, req := range data.Requests {
		doc, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("encode seed request %s: %w", req.ID, err)
		}
		if err := store.Put(ctx, storage.CollectionRequests, req.ID, doc); err != nil {
			return err
		}
	}
	for _, rec := range data.Consents {
		doc, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode seed consent %s: %w", rec.ID, err)
		}
		if err := store.Put(ctx, storage.CollectionConsents, rec.ID, doc); err != nil {
			return err
		}
	}
	settingsDoc, err := json.Marshal(data.Settings)
	if err != nil {
		return fmt.Errorf("encode seed settings: %w", err)
	}
	if err := store.Put(ctx, storage.CollectionSettings, storage.SettingsKey, settingsDoc); err != nil {
		return err
	}

	l.done.Store(true)
	return nil
}
