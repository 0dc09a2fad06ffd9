// Package storage is the persistence adapter behind the request store. It
// exposes three JSON-document collections keyed by id and is implemented by
// an embedded SQLite driver (the default), a Postgres driver, and an
// in-memory driver for tests.
package storage

import "context"

const (
	CollectionRequests = "requests"
	CollectionConsents = "consents"
	CollectionSettings = "settings"

	// SettingsKey is the constant key of the single settings record.
	SettingsKey = "settings"
)

// Collections lists every collection the current schema version provides.
// Adding a collection means appending here and bumping the driver schema
// version; drivers create what is missing without touching existing data.
var Collections = []string{CollectionRequests, CollectionConsents, CollectionSettings}

// Store is a keyed JSON-document store. Get resolves missing keys as
// (nil, false, nil) and Delete of a missing key is not an error; only
// genuine storage failures surface, wrapped around ErrStorage.
type Store interface {
	GetAll(ctx context.Context, collection string) (map[string][]byte, error)
	Get(ctx context.Context, collection, key string) ([]byte, bool, error)
	Put(ctx context.Context, collection, key string, doc []byte) error
	Delete(ctx context.Context, collection, key string) error
	Close() error
}
