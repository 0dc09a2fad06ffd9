package storage

import (
	"errors"
	"fmt"
)

// ErrStorage marks underlying persistence failures (I/O, corruption,
// quota). Callers match it with errors.Is and keep in-memory state intact.
var ErrStorage = errors.New("storage failure")

var ErrUnknownCollection = errors.New("unknown collection")

func storageErr(op, collection string, err error) error {
	return fmt.Errorf("%s %s: %w: %w", op, collection, ErrStorage, err)
}

func knownCollection(name string) bool {
	for _, c := range Collections {
		if c == name {
			return true
		}
	}
	return false
}
