package storage

import "context"

// Snapshot is a flat serialized mirror of the full store state. It exists
// for explicit crash-recovery tooling only; startup always reads the
// structured collections, never a snapshot.
type Snapshot struct {
	Collections map[string]map[string][]byte `json:"collections"`
}

func TakeSnapshot(ctx context.Context, s Store) (Snapshot, error) {
	snap := Snapshot{Collections: make(map[string]map[string][]byte, len(Collections))}
	for _, collection := range Collections {
		docs, err := s.GetAll(ctx, collection)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Collections[collection] = docs
	}
	return snap, nil
}

// RestoreSnapshot writes every snapshotted document back. Documents present
// in the store but absent from the snapshot are left alone.
func RestoreSnapshot(ctx context.Context, s Store, snap Snapshot) error {
	for _, collection := range Collections {
		for key, doc := range snap.Collections[collection] {
			if err := s.Put(ctx, collection, key, doc); err != nil {
				return err
			}
		}
	}
	return nil
}
