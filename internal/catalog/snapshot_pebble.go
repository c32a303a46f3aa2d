package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

var snapshotKey = []byte("catalog/snapshot")

// PebbleStore persists the catalog snapshot in an embedded pebble DB,
// the service-side equivalent of the browser's localStorage cache.
// The DB handle is shared with the cart store; the caller owns it.
type PebbleStore struct {
	db *pebble.DB
}

func NewPebbleStore(db *pebble.DB) *PebbleStore {
	return &PebbleStore{db: db}
}

func (s *PebbleStore) Load(ctx context.Context) (Snapshot, bool, error) {
	v, closer, err := s.db.Get(snapshotKey)
	if errors.Is(err, pebble.ErrNotFound) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("snapshot load: %w", err)
	}
	defer func() { _ = closer.Close() }()

	var snap Snapshot
	if err := json.Unmarshal(v, &snap); err != nil {
		// A corrupt snapshot is treated as absent, not fatal.
		return Snapshot{}, false, nil
	}
	return snap, true, nil
}

func (s *PebbleStore) Save(ctx context.Context, snap Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("snapshot encode: %w", err)
	}
	if err := s.db.Set(snapshotKey, b, pebble.Sync); err != nil {
		return fmt.Errorf("snapshot save: %w", err)
	}
	return nil
}

func (s *PebbleStore) Ping(ctx context.Context) error {
	_, closer, err := s.db.Get(snapshotKey)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return closer.Close()
}
