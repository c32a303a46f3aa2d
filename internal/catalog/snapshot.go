package catalog

import (
	"context"
	"sync"
	"time"
)

// Snapshot is the persisted catalog cache: the full normalized list
// plus the moment it was fetched. It is replaced wholesale on every
// successful refresh; there is no per-product merging.
type Snapshot struct {
	Products  []Product `json:"products"`
	FetchedAt time.Time `json:"fetched_at"`
}

type SnapshotStore interface {
	Load(ctx context.Context) (Snapshot, bool, error)
	Save(ctx context.Context, snap Snapshot) error
	Ping(ctx context.Context) error
}

type MemStore struct {
	mu   sync.RWMutex
	snap Snapshot
	ok   bool
}

func NewMemStore() *MemStore { return &MemStore{} }

// Load returns a copy whose Products do not share backing with the
// stored snapshot; the stored value only changes through Save.
func (s *MemStore) Load(ctx context.Context) (Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.snap
	snap.Products = append([]Product(nil), snap.Products...)
	return snap, s.ok, nil
}

func (s *MemStore) Save(ctx context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	s.ok = true
	return nil
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }
