package cart

import (
	"context"
	"sync"
)

type MemStore struct {
	mu sync.RWMutex
	m  map[string]Cart
}

func NewMemStore() *MemStore {
	return &MemStore{m: map[string]Cart{}}
}

// Get returns a copy whose Items do not share backing with the stored
// cart, so callers can rebuild the line list freely and the stored
// cart only ever changes through Put.
func (s *MemStore) Get(ctx context.Context, id string) (Cart, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.m[id]
	if ok {
		c.Items = append([]Item(nil), c.Items...)
	}
	return c, ok, nil
}

func (s *MemStore) Put(ctx context.Context, c Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[c.ID] = c
	return nil
}

func (s *MemStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }
