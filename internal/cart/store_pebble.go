package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

const keyPrefix = "cart/"

// PebbleStore keeps carts in the shared embedded DB under "cart/<id>".
// The *pebble.DB handle is owned by the caller (shared with the
// catalog snapshot store).
type PebbleStore struct {
	db *pebble.DB
}

func NewPebbleStore(db *pebble.DB) *PebbleStore {
	return &PebbleStore{db: db}
}

func cartKey(id string) []byte {
	return []byte(keyPrefix + id)
}

func (s *PebbleStore) Get(ctx context.Context, id string) (Cart, bool, error) {
	v, closer, err := s.db.Get(cartKey(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return Cart{}, false, nil
	}
	if err != nil {
		return Cart{}, false, fmt.Errorf("cart get: %w", err)
	}
	defer func() { _ = closer.Close() }()

	var c Cart
	if err := json.Unmarshal(v, &c); err != nil {
		return Cart{}, false, fmt.Errorf("cart decode: %w", err)
	}

	// Stored carts may predate validation fixes; sanitize on load.
	c.Items = Sanitize(c.Items)
	return c, true, nil
}

func (s *PebbleStore) Put(ctx context.Context, c Cart) error {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("cart encode: %w", err)
	}
	if err := s.db.Set(cartKey(c.ID), b, pebble.Sync); err != nil {
		return fmt.Errorf("cart put: %w", err)
	}
	return nil
}

func (s *PebbleStore) Delete(ctx context.Context, id string) error {
	if err := s.db.Delete(cartKey(id), pebble.Sync); err != nil {
		return fmt.Errorf("cart delete: %w", err)
	}
	return nil
}

func (s *PebbleStore) Ping(ctx context.Context) error {
	_, closer, err := s.db.Get(cartKey("_ping"))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return closer.Close()
}
