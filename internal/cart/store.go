package cart

import "context"

// Store persists carts keyed by cart id. Each Put replaces the cart
// wholesale, so a mutation is a single visible transition.
type Store interface {
	Get(ctx context.Context, id string) (Cart, bool, error)
	Put(ctx context.Context, c Cart) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
