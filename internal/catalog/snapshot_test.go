package catalog

import (
	"context"
	"testing"
	"time"
)

func TestMemStore_LoadDoesNotAliasStoredProducts(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	if err := s.Save(ctx, Snapshot{
		Products:  []Product{{ID: "p1", Name: "Shampoo"}},
		FetchedAt: time.Now(),
	}); err != nil {
		t.Fatalf("save: %v", err)
	}

	snap, ok, err := s.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	snap.Products[0].Name = "clobbered"

	again, _, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if again.Products[0].Name != "Shampoo" {
		t.Fatalf("stored snapshot mutated through a loaded copy: %q", again.Products[0].Name)
	}
}
