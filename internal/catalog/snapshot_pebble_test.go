package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/pebble"
)

func TestPebbleStore_RoundTrip(t *testing.T) {
	db, err := pebble.Open(t.TempDir(), &pebble.Options{})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := NewPebbleStore(db)
	ctx := context.Background()

	if _, ok, err := store.Load(ctx); err != nil || ok {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
	}

	want := Snapshot{
		Products:  []Product{{ID: "p1", Name: "Shampoo", Price: 1200}},
		FetchedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := store.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if len(got.Products) != 1 || got.Products[0].ID != "p1" {
		t.Fatalf("products=%+v", got.Products)
	}
	if !got.FetchedAt.Equal(want.FetchedAt) {
		t.Fatalf("fetched_at=%v want=%v", got.FetchedAt, want.FetchedAt)
	}

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestPebbleStore_ReplacesWholesale(t *testing.T) {
	db, err := pebble.Open(t.TempDir(), &pebble.Options{})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := NewPebbleStore(db)
	ctx := context.Background()

	_ = store.Save(ctx, Snapshot{Products: []Product{{ID: "a"}, {ID: "b"}}, FetchedAt: time.Now()})
	_ = store.Save(ctx, Snapshot{Products: []Product{{ID: "c"}}, FetchedAt: time.Now()})

	got, _, _ := store.Load(ctx)
	if len(got.Products) != 1 || got.Products[0].ID != "c" {
		t.Fatalf("snapshot not replaced: %+v", got.Products)
	}
}
