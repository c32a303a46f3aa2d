package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"
)

// fakeFetcher counts calls and can be made to block or fail. When
// onFetch is set it takes over per call (keyed by call number).
type fakeFetcher struct {
	mu       sync.Mutex
	calls    int
	products []Product
	err      error
	block    chan struct{} // when set, FetchCatalog waits on it
	onFetch  func(call int) ([]Product, error)
}

func (f *fakeFetcher) FetchCatalog(ctx context.Context, live bool) ([]Product, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	block := f.block
	products, err := f.products, f.err
	onFetch := f.onFetch
	f.mu.Unlock()

	if onFetch != nil {
		return onFetch(call)
	}
	if block != nil {
		<-block
	}
	return products, err
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestService(f Fetcher, snaps SnapshotStore, ttl time.Duration) *Service {
	return NewService(f, snaps, ttl, zap.NewNop(), nil)
}

func TestLoadProducts_FirstLoad(t *testing.T) {
	fetcher := &fakeFetcher{products: []Product{{ID: "p1"}, {ID: "p2"}}}
	svc := newTestService(fetcher, NewMemStore(), time.Minute)

	st := svc.LoadProducts(context.Background(), false)

	if st.Status != StatusSuccess {
		t.Fatalf("status=%s", st.Status)
	}
	if len(st.Products) != 2 {
		t.Fatalf("products=%d", len(st.Products))
	}
	if st.LastFetch.IsZero() {
		t.Fatalf("last fetch not recorded")
	}
}

func TestLoadProducts_FreshSkipsFetch(t *testing.T) {
	fetcher := &fakeFetcher{products: []Product{{ID: "p1"}}}
	svc := newTestService(fetcher, NewMemStore(), time.Minute)

	svc.LoadProducts(context.Background(), false)
	svc.LoadProducts(context.Background(), false)

	if got := fetcher.callCount(); got != 1 {
		t.Fatalf("fetch calls=%d, want 1 (fresh snapshot)", got)
	}
}

func TestLoadProducts_TTLExpiryRefetches(t *testing.T) {
	fetcher := &fakeFetcher{products: []Product{{ID: "p1"}}}
	svc := newTestService(fetcher, NewMemStore(), time.Minute)

	now := time.Now()
	svc.now = func() time.Time { return now }
	svc.LoadProducts(context.Background(), false)

	svc.now = func() time.Time { return now.Add(2 * time.Minute) }
	svc.LoadProducts(context.Background(), false)

	if got := fetcher.callCount(); got != 2 {
		t.Fatalf("fetch calls=%d, want 2 (stale snapshot)", got)
	}
}

func TestLoadProducts_ForceBypassesFreshness(t *testing.T) {
	fetcher := &fakeFetcher{products: []Product{{ID: "p1"}}}
	svc := newTestService(fetcher, NewMemStore(), time.Minute)

	svc.LoadProducts(context.Background(), false)
	svc.LoadProducts(context.Background(), true)

	if got := fetcher.callCount(); got != 2 {
		t.Fatalf("fetch calls=%d, want 2 (forced)", got)
	}
}

func TestLoadProducts_ErrorPreservesPreviousList(t *testing.T) {
	fetcher := &fakeFetcher{products: []Product{{ID: "p1"}}}
	svc := newTestService(fetcher, NewMemStore(), time.Minute)

	svc.LoadProducts(context.Background(), false)

	fetcher.mu.Lock()
	fetcher.err = errors.New("network down")
	fetcher.mu.Unlock()

	st := svc.LoadProducts(context.Background(), true)

	if st.Status != StatusError {
		t.Fatalf("status=%s", st.Status)
	}
	if st.ErrorMessage == "" {
		t.Fatalf("empty error message")
	}
	if len(st.Products) != 1 {
		t.Fatalf("previous snapshot blanked: products=%d", len(st.Products))
	}
}

func TestLoadProducts_FirstLoadFailureStaysEmpty(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("network down")}
	svc := newTestService(fetcher, NewMemStore(), time.Minute)

	st := svc.LoadProducts(context.Background(), false)

	if st.Status != StatusError {
		t.Fatalf("status=%s", st.Status)
	}
	if len(st.Products) != 0 {
		t.Fatalf("products=%d, want 0", len(st.Products))
	}
}

func TestLoadProducts_ConcurrentLoadIsNoOp(t *testing.T) {
	defer goleak.VerifyNone(t)

	block := make(chan struct{})
	fetcher := &fakeFetcher{products: []Product{{ID: "p1"}}, block: block}
	svc := newTestService(fetcher, NewMemStore(), time.Minute)

	done := make(chan State, 1)
	go func() {
		done <- svc.LoadProducts(context.Background(), false)
	}()

	// Wait for the first load to be in flight.
	deadline := time.After(2 * time.Second)
	for {
		if st := svc.State(); st.Status == StatusLoading {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first load never entered loading")
		case <-time.After(time.Millisecond):
		}
	}

	// A second non-forced call while in flight must not start another
	// fetch.
	st := svc.LoadProducts(context.Background(), false)
	if st.Status != StatusLoading {
		t.Fatalf("racing call status=%s, want loading", st.Status)
	}

	close(block)
	final := <-done

	if final.Status != StatusSuccess {
		t.Fatalf("final status=%s", final.Status)
	}
	if got := fetcher.callCount(); got != 1 {
		t.Fatalf("fetch calls=%d, want exactly 1", got)
	}
}

func TestLoadProducts_ForcedRefreshSupersedesInFlight(t *testing.T) {
	defer goleak.VerifyNone(t)

	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})

	fetcher := &fakeFetcher{}
	fetcher.onFetch = func(call int) ([]Product, error) {
		if call == 1 {
			close(firstStarted)
			<-releaseFirst
			return []Product{{ID: "old"}}, nil
		}
		return []Product{{ID: "new"}}, nil
	}

	svc := newTestService(fetcher, NewMemStore(), time.Minute)

	done := make(chan State, 1)
	go func() {
		done <- svc.LoadProducts(context.Background(), false)
	}()
	<-firstStarted

	// A forced refresh while the first fetch hangs starts a newer one
	// and completes first.
	st := svc.LoadProducts(context.Background(), true)
	if st.Status != StatusSuccess {
		t.Fatalf("forced status=%s", st.Status)
	}
	if len(st.Products) != 1 || st.Products[0].ID != "new" {
		t.Fatalf("forced products=%+v", st.Products)
	}

	// The superseded fetch finishes last; its result is older than the
	// applied one and must be discarded.
	close(releaseFirst)
	<-done

	final := svc.State()
	if final.Status != StatusSuccess {
		t.Fatalf("final status=%s", final.Status)
	}
	if len(final.Products) != 1 || final.Products[0].ID != "new" {
		t.Fatalf("stale completion overwrote newer result: %+v", final.Products)
	}
	if got := fetcher.callCount(); got != 2 {
		t.Fatalf("fetch calls=%d, want 2", got)
	}
}

func TestLoadProducts_ErrorStaysUntilFetchSucceeds(t *testing.T) {
	fetcher := &fakeFetcher{products: []Product{{ID: "p1"}}}
	svc := newTestService(fetcher, NewMemStore(), time.Minute)

	svc.LoadProducts(context.Background(), false)

	fetcher.mu.Lock()
	fetcher.err = errors.New("network down")
	fetcher.mu.Unlock()
	svc.LoadProducts(context.Background(), true)

	// The list is still fresh, so this serves without a fetch, but it
	// must not paper over the failed refresh.
	st := svc.LoadProducts(context.Background(), false)
	if st.Status != StatusError {
		t.Fatalf("status=%s, want error until a fetch succeeds", st.Status)
	}
	if st.ErrorMessage == "" {
		t.Fatalf("error message cleared")
	}
	if len(st.Products) != 1 {
		t.Fatalf("products=%d", len(st.Products))
	}
	if got := fetcher.callCount(); got != 2 {
		t.Fatalf("fetch calls=%d, want 2 (fresh list, no refetch)", got)
	}

	// A successful forced refresh clears it.
	fetcher.mu.Lock()
	fetcher.err = nil
	fetcher.mu.Unlock()
	st = svc.LoadProducts(context.Background(), true)
	if st.Status != StatusSuccess || st.ErrorMessage != "" {
		t.Fatalf("status=%s msg=%q after recovery", st.Status, st.ErrorMessage)
	}
}

func TestLoadProducts_PersistsSnapshot(t *testing.T) {
	fetcher := &fakeFetcher{products: []Product{{ID: "p1"}}}
	snaps := NewMemStore()
	svc := newTestService(fetcher, snaps, time.Minute)

	svc.LoadProducts(context.Background(), false)

	snap, ok, err := snaps.Load(context.Background())
	if err != nil || !ok {
		t.Fatalf("snapshot not persisted: ok=%v err=%v", ok, err)
	}
	if len(snap.Products) != 1 || snap.FetchedAt.IsZero() {
		t.Fatalf("snapshot incomplete: %+v", snap)
	}
}

func TestNewService_RestoresSnapshot(t *testing.T) {
	snaps := NewMemStore()
	_ = snaps.Save(context.Background(), Snapshot{
		Products:  []Product{{ID: "p1"}},
		FetchedAt: time.Now(),
	})

	fetcher := &fakeFetcher{products: []Product{{ID: "fresh"}}}
	svc := newTestService(fetcher, snaps, time.Minute)

	// Restored and fresh: EnsureFresh serves without a fetch.
	st := svc.EnsureFresh(context.Background())

	if st.Status != StatusSuccess {
		t.Fatalf("status=%s", st.Status)
	}
	if len(st.Products) != 1 || st.Products[0].ID != "p1" {
		t.Fatalf("restored products=%+v", st.Products)
	}
	if got := fetcher.callCount(); got != 0 {
		t.Fatalf("fetch calls=%d, want 0", got)
	}
}

func TestNewService_ExpiredSnapshotIsStale(t *testing.T) {
	snaps := NewMemStore()
	_ = snaps.Save(context.Background(), Snapshot{
		Products:  []Product{{ID: "old"}},
		FetchedAt: time.Now().Add(-time.Hour),
	})

	fetcher := &fakeFetcher{products: []Product{{ID: "fresh"}}}
	svc := newTestService(fetcher, snaps, time.Minute)

	st := svc.EnsureFresh(context.Background())

	if got := fetcher.callCount(); got != 1 {
		t.Fatalf("fetch calls=%d, want 1 (expired snapshot)", got)
	}
	if st.Products[0].ID != "fresh" {
		t.Fatalf("products=%+v", st.Products)
	}
}

func TestProductBySlug(t *testing.T) {
	fetcher := &fakeFetcher{products: []Product{
		{ID: "p1", Slug: "shampoo-argan"},
		{ID: "p2", Slug: "aros-luna"},
	}}
	svc := newTestService(fetcher, NewMemStore(), time.Minute)
	svc.LoadProducts(context.Background(), false)

	if p, ok := svc.ProductBySlug("aros-luna"); !ok || p.ID != "p2" {
		t.Fatalf("by slug: ok=%v p=%+v", ok, p)
	}
	if p, ok := svc.ProductBySlug("p1"); !ok || p.ID != "p1" {
		t.Fatalf("by id fallback: ok=%v p=%+v", ok, p)
	}
	if _, ok := svc.ProductBySlug("nope"); ok {
		t.Fatalf("unknown slug found")
	}
}
