package catalog

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// State is what callers always get back from a load: there is no error
// return on LoadProducts, failures surface as StatusError plus a
// message, with the previous product list intact.
type State struct {
	Status       Status    `json:"status"`
	Products     []Product `json:"products"`
	LastFetch    time.Time `json:"last_fetch,omitzero"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// Fetcher pulls and normalizes the remote feed. live requests a
// cache-defeating fetch (forced refresh); otherwise an intermediary
// cache may answer.
type Fetcher interface {
	FetchCatalog(ctx context.Context, live bool) ([]Product, error)
}

// Service owns the shared catalog snapshot. All mutation happens on
// fetch completion under mu; derived views read a copy.
type Service struct {
	fetcher   Fetcher
	snapshots SnapshotStore
	ttl       time.Duration
	log       *zap.Logger
	metrics   *Metrics
	now       func() time.Time

	mu         sync.Mutex
	products   []Product
	status     Status
	lastFetch  time.Time
	errMsg     string
	inFlight   int
	issuedSeq  uint64
	appliedSeq uint64
}

func NewService(f Fetcher, snapshots SnapshotStore, ttl time.Duration, log *zap.Logger, metrics *Metrics) *Service {
	s := &Service{
		fetcher:   f,
		snapshots: snapshots,
		ttl:       ttl,
		log:       log,
		metrics:   metrics,
		now:       time.Now,
		status:    StatusIdle,
	}
	s.restore()
	return s
}

// restore seeds state from a persisted snapshot so a restart within
// the TTL window can serve without a network round trip.
func (s *Service) restore() {
	if s.snapshots == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	snap, ok, err := s.snapshots.Load(ctx)
	if err != nil {
		s.log.Warn("snapshot restore failed", zap.Error(err))
		return
	}
	if !ok || len(snap.Products) == 0 {
		return
	}

	s.mu.Lock()
	s.products = snap.Products
	s.lastFetch = snap.FetchedAt
	s.status = StatusSuccess
	s.mu.Unlock()

	s.log.Info("catalog restored from snapshot",
		zap.Int("products", len(snap.Products)),
		zap.Time("fetched_at", snap.FetchedAt),
	)
}

// EnsureFresh refetches only when the snapshot is stale. Callers can
// invoke it on every read; the staleness and in-flight guards make it
// idempotent.
func (s *Service) EnsureFresh(ctx context.Context) State {
	return s.LoadProducts(ctx, false)
}

// LoadProducts fetches the catalog unless a fresh snapshot makes it
// unnecessary. It never fails: fetch errors come back as StatusError
// in the returned state. A non-forced call that races an ongoing fetch
// returns the current state untouched; a forced call supersedes the
// in-flight fetch with a newer one. Each issued fetch carries a
// monotonic sequence and completions apply in issue order: a
// completion older than the last applied one is discarded, so a slow
// superseded fetch can never overwrite the result that replaced it.
// An error status left by a failed refresh stays visible until a fetch
// actually succeeds, even while the product list is still fresh.
func (s *Service) LoadProducts(ctx context.Context, force bool) State {
	s.mu.Lock()

	if s.inFlight > 0 && !force {
		st := s.stateLocked()
		s.mu.Unlock()
		return st
	}

	if !force && s.freshLocked() {
		st := s.stateLocked()
		s.mu.Unlock()
		return st
	}

	s.inFlight++
	s.status = StatusLoading
	s.errMsg = ""
	s.issuedSeq++
	seq := s.issuedSeq
	s.mu.Unlock()

	products, err := s.fetcher.FetchCatalog(ctx, force)
	fetchedAt := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.inFlight--

	if seq <= s.appliedSeq {
		// A newer fetch already landed; drop this result.
		s.log.Debug("stale fetch discarded", zap.Uint64("seq", seq))
		return s.stateLocked()
	}
	s.appliedSeq = seq

	if err != nil {
		s.status = StatusError
		s.errMsg = "No se pudo cargar el catálogo. Verificá tu conexión e intentá nuevamente."
		s.metrics.observeFailure()
		s.log.Error("catalog fetch failed", zap.Error(err))
		// previous products stay visible
		return s.stateLocked()
	}

	s.products = products
	s.lastFetch = fetchedAt
	s.status = StatusSuccess
	s.errMsg = ""
	s.metrics.observeSuccess(len(products), float64(fetchedAt.Unix()))

	s.persistLocked(ctx)
	s.log.Info("catalog loaded", zap.Int("products", len(products)), zap.Bool("forced", force))

	return s.stateLocked()
}

func (s *Service) persistLocked(ctx context.Context) {
	if s.snapshots == nil {
		return
	}
	snap := Snapshot{Products: s.products, FetchedAt: s.lastFetch}
	if err := s.snapshots.Save(ctx, snap); err != nil {
		s.log.Warn("snapshot save failed", zap.Error(err))
	}
}

// freshLocked: an empty list or zero timestamp is always stale.
func (s *Service) freshLocked() bool {
	if len(s.products) == 0 || s.lastFetch.IsZero() {
		return false
	}
	return s.now().Sub(s.lastFetch) <= s.ttl
}

func (s *Service) stateLocked() State {
	return State{
		Status:       s.status,
		Products:     append([]Product(nil), s.products...),
		LastFetch:    s.lastFetch,
		ErrorMessage: s.errMsg,
	}
}

func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Service) Products() []Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Product(nil), s.products...)
}

// ProductBySlug matches on slug first, then on id, mirroring the
// storefront's detail URLs which accept either.
func (s *Service) ProductBySlug(slug string) (Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.Slug == slug || p.ID == slug {
			return p, true
		}
	}
	return Product{}, false
}

func (s *Service) Filter(f FilterState) []Product {
	return FilterProducts(s.Products(), f)
}

func (s *Service) Departments() []string {
	return DepartmentsOf(s.Products())
}

func (s *Service) Categories(department string) []string {
	return CategoriesOf(s.Products(), department)
}

func (s *Service) Ping(ctx context.Context) error {
	if s.snapshots == nil {
		return nil
	}
	return s.snapshots.Ping(ctx)
}
