package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tontinehub/tontine-admin-bfa/internal/domain"
	"github.com/tontinehub/tontine-admin-bfa/internal/infra/observability"
	"github.com/tontinehub/tontine-admin-bfa/internal/port"
	"github.com/tontinehub/tontine-admin-bfa/internal/reporting"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service/admin")

const snapshotKey = "snapshot"

// AdminService backs every admin screen: it reads snapshots from the data
// collaborator, runs them through the reporting core and relays mutations.
type AdminService struct {
	store   port.AdminStore
	cache   port.Cache[any]
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
	loc     *time.Location

	// generation counts invalidations. A fetch that started before the
	// latest invalidation must not repopulate the cache.
	cacheMu    sync.Mutex
	generation uint64
}

// AdminOption customises an AdminService.
type AdminOption func(*AdminService)

// WithClock pins the service clock. Used by tests.
func WithClock(now func() time.Time) AdminOption {
	return func(s *AdminService) { s.now = now }
}

// WithLocation sets the timezone in which calendar days are computed.
func WithLocation(loc *time.Location) AdminOption {
	return func(s *AdminService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// NewAdminService creates the admin service with all dependencies injected.
func NewAdminService(
	store port.AdminStore,
	cache port.Cache[any],
	metrics *observability.Metrics,
	logger *zap.Logger,
	opts ...AdminOption,
) *AdminService {
	s := &AdminService{
		store:   store,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
		loc:     time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AdminService) calendar() reporting.Calendar {
	return reporting.NewCalendar(s.now().In(s.loc))
}

// snapshot returns the three collaborator lists, fetched concurrently and
// cached until the next mutation or TTL expiry. The result is shared and
// must not be modified.
func (s *AdminService) snapshot(ctx context.Context) (*domain.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "AdminService.snapshot")
	defer span.End()

	if cached, ok := s.cache.Get(snapshotKey); ok {
		if snap, ok := cached.(*domain.Snapshot); ok {
			s.metrics.IncrCacheHit("snapshot")
			return snap, nil
		}
	}
	s.metrics.IncrCacheMiss("snapshot")
	s.metrics.IncrSnapshotFetch()
	gen := s.currentGeneration()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("snapshot", time.Since(start))
	}()

	var snap domain.Snapshot
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		users, err := s.store.ListUsers(gCtx)
		if err != nil {
			s.storeFailed("list_users", err)
			return fmt.Errorf("users fetch: %w", err)
		}
		snap.Users = users
		return nil
	})

	g.Go(func() error {
		groups, err := s.store.ListGroups(gCtx)
		if err != nil {
			s.storeFailed("list_groups", err)
			return fmt.Errorf("groups fetch: %w", err)
		}
		snap.Groups = groups
		return nil
	})

	g.Go(func() error {
		txns, err := s.store.ListTransactions(gCtx)
		if err != nil {
			s.storeFailed("list_transactions", err)
			return fmt.Errorf("transactions fetch: %w", err)
		}
		snap.Transactions = txns
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.storeSnapshot(gen, &snap)
	return &snap, nil
}

func (s *AdminService) currentGeneration() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.generation
}

// storeSnapshot caches snap unless a mutation invalidated the cache while
// it was being fetched.
func (s *AdminService) storeSnapshot(gen uint64, snap *domain.Snapshot) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if gen != s.generation {
		s.logger.Debug("discarding snapshot fetched before a mutation")
		return
	}
	s.cache.Set(snapshotKey, snap)
}

func (s *AdminService) storeFailed(op string, err error) {
	s.metrics.IncrStoreError(op)
	s.logger.Error("data collaborator call failed",
		zap.String("operation", op),
		zap.Error(err),
	)
}

// invalidate drops the cached snapshot so the next read sees the mutation.
func (s *AdminService) invalidate() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.generation++
	s.cache.Delete(snapshotKey)
}

// PingStore probes the data collaborator without touching the cache and
// reports the round-trip latency.
func (s *AdminService) PingStore(ctx context.Context) (time.Duration, error) {
	ctx, span := tracer.Start(ctx, "AdminService.PingStore")
	defer span.End()

	start := time.Now()
	_, err := s.store.ListUsers(ctx)
	return time.Since(start), err
}
