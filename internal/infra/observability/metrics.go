package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
	"github.com/tontinehub/tontine-admin-bfa/internal/domain"
)

// Metrics holds all Prometheus metrics for the admin BFF.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	storeErrors     *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	snapshotFetches prometheus.Counter
	mutations       *prometheus.CounterVec
	missedMembers   *prometheus.GaugeVec
	depositTotal    *prometheus.GaugeVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tontine_admin_operation_duration_seconds",
				Help:    "Duration of admin operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		storeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tontine_admin_store_errors_total",
				Help: "Total errors returned by the data collaborator.",
			},
			[]string{"operation"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tontine_admin_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tontine_admin_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		snapshotFetches: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tontine_admin_snapshot_fetches_total",
				Help: "Total full snapshot reads from the data collaborator.",
			},
		),
		mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tontine_admin_mutations_total",
				Help: "Admin mutations relayed to the data collaborator.",
			},
			[]string{"operation", "status"},
		),
		missedMembers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tontine_admin_missed_members",
				Help: "Active members without a contribution, by period, at last computation.",
			},
			[]string{"period"},
		),
		depositTotal: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tontine_admin_deposit_total_fc",
				Help: "Successful deposit totals in FC, by bucket, at last computation.",
			},
			[]string{"bucket"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrStoreError increments the data collaborator error counter.
func (m *Metrics) IncrStoreError(operation string) {
	m.storeErrors.WithLabelValues(operation).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrSnapshotFetch counts one snapshot read.
func (m *Metrics) IncrSnapshotFetch() {
	m.snapshotFetches.Inc()
}

// IncrMutation counts one relayed mutation; ok selects the status label.
func (m *Metrics) IncrMutation(operation string, ok bool) {
	status := "success"
	if !ok {
		status = "failure"
	}
	m.mutations.WithLabelValues(operation, status).Inc()
}

// SetMissed publishes the size of a missed-contribution list.
func (m *Metrics) SetMissed(period string, n int) {
	m.missedMembers.WithLabelValues(period).Set(float64(n))
}

// SetDepositTotals publishes the headline deposit totals.
func (m *Metrics) SetDepositTotals(today, yesterday, week int64) {
	m.depositTotal.WithLabelValues("today").Set(float64(today))
	m.depositTotal.WithLabelValues("yesterday").Set(float64(yesterday))
	m.depositTotal.WithLabelValues("week").Set(float64(week))
}

// Snapshot returns the operational counters for GET /v1/admin/metrics.
func (m *Metrics) Snapshot() *domain.ServiceMetrics {
	hits := sumCounterVec(m.cacheHits)
	misses := sumCounterVec(m.cacheMisses)
	okMutations := sumCounterVecWhere(m.mutations, "status", "success")
	failedMutations := sumCounterVecWhere(m.mutations, "status", "failure")

	cacheHitRate := float64(0)
	if hits+misses > 0 {
		cacheHitRate = hits / (hits + misses)
	}
	failRate := float64(0)
	if okMutations+failedMutations > 0 {
		failRate = failedMutations / (okMutations + failedMutations)
	}

	return &domain.ServiceMetrics{
		SnapshotFetches:  int64(counterValue(m.snapshotFetches)),
		CacheHitRate:     cacheHitRate,
		StoreErrors:      int64(sumCounterVec(m.storeErrors)),
		Mutations:        int64(okMutations + failedMutations),
		FailedMutations:  int64(failedMutations),
		MutationFailRate: failRate,
		Period:           "since_start",
	}
}

func counterValue(c prometheus.Counter) float64 {
	pb := &dto.Metric{}
	if err := c.Write(pb); err != nil {
		return 0
	}
	if pb.Counter != nil {
		return pb.Counter.GetValue()
	}
	return 0
}

// sumCounterVec adds up every child of a CounterVec.
func sumCounterVec(cv *prometheus.CounterVec) float64 {
	return sumCounterVecWhere(cv, "", "")
}

// sumCounterVecWhere adds up the children whose label equals value. An empty
// label matches every child.
func sumCounterVecWhere(cv *prometheus.CounterVec, label, value string) float64 {
	ch := make(chan prometheus.Metric)
	go func() {
		cv.Collect(ch)
		close(ch)
	}()

	var total float64
	for metric := range ch {
		pb := &dto.Metric{}
		if err := metric.Write(pb); err != nil || pb.Counter == nil {
			continue
		}
		if label != "" && !hasLabel(pb, label, value) {
			continue
		}
		total += pb.Counter.GetValue()
	}
	return total
}

func hasLabel(pb *dto.Metric, name, value string) bool {
	for _, lp := range pb.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue() == value
		}
	}
	return false
}
