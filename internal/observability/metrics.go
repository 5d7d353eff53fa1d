package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

const metricsNamespace = "socialapi"

// Metrics holds the application collectors. Each server owns its registry so
// several instances can live in one process (tests).
type Metrics struct {
	// CacheRequests counts cache lookups by key kind and result (hit/miss).
	CacheRequests *prometheus.CounterVec
	// RedisErrors counts Redis errors by command.
	RedisErrors *prometheus.CounterVec
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency *prometheus.HistogramVec
}

// NewMetrics registers the application collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CacheRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups by key kind and result",
		}, []string{"kind", "result"}),
		RedisErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "redis_errors_total",
			Help:      "Total number of Redis errors by operation type",
		}, []string{"operation"}),
		DatabaseQueryLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "database_query_latency_seconds",
			Help:      "Database query latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "table"}),
	}
}

// ObserveQuery records the latency of a database query.
func (m *Metrics) ObserveQuery(operation, table string, start time.Time) {
	if m == nil {
		return
	}
	m.DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
// Used by stores without a callback system (MongoDB).
func (m *Metrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}

// CacheResult counts one cache lookup.
func (m *Metrics) CacheResult(kind string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheRequests.WithLabelValues(kind, result).Inc()
}

// RedisError counts one failed Redis command.
func (m *Metrics) RedisError(operation string) {
	if m == nil {
		return
	}
	m.RedisErrors.WithLabelValues(operation).Inc()
}

const queryStartKey = "observability:query_start"

// GormPlugin records query latency for every GORM statement.
type GormPlugin struct {
	metrics *Metrics
}

// NewGormPlugin returns a plugin for db.Use.
func NewGormPlugin(m *Metrics) *GormPlugin {
	return &GormPlugin{metrics: m}
}

// Name implements gorm.Plugin.
func (p *GormPlugin) Name() string {
	return "socialapi:metrics"
}

// Initialize implements gorm.Plugin.
func (p *GormPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		op     string
		before func(name string, fn func(*gorm.DB)) error
		after  func(name string, fn func(*gorm.DB)) error
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}

	for _, h := range hooks {
		op := h.op
		if err := h.before("metrics:before_"+op, p.before); err != nil {
			return err
		}
		if err := h.after("metrics:after_"+op, func(tx *gorm.DB) { p.after(tx, op) }); err != nil {
			return err
		}
	}
	return nil
}

func (p *GormPlugin) before(tx *gorm.DB) {
	tx.InstanceSet(queryStartKey, time.Now())
}

func (p *GormPlugin) after(tx *gorm.DB, op string) {
	v, ok := tx.InstanceGet(queryStartKey)
	if !ok {
		return
	}
	start, ok := v.(time.Time)
	if !ok {
		return
	}
	table := tx.Statement.Table
	if table == "" {
		table = "unknown"
	}
	p.metrics.ObserveQuery(op, table, start)
}
