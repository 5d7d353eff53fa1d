package observability

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMetrics_CacheAndRedisCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.CacheResult("user", true)
	m.CacheResult("user", false)
	m.CacheResult("user", false)
	m.RedisError("get")

	assert.InDelta(t, 1, testutil.ToFloat64(m.CacheRequests.WithLabelValues("user", "hit")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.CacheRequests.WithLabelValues("user", "miss")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RedisErrors.WithLabelValues("get")), 0)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CacheResult("user", true)
		m.RedisError("get")
		m.TrackQuery("find", "users")()
	})
}

func TestGormPlugin_ObservesQueries(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Use(NewGormPlugin(m)))

	type probe struct {
		ID   uint
		Name string
	}
	require.NoError(t, db.AutoMigrate(&probe{}))
	require.NoError(t, db.Create(&probe{Name: "a"}).Error)

	var got []probe
	require.NoError(t, db.Find(&got).Error)

	assert.Equal(t, 1, testutil.CollectAndCount(m.DatabaseQueryLatency.WithLabelValues("create", "probes").(prometheus.Histogram)))
	count, err := testutil.GatherAndCount(reg, "socialapi_database_query_latency_seconds")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, 2)
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "socialapi-test"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	span, ctx := NewSpan(context.Background(), "unit")
	assert.NotNil(t, ctx)
	span.End(nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, shutdown(ctx))
}

func TestInitTracing_UnknownExporter(t *testing.T) {
	_, err := InitTracing(TracingConfig{ServiceName: "socialapi-test", Enabled: true, Exporter: "zipkin"})
	assert.ErrorContains(t, err, `unknown exporter "zipkin"`)
}

func TestNewSampler(t *testing.T) {
	assert.Equal(t, "AlwaysOnSampler", newSampler(1).Description())
	assert.Equal(t, "AlwaysOnSampler", newSampler(2).Description())
	assert.Contains(t, newSampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestSpan_NilSafe(t *testing.T) {
	s := &Span{}
	assert.NotPanics(t, func() {
		s.SetAttributes()
		s.SetName("x")
		s.End(assert.AnError)
	})
	assert.Empty(t, s.TraceID())
}
