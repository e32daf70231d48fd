package telemetry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDisabledProvidersAreNoops(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()

	tp, err := NewTracerProvider(ctx, Config{}, log)
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := NewMeterProvider(ctx, MetricsConfig{}, log)
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter(MeterName))
	assert.NoError(t, mp.Shutdown(ctx))

	lp, err := NewLoggerProvider(ctx, Config{Enabled: true}, false, log)
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.Same(t, log, lp.Bridge(log))
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestTracerProvider_RecordsSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	recorder := tracetest.NewSpanRecorder()
	tp := NewTracerProviderWithExporter(recorder, zap.NewNop())
	assert.True(t, tp.IsEnabled())

	_, span := tp.Tracer("test").Start(context.Background(), "market.buy")
	span.End()
	require.NoError(t, tp.ForceFlush(context.Background()))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "market.buy", ended[0].Name())
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestNewSampler(t *testing.T) {
	assert.Contains(t, newSampler(1).Description(), "AlwaysOnSampler")
	assert.Equal(t, "AlwaysOffSampler", newSampler(0).Description())
	assert.Contains(t, newSampler(0.25).Description(), "TraceIDRatioBased")
}

func TestMarketplaceMetrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := NewMeterProviderWithReader(reader, zap.NewNop())
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMarketplaceMetrics(mp.Meter(MeterName))
	require.NoError(t, err)

	m.ListingCreated(ctx, "SALE")
	m.ListingCreated(ctx, "SALE")
	m.ListingDeactivated(ctx, "SALE", "SOLD")
	m.TransactionRecorded(ctx, "SALE", "COMPLETED")
	m.OfferRecorded(ctx, "PENDING")
	m.RetryAttempted(ctx, 1)
	m.DateConflict(ctx)
	m.TransactionFailed(ctx)
	m.LockWaited(ctx, 3*time.Millisecond, true)
	m.LockWaited(ctx, 2*time.Second, false)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	sums := make(map[string]int64)
	var lockWaits uint64
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			switch data := md.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					sums[md.Name] += dp.Value
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					lockWaits += dp.Count
				}
			}
		}
	}

	assert.Equal(t, int64(2), sums["market_listings_created_total"])
	assert.Equal(t, int64(1), sums["market_listings_deactivated_total"])
	assert.Equal(t, int64(1), sums["market_transactions_total"])
	assert.Equal(t, int64(1), sums["market_offers_total"])
	assert.Equal(t, int64(1), sums["market_coordinator_retries_total"])
	assert.Equal(t, int64(1), sums["market_date_conflicts_total"])
	assert.Equal(t, int64(1), sums["market_transaction_failures_total"])
	assert.Equal(t, uint64(2), lockWaits)
}

// memoryLogExporter keeps the bodies of exported records
type memoryLogExporter struct {
	mu     sync.Mutex
	bodies []string
}

func (e *memoryLogExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.bodies = append(e.bodies, r.Body().AsString())
	}
	return nil
}

func (e *memoryLogExporter) Shutdown(context.Context) error   { return nil }
func (e *memoryLogExporter) ForceFlush(context.Context) error { return nil }

func (e *memoryLogExporter) Bodies() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.bodies...)
}

func TestLoggerProvider_BridgeHonoursBaseLevel(t *testing.T) {
	exporter := &memoryLogExporter{}
	lp := NewLoggerProviderWithProcessor(sdklog.NewSimpleProcessor(exporter), "swapmarket-test", zap.NewNop())
	assert.True(t, lp.IsEnabled())

	core, logs := observer.New(zapcore.InfoLevel)
	log := lp.Bridge(zap.New(core))

	log.Debug("dropped everywhere")
	log.Info("listing created", zap.String("listing_id", "abc"))

	assert.Equal(t, 1, logs.Len())
	assert.Equal(t, []string{"listing created"}, exporter.Bodies())
	assert.NoError(t, lp.Shutdown(context.Background()))
}

func TestProfiler(t *testing.T) {
	p, err := NewProfiler(ProfilerConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())

	_, err = NewProfiler(ProfilerConfig{Enabled: true}, zap.NewNop())
	assert.Error(t, err)
}
