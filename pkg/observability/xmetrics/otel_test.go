package xmetrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newTestObserver(t *testing.T) (Observer, *tracetest.InMemoryExporter, *sdkmetric.ManualReader) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})

	obs, err := NewOTelObserver(
		WithInstrumentationName("xfluent-test"),
		WithTracerProvider(tp),
		WithMeterProvider(mp),
		nil,
	)
	require.NoError(t, err)
	return obs, exporter, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestOTelObserver_SuccessfulAction(t *testing.T) {
	obs, exporter, reader := newTestObserver(t)

	ctx, span := obs.Start(context.Background(), SpanOptions{
		Component: "xfixture",
		Operation: "click",
		Attrs:     []Attr{String("locator", "By.Name: submit_search"), Int("budget_ms", 10000)},
	})
	assert.True(t, trace.SpanContextFromContext(ctx).IsValid())
	span.End(Result{Retries: 2})
	span.End(Result{Err: errors.New("ignored")})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "xfixture.click", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assert.Contains(t, spans[0].Attributes, attribute.String("locator", "By.Name: submit_search"))
	assert.Contains(t, spans[0].Attributes, attribute.Int("retries", 2))

	metrics := collect(t, reader)
	total, ok := metrics[metricActionTotal].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, total.DataPoints, 1)
	assert.Equal(t, int64(1), total.DataPoints[0].Value)
	status, _ := total.DataPoints[0].Attributes.Value("status")
	assert.Equal(t, "ok", status.AsString())

	retries, ok := metrics[metricActionRetries].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(2), retries.DataPoints[0].Value)

	duration, ok := metrics[metricActionDuration].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Equal(t, uint64(1), duration.DataPoints[0].Count)
}

func TestOTelObserver_FailedAction(t *testing.T) {
	obs, exporter, reader := newTestObserver(t)

	ctx, cancel := context.WithCancel(context.Background())
	_, span := obs.Start(ctx, SpanOptions{Component: "xfixture", Operation: "select"})
	cancel()
	span.End(Result{Err: errors.New("option not found")})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "option not found", spans[0].Status.Description)
	require.Len(t, spans[0].Events, 1)

	// 已取消的 ctx 不影响指标记录。
	total, ok := collect(t, reader)[metricActionTotal].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	status, _ := total.DataPoints[0].Attributes.Value("status")
	assert.Equal(t, "error", status.AsString())
}

func TestOTelObserver_Defaults(t *testing.T) {
	obs, exporter, _ := newTestObserver(t)

	//nolint:staticcheck // 故意传入 nil context
	ctx, span := obs.Start(nil, SpanOptions{Kind: KindClient})
	require.NotNil(t, ctx)
	span.End(Result{Status: StatusError})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "unknown.unknown", spans[0].Name)
	assert.Equal(t, trace.SpanKindClient, spans[0].SpanKind)
	assert.Equal(t, "action failed", spans[0].Status.Description)
}

func TestToKeyValue(t *testing.T) {
	assert.Equal(t, attribute.Bool("b", true), toKeyValue(Bool("b", true)))
	assert.Equal(t, attribute.Int64("d", int64(time.Second)), toKeyValue(Duration("d", time.Second)))
	assert.Equal(t, attribute.Int64("i", 7), toKeyValue(Attr{Key: "i", Value: int64(7)}))
	assert.Equal(t, attribute.Float64("f", 1.5), toKeyValue(Attr{Key: "f", Value: 1.5}))
	assert.Equal(t, attribute.String("s", "[1 2]"), toKeyValue(Attr{Key: "s", Value: []int{1, 2}}))
	assert.Nil(t, attrsToOTel(nil))
	assert.Empty(t, attrsToOTel([]Attr{{Key: ""}, {Key: "nil"}}))
}
