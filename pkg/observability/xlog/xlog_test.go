package xlog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/omeyang/xfluent/pkg/observability/xlog"
)

// testCleanup 在测试结束时执行 cleanup
func testCleanup(t *testing.T, cleanup func() error) {
	t.Helper()
	t.Cleanup(func() {
		if err := cleanup(); err != nil {
			t.Errorf("cleanup error: %v", err)
		}
	})
}

func TestLogger_BasicLogging(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := xlog.New().
		SetOutput(&buf).
		SetLevel(xlog.LevelDebug).
		Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	testCleanup(t, cleanup)

	ctx := context.Background()
	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, "warn message")
	logger.Error(ctx, "error message")

	output := buf.String()
	for _, want := range []string{"debug message", "info message", "warn message", "error message"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q\noutput: %s", want, output)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := xlog.New().SetOutput(&buf).SetLevelString("warn").Build()
	require.NoError(t, err)
	testCleanup(t, cleanup)

	ctx := context.Background()
	logger.Info(ctx, "hidden")
	logger.Warn(ctx, "shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	logger.SetLevel(xlog.LevelDebug)
	assert.Equal(t, xlog.LevelDebug, logger.GetLevel())
	assert.True(t, logger.Enabled(ctx, xlog.LevelDebug))

	// 派生 logger 共享级别
	child := logger.With(xlog.Action("click"))
	child.Debug(ctx, "child debug")
	assert.Contains(t, buf.String(), "child debug")
	assert.Contains(t, buf.String(), "action=click")
}

func TestLogger_JSONAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := xlog.New().
		SetOutput(&buf).
		SetFormat(" JSON ").
		SetAttrs(xlog.Driver("headless"), xlog.RunID("run-1")).
		Build()
	require.NoError(t, err)
	testCleanup(t, cleanup)

	logger.WithGroup("fixture").Info(context.Background(), "clicked",
		xlog.Locator(stringer("By.Name: submit_search")),
		xlog.Attempt(2),
		xlog.Err(errors.New("stale element reference")),
		xlog.Err(nil),
	)

	out := buf.String()
	assert.Contains(t, out, `"driver":"headless"`)
	assert.Contains(t, out, `"run_id":"run-1"`)
	assert.Contains(t, out, `"fixture":{`)
	assert.Contains(t, out, `"locator":"By.Name: submit_search"`)
	assert.Contains(t, out, `"attempt":2`)
	assert.Contains(t, out, `"error":"stale element reference"`)
}

type stringer string

func (s stringer) String() string { return string(s) }

func TestBuilder_Errors(t *testing.T) {
	_, _, err := xlog.New().SetFormat("xml").Build()
	assert.ErrorContains(t, err, `unknown format "xml"`)

	_, _, err = xlog.New().SetLevelString("verbose").SetFormat("xml").Build()
	assert.ErrorContains(t, err, `unknown level "verbose"`, "first error wins")

	_, _, err = xlog.New().SetOutput(nil).Build()
	assert.ErrorIs(t, err, xlog.ErrNilOutput)
}

func TestBuilder_ReplaceAttr(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := xlog.New().
		SetOutput(&buf).
		SetReplaceAttr(func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == xlog.KeyValue {
				return slog.String(a.Key, "***")
			}
			return a
		}).
		Build()
	require.NoError(t, err)
	testCleanup(t, cleanup)

	logger.Info(context.Background(), "typed", xlog.Value("secret"))
	assert.Contains(t, buf.String(), "value=***")
	assert.NotContains(t, buf.String(), "secret")
}

func TestBuilder_OnError(t *testing.T) {
	var got error
	logger, cleanup, err := xlog.New().
		SetOutput(failingWriter{}).
		SetOnError(func(err error) { got = err }).
		Build()
	require.NoError(t, err)
	testCleanup(t, cleanup)

	logger.Info(context.Background(), "lost")
	assert.Error(t, got)
	assert.Equal(t, uint64(1), xlog.ErrorCount(logger))
	assert.Zero(t, xlog.ErrorCount(nil))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestFromConfig(t *testing.T) {
	file := filepath.Join(t.TempDir(), "run.log")
	logger, cleanup, err := xlog.FromConfig(xlog.Config{Level: "debug", Format: "json", File: file}).Build()
	require.NoError(t, err)
	testCleanup(t, cleanup)

	assert.Equal(t, xlog.LevelDebug, logger.GetLevel())
	logger.Debug(context.Background(), "to file")

	_, _, err = xlog.FromConfig(xlog.Config{Level: "loud"}).Build()
	assert.Error(t, err)

	logger, cleanup, err = xlog.FromConfig(xlog.Config{}).Build()
	require.NoError(t, err)
	testCleanup(t, cleanup)
	assert.Equal(t, xlog.LevelInfo, logger.GetLevel())
}

func TestEnrichHandler(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := xlog.New().SetOutput(&buf).Build()
	require.NoError(t, err)
	testCleanup(t, cleanup)

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "click")
	logger.Info(ctx, "with span")
	span.End()

	out := buf.String()
	assert.Contains(t, out, "trace_id="+span.SpanContext().TraceID().String())
	assert.Contains(t, out, "span_id="+span.SpanContext().SpanID().String())

	buf.Reset()
	logger.Info(context.Background(), "without span")
	assert.NotContains(t, buf.String(), "trace_id")

	_, err = xlog.NewEnrichHandler(nil)
	assert.ErrorIs(t, err, xlog.ErrNilHandler)
}

func TestEnrichHandler_Disabled(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := xlog.New().SetOutput(&buf).SetEnrich(false).Build()
	require.NoError(t, err)
	testCleanup(t, cleanup)

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	ctx, span := tp.Tracer("test").Start(context.Background(), "click")
	defer span.End()

	logger.Info(ctx, "no enrich")
	assert.NotContains(t, buf.String(), "trace_id")
}

func TestDiscard(t *testing.T) {
	l := xlog.Discard()
	l.Error(context.Background(), "dropped")
	assert.False(t, l.Enabled(context.Background(), xlog.LevelError))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    xlog.Level
		wantErr bool
	}{
		{"debug", xlog.LevelDebug, false},
		{" INFO ", xlog.LevelInfo, false},
		{"warning", xlog.LevelWarn, false},
		{"Error", xlog.LevelError, false},
		{"trace", xlog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := xlog.ParseLevel(tt.in)
			assert.Equal(t, tt.wantErr, err != nil)
			assert.Equal(t, tt.want, got)
		})
	}

	var l xlog.Level
	require.NoError(t, l.UnmarshalText([]byte("warn")))
	assert.Equal(t, "WARN", l.String())
	assert.Error(t, l.UnmarshalText([]byte("nope")))
}

func TestGlobal(t *testing.T) {
	t.Cleanup(xlog.ResetDefault)

	var buf bytes.Buffer
	logger, cleanup, err := xlog.New().SetOutput(&buf).SetLevel(xlog.LevelDebug).Build()
	require.NoError(t, err)
	testCleanup(t, cleanup)

	xlog.SetDefault(logger)
	xlog.SetDefault(nil)
	assert.Same(t, logger, xlog.Default())

	ctx := context.Background()
	xlog.Debug(ctx, "g-debug")
	xlog.Info(ctx, "g-info")
	xlog.Warn(ctx, "g-warn")
	xlog.Error(ctx, "g-error")
	for _, want := range []string{"g-debug", "g-info", "g-warn", "g-error"} {
		assert.Contains(t, buf.String(), want)
	}

	xlog.ResetDefault()
	assert.NotNil(t, xlog.Default())
}
