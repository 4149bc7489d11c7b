package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/filterphrase/pkg/observability"
)

func TestInit_NoopWhenNoEndpoint(t *testing.T) {
	t.Parallel()

	providers, err := observability.Init(observability.DefaultConfig())
	require.NoError(t, err)

	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Logger)

	_, span := providers.Tracer.Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))
	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestInit_WithResourceAttributes(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = "1.2.3"
	cfg.Environment = "test"
	cfg.Mode = observability.ModeQuery

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	assert.NotNil(t, providers.Tracer)
}

func TestInit_LoggerWritesToConfiguredOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	cfg := observability.DefaultConfig()
	cfg.LogJSON = true
	cfg.LogLevel = slog.LevelInfo
	cfg.LogOutput = &buf
	cfg.Mode = observability.ModeQuery
	cfg.ServiceVersion = "0.3.0"

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	providers.Logger.DebugContext(context.Background(), "hidden")
	providers.Logger.InfoContext(context.Background(), "candidates loaded", slog.Int("count", 3))

	var record map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "candidates loaded", record["msg"])
	assert.Equal(t, "filterphrase", record["service"])
	assert.Equal(t, "query", record["mode"])
	assert.Equal(t, "0.3.0", record["version"])
	assert.InDelta(t, 3, record["count"], 0)
}

func TestInit_ExportingProvidersRecordSpans(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.OTLPEndpoint = "127.0.0.1:1"
	cfg.OTLPInsecure = true
	cfg.ShutdownTimeoutSec = 1

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	_, span := providers.Tracer.Start(context.Background(), "filterphrase.filter.query")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	// Nothing listens on the endpoint, so the flush may fail; it must still return.
	_ = providers.Shutdown(context.Background())
}
