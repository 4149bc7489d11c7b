// Package observability provides OpenTelemetry tracing, query metrics and
// structured logging for filterphrase.
package observability

import (
	"io"
	"log/slog"
	"os"
)

// AppMode identifies how the binary was launched.
type AppMode string

const (
	// ModeInteractive is the prompt loop mode.
	ModeInteractive AppMode = "interactive"
	// ModeQuery is the one-shot query mode.
	ModeQuery AppMode = "query"
)

const (
	defaultServiceName        = "filterphrase"
	defaultShutdownTimeoutSec = 5
)

// Config holds all observability configuration.
type Config struct {
	// ServiceName is the OTel resource service name.
	ServiceName string

	// ServiceVersion is the version of the running binary.
	ServiceVersion string

	// Environment is the deployment environment, e.g. "dev".
	Environment string

	Mode AppMode

	// OTLPEndpoint is the OTLP gRPC collector address (e.g. "localhost:4317").
	// Empty disables export; providers become no-op.
	OTLPEndpoint string

	// OTLPInsecure disables TLS for the OTLP gRPC connection.
	OTLPInsecure bool

	// SampleRatio is the trace sampling ratio. Zero samples every root span.
	SampleRatio float64

	LogLevel slog.Level
	LogJSON  bool

	// LogOutput receives log records. Nil means stderr.
	LogOutput io.Writer

	// ShutdownTimeoutSec bounds the flush on shutdown.
	ShutdownTimeoutSec int
}

// DefaultConfig returns a Config for zero-config startup.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeInteractive,
		LogLevel:           slog.LevelWarn,
		LogOutput:          os.Stderr,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}
