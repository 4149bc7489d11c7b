package observability

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

const (
	attrTraceID = "trace_id"
	attrSpanID  = "span_id"
	attrService = "service"
	attrVersion = "version"
	attrEnv     = "env"
	attrMode    = "mode"
)

// RunAttrs identify one run of the binary in its log output.
type RunAttrs struct {
	Service     string
	Version     string
	Environment string
	Mode        AppMode
}

// slogAttrs returns the non-empty run attributes.
func (r RunAttrs) slogAttrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, 4)

	for _, kv := range [...]struct{ key, value string }{
		{attrService, r.Service},
		{attrVersion, r.Version},
		{attrEnv, r.Environment},
		{attrMode, string(r.Mode)},
	} {
		if kv.value != "" {
			attrs = append(attrs, slog.String(kv.key, kv.value))
		}
	}

	return attrs
}

// SpanHandler is an [slog.Handler] that stamps the run attributes once and
// adds trace_id and span_id to records logged under an active span, so a slow
// query in the logs can be found in the trace backend.
type SpanHandler struct {
	next slog.Handler
}

// NewSpanHandler wraps next. Run attributes are bound before any group, so
// they stay at the top level of every record.
func NewSpanHandler(next slog.Handler, run RunAttrs) *SpanHandler {
	return &SpanHandler{next: next.WithAttrs(run.slogAttrs())}
}

// Enabled implements [slog.Handler].
func (h *SpanHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements [slog.Handler].
func (h *SpanHandler) Handle(ctx context.Context, record slog.Record) error {
	if attrs := spanAttrs(ctx); len(attrs) > 0 {
		record = record.Clone()
		record.AddAttrs(attrs...)
	}

	return h.next.Handle(ctx, record) //nolint:wrapcheck // the handler chain is transparent.
}

// WithAttrs implements [slog.Handler].
func (h *SpanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SpanHandler{next: h.next.WithAttrs(attrs)}
}

// WithGroup implements [slog.Handler].
func (h *SpanHandler) WithGroup(name string) slog.Handler {
	return &SpanHandler{next: h.next.WithGroup(name)}
}

func spanAttrs(ctx context.Context) []slog.Attr {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}

	return []slog.Attr{
		slog.String(attrTraceID, sc.TraceID().String()),
		slog.String(attrSpanID, sc.SpanID().String()),
	}
}

// newLogger writes text or JSON records to cfg.LogOutput, stderr by default.
// Results go to stdout, so logs never interleave with them.
func newLogger(cfg Config) *slog.Logger {
	out := cfg.LogOutput
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: cfg.LogLevel}

	var base slog.Handler = slog.NewTextHandler(out, opts)
	if cfg.LogJSON {
		base = slog.NewJSONHandler(out, opts)
	}

	return slog.New(NewSpanHandler(base, RunAttrs{
		Service:     cfg.ServiceName,
		Version:     cfg.ServiceVersion,
		Environment: cfg.Environment,
		Mode:        cfg.Mode,
	}))
}
