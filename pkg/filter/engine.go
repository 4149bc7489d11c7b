package filter

import (
	"context"
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

const spanQuery = "filterphrase.filter.query"

// QueryRecorder receives per-query measurements.
type QueryRecorder interface {
	RecordQuery(ctx context.Context, status string, results int, duration time.Duration)
}

// Query outcome statuses reported to the recorder.
const (
	StatusOK        = "ok"
	StatusMalformed = "malformed"
)

// Engine ranks queries against a candidate list fixed at construction.
// Ranked results are a pure function of the prompt, so they may be cached.
type Engine struct {
	candidates []string
	tracer     trace.Tracer
	recorder   QueryRecorder
	cache      *lru.Cache[Prompt, []ScoredResult]
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithTracer sets the tracer used for per-query spans.
func WithTracer(tracer trace.Tracer) EngineOption {
	return func(e *Engine) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// WithRecorder sets the query metrics recorder.
func WithRecorder(recorder QueryRecorder) EngineOption {
	return func(e *Engine) {
		e.recorder = recorder
	}
}

// WithCacheSize keeps the ranked results of the last n distinct prompts.
// Non-positive n disables caching.
func WithCacheSize(n int) EngineOption {
	return func(e *Engine) {
		if n <= 0 {
			e.cache = nil

			return
		}

		cache, err := lru.New[Prompt, []ScoredResult](n)
		if err != nil {
			return
		}

		e.cache = cache
	}
}

// NewEngine creates an Engine over a private copy of candidates.
func NewEngine(candidates []string, opts ...EngineOption) *Engine {
	e := &Engine{
		candidates: slices.Clone(candidates),
		tracer:     nooptrace.NewTracerProvider().Tracer(spanQuery),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Len returns the number of candidates.
func (e *Engine) Len() int {
	return len(e.candidates)
}

// Query parses line and ranks all candidates against it.
func (e *Engine) Query(ctx context.Context, line string) ([]ScoredResult, error) {
	start := time.Now()

	ctx, span := e.tracer.Start(ctx, spanQuery)
	defer span.End()

	prompt, err := ParsePrompt(line)
	if err != nil {
		span.SetStatus(codes.Error, "malformed prompt")
		e.record(ctx, StatusMalformed, 0, time.Since(start))

		return nil, err
	}

	results, cached := e.rank(prompt)

	span.SetAttributes(
		attribute.Bool("filter.cached", cached),
		attribute.String("filter.language", prompt.Language),
		attribute.Int("filter.candidates", len(e.candidates)),
		attribute.Int("filter.results", len(results)),
	)
	e.record(ctx, StatusOK, len(results), time.Since(start))

	return results, nil
}

// rank returns a private copy of the results so callers cannot alter cached entries.
func (e *Engine) rank(prompt Prompt) ([]ScoredResult, bool) {
	if e.cache == nil {
		return Rank(prompt, e.candidates), false
	}

	if results, ok := e.cache.Get(prompt); ok {
		return slices.Clone(results), true
	}

	results := Rank(prompt, e.candidates)
	e.cache.Add(prompt, results)

	return slices.Clone(results), false
}

func (e *Engine) record(ctx context.Context, status string, results int, duration time.Duration) {
	if e.recorder == nil {
		return
	}

	e.recorder.RecordQuery(ctx, status, results, duration)
}
