package filter_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/filterphrase/pkg/filter"
)

type recordedQuery struct {
	status  string
	results int
}

type fakeRecorder struct {
	mu      sync.Mutex
	queries []recordedQuery
}

func (f *fakeRecorder) RecordQuery(_ context.Context, status string, results int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queries = append(f.queries, recordedQuery{status: status, results: results})
}

func TestEngine_Query(t *testing.T) {
	t.Parallel()

	rec := &fakeRecorder{}
	engine := filter.NewEngine([]string{"a/x.lua", "b/y.lua", "c/z.txt"}, filter.WithRecorder(rec))

	assert.Equal(t, 3, engine.Len())

	results, err := engine.Query(context.Background(), "lua y")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b/y.lua", results[0].Item)

	_, err = engine.Query(context.Background(), "lua")
	require.ErrorIs(t, err, filter.ErrMalformedPrompt)

	assert.Equal(t, []recordedQuery{
		{status: filter.StatusOK, results: 1},
		{status: filter.StatusMalformed, results: 0},
	}, rec.queries)
}

func TestEngine_CandidatesAreCopied(t *testing.T) {
	t.Parallel()

	candidates := []string{"main.go"}
	engine := filter.NewEngine(candidates, filter.WithTracer(nil))

	candidates[0] = "other.py"

	results, err := engine.Query(context.Background(), "go main")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "main.go", results[0].Item)
}

func TestEngine_CachedResultsAreIsolated(t *testing.T) {
	t.Parallel()

	engine := filter.NewEngine([]string{"manin.py", "main.py"}, filter.WithCacheSize(4))

	first, err := engine.Query(context.Background(), "py main")
	require.NoError(t, err)
	require.Len(t, first, 2)

	first[0].Item = "mutated.py"

	second, err := engine.Query(context.Background(), "py main")
	require.NoError(t, err)
	assert.Equal(t, []filter.ScoredResult{
		{Item: "main.py", Score: filter.Good},
		{Item: "manin.py", Score: 1},
	}, second)
}

func TestEngine_CacheDisabled(t *testing.T) {
	t.Parallel()

	engine := filter.NewEngine([]string{"main.py"}, filter.WithCacheSize(4), filter.WithCacheSize(0))

	results, err := engine.Query(context.Background(), "py main")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}
