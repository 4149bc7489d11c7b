package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/filterphrase/pkg/filter"
)

func TestParsePrompt(t *testing.T) {
	t.Parallel()

	prompt, err := filter.ParsePrompt("lua finders/async")
	require.NoError(t, err)
	assert.Equal(t, "lua", prompt.Language)
	assert.Equal(t, "finders/async", prompt.Filter)

	prompt, err = filter.ParsePrompt("go cmd main go")
	require.NoError(t, err)
	assert.Equal(t, "go", prompt.Language)
	assert.Equal(t, "cmd main go", prompt.Filter)

	prompt, err = filter.ParsePrompt("py ")
	require.NoError(t, err)
	assert.Equal(t, "py", prompt.Language)
	assert.Empty(t, prompt.Filter)
}

func TestParsePrompt_Malformed(t *testing.T) {
	t.Parallel()

	_, err := filter.ParsePrompt("lua")
	require.ErrorIs(t, err, filter.ErrMalformedPrompt)
	assert.Contains(t, err.Error(), `"lua"`)
}

func TestExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		candidate string
		want      string
	}{
		{"a/x.lua", "lua"},
		{"main.py", "py"},
		{"archive.tar.gz", "gz"},
		{"dir.d/Makefile", ""},
		{".bashrc", ""},
		{"conf/.env.local", "local"},
		{"README.MD", "MD"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, filter.Extension(tt.candidate), tt.candidate)
	}
}

func TestMatch_RejectsOtherExtensions(t *testing.T) {
	t.Parallel()

	prompt := filter.Prompt{Language: "lua", Filter: "z"}

	assert.InDelta(t, filter.Rejected, filter.Match(prompt, "c/z.txt"), 0)
	assert.InDelta(t, filter.Rejected, filter.Match(prompt, "z.LUA"), 0)
	assert.InDelta(t, filter.Rejected, filter.Match(prompt, "lua/z"), 0)
}

func TestMatch_EmptyLanguageRejectsExtensionless(t *testing.T) {
	t.Parallel()

	candidates := []string{"Makefile", "LICENSE", "a.go", "foo.", ".bashrc", "dir.d/README"}

	for _, line := range []string{" Make", " "} {
		prompt, err := filter.ParsePrompt(line)
		require.NoError(t, err)
		assert.Empty(t, prompt.Language)

		assert.Empty(t, filter.Rank(prompt, candidates), "%q", line)
	}

	assert.InDelta(t, filter.Rejected, filter.MatchString(" Make", "Makefile"), 0)
}

func TestMatch_SubstringIsGood(t *testing.T) {
	t.Parallel()

	prompt := filter.Prompt{Language: "lua", Filter: "finders/async"}

	assert.InDelta(t, filter.Good, filter.Match(prompt, "lua/telescope/finders/async_job.lua"), 0)
}

func TestMatch_OverlapRatio(t *testing.T) {
	t.Parallel()

	// {m,a,i,n} are all present but "main" is not a substring.
	assert.InDelta(t, 1.0, filter.Match(filter.Prompt{Language: "py", Filter: "main"}, "manin.py"), 1e-9)

	// {a,b,c,x}: a,b,c present in "abc/q.go", x missing: 3/4.
	assert.InDelta(t, 0.75, filter.Match(filter.Prompt{Language: "go", Filter: "xcba"}, "abc/q.go"), 1e-9)

	// {w,x,y,z}: only z present: 1/4.
	assert.InDelta(t, filter.Rejected, filter.Match(filter.Prompt{Language: "go", Filter: "wxyz"}, "z.go"), 0)
}

func TestMatch_DirectoriesCount(t *testing.T) {
	t.Parallel()

	prompt := filter.Prompt{Language: "go", Filter: "kpg"}

	assert.InDelta(t, 1.0, filter.Match(prompt, "pkg/x.go"), 1e-9)
}

func TestMatch_EmptyFilterIsGood(t *testing.T) {
	t.Parallel()

	prompt := filter.Prompt{Language: "go", Filter: ""}

	assert.InDelta(t, filter.Good, filter.Match(prompt, "a/b.go"), 0)
	assert.InDelta(t, filter.Rejected, filter.Match(prompt, "a/b.py"), 0)
}

func TestMatchString(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, filter.Good, filter.MatchString("lua y", "b/y.lua"), 0)
	assert.InDelta(t, filter.Rejected, filter.MatchString("lua", "b/y.lua"), 0)
}

func TestOverlapRatio(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.5, filter.OverlapRatio("aabb", "xa"), 1e-9)
	assert.InDelta(t, 1.0, filter.OverlapRatio("", "anything"), 1e-9)
	assert.InDelta(t, 0.0, filter.OverlapRatio("é", "e"), 1e-9)
}

func TestRank_Scenario(t *testing.T) {
	t.Parallel()

	prompt, err := filter.ParsePrompt("lua y")
	require.NoError(t, err)

	results := filter.Rank(prompt, []string{"a/x.lua", "b/y.lua", "c/z.txt"})

	require.Len(t, results, 1)
	assert.Equal(t, "b/y.lua", results[0].Item)
	assert.InDelta(t, filter.Good, results[0].Score, 0)
}

func TestRank_GoodBeforePartial(t *testing.T) {
	t.Parallel()

	prompt, err := filter.ParsePrompt("py main")
	require.NoError(t, err)

	results := filter.Rank(prompt, []string{"manin.py", "main.py", "zzz.py", "main.go"})

	require.Len(t, results, 2)
	assert.Equal(t, "main.py", results[0].Item)
	assert.InDelta(t, filter.Good, results[0].Score, 0)
	assert.Equal(t, "manin.py", results[1].Item)
	assert.InDelta(t, 1.0, results[1].Score, 1e-9)
}

func TestRank_StableAndSorted(t *testing.T) {
	t.Parallel()

	candidates := []string{
		"b/abd.go",  // {a,b,c,d}: c missing, 0.75
		"a/cab.go",  // "abc" absent, {a,b,c,d}: d missing, 0.75
		"x/abcd.go", // substring
		"dcba.go",   // all chars, 1.0
		"q/abcd.go", // substring
		"n.go",      // rejected
	}

	prompt := filter.Prompt{Language: "go", Filter: "abcd"}
	results := filter.Rank(prompt, candidates)

	items := make([]string, 0, len(results))
	for _, r := range results {
		assert.NotEqual(t, filter.Rejected, r.Score)

		items = append(items, r.Item)
	}

	assert.Equal(t, []string{"x/abcd.go", "q/abcd.go", "dcba.go", "b/abd.go", "a/cab.go"}, items)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestRank_Empty(t *testing.T) {
	t.Parallel()

	results := filter.Rank(filter.Prompt{Language: "go", Filter: "x"}, nil)
	assert.Empty(t, results)
}

func TestTop(t *testing.T) {
	t.Parallel()

	results := make([]filter.ScoredResult, 15)

	assert.Len(t, filter.Top(results, filter.DisplayLimit), filter.DisplayLimit)
	assert.Len(t, filter.Top(results[:3], filter.DisplayLimit), 3)
	assert.Empty(t, filter.Top(results, -1))
}
