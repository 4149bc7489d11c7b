// Package filter scores candidate paths against an "<ext> <text>" prompt.
package filter

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
)

// Score sentinels and limits.
const (
	// Rejected marks a candidate that must not be shown. It is lower than any accepted score.
	Rejected = -1.0
	// Good is the score of a literal substring hit. It outranks every partial overlap.
	Good = 2.0
	// Threshold is the minimal character overlap ratio a candidate needs to be kept.
	Threshold = 0.75
	// DisplayLimit is the number of results printed per query.
	DisplayLimit = 10
)

const promptSeparator = " "

// ErrMalformedPrompt is returned when a prompt does not have the "<ext> <text>" shape.
var ErrMalformedPrompt = errors.New(`invalid filter syntax, expected "<ext> <text>"`)

// Prompt is a parsed search prompt.
type Prompt struct {
	// Language is the expected file extension without the leading dot.
	Language string
	// Filter is matched against the whole candidate path.
	Filter string
}

// ScoredResult pairs a candidate with its score.
type ScoredResult struct {
	Item  string
	Score float64
}

// ParsePrompt splits a line on its first space into language and filter.
// The filter keeps everything after that space verbatim.
func ParsePrompt(line string) (Prompt, error) {
	language, filter, ok := strings.Cut(line, promptSeparator)
	if !ok {
		return Prompt{}, fmt.Errorf("%w: %q", ErrMalformedPrompt, line)
	}

	return Prompt{Language: language, Filter: filter}, nil
}

// Extension returns the text after the last dot of the final path segment.
// Segments without a dot and dotfiles such as ".bashrc" have no extension.
func Extension(candidate string) string {
	base := path.Base(strings.ReplaceAll(candidate, `\`, "/"))

	idx := strings.LastIndexByte(base, '.')
	if idx <= 0 {
		return ""
	}

	return base[idx+1:]
}

// Match scores a single candidate. It is a pure function of its inputs.
// A candidate without an extension never matches, not even an empty language.
func Match(prompt Prompt, candidate string) float64 {
	ext := Extension(candidate)
	if ext == "" || ext != prompt.Language {
		return Rejected
	}

	// The empty filter is contained in every candidate.
	if strings.Contains(candidate, prompt.Filter) {
		return Good
	}

	ratio := OverlapRatio(prompt.Filter, candidate)
	if ratio < Threshold {
		return Rejected
	}

	return ratio
}

// MatchString parses line and scores candidate. Malformed lines reject everything.
func MatchString(line, candidate string) float64 {
	prompt, err := ParsePrompt(line)
	if err != nil {
		return Rejected
	}

	return Match(prompt, candidate)
}

// OverlapRatio returns the share of distinct filter characters that occur anywhere in candidate.
// An empty filter yields 1.
func OverlapRatio(filter, candidate string) float64 {
	filterChars := runeSet(filter)
	if len(filterChars) == 0 {
		return 1
	}

	candidateChars := runeSet(candidate)

	contained := 0

	for r := range filterChars {
		if _, ok := candidateChars[r]; ok {
			contained++
		}
	}

	return float64(contained) / float64(len(filterChars))
}

// Rank scores every candidate, drops rejects and sorts by score descending.
// Equal scores keep their input order.
func Rank(prompt Prompt, candidates []string) []ScoredResult {
	results := make([]ScoredResult, 0, len(candidates))

	for _, candidate := range candidates {
		score := Match(prompt, candidate)
		if score == Rejected {
			continue
		}

		results = append(results, ScoredResult{Item: candidate, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// Top returns at most n leading results.
func Top(results []ScoredResult, n int) []ScoredResult {
	if n < 0 {
		n = 0
	}

	if len(results) > n {
		return results[:n]
	}

	return results
}

func runeSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		set[r] = struct{}{}
	}

	return set
}
