// Package lister enumerates the candidate file paths of a project tree.
package lister

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
)

// Backend names accepted by New.
const (
	BackendRipgrep = "rg"
	BackendWalk    = "walk"
	BackendGit     = "git"
)

// ErrUnknownBackend is returned by New for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown lister backend")

// Lister produces the paths of every file under a project tree.
type Lister interface {
	ListFiles(ctx context.Context) ([]string, error)
}

// Options tunes the listers that walk the filesystem themselves.
type Options struct {
	// SkipVendor drops vendored and generated dependency trees.
	SkipVendor bool
}

// New returns the lister registered under backend, rooted at root.
func New(backend, root string, opts Options) (Lister, error) {
	switch backend {
	case BackendRipgrep:
		return &Ripgrep{Root: root}, nil
	case BackendWalk:
		return &Walk{Root: root, SkipVendor: opts.SkipVendor}, nil
	case BackendGit:
		return &Git{Root: root}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// Static is a Lister over a fixed set of paths.
type Static []string

// ListFiles returns a copy of the paths.
func (s Static) ListFiles(_ context.Context) ([]string, error) {
	return slices.Clone(s), nil
}

// Normalize drops empty entries and carriage returns and sorts lexicographically.
func Normalize(paths []string) []string {
	out := make([]string, 0, len(paths))

	for _, p := range paths {
		p = strings.TrimSuffix(p, "\r")
		if p == "" {
			continue
		}

		out = append(out, p)
	}

	slices.Sort(out)

	return out
}

// SplitLines splits newline-delimited lister output.
func SplitLines(output string) []string {
	return strings.Split(output, "\n")
}

// Load lists candidates once. A failing lister yields an empty list, never an error.
func Load(ctx context.Context, l Lister, logger *slog.Logger) []string {
	paths, err := l.ListFiles(ctx)
	if err != nil {
		logger.WarnContext(ctx, "file listing failed, continuing without candidates", "error", err)

		return []string{}
	}

	candidates := Normalize(paths)

	logger.InfoContext(ctx, "candidates loaded", "count", humanize.Comma(int64(len(candidates))))

	return candidates
}
