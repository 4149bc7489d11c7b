package lister

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

const (
	defaultRipgrepBinary = "rg"

	// ripgrep exits with 1 when it found nothing to list.
	ripgrepExitNoFiles = 1
)

// Ripgrep lists files with `rg --files`, which honours ignore files and skips hidden paths.
type Ripgrep struct {
	// Root is the directory rg runs in. Empty means the working directory.
	Root string
	// Binary overrides the rg executable. Empty means "rg" from PATH.
	Binary string
}

// ListFiles runs rg and splits its output into lines.
func (r *Ripgrep) ListFiles(ctx context.Context) ([]string, error) {
	binary := r.Binary
	if binary == "" {
		binary = defaultRipgrepBinary
	}

	cmd := exec.CommandContext(ctx, binary, "--files")
	cmd.Dir = r.Root

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) && exitErr.ExitCode() == ripgrepExitNoFiles && stderr.Len() == 0 {
			return []string{}, nil
		}

		return nil, fmt.Errorf("run %s --files: %w: %s", binary, runErr, bytes.TrimSpace(stderr.Bytes()))
	}

	return SplitLines(stdout.String()), nil
}
