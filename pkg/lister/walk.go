package lister

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/monochromegane/go-gitignore"
	"github.com/src-d/enry/v2"
)

const (
	gitignoreFile = ".gitignore"
	hiddenPrefix  = "."
)

// Walk lists files by walking the tree in-process. Like rg, it skips hidden
// entries and paths ignored by the root .gitignore.
type Walk struct {
	// Root is the directory to walk. Empty means the working directory.
	Root string
	// SkipVendor drops paths enry classifies as vendored.
	SkipVendor bool
}

// ListFiles walks Root and returns slash-separated paths relative to it.
func (w *Walk) ListFiles(ctx context.Context) ([]string, error) {
	root := w.Root
	if root == "" {
		root = "."
	}

	ignore, err := loadGitignore(root)
	if err != nil {
		return nil, err
	}

	var paths []string

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		ctxErr := ctx.Err()
		if ctxErr != nil {
			return ctxErr
		}

		if path == root {
			return nil
		}

		if w.skip(root, path, d, ignore) {
			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return fmt.Errorf("relative path of %s: %w", path, relErr)
		}

		paths = append(paths, filepath.ToSlash(rel))

		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk %s: %w", root, walkErr)
	}

	return paths, nil
}

func (w *Walk) skip(root, path string, d fs.DirEntry, ignore gitignore.IgnoreMatcher) bool {
	if strings.HasPrefix(d.Name(), hiddenPrefix) {
		return true
	}

	if ignore != nil && ignore.Match(path, d.IsDir()) {
		return true
	}

	if !w.SkipVendor {
		return false
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}

	rel = filepath.ToSlash(rel)
	if d.IsDir() {
		rel += "/"
	}

	return enry.IsVendor(rel)
}

// loadGitignore returns nil when root has no .gitignore.
func loadGitignore(root string) (gitignore.IgnoreMatcher, error) {
	ignorePath := filepath.Join(root, gitignoreFile)

	_, statErr := os.Stat(ignorePath)
	if errors.Is(statErr, fs.ErrNotExist) {
		return nil, nil //nolint:nilnil // no ignore file is not an error.
	}

	matcher, err := gitignore.NewGitIgnore(ignorePath, root)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ignorePath, err)
	}

	return matcher, nil
}
