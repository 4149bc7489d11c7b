package lister

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	git2go "github.com/libgit2/git2go/v34"
)

// Git lists the files tracked in the index of the repository containing Root.
// Untracked files are not listed.
type Git struct {
	// Root is a directory inside the repository. Empty means the working directory.
	// Only entries under Root are listed, relative to it.
	Root string
}

// ListFiles reads the repository index.
func (g *Git) ListFiles(ctx context.Context) ([]string, error) {
	root, err := resolveDir(g.Root)
	if err != nil {
		return nil, err
	}

	// Zero flags let libgit2 search parent directories for the repository.
	repo, err := git2go.OpenRepositoryExtended(root, 0, "")
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	defer repo.Free()

	workdir, err := resolveDir(repo.Workdir())
	if err != nil {
		return nil, err
	}

	prefix, err := filepath.Rel(workdir, root)
	if err != nil {
		return nil, fmt.Errorf("locate %s in %s: %w", root, workdir, err)
	}

	prefix = filepath.ToSlash(prefix)
	if prefix == "." {
		prefix = ""
	} else {
		prefix += "/"
	}

	index, err := repo.Index()
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	defer index.Free()

	count := index.EntryCount()
	paths := make([]string, 0, count)

	for i := range count {
		ctxErr := ctx.Err()
		if ctxErr != nil {
			return nil, ctxErr
		}

		entry, entryErr := index.EntryByIndex(i)
		if entryErr != nil {
			return nil, fmt.Errorf("index entry %d: %w", i, entryErr)
		}

		if !strings.HasPrefix(entry.Path, prefix) {
			continue
		}

		paths = append(paths, strings.TrimPrefix(entry.Path, prefix))
	}

	return paths, nil
}

func resolveDir(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}

	return resolved, nil
}
