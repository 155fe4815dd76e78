// Package discovery enumerates candidate documents for a run.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"mdembed/internal/config"
)

// Discoverer finds documents matching a glob pattern beneath a base path.
type Discoverer struct {
	cfg *config.Config
}

// New creates a Discoverer using the run configuration's pattern, symlink
// policy and exclude patterns.
func New(cfg *config.Config) *Discoverer {
	return &Discoverer{cfg: cfg}
}

// Discover returns the sorted document paths under basePath. A basePath that
// names a regular file is returned as-is, pattern aside.
func (d *Discoverer) Discover(basePath string) ([]string, error) {
	stat, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to access input path: %w", err)
	}

	if !stat.IsDir() {
		return []string{basePath}, nil
	}

	pattern := filepath.Join(basePath, d.cfg.EffectivePattern())
	opts := []doublestar.GlobOption{doublestar.WithFilesOnly()}
	if !d.cfg.FollowSymlinks {
		opts = append(opts, doublestar.WithNoFollow())
	}

	matches, err := doublestar.FilepathGlob(pattern, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to glob %q: %w", pattern, err)
	}

	var paths []string
	for _, match := range matches {
		if d.cfg.IsFileExcluded(filepath.Base(match)) || d.cfg.IsFileExcluded(match) {
			continue
		}
		paths = append(paths, match)
	}

	sort.Strings(paths)
	return paths, nil
}
