package usecase_test

import (
	"context"
	"os"

	"github.com/go-git/go-billy/v5"

	"mdembed/internal/config"
	"mdembed/pkg/types"
)

// mockDiscoverer returns a fixed document set.
type mockDiscoverer struct {
	paths []string
	err   error
}

func (m *mockDiscoverer) Discover(string) ([]string, error) {
	return m.paths, m.err
}

// mockConfigLoader returns a fixed run configuration.
type mockConfigLoader struct {
	cfg *config.Config
}

func (m *mockConfigLoader) LoadConfig(string) (*config.Config, error) {
	if m.cfg != nil {
		return m.cfg, nil
	}
	return &config.Config{Quiet: true}, nil
}

// mockRewriter records invocations.
type mockRewriter struct {
	calls int
	err   error
}

func (m *mockRewriter) Rewrite(_ context.Context, doc *types.Document) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	doc.NewText = doc.Text
	doc.Changed = false
	return nil
}

// countingFS wraps a billy filesystem and counts write-mode opens.
type countingFS struct {
	billy.Filesystem
	writes int
}

func (c *countingFS) OpenFile(filename string, flag int, perm os.FileMode) (billy.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR) != 0 {
		c.writes++
	}
	return c.Filesystem.OpenFile(filename, flag, perm)
}
