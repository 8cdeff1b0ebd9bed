// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"hotfolder/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It creates one hot folder by default and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Workflow.PollInterval = 1
	cfgVal.Workflow.DispatchTimeout = 5
	cfgVal.Logging.Dir = filepath.Join(base, "logs")
	cfgVal.Logging.Format = "json"
	cfgVal.Folders = []config.HotFolder{newFolder(t, base, "default")}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithFolderCount replaces the default folder list with n independent folders.
func WithFolderCount(n int) ConfigOption {
	return func(b *configBuilder) {
		folders := make([]config.HotFolder, 0, n)
		for i := 0; i < n; i++ {
			folders = append(folders, newFolder(b.t, b.baseDir, fmt.Sprintf("folder-%d", i)))
		}
		b.cfg.Folders = folders
	}
}

// WithHistory enables the dispatch ledger under the test base directory.
func WithHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = true
		b.cfg.History.Path = filepath.Join(b.baseDir, "history.db")
	}
}

func newFolder(t testing.TB, base, name string) config.HotFolder {
	t.Helper()
	root := filepath.Join(base, name)
	folder := config.HotFolder{
		Name:          name,
		WatchPath:     filepath.Join(root, "in"),
		Printer:       "test-printer",
		SuccessFolder: filepath.Join(root, "printed"),
		ErrorFolder:   filepath.Join(root, "failed"),
	}
	if err := os.MkdirAll(folder.WatchPath, 0o755); err != nil {
		t.Fatalf("mkdir watch path: %v", err)
	}
	return folder
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Logging.Dir)
}
