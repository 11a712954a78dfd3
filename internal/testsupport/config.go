package testsupport

import (
	"path/filepath"
	"testing"

	"shuttersort/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "photos")
	cfg.Paths.RawOutputDir = filepath.Join(base, "raw")
	cfg.Paths.CacheDB = filepath.Join(base, "cache", "cache.db")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithEvalMode sets the cache evaluation mode on the test config.
func WithEvalMode(mode string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Cache.EvalMode = mode
	}
}

// WithCacheDisabled turns change detection off on the test config.
func WithCacheDisabled() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Cache.Enabled = false
	}
}
