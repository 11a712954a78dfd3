package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shuttersort/internal/config"
	"shuttersort/internal/testsupport"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "[paths]\noutput_dir = \"out\"\n")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected config to exist at %q", resolved)
	}
	if cfg.Cache.EvalMode != config.EvalShallow {
		t.Errorf("eval mode = %q, want shallow default", cfg.Cache.EvalMode)
	}
	if !cfg.Cache.Enabled {
		t.Error("cache should be enabled by default")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Errorf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.Paths.CacheDB == "" {
		t.Error("cache db path should default to the user cache directory")
	}
	if !filepath.IsAbs(cfg.Paths.OutputDir) {
		t.Errorf("output dir should be absolute, got %q", cfg.Paths.OutputDir)
	}
}

func TestLoadRejectsBadEvalMode(t *testing.T) {
	path := writeConfig(t, "[cache]\neval_mode = \"paranoid\"\n")

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unsupported eval mode")
	} else if !strings.Contains(err.Error(), "eval_mode") {
		t.Fatalf("error should mention eval_mode: %v", err)
	}
}

func TestLoadRejectsBadLogFormat(t *testing.T) {
	path := writeConfig(t, "[logging]\nformat = \"xml\"\n")

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unsupported log format")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")

	cfg, resolved, exists, err := config.Load(missing)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatalf("config should not exist at %q", resolved)
	}
	if cfg.Cache.EvalMode != config.EvalShallow {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	got, err := config.ExpandPath("~/photos")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "photos") {
		t.Errorf("ExpandPath(~/photos) = %q", got)
	}
}

func TestEnsureDirectoriesCreatesCacheParent(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{filepath.Dir(cfg.Paths.CacheDB), cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("expected directory %q: %v", dir, err)
		}
	}
}

func TestTestConfigOptions(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithEvalMode(config.EvalStrict), testsupport.WithCacheDisabled())

	if cfg.Cache.EvalMode != config.EvalStrict {
		t.Errorf("eval mode = %q, want strict", cfg.Cache.EvalMode)
	}
	if cfg.Cache.Enabled {
		t.Error("cache should be disabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
