package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// normalize expands and absolutizes path fields and fills in derived
// defaults. Called by Load before validation.
func (c *Config) normalize() error {
	var err error

	if c.Paths.OutputDir, err = ExpandPath(c.Paths.OutputDir); err != nil {
		return err
	}
	if c.Paths.RawOutputDir, err = ExpandPath(c.Paths.RawOutputDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return err
	}

	if strings.TrimSpace(c.Paths.CacheDB) == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return fmt.Errorf("resolve user cache directory: %w", err)
		}
		c.Paths.CacheDB = filepath.Join(base, "shuttersort", "cache.db")
	} else if c.Paths.CacheDB, err = ExpandPath(c.Paths.CacheDB); err != nil {
		return err
	}

	c.Cache.EvalMode = strings.ToLower(strings.TrimSpace(c.Cache.EvalMode))
	if c.Cache.EvalMode == "" {
		c.Cache.EvalMode = defaultEvalMode
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	return nil
}
