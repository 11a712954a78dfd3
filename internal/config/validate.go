package config

import "fmt"

// Validate checks invariants that Load cannot repair.
func (c *Config) Validate() error {
	switch c.Cache.EvalMode {
	case EvalShallow, EvalStrict:
	default:
		return fmt.Errorf("cache.eval_mode: unsupported value %q (expected %q or %q)",
			c.Cache.EvalMode, EvalShallow, EvalStrict)
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (expected \"console\" or \"json\")", c.Logging.Format)
	}

	if c.Paths.CacheDB == "" {
		return fmt.Errorf("paths.cache_db: must not be empty")
	}
	return nil
}
