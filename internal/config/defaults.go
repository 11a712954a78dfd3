package config

const (
	defaultEvalMode  = "shallow"
	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// EvalShallow and EvalStrict are the accepted cache evaluation modes.
// Shallow trusts file size and mtime; strict additionally compares the
// stored metadata fingerprint.
const (
	EvalShallow = "shallow"
	EvalStrict  = "strict"
)

// Default returns a Config populated with repository defaults. The cache
// database path is left empty and resolved against the per-platform user
// cache directory during normalization.
func Default() Config {
	return Config{
		Cache: Cache{
			Enabled:  true,
			EvalMode: defaultEvalMode,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
