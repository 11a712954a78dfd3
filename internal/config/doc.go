// Package config loads and validates the TOML configuration used by
// shuttersort.
//
// Load resolves the config file (explicit flag or the default location under
// ~/.config/shuttersort), merges it over repository defaults, expands all path
// fields, and validates the result. Treat this package as the single source of
// truth for configuration semantics; new settings get defaults in defaults.go,
// repair in normalize.go, and invariants in validate.go.
package config
