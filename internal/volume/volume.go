package volume

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Identity names the storage volume backing a path. ID is a platform-stable
// token (filesystem UUID, volume UUID, filesystem-id pair, or volume serial);
// Prefix is the mount root the path lives under. The same volume yields the
// same ID across remounts and process restarts.
type Identity struct {
	ID     string
	Prefix string
}

// ErrResolve indicates no platform strategy produced a stable volume
// identity. Callers treat this as fatal: without an identity there is no
// stable cache key space.
var ErrResolve = errors.New("volume identity unavailable")

// Resolve returns the identity of the volume containing path. The path is
// canonicalized first so identities agree regardless of how the caller
// spelled the path.
func Resolve(path string) (Identity, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: resolve %q: %v", ErrResolve, path, err)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: canonicalize %q: %v", ErrResolve, abs, err)
	}
	return resolve(real)
}
