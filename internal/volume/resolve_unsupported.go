//go:build !linux && !darwin && !freebsd && !windows

package volume

import "fmt"

func resolve(path string) (Identity, error) {
	return Identity{}, fmt.Errorf("%w: no strategy for this platform", ErrResolve)
}
