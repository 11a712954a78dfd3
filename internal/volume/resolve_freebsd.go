//go:build freebsd

package volume

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// resolve uses the statfs filesystem-id pair. The fsid is stable for a given
// filesystem across remounts, which is all the cache key space needs.
func resolve(path string) (Identity, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return Identity{}, fmt.Errorf("%w: statfs %s: %v", ErrResolve, path, err)
	}
	return Identity{
		ID:     fmt.Sprintf("%x:%x", uint32(st.Fsid.Val[0]), uint32(st.Fsid.Val[1])),
		Prefix: unix.ByteSliceToString(st.Mntonname[:]),
	}, nil
}
