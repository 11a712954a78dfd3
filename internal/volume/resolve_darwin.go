//go:build darwin

package volume

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// resolve queries the volume UUID through getattrlist and the mount root
// through statfs.
func resolve(path string) (Identity, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return Identity{}, fmt.Errorf("%w: statfs %s: %v", ErrResolve, path, err)
	}
	prefix := unix.ByteSliceToString(st.Mntonname[:])

	attrs := unix.Attrlist{
		Bitmapcount: unix.ATTR_BIT_MAP_COUNT,
		Volattr:     unix.ATTR_VOL_INFO | unix.ATTR_VOL_UUID,
	}
	// Returned layout: u32 length word followed by the 16-byte UUID.
	buf := make([]byte, 20)
	if err := unix.Getattrlist(path, &attrs, buf, 0); err != nil {
		return Identity{}, fmt.Errorf("%w: getattrlist %s: %v", ErrResolve, path, err)
	}

	var uuid [16]byte
	copy(uuid[:], buf[4:20])
	return Identity{ID: formatUUID(uuid), Prefix: prefix}, nil
}

func formatUUID(uuid [16]byte) string {
	return fmt.Sprintf("%02X%02X%02X%02X-%02X%02X-%02X%02X-%02X%02X-%02X%02X%02X%02X%02X%02X",
		uuid[0], uuid[1], uuid[2], uuid[3],
		uuid[4], uuid[5],
		uuid[6], uuid[7],
		uuid[8], uuid[9],
		uuid[10], uuid[11], uuid[12], uuid[13], uuid[14], uuid[15])
}
