//go:build windows

package volume

import (
	"fmt"
	"path/filepath"

	"golang.org/x/sys/windows"
)

// resolve maps path to its volume serial number. The volume root from
// GetVolumePathName doubles as the key prefix, so cache keys survive drive
// letter reassignment as long as the serial matches.
func resolve(path string) (Identity, error) {
	path16, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: encode %q: %v", ErrResolve, path, err)
	}

	rootBuf := make([]uint16, windows.MAX_PATH+1)
	if err := windows.GetVolumePathName(path16, &rootBuf[0], uint32(len(rootBuf))); err != nil {
		return Identity{}, fmt.Errorf("%w: volume path for %s: %v", ErrResolve, path, err)
	}
	root := windows.UTF16ToString(rootBuf)

	root16, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: encode %q: %v", ErrResolve, root, err)
	}

	var serial, maxComponentLen, fsFlags uint32
	if err := windows.GetVolumeInformation(root16, nil, 0, &serial, &maxComponentLen, &fsFlags, nil, 0); err != nil {
		return Identity{}, fmt.Errorf("%w: volume information for %s: %v", ErrResolve, root, err)
	}

	return Identity{ID: fmt.Sprintf("%08X", serial), Prefix: filepath.Clean(root)}, nil
}
