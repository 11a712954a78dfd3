//go:build linux

package volume

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	mountInfoPath = "/proc/self/mountinfo"
	byUUIDDir     = "/dev/disk/by-uuid"
	sysBlockDir   = "/sys/dev/block"
)

// resolve maps path to its filesystem UUID via the mount table. The backing
// device is recovered from the mount source (when it is a /dev node) or from
// the sysfs major:minor symlink, then matched against /dev/disk/by-uuid.
func resolve(path string) (Identity, error) {
	file, err := os.Open(mountInfoPath)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: open %s: %v", ErrResolve, mountInfoPath, err)
	}
	defer file.Close()

	entry, err := findMount(file, path)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrResolve, err)
	}

	id, err := filesystemUUID(entry)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrResolve, err)
	}
	return Identity{ID: id, Prefix: entry.MountPoint}, nil
}

func filesystemUUID(entry mountEntry) (string, error) {
	var candidates []string
	if strings.HasPrefix(entry.Source, "/dev/") {
		candidates = append(candidates, entry.Source)
	}
	if entry.DevID != "" {
		sysDev := filepath.Join(sysBlockDir, entry.DevID)
		if link, err := os.Readlink(sysDev); err == nil {
			candidates = append(candidates, filepath.Join("/dev", filepath.Base(link)))
		}
	}

	links, err := os.ReadDir(byUUIDDir)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", byUUIDDir, err)
	}

	for _, dev := range candidates {
		devReal, err := filepath.EvalSymlinks(dev)
		if err != nil {
			continue
		}
		for _, link := range links {
			target, err := filepath.EvalSymlinks(filepath.Join(byUUIDDir, link.Name()))
			if err != nil {
				continue
			}
			if target == devReal {
				return link.Name(), nil
			}
		}
	}
	return "", fmt.Errorf("filesystem UUID not found for %s", entry.MountPoint)
}
