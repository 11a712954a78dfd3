package volume

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// mountEntry is one row of /proc/self/mountinfo reduced to the fields the
// resolver needs.
type mountEntry struct {
	MountPoint string
	Source     string // device path as reported by the kernel
	DevID      string // "major:minor"
}

// findMount scans mountinfo rows and returns the entry whose mount point is
// the longest prefix containing target. Ties keep the earlier entry, which is
// deterministic for a fixed mount table.
func findMount(r io.Reader, target string) (mountEntry, error) {
	scanner := bufio.NewScanner(r)

	var best mountEntry
	found := false
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), " ")
		if len(fields) < 10 {
			continue
		}

		dash := -1
		for i, field := range fields {
			if field == "-" {
				dash = i
				break
			}
		}
		if dash < 0 || dash+2 >= len(fields) {
			continue
		}

		mountPoint := decodeMountPath(fields[4])
		if !pathWithin(target, mountPoint) {
			continue
		}
		if !found || len(mountPoint) > len(best.MountPoint) {
			best = mountEntry{
				MountPoint: mountPoint,
				Source:     decodeMountPath(fields[dash+2]),
				DevID:      fields[2],
			}
			found = true
		}
	}
	if err := scanner.Err(); err != nil {
		return mountEntry{}, fmt.Errorf("read mount table: %w", err)
	}
	if !found {
		return mountEntry{}, fmt.Errorf("no mount entry contains %s", target)
	}
	return best, nil
}

// pathWithin reports whether target sits under mountPoint, comparing whole
// path components so /mnt/foo never claims /mnt/foobar.
func pathWithin(target, mountPoint string) bool {
	if mountPoint == "/" {
		return true
	}
	return target == mountPoint || strings.HasPrefix(target, mountPoint+"/")
}

// decodeMountPath reverses the octal escapes the kernel applies to mountinfo
// paths (space, tab, newline, backslash).
func decodeMountPath(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '\\' && i+3 < len(s) {
			if code, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(code))
				i += 4
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}
