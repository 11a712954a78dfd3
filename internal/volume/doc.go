// Package volume resolves the stable identity of the storage volume backing a
// path.
//
// Cache keys embed the volume ID instead of a device path or drive letter so
// they survive remounts and drive-letter changes. Each supported platform has
// its own strategy: filesystem UUID via the mount table on Linux, volume UUID
// on macOS, the statfs filesystem-id pair on FreeBSD, and the volume serial
// number on Windows. Platforms without a strategy fail with ErrResolve, which
// is fatal at cache open time.
package volume
