// Package cache decides whether source files changed since a previous
// distribution run.
//
// Keys combine a stable volume identity with the file's volume-relative path,
// so entries survive remounts and drive-letter changes. Hit detection
// compares file size and mtime, and in strict mode also a fingerprint hash of
// selected EXIF fields. Evaluate never writes: a miss returns a Handle that
// the caller commits only after its own side effect (the copy) succeeded.
// Entries are never evicted; the store only grows or overwrites.
package cache
