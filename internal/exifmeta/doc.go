// Package exifmeta extracts a small, hashable fingerprint from the embedded
// metadata of image files.
//
// The fingerprint covers capture timestamp, make/model, body serial, unique
// image ID, and pixel dimensions. Each field is independently optional; two
// fingerprints are compared only through a stable 64-bit hash, which the
// cache uses for content-level change detection.
package exifmeta
