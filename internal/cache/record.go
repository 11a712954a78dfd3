package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"shuttersort/internal/exifmeta"
)

// Record is the durable per-file cache entry. Timestamp and MTime are
// RFC3339 strings in the local offset at one-second precision; the string
// form keeps mtime comparison exact across runs.
type Record struct {
	Timestamp string           `json:"timestamp"`
	MTime     string           `json:"mtime"`
	FileSize  uint64           `json:"file_size"`
	Exif      exifmeta.Summary `json:"exif"`
}

// DecodeRecord parses a stored record value.
func DecodeRecord(value string) (Record, error) {
	var record Record
	if err := json.Unmarshal([]byte(value), &record); err != nil {
		return Record{}, fmt.Errorf("decode cache record: %w", err)
	}
	return record, nil
}

func (r Record) encode() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encode cache record: %w", err)
	}
	return string(data), nil
}

// Handle is a pending, not-yet-durable cache update produced by Evaluate on a
// miss. It is a plain value: discarding it has no effect on the store, which
// is what keeps failed copies from being marked as cached.
type Handle struct {
	relPath string
	record  Record
}

// RelPath returns the volume-relative path the record will be keyed under.
func (h *Handle) RelPath() string {
	return h.relPath
}

// Record returns the pending record.
func (h *Handle) Record() Record {
	return h.record
}

// buildKey joins the volume ID and relative path into the store key.
func buildKey(volumeID, relPath string) string {
	return volumeID + ":" + relPath
}

// formatInstant renders t at one-second precision as RFC3339 in the local
// offset. Times before the unix epoch are rejected.
func formatInstant(t time.Time) (string, error) {
	truncated := t.Truncate(time.Second)
	if truncated.Unix() < 0 {
		return "", fmt.Errorf("time %v predates the unix epoch", t)
	}
	return truncated.In(time.Local).Format(time.RFC3339), nil
}
