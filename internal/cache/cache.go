package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shuttersort/internal/cachestore"
	"shuttersort/internal/exifmeta"
	"shuttersort/internal/logging"
	"shuttersort/internal/volume"
)

// ErrPath indicates an evaluated path lies outside the resolved volume
// prefix. This is a setup or usage error, not a cache miss.
var ErrPath = errors.New("path outside volume prefix")

// EvalMode controls how a potential cache hit is confirmed.
type EvalMode string

const (
	// EvalShallow trusts matching file size and mtime.
	EvalShallow EvalMode = "shallow"
	// EvalStrict additionally requires a matching metadata fingerprint hash.
	EvalStrict EvalMode = "strict"
)

// ParseEvalMode validates a mode string from configuration or flags.
func ParseEvalMode(value string) (EvalMode, error) {
	switch mode := EvalMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case EvalShallow, EvalStrict:
		return mode, nil
	default:
		return "", fmt.Errorf("unsupported eval mode %q (expected %q or %q)", value, EvalShallow, EvalStrict)
	}
}

// MetadataReader supplies parsed embedded metadata for a file. The production
// implementation is exifmeta.Reader; tests substitute fakes.
type MetadataReader interface {
	Read(path string) (exifmeta.Metadata, error)
}

// Decision is the outcome of evaluating one file against the cache. On a miss
// Handle carries the pending record; Metadata is set whenever evaluation had
// to read the file's embedded metadata, so callers can reuse it without a
// second parse.
type Decision struct {
	Hit      bool
	Handle   *Handle
	Metadata *exifmeta.Metadata
}

// Cache decides whether files changed since a previous run and records the
// ones that were processed. The volume identity is resolved once at open time
// and is immutable for the cache's lifetime.
type Cache struct {
	store    *cachestore.Store
	reader   MetadataReader
	mode     EvalMode
	identity volume.Identity
	logger   *slog.Logger
}

// Open opens or creates the cache database at dbPath and resolves the volume
// identity of inputRoot. A nil reader defaults to the EXIF-backed one; a
// volume resolution failure is fatal because no stable key space exists
// without it.
func Open(dbPath string, mode EvalMode, inputRoot string, reader MetadataReader, logger *slog.Logger) (*Cache, error) {
	identity, err := volume.Resolve(inputRoot)
	if err != nil {
		return nil, err
	}
	return OpenWithIdentity(dbPath, mode, identity, reader, logger)
}

// OpenWithIdentity wires a pre-resolved volume identity. Exposed for tests
// and for callers that already resolved the input volume.
func OpenWithIdentity(dbPath string, mode EvalMode, identity volume.Identity, reader MetadataReader, logger *slog.Logger) (*Cache, error) {
	logger = logging.NewComponentLogger(logger, "cache")

	prefix, err := filepath.EvalSymlinks(identity.Prefix)
	if err != nil {
		return nil, fmt.Errorf("canonicalize volume prefix %q: %w", identity.Prefix, err)
	}
	identity.Prefix = prefix

	store, err := cachestore.Open(dbPath, logger)
	if err != nil {
		return nil, err
	}

	if reader == nil {
		reader = exifmeta.Reader{}
	}

	logger.Debug("cache opened",
		logging.String("db", dbPath),
		logging.String("volume_id", identity.ID),
		logging.String("prefix", identity.Prefix),
		logging.String("eval_mode", string(mode)))

	return &Cache{
		store:    store,
		reader:   reader,
		mode:     mode,
		identity: identity,
		logger:   logger,
	}, nil
}

// Close releases the backing store.
func (c *Cache) Close() error {
	return c.store.Close()
}

// Identity returns the resolved volume identity.
func (c *Cache) Identity() volume.Identity {
	return c.identity
}

// Evaluate decides whether the file at path is unchanged since it was last
// recorded. info must describe the same file. The returned Decision is either
// a hit (nothing to do) or a miss carrying a Handle; the handle becomes
// durable only through Commit, so a file whose copy fails is never marked as
// cached. The file's metadata is read at most once per call.
func (c *Cache) Evaluate(ctx context.Context, path string, info os.FileInfo) (Decision, error) {
	relPath, err := c.relativize(path)
	if err != nil {
		return Decision{}, err
	}

	mtime, err := formatInstant(info.ModTime())
	if err != nil {
		return Decision{}, fmt.Errorf("mtime of %s: %w", path, err)
	}
	size := uint64(info.Size())
	key := buildKey(c.identity.ID, relPath)

	value, found, err := c.store.Get(ctx, key)
	if err != nil {
		return Decision{}, err
	}

	// Metadata read during the strict hit check is reserved for the miss
	// record, keeping the expensive parse to one per evaluation.
	var reserved *exifmeta.Metadata

	if found {
		existing, err := DecodeRecord(value)
		if err != nil {
			c.logger.Warn("undecodable cache record, treating as miss",
				logging.String("key", key),
				logging.Error(err))
		} else if existing.FileSize == size && existing.MTime == mtime {
			switch c.mode {
			case EvalShallow:
				return Decision{Hit: true}, nil
			case EvalStrict:
				meta, err := c.reader.Read(path)
				if err != nil {
					return Decision{}, err
				}
				if meta.Summary.Hash() == existing.Exif.Hash() {
					return Decision{Hit: true, Metadata: &meta}, nil
				}
				reserved = &meta
			}
		}
	}

	meta := reserved
	if meta == nil {
		read, err := c.reader.Read(path)
		if err != nil {
			return Decision{}, err
		}
		meta = &read
	}

	timestamp, err := formatInstant(time.Now())
	if err != nil {
		return Decision{}, err
	}

	handle := &Handle{
		relPath: relPath,
		record: Record{
			Timestamp: timestamp,
			MTime:     mtime,
			FileSize:  size,
			Exif:      meta.Summary,
		},
	}
	return Decision{Handle: handle, Metadata: meta}, nil
}

// Commit makes the pending record carried by handle durable. Call it only
// after the caller's side effect (the copy) succeeded. Committing an equal
// record twice is an idempotent overwrite.
func (c *Cache) Commit(ctx context.Context, handle *Handle) error {
	if handle == nil {
		return errors.New("commit: handle is nil")
	}
	value, err := handle.record.encode()
	if err != nil {
		return err
	}
	key := buildKey(c.identity.ID, handle.relPath)
	if err := c.store.Put(ctx, key, value); err != nil {
		return err
	}
	c.logger.Debug("committed cache record",
		logging.String("key", key),
		logging.Uint64("file_size", handle.record.FileSize))
	return nil
}

// relativize canonicalizes path and strips the volume prefix, enforcing the
// invariant that every evaluated path lies under it.
func (c *Cache) relativize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", path, err)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("canonicalize %q: %w", abs, err)
	}
	rel, err := filepath.Rel(c.identity.Prefix, real)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s not under %s", ErrPath, path, c.identity.Prefix)
	}
	return rel, nil
}
