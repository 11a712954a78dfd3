package testsupport

import (
	"testing"

	"shuttersort/internal/cache"
	"shuttersort/internal/cachestore"
	"shuttersort/internal/logging"
	"shuttersort/internal/volume"
)

// MustOpenStore opens a cachestore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, path string) *cachestore.Store {
	t.Helper()

	store, err := cachestore.Open(path, logging.NewNop())
	if err != nil {
		t.Fatalf("cachestore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustOpenCache opens a change-detection cache with a fixed volume identity,
// bypassing platform volume resolution so tests run anywhere.
func MustOpenCache(t testing.TB, dbPath string, mode cache.EvalMode, identity volume.Identity, reader cache.MetadataReader) *cache.Cache {
	t.Helper()

	c, err := cache.OpenWithIdentity(dbPath, mode, identity, reader, logging.NewNop())
	if err != nil {
		t.Fatalf("cache.OpenWithIdentity: %v", err)
	}
	t.Cleanup(func() {
		c.Close()
	})
	return c
}
