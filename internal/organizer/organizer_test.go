package organizer_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"shuttersort/internal/cache"
	"shuttersort/internal/exifmeta"
	"shuttersort/internal/logging"
	"shuttersort/internal/organizer"
	"shuttersort/internal/testsupport"
	"shuttersort/internal/volume"
)

type fakeReader struct {
	captures map[string]time.Time
}

func (f *fakeReader) Read(path string) (exifmeta.Metadata, error) {
	captured, ok := f.captures[path]
	if !ok {
		return exifmeta.Metadata{}, nil
	}
	return exifmeta.Metadata{
		Summary:     exifmeta.Summary{DateTimeOriginal: captured.Format("2006:01:02 15:04:05")},
		CaptureTime: captured,
	}, nil
}

type env struct {
	input  string
	output string
	raw    string
	reader *fakeReader
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return &env{
		input:  t.TempDir(),
		output: t.TempDir(),
		raw:    t.TempDir(),
		reader: &fakeReader{captures: make(map[string]time.Time)},
	}
}

func (e *env) addFile(t *testing.T, relPath string, captured time.Time) string {
	t.Helper()
	path := filepath.Join(e.input, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("image data for "+relPath), 0o644); err != nil {
		t.Fatal(err)
	}
	if !captured.IsZero() {
		e.reader.captures[path] = captured
	}
	return path
}

func (e *env) options() organizer.Options {
	return organizer.Options{
		InputDir:     e.input,
		OutputDir:    e.output,
		RawOutputDir: e.raw,
		Reader:       e.reader,
		Logger:       logging.NewNop(),
	}
}

func (e *env) run(t *testing.T, opts organizer.Options) organizer.Summary {
	t.Helper()
	org, err := organizer.New(opts)
	if err != nil {
		t.Fatalf("organizer.New: %v", err)
	}
	summary, err := org.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return summary
}

func mustExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
}

func mustNotExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected %s to be absent, stat err = %v", path, err)
	}
}

func TestRunDistributesByCaptureDate(t *testing.T) {
	e := newEnv(t)
	jan := time.Date(2025, 1, 1, 9, 0, 0, 0, time.Local)
	mar := time.Date(2025, 3, 5, 14, 30, 0, 0, time.Local)
	e.addFile(t, "DCIM/100/IMG_0001.JPG", jan)
	e.addFile(t, "DCIM/100/IMG_0002.NEF", mar)

	summary := e.run(t, e.options())

	if summary.Copied != 2 {
		t.Fatalf("copied = %d, want 2", summary.Copied)
	}
	mustExist(t, filepath.Join(e.output, "2025", "20250101", "IMG_0001.JPG"))
	mustExist(t, filepath.Join(e.raw, "2025", "20250305", "IMG_0002.NEF"))
}

func TestRunRawFallsBackToOutputDir(t *testing.T) {
	e := newEnv(t)
	captured := time.Date(2025, 6, 10, 8, 0, 0, 0, time.Local)
	e.addFile(t, "IMG_0003.CR2", captured)

	opts := e.options()
	opts.RawOutputDir = ""
	e.run(t, opts)

	mustExist(t, filepath.Join(e.output, "2025", "20250610", "IMG_0003.CR2"))
}

func TestRunSkipsShadowAndUnsupported(t *testing.T) {
	e := newEnv(t)
	captured := time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)
	e.addFile(t, "IMG_0004.JPG", captured)
	e.addFile(t, "._IMG_0004.JPG", captured)
	e.addFile(t, ".DS_Store", captured)
	e.addFile(t, ".Trashes/IMG_9999.JPG", captured)
	e.addFile(t, "notes.txt", captured)
	e.addFile(t, "README", captured)

	summary := e.run(t, e.options())

	if summary.Copied != 1 {
		t.Fatalf("copied = %d, want 1", summary.Copied)
	}
	if summary.Unsupported != 2 {
		t.Fatalf("unsupported = %d, want 2 (notes.txt, README)", summary.Unsupported)
	}
	mustExist(t, filepath.Join(e.output, "2025", "20250101", "IMG_0004.JPG"))
	mustNotExist(t, filepath.Join(e.output, "2025", "20250101", "IMG_9999.JPG"))
	mustNotExist(t, filepath.Join(e.output, "2025", "20250101", "._IMG_0004.JPG"))
}

func TestRunDateWindow(t *testing.T) {
	e := newEnv(t)
	e.addFile(t, "before.jpg", time.Date(2024, 12, 31, 23, 0, 0, 0, time.Local))
	e.addFile(t, "inside.jpg", time.Date(2025, 1, 15, 12, 0, 0, 0, time.Local))
	e.addFile(t, "boundary.jpg", time.Date(2025, 2, 1, 0, 0, 0, 0, time.Local))

	opts := e.options()
	opts.FromDate = time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)
	opts.ToDate = time.Date(2025, 2, 1, 0, 0, 0, 0, time.Local)
	summary := e.run(t, opts)

	if summary.Copied != 1 {
		t.Fatalf("copied = %d, want only the in-window file", summary.Copied)
	}
	if summary.OutOfRange != 2 {
		t.Fatalf("out of range = %d, want 2 (before window, at exclusive end)", summary.OutOfRange)
	}
	mustExist(t, filepath.Join(e.output, "2025", "20250115", "inside.jpg"))
}

func TestRunDryRunWritesNothing(t *testing.T) {
	e := newEnv(t)
	captured := time.Date(2025, 1, 1, 9, 0, 0, 0, time.Local)
	e.addFile(t, "IMG_0011.JPG", captured)

	opts := e.options()
	opts.DryRun = true
	summary := e.run(t, opts)

	if summary.Copied != 1 {
		t.Fatalf("copied = %d, want 1 reported", summary.Copied)
	}
	mustNotExist(t, filepath.Join(e.output, "2025", "20250101", "IMG_0011.JPG"))
}

func TestRunSkipsFilesWithoutTimestamp(t *testing.T) {
	e := newEnv(t)
	e.addFile(t, "no_exif.jpg", time.Time{})

	summary := e.run(t, e.options())

	if summary.Copied != 0 || summary.NoTimestamp != 1 {
		t.Fatalf("summary = %+v, want one no-timestamp skip", summary)
	}
}

func TestRunWithCacheSkipsUnchangedFiles(t *testing.T) {
	e := newEnv(t)
	captured := time.Date(2025, 1, 1, 9, 0, 0, 0, time.Local)
	e.addFile(t, "IMG_0005.JPG", captured)

	c := testsupport.MustOpenCache(t,
		filepath.Join(t.TempDir(), "cache.db"),
		cache.EvalShallow,
		volume.Identity{ID: "TEST-0001", Prefix: e.input},
		e.reader,
	)

	opts := e.options()
	opts.Cache = c

	first := e.run(t, opts)
	if first.Copied != 1 || first.Cached != 0 {
		t.Fatalf("first run summary = %+v", first)
	}

	second := e.run(t, opts)
	if second.Copied != 0 || second.Cached != 1 {
		t.Fatalf("second run summary = %+v", second)
	}
}

func TestRunRefusesConcurrentLock(t *testing.T) {
	e := newEnv(t)
	lockPath := filepath.Join(t.TempDir(), "run.lock")

	other := flock.New(lockPath)
	held, err := other.TryLock()
	if err != nil || !held {
		t.Fatalf("setup lock: held=%v err=%v", held, err)
	}
	defer other.Unlock()

	opts := e.options()
	opts.LockPath = lockPath
	org, err := organizer.New(opts)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := org.Run(context.Background()); !errors.Is(err, organizer.ErrLocked) {
		t.Fatalf("err = %v, want ErrLocked", err)
	}
}

func TestNewValidatesDirectories(t *testing.T) {
	if _, err := organizer.New(organizer.Options{OutputDir: "/tmp/out"}); err == nil {
		t.Error("expected error for missing input dir")
	}
	if _, err := organizer.New(organizer.Options{InputDir: "/tmp/in"}); err == nil {
		t.Error("expected error for missing output dir")
	}
}
