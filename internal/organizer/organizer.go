package organizer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"shuttersort/internal/cache"
	"shuttersort/internal/exifmeta"
	"shuttersort/internal/fileutil"
	"shuttersort/internal/logging"
)

// ErrLocked is returned when another run already holds the run lock.
var ErrLocked = errors.New("another run is in progress")

// Options configures a single distribution run.
type Options struct {
	InputDir     string
	OutputDir    string
	RawOutputDir string

	// LockPath guards against concurrent runs over the same output tree.
	// Empty disables locking.
	LockPath string

	// FromDate is inclusive and ToDate exclusive; zero values leave the
	// window unbounded on that side.
	FromDate time.Time
	ToDate   time.Time

	// DryRun reports what would be copied without touching the output
	// trees or the cache.
	DryRun bool

	// Cache enables change detection. Nil copies every candidate file.
	Cache  *cache.Cache
	Reader cache.MetadataReader
	Logger *slog.Logger
}

// Summary aggregates the outcome counters of one run.
type Summary struct {
	Scanned     int
	Copied      int
	Cached      int
	NoTimestamp int
	OutOfRange  int
	Unsupported int
	Failed      int
	Elapsed     time.Duration
}

// Organizer walks an input tree and distributes image files into dated
// output directories, consulting the cache to skip files already handled
// by a previous run.
type Organizer struct {
	opts   Options
	reader cache.MetadataReader
	logger *slog.Logger
}

func New(opts Options) (*Organizer, error) {
	if opts.InputDir == "" {
		return nil, errors.New("organizer requires an input directory")
	}
	if opts.OutputDir == "" {
		return nil, errors.New("organizer requires an output directory")
	}
	reader := opts.Reader
	if reader == nil {
		reader = exifmeta.Reader{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Organizer{
		opts:   opts,
		reader: reader,
		logger: logging.NewComponentLogger(logger, "organizer"),
	}, nil
}

// Run walks the input tree once and returns the outcome counters. File
// level failures are logged and counted without aborting the walk.
func (o *Organizer) Run(ctx context.Context) (Summary, error) {
	if o.opts.LockPath != "" {
		lock := flock.New(o.opts.LockPath)
		held, err := lock.TryLock()
		if err != nil {
			return Summary{}, fmt.Errorf("acquire run lock: %w", err)
		}
		if !held {
			return Summary{}, ErrLocked
		}
		defer func() {
			_ = lock.Unlock()
		}()
	}

	logger := o.logger.With(logging.String("run_id", uuid.NewString()))
	logger.Info("run started",
		logging.String("input", o.opts.InputDir),
		logging.String("output", o.opts.OutputDir),
		logging.Bool("cache", o.opts.Cache != nil))

	start := time.Now()
	var summary Summary
	err := filepath.WalkDir(o.opts.InputDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			logger.Error("walk failed", logging.String("path", path), logging.Error(err))
			summary.Failed++
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if IsShadowName(entry.Name()) {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		summary.Scanned++
		o.processFile(ctx, logger, path, entry, &summary)
		return nil
	})

	summary.Elapsed = time.Since(start)
	logger.Info("run complete",
		logging.Int("scanned", summary.Scanned),
		logging.Int("copied", summary.Copied),
		logging.Int("cached", summary.Cached),
		logging.Int("failed", summary.Failed),
		logging.Duration("elapsed", summary.Elapsed))
	return summary, err
}

func (o *Organizer) processFile(ctx context.Context, logger *slog.Logger, path string, entry fs.DirEntry, summary *Summary) {
	ext := strings.TrimPrefix(filepath.Ext(entry.Name()), ".")
	if ext == "" {
		summary.Unsupported++
		return
	}
	kind, ok := Classify(ext)
	if !ok {
		summary.Unsupported++
		return
	}

	info, err := entry.Info()
	if err != nil {
		logger.Error("stat failed", logging.String("path", path), logging.Error(err))
		summary.Failed++
		return
	}

	var handle *cache.Handle
	var meta exifmeta.Metadata
	if o.opts.Cache != nil {
		decision, err := o.opts.Cache.Evaluate(ctx, path, info)
		if err != nil {
			logger.Error("cache evaluation failed", logging.String("path", path), logging.Error(err))
			summary.Failed++
			return
		}
		if decision.Hit {
			logger.Debug("unchanged since previous run", logging.String("path", path))
			summary.Cached++
			return
		}
		handle = decision.Handle
		if decision.Metadata != nil {
			meta = *decision.Metadata
		}
	} else {
		meta, err = o.reader.Read(path)
		if err != nil {
			logger.Error("metadata read failed", logging.String("path", path), logging.Error(err))
			summary.Failed++
			return
		}
	}

	if meta.CaptureTime.IsZero() {
		logger.Warn("no capture timestamp", logging.String("path", path))
		summary.NoTimestamp++
		return
	}
	if !o.inDateWindow(meta.CaptureTime) {
		logger.Debug("capture date out of range",
			logging.String("path", path),
			logging.String("date", meta.CaptureTime.Format("2006-01-02")))
		summary.OutOfRange++
		return
	}

	if o.opts.DryRun {
		logger.Info("would copy",
			logging.String("path", path),
			logging.String("kind", kind.String()))
		summary.Copied++
		return
	}

	dst, err := o.destination(kind, meta.CaptureTime, entry.Name())
	if err != nil {
		logger.Error("destination setup failed", logging.String("path", path), logging.Error(err))
		summary.Failed++
		return
	}
	if err := fileutil.CopyFileVerified(path, dst); err != nil {
		logger.Error("copy failed",
			logging.String("path", path),
			logging.String("destination", dst),
			logging.Error(err))
		summary.Failed++
		return
	}
	logger.Info("copied",
		logging.String("path", path),
		logging.String("destination", dst),
		logging.String("kind", kind.String()))

	if o.opts.Cache != nil {
		if err := o.opts.Cache.Commit(ctx, handle); err != nil {
			logger.Error("cache commit failed", logging.String("path", path), logging.Error(err))
			summary.Failed++
			return
		}
	}
	summary.Copied++
}

// destination builds and creates the dated output directory for a file,
// returning the full target path.
func (o *Organizer) destination(kind Kind, captured time.Time, name string) (string, error) {
	root := o.opts.OutputDir
	if kind == KindRAW && o.opts.RawOutputDir != "" {
		root = o.opts.RawOutputDir
	}
	dir := filepath.Join(root, captured.Format("2006"), captured.Format("20060102"))
	if err := fileutil.EnsureDir(dir); err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func (o *Organizer) inDateWindow(captured time.Time) bool {
	day := dateOnly(captured)
	if !o.opts.FromDate.IsZero() && day.Before(dateOnly(o.opts.FromDate)) {
		return false
	}
	if !o.opts.ToDate.IsZero() && !day.Before(dateOnly(o.opts.ToDate)) {
		return false
	}
	return true
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
