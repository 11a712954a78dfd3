package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"shuttersort/internal/cache"
	"shuttersort/internal/config"
	"shuttersort/internal/exifmeta"
	"shuttersort/internal/organizer"
)

func newRunCommand(cmdCtx *commandContext) *cobra.Command {
	var outputFlag string
	var rawOutputFlag string
	var fromFlag string
	var toFlag string
	var evalModeFlag string
	var noCache bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run <input-dir>",
		Short: "Distribute image files from an input directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			inputDir, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve input directory: %w", err)
			}
			if info, err := os.Stat(inputDir); err != nil {
				return fmt.Errorf("input directory: %w", err)
			} else if !info.IsDir() {
				return fmt.Errorf("input %s is not a directory", inputDir)
			}

			outputDir, err := resolveDir(outputFlag, cfg.Paths.OutputDir)
			if err != nil {
				return err
			}
			if outputDir == "" {
				return fmt.Errorf("no output directory configured (set paths.output_dir or pass --output)")
			}
			rawOutputDir, err := resolveDir(rawOutputFlag, cfg.Paths.RawOutputDir)
			if err != nil {
				return err
			}

			fromDate, err := parseDateFlag(fromFlag)
			if err != nil {
				return fmt.Errorf("--from-date: %w", err)
			}
			toDate, err := parseDateFlag(toFlag)
			if err != nil {
				return fmt.Errorf("--to-date: %w", err)
			}

			logger, err := cmdCtx.newLogger(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reader := exifmeta.Reader{}
			opts := organizer.Options{
				InputDir:     inputDir,
				OutputDir:    outputDir,
				RawOutputDir: rawOutputDir,
				LockPath:     runLockPath(cfg),
				FromDate:     fromDate,
				ToDate:       toDate,
				DryRun:       dryRun,
				Reader:       reader,
				Logger:       logger,
			}

			if cfg.Cache.Enabled && !noCache {
				modeValue := cfg.Cache.EvalMode
				if evalModeFlag != "" {
					modeValue = evalModeFlag
				}
				mode, err := cache.ParseEvalMode(modeValue)
				if err != nil {
					return err
				}
				c, err := cache.Open(cfg.Paths.CacheDB, mode, inputDir, reader, logger)
				if err != nil {
					return fmt.Errorf("open cache: %w", err)
				}
				defer c.Close()
				opts.Cache = c
			}

			org, err := organizer.New(opts)
			if err != nil {
				return err
			}
			summary, err := org.Run(ctx)
			if err != nil {
				return err
			}

			printSummary(cmd, summary)
			if summary.Failed > 0 {
				return fmt.Errorf("%d file(s) failed; see the log for details", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output directory (overrides configuration)")
	cmd.Flags().StringVarP(&rawOutputFlag, "raw-output", "r", "", "Separate output directory for raw files")
	cmd.Flags().StringVarP(&fromFlag, "from-date", "f", "", "Earliest capture date to include (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVarP(&toFlag, "to-date", "t", "", "Capture date to stop before (YYYY-MM-DD, exclusive)")
	cmd.Flags().StringVar(&evalModeFlag, "eval-mode", "", "Cache evaluation mode: shallow or strict")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Re-copy every file regardless of cache state")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be copied without writing anything")
	return cmd
}

// runLockPath places the run lock beside the cache database. The cache path
// always has an absolute default, unlike the optional log directory.
func runLockPath(cfg *config.Config) string {
	return filepath.Join(filepath.Dir(cfg.Paths.CacheDB), "shuttersort.lock")
}

func resolveDir(flagValue, configValue string) (string, error) {
	value := strings.TrimSpace(flagValue)
	if value == "" {
		return configValue, nil
	}
	expanded, err := config.ExpandPath(value)
	if err != nil {
		return "", fmt.Errorf("resolve directory %q: %w", value, err)
	}
	return expanded, nil
}

func parseDateFlag(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", trimmed, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD, got %q", value)
	}
	return parsed, nil
}

func printSummary(cmd *cobra.Command, summary organizer.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scanned %d file(s) in %s\n", summary.Scanned, summary.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "  copied:        %d\n", summary.Copied)
	fmt.Fprintf(out, "  unchanged:     %d\n", summary.Cached)
	fmt.Fprintf(out, "  no timestamp:  %d\n", summary.NoTimestamp)
	fmt.Fprintf(out, "  out of range:  %d\n", summary.OutOfRange)
	fmt.Fprintf(out, "  unsupported:   %d\n", summary.Unsupported)
	fmt.Fprintf(out, "  failed:        %d\n", summary.Failed)
}
