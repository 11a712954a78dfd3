package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"shuttersort/internal/cache"
	"shuttersort/internal/cachestore"
	"shuttersort/internal/logging"
)

func newCacheCommand(cmdCtx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Change-detection cache utilities",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(cmdCtx))
	cacheCmd.AddCommand(newCacheListCommand(cmdCtx))

	return cacheCmd
}

func newCacheStatsCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache database statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := cachestore.Open(cfg.Paths.CacheDB, logging.NewNop())
			if err != nil {
				return fmt.Errorf("open cache database: %w", err)
			}
			defer store.Close()

			count, err := store.Count(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Database: %s\n", store.Path())
			fmt.Fprintf(out, "Records:  %d\n", count)
			return nil
		},
	}
}

func newCacheListCommand(cmdCtx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached file records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := cachestore.Open(cfg.Paths.CacheDB, logging.NewNop())
			if err != nil {
				return fmt.Errorf("open cache database: %w", err)
			}
			defer store.Close()

			entries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Cache is empty")
				return nil
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				record, err := cache.DecodeRecord(entry.Value)
				if err != nil {
					rows = append(rows, []string{entry.Key, "?", "?", "undecodable"})
					continue
				}
				rows = append(rows, []string{
					entry.Key,
					strconv.FormatUint(record.FileSize, 10),
					record.MTime,
					record.Timestamp,
				})
			}

			fmt.Fprintln(out, renderTable(out,
				[]string{"KEY", "SIZE", "MTIME", "RECORDED"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft}))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of records to show (0 = all)")
	return cmd
}
