// =============================================================================
// EDI 850 Converter - Watch Command
// =============================================================================
//
// This file defines the 'watch' command, which processes documents as they
// appear in the input directory until interrupted.
//
// COMMAND USAGE:
//   edi850 watch
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/EDI850-converter/internal/converter"
	"github.com/ginjaninja78/EDI850-converter/pkg/utils"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the input directory and process new files",
	Long: `The watch command processes every EDI file that is created in or copied to
the input directory. Bursts of events for the same file are coalesced by
watch.debounce. With watch.initial_scan set, files already present are
processed first. Stop with Ctrl+C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadRuntime(); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runWatch(ctx)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(ctx context.Context) error {
	cfg := appConfig

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	files, errs, err := utils.WatchInputDir(ctx, cfg.InputDir, utils.WatchOptions{
		Patterns:    cfg.InputPatterns,
		Debounce:    cfg.Watch.Debounce,
		InitialScan: cfg.Watch.InitialScan,
	})
	if err != nil {
		return err
	}

	logger.Info("Watching %s for %v", cfg.InputDir, cfg.InputPatterns)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.MaxConcurrency)

	for files != nil || errs != nil {
		select {
		case file, ok := <-files:
			if !ok {
				files = nil
				continue
			}
			g.Go(func() error {
				result := converter.New(file, cfg, logger).Run(gctx)
				if result.Success {
					fmt.Printf("  ✓ %s -> %s\n", filepath.Base(file), result.OutputDir)
					return nil
				}
				fmt.Printf("  ✗ %s: %v\n", filepath.Base(file), result.Error)
				if _, err := utils.WriteErrorLog([]utils.ErrorLogEntry{errorLogEntry(result)}, cfg.OutputDir); err != nil {
					logger.Error("Failed to write error log: %v", err)
				}
				return nil
			})

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("Watcher error: %v", err)
		}
	}

	_ = g.Wait()
	logger.Info("Stopped watching %s", cfg.InputDir)
	return nil
}
