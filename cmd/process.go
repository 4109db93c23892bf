// =============================================================================
// EDI 850 Converter - Process Command
// =============================================================================
//
// This file defines the 'process' command, which is the main command for
// converting EDI 850 documents. It orchestrates the batch pipeline.
//
// COMMAND USAGE:
//   edi850 process [flags]
//
// FLAGS:
//   --dry-run : Parse and validate without writing output files
//   --file    : Process a single file instead of the input directory
//
// PROCESSING PIPELINE:
//   1. Load configuration
//   2. Discover EDI files in the input directory (or take --file)
//   3. For each file (concurrently, bounded by max_concurrency):
//      a. Tokenize and build the document
//      b. Normalize and aggregate line items
//      c. Validate the document
//      d. Write the enabled exports
//      e. Archive the input
//   4. Write the error log and processing summary
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/EDI850-converter/internal/config"
	"github.com/ginjaninja78/EDI850-converter/internal/converter"
	"github.com/ginjaninja78/EDI850-converter/internal/edi"
	"github.com/ginjaninja78/EDI850-converter/internal/logging"
	"github.com/ginjaninja78/EDI850-converter/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun parses and validates without writing output files.
var dryRun bool

// filePath is a specific file to process.
var filePath string

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process EDI 850 files and export spend reports",
	Long: `The process command scans the input directory for EDI 850 documents and
converts each one into a folder of exports: raw and clean JSON, XML, CSV,
XLSX, a SQLite database with query results, and a text summary.

Processing is done concurrently. Each file is processed independently, and
errors in one file do not affect the processing of others.

On successful processing:
  - The exports are placed in a new folder under the output directory
  - The original file is moved to the input archive
  - A processing summary is written to the output directory

On error:
  - An error log is created in the output directory
  - The original file remains in the input directory
  - Processing continues for other files`,

	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadRuntime(); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runProcess(ctx)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse and validate without writing output files")
	processCmd.Flags().StringVar(&filePath, "file", "", "Path to a single EDI file to process")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runProcess(ctx context.Context) error {
	startTime := time.Now()
	cfg := appConfig

	fmt.Println("=== EDI 850 Converter ===")

	if !dryRun {
		if err := cfg.EnsureDirectories(); err != nil {
			return err
		}
	}

	// =========================================================================
	// STEP 1: DISCOVER INPUT FILES
	// =========================================================================

	inputFiles, err := resolveInputFiles(cfg, filePath)
	if err != nil {
		return err
	}

	if len(inputFiles) == 0 {
		fmt.Println("No EDI files found in the input directory.")
		return nil
	}

	fmt.Printf("Found %d file(s) to process\n", len(inputFiles))

	// A file named on the command line stays where it is.
	if filePath != "" {
		keep := false
		cfg.ArchiveOnSuccess = &keep
	}

	// =========================================================================
	// STEP 2: PROCESS FILES CONCURRENTLY
	// =========================================================================

	results := processFiles(ctx, cfg, logger, inputFiles, dryRun)

	// =========================================================================
	// STEP 3: REPORT
	// =========================================================================

	summary := utils.ProcessingSummary{
		StartTime:  startTime,
		TotalFiles: len(inputFiles),
	}
	var errorEntries []utils.ErrorLogEntry

	for _, result := range results {
		summary.TotalSegments += result.Stats.Segments
		summary.TotalLineItems += result.Stats.LineItems
		summary.LinesDropped += result.Stats.LinesDropped
		summary.ValidationErrors += result.Stats.ValidationErrors

		if !result.Success {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    result.FilePath,
				ErrorMessage: result.Error.Error(),
			})
			errorEntries = append(errorEntries, errorLogEntry(result))
			fmt.Printf("  ✗ %s: %v\n", filepath.Base(result.FilePath), result.Error)
			continue
		}

		summary.SuccessfulFiles++
		out := result.Output
		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			InputFile:   result.FilePath,
			OutputDir:   result.OutputDir,
			PONumber:    out.Document.PONumber,
			LineItems:   len(out.Document.Items),
			TotalSpend:  out.Statistics.TotalSpend,
			ProcessTime: result.Stats.ProcessingTime,
		})

		target := result.OutputDir
		if dryRun {
			target = "(dry run)"
		}
		fmt.Printf("  ✓ %s -> %s (%d lines, %d dropped, %d findings)\n",
			filepath.Base(result.FilePath), target,
			result.Stats.LinesNormalized, result.Stats.LinesDropped, result.Stats.ValidationErrors)

		if filePath != "" {
			fmt.Println()
			fmt.Print(out.Summary)
		}
	}
	summary.EndTime = time.Now()

	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total files:     %d\n", summary.TotalFiles)
	fmt.Printf("Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Printf("Errors:          %d\n", summary.FailedFiles)
	fmt.Printf("Time elapsed:    %s\n", summary.EndTime.Sub(startTime))

	if dryRun {
		return nil
	}

	if path, err := utils.WriteErrorLog(errorEntries, cfg.OutputDir); err != nil {
		logger.Error("Failed to write error log: %v", err)
	} else if path != "" {
		fmt.Printf("\nErrors have been logged to %s\n", path)
	}

	if _, err := utils.WriteSummaryLog(summary, cfg.OutputDir); err != nil {
		logger.Error("Failed to write processing summary: %v", err)
	}

	if summary.FailedFiles > 0 && filePath != "" {
		return fmt.Errorf("processing %s failed", filePath)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// resolveInputFiles returns file when set, otherwise the files discovered in
// the input directory.
func resolveInputFiles(cfg *config.MainConfig, file string) ([]string, error) {
	if file != "" {
		if !utils.FileExists(file) {
			return nil, fmt.Errorf("input file not found: %s", file)
		}
		return []string{file}, nil
	}

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.OutputArchiveDir)
	files, err := fm.DiscoverInputFiles(cfg.InputPatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to discover input files: %w", err)
	}
	return files, nil
}

// processFiles runs one converter per file with at most MaxConcurrency
// running at once. Results are returned in input order.
func processFiles(ctx context.Context, cfg *config.MainConfig, log logging.Logger, files []string, dry bool) []converter.Result {
	results := make([]converter.Result, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.MaxConcurrency)

	for i, file := range files {
		g.Go(func() error {
			results[i] = converter.New(file, cfg, log).WithDryRun(dry).Run(ctx)
			return nil
		})
	}

	// Failures are carried in each Result.
	_ = g.Wait()

	return results
}

// errorLogEntry converts a failed result into an error log entry.
func errorLogEntry(result converter.Result) utils.ErrorLogEntry {
	entry := utils.ErrorLogEntry{
		Timestamp:    time.Now(),
		FileName:     filepath.Base(result.FilePath),
		ErrorType:    "processing",
		ErrorMessage: result.Error.Error(),
	}

	var mse *edi.MalformedSegmentError
	switch {
	case errors.As(result.Error, &mse):
		entry.ErrorType = "malformed_segment"
		entry.SegmentIndex = mse.Index + 1
		entry.FieldName = mse.Tag
	case errors.Is(result.Error, converter.ErrValidationFailed):
		entry.ErrorType = "validation"
	}

	return entry
}
