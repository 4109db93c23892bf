// =============================================================================
// EDI 850 Converter - Converter Module
// =============================================================================
//
// This module contains the core conversion logic. It orchestrates the entire
// pipeline for a single EDI document, from segment tokenizing to exports.
//
// CONVERSION PIPELINE:
//   1. Read the input file
//   2. Tokenize into segments and fold them into a Document
//   3. Normalize line items (drop lines whose numbers do not parse)
//   4. Aggregate spend statistics
//   5. Validate the document
//   6. Write the enabled exports into a per-document output folder
//   7. Archive the processed files
//
// Steps 2 to 5 are pure and available on their own through Process.
//
// CONCURRENCY:
//   A Converter handles one file and shares no state with other Converters,
//   so independent documents can be processed in parallel.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/EDI850-converter/internal/aggregate"
	"github.com/ginjaninja78/EDI850-converter/internal/config"
	"github.com/ginjaninja78/EDI850-converter/internal/csvwriter"
	"github.com/ginjaninja78/EDI850-converter/internal/edi"
	"github.com/ginjaninja78/EDI850-converter/internal/jsonwriter"
	"github.com/ginjaninja78/EDI850-converter/internal/logging"
	"github.com/ginjaninja78/EDI850-converter/internal/normalize"
	"github.com/ginjaninja78/EDI850-converter/internal/report"
	"github.com/ginjaninja78/EDI850-converter/internal/sqlstore"
	"github.com/ginjaninja78/EDI850-converter/internal/summary"
	"github.com/ginjaninja78/EDI850-converter/internal/types"
	"github.com/ginjaninja78/EDI850-converter/internal/validation"
	"github.com/ginjaninja78/EDI850-converter/internal/xlsxwriter"
	"github.com/ginjaninja78/EDI850-converter/internal/xmlwriter"
	"github.com/ginjaninja78/EDI850-converter/pkg/utils"
)

// Artifact file names inside a document's output folder.
const (
	FileRawJSON    = "po.json"
	FileXML        = "po.xml"
	FileCleanCSV   = "po_clean.csv"
	FileCleanJSON  = "po_clean.json"
	FileXLSX       = "po_clean.xlsx"
	FileDatabase   = "po_data.db"
	FileResults    = "README_results.txt"
	FileSummary    = "summary.txt"
	FileValidation = "validation_errors.txt"
)

// ErrValidationFailed is returned when validation reports errors and the
// configuration does not allow continuing.
var ErrValidationFailed = errors.New("validation failed")

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// OutputDir is the folder holding this document's artifacts.
	// Empty if processing failed before writing or in dry-run mode.
	OutputDir string

	// Files lists the artifacts written, in write order.
	Files []string

	// Output holds the in-memory pipeline result when parsing succeeded.
	Output *Output

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// Segments is the number of non-empty segments read.
	Segments int

	// LineItems is the number of PO1 line items in the document.
	LineItems int

	// LinesNormalized is the number of line items that normalized.
	LinesNormalized int

	// LinesDropped is the number of line items the normalizer dropped.
	LinesDropped int

	// ValidationErrors is the number of validation findings, warnings included.
	ValidationErrors int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// PURE PIPELINE
// =============================================================================

// Output is the in-memory result of the pipeline for one document.
type Output struct {
	Document    types.Document
	BuildStats  edi.BuildStats
	Lines       []types.NormalizedLine
	Drops       []*normalize.DropError
	Statistics  types.Statistics
	TotalAmount float64
	Summary     string
	Validation  *validation.ValidationResult
}

// Process runs tokenize, build, normalize, aggregate, validate and render over
// text. The only error is a *edi.MalformedSegmentError.
func Process(text string, options validation.ValidationOptions) (*Output, error) {
	doc, buildStats, err := edi.BuildWithStats(edi.Tokenize(text))
	if err != nil {
		return nil, err
	}

	lines, drops := normalize.Normalize(doc.Items)
	stats := aggregate.Aggregate(lines)

	return &Output{
		Document:    doc,
		BuildStats:  buildStats,
		Lines:       lines,
		Drops:       drops,
		Statistics:  stats,
		TotalAmount: types.TotalAmount(lines),
		Summary:     summary.Render(doc, stats),
		Validation:  validation.NewValidatorWithOptions(options).Validate(doc, lines, drops),
	}, nil
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter handles the conversion of a single EDI file.
type Converter struct {
	// path is the path to the input EDI file.
	path string

	// mainConfig is the main application configuration.
	mainConfig *config.MainConfig

	// files handles discovery naming and archival.
	files *utils.FileManager

	// dryRun skips every write and the archive step.
	dryRun bool

	logger logging.Logger
}

// New creates a new Converter instance. A nil logger discards output.
func New(path string, mainConfig *config.MainConfig, logger logging.Logger) *Converter {
	if logger == nil {
		logger = logging.Nop()
	}

	fm := utils.NewFileManager(
		mainConfig.InputDir,
		mainConfig.OutputDir,
		mainConfig.InputArchiveDir,
		mainConfig.OutputArchiveDir,
	)
	fm.ArchiveOnSuccess = mainConfig.ShouldArchive()
	fm.UseTimestampSubdirs = mainConfig.ArchiveTimestampSubdirs

	return &Converter{
		path:       path,
		mainConfig: mainConfig,
		files:      fm,
		logger:     logger,
	}
}

// WithDryRun makes Run parse and validate without writing anything.
func (c *Converter) WithDryRun(dryRun bool) *Converter {
	c.dryRun = dryRun
	return c
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline for the file.
func (c *Converter) Run(ctx context.Context) Result {
	startTime := time.Now()
	result := Result{FilePath: c.path}
	defer func() { result.Stats.ProcessingTime = time.Since(startTime) }()

	// =========================================================================
	// STEP 1: READ INPUT
	// =========================================================================

	c.logger.Info("Processing file: %s", c.path)

	data, err := os.ReadFile(c.path)
	if err != nil {
		result.Error = fmt.Errorf("failed to read input: %w", err)
		return result
	}

	if err := ctx.Err(); err != nil {
		result.Error = err
		return result
	}

	// =========================================================================
	// STEPS 2-5: PARSE, NORMALIZE, AGGREGATE, VALIDATE
	// =========================================================================

	out, err := Process(string(data), validation.ValidationOptions{
		TreatWarningsAsErrors: c.mainConfig.TreatWarningsAsErrors,
	})
	if err != nil {
		result.Error = fmt.Errorf("failed to parse document: %w", err)
		return result
	}

	result.Output = out
	result.Stats.Segments = out.BuildStats.Segments
	result.Stats.LineItems = len(out.Document.Items)
	result.Stats.LinesNormalized = len(out.Lines)
	result.Stats.LinesDropped = len(out.Drops)
	result.Stats.ValidationErrors = len(out.Validation.Errors)

	c.logger.Debug("Parsed %d segments (%d unrecognized), %d line items",
		out.BuildStats.Segments, out.BuildStats.Unrecognized, len(out.Document.Items))

	for _, d := range out.Drops {
		c.logger.Warn("Dropped line: %s", d.Error())
	}
	for _, ve := range out.Validation.Errors {
		c.logger.Debug("Validation: %s", ve.Error())
	}

	if !out.Validation.IsValid && !c.mainConfig.ShouldContinueOnError() {
		result.Error = fmt.Errorf("%w with %d errors", ErrValidationFailed, out.Validation.ErrorCount)
		return result
	}

	if c.dryRun {
		result.Success = true
		return result
	}

	// =========================================================================
	// STEP 6: WRITE OUTPUTS
	// =========================================================================

	outputDir, err := c.createOutputDir(out.Document)
	if err != nil {
		result.Error = err
		return result
	}
	result.OutputDir = outputDir

	files, err := c.writeOutputs(ctx, outputDir, out)
	result.Files = files
	if err != nil {
		result.Error = fmt.Errorf("failed to write output: %w", err)
		return result
	}

	c.logger.Info("Wrote %d artifacts to: %s", len(files), outputDir)

	// =========================================================================
	// STEP 7: ARCHIVE FILES
	// =========================================================================

	if err := c.archiveFiles(outputDir); err != nil {
		// Archival failures do not fail the document.
		c.logger.Warn("Failed to archive files: %v", err)
	}

	result.Success = true
	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// createOutputDir creates the document's output folder under OutputDir.
func (c *Converter) createOutputDir(doc types.Document) (string, error) {
	po := doc.PONumber
	if po == "" {
		po = "unknown"
	}

	name := utils.GenerateOutputFileName(c.mainConfig.OutputNameFormat, map[string]string{
		"original": utils.BaseName(c.path),
		"po":       po,
	})
	dir := filepath.Join(c.mainConfig.OutputDir, name)

	rel, err := filepath.Rel(c.mainConfig.OutputDir, dir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("output directory name %q is outside %s", name, c.mainConfig.OutputDir)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return dir, nil
}

func (c *Converter) xmlOptions() xmlwriter.GenerateOptions {
	options := xmlwriter.DefaultGenerateOptions()
	if root := c.mainConfig.Formats.XMLRootElement; root != "" {
		options.RootElement = root
	}
	if indent := c.mainConfig.Formats.XMLIndent; indent != "" {
		options.Indent = indent
	}
	return options
}

func (c *Converter) csvOptions() csvwriter.Options {
	options := csvwriter.DefaultOptions()
	if d := []rune(c.mainConfig.Formats.CSVDelimiter); len(d) == 1 {
		options.Delimiter = d[0]
	}
	options.UseCRLF = c.mainConfig.Formats.CSVUseCRLF
	return options
}

// writeOutputs writes each enabled artifact and returns the paths written.
func (c *Converter) writeOutputs(ctx context.Context, dir string, out *Output) ([]string, error) {
	outputs := c.mainConfig.Outputs
	var written []string

	write := func(enabled bool, name string, fn func(path string) error) error {
		if !enabled {
			return nil
		}
		path := filepath.Join(dir, name)
		if err := fn(path); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	steps := []struct {
		enabled bool
		name    string
		fn      func(path string) error
	}{
		{outputs.JSON, FileRawJSON, func(p string) error {
			return jsonwriter.WriteDocument(p, out.Document, out.TotalAmount)
		}},
		{outputs.JSON, FileCleanJSON, func(p string) error {
			return jsonwriter.WriteLines(p, out.Lines)
		}},
		{outputs.XML, FileXML, func(p string) error {
			return xmlwriter.WriteWithOptions(p, out.Document, out.TotalAmount, c.xmlOptions())
		}},
		{outputs.CSV, FileCleanCSV, func(p string) error {
			return csvwriter.WriteWithOptions(p, out.Lines, c.csvOptions())
		}},
		{outputs.XLSX, FileXLSX, func(p string) error {
			return xlsxwriter.Write(p, out.Lines, out.Statistics)
		}},
		{outputs.SQLite, FileDatabase, func(p string) error {
			return c.writeDatabase(ctx, p, filepath.Join(dir, FileResults), out)
		}},
		{outputs.Summary, FileSummary, func(p string) error {
			return report.WriteSummary(p, out.Summary)
		}},
		{len(out.Validation.Errors) > 0, FileValidation, func(p string) error {
			return validation.WriteErrorLog(out.Validation.Errors, c.path, p)
		}},
	}

	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if err := write(s.enabled, s.name, s.fn); err != nil {
			return written, err
		}
		if s.enabled && s.name == FileDatabase {
			written = append(written, filepath.Join(dir, FileResults))
		}
	}

	return written, nil
}

// writeDatabase loads the normalized lines into SQLite, runs the fixed
// queries and writes their results to resultsPath.
func (c *Converter) writeDatabase(ctx context.Context, dbPath, resultsPath string, out *Output) error {
	store, err := sqlstore.Open(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	if err := store.Load(ctx, out.Lines); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	stats, err := store.Statistics(ctx)
	if err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}

	if math.Abs(stats.TotalSpend-out.Statistics.TotalSpend) > 1e-6 {
		c.logger.Warn("Database total %.4f differs from aggregated total %.4f",
			stats.TotalSpend, out.Statistics.TotalSpend)
	}

	return report.WriteResults(resultsPath, stats)
}

// archiveFiles moves the input file to the input archive and copies the
// output folder to the output archive.
func (c *Converter) archiveFiles(outputDir string) error {
	if !c.files.ArchiveOnSuccess {
		return nil
	}

	archived, err := c.files.ArchiveInputFile(c.path)
	if err != nil {
		return fmt.Errorf("failed to archive input file: %w", err)
	}
	c.logger.Debug("Archived input to: %s", archived)

	if _, err := c.files.ArchiveOutputDir(outputDir); err != nil {
		return fmt.Errorf("failed to archive output: %w", err)
	}

	return nil
}
