package converter

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/EDI850-converter/internal/config"
	"github.com/ginjaninja78/EDI850-converter/internal/edi"
	"github.com/ginjaninja78/EDI850-converter/internal/normalize"
	"github.com/ginjaninja78/EDI850-converter/internal/types"
	"github.com/ginjaninja78/EDI850-converter/internal/validation"
)

const scenarioA = "BEG*00*SA*PO100**20250101~N1*BY*Acme~N1*ST*Widgets~PO1*1*10*EA*2.50*ITEM1~"

func TestProcessScenarioA(t *testing.T) {
	out, err := Process(scenarioA, validation.DefaultValidationOptions())
	require.NoError(t, err)

	assert.Equal(t, types.Document{
		PONumber: "PO100",
		Buyer:    "Acme",
		Seller:   "Widgets",
		Items: []types.LineItem{
			{LineNumber: "1", Qty: "10", QuantityUOM: "EA", Price: "2.50", ItemID: "ITEM1", Seller: "Widgets"},
		},
	}, out.Document)

	require.Len(t, out.Lines, 1)
	assert.Equal(t, int64(10), out.Lines[0].Qty)
	assert.Equal(t, 2.5, out.Lines[0].Price)
	assert.Equal(t, 25.0, out.Lines[0].LineTotal)

	assert.Equal(t, 25.0, out.Statistics.TotalSpend)
	assert.Equal(t, map[string]int64{"ITEM1": 10}, out.Statistics.QuantityByItem)
	assert.Equal(t, map[string]float64{"Widgets": 100}, out.Statistics.SpendPercentBySeller)
	assert.Equal(t, 25.0, out.TotalAmount)

	assert.True(t, out.Validation.IsValid)
	assert.Empty(t, out.Validation.Errors)
	assert.Contains(t, out.Summary, "PO PO100 from Acme / Widgets contains 1 line items.")
}

func TestProcessScenarioBBadDataDropped(t *testing.T) {
	out, err := Process("BEG*00*SA*PO100**20250101~N1*BY*Acme~N1*ST*Widgets~PO1*1*xx*EA*2.50*ITEM1~",
		validation.DefaultValidationOptions())
	require.NoError(t, err)

	require.Len(t, out.Document.Items, 1)
	assert.Empty(t, out.Lines)
	require.Len(t, out.Drops, 1)
	assert.Equal(t, normalize.ReasonInvalidQty, out.Drops[0].Reason)

	assert.Equal(t, 0.0, out.Statistics.TotalSpend)
	assert.Empty(t, out.Statistics.QuantityByItem)
	assert.Empty(t, out.Statistics.SpendPercentBySeller)

	assert.True(t, out.Validation.IsValid)
	assert.Equal(t, 1, out.Validation.WarningCount)
}

func TestProcessScenarioCMultiSeller(t *testing.T) {
	text := "BEG*00*SA*PO200~N1*BY*Acme~" +
		"N1*ST*Widgets~PO1*1*10*EA*2.50*ITEM1~" +
		"N1*ST*Gadgets~PO1*2*5*EA*15*ITEM2~"

	out, err := Process(text, validation.DefaultValidationOptions())
	require.NoError(t, err)

	require.Len(t, out.Lines, 2)
	assert.Equal(t, "Widgets", out.Lines[0].Seller)
	assert.Equal(t, "Gadgets", out.Lines[1].Seller)
	assert.Equal(t, "Gadgets", out.Document.Seller)

	assert.Len(t, out.Statistics.QuantityByItem, 2)
	sum := 0.0
	for _, pct := range out.Statistics.SpendPercentBySeller {
		sum += pct
	}
	assert.InDelta(t, 100.0, sum, 1e-9)
	assert.InDelta(t, 25.0, out.Statistics.SpendPercentBySeller["Widgets"], 1e-9)
}

func TestProcessMalformed(t *testing.T) {
	_, err := Process("BEG*00*SA*PO1~N1*BY~", validation.DefaultValidationOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, edi.ErrMalformedSegment))
}

func testConfig(t *testing.T) *config.MainConfig {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.InputDir = filepath.Join(root, "input")
	cfg.OutputDir = filepath.Join(root, "outputs")
	cfg.InputArchiveDir = filepath.Join(root, "input_archive")
	cfg.OutputArchiveDir = filepath.Join(root, "output_archive")
	cfg.OutputNameFormat = "{original}_{po}"
	require.NoError(t, cfg.EnsureDirectories())
	return cfg
}

func writeInput(t *testing.T, cfg *config.MainConfig, name, text string) string {
	t.Helper()
	path := filepath.Join(cfg.InputDir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	return path
}

func TestRunWritesAllArtifacts(t *testing.T) {
	cfg := testConfig(t)
	path := writeInput(t, cfg, "order.edi", scenarioA)

	result := New(path, cfg, nil).Run(context.Background())
	require.NoError(t, result.Error)
	require.True(t, result.Success)

	assert.Equal(t, filepath.Join(cfg.OutputDir, "order_PO100"), result.OutputDir)
	assert.Equal(t, 4, result.Stats.Segments)
	assert.Equal(t, 1, result.Stats.LinesNormalized)

	for _, name := range []string{
		FileRawJSON, FileCleanJSON, FileXML, FileCleanCSV, FileXLSX,
		FileDatabase, FileResults, FileSummary,
	} {
		assert.FileExists(t, filepath.Join(result.OutputDir, name))
	}
	assert.NoFileExists(t, filepath.Join(result.OutputDir, FileValidation))

	raw, err := os.ReadFile(filepath.Join(result.OutputDir, FileRawJSON))
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "PO100", doc["PO_Number"])
	assert.Equal(t, 25.0, doc["TotalAmount"])

	results, err := os.ReadFile(filepath.Join(result.OutputDir, FileResults))
	require.NoError(t, err)
	assert.Contains(t, string(results), "Total Spend: 25\n")
	assert.Contains(t, string(results), "  - Widgets: 100.00\n")

	// Archived.
	assert.NoFileExists(t, path)
	assert.FileExists(t, filepath.Join(cfg.InputArchiveDir, "order.edi"))
	assert.FileExists(t, filepath.Join(cfg.OutputArchiveDir, "order_PO100", FileSummary))
}

func TestRunSelectedOutputs(t *testing.T) {
	cfg := testConfig(t)
	cfg.Outputs = config.OutputSettings{Summary: true}
	archive := false
	cfg.ArchiveOnSuccess = &archive
	path := writeInput(t, cfg, "order.edi", "PO1*1*xx*EA*2.50*ITEM1~")

	result := New(path, cfg, nil).Run(context.Background())
	require.True(t, result.Success, "%v", result.Error)

	assert.Equal(t, []string{
		filepath.Join(result.OutputDir, FileSummary),
		filepath.Join(result.OutputDir, FileValidation),
	}, result.Files)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "order_unknown"), result.OutputDir)
	assert.FileExists(t, path)
}

func TestRunValidationFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.TreatWarningsAsErrors = true
	cont := false
	cfg.ContinueOnError = &cont
	path := writeInput(t, cfg, "order.edi", "PO1*1*1*EA*1*ITEM1~")

	result := New(path, cfg, nil).Run(context.Background())
	assert.False(t, result.Success)
	assert.True(t, errors.Is(result.Error, ErrValidationFailed))
	assert.Empty(t, result.OutputDir)
	assert.FileExists(t, path)
}

func TestRunMalformedAndMissing(t *testing.T) {
	cfg := testConfig(t)
	path := writeInput(t, cfg, "bad.edi", "BEG*00~")

	result := New(path, cfg, nil).Run(context.Background())
	assert.False(t, result.Success)
	var mse *edi.MalformedSegmentError
	require.True(t, errors.As(result.Error, &mse))
	assert.Equal(t, "BEG", mse.Tag)

	result = New(filepath.Join(cfg.InputDir, "nope.edi"), cfg, nil).Run(context.Background())
	assert.False(t, result.Success)
	assert.Error(t, result.Error)
}

func TestRunDryRun(t *testing.T) {
	cfg := testConfig(t)
	path := writeInput(t, cfg, "order.edi", scenarioA)

	result := New(path, cfg, nil).WithDryRun(true).Run(context.Background())
	require.True(t, result.Success)
	assert.Empty(t, result.OutputDir)
	assert.Empty(t, result.Files)
	require.NotNil(t, result.Output)
	assert.Equal(t, "PO100", result.Output.Document.PONumber)

	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.FileExists(t, path)
}

func TestRunCancelled(t *testing.T) {
	cfg := testConfig(t)
	path := writeInput(t, cfg, "order.edi", scenarioA)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := New(path, cfg, nil).Run(ctx)
	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Error, context.Canceled)
}

func TestProcessOverflowLineDropped(t *testing.T) {
	text := "BEG*00*SA*PO300~N1*BY*Acme~N1*ST*A~PO1*1*9223372036854775807*EA*1e308*I1~" +
		"N1*ST*B~PO1*2*1*EA*1*I2~"

	out, err := Process(text, validation.DefaultValidationOptions())
	require.NoError(t, err)

	require.Len(t, out.Lines, 1)
	require.Len(t, out.Drops, 1)
	assert.Equal(t, normalize.ReasonOverflow, out.Drops[0].Reason)
	assert.Equal(t, 1.0, out.Statistics.TotalSpend)
	assert.Equal(t, map[string]float64{"B": 100}, out.Statistics.SpendPercentBySeller)
}

func TestRunDotPONumberStaysInOutputDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.OutputNameFormat = "{po}"
	archive := false
	cfg.ArchiveOnSuccess = &archive

	for _, po := range []string{"..", "."} {
		path := writeInput(t, cfg, "order.edi", "BEG*00*SA*"+po+"~N1*ST*Widgets~PO1*1*1*EA*1*ITEM1~")

		result := New(path, cfg, nil).Run(context.Background())
		require.True(t, result.Success, "%s: %v", po, result.Error)

		rel, err := filepath.Rel(cfg.OutputDir, result.OutputDir)
		require.NoError(t, err)
		assert.NotEqual(t, ".", rel, po)
		assert.False(t, strings.HasPrefix(rel, ".."), "%s: output written to %s", po, result.OutputDir)
		assert.FileExists(t, filepath.Join(result.OutputDir, FileSummary))
	}

	assert.NoFileExists(t, filepath.Join(filepath.Dir(cfg.OutputDir), FileSummary))
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, FileSummary))
}

func TestRunArchiveTimestampSubdirs(t *testing.T) {
	cfg := testConfig(t)
	cfg.ArchiveTimestampSubdirs = true
	path := writeInput(t, cfg, "order.edi", scenarioA)

	result := New(path, cfg, nil).Run(context.Background())
	require.True(t, result.Success, "%v", result.Error)

	day := time.Now().Format(filepath.Join("2006", "01", "02"))
	assert.NoFileExists(t, path)
	assert.FileExists(t, filepath.Join(cfg.InputArchiveDir, day, "order.edi"))
	assert.FileExists(t, filepath.Join(cfg.OutputArchiveDir, day, "order_PO100", FileSummary))
	assert.NoFileExists(t, filepath.Join(cfg.InputArchiveDir, "order.edi"))
}

func TestRunFormatSettings(t *testing.T) {
	cfg := testConfig(t)
	cfg.Outputs = config.OutputSettings{XML: true, CSV: true}
	cfg.Formats = config.FormatSettings{CSVDelimiter: ";", XMLRootElement: "Order", XMLIndent: "\t"}
	path := writeInput(t, cfg, "order.edi", scenarioA)

	result := New(path, cfg, nil).Run(context.Background())
	require.True(t, result.Success, "%v", result.Error)

	csvData, err := os.ReadFile(filepath.Join(result.OutputDir, FileCleanCSV))
	require.NoError(t, err)
	assert.Equal(t, "Line;Qty;Quantity_UOM;Price;Item_ID;Seller;LineTotal\n1;10;EA;2.5;ITEM1;Widgets;25\n", string(csvData))

	xmlData, err := os.ReadFile(filepath.Join(result.OutputDir, FileXML))
	require.NoError(t, err)
	assert.Contains(t, string(xmlData), "<Order>")
	assert.Contains(t, string(xmlData), "\n\t<PONumber>PO100</PONumber>")
}
