// =============================================================================
// EDI 850 Converter - XLSX Writer Module
// =============================================================================
//
// This module writes the normalized line table and the spend statistics to
// an XLSX workbook.
//
// WORKBOOK LAYOUT:
//   Sheet "Lines"      - one row per normalized line (same columns as CSV)
//   Sheet "Statistics" - total spend, quantity per item, spend % per seller
//
// =============================================================================

package xlsxwriter

import (
	"bytes"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/EDI850-converter/internal/aggregate"
	"github.com/ginjaninja78/EDI850-converter/internal/csvwriter"
	"github.com/ginjaninja78/EDI850-converter/internal/types"
)

const (
	// LinesSheet holds the normalized lines.
	LinesSheet = "Lines"

	// StatisticsSheet holds the aggregates.
	StatisticsSheet = "Statistics"
)

// Build creates the workbook in memory. The caller owns the returned file.
func Build(lines []types.NormalizedLine, stats types.Statistics) (*excelize.File, error) {
	f := excelize.NewFile()

	// NewFile starts with "Sheet1"; rename it rather than leave it empty.
	if err := f.SetSheetName(f.GetSheetName(0), LinesSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := writeLines(f, lines); err != nil {
		f.Close()
		return nil, err
	}

	if _, err := f.NewSheet(StatisticsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := writeStatistics(f, stats); err != nil {
		f.Close()
		return nil, err
	}

	index, _ := f.GetSheetIndex(LinesSheet)
	f.SetActiveSheet(index)

	return f, nil
}

// Encode returns the workbook as bytes.
func Encode(lines []types.NormalizedLine, stats types.Statistics) ([]byte, error) {
	f, err := Build(lines, stats)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// Write saves the workbook to path.
func Write(path string, lines []types.NormalizedLine, stats types.Statistics) error {
	data, err := Encode(lines, stats)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// =============================================================================
// SHEET WRITERS
// =============================================================================

func writeLines(f *excelize.File, lines []types.NormalizedLine) error {
	if err := setRow(f, LinesSheet, 1, toAny(csvwriter.Header)); err != nil {
		return err
	}

	for i, l := range lines {
		row := []interface{}{l.LineNumber, l.Qty, l.QuantityUOM, l.Price, l.ItemID, l.Seller, l.LineTotal}
		if err := setRow(f, LinesSheet, i+2, row); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(LinesSheet, "A", "D", 12)
	_ = f.SetColWidth(LinesSheet, "E", "F", 24)
	_ = f.SetColWidth(LinesSheet, "G", "G", 14)
	return nil
}

func writeStatistics(f *excelize.File, stats types.Statistics) error {
	row := 1
	put := func(values ...interface{}) error {
		err := setRow(f, StatisticsSheet, row, values)
		row++
		return err
	}

	if err := put("Total Spend", stats.TotalSpend); err != nil {
		return err
	}
	if err := put("Total Quantity", stats.TotalQuantity); err != nil {
		return err
	}
	if err := put("Lines", stats.LineCount); err != nil {
		return err
	}
	row++

	if err := put("Item_ID", "TotalQty"); err != nil {
		return err
	}
	for _, item := range aggregate.SortedItems(stats) {
		if err := put(item, stats.QuantityByItem[item]); err != nil {
			return err
		}
	}
	row++

	if err := put("Seller", "SpendPercent"); err != nil {
		return err
	}
	for _, seller := range aggregate.SortedSellers(stats) {
		if err := put(seller, stats.SpendPercentBySeller[seller]); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(StatisticsSheet, "A", "A", 24)
	_ = f.SetColWidth(StatisticsSheet, "B", "B", 16)
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toAny(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
