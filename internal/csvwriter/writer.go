// =============================================================================
// EDI 850 Converter - CSV Writer Module
// =============================================================================
//
// This module writes the normalized line table as CSV:
//
//   Line,Qty,Quantity_UOM,Price,Item_ID,Seller,LineTotal
//   1,10,EA,2.5,ITEM1,Widgets,25
//
// Numbers are written with the shortest representation that round-trips.
// The same column layout is reused by the XLSX writer.
//
// =============================================================================

package csvwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ginjaninja78/EDI850-converter/internal/types"
)

// Header lists the output columns in order.
var Header = []string{"Line", "Qty", "Quantity_UOM", "Price", "Item_ID", "Seller", "LineTotal"}

// Options contains options for CSV output.
type Options struct {
	// Delimiter separates fields. Default: ','
	Delimiter rune

	// UseCRLF ends records with \r\n instead of \n.
	UseCRLF bool

	// OmitHeader skips the header record.
	OmitHeader bool
}

// DefaultOptions returns the default CSV options.
func DefaultOptions() Options {
	return Options{Delimiter: ','}
}

// Row converts a line into its CSV record.
func Row(l types.NormalizedLine) []string {
	return []string{
		l.LineNumber,
		strconv.FormatInt(l.Qty, 10),
		l.QuantityUOM,
		FormatFloat(l.Price),
		l.ItemID,
		l.Seller,
		FormatFloat(l.LineTotal),
	}
}

// FormatFloat formats f with the fewest digits that parse back to f.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Encode writes lines to w using options.
func Encode(w io.Writer, lines []types.NormalizedLine, options Options) error {
	writer := csv.NewWriter(w)
	if options.Delimiter != 0 {
		writer.Comma = options.Delimiter
	}
	writer.UseCRLF = options.UseCRLF

	if !options.OmitHeader {
		if err := writer.Write(Header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, l := range lines {
		if err := writer.Write(Row(l)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// Write writes lines to the file at path with default options.
func Write(path string, lines []types.NormalizedLine) error {
	return WriteWithOptions(path, lines, DefaultOptions())
}

// WriteWithOptions writes lines to the file at path.
func WriteWithOptions(path string, lines []types.NormalizedLine, options Options) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := Encode(file, lines, options); err != nil {
		file.Close()
		return err
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}
