// =============================================================================
// EDI 850 Converter - Report Writer
// =============================================================================
//
// Persists the text artifacts of a conversion:
//   - summary.txt          the rendered purchase-order summary
//   - README_results.txt   the spend query results
//
// =============================================================================

package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/ginjaninja78/EDI850-converter/internal/aggregate"
	"github.com/ginjaninja78/EDI850-converter/internal/types"
)

// FormatResults renders the query results listing.
//
//	### SQL Query Results
//
//	Total Spend: 25
//
//	Qty per Item:
//	  - ITEM1: 10
//
//	Supplier Spend %:
//	  - Widgets: 100.00
func FormatResults(stats types.Statistics) string {
	var b strings.Builder

	b.WriteString("### SQL Query Results\n\n")
	fmt.Fprintf(&b, "Total Spend: %s\n\n", formatAmount(stats.TotalSpend))

	b.WriteString("Qty per Item:\n")
	for _, item := range aggregate.SortedItems(stats) {
		fmt.Fprintf(&b, "  - %s: %d\n", item, stats.QuantityByItem[item])
	}

	b.WriteString("\nSupplier Spend %:\n")
	if stats.TotalSpend == 0 && len(stats.SpendPercentBySeller) > 0 {
		b.WriteString("  (total spend is zero; every seller reported at 0%)\n")
	}
	for _, seller := range aggregate.SortedSellers(stats) {
		name := seller
		if name == "" {
			name = "(no seller)"
		}
		fmt.Fprintf(&b, "  - %s: %.2f\n", name, stats.SpendPercentBySeller[seller])
	}

	return b.String()
}

// WriteResults writes FormatResults output to path.
func WriteResults(path string, stats types.Statistics) error {
	return writeText(path, FormatResults(stats))
}

// WriteSummary writes an already rendered summary to path.
func WriteSummary(path, summary string) error {
	return writeText(path, summary)
}

func writeText(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func formatAmount(f float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.4f", f), "0"), ".")
}
