// Package summary renders the human-readable purchase-order report.
package summary

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/EDI850-converter/internal/types"
)

// Unknown is printed for header fields the document never set.
const Unknown = "Unknown"

// Render formats doc and stats as a fixed-layout text report:
//
//	PO Summary:
//	PO <po> from <buyer> / <seller> contains <n> line items.
//	Total quantity: <q>, Total spend: <spend>
//	Items details:
//	- <item>: Qty=<qty>, Price=<price>
//
// Item lines show every raw line item, including ones that were dropped
// during normalization; the totals only cover normalized lines.
func Render(doc types.Document, stats types.Statistics) string {
	var b strings.Builder

	b.WriteString("PO Summary:\n")
	fmt.Fprintf(&b, "PO %s from %s / %s contains %d line items.\n",
		orUnknown(doc.PONumber), orUnknown(doc.Buyer), orUnknown(doc.Seller), len(doc.Items))
	fmt.Fprintf(&b, "Total quantity: %d, Total spend: %.2f\n", stats.TotalQuantity, stats.TotalSpend)
	b.WriteString("Items details:\n")
	for _, item := range doc.Items {
		fmt.Fprintf(&b, "- %s: Qty=%s, Price=%s\n", item.ItemID, item.Qty, item.Price)
	}

	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}
