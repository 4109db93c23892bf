// =============================================================================
// EDI 850 Converter - Shared Types
// =============================================================================
//
// This package contains the purchase-order data model shared by the pipeline
// stages and the export writers. Keeping it here avoids import cycles between:
//   - edi        (produces Document)
//   - normalize  (produces NormalizedLine)
//   - aggregate  (produces Statistics)
//   - the writers that consume all three
//
// =============================================================================

package types

// =============================================================================
// DOCUMENT TYPES
// =============================================================================

// Document is a parsed purchase order.
// Header fields hold "" when the corresponding segment never appeared.
type Document struct {
	// PONumber comes from the BEG segment (element 3).
	PONumber string

	// Buyer comes from the N1 segment qualified BY.
	Buyer string

	// Seller comes from the N1 segment qualified ST.
	Seller string

	// Items holds one entry per PO1 segment, in segment order.
	Items []LineItem
}

// LineItem is a raw PO1 line. All values are kept exactly as they appeared
// in the document.
type LineItem struct {
	LineNumber  string
	Qty         string
	QuantityUOM string
	Price       string

	// ItemID is the last element of the PO1 segment.
	ItemID string

	// Seller is the document's seller at the time the line was read.
	Seller string
}

// HasPONumber reports whether a BEG segment set the PO number.
func (d Document) HasPONumber() bool { return d.PONumber != "" }

// HasBuyer reports whether an N1*BY segment set the buyer.
func (d Document) HasBuyer() bool { return d.Buyer != "" }

// HasSeller reports whether an N1*ST segment set the seller.
func (d Document) HasSeller() bool { return d.Seller != "" }

// =============================================================================
// DERIVED TYPES
// =============================================================================

// NormalizedLine is a LineItem whose quantity and price parsed as numbers.
type NormalizedLine struct {
	LineNumber  string
	ItemID      string
	QuantityUOM string
	Seller      string

	Qty       int64
	Price     float64
	LineTotal float64
}

// Statistics are the spend aggregates over a set of normalized lines.
type Statistics struct {
	// TotalSpend is the sum of LineTotal.
	TotalSpend float64

	// TotalQuantity is the sum of Qty.
	TotalQuantity int64

	// LineCount is the number of lines aggregated.
	LineCount int

	// QuantityByItem maps ItemID to summed Qty.
	QuantityByItem map[string]int64

	// SpendPercentBySeller maps Seller to its share of TotalSpend (0-100).
	// Lines without a seller are grouped under "".
	SpendPercentBySeller map[string]float64
}

// TotalAmount returns the sum of LineTotal over lines.
func TotalAmount(lines []NormalizedLine) float64 {
	var total float64
	for _, l := range lines {
		total += l.LineTotal
	}
	return total
}
