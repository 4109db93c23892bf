// =============================================================================
// EDI 850 Converter - JSON Writer
// =============================================================================
//
// Serializes the parsed purchase order and the normalized lines as indented
// JSON. Key names follow the established po.json interchange layout:
//
//   {
//       "PO_Number": "PO100",
//       "Buyer": "Acme",
//       "Seller": "Widgets",
//       "Items": [ { "Line": "1", "Qty": "10", ... } ],
//       "TotalAmount": 25
//   }
//
// Unset header fields are written as null.
//
// =============================================================================

package jsonwriter

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ginjaninja78/EDI850-converter/internal/types"
)

const indent = "    "

// =============================================================================
// JSON SHAPES
// =============================================================================

type documentJSON struct {
	PONumber    *string        `json:"PO_Number"`
	Buyer       *string        `json:"Buyer"`
	Seller      *string        `json:"Seller"`
	Items       []lineItemJSON `json:"Items"`
	TotalAmount float64        `json:"TotalAmount"`
}

type lineItemJSON struct {
	Line        string  `json:"Line"`
	Qty         string  `json:"Qty"`
	QuantityUOM string  `json:"Quantity_UOM"`
	Price       string  `json:"Price"`
	ItemID      string  `json:"Item_ID"`
	Seller      *string `json:"Seller"`
}

type normalizedLineJSON struct {
	Line        string  `json:"Line"`
	Qty         int64   `json:"Qty"`
	QuantityUOM string  `json:"Quantity_UOM"`
	Price       float64 `json:"Price"`
	ItemID      string  `json:"Item_ID"`
	Seller      *string `json:"Seller"`
	LineTotal   float64 `json:"LineTotal"`
}

// =============================================================================
// MARSHALLING
// =============================================================================

// MarshalDocument encodes doc together with totalAmount.
func MarshalDocument(doc types.Document, totalAmount float64) ([]byte, error) {
	out := documentJSON{
		PONumber:    nullable(doc.PONumber),
		Buyer:       nullable(doc.Buyer),
		Seller:      nullable(doc.Seller),
		Items:       make([]lineItemJSON, len(doc.Items)),
		TotalAmount: totalAmount,
	}
	for i, item := range doc.Items {
		out.Items[i] = lineItemJSON{
			Line:        item.LineNumber,
			Qty:         item.Qty,
			QuantityUOM: item.QuantityUOM,
			Price:       item.Price,
			ItemID:      item.ItemID,
			Seller:      nullable(item.Seller),
		}
	}

	data, err := json.MarshalIndent(out, "", indent)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return data, nil
}

// MarshalLines encodes normalized lines as a JSON array of records.
func MarshalLines(lines []types.NormalizedLine) ([]byte, error) {
	out := make([]normalizedLineJSON, len(lines))
	for i, l := range lines {
		out[i] = normalizedLineJSON{
			Line:        l.LineNumber,
			Qty:         l.Qty,
			QuantityUOM: l.QuantityUOM,
			Price:       l.Price,
			ItemID:      l.ItemID,
			Seller:      nullable(l.Seller),
			LineTotal:   l.LineTotal,
		}
	}

	data, err := json.MarshalIndent(out, "", indent)
	if err != nil {
		return nil, fmt.Errorf("failed to encode lines: %w", err)
	}
	return data, nil
}

// WriteDocument writes MarshalDocument output to path.
func WriteDocument(path string, doc types.Document, totalAmount float64) error {
	data, err := MarshalDocument(doc, totalAmount)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// WriteLines writes MarshalLines output to path.
func WriteLines(path string, lines []types.NormalizedLine) error {
	data, err := MarshalLines(lines)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
