// =============================================================================
// EDI 850 Converter - XML Writer Module
// =============================================================================
//
// This module renders the parsed purchase order as an XML document.
//
// XML STRUCTURE:
//
//   <?xml version="1.0" encoding="UTF-8"?>
//   <PurchaseOrder>
//     <PONumber>PO100</PONumber>
//     <Buyer>Acme</Buyer>
//     <Seller>Widgets</Seller>
//     <LineItems count="2">
//       <LineItem n="1">
//         <Line>1</Line>
//         <Qty>10</Qty>
//         <QuantityUOM>EA</QuantityUOM>
//         <Price>2.50</Price>
//         <ItemID>ITEM1</ItemID>
//         <Seller>Widgets</Seller>
//       </LineItem>
//       ...
//     </LineItems>
//     <TotalAmount>25.00</TotalAmount>
//   </PurchaseOrder>
//
// Line items keep their raw textual values. Unset header fields produce
// self-closing elements (<Buyer/>).
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"strconv"

	"github.com/ginjaninja78/EDI850-converter/internal/types"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for XML generation.
type GenerateOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// RootElement is the name of the document element.
	// Default: "PurchaseOrder"
	RootElement string

	// RootAttributes are additional attributes for the root element.
	// Example: {"xmlns": "http://example.com/po"}
	RootAttributes []xml.Attr

	// LineItemIndexAttribute is the attribute name for the line item index.
	// Default: "n"
	LineItemIndexAttribute string
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                 "  ",
		IncludeXMLDeclaration:  true,
		RootElement:            "PurchaseOrder",
		LineItemIndexAttribute: "n",
	}
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Generate renders doc with the default options.
func Generate(doc types.Document, totalAmount float64) ([]byte, error) {
	return GenerateWithOptions(doc, totalAmount, DefaultGenerateOptions())
}

// GenerateWithOptions renders doc as XML.
func GenerateWithOptions(doc types.Document, totalAmount float64, options GenerateOptions) ([]byte, error) {
	if options.RootElement == "" {
		return nil, fmt.Errorf("root element name is required")
	}

	root := buildDocument(doc, totalAmount, options)

	var buffer bytes.Buffer
	if options.IncludeXMLDeclaration {
		buffer.WriteString(xml.Header)
	}
	writeElement(&buffer, root, options.Indent, 0)

	return buffer.Bytes(), nil
}

// Write renders doc with the default options and writes it to path.
func Write(path string, doc types.Document, totalAmount float64) error {
	return WriteWithOptions(path, doc, totalAmount, DefaultGenerateOptions())
}

// WriteWithOptions renders doc and writes it to path.
func WriteWithOptions(path string, doc types.Document, totalAmount float64, options GenerateOptions) error {
	data, err := GenerateWithOptions(doc, totalAmount, options)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// =============================================================================
// XML DOCUMENT BUILDING
// =============================================================================

// XMLElement represents a generic XML element.
type XMLElement struct {
	XMLName    xml.Name
	Attributes []xml.Attr
	Value      string
	Children   []XMLElement
}

// buildDocument constructs the XML element tree.
func buildDocument(doc types.Document, totalAmount float64, options GenerateOptions) XMLElement {
	root := XMLElement{
		XMLName:    xml.Name{Local: options.RootElement},
		Attributes: options.RootAttributes,
	}

	items := XMLElement{
		XMLName: xml.Name{Local: "LineItems"},
		Attributes: []xml.Attr{
			{Name: xml.Name{Local: "count"}, Value: strconv.Itoa(len(doc.Items))},
		},
	}
	for i, item := range doc.Items {
		items.Children = append(items.Children, buildLineItemElement(item, i+1, options))
	}

	root.Children = []XMLElement{
		createSimpleElement("PONumber", doc.PONumber),
		createSimpleElement("Buyer", doc.Buyer),
		createSimpleElement("Seller", doc.Seller),
		items,
		createSimpleElement("TotalAmount", strconv.FormatFloat(totalAmount, 'f', 2, 64)),
	}

	return root
}

// buildLineItemElement constructs one <LineItem n="..."> element.
func buildLineItemElement(item types.LineItem, index int, options GenerateOptions) XMLElement {
	return XMLElement{
		XMLName: xml.Name{Local: "LineItem"},
		Attributes: []xml.Attr{
			{Name: xml.Name{Local: options.LineItemIndexAttribute}, Value: strconv.Itoa(index)},
		},
		Children: []XMLElement{
			createSimpleElement("Line", item.LineNumber),
			createSimpleElement("Qty", item.Qty),
			createSimpleElement("QuantityUOM", item.QuantityUOM),
			createSimpleElement("Price", item.Price),
			createSimpleElement("ItemID", item.ItemID),
			createSimpleElement("Seller", item.Seller),
		},
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// createSimpleElement creates a simple XML element with a text value.
func createSimpleElement(name, value string) XMLElement {
	return XMLElement{
		XMLName: xml.Name{Local: name},
		Value:   value,
	}
}

// writeElement writes an XML element to the buffer with indentation.
func writeElement(buffer *bytes.Buffer, element XMLElement, indent string, level int) {
	writeIndent(buffer, indent, level)

	buffer.WriteString("<")
	buffer.WriteString(element.XMLName.Local)
	for _, attr := range element.Attributes {
		fmt.Fprintf(buffer, " %s=\"%s\"", attr.Name.Local, escapeXML(attr.Value))
	}

	if len(element.Children) == 0 && element.Value == "" {
		buffer.WriteString("/>\n")
		return
	}

	buffer.WriteString(">")

	if len(element.Children) == 0 {
		buffer.WriteString(escapeXML(element.Value))
	} else {
		buffer.WriteString("\n")
		for _, child := range element.Children {
			writeElement(buffer, child, indent, level+1)
		}
		writeIndent(buffer, indent, level)
	}

	buffer.WriteString("</")
	buffer.WriteString(element.XMLName.Local)
	buffer.WriteString(">\n")
}

func writeIndent(buffer *bytes.Buffer, indent string, level int) {
	for i := 0; i < level; i++ {
		buffer.WriteString(indent)
	}
}

// escapeXML escapes text and attribute values.
func escapeXML(s string) string {
	var buffer bytes.Buffer
	// EscapeText only fails when the writer fails; bytes.Buffer never does.
	_ = xml.EscapeText(&buffer, []byte(s))
	return buffer.String()
}
