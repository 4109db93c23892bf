// =============================================================================
// EDI 850 Converter - Document Builder
// =============================================================================
//
// The builder folds the segment sequence into a purchase order:
//
//   BEG  -> PONumber          (element 3)
//   N1   -> Buyer / Seller    (qualifier BY / ST in element 1, name in 2)
//   PO1  -> one LineItem      (elements 1-4, ItemID = last element)
//   *    -> skipped
//
// Header segments are last-write-wins. A PO1 line captures the seller known
// at the moment it is read; a later N1*ST does not update earlier lines.
//
// =============================================================================

package edi

import (
	"github.com/ginjaninja78/EDI850-converter/internal/types"
)

// Party qualifiers recognized in N1 segments.
const (
	QualifierBuyer  = "BY"
	QualifierSeller = "ST"
)

// BuildStats counts what the builder saw. It is informational only.
type BuildStats struct {
	Segments     int
	Unrecognized int
	IgnoredN1    int
}

// Build assembles a Document from segments.
// A BEG, N1 or PO1 segment with too few elements aborts the build with a
// *MalformedSegmentError.
func Build(segments []Segment) (types.Document, error) {
	doc, _, err := BuildWithStats(segments)
	return doc, err
}

// BuildWithStats is Build plus counters for skipped segments.
func BuildWithStats(segments []Segment) (types.Document, BuildStats, error) {
	doc := types.Document{Items: []types.LineItem{}}
	stats := BuildStats{Segments: len(segments)}

	for _, seg := range segments {
		next, err := apply(doc, seg)
		if err != nil {
			return types.Document{}, stats, err
		}

		switch {
		case seg.Kind == KindUnrecognized:
			stats.Unrecognized++
		case seg.Kind == KindN1 && !isKnownQualifier(seg.Element(1)):
			stats.IgnoredN1++
		}

		doc = next
	}

	return doc, stats, nil
}

// apply returns the document that results from reading one segment.
// doc is treated as a value: header changes are made on the copy, and Items
// only ever grows, so earlier states are never observed again.
func apply(doc types.Document, seg Segment) (types.Document, error) {
	if want, ok := minElements[seg.Kind]; ok && len(seg.Elements) < want {
		return doc, &MalformedSegmentError{
			Tag:   seg.Tag(),
			Index: seg.Index,
			Got:   len(seg.Elements),
			Want:  want,
		}
	}

	switch seg.Kind {
	case KindBEG:
		doc.PONumber = seg.Element(3)

	case KindN1:
		switch seg.Element(1) {
		case QualifierBuyer:
			doc.Buyer = seg.Element(2)
		case QualifierSeller:
			doc.Seller = seg.Element(2)
		}

	case KindPO1:
		doc.Items = append(doc.Items, types.LineItem{
			LineNumber:  seg.Element(1),
			Qty:         seg.Element(2),
			QuantityUOM: seg.Element(3),
			Price:       seg.Element(4),
			ItemID:      seg.Last(),
			Seller:      doc.Seller,
		})
	}

	return doc, nil
}

func isKnownQualifier(q string) bool {
	return q == QualifierBuyer || q == QualifierSeller
}

// Parse tokenizes and builds a document from raw text.
func Parse(text string) (types.Document, error) {
	return Build(Tokenize(text))
}
