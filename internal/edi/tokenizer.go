// =============================================================================
// EDI 850 Converter - Segment Tokenizer
// =============================================================================
//
// The tokenizer turns raw document text into segments and elements:
//
//   BEG*00*SA*PO100**20250101~N1*BY*Acme~
//   └── segment ──────────────┘└ seg ──┘
//
// Segments end with '~' and elements are separated by '*'. There is no
// escape character, so a literal delimiter inside a value cannot be told
// apart from a separator.
//
// =============================================================================

package edi

import "strings"

const (
	// SegmentTerminator ends every segment.
	SegmentTerminator = "~"

	// ElementSeparator separates the elements of a segment.
	ElementSeparator = "*"
)

// =============================================================================
// SEGMENT KINDS
// =============================================================================

// SegmentKind identifies the segments the builder understands.
type SegmentKind int

const (
	// KindUnrecognized is any tag the builder skips.
	KindUnrecognized SegmentKind = iota

	// KindBEG is the beginning segment carrying the PO number.
	KindBEG

	// KindN1 is a named party (buyer or seller).
	KindN1

	// KindPO1 is a purchase-order line item.
	KindPO1
)

// minElements is the element count (tag included) each kind requires.
var minElements = map[SegmentKind]int{
	KindBEG: 4,
	KindN1:  3,
	KindPO1: 5,
}

// String returns the segment tag for known kinds.
func (k SegmentKind) String() string {
	switch k {
	case KindBEG:
		return "BEG"
	case KindN1:
		return "N1"
	case KindPO1:
		return "PO1"
	default:
		return "UNRECOGNIZED"
	}
}

// KindOf resolves a tag to its kind. Matching is exact.
func KindOf(tag string) SegmentKind {
	switch tag {
	case "BEG":
		return KindBEG
	case "N1":
		return KindN1
	case "PO1":
		return KindPO1
	default:
		return KindUnrecognized
	}
}

// =============================================================================
// SEGMENT
// =============================================================================

// Segment is one '~'-terminated unit of the document.
type Segment struct {
	// Index is the position of the segment among the non-empty segments.
	Index int

	// Kind is resolved from the tag when the segment is tokenized.
	Kind SegmentKind

	// Elements holds the '*'-separated fields. Elements[0] is the tag.
	Elements []string
}

// Tag returns the first element of the segment.
func (s Segment) Tag() string {
	if len(s.Elements) == 0 {
		return ""
	}
	return s.Elements[0]
}

// Element returns the element at i, or "" when the segment is shorter.
func (s Segment) Element(i int) string {
	if i < 0 || i >= len(s.Elements) {
		return ""
	}
	return s.Elements[i]
}

// Last returns the final element of the segment.
func (s Segment) Last() string {
	return s.Element(len(s.Elements) - 1)
}

// =============================================================================
// TOKENIZE
// =============================================================================

// Tokenize splits text into segments in document order.
// Whitespace around each segment is removed and empty segments are dropped.
// It never fails; structurally short segments are reported by Build.
func Tokenize(text string) []Segment {
	raw := strings.Split(text, SegmentTerminator)
	segments := make([]Segment, 0, len(raw))

	for _, part := range raw {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		elements := strings.Split(part, ElementSeparator)
		segments = append(segments, Segment{
			Index:    len(segments),
			Kind:     KindOf(elements[0]),
			Elements: elements,
		})
	}

	return segments
}

// Join is the inverse of Tokenize for well-formed input: elements are joined
// with '*' and each segment is terminated with '~'.
func Join(segments [][]string) string {
	var b strings.Builder
	for _, elements := range segments {
		b.WriteString(strings.Join(elements, ElementSeparator))
		b.WriteString(SegmentTerminator)
	}
	return b.String()
}
