// =============================================================================
// EDI 850 Converter - Line Normalizer
// =============================================================================
//
// The normalizer turns raw line items into numeric lines:
//
//   Qty   -> int64   (base 10)
//   Price -> float64 (finite)
//   LineTotal = Qty * Price
//
// A line whose quantity or price does not parse is dropped, not defaulted.
// Each drop is returned as a *DropError so callers can count and log it.
//
// =============================================================================

package normalize

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ginjaninja78/EDI850-converter/internal/types"
)

// ErrCoercion is matched by every *DropError.
var ErrCoercion = errors.New("numeric coercion failed")

// DropReason says why a line was dropped.
type DropReason string

const (
	ReasonEmptyQty     DropReason = "empty_qty"
	ReasonInvalidQty   DropReason = "invalid_qty"
	ReasonEmptyPrice   DropReason = "empty_price"
	ReasonInvalidPrice DropReason = "invalid_price"

	// ReasonOverflow marks a line whose Qty*Price is not a finite number.
	ReasonOverflow DropReason = "overflow"
)

// DropError describes a line that did not normalize.
type DropError struct {
	// Index is the position of the item in the input slice.
	Index int

	// Item is the raw line that was dropped.
	Item types.LineItem

	Reason DropReason

	// Err is the underlying parse error, if any.
	Err error
}

func (e *DropError) Error() string {
	msg := fmt.Sprintf("line %q (item %q): %s", e.Item.LineNumber, e.Item.ItemID, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DropError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrCoercion) succeed.
func (e *DropError) Is(target error) bool { return target == ErrCoercion }

// Normalize converts every item that parses and reports the rest.
// Output order follows input order.
func Normalize(items []types.LineItem) ([]types.NormalizedLine, []*DropError) {
	lines := make([]types.NormalizedLine, 0, len(items))
	var drops []*DropError

	for i, item := range items {
		line, err := NormalizeLine(item)
		if err != nil {
			var de *DropError
			if errors.As(err, &de) {
				de.Index = i
				drops = append(drops, de)
			}
			continue
		}
		lines = append(lines, line)
	}

	return lines, drops
}

// NormalizeLine converts a single item. On failure the error is a *DropError.
func NormalizeLine(item types.LineItem) (types.NormalizedLine, error) {
	qty, reason, err := parseQty(item.Qty)
	if reason != "" {
		return types.NormalizedLine{}, &DropError{Item: item, Reason: reason, Err: err}
	}

	price, reason, err := parsePrice(item.Price)
	if reason != "" {
		return types.NormalizedLine{}, &DropError{Item: item, Reason: reason, Err: err}
	}

	total := float64(qty) * price
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return types.NormalizedLine{}, &DropError{
			Item:   item,
			Reason: ReasonOverflow,
			Err:    fmt.Errorf("line total %d * %g is not finite", qty, price),
		}
	}

	return types.NormalizedLine{
		LineNumber:  item.LineNumber,
		ItemID:      item.ItemID,
		QuantityUOM: item.QuantityUOM,
		Seller:      item.Seller,
		Qty:         qty,
		Price:       price,
		LineTotal:   total,
	}, nil
}

func parseQty(raw string) (int64, DropReason, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, ReasonEmptyQty, nil
	}
	qty, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ReasonInvalidQty, err
	}
	return qty, "", nil
}

func parsePrice(raw string) (float64, DropReason, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, ReasonEmptyPrice, nil
	}
	price, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ReasonInvalidPrice, err
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, ReasonInvalidPrice, fmt.Errorf("non-finite price %q", s)
	}
	return price, "", nil
}

// CountByReason tallies drops per reason.
func CountByReason(drops []*DropError) map[DropReason]int {
	counts := make(map[DropReason]int, len(drops))
	for _, d := range drops {
		counts[d.Reason]++
	}
	return counts
}
