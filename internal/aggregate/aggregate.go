// Package aggregate computes spend statistics over normalized lines.
//
// When total spend is zero (including when there are no lines) no division
// is performed: every seller present among the lines is reported at 0%, and
// an empty input yields an empty map.
package aggregate

import (
	"sort"

	"github.com/ginjaninja78/EDI850-converter/internal/types"
)

// Aggregate returns the statistics for lines.
func Aggregate(lines []types.NormalizedLine) types.Statistics {
	stats := types.Statistics{
		LineCount:            len(lines),
		QuantityByItem:       make(map[string]int64),
		SpendPercentBySeller: make(map[string]float64),
	}

	spendBySeller := make(map[string]float64)
	for _, l := range lines {
		stats.TotalSpend += l.LineTotal
		stats.TotalQuantity += l.Qty
		stats.QuantityByItem[l.ItemID] += l.Qty
		spendBySeller[l.Seller] += l.LineTotal
	}

	stats.SpendPercentBySeller = SpendPercent(spendBySeller, stats.TotalSpend)
	return stats
}

// SpendPercent converts per-seller spend into percentages of total.
// A zero total maps every seller to 0.
func SpendPercent(spendBySeller map[string]float64, total float64) map[string]float64 {
	out := make(map[string]float64, len(spendBySeller))
	for seller, spend := range spendBySeller {
		if total == 0 {
			out[seller] = 0
			continue
		}
		out[seller] = spend * 100 / total
	}
	return out
}

// SortedItems returns the keys of QuantityByItem in ascending order.
func SortedItems(stats types.Statistics) []string {
	return sortedKeys(stats.QuantityByItem)
}

// SortedSellers returns the keys of SpendPercentBySeller in ascending order.
func SortedSellers(stats types.Statistics) []string {
	return sortedKeys(stats.SpendPercentBySeller)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
