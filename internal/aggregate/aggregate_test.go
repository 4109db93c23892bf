package aggregate

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/EDI850-converter/internal/types"
)

func line(item, seller string, qty int64, price float64) types.NormalizedLine {
	return types.NormalizedLine{ItemID: item, Seller: seller, Qty: qty, Price: price, LineTotal: float64(qty) * price}
}

func TestAggregateSingleLine(t *testing.T) {
	stats := Aggregate([]types.NormalizedLine{line("ITEM1", "Widgets", 10, 2.5)})

	assert.Equal(t, 25.0, stats.TotalSpend)
	assert.Equal(t, int64(10), stats.TotalQuantity)
	assert.Equal(t, 1, stats.LineCount)
	assert.Equal(t, map[string]int64{"ITEM1": 10}, stats.QuantityByItem)
	assert.Equal(t, map[string]float64{"Widgets": 100}, stats.SpendPercentBySeller)
}

func TestAggregateEmpty(t *testing.T) {
	stats := Aggregate(nil)

	assert.Equal(t, 0.0, stats.TotalSpend)
	assert.Equal(t, 0, stats.LineCount)
	assert.NotNil(t, stats.QuantityByItem)
	assert.Empty(t, stats.QuantityByItem)
	assert.NotNil(t, stats.SpendPercentBySeller)
	assert.Empty(t, stats.SpendPercentBySeller)
}

func TestAggregateZeroTotalReportsZeroPercent(t *testing.T) {
	stats := Aggregate([]types.NormalizedLine{
		line("A", "S1", 5, 0),
		line("B", "S2", 0, 3),
	})

	assert.Equal(t, 0.0, stats.TotalSpend)
	assert.Equal(t, map[string]float64{"S1": 0, "S2": 0}, stats.SpendPercentBySeller)
	assert.Equal(t, map[string]int64{"A": 5, "B": 0}, stats.QuantityByItem)
}

func TestAggregateGroupsByItemAndSeller(t *testing.T) {
	stats := Aggregate([]types.NormalizedLine{
		line("A", "S1", 2, 10),
		line("A", "S2", 3, 10),
		line("B", "S1", 1, 50),
		line("b", "", 1, 0),
	})

	assert.Equal(t, 100.0, stats.TotalSpend)
	assert.Equal(t, map[string]int64{"A": 5, "B": 1, "b": 1}, stats.QuantityByItem)
	assert.InDelta(t, 70.0, stats.SpendPercentBySeller["S1"], 1e-9)
	assert.InDelta(t, 30.0, stats.SpendPercentBySeller["S2"], 1e-9)
	assert.Equal(t, 0.0, stats.SpendPercentBySeller[""])
	assert.Equal(t, []string{"A", "B", "b"}, SortedItems(stats))
	assert.Equal(t, []string{"", "S1", "S2"}, SortedSellers(stats))
}

func TestAggregateSumLaw(t *testing.T) {
	rng := rand.New(rand.NewSource(850))
	sellers := []string{"", "Widgets", "Gadgets", "Sprockets"}

	for round := 0; round < 50; round++ {
		n := 1 + rng.Intn(30)
		lines := make([]types.NormalizedLine, n)
		var want float64
		for i := range lines {
			lines[i] = line(
				string(rune('A'+rng.Intn(6))),
				sellers[rng.Intn(len(sellers))],
				int64(1+rng.Intn(100)),
				float64(1+rng.Intn(10000))/100,
			)
			want += lines[i].LineTotal
		}

		stats := Aggregate(lines)
		require.InDelta(t, want, stats.TotalSpend, 1e-6)

		var pct float64
		for _, p := range stats.SpendPercentBySeller {
			pct += p
		}
		assert.InDelta(t, 100.0, pct, 1e-6)

		// key sets do not depend on input order
		shuffled := append([]types.NormalizedLine(nil), lines...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		again := Aggregate(shuffled)
		assert.Equal(t, SortedItems(stats), SortedItems(again))
		assert.Equal(t, SortedSellers(stats), SortedSellers(again))
		assert.Equal(t, stats.QuantityByItem, again.QuantityByItem)
	}
}

func TestSpendPercent(t *testing.T) {
	assert.Equal(t, map[string]float64{"x": 25, "y": 75}, SpendPercent(map[string]float64{"x": 1, "y": 3}, 4))
	assert.Equal(t, map[string]float64{"x": 0}, SpendPercent(map[string]float64{"x": 0}, 0))
}
