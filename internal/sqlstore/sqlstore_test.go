package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/EDI850-converter/internal/aggregate"
	"github.com/ginjaninja78/EDI850-converter/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(context.Background(), filepath.Join(t.TempDir(), "po_data.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleLines() []types.NormalizedLine {
	return []types.NormalizedLine{
		{LineNumber: "1", ItemID: "ITEM1", QuantityUOM: "EA", Seller: "Widgets", Qty: 10, Price: 2.5, LineTotal: 25},
		{LineNumber: "2", ItemID: "ITEM2", QuantityUOM: "EA", Seller: "Gadgets", Qty: 4, Price: 12.5, LineTotal: 50},
		{LineNumber: "3", ItemID: "ITEM1", QuantityUOM: "EA", Seller: "Gadgets", Qty: 1, Price: 25, LineTotal: 25},
	}
}

func TestSchemaCreationIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		st, err := Open(ctx, path)
		require.NoError(t, err, "open iteration %d", i)
		require.NoError(t, st.Close())
	}
}

func TestStatisticsMatchAggregator(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	lines := sampleLines()

	require.NoError(t, st.Load(ctx, lines))

	got, err := st.Statistics(ctx)
	require.NoError(t, err)
	want := aggregate.Aggregate(lines)

	assert.InDelta(t, want.TotalSpend, got.TotalSpend, 1e-9)
	assert.Equal(t, want.TotalQuantity, got.TotalQuantity)
	assert.Equal(t, want.LineCount, got.LineCount)
	assert.Equal(t, want.QuantityByItem, got.QuantityByItem)
	require.Len(t, got.SpendPercentBySeller, len(want.SpendPercentBySeller))
	for seller, pct := range want.SpendPercentBySeller {
		assert.InDelta(t, pct, got.SpendPercentBySeller[seller], 1e-9, seller)
	}
	assert.InDelta(t, 75.0, got.SpendPercentBySeller["Gadgets"], 1e-9)
}

func TestLoadReplacesPreviousRows(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	require.NoError(t, st.Load(ctx, sampleLines()))
	require.NoError(t, st.Load(ctx, sampleLines()[:1]))

	total, err := st.TotalSpend(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25.0, total)

	byItem, err := st.QuantityByItem(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"ITEM1": 10}, byItem)
}

func TestEmptyTable(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	require.NoError(t, st.Load(ctx, nil))

	stats, err := st.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.0, stats.TotalSpend)
	assert.Equal(t, 0, stats.LineCount)
	assert.Empty(t, stats.QuantityByItem)
	assert.Empty(t, stats.SpendPercentBySeller)
}

func TestZeroTotalSpendPercent(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	require.NoError(t, st.Load(ctx, []types.NormalizedLine{
		{LineNumber: "1", ItemID: "FREE", Seller: "Widgets", Qty: 3, Price: 0, LineTotal: 0},
	}))

	pct, err := st.SpendPercentBySeller(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"Widgets": 0}, pct)
}

func TestInMemory(t *testing.T) {
	ctx := context.Background()
	st, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.Load(ctx, sampleLines()))
	total, err := st.TotalSpend(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100.0, total)
}
