package edi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/EDI850-converter/internal/types"
)

const scenarioA = "BEG*00*SA*PO100**20250101~N1*BY*Acme~N1*ST*Widgets~PO1*1*10*EA*2.50*ITEM1~"

func TestBuildScenarioA(t *testing.T) {
	doc, err := Parse(scenarioA)
	require.NoError(t, err)

	assert.Equal(t, "PO100", doc.PONumber)
	assert.Equal(t, "Acme", doc.Buyer)
	assert.Equal(t, "Widgets", doc.Seller)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, types.LineItem{
		LineNumber:  "1",
		Qty:         "10",
		QuantityUOM: "EA",
		Price:       "2.50",
		ItemID:      "ITEM1",
		Seller:      "Widgets",
	}, doc.Items[0])
}

func TestBuildEmpty(t *testing.T) {
	doc, err := Build(nil)
	require.NoError(t, err)
	assert.False(t, doc.HasPONumber())
	assert.False(t, doc.HasBuyer())
	assert.False(t, doc.HasSeller())
	assert.NotNil(t, doc.Items)
	assert.Empty(t, doc.Items)
}

func TestBuildIsIdempotent(t *testing.T) {
	segments := Tokenize(scenarioA + "N1*ST*Other~PO1*2*5*CS*1.00*BP*ITEM2~")

	first, err := Build(segments)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Build(segments)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestBuildLastWriteWins(t *testing.T) {
	doc, err := Parse("BEG*00*SA*FIRST~BEG*00*SA*SECOND~N1*BY*A~N1*BY*B~N1*ST*S1~N1*ST*S2~")
	require.NoError(t, err)

	assert.Equal(t, "SECOND", doc.PONumber)
	assert.Equal(t, "B", doc.Buyer)
	assert.Equal(t, "S2", doc.Seller)
}

func TestBuildSellerCapturedAtAppendTime(t *testing.T) {
	doc, err := Parse("PO1*1*1*EA*1*EARLY~N1*ST*Widgets~PO1*2*1*EA*1*LATE~N1*ST*Gadgets~")
	require.NoError(t, err)

	require.Len(t, doc.Items, 2)
	assert.Equal(t, "", doc.Items[0].Seller)
	assert.Equal(t, "Widgets", doc.Items[1].Seller)
	assert.Equal(t, "Gadgets", doc.Seller)
}

func TestBuildItemIDIsLastElement(t *testing.T) {
	doc, err := Parse("PO1*1*10*EA*2.50*VP*VEND-1*BP*BUYER-9~PO1*2*3*EA*1.00~")
	require.NoError(t, err)

	require.Len(t, doc.Items, 2)
	assert.Equal(t, "BUYER-9", doc.Items[0].ItemID)
	// with exactly five elements the last element is the price
	assert.Equal(t, "1.00", doc.Items[1].ItemID)
}

func TestBuildIgnoresUnknownSegmentsAndQualifiers(t *testing.T) {
	doc, stats, err := BuildWithStats(Tokenize("ST*850*0001~N1*BT*Billing~REF*DP*1~" + scenarioA + "CTT*1~SE*6*0001~"))
	require.NoError(t, err)

	assert.Equal(t, "PO100", doc.PONumber)
	assert.Equal(t, "Acme", doc.Buyer)
	assert.Len(t, doc.Items, 1)
	assert.Equal(t, 4, stats.Unrecognized)
	assert.Equal(t, 1, stats.IgnoredN1)
	assert.Equal(t, 9, stats.Segments)
}

func TestBuildMalformedSegments(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		tag   string
		index int
		got   int
		want  int
	}{
		{"short BEG", "BEG*00*SA~", "BEG", 0, 3, 4},
		{"short N1", "BEG*00*SA*PO1~N1*BY~", "N1", 1, 2, 3},
		{"short PO1", "N1*ST*X~PO1*1*10*EA~", "PO1", 1, 4, 5},
		{"bare PO1", "PO1~", "PO1", 0, 1, 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedSegment))

			var mse *MalformedSegmentError
			require.True(t, errors.As(err, &mse))
			assert.Equal(t, tc.tag, mse.Tag)
			assert.Equal(t, tc.index, mse.Index)
			assert.Equal(t, tc.got, mse.Got)
			assert.Equal(t, tc.want, mse.Want)
			assert.Contains(t, err.Error(), tc.tag)
		})
	}
}

func TestBuildShortUnknownSegmentIsNotAnError(t *testing.T) {
	doc, err := Parse("XX~" + scenarioA)
	require.NoError(t, err)
	assert.Equal(t, "PO100", doc.PONumber)
}
