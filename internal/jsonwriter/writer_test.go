package jsonwriter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/EDI850-converter/internal/types"
)

func TestMarshalDocument(t *testing.T) {
	doc := types.Document{
		PONumber: "PO100",
		Buyer:    "Acme",
		Items: []types.LineItem{
			{LineNumber: "1", Qty: "10", QuantityUOM: "EA", Price: "2.50", ItemID: "ITEM1"},
		},
	}

	data, err := MarshalDocument(doc, 25)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, "PO100", got["PO_Number"])
	assert.Equal(t, "Acme", got["Buyer"])
	assert.Nil(t, got["Seller"])
	assert.Equal(t, 25.0, got["TotalAmount"])

	items := got["Items"].([]interface{})
	require.Len(t, items, 1)
	first := items[0].(map[string]interface{})
	assert.Equal(t, "1", first["Line"])
	assert.Equal(t, "10", first["Qty"])
	assert.Equal(t, "EA", first["Quantity_UOM"])
	assert.Equal(t, "2.50", first["Price"])
	assert.Equal(t, "ITEM1", first["Item_ID"])
	assert.Nil(t, first["Seller"])

	assert.Contains(t, string(data), "\n    \"PO_Number\"")
}

func TestMarshalDocumentEmptyItemsIsArray(t *testing.T) {
	data, err := MarshalDocument(types.Document{}, 0)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Items": []`)
}

func TestWriteLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "po_clean.json")
	lines := []types.NormalizedLine{
		{LineNumber: "1", ItemID: "ITEM1", QuantityUOM: "EA", Seller: "Widgets", Qty: 10, Price: 2.5, LineTotal: 25},
	}

	require.NoError(t, WriteLines(path, lines))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, 10.0, got[0]["Qty"])
	assert.Equal(t, 2.5, got[0]["Price"])
	assert.Equal(t, 25.0, got[0]["LineTotal"])
	assert.Equal(t, "Widgets", got[0]["Seller"])
}

func TestWriteDocumentBadPath(t *testing.T) {
	err := WriteDocument(filepath.Join(t.TempDir(), "missing", "po.json"), types.Document{}, 0)
	assert.Error(t, err)
}
