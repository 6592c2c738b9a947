package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowsToOrders(t *testing.T) {
	rows := []map[string]string{
		{"Product": "Rakza 9 Black 2.0mm", "Article": "12345", "Quantity": "2"},
		{"Product": "Tenergy 05", "Article": "", "Quantity": "1"},
		{"Product": "", "Article": "", "Quantity": "3"}, // no name, no code
		{"Product": "Viscaria", "Article": "30001", "Quantity": ""},
	}

	orders := RowsToOrders(rows, "xlsx")
	require.Len(t, orders, 2)

	assert.Equal(t, "Rakza 9 Black 2.0mm", orders[0].Name)
	assert.Equal(t, "12345", orders[0].Code)
	assert.Equal(t, "2", orders[0].Quantity)
	assert.Equal(t, 2, orders[0].RowNumber, "first data row sits under the header")
	assert.Equal(t, "xlsx", orders[0].Source)

	assert.Equal(t, "Tenergy 05", orders[1].Name)
	assert.Equal(t, 3, orders[1].RowNumber)
}

func TestRowsToOrders_Empty(t *testing.T) {
	assert.Nil(t, RowsToOrders(nil, "csv"))
}

func TestParseJSON(t *testing.T) {
	t.Run("BareArray", func(t *testing.T) {
		doc := `[
			{"product": "Rakza 9 Black 2.0mm", "article": "12345", "quantity": 2},
			{"name": "Tenergy 05", "qty": "3"},
			{"product_name": "Viscaria", "sku": "30001", "amount": 1.5}
		]`
		orders, err := ParseJSON(strings.NewReader(doc))
		require.NoError(t, err)
		require.Len(t, orders, 3)

		assert.Equal(t, "Rakza 9 Black 2.0mm", orders[0].Name)
		assert.Equal(t, "12345", orders[0].Code)
		assert.Equal(t, "2", orders[0].Quantity)
		assert.Equal(t, "json", orders[0].Source)

		assert.Equal(t, "Tenergy 05", orders[1].Name)
		assert.Equal(t, "3", orders[1].Quantity, "string quantities pass through")

		assert.Equal(t, "30001", orders[2].Code)
		assert.Equal(t, "1.5", orders[2].Quantity)
	})

	t.Run("ItemsWrapper", func(t *testing.T) {
		doc := `{"items": [{"product": "Rakza 9 Black", "quantity": 2}]}`
		orders, err := ParseJSON(strings.NewReader(doc))
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, "Rakza 9 Black", orders[0].Name)
	})

	t.Run("OrdersWrapper", func(t *testing.T) {
		doc := `{"orders": [{"product": "Tenergy 05", "qty": 1}]}`
		orders, err := ParseJSON(strings.NewReader(doc))
		require.NoError(t, err)
		require.Len(t, orders, 1)
	})

	t.Run("MissingQuantitySkipped", func(t *testing.T) {
		doc := `[{"product": "Rakza 9 Black"}]`
		orders, err := ParseJSON(strings.NewReader(doc))
		require.NoError(t, err)
		assert.Empty(t, orders)
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := ParseJSON(strings.NewReader("not json"))
		assert.Error(t, err)
	})
}

func TestParseText(t *testing.T) {
	doc := strings.Join([]string{
		"# order 2026-08-14",
		"12345 - Rakza 9 Black, 2",
		"",
		"Tenergy 05, 1",
		"gibberish without quantity",
	}, "\n")

	orders, err := ParseText(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, "12345", orders[0].Code)
	assert.Equal(t, 2, orders[0].RowNumber, "row numbers count every input line")
	assert.Equal(t, "Tenergy 05", orders[1].Name)
	assert.Equal(t, 4, orders[1].RowNumber)
}
