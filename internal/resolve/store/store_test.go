package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resolver-service/internal/resolve/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "resolver.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_Products(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.AddProduct(model.Product{
		Code: "12345", Name: "Rakza 9 Black 2.0mm", Category: "rubber",
		Available: true, Synonyms: []string{"R9B"},
	}))
	require.NoError(t, s.AddProduct(model.Product{
		Code: "20001", Name: "Tenergy 05 Red 2.1mm", Available: true,
	}))

	t.Run("DuplicateCode", func(t *testing.T) {
		err := s.AddProduct(model.Product{Code: "12345", Name: "Other"})
		assert.Error(t, err)
	})

	t.Run("GetByCode", func(t *testing.T) {
		p, err := s.GetProductByCode("12345")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "Rakza 9 Black 2.0mm", p.Name)
		assert.Equal(t, "rubber", p.Category)
		assert.True(t, p.Available)
		assert.Equal(t, []string{"R9B"}, p.Synonyms)
	})

	t.Run("GetMissing", func(t *testing.T) {
		p, err := s.GetProductByCode("99999")
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("List", func(t *testing.T) {
		products, err := s.ListProducts()
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "Rakza 9 Black 2.0mm", products[0].Name, "ordered by name")
	})

	t.Run("SynonymRecords", func(t *testing.T) {
		recs, err := s.SynonymRecords()
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, model.SynonymRecord{
			Synonym: "R9B", Code: "12345", Name: "Rakza 9 Black 2.0mm", Score: 100,
		}, recs[0])
	})
}

func TestStore_SaveSynonyms(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.AddProduct(model.Product{
		Code: "12345", Name: "Rakza 9 Black 2.0mm", Available: true, Synonyms: []string{"R9B"},
	}))

	require.NoError(t, s.SaveSynonyms("12345", []string{"R9B", "rakza 9 blk"}))

	p, err := s.GetProductByCode("12345")
	require.NoError(t, err)
	assert.Equal(t, []string{"R9B", "rakza 9 blk"}, p.Synonyms)

	t.Run("VersionSnapshot", func(t *testing.T) {
		versions, err := s.VersionHistory("12345")
		require.NoError(t, err)
		require.Len(t, versions, 1)
		assert.Equal(t, []string{"R9B"}, versions[0].Synonyms, "snapshot holds the prior state")
		assert.Equal(t, "synonym update", versions[0].ChangeReason)
	})

	t.Run("UnknownCode", func(t *testing.T) {
		err := s.SaveSynonyms("99999", []string{"x"})
		assert.Error(t, err)
	})
}

func TestStore_SetAvailability(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.AddProduct(model.Product{
		Code: "12345", Name: "Rakza 9 Black 2.0mm", Available: true,
	}))

	require.NoError(t, s.SetAvailability("12345", false, true, "discontinued by supplier", "ops"))

	p, err := s.GetProductByCode("12345")
	require.NoError(t, err)
	assert.False(t, p.Available)
	assert.True(t, p.Discontinued)

	versions, err := s.VersionHistory("12345")
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.True(t, versions[0].Available, "snapshot holds the prior state")

	err = s.SetAvailability("99999", true, false, "", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_UpdateProduct(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.AddProduct(model.Product{
		Code: "12345", Name: "Rakza 9 Black 2.0mm", Category: "rubber",
		Available: true, Synonyms: []string{"R9B"},
	}))

	name := "Rakza 9 Black 2.1mm"
	require.NoError(t, s.UpdateProduct("12345", ProductUpdate{
		Name:         &name,
		ChangeReason: "thickness corrected",
		ChangedBy:    "ops",
	}))

	p, err := s.GetProductByCode("12345")
	require.NoError(t, err)
	assert.Equal(t, "Rakza 9 Black 2.1mm", p.Name)
	assert.Equal(t, "rubber", p.Category, "absent fields stay unchanged")
	assert.Equal(t, []string{"R9B"}, p.Synonyms)
	assert.True(t, p.Available)

	t.Run("VersionSnapshot", func(t *testing.T) {
		versions, err := s.VersionHistory("12345")
		require.NoError(t, err)
		require.Len(t, versions, 1)
		assert.Equal(t, "Rakza 9 Black 2.0mm", versions[0].Name, "snapshot holds the prior state")
		assert.Equal(t, "thickness corrected", versions[0].ChangeReason)
		assert.Equal(t, "ops", versions[0].ChangedBy)
	})

	t.Run("UnknownCode", func(t *testing.T) {
		err := s.UpdateProduct("99999", ProductUpdate{Name: &name})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_Changelog(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.AddProduct(model.Product{Code: "12345", Name: "Rakza 9 Black 2.0mm", Available: true}))
	require.NoError(t, s.AddProduct(model.Product{Code: "20001", Name: "Tenergy 05 Red 2.1mm", Available: true}))

	require.NoError(t, s.SaveSynonyms("12345", []string{"R9B"}))
	require.NoError(t, s.SetAvailability("20001", false, true, "discontinued", "ops"))

	changes, err := s.Changelog(0, 0)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, "20001", changes[0].Code, "newest change first")
	assert.Equal(t, "discontinued", changes[0].ChangeReason)
	assert.Equal(t, "12345", changes[1].Code)
	assert.Equal(t, "synonym update", changes[1].ChangeReason)

	t.Run("Pagination", func(t *testing.T) {
		page, err := s.Changelog(1, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "12345", page[0].Code)
	})
}

func TestStore_Orders(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.AddProduct(model.Product{
		Code: "12345", Name: "Rakza 9 Black 2.0mm", Available: true,
	}))
	require.NoError(t, s.AddProduct(model.Product{
		Code: "20001", Name: "Tenergy 05 Red 2.1mm", Available: true,
	}))

	stats := model.OrderStatistics{TotalItems: 2, MatchedItems: 1, UnmatchedItems: 1}
	items := []model.ProcessedOrder{
		{
			OriginalName: "rakza 9 blk", MatchedCode: "12345", MatchedName: "Rakza 9 Black 2.0mm",
			Quantity: 2, MatchScore: 92, MatchMethod: model.MethodFuzzyNameTokenEnhanced,
			Status: model.OrderMatched,
		},
		{OriginalName: "???", Status: model.OrderUnmatched},
	}

	orderID, err := s.SaveOrder("CUST-7", stats, items, "order_CUST-7.xlsx")
	require.NoError(t, err)
	require.Greater(t, orderID, int64(0))

	t.Run("History", func(t *testing.T) {
		history, err := s.OrderHistory(0, 0)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, "CUST-7", history[0].CustomerID)
		assert.Equal(t, 2, history[0].TotalItems)
		assert.Equal(t, "order_CUST-7.xlsx", history[0].OutputFile)
	})

	t.Run("Details", func(t *testing.T) {
		summary, details, err := s.OrderDetails(orderID)
		require.NoError(t, err)
		require.NotNil(t, summary)
		require.Len(t, details, 2)
		assert.Equal(t, "rakza 9 blk", details[0].OriginalName)
		assert.Equal(t, "12345", details[0].MatchedCode)
		assert.Equal(t, model.OrderMatched, details[0].Status)
		assert.Equal(t, model.OrderUnmatched, details[1].Status)
	})

	t.Run("DetailsMissing", func(t *testing.T) {
		summary, details, err := s.OrderDetails(9999)
		require.NoError(t, err)
		assert.Nil(t, summary)
		assert.Nil(t, details)
	})

	t.Run("ProductStats", func(t *testing.T) {
		// second order for the same product bumps its counter
		_, err := s.SaveOrder("CUST-8", model.OrderStatistics{TotalItems: 1, MatchedItems: 1}, []model.ProcessedOrder{
			{OriginalName: "rakza", MatchedCode: "12345", MatchedName: "Rakza 9 Black 2.0mm",
				Quantity: 1, MatchScore: 100, MatchMethod: model.MethodExactName, Status: model.OrderMatched},
		}, "")
		require.NoError(t, err)

		most, never, err := s.ProductStats()
		require.NoError(t, err)
		require.Len(t, most, 1)
		assert.Equal(t, "12345", most[0].Code)
		assert.Equal(t, 2, most[0].MatchCount)
		require.Len(t, never, 1)
		assert.Equal(t, "20001", never[0].Code)
	})
}
