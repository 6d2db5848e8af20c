package listview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmkim/ordertrack/pkg/models"
)

func strPtr(s string) *string { return &s }

func testItems() []models.InventoryItem {
	return []models.InventoryItem{
		{ID: 1, ItemName: "Navy Fabric", Color: strPtr("navy"), Location: strPtr("A-1"), Visible: true},
		{ID: 2, ItemName: "White Button", Color: strPtr("white"), Location: strPtr("B-2"), Visible: true},
		{ID: 3, ItemName: "Navy Button", Color: strPtr("navy"), Location: strPtr("A-1"), Visible: false},
		{ID: 4, ItemName: "Zipper", Location: strPtr("B-2"), Visible: true},
	}
}

func TestFilter(t *testing.T) {
	items := testItems()

	t.Run("default query keeps active records only", func(t *testing.T) {
		got := Filter(items, Query{Visibility: VisibilityActive})
		require.Len(t, got, 3)
		for _, it := range got {
			assert.True(t, it.Visible)
		}
	})

	t.Run("search matches any field case-insensitively", func(t *testing.T) {
		got := Filter(items, Query{Search: "NAVY", Visibility: VisibilityAll})
		require.Len(t, got, 2)
		assert.Equal(t, models.ItemID(1), got[0].ID)
		assert.Equal(t, models.ItemID(3), got[1].ID)
	})

	t.Run("criteria combine with AND", func(t *testing.T) {
		got := Filter(items, Query{
			Search:         "navy",
			Dimension:      models.DimensionLocation,
			DimensionValue: "A-1",
			Visibility:     VisibilityActive,
		})
		require.Len(t, got, 1)
		assert.Equal(t, models.ItemID(1), got[0].ID)
	})

	t.Run("all sentinel disables the dimension filter", func(t *testing.T) {
		got := Filter(items, Query{
			Dimension:      models.DimensionLocation,
			DimensionValue: All,
			Visibility:     VisibilityActive,
		})
		assert.Len(t, got, 3)
	})

	t.Run("deleted view shows only soft-deleted records", func(t *testing.T) {
		got := Filter(items, Query{Visibility: VisibilityDeleted})
		require.Len(t, got, 1)
		assert.Equal(t, models.ItemID(3), got[0].ID)
	})

	t.Run("filtering is idempotent", func(t *testing.T) {
		q := Query{Search: "navy", Visibility: VisibilityAll}
		once := Filter(items, q)
		twice := Filter(once, q)
		assert.Equal(t, once, twice)
	})
}

func TestDimensionValues(t *testing.T) {
	values := DimensionValues(testItems(), models.DimensionLocation)
	assert.Equal(t, []string{"A-1", "B-2"}, values)
}

func TestStateResetsPage(t *testing.T) {
	s := NewState(models.DimensionLocation)
	s.Page = 3

	t.Run("search change", func(t *testing.T) {
		s.SetSearch("navy")
		assert.Zero(t, s.Page)
	})
	t.Run("dimension change", func(t *testing.T) {
		s.Page = 3
		s.SetDimensionValue("A-1")
		assert.Zero(t, s.Page)
	})
	t.Run("visibility change", func(t *testing.T) {
		s.Page = 3
		s.SetVisibility(VisibilityDeleted)
		assert.Zero(t, s.Page)
	})
	t.Run("page size change", func(t *testing.T) {
		s.Page = 3
		s.SetPerPage(20)
		assert.Zero(t, s.Page)
	})
}

func TestStateSetPage(t *testing.T) {
	s := NewState("")
	s.SetPage(2, 5)
	assert.Equal(t, 2, s.Page)

	// Out-of-range targets are ignored, not clamped.
	s.SetPage(7, 5)
	assert.Equal(t, 2, s.Page)
	s.SetPage(-1, 5)
	assert.Equal(t, 2, s.Page)
}
