package ordertrack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmkim/ordertrack/pkg/models"
)

func TestSuggestItems(t *testing.T) {
	navy, white := "navy", "white"
	items := []models.InventoryItem{
		{ID: 1, ItemName: "Navy Fabric", Color: &navy, Visible: true},
		{ID: 2, ItemName: "Navy Button", Color: &navy, Visible: false},
		{ID: 3, ItemName: "White Fabric", Color: &white, Visible: true},
		{ID: 4, ItemName: "Plain Thread", Visible: true},
	}

	t.Run("matches name substring case-insensitively", func(t *testing.T) {
		got := SuggestItems(items, "fab", 0)
		require.Len(t, got, 2)
		assert.Equal(t, Suggestion{ItemCode: "Navy Fabric", ColorName: "navy"}, got[0])
		assert.Equal(t, Suggestion{ItemCode: "White Fabric", ColorName: "white"}, got[1])
	})

	t.Run("soft-deleted items never surface", func(t *testing.T) {
		got := SuggestItems(items, "navy", 0)
		require.Len(t, got, 1)
		assert.Equal(t, "Navy Fabric", got[0].ItemCode)
	})

	t.Run("missing color leaves the field empty", func(t *testing.T) {
		got := SuggestItems(items, "thread", 0)
		require.Len(t, got, 1)
		assert.Empty(t, got[0].ColorName)
	})

	t.Run("empty term suggests nothing", func(t *testing.T) {
		assert.Empty(t, SuggestItems(items, "  ", 0))
	})

	t.Run("limit caps the result", func(t *testing.T) {
		assert.Len(t, SuggestItems(items, "fab", 1), 1)
	})
}
