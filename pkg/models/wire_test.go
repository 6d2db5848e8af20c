package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderFromWire(t *testing.T) {
	base := WireOrder{
		ID:            "PO-000001",
		OrderDate:     "2026-02-10",
		ItemCode:      "FAB-100",
		ColorName:     "navy",
		OrderQuantity: 50,
		Status:        "pending",
	}

	t.Run("normalizes dates and status", func(t *testing.T) {
		o, err := OrderFromWire(base)
		require.NoError(t, err)
		assert.Equal(t, OrderID("PO-000001"), o.ID)
		require.NotNil(t, o.OrderDate)
		assert.Equal(t, "2026-02-10", o.OrderDate.String())
		assert.Nil(t, o.ArrivalDate)
		assert.Nil(t, o.ArrivalQuantity)
		assert.Equal(t, StatusPending, o.Status)
	})

	t.Run("empty status defaults to pending", func(t *testing.T) {
		w := base
		w.Status = ""
		o, err := OrderFromWire(w)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, o.Status)
	})

	t.Run("missing item code is structural", func(t *testing.T) {
		w := base
		w.ItemCode = ""
		_, err := OrderFromWire(w)
		var nerr *NormalizationError
		require.ErrorAs(t, err, &nerr)
		assert.Equal(t, "item_code", nerr.Field)
	})

	t.Run("unparseable date is structural", func(t *testing.T) {
		w := base
		w.OrderDate = "not-a-date"
		var nerr *NormalizationError
		_, err := OrderFromWire(w)
		require.ErrorAs(t, err, &nerr)
		assert.Equal(t, "order_date", nerr.Field)
	})

	t.Run("unknown status is structural", func(t *testing.T) {
		w := base
		w.Status = "maybe"
		_, err := OrderFromWire(w)
		var nerr *NormalizationError
		require.ErrorAs(t, err, &nerr)
		assert.Equal(t, "status", nerr.Field)
	})
}

func TestOrderWirePatch(t *testing.T) {
	d := Date{Year: 2026, Month: time.March, Day: 1}
	qty := 30
	o := Order{
		ID:              "PO-000002",
		OrderDate:       &d,
		ItemCode:        "FAB-200",
		ArrivalQuantity: &qty,
		Status:          StatusPartial,
	}
	p := o.Wire()
	require.NotNil(t, p.OrderDate)
	assert.Equal(t, "2026-03-01", *p.OrderDate)
	assert.Nil(t, p.ExpectedArrivalStartDate)
	assert.Nil(t, p.ArrivalDate)
	require.NotNil(t, p.ArrivalQuantity)
	assert.Equal(t, 30, *p.ArrivalQuantity)
	assert.Equal(t, "partial", p.Status)
}

func TestItemFromWire(t *testing.T) {
	zero, one := 0, 1

	t.Run("absent visible counts as visible", func(t *testing.T) {
		it, err := ItemFromWire(WireInventoryItem{ID: 7, ItemName: "button"})
		require.NoError(t, err)
		assert.True(t, it.Visible)
	})

	t.Run("visible zero means soft-deleted", func(t *testing.T) {
		it, err := ItemFromWire(WireInventoryItem{ID: 7, ItemName: "button", Visible: &zero})
		require.NoError(t, err)
		assert.False(t, it.Visible)
	})

	t.Run("visible one", func(t *testing.T) {
		it, err := ItemFromWire(WireInventoryItem{ID: 7, ItemName: "button", Visible: &one})
		require.NoError(t, err)
		assert.True(t, it.Visible)
	})

	t.Run("missing name is structural", func(t *testing.T) {
		_, err := ItemFromWire(WireInventoryItem{ID: 7})
		var nerr *NormalizationError
		require.ErrorAs(t, err, &nerr)
		assert.Equal(t, "item_name", nerr.Field)
	})
}

func TestInventoryPatchPrune(t *testing.T) {
	color := "red"
	cur := InventoryItem{
		ID:       5,
		ItemName: "zipper",
		Color:    &color,
		Stock:    12,
		Unit:     "ea",
	}

	t.Run("identical patch prunes to empty", func(t *testing.T) {
		name, stock, unit := "zipper", 12, "ea"
		p := InventoryPatch{ItemName: &name, Color: &color, Stock: &stock, Unit: &unit}
		pruned := p.Prune(cur)
		assert.True(t, pruned.Empty())
	})

	t.Run("memo alone does not make a change", func(t *testing.T) {
		p := InventoryPatch{Memo: "counted today"}
		assert.True(t, p.Prune(cur).Empty())
	})

	t.Run("one changed field survives", func(t *testing.T) {
		name, stock := "zipper", 15
		p := InventoryPatch{ItemName: &name, Stock: &stock}
		pruned := p.Prune(cur)
		assert.False(t, pruned.Empty())
		assert.Nil(t, pruned.ItemName)
		require.NotNil(t, pruned.Stock)
		assert.Equal(t, 15, *pruned.Stock)
	})
}

func TestOrderEqual(t *testing.T) {
	d := Date{Year: 2026, Month: time.May, Day: 2}
	d2 := d
	a := Order{ID: "PO-1", OrderDate: &d, ItemCode: "X", Status: StatusPending}
	b := Order{ID: "PO-1", OrderDate: &d2, ItemCode: "X", Status: StatusPending}
	assert.True(t, a.Equal(b))

	b.Status = StatusArrived
	assert.False(t, a.Equal(b))
}

func TestStockLevel(t *testing.T) {
	assert.Equal(t, StockEmpty, InventoryItem{Stock: 0}.StockLevel())
	assert.Equal(t, StockLow, InventoryItem{Stock: 3, SafetyStock: 5}.StockLevel())
	assert.Equal(t, StockNormal, InventoryItem{Stock: 8, SafetyStock: 5}.StockLevel())
}
