package models

import (
	"fmt"
	"time"
)

// NormalizationError reports a wire record whose shape cannot be turned into
// a display record. It is raised only for structural problems (a required
// field missing or unreadable); the normalizer never invents a business
// default to paper over one.
type NormalizationError struct {
	Field  string
	Reason string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("malformed record: field %q %s", e.Field, e.Reason)
}

// WireOrder is the record store's snake_case representation of an order.
// Dates travel as strings; empty means absent.
type WireOrder struct {
	ID                       string `json:"id"`
	OrderDate                string `json:"order_date"`
	ItemCode                 string `json:"item_code"`
	ColorName                string `json:"color_name"`
	OrderQuantity            int    `json:"order_quantity"`
	ExpectedArrivalStartDate string `json:"expected_arrival_start_date"`
	ExpectedArrivalEndDate   string `json:"expected_arrival_end_date"`
	ArrivalDate              *string `json:"arrival_date"`
	ArrivalQuantity          *int    `json:"arrival_quantity"`
	SpecialNote              string  `json:"special_note"`
	Remarks                  string  `json:"remarks"`
	Status                   string  `json:"status"`
	CreatedAt                string  `json:"created_at,omitempty"`
	UpdatedAt                string  `json:"updated_at,omitempty"`
}

// WireOrderPatch is the subset of order fields the server schema accepts on
// create and update. Server-computed fields (id, created_at, updated_at)
// never appear here, and neither does any display-only state.
type WireOrderPatch struct {
	OrderDate                *string `json:"order_date"`
	ItemCode                 string  `json:"item_code"`
	ColorName                string  `json:"color_name"`
	OrderQuantity            int     `json:"order_quantity"`
	ExpectedArrivalStartDate *string `json:"expected_arrival_start_date"`
	ExpectedArrivalEndDate   *string `json:"expected_arrival_end_date"`
	ArrivalDate              *string `json:"arrival_date"`
	ArrivalQuantity          *int    `json:"arrival_quantity"`
	SpecialNote              string  `json:"special_note"`
	Remarks                  string  `json:"remarks"`
	Status                   string  `json:"status,omitempty"`
}

// OrderFromWire normalizes a wire order into display format.
func OrderFromWire(w WireOrder) (Order, error) {
	if w.ItemCode == "" {
		return Order{}, &NormalizationError{Field: "item_code", Reason: "is missing"}
	}
	orderDate, err := parseDatePtr(w.OrderDate)
	if err != nil {
		return Order{}, &NormalizationError{Field: "order_date", Reason: "is not a date"}
	}
	start, err := parseDatePtr(w.ExpectedArrivalStartDate)
	if err != nil {
		return Order{}, &NormalizationError{Field: "expected_arrival_start_date", Reason: "is not a date"}
	}
	end, err := parseDatePtr(w.ExpectedArrivalEndDate)
	if err != nil {
		return Order{}, &NormalizationError{Field: "expected_arrival_end_date", Reason: "is not a date"}
	}
	var arrival *Date
	if w.ArrivalDate != nil {
		arrival, err = parseDatePtr(*w.ArrivalDate)
		if err != nil {
			return Order{}, &NormalizationError{Field: "arrival_date", Reason: "is not a date"}
		}
	}
	status := Status(w.Status)
	if w.Status == "" {
		status = StatusPending
	} else if !ValidStatus(status) {
		return Order{}, &NormalizationError{Field: "status", Reason: "has an unknown value"}
	}
	return Order{
		ID:                       OrderID(w.ID),
		OrderDate:                orderDate,
		ItemCode:                 w.ItemCode,
		ColorName:                w.ColorName,
		OrderQuantity:            w.OrderQuantity,
		ExpectedArrivalStartDate: start,
		ExpectedArrivalEndDate:   end,
		ArrivalDate:              arrival,
		ArrivalQuantity:          w.ArrivalQuantity,
		SpecialNote:              w.SpecialNote,
		Remarks:                  w.Remarks,
		Status:                   status,
	}, nil
}

// Wire converts a display order back to the wire patch shape. Dates are
// rendered from their local calendar fields; see Date for why that matters.
func (o Order) Wire() WireOrderPatch {
	return WireOrderPatch{
		OrderDate:                formatDatePtr(o.OrderDate),
		ItemCode:                 o.ItemCode,
		ColorName:                o.ColorName,
		OrderQuantity:            o.OrderQuantity,
		ExpectedArrivalStartDate: formatDatePtr(o.ExpectedArrivalStartDate),
		ExpectedArrivalEndDate:   formatDatePtr(o.ExpectedArrivalEndDate),
		ArrivalDate:              formatDatePtr(o.ArrivalDate),
		ArrivalQuantity:          o.ArrivalQuantity,
		SpecialNote:              o.SpecialNote,
		Remarks:                  o.Remarks,
		Status:                   string(o.Status),
	}
}

// WireInventoryItem is the record store's representation of a stock item.
// visible is tri-state on the wire: absent counts as visible.
type WireInventoryItem struct {
	ID          int64   `json:"id"`
	ItemName    string  `json:"item_name"`
	Color       *string `json:"color"`
	Stock       int     `json:"stock"`
	SafetyStock int     `json:"safety_stock"`
	Unit        string  `json:"unit"`
	Location    *string `json:"location"`
	Visible     *int    `json:"visible,omitempty"`
	UpdatedAt   string  `json:"updated_at,omitempty"`
}

// ItemFromWire normalizes a wire inventory item into display format.
func ItemFromWire(w WireInventoryItem) (InventoryItem, error) {
	if w.ItemName == "" {
		return InventoryItem{}, &NormalizationError{Field: "item_name", Reason: "is missing"}
	}
	if w.ID == 0 {
		return InventoryItem{}, &NormalizationError{Field: "id", Reason: "is missing"}
	}
	var updatedAt time.Time
	if w.UpdatedAt != "" {
		t, err := time.Parse(time.RFC3339, w.UpdatedAt)
		if err != nil {
			return InventoryItem{}, &NormalizationError{Field: "updated_at", Reason: "is not a timestamp"}
		}
		updatedAt = t
	}
	return InventoryItem{
		ID:          ItemID(w.ID),
		ItemName:    w.ItemName,
		Color:       w.Color,
		Stock:       w.Stock,
		SafetyStock: w.SafetyStock,
		Unit:        w.Unit,
		Location:    w.Location,
		Visible:     w.Visible == nil || *w.Visible != 0,
		UpdatedAt:   updatedAt,
	}, nil
}

// Wire converts a display item to the full wire shape, used on create.
func (it InventoryItem) Wire() WireInventoryItem {
	visible := 0
	if it.Visible {
		visible = 1
	}
	return WireInventoryItem{
		ID:          int64(it.ID),
		ItemName:    it.ItemName,
		Color:       it.Color,
		Stock:       it.Stock,
		SafetyStock: it.SafetyStock,
		Unit:        it.Unit,
		Location:    it.Location,
		Visible:     &visible,
	}
}

// InventoryPatch is a partial inventory update. Nil fields are left
// untouched by the server.
type InventoryPatch struct {
	ItemName    *string `json:"item_name,omitempty"`
	Color       *string `json:"color,omitempty"`
	Stock       *int    `json:"stock,omitempty"`
	SafetyStock *int    `json:"safety_stock,omitempty"`
	Unit        *string `json:"unit,omitempty"`
	Location    *string `json:"location,omitempty"`
	Memo        string  `json:"memo,omitempty"`
}

// Prune drops every patch field whose value already equals the current
// record, so an Empty result means the update would be a no-op.
func (p InventoryPatch) Prune(cur InventoryItem) InventoryPatch {
	out := p
	if p.ItemName != nil && *p.ItemName == cur.ItemName {
		out.ItemName = nil
	}
	if p.Color != nil && strPtrEqual(p.Color, cur.Color) {
		out.Color = nil
	}
	if p.Stock != nil && *p.Stock == cur.Stock {
		out.Stock = nil
	}
	if p.SafetyStock != nil && *p.SafetyStock == cur.SafetyStock {
		out.SafetyStock = nil
	}
	if p.Unit != nil && *p.Unit == cur.Unit {
		out.Unit = nil
	}
	if p.Location != nil && strPtrEqual(p.Location, cur.Location) {
		out.Location = nil
	}
	return out
}

// Empty reports whether the patch changes nothing. The memo alone does not
// count: it only annotates a stock movement.
func (p InventoryPatch) Empty() bool {
	return p.ItemName == nil && p.Color == nil && p.Stock == nil &&
		p.SafetyStock == nil && p.Unit == nil && p.Location == nil
}

// WireInventoryLog is one stock-movement entry as the store sends it.
type WireInventoryLog struct {
	CreatedAt string `json:"created_at"`
	Quantity  int    `json:"quantity"`
	Memo      string `json:"memo"`
	CreatedBy string `json:"created_by"`
}

// LogFromWire normalizes a wire log entry.
func LogFromWire(w WireInventoryLog) (InventoryLog, error) {
	t, err := time.Parse(time.RFC3339, w.CreatedAt)
	if err != nil {
		return InventoryLog{}, &NormalizationError{Field: "created_at", Reason: "is not a timestamp"}
	}
	return InventoryLog{
		CreatedAt: t,
		Quantity:  w.Quantity,
		Memo:      w.Memo,
		CreatedBy: w.CreatedBy,
	}, nil
}
