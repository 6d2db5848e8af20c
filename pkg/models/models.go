// Package models defines the display-format record types shared by every
// component of the ordertrack client, the wire-format shapes the record
// store exchanges, and the normalizer translating between the two.
package models

import (
	"strconv"
	"time"
)

// Status is the lifecycle state of a purchase order.
type Status string

const (
	StatusPending Status = "pending"
	StatusPartial Status = "partial"
	StatusArrived Status = "arrived"
	StatusDelayed Status = "delayed"
)

// ValidStatus reports whether s is one of the recognized order statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusPartial, StatusArrived, StatusDelayed:
		return true
	}
	return false
}

// Role is the authorization role attached to a user account. Anything that
// is not an elevated role is treated as read-only by the view model.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMaster Role = "master"
	RoleStaff  Role = "staff"
)

// User is the authenticated identity supplied by the session provider.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
}

// OrderID is the server-assigned order identifier. IDs are sortable strings;
// the list view orders by ID descending so the newest order comes first.
type OrderID string

// ItemID is the integer identifier of an inventory item.
type ItemID int64

// Order is a purchase order in display format.
type Order struct {
	ID                       OrderID
	OrderDate                *Date
	ItemCode                 string
	ColorName                string
	OrderQuantity            int
	ExpectedArrivalStartDate *Date
	ExpectedArrivalEndDate   *Date
	ArrivalDate              *Date
	ArrivalQuantity          *int // nil while nothing has arrived
	SpecialNote              string
	Remarks                  string
	Status                   Status
}

// InventoryItem is a stock record in display format. Visible carries the
// soft-delete state: deleted items stay in the collection fetched from the
// store and are only excluded by the visibility filter.
type InventoryItem struct {
	ID          ItemID
	ItemName    string
	Color       *string
	Stock       int
	SafetyStock int
	Unit        string
	Location    *string
	Visible     bool
	UpdatedAt   time.Time
}

// StockLevel classifies an item's stock against its safety threshold.
type StockLevel string

const (
	StockEmpty  StockLevel = "empty"
	StockLow    StockLevel = "low"
	StockNormal StockLevel = "normal"
)

// StockLevel derives the display classification for it.
func (it InventoryItem) StockLevel() StockLevel {
	switch {
	case it.Stock <= 0:
		return StockEmpty
	case it.Stock < it.SafetyStock:
		return StockLow
	default:
		return StockNormal
	}
}

// InventoryLog is one stock-movement entry for an item.
type InventoryLog struct {
	CreatedAt time.Time
	Quantity  int // signed delta
	Memo      string
	CreatedBy string
}

// Record is the minimal surface the list engine needs from either record
// variant. Keeping it an interface over the two concrete types means the
// engine never has to guess at a record's structure.
type Record interface {
	// RecordKey is a stable string key for per-record bookkeeping.
	RecordKey() string
	// SearchFields returns the values the text search matches against.
	SearchFields() []string
	// DimensionValue returns the record's value for a named filter
	// dimension, or "" when the dimension does not apply.
	DimensionValue(dim string) string
	// Active reports whether the record is not soft-deleted.
	Active() bool
}

func (o Order) RecordKey() string { return string(o.ID) }

func (o Order) SearchFields() []string {
	return []string{o.ItemCode, o.ColorName}
}

func (o Order) DimensionValue(string) string { return "" }

// Active is always true for orders; they have no soft-delete.
func (o Order) Active() bool { return true }

func (it InventoryItem) RecordKey() string {
	return strconv.FormatInt(int64(it.ID), 10)
}

func (it InventoryItem) SearchFields() []string {
	fields := []string{it.ItemName}
	if it.Color != nil {
		fields = append(fields, *it.Color)
	}
	return fields
}

func (it InventoryItem) DimensionValue(dim string) string {
	if dim == DimensionLocation && it.Location != nil {
		return *it.Location
	}
	return ""
}

func (it InventoryItem) Active() bool { return it.Visible }

// DimensionLocation is the inventory list's exact-match filter dimension.
const DimensionLocation = "location"

// Equal reports whether two orders carry the same field values. The
// mutation coordinator uses it to refuse no-op updates before any network
// call happens.
func (o Order) Equal(other Order) bool {
	return o.ID == other.ID &&
		datePtrEqual(o.OrderDate, other.OrderDate) &&
		o.ItemCode == other.ItemCode &&
		o.ColorName == other.ColorName &&
		o.OrderQuantity == other.OrderQuantity &&
		datePtrEqual(o.ExpectedArrivalStartDate, other.ExpectedArrivalStartDate) &&
		datePtrEqual(o.ExpectedArrivalEndDate, other.ExpectedArrivalEndDate) &&
		datePtrEqual(o.ArrivalDate, other.ArrivalDate) &&
		intPtrEqual(o.ArrivalQuantity, other.ArrivalQuantity) &&
		o.SpecialNote == other.SpecialNote &&
		o.Remarks == other.Remarks &&
		o.Status == other.Status
}

func datePtrEqual(a, b *Date) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
