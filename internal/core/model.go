package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type ItemCategory string

const (
	CategoryRawMaterial ItemCategory = "raw_material"
	CategoryPackaging   ItemCategory = "packaging"
	CategoryEquipment   ItemCategory = "equipment"
)

// ValidCategory reports whether c is one of the closed category set.
func ValidCategory(c ItemCategory) bool {
	switch c {
	case CategoryRawMaterial, CategoryPackaging, CategoryEquipment:
		return true
	}
	return false
}

type WarehouseType string

const (
	WarehouseRawMaterial   WarehouseType = "raw_material"
	WarehouseFinishedGoods WarehouseType = "finished_goods"
)

// ValidWarehouseType reports whether t is one of the closed warehouse type set.
func ValidWarehouseType(t WarehouseType) bool {
	return t == WarehouseRawMaterial || t == WarehouseFinishedGoods
}

// TransactionType classifies a stock ledger entry.
type TransactionType string

const (
	TxnReceive     TransactionType = "receive"
	TxnIssue       TransactionType = "issue"
	TxnAdjust      TransactionType = "adjust"
	TxnTransferOut TransactionType = "transfer_out"
	TxnTransferIn  TransactionType = "transfer_in"
	TxnReservation TransactionType = "reservation"
	TxnRelease     TransactionType = "release"
)

// Warehouse is a physical storage location with a soft capacity limit.
// CapacityUsed mirrors the summed current stock of items homed in the
// warehouse and is mutated only through stock operations.
type Warehouse struct {
	ID            int
	Code          string
	Name          string
	Type          WarehouseType
	Location      string
	CapacityTotal decimal.Decimal
	CapacityUsed  decimal.Decimal
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Utilization returns used capacity as a percentage of total capacity.
// A warehouse with zero total capacity reports zero utilization.
func (w *Warehouse) Utilization() decimal.Decimal {
	if w.CapacityTotal.IsZero() {
		return decimal.Zero
	}
	return w.CapacityUsed.Div(w.CapacityTotal).Mul(decimal.NewFromInt(100)).Round(2)
}

// AvailableCapacity returns max(0, total - used).
func (w *Warehouse) AvailableCapacity() decimal.Decimal {
	avail := w.CapacityTotal.Sub(w.CapacityUsed)
	if avail.IsNegative() {
		return decimal.Zero
	}
	return avail
}

// Item is a per-warehouse stock record. The same item code may exist in
// several warehouses as independent records with independent stock counts.
type Item struct {
	ID            int
	ItemCode      string
	Name          string
	Category      ItemCategory
	Unit          string
	WarehouseID   int
	WarehouseCode string
	Shelf         string
	Bin           string
	CurrentStock  decimal.Decimal
	MinimumStock  decimal.Decimal
	MaximumStock  decimal.Decimal
	UnitCost      decimal.Decimal // weighted average receipt cost, advisory
	SellingPrice  decimal.Decimal // advisory
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// StockTransaction is one immutable stock ledger entry. PreviousStock and
// NewStock are captured at write time and never recomputed.
type StockTransaction struct {
	ID             int64
	TransactionID  string
	ItemCode       string
	WarehouseCode  string
	Type           TransactionType
	Quantity       decimal.Decimal // signed delta: positive increases stock
	PreviousStock  decimal.Decimal
	NewStock       decimal.Decimal
	FromWarehouse  *string
	ToWarehouse    *string
	OrderReference *string
	// ReferenceID links paired entries, e.g. a transfer_in to its
	// transfer_out. OrderReference stays reserved for reservation and
	// release entries.
	ReferenceID *string
	PerformedBy string
	Notes          string
	CreatedAt      time.Time
}

type NotificationType string

const (
	NotificationLowStock   NotificationType = "low_stock"
	NotificationOutOfStock NotificationType = "out_of_stock"
	NotificationInfo       NotificationType = "info"
)

// Notification records a stock-status alert for the external notification
// channel. At most one unread notification exists per (item, type).
type Notification struct {
	ID        int
	Type      NotificationType
	Message   string
	ItemCode  string
	Read      bool
	CreatedAt time.Time
}

// NotificationSink receives committed notifications for out-of-process
// delivery. Publish is fire-and-forget: implementations log failures and
// never propagate them back into the operation that committed. Sinks are
// only ever invoked after the surrounding transaction has committed.
type NotificationSink interface {
	Publish(ctx context.Context, n Notification)
}
