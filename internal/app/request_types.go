package app

import (
	"github.com/shopspring/decimal"

	"inventory-service/internal/core"
)

// ReceiveStockRequest is the input for recording a goods receipt. The
// descriptive fields are only consulted when the receipt creates the item.
type ReceiveStockRequest struct {
	ItemCode      string
	WarehouseCode string
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
	Name          string
	Category      string
	Unit          string
	Shelf         string
	Bin           string
	MinimumStock  decimal.Decimal
	MaximumStock  decimal.Decimal
	SellingPrice  decimal.Decimal
	PerformedBy   string
	Notes         string
}

// IssueStockRequest is the input for issuing stock. WarehouseCode may be
// empty when the item code exists in exactly one warehouse.
type IssueStockRequest struct {
	ItemCode      string
	WarehouseCode string
	Quantity      decimal.Decimal
	PerformedBy   string
	Notes         string
}

// AdjustStockRequest sets an absolute stock level.
type AdjustStockRequest struct {
	ItemCode      string
	WarehouseCode string
	NewQuantity   decimal.Decimal
	PerformedBy   string
	Reason        string
}

// TransferStockRequest moves stock between warehouses.
type TransferStockRequest struct {
	ItemCode      string
	FromWarehouse string
	ToWarehouse   string
	Quantity      decimal.Decimal
	PerformedBy   string
	Notes         string
}

// ReservationRequest is the input for both reserving and releasing stock
// against an order reference.
type ReservationRequest struct {
	OrderReference string
	Lines          []core.ReservationLine
	PerformedBy    string
}

// CreateWarehouseRequest is the input for registering a warehouse.
type CreateWarehouseRequest struct {
	Code          string
	Name          string
	Type          string
	Location      string
	CapacityTotal decimal.Decimal
}
