package app

import (
	"context"
	"time"

	"inventory-service/internal/core"
)

// ApplicationService is the single interface the HTTP adapter calls. It
// decouples presentation from business logic; implementations contain no
// display or transport logic of any kind.
type ApplicationService interface {
	// ReceiveStock records a goods receipt, creating the item on first
	// receipt of a new item code into a warehouse.
	ReceiveStock(ctx context.Context, req ReceiveStockRequest) (*StockMutationResult, error)

	// IssueStock removes stock for consumption or sale.
	IssueStock(ctx context.Context, req IssueStockRequest) (*StockMutationResult, error)

	// AdjustStock sets an absolute stock level as an administrative
	// correction, recording the compensating delta on the ledger.
	AdjustStock(ctx context.Context, req AdjustStockRequest) (*StockMutationResult, error)

	// TransferStock moves stock between two warehouses as a pair of
	// transfer_out and transfer_in ledger entries.
	TransferStock(ctx context.Context, req TransferStockRequest) (*TransferResult, error)

	// ReserveStock ring-fences stock for an order. All lines succeed or
	// the whole batch is rejected.
	ReserveStock(ctx context.Context, req ReservationRequest) (*ReserveResult, error)

	// ReleaseStock returns reserved stock to availability. Idempotent.
	ReleaseStock(ctx context.Context, req ReservationRequest) (*ReleaseResult, error)

	// GetStockLevels returns all item records across warehouses.
	GetStockLevels(ctx context.Context) (*StockLevelsResult, error)

	// GetItem returns a single item, disambiguated by warehouse when the
	// item code exists in more than one.
	GetItem(ctx context.Context, itemCode, warehouseCode string) (*core.Item, error)

	// GetLowStockItems returns items whose status is low_stock or
	// out_of_stock.
	GetLowStockItems(ctx context.Context) (*StockLevelsResult, error)

	// GetLedger returns stock transactions matching the filter, newest
	// first.
	GetLedger(ctx context.Context, filter core.LedgerFilter) (*LedgerResult, error)

	// ListWarehouses returns all active warehouses with utilization.
	ListWarehouses(ctx context.Context) (*WarehouseListResult, error)

	// GetWarehouse returns one warehouse by code.
	GetWarehouse(ctx context.Context, code string) (*core.Warehouse, error)

	// CreateWarehouse registers a new warehouse.
	CreateWarehouse(ctx context.Context, req CreateWarehouseRequest) (*core.Warehouse, error)

	// ListNotifications returns stock alerts, optionally unread only.
	ListNotifications(ctx context.Context, unreadOnly bool, limit int) (*NotificationListResult, error)

	// MarkNotificationRead marks one notification as read.
	MarkNotificationRead(ctx context.Context, id int) error

	// StartStockMonitor runs the periodic stock-status sweep until ctx is
	// cancelled. Blocks; run it in its own goroutine.
	StartStockMonitor(ctx context.Context, interval time.Duration)
}
