package app

import "inventory-service/internal/core"

// StockMutationResult is returned by receive, issue and adjust.
type StockMutationResult struct {
	Mutation *core.StockMutationResult
}

// TransferResult is returned by TransferStock.
type TransferResult struct {
	Transfer *core.TransferResult
}

// ReserveResult is returned by ReserveStock.
type ReserveResult struct {
	Reservation *core.ReserveResult
}

// ReleaseResult is returned by ReleaseStock.
type ReleaseResult struct {
	Release *core.ReleaseResult
}

// StockLevelsResult is returned by GetStockLevels and GetLowStockItems.
type StockLevelsResult struct {
	Items []core.Item
}

// LedgerResult is returned by GetLedger.
type LedgerResult struct {
	Transactions []core.StockTransaction
}

// WarehouseListResult is returned by ListWarehouses.
type WarehouseListResult struct {
	Warehouses []core.Warehouse
}

// NotificationListResult is returned by ListNotifications.
type NotificationListResult struct {
	Notifications []core.Notification
}
