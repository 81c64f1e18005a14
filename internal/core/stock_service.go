package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StockService is the inventory item registry. Every mutation applies as a
// single atomic unit: ledger append, item stock update, warehouse capacity
// update and status re-derivation commit together or not at all.
type StockService interface {
	// ReceiveStock records a goods receipt, creating the item record on
	// first receipt of a new item code into a warehouse.
	ReceiveStock(ctx context.Context, p ReceiveParams) (*StockMutationResult, error)
	// IssueStock removes stock and fails with an insufficient-stock error
	// when the requested quantity exceeds the current stock.
	IssueStock(ctx context.Context, p IssueParams) (*StockMutationResult, error)
	// AdjustStock is an administrative override setting an absolute stock
	// level; the compensating delta is recorded on the ledger.
	AdjustStock(ctx context.Context, p AdjustParams) (*StockMutationResult, error)

	GetStockLevels(ctx context.Context) ([]Item, error)
	GetItem(ctx context.Context, itemCode, warehouseCode string) (*Item, error)
	// GetLowStockItems returns items whose status is not in_stock.
	GetLowStockItems(ctx context.Context) ([]Item, error)

	// SweepStockStatus re-derives the status of every item and records any
	// missing low/out-of-stock notifications. Returns the number of
	// notifications created. Idempotent; run periodically by the server.
	SweepStockStatus(ctx context.Context) (int, error)
}

// ReceiveParams describes a goods receipt. The descriptive fields are used
// only when the receipt creates the item record.
type ReceiveParams struct {
	ItemCode      string
	WarehouseCode string
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
	Name          string
	Category      ItemCategory
	Unit          string
	Shelf         string
	Bin           string
	MinimumStock  decimal.Decimal
	MaximumStock  decimal.Decimal
	SellingPrice  decimal.Decimal
	PerformedBy   string
	Notes         string
}

// IssueParams describes a stock issue. WarehouseCode is required only when
// the item code exists in more than one warehouse.
type IssueParams struct {
	ItemCode      string
	WarehouseCode string
	Quantity      decimal.Decimal
	PerformedBy   string
	Notes         string
}

// AdjustParams sets an absolute stock level as an administrative correction.
type AdjustParams struct {
	ItemCode      string
	WarehouseCode string
	NewQuantity   decimal.Decimal
	PerformedBy   string
	Reason        string
}

// StockMutationResult reports the outcome of a single-item stock mutation.
type StockMutationResult struct {
	TransactionID string
	ItemCode      string
	WarehouseCode string
	PreviousStock decimal.Decimal
	NewStock      decimal.Decimal
	Status        Status
	StatusChanged bool
}

type stockService struct {
	pool          *pgxpool.Pool
	ledger        *StockLedger
	notifications *NotificationService
	sink          NotificationSink
	logger        *zap.Logger
}

func NewStockService(pool *pgxpool.Pool, ledger *StockLedger, notifications *NotificationService, sink NotificationSink, logger *zap.Logger) StockService {
	return &stockService{pool: pool, ledger: ledger, notifications: notifications, sink: sink, logger: logger}
}

// ── Shared transaction plumbing ───────────────────────────────────────────────

// lockedItem is an item row locked for update within a transaction.
type lockedItem struct {
	ID            int
	ItemCode      string
	Name          string
	WarehouseID   int
	WarehouseCode string
	CurrentStock  decimal.Decimal
	MinimumStock  decimal.Decimal
	UnitCost      decimal.Decimal
	Status        Status
}

// lockItemTx locks the item record identified by (itemCode, warehouseCode).
func lockItemTx(ctx context.Context, tx pgx.Tx, itemCode, warehouseCode string) (*lockedItem, error) {
	var it lockedItem
	var status string
	err := tx.QueryRow(ctx, `
		SELECT i.id, i.item_code, i.name, i.warehouse_id, w.code,
		       i.current_stock, i.minimum_stock, i.unit_cost, i.status
		FROM items i
		JOIN warehouses w ON w.id = i.warehouse_id
		WHERE i.item_code = $1 AND w.code = $2
		FOR UPDATE OF i
	`, itemCode, warehouseCode).Scan(&it.ID, &it.ItemCode, &it.Name, &it.WarehouseID, &it.WarehouseCode,
		&it.CurrentStock, &it.MinimumStock, &it.UnitCost, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, Errorf(KindNotFound, "item %s not found in warehouse %s", itemCode, warehouseCode)
		}
		return nil, storagef(err, "failed to lock item %s", itemCode)
	}
	it.Status = Status(status)
	return &it, nil
}

// resolveItemWarehouseTx returns the warehouse code owning itemCode. When
// warehouseCode is empty the item must exist in exactly one warehouse.
func resolveItemWarehouseTx(ctx context.Context, tx pgx.Tx, itemCode, warehouseCode string) (string, error) {
	if warehouseCode != "" {
		return warehouseCode, nil
	}
	rows, err := tx.Query(ctx, `
		SELECT w.code
		FROM items i
		JOIN warehouses w ON w.id = i.warehouse_id
		WHERE i.item_code = $1
		ORDER BY w.code
		LIMIT 2
	`, itemCode)
	if err != nil {
		return "", storagef(err, "failed to resolve warehouse for item %s", itemCode)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return "", storagef(err, "failed to scan warehouse code")
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return "", storagef(err, "error resolving warehouse for item %s", itemCode)
	}
	switch len(codes) {
	case 0:
		return "", Errorf(KindNotFound, "item %s not found", itemCode)
	case 1:
		return codes[0], nil
	default:
		return "", Errorf(KindValidation, "item %s exists in multiple warehouses, specify a warehouse code", itemCode)
	}
}

// stockChange is one item-stock delta to apply atomically with its ledger
// entry, capacity update and status re-derivation.
type stockChange struct {
	item        *lockedItem
	warehouse   *warehouseRow
	delta       decimal.Decimal
	txnType     TransactionType
	fromWH      *string
	toWH        *string
	orderRef    *string
	refID       *string
	performedBy string
	notes       string
}

type stockChangeResult struct {
	TransactionID string
	PreviousStock decimal.Decimal
	NewStock      decimal.Decimal
	OldStatus     Status
	NewStatus     Status
	Notification  *Notification
}

// applyStockChangeTx performs the coupled updates of one stock delta: item
// stock, derived status, ledger entry, warehouse capacity, and the
// notification record when the status transitions. Callers have already
// locked the warehouse and item rows (warehouses before items, see tx.go)
// and verified sufficiency for stock-decreasing operations.
func applyStockChangeTx(ctx context.Context, tx pgx.Tx, ledger *StockLedger, notifications *NotificationService, logger *zap.Logger, c stockChange) (*stockChangeResult, error) {
	prev := c.item.CurrentStock
	next := prev.Add(c.delta)
	oldStatus := c.item.Status
	newStatus := DeriveStatus(next, c.item.MinimumStock)

	_, err := tx.Exec(ctx, `
		UPDATE items SET current_stock = $1, status = $2, updated_at = NOW()
		WHERE id = $3
	`, next, string(newStatus), c.item.ID)
	if err != nil {
		return nil, storagef(err, "failed to update stock for item %s", c.item.ItemCode)
	}

	txnID, err := ledger.AppendInTx(ctx, tx, StockTransaction{
		ItemCode:       c.item.ItemCode,
		WarehouseCode:  c.item.WarehouseCode,
		Type:           c.txnType,
		Quantity:       c.delta,
		PreviousStock:  prev,
		NewStock:       next,
		FromWarehouse:  c.fromWH,
		ToWarehouse:    c.toWH,
		OrderReference: c.orderRef,
		ReferenceID:    c.refID,
		PerformedBy:    c.performedBy,
		Notes:          c.notes,
	})
	if err != nil {
		return nil, err
	}

	if _, err := applyCapacityDeltaTx(ctx, tx, logger, c.warehouse, c.delta); err != nil {
		return nil, err
	}

	var notif *Notification
	if newStatus != oldStatus {
		notif, err = notifications.recordStatusChangeTx(ctx, tx, c.item.ItemCode, c.item.Name, next, newStatus)
		if err != nil {
			return nil, err
		}
	}

	c.item.CurrentStock = next
	c.item.Status = newStatus
	return &stockChangeResult{
		TransactionID: txnID,
		PreviousStock: prev,
		NewStock:      next,
		OldStatus:     oldStatus,
		NewStatus:     newStatus,
		Notification:  notif,
	}, nil
}

// publish delivers committed notifications to the sink. Called only after
// the transaction has committed; delivery failure never rolls anything back.
func publish(ctx context.Context, sink NotificationSink, notifications []Notification) {
	for _, n := range notifications {
		sink.Publish(ctx, n)
	}
}

// ── Mutations ─────────────────────────────────────────────────────────────────

func (s *stockService) ReceiveStock(ctx context.Context, p ReceiveParams) (*StockMutationResult, error) {
	if p.ItemCode == "" {
		return nil, Errorf(KindValidation, "item code is required")
	}
	if p.WarehouseCode == "" {
		return nil, Errorf(KindValidation, "warehouse code is required")
	}
	if !p.Quantity.IsPositive() {
		return nil, Errorf(KindValidation, "receive quantity must be positive, got %s", p.Quantity)
	}
	if p.UnitCost.IsNegative() {
		return nil, Errorf(KindValidation, "unit cost cannot be negative, got %s", p.UnitCost)
	}

	var result *StockMutationResult
	var created []Notification
	err := runInTx(ctx, s.pool, func(tx pgx.Tx) error {
		wh, err := lockWarehouseTx(ctx, tx, p.WarehouseCode)
		if err != nil {
			return err
		}

		item, err := lockItemTx(ctx, tx, p.ItemCode, p.WarehouseCode)
		if IsKind(err, KindNotFound) {
			item, err = createItemTx(ctx, tx, wh, p)
		}
		if err != nil {
			return err
		}

		// Weighted average cost across receipts; purely advisory.
		newQty := item.CurrentStock.Add(p.Quantity)
		newCost := p.UnitCost
		if !newQty.IsZero() && !item.CurrentStock.IsZero() {
			newCost = item.CurrentStock.Mul(item.UnitCost).Add(p.Quantity.Mul(p.UnitCost)).Div(newQty)
		}
		if _, err := tx.Exec(ctx, `UPDATE items SET unit_cost = $1 WHERE id = $2`, newCost, item.ID); err != nil {
			return storagef(err, "failed to update unit cost for item %s", p.ItemCode)
		}

		change, err := applyStockChangeTx(ctx, tx, s.ledger, s.notifications, s.logger, stockChange{
			item:        item,
			warehouse:   wh,
			delta:       p.Quantity,
			txnType:     TxnReceive,
			performedBy: p.PerformedBy,
			notes:       p.Notes,
		})
		if err != nil {
			return err
		}

		result = mutationResult(p.ItemCode, p.WarehouseCode, change)
		created = collectNotification(change)
		return nil
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, s.sink, created)
	return result, nil
}

// createItemTx inserts a fresh item record for a first receipt and locks it.
func createItemTx(ctx context.Context, tx pgx.Tx, wh *warehouseRow, p ReceiveParams) (*lockedItem, error) {
	name := p.Name
	if name == "" {
		name = p.ItemCode
	}
	category := p.Category
	if category == "" {
		category = CategoryRawMaterial
	}
	if !ValidCategory(category) {
		return nil, Errorf(KindValidation, "unknown item category %q", category)
	}
	unit := p.Unit
	if unit == "" {
		unit = "kg"
	}
	if p.MinimumStock.IsNegative() {
		return nil, Errorf(KindValidation, "minimum stock cannot be negative, got %s", p.MinimumStock)
	}
	if p.MaximumStock.LessThan(p.MinimumStock) {
		return nil, Errorf(KindValidation, "maximum stock %s is below minimum stock %s", p.MaximumStock, p.MinimumStock)
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO items (item_code, name, category, unit, warehouse_id, shelf, bin,
		                   current_stock, minimum_stock, maximum_stock, unit_cost, selling_price, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, $9, $10, $11, $12)
	`, p.ItemCode, name, string(category), unit, wh.ID, p.Shelf, p.Bin,
		p.MinimumStock, p.MaximumStock, p.UnitCost, p.SellingPrice, string(StatusOutOfStock))
	if err != nil {
		return nil, storagef(err, "failed to create item %s", p.ItemCode)
	}
	return lockItemTx(ctx, tx, p.ItemCode, wh.Code)
}

func (s *stockService) IssueStock(ctx context.Context, p IssueParams) (*StockMutationResult, error) {
	if p.ItemCode == "" {
		return nil, Errorf(KindValidation, "item code is required")
	}
	if !p.Quantity.IsPositive() {
		return nil, Errorf(KindValidation, "issue quantity must be positive, got %s", p.Quantity)
	}

	var result *StockMutationResult
	var created []Notification
	err := runInTx(ctx, s.pool, func(tx pgx.Tx) error {
		whCode, err := resolveItemWarehouseTx(ctx, tx, p.ItemCode, p.WarehouseCode)
		if err != nil {
			return err
		}
		wh, err := lockWarehouseTx(ctx, tx, whCode)
		if err != nil {
			return err
		}
		item, err := lockItemTx(ctx, tx, p.ItemCode, whCode)
		if err != nil {
			return err
		}
		if item.CurrentStock.LessThan(p.Quantity) {
			return Errorf(KindInsufficientStock, "insufficient stock for item %s: available %s, requested %s",
				p.ItemCode, item.CurrentStock, p.Quantity)
		}

		change, err := applyStockChangeTx(ctx, tx, s.ledger, s.notifications, s.logger, stockChange{
			item:        item,
			warehouse:   wh,
			delta:       p.Quantity.Neg(),
			txnType:     TxnIssue,
			performedBy: p.PerformedBy,
			notes:       p.Notes,
		})
		if err != nil {
			return err
		}

		result = mutationResult(p.ItemCode, whCode, change)
		created = collectNotification(change)
		return nil
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, s.sink, created)
	return result, nil
}

func (s *stockService) AdjustStock(ctx context.Context, p AdjustParams) (*StockMutationResult, error) {
	if p.ItemCode == "" {
		return nil, Errorf(KindValidation, "item code is required")
	}
	if p.NewQuantity.IsNegative() {
		return nil, Errorf(KindValidation, "adjusted quantity cannot be negative, got %s", p.NewQuantity)
	}
	if p.Reason == "" {
		return nil, Errorf(KindValidation, "an adjustment reason is required")
	}

	var result *StockMutationResult
	var created []Notification
	err := runInTx(ctx, s.pool, func(tx pgx.Tx) error {
		whCode, err := resolveItemWarehouseTx(ctx, tx, p.ItemCode, p.WarehouseCode)
		if err != nil {
			return err
		}
		wh, err := lockWarehouseTx(ctx, tx, whCode)
		if err != nil {
			return err
		}
		item, err := lockItemTx(ctx, tx, p.ItemCode, whCode)
		if err != nil {
			return err
		}

		change, err := applyStockChangeTx(ctx, tx, s.ledger, s.notifications, s.logger, stockChange{
			item:        item,
			warehouse:   wh,
			delta:       p.NewQuantity.Sub(item.CurrentStock),
			txnType:     TxnAdjust,
			performedBy: p.PerformedBy,
			notes:       fmt.Sprintf("Administrative adjustment: %s", p.Reason),
		})
		if err != nil {
			return err
		}

		result = mutationResult(p.ItemCode, whCode, change)
		created = collectNotification(change)
		return nil
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, s.sink, created)
	return result, nil
}

func mutationResult(itemCode, warehouseCode string, change *stockChangeResult) *StockMutationResult {
	return &StockMutationResult{
		TransactionID: change.TransactionID,
		ItemCode:      itemCode,
		WarehouseCode: warehouseCode,
		PreviousStock: change.PreviousStock,
		NewStock:      change.NewStock,
		Status:        change.NewStatus,
		StatusChanged: change.NewStatus != change.OldStatus,
	}
}

func collectNotification(change *stockChangeResult) []Notification {
	if change.Notification == nil {
		return nil
	}
	return []Notification{*change.Notification}
}

// ── Queries ───────────────────────────────────────────────────────────────────

const itemColumns = `
	i.id, i.item_code, i.name, i.category, i.unit, i.warehouse_id, w.code,
	i.shelf, i.bin, i.current_stock, i.minimum_stock, i.maximum_stock,
	i.unit_cost, i.selling_price, i.status, i.created_at, i.updated_at`

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	var category, status string
	err := row.Scan(&it.ID, &it.ItemCode, &it.Name, &category, &it.Unit, &it.WarehouseID, &it.WarehouseCode,
		&it.Shelf, &it.Bin, &it.CurrentStock, &it.MinimumStock, &it.MaximumStock,
		&it.UnitCost, &it.SellingPrice, &status, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	it.Category = ItemCategory(category)
	it.Status = Status(status)
	return &it, nil
}

func (s *stockService) queryItems(ctx context.Context, where string, args ...any) ([]Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items i
		JOIN warehouses w ON w.id = i.warehouse_id`
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY i.item_code, w.code"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storagef(err, "failed to query items")
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, storagef(err, "failed to scan item")
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, storagef(err, "error iterating items")
	}
	return items, nil
}

func (s *stockService) GetStockLevels(ctx context.Context) ([]Item, error) {
	return s.queryItems(ctx, "")
}

func (s *stockService) GetLowStockItems(ctx context.Context) ([]Item, error) {
	return s.queryItems(ctx, "i.status <> $1", string(StatusInStock))
}

func (s *stockService) GetItem(ctx context.Context, itemCode, warehouseCode string) (*Item, error) {
	var items []Item
	var err error
	if warehouseCode != "" {
		items, err = s.queryItems(ctx, "i.item_code = $1 AND w.code = $2", itemCode, warehouseCode)
	} else {
		items, err = s.queryItems(ctx, "i.item_code = $1", itemCode)
	}
	if err != nil {
		return nil, err
	}
	switch len(items) {
	case 0:
		return nil, Errorf(KindNotFound, "item %s not found", itemCode)
	case 1:
		return &items[0], nil
	default:
		return nil, Errorf(KindValidation, "item %s exists in multiple warehouses, specify a warehouse code", itemCode)
	}
}

// ── Periodic sweep ────────────────────────────────────────────────────────────

func (s *stockService) SweepStockStatus(ctx context.Context) (int, error) {
	items, err := s.GetStockLevels(ctx)
	if err != nil {
		return 0, err
	}

	emitted := 0
	var created []Notification
	for i := range items {
		it := &items[i]
		derived := DeriveStatus(it.CurrentStock, it.MinimumStock)
		if derived == StatusInStock && derived == it.Status {
			continue
		}

		var notif *Notification
		err := runInTx(ctx, s.pool, func(tx pgx.Tx) error {
			// Reset so a retried attempt cannot leak a rolled-back
			// notification.
			notif = nil
			locked, err := lockItemTx(ctx, tx, it.ItemCode, it.WarehouseCode)
			if err != nil {
				return err
			}
			status := DeriveStatus(locked.CurrentStock, locked.MinimumStock)
			if status != locked.Status {
				if _, err := tx.Exec(ctx, `UPDATE items SET status = $1, updated_at = NOW() WHERE id = $2`,
					string(status), locked.ID); err != nil {
					return storagef(err, "failed to update status for item %s", locked.ItemCode)
				}
			}
			notif, err = s.notifications.recordStatusChangeTx(ctx, tx, locked.ItemCode, locked.Name, locked.CurrentStock, status)
			return err
		})
		if IsKind(err, KindNotFound) {
			// Item removed between the scan and the sweep; skip it.
			continue
		}
		if err != nil {
			return emitted, err
		}
		if notif != nil {
			created = append(created, *notif)
			emitted++
		}
	}
	publish(ctx, s.sink, created)
	return emitted, nil
}
