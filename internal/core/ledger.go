package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// StockLedger is the append-only record of every stock-affecting event.
// It has no knowledge of warehouse capacity semantics: entries are a pure
// historical record keyed by item and time. Corrections are appended as
// compensating entries, never edits.
type StockLedger struct {
	pool *pgxpool.Pool
}

func NewStockLedger(pool *pgxpool.Pool) *StockLedger {
	return &StockLedger{pool: pool}
}

// LedgerFilter narrows a ledger query. Zero values mean "no constraint".
type LedgerFilter struct {
	ItemCode       string
	Type           TransactionType
	OrderReference string
	From           time.Time
	To             time.Time
	Limit          int
	Offset         int
}

const (
	defaultLedgerLimit = 50
	maxLedgerLimit     = 500
)

// AppendInTx persists one immutable ledger entry within the caller's
// transaction and returns the generated transaction id. The entry is
// rejected when required fields are absent or when the recorded stocks are
// numerically inconsistent.
func (l *StockLedger) AppendInTx(ctx context.Context, tx pgx.Tx, e StockTransaction) (string, error) {
	if err := validateEntry(e); err != nil {
		return "", err
	}

	txnID := newTransactionID()
	_, err := tx.Exec(ctx, `
		INSERT INTO stock_transactions
			(transaction_id, item_code, warehouse_code, transaction_type, quantity,
			 previous_stock, new_stock, from_warehouse, to_warehouse, order_reference,
			 reference_id, performed_by, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, txnID, e.ItemCode, e.WarehouseCode, string(e.Type), e.Quantity,
		e.PreviousStock, e.NewStock, e.FromWarehouse, e.ToWarehouse, e.OrderReference,
		e.ReferenceID, e.PerformedBy, e.Notes)
	if err != nil {
		return "", storagef(err, "failed to append ledger entry for item %s", e.ItemCode)
	}
	return txnID, nil
}

// validateEntry enforces the numeric-consistency invariant
// newStock == previousStock + quantity and the required fields.
func validateEntry(e StockTransaction) error {
	if e.ItemCode == "" {
		return Errorf(KindValidation, "ledger entry missing item code")
	}
	if e.WarehouseCode == "" {
		return Errorf(KindValidation, "ledger entry missing warehouse code")
	}
	if e.Type == "" {
		return Errorf(KindValidation, "ledger entry missing transaction type")
	}
	if !e.NewStock.Equal(e.PreviousStock.Add(e.Quantity)) {
		return Errorf(KindValidation, "inconsistent ledger entry for item %s: %s + %s != %s",
			e.ItemCode, e.PreviousStock, e.Quantity, e.NewStock)
	}
	return nil
}

// newTransactionID generates a human-readable ledger entry id, e.g. TXN-9F4A02BC.
func newTransactionID() string {
	return "TXN-" + strings.ToUpper(uuid.NewString()[:8])
}

// Query returns ledger entries matching the filter, newest first.
func (l *StockLedger) Query(ctx context.Context, f LedgerFilter) ([]StockTransaction, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.ItemCode != "" {
		where = append(where, "item_code = "+arg(f.ItemCode))
	}
	if f.Type != "" {
		where = append(where, "transaction_type = "+arg(string(f.Type)))
	}
	if f.OrderReference != "" {
		where = append(where, "order_reference = "+arg(f.OrderReference))
	}
	if !f.From.IsZero() {
		where = append(where, "created_at >= "+arg(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "created_at <= "+arg(f.To))
	}

	query := `
		SELECT id, transaction_id, item_code, warehouse_code, transaction_type,
		       quantity, previous_stock, new_stock, from_warehouse, to_warehouse,
		       order_reference, reference_id, performed_by, notes, created_at
		FROM stock_transactions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultLedgerLimit
	}
	if limit > maxLedgerLimit {
		limit = maxLedgerLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT " + arg(limit) + " OFFSET " + arg(offset)

	rows, err := l.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storagef(err, "failed to query stock ledger")
	}
	defer rows.Close()

	var entries []StockTransaction
	for rows.Next() {
		var e StockTransaction
		var txnType string
		if err := rows.Scan(
			&e.ID, &e.TransactionID, &e.ItemCode, &e.WarehouseCode, &txnType,
			&e.Quantity, &e.PreviousStock, &e.NewStock, &e.FromWarehouse, &e.ToWarehouse,
			&e.OrderReference, &e.ReferenceID, &e.PerformedBy, &e.Notes, &e.CreatedAt,
		); err != nil {
			return nil, storagef(err, "failed to scan ledger entry")
		}
		e.Type = TransactionType(txnType)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storagef(err, "error iterating ledger entries")
	}
	return entries, nil
}

// outstandingReservedTx returns the quantity still held for an order
// against one item/warehouse record: reservations deduct stock (negative
// deltas), releases credit it back (positive deltas), so the outstanding
// hold is the negated sum.
func outstandingReservedTx(ctx context.Context, tx pgx.Tx, orderRef, itemCode, warehouseCode string) (decimal.Decimal, error) {
	var outstanding decimal.Decimal
	err := tx.QueryRow(ctx, `
		SELECT COALESCE(-SUM(quantity), 0)
		FROM stock_transactions
		WHERE order_reference = $1
		  AND item_code = $2
		  AND warehouse_code = $3
		  AND transaction_type IN ('reservation', 'release')
	`, orderRef, itemCode, warehouseCode).Scan(&outstanding)
	if err != nil {
		return decimal.Zero, storagef(err, "failed to compute outstanding reservation for order %s", orderRef)
	}
	return outstanding, nil
}
