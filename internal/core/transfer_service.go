package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TransferService moves stock between warehouses. A transfer writes two
// paired ledger entries, transfer_out at the source and transfer_in at the
// destination, inside a single transaction.
type TransferService interface {
	Transfer(ctx context.Context, p TransferParams) (*TransferResult, error)
}

type TransferParams struct {
	ItemCode      string
	FromWarehouse string
	ToWarehouse   string
	Quantity      decimal.Decimal
	PerformedBy   string
	Notes         string
}

type TransferResult struct {
	OutTransactionID string
	InTransactionID  string
	ItemCode         string
	FromWarehouse    string
	ToWarehouse      string
	Quantity         decimal.Decimal
	SourceStock      decimal.Decimal
	DestStock        decimal.Decimal
	SourceCapacity   decimal.Decimal
	DestCapacity     decimal.Decimal
}

type transferService struct {
	pool          *pgxpool.Pool
	ledger        *StockLedger
	notifications *NotificationService
	sink          NotificationSink
	logger        *zap.Logger
}

func NewTransferService(pool *pgxpool.Pool, ledger *StockLedger, notifications *NotificationService, sink NotificationSink, logger *zap.Logger) TransferService {
	return &transferService{pool: pool, ledger: ledger, notifications: notifications, sink: sink, logger: logger}
}

func (s *transferService) Transfer(ctx context.Context, p TransferParams) (*TransferResult, error) {
	if p.ItemCode == "" {
		return nil, Errorf(KindValidation, "item code is required")
	}
	if p.FromWarehouse == "" || p.ToWarehouse == "" {
		return nil, Errorf(KindValidation, "source and destination warehouses are required")
	}
	if p.FromWarehouse == p.ToWarehouse {
		return nil, Errorf(KindValidation, "source and destination warehouses must differ")
	}
	if !p.Quantity.IsPositive() {
		return nil, Errorf(KindValidation, "transfer quantity must be positive, got %s", p.Quantity)
	}

	var result *TransferResult
	var created []Notification
	err := runInTx(ctx, s.pool, func(tx pgx.Tx) error {
		warehouses, err := lockWarehousesTx(ctx, tx, []string{p.FromWarehouse, p.ToWarehouse})
		if err != nil {
			return err
		}
		src := warehouses[p.FromWarehouse]
		dst := warehouses[p.ToWarehouse]

		source, err := lockItemTx(ctx, tx, p.ItemCode, p.FromWarehouse)
		if err != nil {
			return err
		}
		if source.CurrentStock.LessThan(p.Quantity) {
			return Errorf(KindInsufficientStock, "insufficient stock for item %s in warehouse %s: available %s, requested %s",
				p.ItemCode, p.FromWarehouse, source.CurrentStock, p.Quantity)
		}

		dest, err := lockItemTx(ctx, tx, p.ItemCode, p.ToWarehouse)
		if IsKind(err, KindNotFound) {
			dest, err = createDestinationItemTx(ctx, tx, source, dst)
		}
		if err != nil {
			return err
		}

		notes := p.Notes
		if notes == "" {
			notes = fmt.Sprintf("Transfer from %s to %s", p.FromWarehouse, p.ToWarehouse)
		}

		out, err := applyStockChangeTx(ctx, tx, s.ledger, s.notifications, s.logger, stockChange{
			item:        source,
			warehouse:   src,
			delta:       p.Quantity.Neg(),
			txnType:     TxnTransferOut,
			fromWH:      &p.FromWarehouse,
			toWH:        &p.ToWarehouse,
			performedBy: p.PerformedBy,
			notes:       notes,
		})
		if err != nil {
			return err
		}

		in, err := applyStockChangeTx(ctx, tx, s.ledger, s.notifications, s.logger, stockChange{
			item:        dest,
			warehouse:   dst,
			delta:       p.Quantity,
			txnType:     TxnTransferIn,
			fromWH:      &p.FromWarehouse,
			toWH:        &p.ToWarehouse,
			refID:       &out.TransactionID,
			performedBy: p.PerformedBy,
			notes:       notes,
		})
		if err != nil {
			return err
		}

		result = &TransferResult{
			OutTransactionID: out.TransactionID,
			InTransactionID:  in.TransactionID,
			ItemCode:         p.ItemCode,
			FromWarehouse:    p.FromWarehouse,
			ToWarehouse:      p.ToWarehouse,
			Quantity:         p.Quantity,
			SourceStock:      out.NewStock,
			DestStock:        in.NewStock,
			SourceCapacity:   src.CapacityUsed,
			DestCapacity:     dst.CapacityUsed,
		}
		created = append(collectNotification(out), collectNotification(in)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, s.sink, created)
	return result, nil
}

// createDestinationItemTx clones the source item's metadata into the
// destination warehouse on first transfer of an item code and locks the new
// record.
func createDestinationItemTx(ctx context.Context, tx pgx.Tx, source *lockedItem, dst *warehouseRow) (*lockedItem, error) {
	_, err := tx.Exec(ctx, `
		INSERT INTO items (item_code, name, category, unit, warehouse_id, shelf, bin,
		                   current_stock, minimum_stock, maximum_stock, unit_cost, selling_price, status)
		SELECT i.item_code, i.name, i.category, i.unit, $1, i.shelf, i.bin,
		       0, i.minimum_stock, i.maximum_stock, i.unit_cost, i.selling_price, $2
		FROM items i
		WHERE i.id = $3
	`, dst.ID, string(StatusOutOfStock), source.ID)
	if err != nil {
		return nil, storagef(err, "failed to create item %s in warehouse %s", source.ItemCode, dst.Code)
	}
	return lockItemTx(ctx, tx, source.ItemCode, dst.Code)
}
