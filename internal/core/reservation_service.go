package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReservationService ring-fences stock for orders. A reservation batch is
// all-or-nothing: if any line cannot be satisfied the whole batch is
// rejected and no stock moves. Releases are idempotent; releasing more than
// is outstanding credits only the outstanding amount.
type ReservationService interface {
	Reserve(ctx context.Context, p ReserveParams) (*ReserveResult, error)
	Release(ctx context.Context, p ReleaseParams) (*ReleaseResult, error)
}

type ReservationLine struct {
	ItemCode      string
	WarehouseCode string
	Quantity      decimal.Decimal
}

type ReserveParams struct {
	OrderReference string
	Lines          []ReservationLine
	PerformedBy    string
}

type ReservedLine struct {
	TransactionID string
	ItemCode      string
	WarehouseCode string
	Quantity      decimal.Decimal
	NewStock      decimal.Decimal
	Status        Status
}

type ReserveResult struct {
	OrderReference string
	Lines          []ReservedLine
}

type ReleaseParams struct {
	OrderReference string
	Lines          []ReservationLine
	PerformedBy    string
}

// ReleasedLine reports one release. Duplicate is true when nothing was
// outstanding for the line, which happens on a repeated release.
type ReleasedLine struct {
	TransactionID string
	ItemCode      string
	WarehouseCode string
	Requested     decimal.Decimal
	Released      decimal.Decimal
	NewStock      decimal.Decimal
	Duplicate     bool
}

type ReleaseResult struct {
	OrderReference string
	Lines          []ReleasedLine
}

type reservationService struct {
	pool          *pgxpool.Pool
	ledger        *StockLedger
	notifications *NotificationService
	sink          NotificationSink
	logger        *zap.Logger
}

func NewReservationService(pool *pgxpool.Pool, ledger *StockLedger, notifications *NotificationService, sink NotificationSink, logger *zap.Logger) ReservationService {
	return &reservationService{pool: pool, ledger: ledger, notifications: notifications, sink: sink, logger: logger}
}

func validateBatch(orderRef string, lines []ReservationLine) error {
	if orderRef == "" {
		return Errorf(KindValidation, "order reference is required")
	}
	if len(lines) == 0 {
		return Errorf(KindValidation, "at least one line is required")
	}
	seen := make(map[string]bool, len(lines))
	for i, l := range lines {
		if l.ItemCode == "" {
			return Errorf(KindValidation, "line %d: item code is required", i+1)
		}
		if !l.Quantity.IsPositive() {
			return Errorf(KindValidation, "line %d: quantity must be positive, got %s", i+1, l.Quantity)
		}
		key := l.ItemCode + "/" + l.WarehouseCode
		if seen[key] {
			return Errorf(KindValidation, "duplicate line for item %s", l.ItemCode)
		}
		seen[key] = true
	}
	return nil
}

// resolveLinesTx fills in missing warehouse codes and returns the lines
// sorted by item code for a stable locking order. Duplicates are detected
// on the resolved key: two lines naming the same item record, one with an
// explicit warehouse and one without, would otherwise both apply their
// delta from the same locked snapshot and corrupt the ledger chain.
func resolveLinesTx(ctx context.Context, tx pgx.Tx, lines []ReservationLine) ([]ReservationLine, error) {
	resolved := make([]ReservationLine, len(lines))
	copy(resolved, lines)
	seen := make(map[string]bool, len(resolved))
	for i := range resolved {
		code, err := resolveItemWarehouseTx(ctx, tx, resolved[i].ItemCode, resolved[i].WarehouseCode)
		if err != nil {
			return nil, err
		}
		resolved[i].WarehouseCode = code

		key := resolved[i].ItemCode + "/" + code
		if seen[key] {
			return nil, Errorf(KindValidation, "duplicate lines for item %s in warehouse %s",
				resolved[i].ItemCode, code)
		}
		seen[key] = true
	}
	sort.Slice(resolved, func(i, j int) bool {
		if resolved[i].ItemCode != resolved[j].ItemCode {
			return resolved[i].ItemCode < resolved[j].ItemCode
		}
		return resolved[i].WarehouseCode < resolved[j].WarehouseCode
	})
	return resolved, nil
}

func warehouseCodes(lines []ReservationLine) []string {
	codes := make([]string, 0, len(lines))
	for _, l := range lines {
		codes = append(codes, l.WarehouseCode)
	}
	return codes
}

func (s *reservationService) Reserve(ctx context.Context, p ReserveParams) (*ReserveResult, error) {
	if err := validateBatch(p.OrderReference, p.Lines); err != nil {
		return nil, err
	}

	var result *ReserveResult
	var created []Notification
	err := runInTx(ctx, s.pool, func(tx pgx.Tx) error {
		lines, err := resolveLinesTx(ctx, tx, p.Lines)
		if err != nil {
			return err
		}
		warehouses, err := lockWarehousesTx(ctx, tx, warehouseCodes(lines))
		if err != nil {
			return err
		}

		items := make([]*lockedItem, len(lines))
		var shortfalls []string
		for i, l := range lines {
			item, err := lockItemTx(ctx, tx, l.ItemCode, l.WarehouseCode)
			if err != nil {
				return err
			}
			items[i] = item
			if item.CurrentStock.LessThan(l.Quantity) {
				shortfalls = append(shortfalls, fmt.Sprintf("%s (available %s, requested %s)",
					l.ItemCode, item.CurrentStock, l.Quantity))
			}
		}
		if len(shortfalls) > 0 {
			return Errorf(KindInsufficientStock, "insufficient stock for order %s: %s",
				p.OrderReference, strings.Join(shortfalls, "; "))
		}

		reserved := make([]ReservedLine, 0, len(lines))
		var notifs []Notification
		for i, l := range lines {
			change, err := applyStockChangeTx(ctx, tx, s.ledger, s.notifications, s.logger, stockChange{
				item:        items[i],
				warehouse:   warehouses[l.WarehouseCode],
				delta:       l.Quantity.Neg(),
				txnType:     TxnReservation,
				orderRef:    &p.OrderReference,
				performedBy: p.PerformedBy,
				notes:       fmt.Sprintf("Reserved for order %s", p.OrderReference),
			})
			if err != nil {
				return err
			}
			reserved = append(reserved, ReservedLine{
				TransactionID: change.TransactionID,
				ItemCode:      l.ItemCode,
				WarehouseCode: l.WarehouseCode,
				Quantity:      l.Quantity,
				NewStock:      change.NewStock,
				Status:        change.NewStatus,
			})
			notifs = append(notifs, collectNotification(change)...)
		}
		// Assigned only when the attempt reaches commit, so notifications
		// from a retried, rolled-back attempt are never published.
		result = &ReserveResult{OrderReference: p.OrderReference, Lines: reserved}
		created = notifs
		return nil
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, s.sink, created)
	return result, nil
}

func (s *reservationService) Release(ctx context.Context, p ReleaseParams) (*ReleaseResult, error) {
	if err := validateBatch(p.OrderReference, p.Lines); err != nil {
		return nil, err
	}

	var result *ReleaseResult
	var created []Notification
	err := runInTx(ctx, s.pool, func(tx pgx.Tx) error {
		lines, err := resolveLinesTx(ctx, tx, p.Lines)
		if err != nil {
			return err
		}
		warehouses, err := lockWarehousesTx(ctx, tx, warehouseCodes(lines))
		if err != nil {
			return err
		}

		released := make([]ReleasedLine, 0, len(lines))
		var notifs []Notification
		for _, l := range lines {
			item, err := lockItemTx(ctx, tx, l.ItemCode, l.WarehouseCode)
			if err != nil {
				return err
			}

			outstanding, err := outstandingReservedTx(ctx, tx, p.OrderReference, l.ItemCode, l.WarehouseCode)
			if err != nil {
				return err
			}
			credit := l.Quantity
			if outstanding.LessThan(credit) {
				credit = outstanding
			}
			if !credit.IsPositive() {
				released = append(released, ReleasedLine{
					ItemCode:      l.ItemCode,
					WarehouseCode: l.WarehouseCode,
					Requested:     l.Quantity,
					Released:      decimal.Zero,
					NewStock:      item.CurrentStock,
					Duplicate:     true,
				})
				continue
			}

			change, err := applyStockChangeTx(ctx, tx, s.ledger, s.notifications, s.logger, stockChange{
				item:        item,
				warehouse:   warehouses[l.WarehouseCode],
				delta:       credit,
				txnType:     TxnRelease,
				orderRef:    &p.OrderReference,
				performedBy: p.PerformedBy,
				notes:       fmt.Sprintf("Released from order %s", p.OrderReference),
			})
			if err != nil {
				return err
			}
			released = append(released, ReleasedLine{
				TransactionID: change.TransactionID,
				ItemCode:      l.ItemCode,
				WarehouseCode: l.WarehouseCode,
				Requested:     l.Quantity,
				Released:      credit,
				NewStock:      change.NewStock,
			})
			notifs = append(notifs, collectNotification(change)...)
		}
		result = &ReleaseResult{OrderReference: p.OrderReference, Lines: released}
		created = notifs
		return nil
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, s.sink, created)
	return result, nil
}
