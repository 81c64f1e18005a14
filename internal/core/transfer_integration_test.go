package core_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"inventory-service/internal/core"
)

func TestTransfer_MovesStockBetweenWarehouses(t *testing.T) {
	svcs, ctx := setupTestDB(t)
	receiveTestStock(t, ctx, svcs, "TEA-GIFT-SET", "WH-RAW", 200, 20)

	result, err := svcs.transfers.Transfer(ctx, core.TransferParams{
		ItemCode:      "TEA-GIFT-SET",
		FromWarehouse: "WH-RAW",
		ToWarehouse:   "WH-FG",
		Quantity:      decimal.NewFromInt(80),
		PerformedBy:   "test",
	})
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if !result.SourceStock.Equal(decimal.NewFromInt(120)) {
		t.Errorf("Expected source stock 120, got %s", result.SourceStock)
	}
	if !result.DestStock.Equal(decimal.NewFromInt(80)) {
		t.Errorf("Expected dest stock 80, got %s", result.DestStock)
	}

	// The destination item was created from the source item's metadata.
	dest, err := svcs.stock.GetItem(ctx, "TEA-GIFT-SET", "WH-FG")
	if err != nil {
		t.Fatalf("GetItem(WH-FG) failed: %v", err)
	}
	src, err := svcs.stock.GetItem(ctx, "TEA-GIFT-SET", "WH-RAW")
	if err != nil {
		t.Fatalf("GetItem(WH-RAW) failed: %v", err)
	}
	if dest.Name != src.Name || dest.Category != src.Category || dest.Unit != src.Unit {
		t.Errorf("Destination metadata diverges from source: %+v vs %+v", dest, src)
	}
	if !dest.MinimumStock.Equal(src.MinimumStock) {
		t.Errorf("Destination minimum stock %s != source %s", dest.MinimumStock, src.MinimumStock)
	}

	// Paired ledger entries, the in side referencing the out side.
	outEntries, err := svcs.ledger.Query(ctx, core.LedgerFilter{ItemCode: "TEA-GIFT-SET", Type: core.TxnTransferOut})
	if err != nil || len(outEntries) != 1 {
		t.Fatalf("Expected 1 transfer_out entry, got %d (err %v)", len(outEntries), err)
	}
	inEntries, err := svcs.ledger.Query(ctx, core.LedgerFilter{ItemCode: "TEA-GIFT-SET", Type: core.TxnTransferIn})
	if err != nil || len(inEntries) != 1 {
		t.Fatalf("Expected 1 transfer_in entry, got %d (err %v)", len(inEntries), err)
	}
	if inEntries[0].ReferenceID == nil || *inEntries[0].ReferenceID != outEntries[0].TransactionID {
		t.Errorf("transfer_in should reference the paired transfer_out entry")
	}
	// order_reference stays reserved for reservations and releases, so a
	// query keyed on it must not pick up transfer pairs.
	if outEntries[0].OrderReference != nil || inEntries[0].OrderReference != nil {
		t.Errorf("Transfer entries should carry no order reference")
	}
	byOrder, err := svcs.ledger.Query(ctx, core.LedgerFilter{OrderReference: outEntries[0].TransactionID})
	if err != nil {
		t.Fatalf("Ledger query failed: %v", err)
	}
	if len(byOrder) != 0 {
		t.Errorf("Order-reference query matched %d transfer entries", len(byOrder))
	}
	if !outEntries[0].Quantity.Equal(decimal.NewFromInt(-80)) || !inEntries[0].Quantity.Equal(decimal.NewFromInt(80)) {
		t.Errorf("Unexpected transfer deltas: out=%s in=%s", outEntries[0].Quantity, inEntries[0].Quantity)
	}

	// Capacity moved with the stock.
	if used := capacityUsed(t, ctx, svcs.pool, "WH-RAW"); !used.Equal(decimal.NewFromInt(120)) {
		t.Errorf("Expected WH-RAW capacity_used=120, got %s", used)
	}
	if used := capacityUsed(t, ctx, svcs.pool, "WH-FG"); !used.Equal(decimal.NewFromInt(80)) {
		t.Errorf("Expected WH-FG capacity_used=80, got %s", used)
	}
}

func TestTransfer_InsufficientStockRejected(t *testing.T) {
	svcs, ctx := setupTestDB(t)
	receiveTestStock(t, ctx, svcs, "TEA-GREEN", "WH-RAW", 50, 10)

	_, err := svcs.transfers.Transfer(ctx, core.TransferParams{
		ItemCode:      "TEA-GREEN",
		FromWarehouse: "WH-RAW",
		ToWarehouse:   "WH-FG",
		Quantity:      decimal.NewFromInt(60),
	})
	if !core.IsKind(err, core.KindInsufficientStock) {
		t.Fatalf("Expected insufficient stock error, got %v", err)
	}

	// No destination record and no ledger entries were created.
	if _, err := svcs.stock.GetItem(ctx, "TEA-GREEN", "WH-FG"); !core.IsKind(err, core.KindNotFound) {
		t.Errorf("Destination item should not exist after rejected transfer, got %v", err)
	}
	entries, err := svcs.ledger.Query(ctx, core.LedgerFilter{ItemCode: "TEA-GREEN", Type: core.TxnTransferOut})
	if err != nil {
		t.Fatalf("Ledger query failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no transfer_out entries, got %d", len(entries))
	}
}

func TestTransfer_MidFailureLeavesStockAndCapacityUntouched(t *testing.T) {
	svcs, ctx := setupTestDB(t)
	receiveTestStock(t, ctx, svcs, "TEA-GREEN", "WH-RAW", 200, 20)

	// Park the destination record at the NUMERIC(14,3) column limit so the
	// inbound leg's stock update fails after the outbound leg has already
	// run inside the same transaction.
	atLimit := decimal.RequireFromString("99999999999")
	if _, err := svcs.stock.ReceiveStock(ctx, core.ReceiveParams{
		ItemCode:      "TEA-GREEN",
		WarehouseCode: "WH-FG",
		Quantity:      atLimit,
		UnitCost:      decimal.NewFromInt(1),
	}); err != nil {
		t.Fatalf("Seeding destination failed: %v", err)
	}

	_, err := svcs.transfers.Transfer(ctx, core.TransferParams{
		ItemCode:      "TEA-GREEN",
		FromWarehouse: "WH-RAW",
		ToWarehouse:   "WH-FG",
		Quantity:      decimal.NewFromInt(500),
	})
	if !core.IsKind(err, core.KindStorage) {
		t.Fatalf("Expected storage error from failed transfer, got %v", err)
	}

	// The half-applied outbound leg must have been rolled back with the
	// rest: both stocks, both capacities, and the ledger are untouched.
	src, err := svcs.stock.GetItem(ctx, "TEA-GREEN", "WH-RAW")
	if err != nil {
		t.Fatalf("GetItem(WH-RAW) failed: %v", err)
	}
	if !src.CurrentStock.Equal(decimal.NewFromInt(200)) {
		t.Errorf("Source stock changed after failed transfer: %s", src.CurrentStock)
	}
	dest, err := svcs.stock.GetItem(ctx, "TEA-GREEN", "WH-FG")
	if err != nil {
		t.Fatalf("GetItem(WH-FG) failed: %v", err)
	}
	if !dest.CurrentStock.Equal(atLimit) {
		t.Errorf("Destination stock changed after failed transfer: %s", dest.CurrentStock)
	}
	if used := capacityUsed(t, ctx, svcs.pool, "WH-RAW"); !used.Equal(decimal.NewFromInt(200)) {
		t.Errorf("Expected WH-RAW capacity_used=200, got %s", used)
	}
	if used := capacityUsed(t, ctx, svcs.pool, "WH-FG"); !used.Equal(atLimit) {
		t.Errorf("Expected WH-FG capacity_used unchanged, got %s", used)
	}
	for _, txnType := range []core.TransactionType{core.TxnTransferOut, core.TxnTransferIn} {
		entries, err := svcs.ledger.Query(ctx, core.LedgerFilter{ItemCode: "TEA-GREEN", Type: txnType})
		if err != nil {
			t.Fatalf("Ledger query failed: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("Expected no %s entries after failed transfer, got %d", txnType, len(entries))
		}
	}
}

func TestTransfer_SameWarehouseRejected(t *testing.T) {
	svcs, ctx := setupTestDB(t)
	receiveTestStock(t, ctx, svcs, "TEA-GREEN", "WH-RAW", 50, 10)

	_, err := svcs.transfers.Transfer(ctx, core.TransferParams{
		ItemCode:      "TEA-GREEN",
		FromWarehouse: "WH-RAW",
		ToWarehouse:   "WH-RAW",
		Quantity:      decimal.NewFromInt(10),
	})
	if !core.IsKind(err, core.KindValidation) {
		t.Fatalf("Expected validation error, got %v", err)
	}
}
