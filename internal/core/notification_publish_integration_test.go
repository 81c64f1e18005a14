package core_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"inventory-service/internal/core"
)

// recordingSink captures everything published so a test can compare it
// against the notification rows that actually committed.
type recordingSink struct {
	published []core.Notification
}

func (r *recordingSink) Publish(_ context.Context, n core.Notification) {
	r.published = append(r.published, n)
}

func TestNotifications_OnlyCommittedRowsArePublished(t *testing.T) {
	svcs, ctx := setupTestDB(t)

	sink := &recordingSink{}
	logger := zap.NewNop()
	stock := core.NewStockService(svcs.pool, svcs.ledger, svcs.notifications, sink, logger)
	reservations := core.NewReservationService(svcs.pool, svcs.ledger, svcs.notifications, sink, logger)

	if _, err := stock.ReceiveStock(ctx, core.ReceiveParams{
		ItemCode:      "TEA-GREEN",
		WarehouseCode: "WH-RAW",
		Quantity:      decimal.NewFromInt(100),
		UnitCost:      decimal.NewFromInt(10),
		MinimumStock:  decimal.NewFromInt(50),
		MaximumStock:  decimal.NewFromInt(1000),
	}); err != nil {
		t.Fatalf("ReceiveStock failed: %v", err)
	}

	// Drops 100 -> 40, crossing the minimum: one alert committed and
	// published.
	if _, err := reservations.Reserve(ctx, core.ReserveParams{
		OrderReference: "ORD-6006",
		Lines:          []core.ReservationLine{{ItemCode: "TEA-GREEN", Quantity: decimal.NewFromInt(60)}},
	}); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}

	// A rejected batch rolls back; nothing may reach the sink for it.
	if _, err := reservations.Reserve(ctx, core.ReserveParams{
		OrderReference: "ORD-6007",
		Lines:          []core.ReservationLine{{ItemCode: "TEA-GREEN", Quantity: decimal.NewFromInt(1000)}},
	}); !core.IsKind(err, core.KindInsufficientStock) {
		t.Fatalf("Expected insufficient stock error, got %v", err)
	}

	// The alert is still unread, so the sweep commits nothing new.
	if created, err := stock.SweepStockStatus(ctx); err != nil || created != 0 {
		t.Fatalf("Expected no-op sweep, got created=%d err=%v", created, err)
	}

	rows, err := svcs.notifications.List(ctx, false, 50)
	if err != nil {
		t.Fatalf("List notifications failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Type != core.NotificationLowStock {
		t.Fatalf("Expected exactly one committed low_stock row, got %+v", rows)
	}
	if len(sink.published) != 1 {
		t.Fatalf("Expected exactly 1 published notification, got %d", len(sink.published))
	}
	// What went out is the committed row, id included: a notification from
	// a rolled-back attempt would carry an id no row has.
	if sink.published[0].ID != rows[0].ID || sink.published[0].Type != rows[0].Type {
		t.Errorf("Published notification %+v does not match committed row %+v", sink.published[0], rows[0])
	}
}
