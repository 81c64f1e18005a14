package core_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"inventory-service/internal/core"
)

func TestWarehouse_CreateAndDuplicate(t *testing.T) {
	svcs, ctx := setupTestDB(t)

	wh, err := svcs.warehouses.CreateWarehouse(ctx, core.CreateWarehouseParams{
		Code:          "WH-EXT",
		Name:          "External Storage",
		Type:          core.WarehouseRawMaterial,
		CapacityTotal: decimal.NewFromInt(2000),
	})
	if err != nil {
		t.Fatalf("CreateWarehouse failed: %v", err)
	}
	if !wh.CapacityUsed.IsZero() || !wh.IsActive {
		t.Errorf("Unexpected new warehouse state: used=%s active=%v", wh.CapacityUsed, wh.IsActive)
	}

	_, err = svcs.warehouses.CreateWarehouse(ctx, core.CreateWarehouseParams{
		Code: "WH-EXT",
		Name: "Duplicate",
	})
	if !core.IsKind(err, core.KindValidation) {
		t.Errorf("Expected validation error for duplicate code, got %v", err)
	}

	if _, err := svcs.warehouses.GetWarehouse(ctx, "NOPE"); !core.IsKind(err, core.KindNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestWarehouse_CapacityWarningDoesNotBlock(t *testing.T) {
	svcs, ctx := setupTestDB(t)

	// WH-FG has capacity_total 500; overfilling succeeds but the counter
	// still tracks the real stock.
	receiveTestStock(t, ctx, svcs, "TEA-GIFT-SET", "WH-FG", 600, 50)

	wh, err := svcs.warehouses.GetWarehouse(ctx, "WH-FG")
	if err != nil {
		t.Fatalf("GetWarehouse failed: %v", err)
	}
	if !wh.CapacityUsed.Equal(decimal.NewFromInt(600)) {
		t.Errorf("Expected capacity_used=600, got %s", wh.CapacityUsed)
	}
	if !wh.AvailableCapacity().IsZero() {
		t.Errorf("Expected zero available capacity, got %s", wh.AvailableCapacity())
	}
	if !wh.Utilization().Equal(decimal.NewFromInt(120)) {
		t.Errorf("Expected 120%% utilization, got %s", wh.Utilization())
	}
}
