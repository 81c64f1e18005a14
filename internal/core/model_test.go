package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestWarehouseUtilization(t *testing.T) {
	w := Warehouse{
		CapacityTotal: decimal.NewFromInt(1000),
		CapacityUsed:  decimal.NewFromInt(333),
	}
	if got := w.Utilization(); !got.Equal(decimal.RequireFromString("33.3")) {
		t.Errorf("Utilization = %s, want 33.3", got)
	}

	w.CapacityTotal = decimal.Zero
	if got := w.Utilization(); !got.IsZero() {
		t.Errorf("zero-capacity Utilization = %s, want 0", got)
	}
}

func TestWarehouseAvailableCapacity(t *testing.T) {
	w := Warehouse{
		CapacityTotal: decimal.NewFromInt(1000),
		CapacityUsed:  decimal.NewFromInt(400),
	}
	if got := w.AvailableCapacity(); !got.Equal(decimal.NewFromInt(600)) {
		t.Errorf("AvailableCapacity = %s, want 600", got)
	}

	// Over-capacity warehouses report zero, not negative.
	w.CapacityUsed = decimal.NewFromInt(1200)
	if got := w.AvailableCapacity(); !got.IsZero() {
		t.Errorf("over-capacity AvailableCapacity = %s, want 0", got)
	}
}

func TestValidCategory(t *testing.T) {
	for _, c := range []ItemCategory{CategoryRawMaterial, CategoryPackaging, CategoryEquipment} {
		if !ValidCategory(c) {
			t.Errorf("ValidCategory(%s) = false", c)
		}
	}
	if ValidCategory("beverages") {
		t.Error("ValidCategory should reject unknown categories")
	}
}
