package core

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func validTestEntry() StockTransaction {
	return StockTransaction{
		ItemCode:      "TEA-GREEN",
		WarehouseCode: "WH-RAW",
		Type:          TxnReceive,
		Quantity:      decimal.NewFromInt(50),
		PreviousStock: decimal.NewFromInt(100),
		NewStock:      decimal.NewFromInt(150),
	}
}

func TestValidateEntry(t *testing.T) {
	if err := validateEntry(validTestEntry()); err != nil {
		t.Fatalf("valid entry rejected: %v", err)
	}

	t.Run("missing item code", func(t *testing.T) {
		e := validTestEntry()
		e.ItemCode = ""
		if err := validateEntry(e); !IsKind(err, KindValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("missing warehouse code", func(t *testing.T) {
		e := validTestEntry()
		e.WarehouseCode = ""
		if err := validateEntry(e); !IsKind(err, KindValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("missing type", func(t *testing.T) {
		e := validTestEntry()
		e.Type = ""
		if err := validateEntry(e); !IsKind(err, KindValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("inconsistent stocks", func(t *testing.T) {
		e := validTestEntry()
		e.NewStock = decimal.NewFromInt(151)
		if err := validateEntry(e); !IsKind(err, KindValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("negative delta", func(t *testing.T) {
		e := validTestEntry()
		e.Type = TxnIssue
		e.Quantity = decimal.NewFromInt(-30)
		e.NewStock = decimal.NewFromInt(70)
		if err := validateEntry(e); err != nil {
			t.Errorf("negative delta entry rejected: %v", err)
		}
	})
}

func TestNewTransactionID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := newTransactionID()
		if !strings.HasPrefix(id, "TXN-") {
			t.Fatalf("unexpected prefix: %s", id)
		}
		if len(id) != len("TXN-")+8 {
			t.Fatalf("unexpected length: %s", id)
		}
		if id != strings.ToUpper(id) {
			t.Fatalf("expected uppercase id, got %s", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}
