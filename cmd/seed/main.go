// seed is a one-shot tool to load a small demo dataset: two warehouses and
// an opening goods receipt for a handful of items. Receipts go through the
// stock service so the ledger and capacity counters stay consistent.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"inventory-service/internal/config"
	"inventory-service/internal/core"
	"inventory-service/internal/db"
	"inventory-service/internal/notify"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	warehouses := core.NewWarehouseService(pool)
	ledger := core.NewStockLedger(pool)
	alerts := core.NewNotificationService(pool)
	stock := core.NewStockService(pool, ledger, alerts, notify.NopSink{}, logger)

	seedWarehouses := []core.CreateWarehouseParams{
		{Code: "WH-RAW", Name: "Raw Material Warehouse", Type: core.WarehouseRawMaterial,
			Location: "Plant 1", CapacityTotal: decimal.NewFromInt(10000)},
		{Code: "WH-FG", Name: "Finished Goods Warehouse", Type: core.WarehouseFinishedGoods,
			Location: "Plant 1", CapacityTotal: decimal.NewFromInt(5000)},
	}
	for _, p := range seedWarehouses {
		if _, err := warehouses.CreateWarehouse(ctx, p); err != nil {
			if core.IsKind(err, core.KindValidation) {
				log.Printf("warehouse %s already exists, skipping", p.Code)
				continue
			}
			log.Fatalf("warehouse %s: %v", p.Code, err)
		}
		log.Printf("created warehouse %s", p.Code)
	}

	receipts := []core.ReceiveParams{
		{ItemCode: "TEA-GREEN", Name: "Green Tea Leaves", Category: core.CategoryRawMaterial,
			Unit: "kg", WarehouseCode: "WH-RAW", Quantity: decimal.NewFromInt(500),
			UnitCost: decimal.RequireFromString("12.50"), MinimumStock: decimal.NewFromInt(100),
			MaximumStock: decimal.NewFromInt(2000), Shelf: "A1", Bin: "01"},
		{ItemCode: "TEA-BLACK", Name: "Black Tea Leaves", Category: core.CategoryRawMaterial,
			Unit: "kg", WarehouseCode: "WH-RAW", Quantity: decimal.NewFromInt(750),
			UnitCost: decimal.RequireFromString("10.00"), MinimumStock: decimal.NewFromInt(150),
			MaximumStock: decimal.NewFromInt(2500), Shelf: "A2", Bin: "01"},
		{ItemCode: "PKG-BOX-100", Name: "Carton Box 100g", Category: core.CategoryPackaging,
			Unit: "pcs", WarehouseCode: "WH-RAW", Quantity: decimal.NewFromInt(3000),
			UnitCost: decimal.RequireFromString("0.35"), MinimumStock: decimal.NewFromInt(500),
			MaximumStock: decimal.NewFromInt(10000), Shelf: "B1", Bin: "03"},
		{ItemCode: "TEA-GIFT-SET", Name: "Assorted Tea Gift Set", Category: core.CategoryRawMaterial,
			Unit: "pcs", WarehouseCode: "WH-FG", Quantity: decimal.NewFromInt(120),
			UnitCost: decimal.RequireFromString("18.00"), SellingPrice: decimal.RequireFromString("34.99"),
			MinimumStock: decimal.NewFromInt(25), MaximumStock: decimal.NewFromInt(400), Shelf: "F1", Bin: "02"},
	}
	for _, p := range receipts {
		p.PerformedBy = "seed"
		p.Notes = "Opening stock"
		result, err := stock.ReceiveStock(ctx, p)
		if err != nil {
			log.Fatalf("receipt %s: %v", p.ItemCode, err)
		}
		log.Printf("received %s into %s (%s, stock now %s)",
			p.ItemCode, p.WarehouseCode, result.TransactionID, result.NewStock)
	}

	log.Println("Seed complete.")
}
