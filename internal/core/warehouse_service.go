package core

import (
	"context"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// WarehouseService is the warehouse registry and capacity tracker.
// Capacity is advisory: exceeding the total is logged as a warning, never
// rejected, and the used counter is clamped at zero from below.
type WarehouseService interface {
	CreateWarehouse(ctx context.Context, p CreateWarehouseParams) (*Warehouse, error)
	GetWarehouses(ctx context.Context) ([]Warehouse, error)
	GetWarehouse(ctx context.Context, code string) (*Warehouse, error)
}

// CreateWarehouseParams describes a warehouse registration.
type CreateWarehouseParams struct {
	Code          string
	Name          string
	Type          WarehouseType
	Location      string
	CapacityTotal decimal.Decimal
}

type warehouseService struct {
	pool *pgxpool.Pool
}

func NewWarehouseService(pool *pgxpool.Pool) WarehouseService {
	return &warehouseService{pool: pool}
}

const warehouseColumns = `id, code, name, type, location, capacity_total, capacity_used, is_active, created_at, updated_at`

func scanWarehouse(row pgx.Row) (*Warehouse, error) {
	var w Warehouse
	var whType string
	err := row.Scan(&w.ID, &w.Code, &w.Name, &whType, &w.Location,
		&w.CapacityTotal, &w.CapacityUsed, &w.IsActive, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	w.Type = WarehouseType(whType)
	return &w, nil
}

func (s *warehouseService) CreateWarehouse(ctx context.Context, p CreateWarehouseParams) (*Warehouse, error) {
	if p.Code == "" {
		return nil, Errorf(KindValidation, "warehouse code is required")
	}
	if p.Name == "" {
		return nil, Errorf(KindValidation, "warehouse name is required")
	}
	if p.Type == "" {
		p.Type = WarehouseRawMaterial
	}
	if !ValidWarehouseType(p.Type) {
		return nil, Errorf(KindValidation, "unknown warehouse type %q", p.Type)
	}
	if p.CapacityTotal.IsNegative() {
		return nil, Errorf(KindValidation, "warehouse capacity cannot be negative, got %s", p.CapacityTotal)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO warehouses (code, name, type, location, capacity_total)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code) DO NOTHING
		RETURNING `+warehouseColumns,
		p.Code, p.Name, string(p.Type), p.Location, p.CapacityTotal)
	w, err := scanWarehouse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, Errorf(KindValidation, "warehouse %s already exists", p.Code)
		}
		return nil, storagef(err, "failed to create warehouse %s", p.Code)
	}
	return w, nil
}

func (s *warehouseService) GetWarehouses(ctx context.Context) ([]Warehouse, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+warehouseColumns+`
		FROM warehouses
		WHERE is_active = true
		ORDER BY code
	`)
	if err != nil {
		return nil, storagef(err, "failed to query warehouses")
	}
	defer rows.Close()

	var warehouses []Warehouse
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, storagef(err, "failed to scan warehouse")
		}
		warehouses = append(warehouses, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, storagef(err, "error iterating warehouses")
	}
	return warehouses, nil
}

func (s *warehouseService) GetWarehouse(ctx context.Context, code string) (*Warehouse, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+warehouseColumns+`
		FROM warehouses
		WHERE code = $1 AND is_active = true
	`, code)
	w, err := scanWarehouse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, Errorf(KindNotFound, "warehouse %s not found", code)
		}
		return nil, storagef(err, "failed to fetch warehouse %s", code)
	}
	return w, nil
}

// warehouseRow is a locked warehouse row used inside stock transactions.
type warehouseRow struct {
	ID            int
	Code          string
	Name          string
	CapacityTotal decimal.Decimal
	CapacityUsed  decimal.Decimal
}

// lockWarehouseTx resolves a warehouse by code and locks its row for the
// duration of the transaction.
func lockWarehouseTx(ctx context.Context, tx pgx.Tx, code string) (*warehouseRow, error) {
	var w warehouseRow
	err := tx.QueryRow(ctx, `
		SELECT id, code, name, capacity_total, capacity_used
		FROM warehouses
		WHERE code = $1 AND is_active = true
		FOR UPDATE
	`, code).Scan(&w.ID, &w.Code, &w.Name, &w.CapacityTotal, &w.CapacityUsed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, Errorf(KindNotFound, "warehouse %s not found", code)
		}
		return nil, storagef(err, "failed to lock warehouse %s", code)
	}
	return &w, nil
}

// lockWarehousesTx locks the given warehouses in sorted code order.
// Deterministic ordering is what keeps concurrent transfers between the
// same pair of warehouses from deadlocking.
func lockWarehousesTx(ctx context.Context, tx pgx.Tx, codes []string) (map[string]*warehouseRow, error) {
	sorted := make([]string, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, c := range codes {
		if !seen[c] {
			seen[c] = true
			sorted = append(sorted, c)
		}
	}
	sort.Strings(sorted)

	locked := make(map[string]*warehouseRow, len(sorted))
	for _, code := range sorted {
		w, err := lockWarehouseTx(ctx, tx, code)
		if err != nil {
			return nil, err
		}
		locked[code] = w
	}
	return locked, nil
}

// applyCapacityDeltaTx adjusts a locked warehouse's used capacity by delta.
// The counter is clamped at zero; crossing the total capacity logs a
// warning and proceeds. Returns the new used capacity.
func applyCapacityDeltaTx(ctx context.Context, tx pgx.Tx, logger *zap.Logger, w *warehouseRow, delta decimal.Decimal) (decimal.Decimal, error) {
	newUsed := w.CapacityUsed.Add(delta)
	if newUsed.IsNegative() {
		newUsed = decimal.Zero
	}
	if delta.IsPositive() && newUsed.GreaterThan(w.CapacityTotal) {
		logger.Warn("warehouse capacity exceeded",
			zap.String("warehouse", w.Code),
			zap.String("capacity_total", w.CapacityTotal.String()),
			zap.String("capacity_used", newUsed.String()),
		)
	}

	_, err := tx.Exec(ctx, `
		UPDATE warehouses SET capacity_used = $1, updated_at = NOW()
		WHERE id = $2
	`, newUsed, w.ID)
	if err != nil {
		return decimal.Zero, storagef(err, "failed to update capacity for warehouse %s", w.Code)
	}
	w.CapacityUsed = newUsed
	return newUsed, nil
}
