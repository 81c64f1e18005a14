package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"inventory-service/internal/core"
)

type appService struct {
	stock        core.StockService
	transfers    core.TransferService
	reservations core.ReservationService
	warehouses   core.WarehouseService
	ledger       *core.StockLedger
	alerts       *core.NotificationService
	logger       *zap.Logger
}

// NewService wires the core services into the single application facade.
func NewService(
	stock core.StockService,
	transfers core.TransferService,
	reservations core.ReservationService,
	warehouses core.WarehouseService,
	ledger *core.StockLedger,
	alerts *core.NotificationService,
	logger *zap.Logger,
) ApplicationService {
	return &appService{
		stock:        stock,
		transfers:    transfers,
		reservations: reservations,
		warehouses:   warehouses,
		ledger:       ledger,
		alerts:       alerts,
		logger:       logger,
	}
}

func (s *appService) ReceiveStock(ctx context.Context, req ReceiveStockRequest) (*StockMutationResult, error) {
	m, err := s.stock.ReceiveStock(ctx, core.ReceiveParams{
		ItemCode:      req.ItemCode,
		WarehouseCode: req.WarehouseCode,
		Quantity:      req.Quantity,
		UnitCost:      req.UnitCost,
		Name:          req.Name,
		Category:      core.ItemCategory(req.Category),
		Unit:          req.Unit,
		Shelf:         req.Shelf,
		Bin:           req.Bin,
		MinimumStock:  req.MinimumStock,
		MaximumStock:  req.MaximumStock,
		SellingPrice:  req.SellingPrice,
		PerformedBy:   req.PerformedBy,
		Notes:         req.Notes,
	})
	if err != nil {
		return nil, err
	}
	return &StockMutationResult{Mutation: m}, nil
}

func (s *appService) IssueStock(ctx context.Context, req IssueStockRequest) (*StockMutationResult, error) {
	m, err := s.stock.IssueStock(ctx, core.IssueParams{
		ItemCode:      req.ItemCode,
		WarehouseCode: req.WarehouseCode,
		Quantity:      req.Quantity,
		PerformedBy:   req.PerformedBy,
		Notes:         req.Notes,
	})
	if err != nil {
		return nil, err
	}
	return &StockMutationResult{Mutation: m}, nil
}

func (s *appService) AdjustStock(ctx context.Context, req AdjustStockRequest) (*StockMutationResult, error) {
	m, err := s.stock.AdjustStock(ctx, core.AdjustParams{
		ItemCode:      req.ItemCode,
		WarehouseCode: req.WarehouseCode,
		NewQuantity:   req.NewQuantity,
		PerformedBy:   req.PerformedBy,
		Reason:        req.Reason,
	})
	if err != nil {
		return nil, err
	}
	return &StockMutationResult{Mutation: m}, nil
}

func (s *appService) TransferStock(ctx context.Context, req TransferStockRequest) (*TransferResult, error) {
	t, err := s.transfers.Transfer(ctx, core.TransferParams{
		ItemCode:      req.ItemCode,
		FromWarehouse: req.FromWarehouse,
		ToWarehouse:   req.ToWarehouse,
		Quantity:      req.Quantity,
		PerformedBy:   req.PerformedBy,
		Notes:         req.Notes,
	})
	if err != nil {
		return nil, err
	}
	return &TransferResult{Transfer: t}, nil
}

func (s *appService) ReserveStock(ctx context.Context, req ReservationRequest) (*ReserveResult, error) {
	r, err := s.reservations.Reserve(ctx, core.ReserveParams{
		OrderReference: req.OrderReference,
		Lines:          req.Lines,
		PerformedBy:    req.PerformedBy,
	})
	if err != nil {
		return nil, err
	}
	return &ReserveResult{Reservation: r}, nil
}

func (s *appService) ReleaseStock(ctx context.Context, req ReservationRequest) (*ReleaseResult, error) {
	r, err := s.reservations.Release(ctx, core.ReleaseParams{
		OrderReference: req.OrderReference,
		Lines:          req.Lines,
		PerformedBy:    req.PerformedBy,
	})
	if err != nil {
		return nil, err
	}
	return &ReleaseResult{Release: r}, nil
}

func (s *appService) GetStockLevels(ctx context.Context) (*StockLevelsResult, error) {
	items, err := s.stock.GetStockLevels(ctx)
	if err != nil {
		return nil, err
	}
	return &StockLevelsResult{Items: items}, nil
}

func (s *appService) GetItem(ctx context.Context, itemCode, warehouseCode string) (*core.Item, error) {
	return s.stock.GetItem(ctx, itemCode, warehouseCode)
}

func (s *appService) GetLowStockItems(ctx context.Context) (*StockLevelsResult, error) {
	items, err := s.stock.GetLowStockItems(ctx)
	if err != nil {
		return nil, err
	}
	return &StockLevelsResult{Items: items}, nil
}

func (s *appService) GetLedger(ctx context.Context, filter core.LedgerFilter) (*LedgerResult, error) {
	txns, err := s.ledger.Query(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &LedgerResult{Transactions: txns}, nil
}

func (s *appService) ListWarehouses(ctx context.Context) (*WarehouseListResult, error) {
	whs, err := s.warehouses.GetWarehouses(ctx)
	if err != nil {
		return nil, err
	}
	return &WarehouseListResult{Warehouses: whs}, nil
}

func (s *appService) GetWarehouse(ctx context.Context, code string) (*core.Warehouse, error) {
	return s.warehouses.GetWarehouse(ctx, code)
}

func (s *appService) CreateWarehouse(ctx context.Context, req CreateWarehouseRequest) (*core.Warehouse, error) {
	return s.warehouses.CreateWarehouse(ctx, core.CreateWarehouseParams{
		Code:          req.Code,
		Name:          req.Name,
		Type:          core.WarehouseType(req.Type),
		Location:      req.Location,
		CapacityTotal: req.CapacityTotal,
	})
}

func (s *appService) ListNotifications(ctx context.Context, unreadOnly bool, limit int) (*NotificationListResult, error) {
	ns, err := s.alerts.List(ctx, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	return &NotificationListResult{Notifications: ns}, nil
}

func (s *appService) MarkNotificationRead(ctx context.Context, id int) error {
	return s.alerts.MarkRead(ctx, id)
}

func (s *appService) StartStockMonitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("stock monitor started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stock monitor stopped")
			return
		case <-ticker.C:
			created, err := s.stock.SweepStockStatus(ctx)
			if err != nil {
				s.logger.Error("stock status sweep failed", zap.Error(err))
				continue
			}
			if created > 0 {
				s.logger.Info("stock status sweep completed", zap.Int("notifications", created))
			}
		}
	}
}
