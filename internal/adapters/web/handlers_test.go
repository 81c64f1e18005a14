package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"inventory-service/internal/app"
	"inventory-service/internal/core"
)

// stubService implements app.ApplicationService with overridable behaviors.
type stubService struct {
	issueStock func(context.Context, app.IssueStockRequest) (*app.StockMutationResult, error)
	getItem    func(context.Context, string, string) (*core.Item, error)
}

func (s *stubService) ReceiveStock(ctx context.Context, req app.ReceiveStockRequest) (*app.StockMutationResult, error) {
	return &app.StockMutationResult{Mutation: &core.StockMutationResult{
		TransactionID: "TXN-TEST0001",
		ItemCode:      req.ItemCode,
		WarehouseCode: req.WarehouseCode,
		NewStock:      req.Quantity,
		Status:        core.StatusInStock,
	}}, nil
}

func (s *stubService) IssueStock(ctx context.Context, req app.IssueStockRequest) (*app.StockMutationResult, error) {
	return s.issueStock(ctx, req)
}

func (s *stubService) AdjustStock(context.Context, app.AdjustStockRequest) (*app.StockMutationResult, error) {
	return nil, core.Errorf(core.KindStorage, "boom")
}

func (s *stubService) TransferStock(context.Context, app.TransferStockRequest) (*app.TransferResult, error) {
	return nil, nil
}

func (s *stubService) ReserveStock(context.Context, app.ReservationRequest) (*app.ReserveResult, error) {
	return nil, nil
}

func (s *stubService) ReleaseStock(context.Context, app.ReservationRequest) (*app.ReleaseResult, error) {
	return nil, nil
}

func (s *stubService) GetStockLevels(context.Context) (*app.StockLevelsResult, error) {
	return &app.StockLevelsResult{}, nil
}

func (s *stubService) GetItem(ctx context.Context, itemCode, warehouseCode string) (*core.Item, error) {
	return s.getItem(ctx, itemCode, warehouseCode)
}

func (s *stubService) GetLowStockItems(context.Context) (*app.StockLevelsResult, error) {
	return &app.StockLevelsResult{}, nil
}

func (s *stubService) GetLedger(context.Context, core.LedgerFilter) (*app.LedgerResult, error) {
	return &app.LedgerResult{}, nil
}

func (s *stubService) ListWarehouses(context.Context) (*app.WarehouseListResult, error) {
	return &app.WarehouseListResult{}, nil
}

func (s *stubService) GetWarehouse(context.Context, string) (*core.Warehouse, error) {
	return nil, nil
}

func (s *stubService) CreateWarehouse(context.Context, app.CreateWarehouseRequest) (*core.Warehouse, error) {
	return nil, nil
}

func (s *stubService) ListNotifications(context.Context, bool, int) (*app.NotificationListResult, error) {
	return &app.NotificationListResult{}, nil
}

func (s *stubService) MarkNotificationRead(context.Context, int) error { return nil }

func (s *stubService) StartStockMonitor(context.Context, time.Duration) {}

func newTestHandler(svc app.ApplicationService) http.Handler {
	return NewHandler(svc, nil, "", zap.NewNop())
}

func TestHealth(t *testing.T) {
	h := newTestHandler(&stubService{})
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID header")
	}
}

func TestErrorEnvelope(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", core.Errorf(core.KindValidation, "bad input"), http.StatusBadRequest, "VALIDATION"},
		{"not found", core.Errorf(core.KindNotFound, "no such item"), http.StatusNotFound, "NOT_FOUND"},
		{"insufficient", core.Errorf(core.KindInsufficientStock, "short"), http.StatusConflict, "INSUFFICIENT_STOCK"},
		{"conflict", core.Errorf(core.KindConflict, "contention"), http.StatusConflict, "CONFLICT"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubService{
				issueStock: func(context.Context, app.IssueStockRequest) (*app.StockMutationResult, error) {
					return nil, tc.err
				},
			}
			h := newTestHandler(svc)

			body := `{"item_code":"TEA-GREEN","quantity":"10"}`
			req := httptest.NewRequest(http.MethodPost, "/api/stock/issue", strings.NewReader(body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, rec.Code)
			}
			var resp errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error body: %v", err)
			}
			if resp.Code != tc.wantCode {
				t.Errorf("Expected code %s, got %s", tc.wantCode, resp.Code)
			}
			if resp.RequestID == "" {
				t.Error("Expected request_id in error envelope")
			}
		})
	}
}

func TestStorageErrorHidesDetails(t *testing.T) {
	svc := &stubService{
		issueStock: func(context.Context, app.IssueStockRequest) (*app.StockMutationResult, error) {
			return nil, core.Errorf(core.KindStorage, "pq: secret table missing")
		},
	}
	h := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/stock/issue", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret table") {
		t.Error("Storage error details leaked to the client")
	}
}

func TestMalformedJSONRejected(t *testing.T) {
	h := newTestHandler(&stubService{})
	req := httptest.NewRequest(http.MethodPost, "/api/stock/receive", strings.NewReader(`{"item_code":`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
}

func TestIssueDecodesQuantity(t *testing.T) {
	var got app.IssueStockRequest
	svc := &stubService{
		issueStock: func(_ context.Context, req app.IssueStockRequest) (*app.StockMutationResult, error) {
			got = req
			return &app.StockMutationResult{Mutation: &core.StockMutationResult{
				TransactionID: "TXN-ABCD1234",
				ItemCode:      req.ItemCode,
				Status:        core.StatusInStock,
			}}, nil
		},
	}
	h := newTestHandler(svc)

	body := `{"item_code":"TEA-GREEN","warehouse_code":"WH-RAW","quantity":"12.5"}`
	req := httptest.NewRequest(http.MethodPost, "/api/stock/issue", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if !got.Quantity.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("Expected quantity 12.5, got %s", got.Quantity)
	}
	if got.PerformedBy != "system" {
		t.Errorf("Expected performed_by fallback to system, got %s", got.PerformedBy)
	}
}
