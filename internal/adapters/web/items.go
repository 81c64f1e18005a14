package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"inventory-service/internal/core"
)

type itemResponse struct {
	ItemCode      string          `json:"item_code"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Unit          string          `json:"unit"`
	WarehouseCode string          `json:"warehouse_code"`
	Shelf         string          `json:"shelf,omitempty"`
	Bin           string          `json:"bin,omitempty"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	MinimumStock  decimal.Decimal `json:"minimum_stock"`
	MaximumStock  decimal.Decimal `json:"maximum_stock"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	Status        string          `json:"status"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func toItemResponse(it *core.Item) itemResponse {
	return itemResponse{
		ItemCode:      it.ItemCode,
		Name:          it.Name,
		Category:      string(it.Category),
		Unit:          it.Unit,
		WarehouseCode: it.WarehouseCode,
		Shelf:         it.Shelf,
		Bin:           it.Bin,
		CurrentStock:  it.CurrentStock,
		MinimumStock:  it.MinimumStock,
		MaximumStock:  it.MaximumStock,
		UnitCost:      it.UnitCost,
		SellingPrice:  it.SellingPrice,
		Status:        string(it.Status),
		UpdatedAt:     it.UpdatedAt,
	}
}

func toItemResponses(items []core.Item) []itemResponse {
	out := make([]itemResponse, len(items))
	for i := range items {
		out[i] = toItemResponse(&items[i])
	}
	return out
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetStockLevels(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"items": toItemResponses(result.Items)})
}

func (h *Handler) listLowStockItems(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetLowStockItems(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"items": toItemResponses(result.Items)})
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	warehouse := r.URL.Query().Get("warehouse")

	item, err := h.svc.GetItem(r.Context(), code, warehouse)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, toItemResponse(item))
}
