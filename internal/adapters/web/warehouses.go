package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"inventory-service/internal/app"
	"inventory-service/internal/core"
)

type warehouseResponse struct {
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	Type              string          `json:"type"`
	Location          string          `json:"location,omitempty"`
	CapacityTotal     decimal.Decimal `json:"capacity_total"`
	CapacityUsed      decimal.Decimal `json:"capacity_used"`
	AvailableCapacity decimal.Decimal `json:"available_capacity"`
	Utilization       decimal.Decimal `json:"utilization_percent"`
}

func toWarehouseResponse(wh *core.Warehouse) warehouseResponse {
	return warehouseResponse{
		Code:              wh.Code,
		Name:              wh.Name,
		Type:              string(wh.Type),
		Location:          wh.Location,
		CapacityTotal:     wh.CapacityTotal,
		CapacityUsed:      wh.CapacityUsed,
		AvailableCapacity: wh.AvailableCapacity(),
		Utilization:       wh.Utilization(),
	}
}

func (h *Handler) listWarehouses(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListWarehouses(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]warehouseResponse, len(result.Warehouses))
	for i := range result.Warehouses {
		out[i] = toWarehouseResponse(&result.Warehouses[i])
	}
	writeJSON(w, map[string]any{"warehouses": out})
}

func (h *Handler) getWarehouse(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	wh, err := h.svc.GetWarehouse(r.Context(), code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, toWarehouseResponse(wh))
}

func (h *Handler) createWarehouse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code          string          `json:"code"`
		Name          string          `json:"name"`
		Type          string          `json:"type"`
		Location      string          `json:"location"`
		CapacityTotal decimal.Decimal `json:"capacity_total"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	wh, err := h.svc.CreateWarehouse(r.Context(), app.CreateWarehouseRequest{
		Code:          req.Code,
		Name:          req.Name,
		Type:          req.Type,
		Location:      req.Location,
		CapacityTotal: req.CapacityTotal,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, toWarehouseResponse(wh))
}
