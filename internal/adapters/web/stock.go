package web

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"inventory-service/internal/app"
	"inventory-service/internal/core"
)

// decodeJSON decodes the request body into v, returning false after writing
// a 400 response when the body is malformed.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, "invalid JSON body: "+err.Error(), "VALIDATION", http.StatusBadRequest)
		return false
	}
	return true
}

type mutationResponse struct {
	TransactionID string          `json:"transaction_id"`
	ItemCode      string          `json:"item_code"`
	WarehouseCode string          `json:"warehouse_code"`
	PreviousStock decimal.Decimal `json:"previous_stock"`
	NewStock      decimal.Decimal `json:"new_stock"`
	Status        string          `json:"status"`
	StatusChanged bool            `json:"status_changed"`
}

func toMutationResponse(m *core.StockMutationResult) mutationResponse {
	return mutationResponse{
		TransactionID: m.TransactionID,
		ItemCode:      m.ItemCode,
		WarehouseCode: m.WarehouseCode,
		PreviousStock: m.PreviousStock,
		NewStock:      m.NewStock,
		Status:        string(m.Status),
		StatusChanged: m.StatusChanged,
	}
}

func (h *Handler) receiveStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemCode      string          `json:"item_code"`
		WarehouseCode string          `json:"warehouse_code"`
		Quantity      decimal.Decimal `json:"quantity"`
		UnitCost      decimal.Decimal `json:"unit_cost"`
		Name          string          `json:"name"`
		Category      string          `json:"category"`
		Unit          string          `json:"unit"`
		Shelf         string          `json:"shelf"`
		Bin           string          `json:"bin"`
		MinimumStock  decimal.Decimal `json:"minimum_stock"`
		MaximumStock  decimal.Decimal `json:"maximum_stock"`
		SellingPrice  decimal.Decimal `json:"selling_price"`
		PerformedBy   string          `json:"performed_by"`
		Notes         string          `json:"notes"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.ReceiveStock(r.Context(), app.ReceiveStockRequest{
		ItemCode:      req.ItemCode,
		WarehouseCode: req.WarehouseCode,
		Quantity:      req.Quantity,
		UnitCost:      req.UnitCost,
		Name:          req.Name,
		Category:      req.Category,
		Unit:          req.Unit,
		Shelf:         req.Shelf,
		Bin:           req.Bin,
		MinimumStock:  req.MinimumStock,
		MaximumStock:  req.MaximumStock,
		SellingPrice:  req.SellingPrice,
		PerformedBy:   performedBy(r, req.PerformedBy),
		Notes:         req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, toMutationResponse(result.Mutation))
}

func (h *Handler) issueStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemCode      string          `json:"item_code"`
		WarehouseCode string          `json:"warehouse_code"`
		Quantity      decimal.Decimal `json:"quantity"`
		PerformedBy   string          `json:"performed_by"`
		Notes         string          `json:"notes"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.IssueStock(r.Context(), app.IssueStockRequest{
		ItemCode:      req.ItemCode,
		WarehouseCode: req.WarehouseCode,
		Quantity:      req.Quantity,
		PerformedBy:   performedBy(r, req.PerformedBy),
		Notes:         req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, toMutationResponse(result.Mutation))
}

func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemCode      string          `json:"item_code"`
		WarehouseCode string          `json:"warehouse_code"`
		NewQuantity   decimal.Decimal `json:"new_quantity"`
		PerformedBy   string          `json:"performed_by"`
		Reason        string          `json:"reason"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.AdjustStock(r.Context(), app.AdjustStockRequest{
		ItemCode:      req.ItemCode,
		WarehouseCode: req.WarehouseCode,
		NewQuantity:   req.NewQuantity,
		PerformedBy:   performedBy(r, req.PerformedBy),
		Reason:        req.Reason,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, toMutationResponse(result.Mutation))
}

func (h *Handler) transferStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemCode      string          `json:"item_code"`
		FromWarehouse string          `json:"from_warehouse"`
		ToWarehouse   string          `json:"to_warehouse"`
		Quantity      decimal.Decimal `json:"quantity"`
		PerformedBy   string          `json:"performed_by"`
		Notes         string          `json:"notes"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.TransferStock(r.Context(), app.TransferStockRequest{
		ItemCode:      req.ItemCode,
		FromWarehouse: req.FromWarehouse,
		ToWarehouse:   req.ToWarehouse,
		Quantity:      req.Quantity,
		PerformedBy:   performedBy(r, req.PerformedBy),
		Notes:         req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	t := result.Transfer
	writeJSONStatus(w, http.StatusCreated, map[string]any{
		"out_transaction_id": t.OutTransactionID,
		"in_transaction_id":  t.InTransactionID,
		"item_code":          t.ItemCode,
		"from_warehouse":     t.FromWarehouse,
		"to_warehouse":       t.ToWarehouse,
		"quantity":           t.Quantity,
		"source_stock":       t.SourceStock,
		"dest_stock":         t.DestStock,
		"source_capacity":    t.SourceCapacity,
		"dest_capacity":      t.DestCapacity,
	})
}

type reservationLineRequest struct {
	ItemCode      string          `json:"item_code"`
	WarehouseCode string          `json:"warehouse_code"`
	Quantity      decimal.Decimal `json:"quantity"`
}

type reservationRequest struct {
	OrderReference string                   `json:"order_reference"`
	Lines          []reservationLineRequest `json:"lines"`
	PerformedBy    string                   `json:"performed_by"`
}

func (req reservationRequest) toApp(r *http.Request) app.ReservationRequest {
	lines := make([]core.ReservationLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = core.ReservationLine{
			ItemCode:      l.ItemCode,
			WarehouseCode: l.WarehouseCode,
			Quantity:      l.Quantity,
		}
	}
	return app.ReservationRequest{
		OrderReference: req.OrderReference,
		Lines:          lines,
		PerformedBy:    performedBy(r, req.PerformedBy),
	}
}

func (h *Handler) reserveStock(w http.ResponseWriter, r *http.Request) {
	var req reservationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.ReserveStock(r.Context(), req.toApp(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	lines := make([]map[string]any, len(result.Reservation.Lines))
	for i, l := range result.Reservation.Lines {
		lines[i] = map[string]any{
			"transaction_id": l.TransactionID,
			"item_code":      l.ItemCode,
			"warehouse_code": l.WarehouseCode,
			"quantity":       l.Quantity,
			"new_stock":      l.NewStock,
			"status":         string(l.Status),
		}
	}
	writeJSONStatus(w, http.StatusCreated, map[string]any{
		"order_reference": result.Reservation.OrderReference,
		"lines":           lines,
	})
}

func (h *Handler) releaseStock(w http.ResponseWriter, r *http.Request) {
	var req reservationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.ReleaseStock(r.Context(), req.toApp(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	lines := make([]map[string]any, len(result.Release.Lines))
	for i, l := range result.Release.Lines {
		lines[i] = map[string]any{
			"transaction_id": l.TransactionID,
			"item_code":      l.ItemCode,
			"warehouse_code": l.WarehouseCode,
			"requested":      l.Requested,
			"released":       l.Released,
			"new_stock":      l.NewStock,
			"duplicate":      l.Duplicate,
		}
	}
	writeJSON(w, map[string]any{
		"order_reference": result.Release.OrderReference,
		"lines":           lines,
	})
}
