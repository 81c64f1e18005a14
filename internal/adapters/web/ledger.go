package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"inventory-service/internal/core"
)

type transactionResponse struct {
	TransactionID  string          `json:"transaction_id"`
	ItemCode       string          `json:"item_code"`
	WarehouseCode  string          `json:"warehouse_code"`
	Type           string          `json:"type"`
	Quantity       decimal.Decimal `json:"quantity"`
	PreviousStock  decimal.Decimal `json:"previous_stock"`
	NewStock       decimal.Decimal `json:"new_stock"`
	FromWarehouse  *string         `json:"from_warehouse,omitempty"`
	ToWarehouse    *string         `json:"to_warehouse,omitempty"`
	OrderReference *string         `json:"order_reference,omitempty"`
	ReferenceID    *string         `json:"reference_id,omitempty"`
	PerformedBy    string          `json:"performed_by"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (h *Handler) queryLedger(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := core.LedgerFilter{
		ItemCode:       q.Get("item_code"),
		Type:           core.TransactionType(q.Get("type")),
		OrderReference: q.Get("order_reference"),
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, r, "invalid 'from' timestamp, expected RFC 3339", "VALIDATION", http.StatusBadRequest)
			return
		}
		filter.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, r, "invalid 'to' timestamp, expected RFC 3339", "VALIDATION", http.StatusBadRequest)
			return
		}
		filter.To = t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, "invalid 'limit'", "VALIDATION", http.StatusBadRequest)
			return
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, "invalid 'offset'", "VALIDATION", http.StatusBadRequest)
			return
		}
		filter.Offset = n
	}

	result, err := h.svc.GetLedger(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]transactionResponse, len(result.Transactions))
	for i, t := range result.Transactions {
		out[i] = transactionResponse{
			TransactionID:  t.TransactionID,
			ItemCode:       t.ItemCode,
			WarehouseCode:  t.WarehouseCode,
			Type:           string(t.Type),
			Quantity:       t.Quantity,
			PreviousStock:  t.PreviousStock,
			NewStock:       t.NewStock,
			FromWarehouse:  t.FromWarehouse,
			ToWarehouse:    t.ToWarehouse,
			OrderReference: t.OrderReference,
			ReferenceID:    t.ReferenceID,
			PerformedBy:    t.PerformedBy,
			Notes:          t.Notes,
			CreatedAt:      t.CreatedAt,
		}
	}
	writeJSON(w, map[string]any{"transactions": out})
}
