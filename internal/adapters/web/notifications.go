package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"inventory-service/internal/core"
)

type notificationResponse struct {
	ID        int       `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	ItemCode  string    `json:"item_code"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func toNotificationResponse(n *core.Notification) notificationResponse {
	return notificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Message:   n.Message,
		ItemCode:  n.ItemCode,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	unreadOnly := q.Get("unread") == "true"
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, "invalid 'limit'", "VALIDATION", http.StatusBadRequest)
			return
		}
		limit = n
	}

	result, err := h.svc.ListNotifications(r.Context(), unreadOnly, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]notificationResponse, len(result.Notifications))
	for i := range result.Notifications {
		out[i] = toNotificationResponse(&result.Notifications[i])
	}
	writeJSON(w, map[string]any{"notifications": out})
}

func (h *Handler) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, r, "invalid notification id", "VALIDATION", http.StatusBadRequest)
		return
	}

	if err := h.svc.MarkNotificationRead(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"id": id, "read": true})
}
