// Package web is the HTTP adapter. It translates JSON requests into
// application service calls and core errors into the JSON error envelope.
package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"inventory-service/internal/app"
)

const maxRequestBody = 1 << 20 // 1 MiB

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	jwtSecret string
	logger    *zap.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins []string, jwtSecret string, logger *zap.Logger) http.Handler {
	h := &Handler{svc: svc, jwtSecret: jwtSecret, logger: logger}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recoverer(logger))
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(maxRequestBody))

	r.Get("/api/health", h.health)

	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		// Stock mutations
		r.Post("/api/stock/receive", h.receiveStock)
		r.Post("/api/stock/issue", h.issueStock)
		r.Post("/api/stock/adjust", h.adjustStock)
		r.Post("/api/stock/transfer", h.transferStock)
		r.Post("/api/stock/reserve", h.reserveStock)
		r.Post("/api/stock/release", h.releaseStock)

		// Items
		r.Get("/api/items", h.listItems)
		r.Get("/api/items/low-stock", h.listLowStockItems)
		r.Get("/api/items/{code}", h.getItem)

		// Ledger
		r.Get("/api/ledger", h.queryLedger)

		// Warehouses
		r.Get("/api/warehouses", h.listWarehouses)
		r.Post("/api/warehouses", h.createWarehouse)
		r.Get("/api/warehouses/{code}", h.getWarehouse)

		// Notifications
		r.Get("/api/notifications", h.listNotifications)
		r.Post("/api/notifications/{id}/read", h.markNotificationRead)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// performedBy resolves the acting user: the request field when present,
// otherwise the authenticated subject, otherwise "system".
func performedBy(r *http.Request, field string) string {
	if field != "" {
		return field
	}
	if claims := authFromContext(r.Context()); claims != nil && claims.Subject != "" {
		return claims.Subject
	}
	return "system"
}
