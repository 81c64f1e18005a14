package web

import (
	"encoding/json"
	"net/http"

	"inventory-service/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeServiceError translates a core error into the JSON error envelope.
// Storage errors are reported as a generic 500 without leaking internals.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	kind := core.KindOf(err)
	status, code := http.StatusInternalServerError, "INTERNAL_ERROR"
	message := err.Error()
	switch kind {
	case core.KindValidation:
		status, code = http.StatusBadRequest, "VALIDATION"
	case core.KindNotFound:
		status, code = http.StatusNotFound, "NOT_FOUND"
	case core.KindInsufficientStock:
		status, code = http.StatusConflict, "INSUFFICIENT_STOCK"
	case core.KindConflict:
		status, code = http.StatusConflict, "CONFLICT"
	default:
		message = "internal server error"
	}
	writeError(w, r, message, code, status)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONStatus writes a JSON response with the given status code.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
