package http

import (
	"encoding/json"
	"net/http"

	"equiplend-backend/internal/domain"
	"equiplend-backend/internal/logger"
)

type errorBody struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// writeError maps the domain error taxonomy onto HTTP status codes.
// Untyped errors are internal: the message is not leaked to the client.
func writeError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)

	var body errorBody
	body.Error.Kind = string(kind)
	body.Error.Message = err.Error()

	status := http.StatusInternalServerError
	switch kind {
	case domain.KindValidation, domain.KindInsufficientCredit, domain.KindInsufficientStock:
		status = http.StatusBadRequest
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindConflict:
		status = http.StatusConflict
	case domain.KindInternal:
		logger.Error("Internal error", "error", err)
		body.Error.Message = "internal error"
	}
	writeJSON(w, status, body)
}
