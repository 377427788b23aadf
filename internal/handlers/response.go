package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vistamarket/marketplace-gateway/internal/erp"
)

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response in JSON format
func WriteError(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]string{"error": message}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("failed to encode error response", "error", err)
	}
}

// WriteBackendError turns a failed backend call into a single user-visible
// error payload. Field-level validation detail is surfaced per field with
// display labels; anything else becomes one generic message.
func WriteBackendError(w http.ResponseWriter, err error, logger *slog.Logger) {
	if errors.Is(err, erp.ErrUnavailable) {
		WriteError(w, http.StatusServiceUnavailable, "El servidor no está disponible, intente más tarde", logger)
		return
	}

	var apiErr *erp.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HasFields() {
			campos := make(map[string]string, len(apiErr.Fields))
			for field, msg := range apiErr.Fields {
				campos[erp.FieldLabel(field)] = msg
			}
			WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":  "Datos inválidos",
				"campos": campos,
			}, logger)
			return
		}
		if apiErr.Status == http.StatusNotFound {
			WriteError(w, http.StatusNotFound, "Recurso no encontrado", logger)
			return
		}
		WriteError(w, http.StatusBadGateway, apiErr.Message, logger)
		return
	}

	WriteError(w, http.StatusBadGateway, "Error de comunicación con el servidor", logger)
}
