package erp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when the backend answers 404 for a resource read.
var ErrNotFound = errors.New("resource not found")

// APIError is a failed backend call. When the backend returns field-level
// validation detail, Fields maps each field name to the first message for
// that field; otherwise only Message is set.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for field, msg := range e.Fields {
			parts = append(parts, fmt.Sprintf("%s: %s", FieldLabel(field), msg))
		}
		return fmt.Sprintf("backend validation failed (%d): %s", e.Status, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("backend error (%d): %s", e.Status, e.Message)
}

// HasFields reports whether the error carries per-field validation detail.
func (e *APIError) HasFields() bool {
	return len(e.Fields) > 0
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == 404
}

// fieldLabels maps backend field names to display labels. Known fields
// only; unknown fields fall back to the raw name.
var fieldLabels = map[string]string{
	"fecha":                  "Fecha",
	"monto_total":            "Monto total",
	"monto":                  "Monto",
	"usuario":                "Usuario",
	"cliente":                "Cliente",
	"empresa":                "Empresa",
	"estado":                 "Estado",
	"origen":                 "Origen",
	"detalles":               "Detalle de venta",
	"producto":               "Producto",
	"cantidad":               "Cantidad",
	"precio_unitario":        "Precio unitario",
	"descuento_aplicado":     "Descuento aplicado",
	"venta":                  "Venta",
	"metodo_pago":            "Método de pago",
	"referencia_transaccion": "Referencia de transacción",
	"estado_pago":            "Estado del pago",
	"codigo":                 "Código",
	"descripcion":            "Descripción",
	"rol":                    "Rol",
}

// FieldLabel returns the display label for a backend field name.
func FieldLabel(field string) string {
	if label, ok := fieldLabels[field]; ok {
		return label
	}
	return field
}

// decodeAPIError interprets a non-2xx backend response body. The backend
// reports validation failures as {"field": ["message", ...]} and other
// failures as {"detail": "message"}; anything else is passed through as a
// generic message.
func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		apiErr.Message = genericMessage(status, body)
		return apiErr
	}

	if detail, ok := raw["detail"]; ok {
		var msg string
		if json.Unmarshal(detail, &msg) == nil && msg != "" {
			apiErr.Message = msg
			return apiErr
		}
	}

	fields := make(map[string]string)
	for field, val := range raw {
		var msgs []string
		if json.Unmarshal(val, &msgs) == nil && len(msgs) > 0 {
			fields[field] = msgs[0]
			continue
		}
		var msg string
		if json.Unmarshal(val, &msg) == nil && msg != "" {
			fields[field] = msg
		}
	}
	if len(fields) > 0 {
		apiErr.Fields = fields
		apiErr.Message = "validation failed"
		return apiErr
	}

	apiErr.Message = genericMessage(status, body)
	return apiErr
}

func genericMessage(status int, body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if len(trimmed) > 200 {
		trimmed = trimmed[:200]
	}
	if trimmed == "" {
		return fmt.Sprintf("unexpected status %d", status)
	}
	return trimmed
}
