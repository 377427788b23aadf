package models

import "github.com/shopspring/decimal"

// Simulated payment methods accepted by the marketplace checkout.
const (
	MetodoPagoStripe = "STRIPE"
	MetodoPagoQR     = "QR"

	EstadoPagoCompletado = "COMPLETADO"
)

// PagoRequest is the payment-creation request body. Monto must be the
// server-confirmed sale total, not the client estimate.
type PagoRequest struct {
	Venta                 int64           `json:"venta"`
	Cliente               int64           `json:"cliente"`
	Empresa               int64           `json:"empresa"`
	Monto                 decimal.Decimal `json:"monto"`
	MetodoPago            string          `json:"metodo_pago"`
	ReferenciaTransaccion string          `json:"referencia_transaccion"`
	EstadoPago            string          `json:"estado_pago"`
}

// Pago is the backend payment record.
type Pago struct {
	ID                    int64           `json:"id"`
	Venta                 int64           `json:"venta"`
	Cliente               int64           `json:"cliente"`
	Empresa               int64           `json:"empresa"`
	Monto                 decimal.Decimal `json:"monto"`
	MetodoPago            string          `json:"metodo_pago"`
	ReferenciaTransaccion string          `json:"referencia_transaccion"`
	EstadoPago            string          `json:"estado_pago"`
}

// ValidMetodoPago reports whether the given payment method tag is one of
// the simulated methods the checkout accepts.
func ValidMetodoPago(metodo string) bool {
	return metodo == MetodoPagoStripe || metodo == MetodoPagoQR
}
