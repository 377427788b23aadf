package models

import "github.com/shopspring/decimal"

// Sale states used by the marketplace flow.
const (
	EstadoVentaCompletada = "Completada"
	EstadoVentaCancelada  = "Cancelada"
	OrigenMarketplace     = "MARKETPLACE"
)

// VentaDetalle is one line item of a sale.
type VentaDetalle struct {
	Producto          int64           `json:"producto"`
	Cantidad          int             `json:"cantidad"`
	PrecioUnitario    decimal.Decimal `json:"precio_unitario"`
	DescuentoAplicado decimal.Decimal `json:"descuento_aplicado"`
}

// VentaRequest is the sale-creation request body. Fecha carries a local
// timestamp truncated to minute precision, monto_total the client estimate
// rounded to two decimal places.
type VentaRequest struct {
	Fecha      string          `json:"fecha"`
	MontoTotal decimal.Decimal `json:"monto_total"`
	Usuario    int64           `json:"usuario"`
	Empresa    int64           `json:"empresa"`
	Estado     string          `json:"estado"`
	Origen     string          `json:"origen"`
	Detalles   []VentaDetalle  `json:"detalles"`
}

// Venta is the backend sale record. MontoTotal is server-computed and is
// authoritative over any client estimate.
type Venta struct {
	ID         int64           `json:"id"`
	Fecha      string          `json:"fecha"`
	MontoTotal decimal.Decimal `json:"monto_total"`
	Usuario    int64           `json:"usuario"`
	Empresa    int64           `json:"empresa"`
	Estado     string          `json:"estado"`
	Origen     string          `json:"origen,omitempty"`
	Detalles   []VentaDetalle  `json:"detalles,omitempty"`
}
