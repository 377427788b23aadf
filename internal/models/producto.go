package models

import "github.com/shopspring/decimal"

// Producto mirrors the backend product payload. Precio fields are decimals
// serialized as strings on the wire, so amounts keep exact precision.
type Producto struct {
	ID          int64           `json:"id"`
	Nombre      string          `json:"nombre"`
	Descripcion string          `json:"descripcion,omitempty"`
	PrecioVenta decimal.Decimal `json:"precio_venta"`
	Descuento   decimal.Decimal `json:"descuento"`
	Stock       int             `json:"stock"`
	Categoria   int64           `json:"categoria,omitempty"`
	Empresa     int64           `json:"empresa,omitempty"`
	Activo      bool            `json:"activo"`
}

// Categoria mirrors the backend product category payload.
type Categoria struct {
	ID          int64  `json:"id"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion,omitempty"`
	Empresa     int64  `json:"empresa,omitempty"`
}

// Empresa mirrors the backend company payload.
type Empresa struct {
	ID        int64  `json:"id"`
	Nombre    string `json:"nombre"`
	NIT       string `json:"nit,omitempty"`
	Direccion string `json:"direccion,omitempty"`
	Telefono  string `json:"telefono,omitempty"`
}

// Page is the backend's pagination envelope for list endpoints.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
