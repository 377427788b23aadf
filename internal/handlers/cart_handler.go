package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vistamarket/marketplace-gateway/internal/cart"
	"github.com/vistamarket/marketplace-gateway/internal/catalog"
	"github.com/vistamarket/marketplace-gateway/internal/middleware"
	"github.com/vistamarket/marketplace-gateway/internal/models"
)

// productGetter is the slice of the catalog the cart handler needs.
type productGetter interface {
	GetProducto(ctx context.Context, id int64) (*models.Producto, error)
}

// CartHandler exposes the session cart over HTTP.
type CartHandler struct {
	carts   *cart.Store
	catalog productGetter
	log     *slog.Logger
}

func NewCartHandler(carts *cart.Store, catalog productGetter, log *slog.Logger) *CartHandler {
	return &CartHandler{
		carts:   carts,
		catalog: catalog,
		log:     log,
	}
}

type addItemRequest struct {
	ProductoID int64 `json:"producto_id"`
	Cantidad   int   `json:"cantidad"`
}

type updateItemRequest struct {
	Cantidad int `json:"cantidad"`
}

type cartItemView struct {
	ProductoID     int64  `json:"producto_id"`
	Nombre         string `json:"nombre"`
	PrecioUnitario string `json:"precio_unitario"`
	Descuento      string `json:"descuento"`
	Stock          int    `json:"stock"`
	Cantidad       int    `json:"cantidad"`
	Subtotal       string `json:"subtotal"`
}

type cartView struct {
	Items      []cartItemView `json:"items"`
	TotalItems int            `json:"total_items"`
	Total      string         `json:"total"`
}

// GetCart handles GET /api/carrito
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	c := h.sessionCart(r)
	WriteJSON(w, http.StatusOK, viewOf(c), h.log)
}

// AddItem handles POST /api/carrito/items. The product's price, discount
// and stock ceiling are taken from the catalog at add time; quantities
// beyond stock are silently clamped by the cart.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}
	if req.ProductoID <= 0 {
		WriteError(w, http.StatusBadRequest, "producto_id is required", h.log)
		return
	}
	if req.Cantidad == 0 {
		req.Cantidad = 1
	}

	producto, err := h.catalog.GetProducto(r.Context(), req.ProductoID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			WriteError(w, http.StatusNotFound, "Producto no encontrado", h.log)
			return
		}
		h.log.Error("failed to fetch product for cart", "producto", req.ProductoID, "error", err)
		WriteBackendError(w, err, h.log)
		return
	}

	if !producto.Activo || producto.Stock < 1 {
		WriteError(w, http.StatusConflict, "Producto no disponible", h.log)
		return
	}

	c := h.sessionCart(r)
	c.Add(cart.Product{
		ID:           producto.ID,
		Nombre:       producto.Nombre,
		PrecioUnit:   producto.PrecioVenta,
		DescuentoPct: producto.Descuento,
		Stock:        producto.Stock,
	}, req.Cantidad)

	WriteJSON(w, http.StatusOK, viewOf(c), h.log)
}

// UpdateItem handles PUT /api/carrito/items/{productId}. A quantity below
// one removes the line; this is the caller-side policy layered on top of
// the cart, which itself only clamps.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productIDParam(w, r)
	if !ok {
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	c := h.sessionCart(r)
	if req.Cantidad < 1 {
		c.Remove(productID)
		WriteJSON(w, http.StatusOK, viewOf(c), h.log)
		return
	}

	if !c.UpdateQuantity(productID, req.Cantidad) {
		WriteError(w, http.StatusNotFound, "El producto no está en el carrito", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, viewOf(c), h.log)
}

// RemoveItem handles DELETE /api/carrito/items/{productId}. Removing an
// absent line is not an error.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productIDParam(w, r)
	if !ok {
		return
	}

	c := h.sessionCart(r)
	c.Remove(productID)
	WriteJSON(w, http.StatusOK, viewOf(c), h.log)
}

// ClearCart handles DELETE /api/carrito
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	c := h.sessionCart(r)
	c.Clear()
	WriteJSON(w, http.StatusOK, viewOf(c), h.log)
}

func (h *CartHandler) sessionCart(r *http.Request) *cart.Cart {
	sess, _ := middleware.SessionFrom(r.Context())
	return h.carts.Get(sess.Token)
}

func (h *CartHandler) productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "productId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.log)
		return 0, false
	}
	return id, true
}

// viewOf renders the cart for presentation: amounts are rounded to two
// decimals here and nowhere earlier.
func viewOf(c *cart.Cart) cartView {
	lines := c.Lines()
	items := make([]cartItemView, len(lines))
	for i, line := range lines {
		items[i] = cartItemView{
			ProductoID:     line.ProductID,
			Nombre:         line.Nombre,
			PrecioUnitario: line.PrecioUnit.StringFixed(2),
			Descuento:      line.DescuentoPct.String(),
			Stock:          line.Stock,
			Cantidad:       line.Cantidad,
			Subtotal:       line.Subtotal().StringFixed(2),
		}
	}

	return cartView{
		Items:      items,
		TotalItems: c.TotalItems(),
		Total:      c.TotalPrice().StringFixed(2),
	}
}
