package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vistamarket/marketplace-gateway/internal/catalog"
	"github.com/vistamarket/marketplace-gateway/internal/erp"
)

// CatalogHandler serves the browse surface: products, categories and
// company detail, proxied through the catalog cache.
type CatalogHandler struct {
	catalog *catalog.Service
	log     *slog.Logger
}

func NewCatalogHandler(svc *catalog.Service, log *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: svc,
		log:     log,
	}
}

// ListProductos handles GET /api/productos, forwarding query filters
// (search, category, page, ...) to the backend.
func (h *CatalogHandler) ListProductos(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalog.ListProductos(r.Context(), filtersFrom(r))
	if err != nil {
		h.log.Error("failed to list products", "error", err)
		WriteBackendError(w, err, h.log)
		return
	}
	WriteJSON(w, http.StatusOK, page, h.log)
}

// GetProducto handles GET /api/productos/{productId}
func (h *CatalogHandler) GetProducto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.log)
		return
	}

	producto, err := h.catalog.GetProducto(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			WriteError(w, http.StatusNotFound, "Producto no encontrado", h.log)
			return
		}
		h.log.Error("failed to get product", "producto", id, "error", err)
		WriteBackendError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, producto, h.log)
}

// ListCategorias handles GET /api/categorias
func (h *CatalogHandler) ListCategorias(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalog.ListCategorias(r.Context(), filtersFrom(r))
	if err != nil {
		h.log.Error("failed to list categories", "error", err)
		WriteBackendError(w, err, h.log)
		return
	}
	WriteJSON(w, http.StatusOK, page, h.log)
}

// GetEmpresa handles GET /api/empresas/{empresaId}
func (h *CatalogHandler) GetEmpresa(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "empresaId"), 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.log)
		return
	}

	empresa, err := h.catalog.GetEmpresa(r.Context(), id)
	if err != nil {
		h.log.Error("failed to get company", "empresa", id, "error", err)
		WriteBackendError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, empresa, h.log)
}

// filtersFrom forwards the first value of each query parameter.
func filtersFrom(r *http.Request) erp.Filters {
	query := r.URL.Query()
	if len(query) == 0 {
		return nil
	}
	filters := make(erp.Filters, len(query))
	for key := range query {
		filters[key] = query.Get(key)
	}
	return filters
}
