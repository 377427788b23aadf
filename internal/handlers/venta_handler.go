package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vistamarket/marketplace-gateway/internal/erp"
	"github.com/vistamarket/marketplace-gateway/internal/middleware"
	"github.com/vistamarket/marketplace-gateway/internal/models"
)

// ventaBackend is the slice of the ERP client the sale handler needs.
type ventaBackend interface {
	FetchVentas(ctx context.Context, filters erp.Filters) (*models.Page[models.Venta], error)
	GetVentaByID(ctx context.Context, id int64) (*models.Venta, error)
	CancelarVenta(ctx context.Context, id int64) (*models.Venta, error)
	DeleteVenta(ctx context.Context, id int64) error
}

// VentaHandler proxies sale management reads and mutations. Cancel and
// delete trigger stock reconciliation on the backend.
type VentaHandler struct {
	backend ventaBackend
	log     *slog.Logger
}

func NewVentaHandler(backend ventaBackend, log *slog.Logger) *VentaHandler {
	return &VentaHandler{
		backend: backend,
		log:     log,
	}
}

// ListVentas handles GET /api/ventas, scoped to the session's company.
func (h *VentaHandler) ListVentas(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())

	filters := filtersFrom(r)
	if filters == nil {
		filters = erp.Filters{}
	}
	filters["empresa"] = strconv.FormatInt(sess.Identity.EmpresaID, 10)

	page, err := h.backend.FetchVentas(r.Context(), filters)
	if err != nil {
		h.log.Error("failed to list sales", "empresa", sess.Identity.EmpresaID, "error", err)
		WriteBackendError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, page, h.log)
}

// GetVenta handles GET /api/ventas/{ventaId}
func (h *VentaHandler) GetVenta(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ventaIDParam(w, r)
	if !ok {
		return
	}

	venta, err := h.backend.GetVentaByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, erp.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Venta no encontrada", h.log)
			return
		}
		h.log.Error("failed to get sale", "venta", id, "error", err)
		WriteBackendError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, venta, h.log)
}

// CancelarVenta handles POST /api/ventas/{ventaId}/cancelar
func (h *VentaHandler) CancelarVenta(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ventaIDParam(w, r)
	if !ok {
		return
	}

	venta, err := h.backend.CancelarVenta(r.Context(), id)
	if err != nil {
		if errors.Is(err, erp.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Venta no encontrada", h.log)
			return
		}
		h.log.Error("failed to cancel sale", "venta", id, "error", err)
		WriteBackendError(w, err, h.log)
		return
	}

	h.log.Info("sale cancelled", "venta", id)
	WriteJSON(w, http.StatusOK, venta, h.log)
}

// DeleteVenta handles DELETE /api/ventas/{ventaId}
func (h *VentaHandler) DeleteVenta(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ventaIDParam(w, r)
	if !ok {
		return
	}

	if err := h.backend.DeleteVenta(r.Context(), id); err != nil {
		if errors.Is(err, erp.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Venta no encontrada", h.log)
			return
		}
		h.log.Error("failed to delete sale", "venta", id, "error", err)
		WriteBackendError(w, err, h.log)
		return
	}

	h.log.Info("sale deleted", "venta", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *VentaHandler) ventaIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "ventaId"), 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.log)
		return 0, false
	}
	return id, true
}
