package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vistamarket/marketplace-gateway/internal/models"
)

// permisoBackend is the slice of the ERP client RBAC management needs.
type permisoBackend interface {
	CreatePermission(ctx context.Context, req models.PermisoRequest) (*models.Permiso, error)
	UpdatePermission(ctx context.Context, id int64, req models.PermisoRequest) (*models.Permiso, error)
}

// PermisoHandler proxies RBAC permission management to the backend.
type PermisoHandler struct {
	backend permisoBackend
	log     *slog.Logger
}

func NewPermisoHandler(backend permisoBackend, log *slog.Logger) *PermisoHandler {
	return &PermisoHandler{
		backend: backend,
		log:     log,
	}
}

// CreatePermiso handles POST /api/permisos
func (h *PermisoHandler) CreatePermiso(w http.ResponseWriter, r *http.Request) {
	var req models.PermisoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}
	if req.Codigo == "" || req.Rol == 0 {
		WriteError(w, http.StatusBadRequest, "codigo and rol are required", h.log)
		return
	}

	permiso, err := h.backend.CreatePermission(r.Context(), req)
	if err != nil {
		h.log.Error("failed to create permission", "codigo", req.Codigo, "error", err)
		WriteBackendError(w, err, h.log)
		return
	}

	h.log.Info("permission created", "permiso", permiso.ID, "codigo", permiso.Codigo)
	WriteJSON(w, http.StatusCreated, permiso, h.log)
}

// UpdatePermiso handles PUT /api/permisos/{permisoId}
func (h *PermisoHandler) UpdatePermiso(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "permisoId"), 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.log)
		return
	}

	var req models.PermisoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	permiso, err := h.backend.UpdatePermission(r.Context(), id, req)
	if err != nil {
		h.log.Error("failed to update permission", "permiso", id, "error", err)
		WriteBackendError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, permiso, h.log)
}
