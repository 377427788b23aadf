package models

// PermisoRequest is the request body for creating or updating a
// role-based-access-control permission on the backend.
type PermisoRequest struct {
	Codigo      string `json:"codigo"`
	Descripcion string `json:"descripcion,omitempty"`
	Rol         int64  `json:"rol"`
	Activo      bool   `json:"activo"`
}

// Permiso is the backend permission record.
type Permiso struct {
	ID          int64  `json:"id"`
	Codigo      string `json:"codigo"`
	Descripcion string `json:"descripcion,omitempty"`
	Rol         int64  `json:"rol"`
	Activo      bool   `json:"activo"`
}
