package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/vistamarket/marketplace-gateway/internal/middleware"
	"github.com/vistamarket/marketplace-gateway/internal/prefs"
)

// PrefsHandler reads and writes the per-user theme preferences.
type PrefsHandler struct {
	store prefs.Store
	log   *slog.Logger
}

func NewPrefsHandler(store prefs.Store, log *slog.Logger) *PrefsHandler {
	return &PrefsHandler{
		store: store,
		log:   log,
	}
}

// GetPrefs handles GET /api/preferencias. Users who never saved a theme
// get the defaults.
func (h *PrefsHandler) GetPrefs(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())

	theme, err := h.store.Get(r.Context(), sess.Identity.UserID)
	if err != nil {
		h.log.Error("failed to load preferences", "usuario", sess.Identity.UserID, "error", err)
		WriteError(w, http.StatusInternalServerError, "No se pudieron cargar las preferencias", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, theme, h.log)
}

// SavePrefs handles PUT /api/preferencias, an explicit save.
func (h *PrefsHandler) SavePrefs(w http.ResponseWriter, r *http.Request) {
	var theme prefs.Theme
	if err := json.NewDecoder(r.Body).Decode(&theme); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	sess, _ := middleware.SessionFrom(r.Context())
	if err := h.store.Set(r.Context(), sess.Identity.UserID, theme); err != nil {
		h.log.Error("failed to save preferences", "usuario", sess.Identity.UserID, "error", err)
		WriteError(w, http.StatusInternalServerError, "No se pudieron guardar las preferencias", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, theme, h.log)
}

// ResetPrefs handles DELETE /api/preferencias, restoring the defaults.
func (h *PrefsHandler) ResetPrefs(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())

	if err := h.store.Reset(r.Context(), sess.Identity.UserID); err != nil {
		h.log.Error("failed to reset preferences", "usuario", sess.Identity.UserID, "error", err)
		WriteError(w, http.StatusInternalServerError, "No se pudieron restablecer las preferencias", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, prefs.Defaults(), h.log)
}
