package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/vistamarket/marketplace-gateway/internal/cart"
	"github.com/vistamarket/marketplace-gateway/internal/middleware"
	"github.com/vistamarket/marketplace-gateway/internal/session"
)

// SessionHandler manages session lifecycle. Credential verification is
// the backend's concern; the gateway is reached only with a valid service
// API key and records the identity the frontend authenticated as.
type SessionHandler struct {
	sessions *session.Store
	carts    *cart.Store
	log      *slog.Logger
}

func NewSessionHandler(sessions *session.Store, carts *cart.Store, log *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		carts:    carts,
		log:      log,
	}
}

type sessionResponse struct {
	Token     string    `json:"token"`
	Usuario   int64     `json:"usuario"`
	Empresa   int64     `json:"empresa"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateSession handles POST /api/sesion
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var identity session.Identity
	if err := json.NewDecoder(r.Body).Decode(&identity); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	if !identity.Valid() {
		WriteError(w, http.StatusBadRequest, "usuario and empresa are required", h.log)
		return
	}

	sess := h.sessions.Create(identity)
	h.log.Info("session created",
		"usuario", identity.UserID,
		"empresa", identity.EmpresaID,
		"permisos", len(identity.Permisos),
	)

	WriteJSON(w, http.StatusCreated, sessionResponse{
		Token:     sess.Token,
		Usuario:   sess.Identity.UserID,
		Empresa:   sess.Identity.EmpresaID,
		ExpiresAt: sess.ExpiresAt,
	}, h.log)
}

// DeleteSession handles DELETE /api/sesion, dropping the session and its
// cart.
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())

	h.sessions.Delete(sess.Token)
	h.carts.Drop(sess.Token)
	h.log.Info("session ended", "usuario", sess.Identity.UserID)

	w.WriteHeader(http.StatusNoContent)
}
