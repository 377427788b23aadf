package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vistamarket/marketplace-gateway/internal/cart"
	"github.com/vistamarket/marketplace-gateway/internal/checkout"
	"github.com/vistamarket/marketplace-gateway/internal/middleware"
)

// CheckoutHandler drives the checkout orchestrator for the session cart.
type CheckoutHandler struct {
	carts        *cart.Store
	orchestrator *checkout.Orchestrator
	log          *slog.Logger
}

func NewCheckoutHandler(carts *cart.Store, orchestrator *checkout.Orchestrator, log *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		carts:        carts,
		orchestrator: orchestrator,
		log:          log,
	}
}

type checkoutRequest struct {
	MetodoPago string `json:"metodo_pago"`
}

// Checkout handles POST /api/checkout. On success the cart has been
// cleared and the confirmation carries the persisted sale and payment.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	sess, _ := middleware.SessionFrom(r.Context())
	c := h.carts.Get(sess.Token)
	identity := checkout.Identity{
		UserID:    sess.Identity.UserID,
		EmpresaID: sess.Identity.EmpresaID,
	}

	confirmation, err := h.orchestrator.Checkout(r.Context(), c, identity, req.MetodoPago)
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, confirmation, h.log)
}

func (h *CheckoutHandler) writeCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		WriteError(w, http.StatusBadRequest, "El carrito está vacío", h.log)
	case errors.Is(err, checkout.ErrNoIdentity):
		WriteError(w, http.StatusBadRequest, "La sesión no tiene usuario o empresa asociados", h.log)
	case errors.Is(err, checkout.ErrInvalidMetodo):
		WriteError(w, http.StatusBadRequest, "Método de pago no soportado", h.log)
	default:
		var partial *checkout.PartialError
		if errors.As(err, &partial) {
			// The sale exists on the backend without a payment; the cart
			// was left intact so the user can retry.
			WriteJSON(w, http.StatusBadGateway, map[string]interface{}{
				"error": "La venta fue registrada pero el pago falló, intente nuevamente",
				"venta": partial.VentaID,
			}, h.log)
			return
		}
		WriteBackendError(w, err, h.log)
	}
}
