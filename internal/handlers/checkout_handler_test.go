package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/vistamarket/marketplace-gateway/internal/cart"
	"github.com/vistamarket/marketplace-gateway/internal/checkout"
	"github.com/vistamarket/marketplace-gateway/internal/erp"
	"github.com/vistamarket/marketplace-gateway/internal/middleware"
	"github.com/vistamarket/marketplace-gateway/internal/models"
	"github.com/vistamarket/marketplace-gateway/internal/session"
	"github.com/vistamarket/marketplace-gateway/pkg/logger"
)

type fakeCheckoutBackend struct {
	ventaErr error
	pagoErr  error
	ventas   int
	pagos    int
}

func (f *fakeCheckoutBackend) CreateVenta(ctx context.Context, req models.VentaRequest) (*models.Venta, error) {
	f.ventas++
	if f.ventaErr != nil {
		return nil, f.ventaErr
	}
	return &models.Venta{ID: 55, MontoTotal: req.MontoTotal, Estado: req.Estado}, nil
}

func (f *fakeCheckoutBackend) CreatePago(ctx context.Context, req models.PagoRequest) (*models.Pago, error) {
	f.pagos++
	if f.pagoErr != nil {
		return nil, f.pagoErr
	}
	return &models.Pago{ID: 77, Venta: req.Venta, Monto: req.Monto}, nil
}

type checkoutTestEnv struct {
	router  *chi.Mux
	token   string
	cart    *cart.Cart
	backend *fakeCheckoutBackend
}

func newCheckoutTestEnv(t *testing.T, identity session.Identity) *checkoutTestEnv {
	t.Helper()

	log := logger.New("error")
	sessions := session.NewStore(time.Hour)
	sess := sessions.Create(identity)
	carts := cart.NewStore()

	backend := &fakeCheckoutBackend{}
	orchestrator := checkout.NewOrchestrator(backend, log)
	handler := NewCheckoutHandler(carts, orchestrator, log)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionAuth(sessions))
		r.Post("/api/checkout", handler.Checkout)
	})

	return &checkoutTestEnv{
		router:  r,
		token:   sess.Token,
		cart:    carts.Get(sess.Token),
		backend: backend,
	}
}

func (e *checkoutTestEnv) post(t *testing.T, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewReader(data))
	req.Header.Set("Authorization", "Bearer "+e.token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func fillCart(c *cart.Cart) {
	c.Add(cart.Product{
		ID:         7,
		Nombre:     "Monitor",
		PrecioUnit: decimal.RequireFromString("100.00"),
		Stock:      5,
	}, 2)
}

func TestCheckoutHandler_Success(t *testing.T) {
	env := newCheckoutTestEnv(t, session.Identity{UserID: 11, EmpresaID: 3})
	fillCart(env.cart)

	w := env.post(t, checkoutRequest{MetodoPago: models.MetodoPagoStripe})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var confirmation checkout.Confirmation
	if err := json.NewDecoder(w.Body).Decode(&confirmation); err != nil {
		t.Fatalf("failed to decode confirmation: %v", err)
	}
	if confirmation.Venta.ID != 55 || confirmation.Pago.ID != 77 {
		t.Errorf("confirmation = venta %d pago %d, want 55/77", confirmation.Venta.ID, confirmation.Pago.ID)
	}
	if got := env.cart.TotalItems(); got != 0 {
		t.Errorf("cart items after checkout = %d, want 0", got)
	}
}

func TestCheckoutHandler_EmptyCart(t *testing.T) {
	env := newCheckoutTestEnv(t, session.Identity{UserID: 11, EmpresaID: 3})

	w := env.post(t, checkoutRequest{MetodoPago: models.MetodoPagoQR})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if env.backend.ventas != 0 || env.backend.pagos != 0 {
		t.Errorf("backend calls = %d/%d, want none", env.backend.ventas, env.backend.pagos)
	}
}

func TestCheckoutHandler_IncompleteIdentity(t *testing.T) {
	// Session exists but carries no company id
	env := newCheckoutTestEnv(t, session.Identity{UserID: 11})
	fillCart(env.cart)

	w := env.post(t, checkoutRequest{MetodoPago: models.MetodoPagoStripe})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if env.backend.ventas != 0 {
		t.Errorf("sale calls = %d, want 0", env.backend.ventas)
	}
}

func TestCheckoutHandler_InvalidMethod(t *testing.T) {
	env := newCheckoutTestEnv(t, session.Identity{UserID: 11, EmpresaID: 3})
	fillCart(env.cart)

	w := env.post(t, checkoutRequest{MetodoPago: "EFECTIVO"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if env.backend.ventas != 0 {
		t.Errorf("sale calls = %d, want 0", env.backend.ventas)
	}
}

func TestCheckoutHandler_BackendFieldErrors(t *testing.T) {
	env := newCheckoutTestEnv(t, session.Identity{UserID: 11, EmpresaID: 3})
	fillCart(env.cart)
	env.backend.ventaErr = &erp.APIError{
		Status:  http.StatusBadRequest,
		Message: "validation failed",
		Fields:  map[string]string{"monto_total": "Este campo es requerido."},
	}

	w := env.post(t, checkoutRequest{MetodoPago: models.MetodoPagoStripe})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var resp struct {
		Error  string            `json:"error"`
		Campos map[string]string `json:"campos"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Campos["Monto total"] != "Este campo es requerido." {
		t.Errorf("campos = %v, want labeled field message", resp.Campos)
	}
	if got := env.cart.TotalItems(); got != 2 {
		t.Errorf("cart items = %d, want 2 (unchanged)", got)
	}
}

func TestCheckoutHandler_PartialFailure(t *testing.T) {
	env := newCheckoutTestEnv(t, session.Identity{UserID: 11, EmpresaID: 3})
	fillCart(env.cart)
	env.backend.pagoErr = errors.New("gateway timeout")

	w := env.post(t, checkoutRequest{MetodoPago: models.MetodoPagoQR})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadGateway)
	}

	var resp struct {
		Error string `json:"error"`
		Venta int64  `json:"venta"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Venta != 55 {
		t.Errorf("venta = %d, want 55 (persisted sale id surfaced)", resp.Venta)
	}
	if got := env.cart.TotalItems(); got != 2 {
		t.Errorf("cart items = %d, want 2 (left for retry)", got)
	}
}
