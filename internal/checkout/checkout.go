package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vistamarket/marketplace-gateway/internal/cart"
	"github.com/vistamarket/marketplace-gateway/internal/models"
)

// Client-side precondition failures; no backend call is made for these.
var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrNoIdentity    = errors.New("session identity is incomplete")
	ErrInvalidMetodo = errors.New("unsupported payment method")
)

// PartialError reports a checkout that persisted a sale but failed to
// create its payment. The client performs no compensation: the sale stays
// on the backend without a payment, the cart stays intact, and a retry
// will create a second sale.
type PartialError struct {
	VentaID int64
	Err     error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("sale %d created but payment failed: %v", e.VentaID, e.Err)
}

func (e *PartialError) Unwrap() error {
	return e.Err
}

// Identity is the session identity checkout runs under.
type Identity struct {
	UserID    int64
	EmpresaID int64
}

// Backend is the subset of the ERP client checkout needs.
type Backend interface {
	CreateVenta(ctx context.Context, req models.VentaRequest) (*models.Venta, error)
	CreatePago(ctx context.Context, req models.PagoRequest) (*models.Pago, error)
}

// Confirmation is the result of a completed checkout.
type Confirmation struct {
	Venta *models.Venta `json:"venta"`
	Pago  *models.Pago  `json:"pago"`
}

// Orchestrator turns a cart into a confirmed sale and payment through two
// strictly sequential backend calls. From the caller's perspective the
// pair is atomic: either both succeed and the cart clears, or the cart is
// left untouched.
type Orchestrator struct {
	backend Backend
	log     *slog.Logger
	now     func() time.Time
}

func NewOrchestrator(backend Backend, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		backend: backend,
		log:     log,
		now:     time.Now,
	}
}

// Checkout validates preconditions, creates the sale, then creates the
// payment using the server-returned sale id and server-confirmed total.
// The cart is cleared only after both calls succeed.
func (o *Orchestrator) Checkout(ctx context.Context, c *cart.Cart, id Identity, metodo string) (*Confirmation, error) {
	if !models.ValidMetodoPago(metodo) {
		return nil, ErrInvalidMetodo
	}
	if c.TotalItems() == 0 {
		return nil, ErrEmptyCart
	}
	if id.UserID == 0 || id.EmpresaID == 0 {
		return nil, ErrNoIdentity
	}

	ventaReq := o.buildVenta(c, id)
	venta, err := o.backend.CreateVenta(ctx, ventaReq)
	if err != nil {
		o.log.Error("sale creation failed", "usuario", id.UserID, "error", err)
		return nil, err
	}

	pagoReq := o.buildPago(venta, id, metodo)
	pago, err := o.backend.CreatePago(ctx, pagoReq)
	if err != nil {
		// Known inconsistency window: the sale is already persisted with
		// no payment. The cart stays intact so the user can retry, which
		// creates a second sale.
		o.log.Error("payment creation failed after sale was persisted",
			"venta", venta.ID,
			"usuario", id.UserID,
			"error", err,
		)
		return nil, &PartialError{VentaID: venta.ID, Err: err}
	}

	c.Clear()
	o.log.Info("checkout completed",
		"venta", venta.ID,
		"pago", pago.ID,
		"monto", venta.MontoTotal.StringFixed(2),
		"metodo_pago", metodo,
	)

	return &Confirmation{Venta: venta, Pago: pago}, nil
}

// buildVenta snapshots the cart into a sale-creation request. The declared
// total is the client estimate; the backend recomputes its own.
func (o *Orchestrator) buildVenta(c *cart.Cart, id Identity) models.VentaRequest {
	lines := c.Lines()
	detalles := make([]models.VentaDetalle, len(lines))
	for i, line := range lines {
		detalles[i] = models.VentaDetalle{
			Producto:          line.ProductID,
			Cantidad:          line.Cantidad,
			PrecioUnitario:    line.PrecioUnit.Round(2),
			DescuentoAplicado: line.DescuentoPct.Round(4),
		}
	}

	return models.VentaRequest{
		Fecha:      o.now().Format("2006-01-02T15:04"),
		MontoTotal: c.TotalPrice().Round(2),
		Usuario:    id.UserID,
		Empresa:    id.EmpresaID,
		Estado:     models.EstadoVentaCompletada,
		Origen:     models.OrigenMarketplace,
		Detalles:   detalles,
	}
}

// buildPago references the server-assigned sale id and server-confirmed
// amount, never the client estimate.
func (o *Orchestrator) buildPago(venta *models.Venta, id Identity, metodo string) models.PagoRequest {
	return models.PagoRequest{
		Venta:                 venta.ID,
		Cliente:               id.UserID,
		Empresa:               id.EmpresaID,
		Monto:                 venta.MontoTotal,
		MetodoPago:            metodo,
		ReferenciaTransaccion: fmt.Sprintf("TXN-%s-%d", metodo, o.now().UnixMilli()),
		EstadoPago:            models.EstadoPagoCompletado,
	}
}
