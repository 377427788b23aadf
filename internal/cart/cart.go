package cart

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Product describes the catalog data a cart line is built from. Stock is
// the authoritative ceiling supplied by the backend at fetch time.
type Product struct {
	ID           int64
	Nombre       string
	PrecioUnit   decimal.Decimal
	DescuentoPct decimal.Decimal // fraction in [0,1)
	Stock        int
}

// Line is one product selected for purchase. Quantity is always kept
// within [1, Stock].
type Line struct {
	ProductID    int64           `json:"producto_id"`
	Nombre       string          `json:"nombre"`
	PrecioUnit   decimal.Decimal `json:"precio_unitario"`
	DescuentoPct decimal.Decimal `json:"descuento"`
	Stock        int             `json:"stock"`
	Cantidad     int             `json:"cantidad"`
}

// Subtotal returns precio × (1 − descuento) × cantidad without rounding.
func (l Line) Subtotal() decimal.Decimal {
	effective := l.PrecioUnit.Mul(decimal.NewFromInt(1).Sub(l.DescuentoPct))
	return effective.Mul(decimal.NewFromInt(int64(l.Cantidad)))
}

// Cart is an ordered collection of lines keyed by product id, with no
// duplicate entries. All operations normalize invalid input by clamping
// rather than returning errors. Safe for concurrent use.
type Cart struct {
	mu    sync.Mutex
	lines []*Line
	index map[int64]*Line
}

func New() *Cart {
	return &Cart{
		index: make(map[int64]*Line),
	}
}

// Add inserts a new line with quantity min(qty, stock), or accumulates
// qty onto an existing line and re-clamps. Over-limit input is silently
// clamped. A line whose quantity would drop below 1 is removed, not kept
// at zero.
func (c *Cart) Add(p Product, qty int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if line, ok := c.index[p.ID]; ok {
		next := line.Cantidad + qty
		if next < 1 {
			c.removeLocked(p.ID)
			return
		}
		if next > line.Stock {
			next = line.Stock
		}
		line.Cantidad = next
		return
	}

	cantidad := qty
	if cantidad > p.Stock {
		cantidad = p.Stock
	}
	if cantidad < 1 {
		return
	}

	line := &Line{
		ProductID:    p.ID,
		Nombre:       p.Nombre,
		PrecioUnit:   p.PrecioUnit,
		DescuentoPct: p.DescuentoPct,
		Stock:        p.Stock,
		Cantidad:     cantidad,
	}
	c.lines = append(c.lines, line)
	c.index[p.ID] = line
}

// Remove deletes the line if present; absent ids are a no-op.
func (c *Cart) Remove(productID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(productID)
}

func (c *Cart) removeLocked(productID int64) {
	if _, ok := c.index[productID]; !ok {
		return
	}
	delete(c.index, productID)
	for i, line := range c.lines {
		if line.ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// UpdateQuantity sets the line's quantity to clamp(qty, 1, stock). The
// line is never removed here, even for qty <= 0; removal below one is a
// caller-side policy, not a store invariant. Returns false if no line
// exists for the product.
func (c *Cart) UpdateQuantity(productID int64, qty int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	line, ok := c.index[productID]
	if !ok {
		return false
	}
	line.Cantidad = clamp(qty, 1, line.Stock)
	return true
}

// Clear empties the cart unconditionally.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.index = make(map[int64]*Line)
}

// TotalItems returns the sum of all line quantities.
func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, line := range c.lines {
		total += line.Cantidad
	}
	return total
}

// TotalPrice returns Σ precio × (1 − descuento) × cantidad over all lines,
// accumulated without intermediate rounding. Callers round to currency
// precision only at presentation time.
func (c *Cart) TotalPrice() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Line, len(c.lines))
	for i, line := range c.lines {
		out[i] = *line
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
