package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/vistamarket/marketplace-gateway/internal/models"
)

// ErrUnavailable wraps circuit-breaker rejections: the backend has been
// failing and calls are short-circuited until it recovers.
var ErrUnavailable = errors.New("backend unavailable")

// Config configures the backend client.
type Config struct {
	BaseURL string
	Token   string // sent as "Authorization: Token <value>" when non-empty
	Timeout time.Duration
}

// Filters are query parameters forwarded to backend list endpoints.
type Filters map[string]string

// Client is a typed JSON client for the ERP backend. All calls go through
// a circuit breaker; transport errors and 5xx responses count as failures,
// 4xx validation responses do not.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	log     *slog.Logger
}

// NewClient creates a backend client with an instrumented transport.
func NewClient(cfg Config, log *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name: "erp-backend",
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var apiErr *APIError
			return errors.As(err, &apiErr) && apiErr.Status < 500
		},
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: breaker,
		log:     log,
	}
}

// CreateVenta submits a sale-creation request and returns the persisted
// sale, whose monto_total is server-computed and authoritative.
func (c *Client) CreateVenta(ctx context.Context, req models.VentaRequest) (*models.Venta, error) {
	body, err := c.do(ctx, http.MethodPost, "/ventas/", nil, req)
	if err != nil {
		return nil, err
	}
	return decode[models.Venta](body)
}

// CreatePago submits a payment-creation request.
func (c *Client) CreatePago(ctx context.Context, req models.PagoRequest) (*models.Pago, error) {
	body, err := c.do(ctx, http.MethodPost, "/pagos/", nil, req)
	if err != nil {
		return nil, err
	}
	return decode[models.Pago](body)
}

// FetchProductos returns one page of the product catalog.
func (c *Client) FetchProductos(ctx context.Context, filters Filters) (*models.Page[models.Producto], error) {
	body, err := c.do(ctx, http.MethodGet, "/productos/", filters, nil)
	if err != nil {
		return nil, err
	}
	return decode[models.Page[models.Producto]](body)
}

// GetProductoByID returns a single product.
func (c *Client) GetProductoByID(ctx context.Context, id int64) (*models.Producto, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/productos/%d/", id), nil, nil)
	if err != nil {
		return nil, err
	}
	return decode[models.Producto](body)
}

// FetchCategorias returns one page of product categories.
func (c *Client) FetchCategorias(ctx context.Context, filters Filters) (*models.Page[models.Categoria], error) {
	body, err := c.do(ctx, http.MethodGet, "/categorias/", filters, nil)
	if err != nil {
		return nil, err
	}
	return decode[models.Page[models.Categoria]](body)
}

// GetEmpresaByID returns a single company.
func (c *Client) GetEmpresaByID(ctx context.Context, id int64) (*models.Empresa, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/empresas/%d/", id), nil, nil)
	if err != nil {
		return nil, err
	}
	return decode[models.Empresa](body)
}

// FetchVentas returns one page of sales.
func (c *Client) FetchVentas(ctx context.Context, filters Filters) (*models.Page[models.Venta], error) {
	body, err := c.do(ctx, http.MethodGet, "/ventas/", filters, nil)
	if err != nil {
		return nil, err
	}
	return decode[models.Page[models.Venta]](body)
}

// GetVentaByID returns a single sale.
func (c *Client) GetVentaByID(ctx context.Context, id int64) (*models.Venta, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/ventas/%d/", id), nil, nil)
	if err != nil {
		return nil, err
	}
	return decode[models.Venta](body)
}

// CancelarVenta cancels a sale. Stock reconciliation happens backend-side.
func (c *Client) CancelarVenta(ctx context.Context, id int64) (*models.Venta, error) {
	body, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/ventas/%d/cancelar/", id), nil, nil)
	if err != nil {
		return nil, err
	}
	return decode[models.Venta](body)
}

// DeleteVenta deletes a sale.
func (c *Client) DeleteVenta(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/ventas/%d/", id), nil, nil)
	return err
}

// CreatePermission creates an RBAC permission.
func (c *Client) CreatePermission(ctx context.Context, req models.PermisoRequest) (*models.Permiso, error) {
	body, err := c.do(ctx, http.MethodPost, "/permisos/", nil, req)
	if err != nil {
		return nil, err
	}
	return decode[models.Permiso](body)
}

// UpdatePermission updates an existing RBAC permission.
func (c *Client) UpdatePermission(ctx context.Context, id int64, req models.PermisoRequest) (*models.Permiso, error) {
	body, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/permisos/%d/", id), nil, req)
	if err != nil {
		return nil, err
	}
	return decode[models.Permiso](body)
}

// do executes one backend call inside the circuit breaker and returns the
// raw response body. No automatic retry is performed.
func (c *Client) do(ctx context.Context, method, path string, filters Filters, in any) ([]byte, error) {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, method, path, filters, in)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.log.Warn("circuit breaker rejected backend call", "method", method, "path", path)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return body, err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, filters Filters, in any) ([]byte, error) {
	u := c.baseURL + path
	if len(filters) > 0 {
		q := url.Values{}
		for k, v := range filters {
			q.Set(k, v)
		}
		u += "?" + q.Encode()
	}

	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := decodeAPIError(resp.StatusCode, data)
		c.log.Warn("backend call failed",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"error", apiErr.Message,
		)
		return nil, apiErr
	}

	return data, nil
}

func decode[T any](body []byte) (*T, error) {
	var out T
	if len(body) == 0 {
		return &out, nil
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}
