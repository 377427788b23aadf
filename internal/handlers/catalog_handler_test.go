package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/vistamarket/marketplace-gateway/internal/catalog"
	"github.com/vistamarket/marketplace-gateway/internal/erp"
	"github.com/vistamarket/marketplace-gateway/internal/models"
	"github.com/vistamarket/marketplace-gateway/pkg/logger"
)

type fakeCatalogBackend struct {
	lastFilters erp.Filters
}

func (f *fakeCatalogBackend) FetchProductos(ctx context.Context, filters erp.Filters) (*models.Page[models.Producto], error) {
	f.lastFilters = filters
	return &models.Page[models.Producto]{
		Count: 1,
		Results: []models.Producto{
			{ID: 7, Nombre: "Monitor", PrecioVenta: decimal.RequireFromString("100.00"), Stock: 5, Activo: true},
		},
	}, nil
}

func (f *fakeCatalogBackend) GetProductoByID(ctx context.Context, id int64) (*models.Producto, error) {
	if id != 7 {
		return nil, &erp.APIError{Status: 404, Message: "No encontrado."}
	}
	return &models.Producto{ID: 7, Nombre: "Monitor", PrecioVenta: decimal.RequireFromString("100.00"), Stock: 5, Activo: true}, nil
}

func (f *fakeCatalogBackend) FetchCategorias(ctx context.Context, filters erp.Filters) (*models.Page[models.Categoria], error) {
	f.lastFilters = filters
	return &models.Page[models.Categoria]{Count: 1, Results: []models.Categoria{{ID: 2, Nombre: "Electrónica"}}}, nil
}

func (f *fakeCatalogBackend) GetEmpresaByID(ctx context.Context, id int64) (*models.Empresa, error) {
	return &models.Empresa{ID: id, Nombre: "ACME"}, nil
}

func newCatalogTestRouter(backend catalog.Backend) *chi.Mux {
	log := logger.New("error")
	handler := NewCatalogHandler(catalog.New(backend, time.Minute, log), log)

	r := chi.NewRouter()
	r.Get("/api/productos", handler.ListProductos)
	r.Get("/api/productos/{productId}", handler.GetProducto)
	r.Get("/api/categorias", handler.ListCategorias)
	r.Get("/api/empresas/{empresaId}", handler.GetEmpresa)
	return r
}

func TestCatalogHandler_ListForwardsFilters(t *testing.T) {
	backend := &fakeCatalogBackend{}
	router := newCatalogTestRouter(backend)

	req := httptest.NewRequest(http.MethodGet, "/api/productos?search=monitor&page=2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := backend.lastFilters["search"]; got != "monitor" {
		t.Errorf("search filter = %q, want monitor", got)
	}
	if got := backend.lastFilters["page"]; got != "2" {
		t.Errorf("page filter = %q, want 2", got)
	}

	var page models.Page[models.Producto]
	if err := json.NewDecoder(w.Body).Decode(&page); err != nil {
		t.Fatalf("failed to decode page: %v", err)
	}
	if page.Count != 1 || len(page.Results) != 1 {
		t.Errorf("page = count %d, %d results, want 1 and 1", page.Count, len(page.Results))
	}
}

func TestCatalogHandler_GetProducto(t *testing.T) {
	router := newCatalogTestRouter(&fakeCatalogBackend{})

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{"existing product", "/api/productos/7", http.StatusOK},
		{"missing product", "/api/productos/99", http.StatusNotFound},
		{"invalid id", "/api/productos/abc", http.StatusBadRequest},
		{"non-positive id", "/api/productos/0", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}
		})
	}
}

func TestCatalogHandler_ListCategorias(t *testing.T) {
	router := newCatalogTestRouter(&fakeCatalogBackend{})

	req := httptest.NewRequest(http.MethodGet, "/api/categorias", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var page models.Page[models.Categoria]
	if err := json.NewDecoder(w.Body).Decode(&page); err != nil {
		t.Fatalf("failed to decode page: %v", err)
	}
	if len(page.Results) != 1 || page.Results[0].Nombre != "Electrónica" {
		t.Errorf("results = %+v", page.Results)
	}
}

func TestCatalogHandler_GetEmpresa(t *testing.T) {
	router := newCatalogTestRouter(&fakeCatalogBackend{})

	req := httptest.NewRequest(http.MethodGet, "/api/empresas/3", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var empresa models.Empresa
	if err := json.NewDecoder(w.Body).Decode(&empresa); err != nil {
		t.Fatalf("failed to decode company: %v", err)
	}
	if empresa.ID != 3 || empresa.Nombre != "ACME" {
		t.Errorf("empresa = %+v", empresa)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/empresas/abc", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid id status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
