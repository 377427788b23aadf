package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"golang.org/x/sync/singleflight"

	"github.com/vistamarket/marketplace-gateway/internal/erp"
	"github.com/vistamarket/marketplace-gateway/internal/models"
)

// ErrProductNotFound is returned when a product id does not exist on the
// backend, or when the warmed id filter rules it out without a round trip.
var ErrProductNotFound = errors.New("product not found")

// expectedCatalogSize sizes the bloom filter; false positives only cost an
// extra backend lookup.
const expectedCatalogSize = 100_000

// Backend is the subset of the ERP client the catalog needs.
type Backend interface {
	FetchProductos(ctx context.Context, filters erp.Filters) (*models.Page[models.Producto], error)
	GetProductoByID(ctx context.Context, id int64) (*models.Producto, error)
	FetchCategorias(ctx context.Context, filters erp.Filters) (*models.Page[models.Categoria], error)
	GetEmpresaByID(ctx context.Context, id int64) (*models.Empresa, error)
}

type cachedProducto struct {
	producto  models.Producto
	fetchedAt time.Time
}

// Service caches product reads from the backend. Single-product lookups
// are TTL-cached and collapsed with singleflight so concurrent misses for
// the same id produce one upstream call. After Warm has seeded the id
// filter, lookups for ids that were never seen are rejected locally.
type Service struct {
	backend Backend
	ttl     time.Duration
	log     *slog.Logger

	mu        sync.RWMutex
	productos map[int64]cachedProducto
	known     *bloom.BloomFilter
	warmed    bool

	sfg singleflight.Group
	now func() time.Time
}

func New(backend Backend, ttl time.Duration, log *slog.Logger) *Service {
	return &Service{
		backend:   backend,
		ttl:       ttl,
		log:       log,
		productos: make(map[int64]cachedProducto),
		known:     bloom.NewWithEstimates(expectedCatalogSize, 0.01),
		now:       time.Now,
	}
}

// Warm walks up to maxPages of the product catalog to seed the known-id
// filter. Failures leave the filter unseeded; lookups then always go
// upstream, which is safe.
func (s *Service) Warm(ctx context.Context, maxPages int) error {
	if maxPages < 1 {
		return nil
	}

	complete := false
	fetched := 0
	for page := 1; page <= maxPages; page++ {
		res, err := s.backend.FetchProductos(ctx, erp.Filters{"page": strconv.Itoa(page)})
		if err != nil {
			return fmt.Errorf("failed to warm catalog at page %d: %w", page, err)
		}
		fetched++

		s.mu.Lock()
		for _, p := range res.Results {
			s.known.Add(idBytes(p.ID))
		}
		s.mu.Unlock()

		if res.Next == nil {
			complete = true
			break
		}
	}

	// The fast-404 path is only sound when every existing id was seen;
	// a partial walk keeps lookups going upstream.
	if complete {
		s.mu.Lock()
		s.warmed = true
		s.mu.Unlock()
	}

	s.log.Info("catalog id filter warmed", "pages", fetched, "complete", complete)
	return nil
}

// GetProducto returns a product by id, from cache when fresh.
func (s *Service) GetProducto(ctx context.Context, id int64) (*models.Producto, error) {
	s.mu.RLock()
	cached, hit := s.productos[id]
	fresh := hit && s.now().Sub(cached.fetchedAt) < s.ttl
	warmed := s.warmed
	mayExist := !warmed || s.known.Test(idBytes(id))
	s.mu.RUnlock()

	if fresh {
		p := cached.producto
		return &p, nil
	}

	if !mayExist {
		return nil, ErrProductNotFound
	}

	v, err, _ := s.sfg.Do(strconv.FormatInt(id, 10), func() (interface{}, error) {
		p, err := s.backend.GetProductoByID(ctx, id)
		if err != nil {
			if errors.Is(err, erp.ErrNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, err
		}

		s.mu.Lock()
		s.productos[id] = cachedProducto{producto: *p, fetchedAt: s.now()}
		s.known.Add(idBytes(id))
		s.mu.Unlock()

		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Producto), nil
}

// ListProductos passes a filtered catalog read through to the backend and
// feeds the returned ids into the known-id filter.
func (s *Service) ListProductos(ctx context.Context, filters erp.Filters) (*models.Page[models.Producto], error) {
	res, err := s.backend.FetchProductos(ctx, filters)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	for _, p := range res.Results {
		s.known.Add(idBytes(p.ID))
		s.productos[p.ID] = cachedProducto{producto: p, fetchedAt: s.now()}
	}
	s.mu.Unlock()

	return res, nil
}

// ListCategorias passes a category read through to the backend.
func (s *Service) ListCategorias(ctx context.Context, filters erp.Filters) (*models.Page[models.Categoria], error) {
	return s.backend.FetchCategorias(ctx, filters)
}

// GetEmpresa returns a company by id.
func (s *Service) GetEmpresa(ctx context.Context, id int64) (*models.Empresa, error) {
	return s.backend.GetEmpresaByID(ctx, id)
}

func idBytes(id int64) []byte {
	return strconv.AppendInt(nil, id, 10)
}
