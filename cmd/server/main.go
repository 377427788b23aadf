package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vistamarket/marketplace-gateway/internal/cart"
	"github.com/vistamarket/marketplace-gateway/internal/catalog"
	"github.com/vistamarket/marketplace-gateway/internal/checkout"
	"github.com/vistamarket/marketplace-gateway/internal/config"
	"github.com/vistamarket/marketplace-gateway/internal/erp"
	"github.com/vistamarket/marketplace-gateway/internal/handlers"
	"github.com/vistamarket/marketplace-gateway/internal/middleware"
	"github.com/vistamarket/marketplace-gateway/internal/prefs"
	"github.com/vistamarket/marketplace-gateway/internal/session"
	"github.com/vistamarket/marketplace-gateway/pkg/logger"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting marketplace gateway",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"backend", cfg.Upstream.BaseURL,
		"log_level", cfg.LogLevel,
	)

	// Backend client and catalog cache
	backend := erp.NewClient(erp.Config{
		BaseURL: cfg.Upstream.BaseURL,
		Token:   cfg.Upstream.Token,
		Timeout: time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second,
	}, log)

	catalogSvc := catalog.New(backend, time.Duration(cfg.Catalog.TTLSeconds)*time.Second, log)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := catalogSvc.Warm(ctx, cfg.Catalog.WarmPages); err != nil {
			// Warming only enables the local fast-404 path; lookups fall
			// back to the backend when it fails.
			log.Warn("catalog warm-up failed", "error", err)
		}
	}()

	// Session, cart and preference stores
	sessions := session.NewStore(time.Duration(cfg.Auth.SessionTTLMinutes) * time.Minute)
	carts := cart.NewStore()
	// An abandoned session takes its cart with it
	sessions.OnExpire(carts.Drop)

	var prefsStore prefs.Store
	if cfg.Redis.Addr != "" {
		redisStore := prefs.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisStore.Ping(ctx); err != nil {
			cancel()
			log.Error("failed to connect to redis", "addr", cfg.Redis.Addr, "error", err)
			os.Exit(1)
		}
		cancel()
		prefsStore = redisStore
		log.Info("theme preferences backed by redis", "addr", cfg.Redis.Addr)
	} else {
		prefsStore = prefs.NewMemoryStore()
	}

	orchestrator := checkout.NewOrchestrator(backend, log)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(log)
	sessionHandler := handlers.NewSessionHandler(sessions, carts, log)
	cartHandler := handlers.NewCartHandler(carts, catalogSvc, log)
	checkoutHandler := handlers.NewCheckoutHandler(carts, orchestrator, log)
	catalogHandler := handlers.NewCatalogHandler(catalogSvc, log)
	ventaHandler := handlers.NewVentaHandler(backend, log)
	permisoHandler := handlers.NewPermisoHandler(backend, log)
	prefsHandler := handlers.NewPrefsHandler(prefsStore, log)

	// Create router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "api_key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Register health check endpoint
	r.Get("/health", healthHandler.ServeHTTP)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.Auth))

		// Session lifecycle
		r.Post("/sesion", sessionHandler.CreateSession)

		// Catalog browse (no session required)
		r.Get("/productos", catalogHandler.ListProductos)
		r.Get("/productos/{productId}", catalogHandler.GetProducto)
		r.Get("/categorias", catalogHandler.ListCategorias)
		r.Get("/empresas/{empresaId}", catalogHandler.GetEmpresa)

		// Session-scoped routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionAuth(sessions))

			r.Delete("/sesion", sessionHandler.DeleteSession)

			r.Get("/carrito", cartHandler.GetCart)
			r.Delete("/carrito", cartHandler.ClearCart)
			r.Post("/carrito/items", cartHandler.AddItem)
			r.Put("/carrito/items/{productId}", cartHandler.UpdateItem)
			r.Delete("/carrito/items/{productId}", cartHandler.RemoveItem)

			r.Post("/checkout", checkoutHandler.Checkout)

			r.Get("/ventas", ventaHandler.ListVentas)
			r.Get("/ventas/{ventaId}", ventaHandler.GetVenta)

			r.Get("/preferencias", prefsHandler.GetPrefs)
			r.Put("/preferencias", prefsHandler.SavePrefs)
			r.Delete("/preferencias", prefsHandler.ResetPrefs)

			// Sale administration
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermiso("ventas.administrar"))
				r.Post("/ventas/{ventaId}/cancelar", ventaHandler.CancelarVenta)
				r.Delete("/ventas/{ventaId}", ventaHandler.DeleteVenta)
			})

			// RBAC management
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermiso("permisos.administrar"))
				r.Post("/permisos", permisoHandler.CreatePermiso)
				r.Put("/permisos/{permisoId}", permisoHandler.UpdatePermiso)
			})
		})
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}
