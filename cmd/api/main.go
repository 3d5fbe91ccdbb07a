package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/cartshare/cartshare-backend/api/routes"
	cartsvc "github.com/cartshare/cartshare-backend/internal/carts"
	"github.com/cartshare/cartshare-backend/internal/cartstore"
	"github.com/cartshare/cartshare-backend/internal/checkout"
	"github.com/cartshare/cartshare-backend/internal/currency"
	"github.com/cartshare/cartshare-backend/internal/discounts"
	"github.com/cartshare/cartshare-backend/internal/inventory"
	"github.com/cartshare/cartshare-backend/internal/lifecycle"
	"github.com/cartshare/cartshare-backend/internal/savedcarts"
	"github.com/cartshare/cartshare-backend/pkg/config"
	"github.com/cartshare/cartshare-backend/pkg/db"
	"github.com/cartshare/cartshare-backend/pkg/logger"
	"github.com/cartshare/cartshare-backend/pkg/metrics"
	pkgredis "github.com/cartshare/cartshare-backend/pkg/redis"
	invupstream "github.com/cartshare/cartshare-backend/pkg/upstream/inventory"
	"github.com/cartshare/cartshare-backend/pkg/upstream/products"
	"github.com/cartshare/cartshare-backend/pkg/upstream/rates"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := dbClient.AutoMigrate(context.Background()); err != nil {
		logg.Error(context.Background(), "failed to run migrations", err)
		os.Exit(1)
	}

	discountRepo := discounts.NewRepository(dbClient)
	if cfg.App.IsDev() {
		if err := discounts.Seed(context.Background(), discountRepo); err != nil {
			logg.Error(context.Background(), "failed to seed discounts", err)
			os.Exit(1)
		}
	}

	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = pkgredis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, idempotency keys disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	cartMetrics := metrics.NewCartMetrics(registry)

	productClient, stockClient, ratesClient := buildUpstreams(cfg, cartMetrics, logg)

	manager := lifecycle.NewManager(cartstore.NewStore(), cartstore.NewLocks())
	stockCoordinator := inventory.NewCoordinator(stockClient, logg)
	converter := currency.NewConverter(ratesClient)

	cartService := cartsvc.NewService(
		manager,
		productClient,
		stockCoordinator,
		discountRepo,
		converter,
		savedcarts.NewRepository(dbClient),
		cartMetrics,
		logg,
		cfg.Cart.ExpiryWindow,
	)
	checkoutCoordinator := checkout.NewCoordinator(
		manager,
		productClient,
		stockCoordinator,
		converter,
		cartMetrics,
		logg,
		cfg.Cart.CheckoutLockTTL,
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisClient, cartService, checkoutCoordinator, registry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutdown signal received, draining")
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
	logg.Info(ctx, "api server stopped")
}

// buildUpstreams wires the product, inventory, and rates collaborators.
// Empty base URLs select in-memory stubs preloaded with the dev fixtures.
func buildUpstreams(cfg *config.Config, cartMetrics *metrics.CartMetrics, logg *logger.Logger) (products.Client, invupstream.Client, rates.Client) {
	var productClient products.Client
	if cfg.Upstream.ProductsBaseURL == "" {
		logg.Warn(context.Background(), "product service url not set, using fixture stub")
		productClient = products.NewStubWithFixtures()
	} else {
		client, err := products.NewHTTPClient(cfg.Upstream.ProductsBaseURL, cfg.Upstream.Timeout, products.WithMetrics(cartMetrics))
		if err != nil {
			logg.Error(context.Background(), "failed to build product client", err)
			os.Exit(1)
		}
		productClient = client
	}

	var stockClient invupstream.Client
	if cfg.Upstream.InventoryBaseURL == "" {
		logg.Warn(context.Background(), "inventory service url not set, using fixture stub")
		stockClient = invupstream.NewStubWithFixtures()
	} else {
		client, err := invupstream.NewHTTPClient(cfg.Upstream.InventoryBaseURL, cfg.Upstream.Timeout, invupstream.WithMetrics(cartMetrics))
		if err != nil {
			logg.Error(context.Background(), "failed to build inventory client", err)
			os.Exit(1)
		}
		stockClient = client
	}

	var ratesClient rates.Client
	if cfg.Upstream.RatesBaseURL == "" {
		logg.Warn(context.Background(), "rates service url not set, using fixture stub")
		ratesClient = rates.NewStub()
	} else {
		client, err := rates.NewHTTPClient(cfg.Upstream.RatesBaseURL, cfg.Upstream.Timeout, rates.WithMetrics(cartMetrics))
		if err != nil {
			logg.Error(context.Background(), "failed to build rates client", err)
			os.Exit(1)
		}
		ratesClient = client
	}

	return productClient, stockClient, ratesClient
}
