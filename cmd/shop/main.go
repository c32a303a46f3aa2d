package main

import (
	"path/filepath"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"EstiloSol/internal/cart"
	"EstiloSol/internal/catalog"
	"EstiloSol/internal/config"
	"EstiloSol/internal/sheets"
	"EstiloSol/internal/shop"
	"EstiloSol/pkg/kit"
)

func main() {
	service := "shop"

	cfg, err := config.Load()
	if err != nil {
		kit.NewLogger(service, "prod").Fatal("load config", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.Env)
	defer func() { _ = log.Sync() }()

	db, err := pebble.Open(filepath.Join(cfg.DataDir, "state"), &pebble.Options{})
	if err != nil {
		log.Fatal("open state db", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	reg := prometheus.NewRegistry()

	feed := sheets.NewClient(cfg.SheetsEndpoint, cfg.FallbackPath, cfg.Currency, cfg.SheetsTimeout, log)
	svc := catalog.NewService(feed, catalog.NewPebbleStore(db), cfg.CatalogTTL, log, catalog.NewMetrics(reg))

	catalogSrv := &catalog.Server{
		Catalog:        svc,
		Log:            log,
		RefreshLimiter: kit.NewIPRateLimiter(cfg.RefreshLimitPerMin, time.Minute),
	}
	cartSrv := &cart.Server{
		Store:       cart.NewPebbleStore(db),
		SellerPhone: cfg.SellerPhone,
		Log:         log,
	}

	h := shop.NewHandler(
		shop.Deps{Catalog: catalogSrv, Cart: cartSrv},
		shop.HTTPDeps{
			Log:            log,
			Service:        service,
			Registry:       reg,
			MetricsEnabled: cfg.MetricsEnabled,
			MetricsToken:   cfg.MetricsToken,
		},
	)

	if err := kit.RunHTTPServer(":"+cfg.Port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
