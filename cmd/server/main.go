package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/mock_cart/internal/catalog"
	"github.com/Skotchmaster/mock_cart/internal/config"
	"github.com/Skotchmaster/mock_cart/internal/events"
	"github.com/Skotchmaster/mock_cart/internal/httpserver"
	"github.com/Skotchmaster/mock_cart/internal/repo"
	"github.com/Skotchmaster/mock_cart/internal/search"
	"github.com/Skotchmaster/mock_cart/internal/service"
	pkgconfig "github.com/Skotchmaster/mock_cart/pkg/config"
	pkgdb "github.com/Skotchmaster/mock_cart/pkg/db"
	"github.com/Skotchmaster/mock_cart/pkg/logging"
	"github.com/Skotchmaster/mock_cart/pkg/metrics"
	loggingmw "github.com/Skotchmaster/mock_cart/pkg/middleware/logging"
)

func main() {
	pkgconfig.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	store := &repo.GormRepo{DB: db}
	if err := store.Migrate(); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	var lookup catalog.Lookup = store
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		lookup = catalog.NewCachedLookup(store, rdb, cfg.CatalogTTL, logger)
		logger.Info("catalog cache enabled", "addr", cfg.RedisAddr)
	}

	var index service.ProductIndex
	if cfg.ESURL != "" {
		esCtx, esCancel := context.WithTimeout(context.Background(), 5*time.Second)
		esClient, err := search.NewClient(esCtx, search.Config{
			URL:      cfg.ESURL,
			User:     cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		}, logger)
		esCancel()
		if err != nil {
			logger.Warn("elasticsearch unavailable, falling back to database search", "error", err)
		} else {
			index = esClient
		}
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		prod, err := events.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka producer: %v", err)
		}
		publisher = prod
	}

	m := metrics.NewServerMetrics("cart")

	cartSvc := service.NewCartService(store, lookup, cfg.TaxRate)
	cartSvc.Timeout = cfg.PersistTimeout
	cartSvc.Events = publisher
	cartSvc.Observer = m

	productSvc := service.NewProductService(store, catalog.NewClient(cfg.CatalogSourceURL), index, logger)
	productSvc.SeedLimit = cfg.CatalogSeedLimit
	productSvc.Timeout = cfg.PersistTimeout

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(m.Middleware())
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		CartHandler:    &httpserver.CartHTTP{Svc: cartSvc},
		ProductHandler: &httpserver.ProductHTTP{Svc: productSvc},
		DB:             db,
		Metrics:        m.Handler(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db close error", "error", err)
	}

	logger.Info("shutdown complete")
}
