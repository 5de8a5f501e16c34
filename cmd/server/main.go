package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/storefront/internal/cache"
	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/jobs"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/middleware/csrf"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/seed"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/httperr"
	"github.com/Skotchmaster/storefront/pkg/logging"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
	"github.com/Skotchmaster/storefront/pkg/middleware/metrics"
	"github.com/Skotchmaster/storefront/pkg/validation"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Load()

	log := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server_failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			log.Warn("db_close_failed", "error", err)
		}
	}()
	if err := models.AutoMigrate(gdb.WithContext(initCtx)); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if cfg.Seed {
		if err := seed.Run(initCtx, gdb, cfg.SeedPassword, log); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		log.Info("seed_done")
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewProducer(cfg.KafkaBrokers)
		log.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	}
	defer publisher.Close()

	var categoryCache cache.Cache = cache.Nop{}
	if cfg.RedisAddr != "" {
		rc := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rc.Ping(initCtx); err != nil {
			log.Warn("redis_unavailable", "addr", cfg.RedisAddr, "error", err)
			_ = rc.Close()
		} else {
			categoryCache = rc
			defer rc.Close()
		}
	}

	var index service.Indexer
	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword, cfg.ESIndex)
		if err == nil {
			err = es.Ping(initCtx)
		}
		if err != nil {
			log.Warn("search_unavailable", "url", cfg.ESURL, "error", err)
		} else {
			index = es
		}
	}

	files, err := storage.New(initCtx, storage.Config{
		Provider:  cfg.Storage.Provider,
		LocalDir:  cfg.Storage.LocalDir,
		PublicURL: cfg.Storage.PublicURL,
		Bucket:    cfg.Storage.S3Bucket,
		Region:    cfg.Storage.S3Region,
		AccessKey: cfg.Storage.S3AccessKey,
		SecretKey: cfg.Storage.S3SecretKey,
		Endpoint:  cfg.Storage.S3Endpoint,
	})
	if err != nil {
		return err
	}

	r := repo.New(gdb)
	authSvc := &service.AuthService{
		Repo:          r,
		JWTSecret:     cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	}
	categorySvc := &service.CategoryService{Repo: r, Cache: categoryCache, CacheTTL: cfg.CategoryCacheTTL}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Validator = validation.New()
	e.HTTPErrorHandler = httperr.Handler()

	m := metrics.New(cfg.ServiceName)
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(m.Middleware())
	e.Use(middleware.RequestID())
	e.Use(loggingmw.RequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if cfg.CSRFEnabled {
		e.Use(csrf.Middleware(csrf.ServerConfig()))
	}

	e.GET("/metrics", m.Handler())
	if cfg.Storage.Provider == "" || cfg.Storage.Provider == "local" {
		e.Static(cfg.Storage.PublicURL, cfg.Storage.LocalDir)
	}

	httpserver.Register(e, &httpserver.Deps{
		DB:              gdb,
		Auth:            authmw.New(authSvc),
		AuthHandler:     &httpserver.AuthHTTP{Svc: authSvc},
		UserHandler:     &httpserver.UserHTTP{Svc: &service.UserService{Repo: r, Auth: authSvc}},
		CategoryHandler: &httpserver.CategoryHTTP{Svc: categorySvc},
		GroupHandler:    &httpserver.GroupHTTP{Svc: &service.GroupService{Repo: r}},
		ProductHandler: &httpserver.ProductHTTP{Svc: &service.ProductService{
			Repo:       r,
			Categories: categorySvc,
			Index:      index,
			Storage:    files,
			Events:     publisher,
			MaxImages:  cfg.MaxProductImages,
		}},
		CartHandler:  &httpserver.CartHTTP{Svc: &service.CartService{Repo: r, Events: publisher, MaxQuantity: cfg.MaxCartQuantity}},
		OrderHandler: &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r, Events: publisher}},
	})

	cleanup := jobs.NewTokenCleanup(r, log)
	if err := cleanup.Start(cfg.TokenCleanupSpec); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server_starting", "port", cfg.ServerPort)
		if err := e.Start(fmt.Sprintf(":%d", cfg.ServerPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info("server_stopping")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_failed", "error", err)
	}
	cleanup.Stop(shutdownCtx)

	log.Info("server_stopped")
	return nil
}
