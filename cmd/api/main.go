package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jasonhew98/e-commerce-service/internal/apperr"
	"github.com/jasonhew98/e-commerce-service/internal/attachment"
	"github.com/jasonhew98/e-commerce-service/internal/config"
	"github.com/jasonhew98/e-commerce-service/internal/database"
	"github.com/jasonhew98/e-commerce-service/internal/database/migration"
	"github.com/jasonhew98/e-commerce-service/internal/encryption"
	handlers "github.com/jasonhew98/e-commerce-service/internal/http/handler"
	"github.com/jasonhew98/e-commerce-service/internal/http/middleware"
	"github.com/jasonhew98/e-commerce-service/internal/logger"
	"github.com/jasonhew98/e-commerce-service/internal/otel"
	"github.com/jasonhew98/e-commerce-service/internal/remote"
	"github.com/jasonhew98/e-commerce-service/internal/remote/gdrive"
	"github.com/jasonhew98/e-commerce-service/internal/repository/postgres"
	"github.com/jasonhew98/e-commerce-service/internal/service"
	"github.com/jasonhew98/e-commerce-service/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Mode, cfg.Log.Location())
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server_exited", "error", err)
	}
}

func run(cfg *config.AppConfig, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := apperr.ValidateCatalog(); err != nil {
		return err
	}

	shutdownTracing, err := otel.Init(ctx, cfg.Tracing, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing_shutdown_failed", "error", err)
		}
	}()

	// PostgreSQL connection (pooled via database/sql) and schema
	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		return err
	}

	blobs, err := newStorage(cfg.Storage, cfg.MinIO)
	if err != nil {
		return fmt.Errorf("init object storage: %w", err)
	}

	cipher, err := encryption.NewCipherFromString(cfg.Crypto.MasterKey)
	if err != nil {
		return fmt.Errorf("init pii cipher: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	profilePictures := attachment.NewSynchronizer(blobs, cfg.Storage.ProfilePicturePrefix,
		attachment.WithConcurrency(cfg.Storage.WriteConcurrency),
		attachment.WithLogger(log),
	)
	productImages := attachment.NewSynchronizer(blobs, cfg.Storage.ProductImagePrefix,
		attachment.WithConcurrency(cfg.Storage.WriteConcurrency),
		attachment.WithLogger(log),
	)

	refresher := remote.NewHTTPTokenRefresher(cfg.Google.TokenURL, nil)
	fetcher := remote.NewFetcher(gdrive.New(cfg.Google.DriveEndpoint), refresher,
		remote.WithTimeouts(cfg.Google.FetchTimeout, cfg.Google.RefreshTimeout),
		remote.WithLogger(log),
	)
	if err := fetcher.Register(reg); err != nil {
		return fmt.Errorf("register fetch metrics: %w", err)
	}

	users := postgres.NewUserStore(db)
	svc := handlers.Services{
		Accounts: service.NewAccountService(postgres.NewAccountStore(db), profilePictures, cipher, log),
		Users:    service.NewUserService(users, profilePictures, cipher, log),
		Products: service.NewProductService(postgres.NewProductStore(db), productImages, log),
		Onboard:  service.NewOnboardService(users, cipher, log),
		Drive: service.NewDriveService(fetcher, refresher, blobs, cfg.Storage.DownloadPrefix, service.DriveURLs{
			DriveBase:  cfg.Google.DriveBaseAddress,
			SheetsBase: cfg.Google.SheetsBaseAddress,
		}, log),
		Microsoft: service.NewMicrosoftService(remote.NewHTTPTokenRefresher(cfg.Microsoft.TokenURL, nil),
			cfg.Microsoft.Scope, cfg.Microsoft.RefreshTimeout, log),
	}

	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(log),
		BodyLimit:    32 << 20,
	})

	// Global middleware, outermost first. Logger resolves handler errors, so the metrics
	// middleware sees the final status.
	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(promMiddleware.Handler())
	app.Use(middleware.Logger(log))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	handlers.RegisterRoutes(app, db, svc)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info("server_starting", "addr", addr, "storage_driver", cfg.Storage.Driver)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("server_stopping")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newStorage(sc config.StorageConfig, mc config.MinIOConfig) (storage.Storage, error) {
	switch sc.Driver {
	case "minio", "":
		return storage.NewMinIO(mc)
	case "local":
		return storage.NewLocal(sc.LocalRoot)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", sc.Driver)
	}
}
