package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"placehours/internal/api"
	"placehours/internal/availability"
	"placehours/internal/config"
	"placehours/internal/database"
	"placehours/internal/export"
	"placehours/internal/hours"
	"placehours/internal/metrics"
	"placehours/internal/parsecache"
	"placehours/internal/placecache"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	// .env is optional; real environment wins.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn().Err(err).Msg("failed to read .env")
	}

	cfg, err := config.Load(os.Getenv("PLACEHOURS_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
	}
	records := placecache.New(db, rdb, cfg.RedisTTL(), &logger)

	parser, err := parsecache.New(cfg.Hours.ParseCacheSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("create parse cache error")
	}
	svc := availability.NewService(hours.NewEvaluator(cfg.Location(), cfg.ClosingSoon()), parser, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initial load + hot reload of the place catalog
	if err := config.WatchCatalog(ctx, cfg.Catalog.Path, cfg.CatalogWatchInterval(), &logger, func(cat *config.Catalog) {
		if _, err := db.SyncCatalog(ctx, cat); err != nil {
			logger.Error().Err(err).Msg("failed to apply catalog")
			return
		}
		if err := records.InvalidateAll(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to flush record cache")
		}
		logger.Info().Str("catalog", cat.String()).Msg("catalog applied")
	}); err != nil {
		logger.Error().Err(err).Msg("catalog watch failed")
	}

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	if cfg.Backup.Enabled {
		backups := database.NewBackupService(db, cfg.Backup.Path, cfg.BackupInterval(), cfg.BackupRetention(), &logger)
		go backups.Start(ctx)
	}

	ready := func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("db: %w", err)
		}
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	}

	server := api.NewHTTPServer(api.Options{
		Port:           cfg.API.Port,
		AuthoringRPS:   cfg.API.AuthoringRPS,
		AuthoringBurst: cfg.API.AuthoringBurst,
	}, api.Deps{
		Places:       db,
		Records:      records,
		Availability: svc,
		Export:       export.NewWriter(svc),
		Ready:        ready,
		Logger:       &logger,
	})

	logger.Info().Str("timezone", cfg.Location().String()).Msg("placehours started")
	if err := server.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("api server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
