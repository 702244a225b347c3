package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	httpapi "github.com/stationhub/stationhub/internal/api/http"
	"github.com/stationhub/stationhub/internal/assembler"
	"github.com/stationhub/stationhub/internal/config"
	"github.com/stationhub/stationhub/internal/ingest"
	"github.com/stationhub/stationhub/internal/providers"
	"github.com/stationhub/stationhub/internal/scheduler"
	"github.com/stationhub/stationhub/internal/store"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Store: Postgres when a DSN is configured, in-memory otherwise.
	var st store.Store
	if cfg.DatabaseDSN != "" {
		pg, err := store.NewPostgres(ctx, cfg.DatabaseDSN)
		if err != nil {
			logger.Fatal("failed to open database", zap.Error(err))
		}
		defer pg.Close()
		st = pg
	} else {
		logger.Info("no DATABASE_DSN configured, using in-memory store")
		st = store.NewMemory()
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{Timeout: 15 * time.Second}

	var provs []providers.Provider
	if cfg.NetatmoAccessToken != "" {
		provs = append(provs, providers.NewNetatmoProvider(httpClient, cfg.NetatmoAccessToken, logger))
	}
	if cfg.OpenWeatherAPIKey != "" && len(cfg.Stations) > 0 {
		provs = append(provs, providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey, cfg.Stations, logger))
	}
	if len(provs) == 0 {
		logger.Warn("no provider credentials configured, serving stored data only")
	}

	runner := ingest.NewRunner(st, provs, 30*time.Second, logger)
	sched := scheduler.New(runner, cfg.FetchInterval, logger)
	if err := sched.Start(); err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	asm := assembler.New(st, cfg.Units, cfg.Window, cfg.Precedence, logger)

	app := fiber.New(fiber.Config{
		AppName:               "stationhub",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, asm)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("server stopped", zap.Error(err))
		}
	}()
	logger.Info("stationhub listening", zap.String("port", cfg.Port))

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}
}
