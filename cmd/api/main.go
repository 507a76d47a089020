package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/Asignador-api/internal/application/allocation"
	appledger "github.com/jhoicas/Asignador-api/internal/application/ledger"
	"github.com/jhoicas/Asignador-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Asignador-api/internal/interfaces/http"
	"github.com/jhoicas/Asignador-api/pkg/config"
	"github.com/jhoicas/Asignador-api/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	txRunner := postgres.NewTxRunner(pool, cfg.Alloc.LockTimeout, cfg.Alloc.StatementTimeout, log)

	policy := allocation.DefaultRetryPolicy()
	policy.MaxAttempts = cfg.Alloc.MaxAttempts
	policy.Base = cfg.Alloc.BackoffBase
	policy.JitterMax = cfg.Alloc.BackoffJitterMax

	allocateUC := allocation.NewAllocateOrderUseCase(txRunner, policy, cfg.Alloc.CandidateLimit, log)
	releaseUC := allocation.NewReleaseOrderUseCase(txRunner, log)
	ledgerUC := appledger.NewRegisterEventUseCase(txRunner, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Allocator:      allocateUC,
		Releaser:       releaseUC,
		EventRegistrar: ledgerUC,
		JWTSecret:      cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
