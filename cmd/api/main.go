package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jmsanzl/custodia-api/internal/application/catalog"
	"github.com/jmsanzl/custodia-api/internal/application/delivery"
	"github.com/jmsanzl/custodia-api/internal/application/deposits"
	"github.com/jmsanzl/custodia-api/internal/application/sequence"
	"github.com/jmsanzl/custodia-api/internal/application/traceability"
	"github.com/jmsanzl/custodia-api/internal/infrastructure/postgres"
	httpRouter "github.com/jmsanzl/custodia-api/internal/interfaces/http"
	"github.com/jmsanzl/custodia-api/pkg/config"
	"github.com/jmsanzl/custodia-api/pkg/logger"
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

	unitRepo := postgres.NewStockUnitRepository(pool)
	lotRepo := postgres.NewLotRepository(pool)
	depositRepo := postgres.NewDepositRepository(pool)
	noteRepo := postgres.NewDeliveryNoteRepository(pool)
	articleRepo := postgres.NewArticleRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	counterRepo := postgres.NewCounterRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	seq := sequence.NewGenerator(counterRepo, nil)

	unitUC := traceability.NewUnitUseCase(txRunner, unitRepo, lotRepo, articleRepo, seq, nil)
	lotUC := traceability.NewLotUseCase(lotRepo, unitRepo, articleRepo, nil)
	depositUC := deposits.NewUseCase(depositRepo, clientRepo, articleRepo, seq, nil)
	noteUC := delivery.NewNoteUseCase(
		txRunner, noteRepo, clientRepo, warehouseRepo, articleRepo, lotRepo,
		seq, traceability.NewNoteCompletionHook(), nil,
	)
	articleUC := catalog.NewArticleUseCase(articleRepo, depositUC, nil)
	clientUC := catalog.NewClientUseCase(clientRepo, nil)
	warehouseUC := catalog.NewWarehouseUseCase(warehouseRepo, nil)

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

	httpRouter.Router(app, httpRouter.RouterDeps{
		UnitUC:      unitUC,
		LotUC:       lotUC,
		DepositUC:   depositUC,
		NoteUC:      noteUC,
		ArticleUC:   articleUC,
		ClientUC:    clientUC,
		WarehouseUC: warehouseUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	httpLog := log.Component("http")
	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			httpLog.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		httpLog.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
