package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appstock "github.com/storenextdoor/stock-service/internal/application/stock"
	"github.com/storenextdoor/stock-service/internal/infrastructure/cache"
	"github.com/storenextdoor/stock-service/internal/infrastructure/elastic"
	"github.com/storenextdoor/stock-service/internal/infrastructure/postgres"
	"github.com/storenextdoor/stock-service/internal/infrastructure/rabbitmq"
	httpRouter "github.com/storenextdoor/stock-service/internal/interfaces/http"
	"github.com/storenextdoor/stock-service/internal/interfaces/queue"
	"github.com/storenextdoor/stock-service/pkg/config"
	"github.com/storenextdoor/stock-service/pkg/logger"
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
		Msg("iniciando servicio de stock")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Clientes compartidos del proceso: uno por colaborador, inyectados por
	// referencia; su vida útil es la del proceso.
	redisClient, err := cache.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer redisClient.Close()

	broker, err := rabbitmq.Connect(cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a RabbitMQ")
	}
	defer broker.Close()

	spaceRepo := postgres.NewSpaceRepository(pool)
	siteRepo := postgres.NewSiteRepository(pool)
	stockCache := cache.NewStockCache(redisClient, log)
	searchSync := elastic.NewClient(cfg.Elastic, log)

	stockUC := appstock.NewUseCase(spaceRepo, siteRepo, stockCache, log)

	listener := queue.NewListener(stockUC, searchSync, log)
	if err := listener.Subscribe(ctx, broker, cfg.RabbitMQ); err != nil {
		log.Fatal().Err(err).Msg("suscripción a las colas")
	}

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
		StockUC:    stockUC,
		SearchSync: searchSync,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servicio...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("servicio detenido")
}
