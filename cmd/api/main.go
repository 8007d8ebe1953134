package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	infracache "github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	infrakafka "github.com/jhoicas/stock-ledger/internal/infrastructure/kafka"
	inframetrics "github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
	"github.com/jhoicas/stock-ledger/pkg/tracing"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   os.Getenv("LOG_LEVEL"),
		Service: cfg.App.Name,
	})
	zl := log.Zerolog()
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	tp, err := tracing.Init(cfg.App.Name, version, cfg.Tracing.Endpoint, cfg.Tracing.Enabled, zl)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar trazas")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, pool, zl); err != nil {
			log.Fatal().Err(err).Msg("crear/ajustar esquema")
		}
	}

	stockRepo := postgres.NewStockLotRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	txRunner := postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout, cfg.Ledger.StatementTimeout)

	// Caché del buscador (opcional). Se declara como interfaz para no pasar un puntero nil tipado.
	var searchCache inventory.SearchCache
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis no disponible, búsqueda sin caché")
			_ = redisClient.Close()
			redisClient = nil
		} else {
			searchCache = infracache.NewRedisSearchCache(redisClient, cfg.Search.CacheTTL, zl)
		}
	}

	// Publicación del historial en Kafka (opcional)
	var publisher inventory.LedgerPublisher
	var kafkaPublisher *infrakafka.Publisher
	if cfg.Kafka.Enabled() {
		kafkaPublisher, err = infrakafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, zl)
		if err != nil {
			log.Warn().Err(err).Msg("Kafka no disponible, el historial no se publicará")
		} else {
			publisher = kafkaPublisher
		}
	}

	mutationMetrics := inframetrics.NewMutationMetrics(prometheus.DefaultRegisterer)

	engine := inventory.NewMutationEngine(txRunner,
		inventory.EngineConfig{
			MainWarehouse: cfg.Ledger.MainWarehouse,
			Epsilon:       cfg.Ledger.Epsilon,
		},
		inventory.EngineDeps{
			Publisher: publisher,
			Cache:     searchCache,
			Observer:  mutationMetrics,
			Logger:    &zl,
		},
	)
	catalogUC := inventory.NewCatalogUseCase(stockRepo, searchCache, cfg.Search.MaxRows)
	ledgerUC := inventory.NewLedgerUseCase(ledgerRepo, infrapdf.NewMarotoLedgerPDF())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.TracingMiddleware(cfg.App.Name))
	app.Use(httpRouter.RequestLoggingMiddleware(zl))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Stock Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Catalog:   catalogUC,
		Engine:    engine,
		Ledger:    ledgerUC,
		Metrics:   promhttp.Handler(),
		JWTSecret: cfg.JWT.Secret,
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
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar producer Kafka")
		}
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
		log.Error().Err(err).Msg("cerrar exportador de trazas")
	}

	log.Info().Msg("aplicación detenida")
}
