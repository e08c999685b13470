package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JeterChan/miao-fruit-web/internal/application"
	"github.com/JeterChan/miao-fruit-web/internal/cache"
	"github.com/JeterChan/miao-fruit-web/internal/config"
	"github.com/JeterChan/miao-fruit-web/internal/kafka"
	"github.com/JeterChan/miao-fruit-web/internal/logger"
	"github.com/JeterChan/miao-fruit-web/internal/migrate"
	"github.com/JeterChan/miao-fruit-web/internal/notify"
	"github.com/JeterChan/miao-fruit-web/internal/presentation"
	pmw "github.com/JeterChan/miao-fruit-web/internal/presentation/middleware"
	"github.com/JeterChan/miao-fruit-web/internal/repository"
)

func main() {
	logger.Init()
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Warn("config load failed", "err", err)
		os.Exit(1)
	}

	if err := migrate.Up(cfg.DB_STRING); err != nil {
		logger.Warn("migrations failed", "err", err)
		os.Exit(1)
	}

	// DB pool
	pool, err := pgxpool.New(context.Background(), cfg.DB_STRING)
	if err != nil {
		logger.Warn("pgxpool new failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		logger.Warn("db ping failed", "err", err)
		os.Exit(1)
	}
	logger.Info("db connected")

	// Wiring
	productRepo := repository.NewProductRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)

	var catalogCache cache.Cache
	if cfg.REDIS_ADDR != "" {
		catalogCache = cache.NewRedisCache(cfg.REDIS_ADDR)
	}
	catalogSvc := application.NewCatalogService(productRepo, catalogCache)

	pricer := application.NewPricer(productRepo, cfg.SHIPPING_FEE, cfg.FREE_SHIPPING_QTY)
	numbers := application.NewOrderNumberGenerator(orderRepo)

	notifier := notify.NewLineNotifier(cfg.LINE_CHANNEL_TOKEN)

	// Kafka carries post-commit confirmation events to the notifier
	var publisher application.ConfirmationPublisher
	if cfg.KAFKA_BROKERS != "" {
		prod := kafka.NewProducer(cfg.KAFKA_BROKERS, cfg.KAFKA_TOPIC)
		defer prod.Close()
		publisher = prod

		_, _ = kafka.StartConsumer(
			context.Background(),
			notifier,
			kafka.ConsumerConfig{
				Brokers: cfg.KAFKA_BROKERS,
				Topic:   cfg.KAFKA_TOPIC,
				GroupID: cfg.KAFKA_GROUP,
			},
		)
	}

	orderSvc := application.NewOrdersService(orderRepo, pricer, numbers, publisher)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(pmw.Metrics)

	// API
	adminAuth := &pmw.AdminAuth{
		APIKey:    cfg.ADMIN_API_KEY,
		Username:  cfg.ADMIN_USERNAME,
		Password:  cfg.ADMIN_PASSWORD,
		DevBypass: cfg.ADMIN_DEV_BYPASS,
	}

	presentation.NewProductsHandler(catalogSvc).Register(r)
	presentation.NewOrdersHandler(orderSvc, cfg.IsDevelopment()).Register(r, adminAuth.Require)
	presentation.MountLineHealth(r, notifier.IsConfigured)
	r.Handle("/metrics", promhttp.Handler())

	addr := ":" + cfg.HTTP_PORT
	logger.Info("starting http", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Warn("http server crashed", "err", err)
		os.Exit(1)
	}
}
