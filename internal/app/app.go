package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/macdee501/web-grocery-delivery-version-1/internal/config"
	"github.com/macdee501/web-grocery-delivery-version-1/internal/event"
	handler "github.com/macdee501/web-grocery-delivery-version-1/internal/handler/http"
	"github.com/macdee501/web-grocery-delivery-version-1/internal/payment"
	"github.com/macdee501/web-grocery-delivery-version-1/internal/repository/memory"
	"github.com/macdee501/web-grocery-delivery-version-1/internal/repository/postgres"
	redisrepo "github.com/macdee501/web-grocery-delivery-version-1/internal/repository/redis"
	"github.com/macdee501/web-grocery-delivery-version-1/internal/service"
	"github.com/macdee501/web-grocery-delivery-version-1/pkg/database"
	"github.com/macdee501/web-grocery-delivery-version-1/pkg/health"
	"github.com/macdee501/web-grocery-delivery-version-1/pkg/httpclient"
	"github.com/macdee501/web-grocery-delivery-version-1/pkg/kafka"
	"github.com/macdee501/web-grocery-delivery-version-1/pkg/logger"
)

const sessionSweepInterval = 5 * time.Minute

// App wires the storefront service together and owns its lifecycle.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	server   *http.Server
	redis    *goredis.Client
	pool     *pgxpool.Pool
	producer *kafka.Producer
	sessions *memory.CheckoutSessionStore
}

// New builds the application: connections, repositories, services,
// handlers, and the HTTP server.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.New(cfg.ServiceName, cfg.LogLevel)

	redisClient, err := database.NewRedisClient(ctx, *cfg.Redis())
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	producer := kafka.NewProducer(kafka.DefaultProducerConfig(cfg.KafkaBrokers), log)
	events := event.NewProducer(producer, log)

	cartRepo := redisrepo.NewCartRepository(redisClient, cfg.CartTTL)
	sessionStore := memory.NewCheckoutSessionStore()
	orderRepo := postgres.NewOrderRepository(pool)
	catalogRepo := postgres.NewCatalogRepository(pool)

	gateway := payment.NewClient(
		httpclient.New(httpclient.DefaultConfig()),
		cfg.PaymentGatewayURL,
		cfg.PaymentGatewayAPIKey,
		log,
	)

	cartSvc := service.NewCartService(cartRepo, events, cfg.Currency, log)
	checkoutSvc := service.NewCheckoutService(cartRepo, sessionStore, orderRepo, gateway, events, service.CheckoutConfig{
		Currency:    cfg.Currency,
		DeliveryFee: cfg.DeliveryFeeCents,
		SessionTTL:  cfg.CheckoutTTL,
	}, log)
	orderSvc := service.NewOrderService(orderRepo, log)
	catalogSvc := service.NewCatalogService(catalogRepo, log)

	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.Register("postgres", pool.Ping)
	healthHandler.Register("kafka", producer.Ping)

	router := handler.NewRouter(handler.RouterConfig{
		ServiceName: cfg.ServiceName,
		Logger:      log,
		Health:      healthHandler,
		Cart:        handler.NewCartHandler(cartSvc, log),
		Checkout:    handler.NewCheckoutHandler(checkoutSvc, log),
		Order:       handler.NewOrderHandler(orderSvc, log),
		Catalog:     handler.NewCatalogHandler(catalogSvc, log),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &App{
		cfg:      cfg,
		logger:   log,
		server:   server,
		redis:    redisClient,
		pool:     pool,
		producer: producer,
		sessions: sessionStore,
	}, nil
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Run serves HTTP until the context is canceled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	go a.sweepSessions(ctx)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
		return a.Shutdown()
	}
}

// Shutdown stops the HTTP server and closes all connections.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("http server shutdown failed", slog.String("error", err.Error()))
	}
	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close failed", slog.String("error", err.Error()))
	}
	if err := a.redis.Close(); err != nil {
		a.logger.Error("redis close failed", slog.String("error", err.Error()))
	}
	a.pool.Close()

	a.logger.Info("shutdown complete")
	return nil
}

func (a *App) sweepSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.sessions.Sweep(); n > 0 {
				a.logger.Debug("swept expired checkout sessions", slog.Int("count", n))
			}
		}
	}
}
