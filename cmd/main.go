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

	"github.com/fjod/go_shop/internal/auth"
	"github.com/fjod/go_shop/internal/cache"
	"github.com/fjod/go_shop/internal/config"
	"github.com/fjod/go_shop/internal/events"
	h "github.com/fjod/go_shop/internal/http"
	"github.com/fjod/go_shop/internal/logger"
	"github.com/fjod/go_shop/internal/repository"
	"github.com/fjod/go_shop/internal/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "go_shop: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName, repository.PoolOptions{
		MaxPoolSize: cfg.MongoMaxPool,
		MinPoolSize: cfg.MongoMinPool,
	})
	if err != nil {
		return fmt.Errorf("connect mongodb: %w", err)
	}
	defer func() {
		if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
			log.Warn("mongodb disconnect failed", zap.Error(err))
		}
	}()
	if err := repository.EnsureIndexes(ctx, mongoDB); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	log.Info("connected to mongodb", zap.String("database", cfg.MongoDBName))

	users := repository.NewUserRepository(mongoDB)
	products := repository.NewProductRepository(mongoDB)
	carts := repository.NewCartRepository(mongoDB)

	cartCache, closeCache := newCartCache(ctx, cfg, log)
	defer closeCache()

	publisher := newPublisher(cfg, log)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("event publisher close failed", zap.Error(err))
		}
	}()

	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("init token manager: %w", err)
	}

	router := h.NewRouter(h.RouterConfig{
		Users:          service.NewUserService(users, tokens, log.Named("users")),
		Products:       service.NewProductService(products, users, log.Named("products")),
		Carts:          service.NewCartService(users, products, carts, cartCache, publisher, log.Named("cart")),
		Tokens:         tokens,
		Logger:         log.Named("http"),
		RequestTimeout: cfg.RequestTimeout,
		AuthRateLimit:  h.NewRateLimiter(cfg.AuthRatePerMin, cfg.AuthRateBurst, log.Named("ratelimit")),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("http server starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}

// newCartCache returns a breaker-guarded Redis cache, or a no-op cache when
// Redis is not configured or unreachable at startup.
func newCartCache(ctx context.Context, cfg *config.Config, log *zap.Logger) (cache.CartCache, func()) {
	if cfg.RedisAddr == "" {
		log.Info("redis not configured, cart cache disabled")
		return cache.NopCache{}, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Warn("redis close failed", zap.Error(err))
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis ping failed, cart cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		closeFn()
		return cache.NopCache{}, func() {}
	}
	log.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))

	return cache.NewBreakerCache(cache.NewRedisCache(client, cfg.CartCacheTTL), cache.BreakerSettings{
		Name: "cart-cache",
	}), closeFn
}

func newPublisher(cfg *config.Config, log *zap.Logger) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		log.Info("kafka not configured, cart events disabled")
		return events.NopPublisher{}
	}
	log.Info("publishing cart events",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.KafkaCartTopic))
	return events.NewKafkaPublisher(cfg.KafkaCartTopic, cfg.KafkaBrokers...)
}
