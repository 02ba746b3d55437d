package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissingSecret = errors.New("JWT_SECRET is not set")

type Config struct {
	HTTPPort        string
	Env             string
	MongoURI        string
	MongoDBName     string
	MongoMaxPool    uint64
	MongoMinPool    uint64
	RedisAddr       string
	RedisPassword   string
	CartCacheTTL    time.Duration
	KafkaBrokers    []string
	KafkaCartTopic  string
	JWTSecret       string
	TokenTTL        time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	AuthRatePerMin  int
	AuthRateBurst   int
}

// Load reads the process environment, optionally seeded from a .env file in
// the working directory. The signing secret has no default.
func Load() (*Config, error) {
	// a missing .env is fine, the environment wins anyway
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		Env:            getEnv("APP_ENV", "development"),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:    getEnv("MONGO_DB_NAME", "shopdb"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		KafkaBrokers:   splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaCartTopic: getEnv("KAFKA_CART_TOPIC", "cart-events"),
		JWTSecret:      strings.TrimSpace(os.Getenv("JWT_SECRET")),
	}

	var err error
	if cfg.CartCacheTTL, err = getDuration("CART_CACHE_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 365*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.MongoMaxPool, err = getUint("MONGO_MAX_POOL_SIZE", 100); err != nil {
		return nil, err
	}
	if cfg.MongoMinPool, err = getUint("MONGO_MIN_POOL_SIZE", 10); err != nil {
		return nil, err
	}
	if cfg.MongoMaxPool != 0 && cfg.MongoMinPool > cfg.MongoMaxPool {
		return nil, fmt.Errorf("MONGO_MIN_POOL_SIZE %d exceeds MONGO_MAX_POOL_SIZE %d", cfg.MongoMinPool, cfg.MongoMaxPool)
	}
	if cfg.AuthRatePerMin, err = getInt("AUTH_RATE_PER_MINUTE", 60); err != nil {
		return nil, err
	}
	if cfg.AuthRateBurst, err = getInt("AUTH_RATE_BURST", 10); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingSecret
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getUint(key string, defaultValue uint64) (uint64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
