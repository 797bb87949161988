// Package config holds the runtime configuration for the rfqd service.
package config

import (
	"time"

	"github.com/joho/godotenv"

	pkgconfig "github.com/quotedesk/rfq-client/pkg/config"
)

// Config holds the core runtime configuration for a service instance.
// It supports environment-based initialization, with sensible defaults.
type Config struct {
	ServiceName string // e.g. "rfqd"
	Env         string // e.g. "dev", "uat", "prod"
	LogLevel    string // "debug", "info", etc.
	Port        int    // service HTTP port

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	HTTPBodyLimit    int

	RedisAddr string // e.g. localhost:6379
	RedisDB   int

	// Optional append-only journal. Empty DatabaseURL disables it.
	DatabaseURL         string
	PGMaxConns          int
	PGMinConns          int
	PGMaxConnLifetime   time.Duration
	PGMaxConnIdleTime   time.Duration
	PGHealthCheckPeriod time.Duration

	NATSURL   string // e.g. nats://localhost:4222
	AMQPURL   string // empty disables the RabbitMQ mirror
	AWSRegion string

	// Signing key resolution via AWS Secrets Manager. Empty SecretName
	// falls back to SigningKeyHex (dev only).
	SecretName    string
	SecretField   string
	SigningKeyHex string
	CacheTTL      time.Duration // TTL for secret cache
	CleanupFreq   time.Duration // frequency for cache cleanup goroutine

	FeedPollInterval time.Duration

	RetryMaxRetries        int
	RetryInitialDelay      time.Duration
	RetryMaxDelay          time.Duration
	RetryBackoffMultiplier float64
}

// Load loads configuration from environment variables and .env file if present.
func Load() *Config {
	// load .env silently (no error if missing)
	_ = godotenv.Load()

	return &Config{
		ServiceName: pkgconfig.GetEnv("SERVICE_NAME", "rfqd"),
		Env:         pkgconfig.GetEnv("ENV", "dev"),
		LogLevel:    pkgconfig.GetEnv("LOG_LEVEL", "info"),
		Port:        pkgconfig.GetEnvInt("RFQD_PORT", 9020),

		HTTPReadTimeout:  pkgconfig.GetEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
		HTTPWriteTimeout: pkgconfig.GetEnvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
		HTTPIdleTimeout:  pkgconfig.GetEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		HTTPBodyLimit:    pkgconfig.GetEnvInt("HTTP_BODY_LIMIT", 1*1024*1024),

		RedisAddr: pkgconfig.GetEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:   pkgconfig.GetEnvInt("REDIS_DB", 0),

		DatabaseURL:         pkgconfig.GetEnv("DATABASE_URL", ""),
		PGMaxConns:          pkgconfig.GetEnvInt("PG_MAX_CONNS", 10),
		PGMinConns:          pkgconfig.GetEnvInt("PG_MIN_CONNS", 2),
		PGMaxConnLifetime:   pkgconfig.GetEnvDuration("PG_MAX_CONN_LIFETIME", 30*time.Minute),
		PGMaxConnIdleTime:   pkgconfig.GetEnvDuration("PG_MAX_CONN_IDLE_TIME", 5*time.Minute),
		PGHealthCheckPeriod: pkgconfig.GetEnvDuration("PG_HEALTH_CHECK_PERIOD", 1*time.Minute),

		NATSURL:   pkgconfig.GetEnv("NATS_URL", "nats://localhost:4222"),
		AMQPURL:   pkgconfig.GetEnv("AMQP_URL", ""),
		AWSRegion: pkgconfig.GetEnv("AWS_REGION", "us-east-2"),

		SecretName:    pkgconfig.GetEnv("SIGNING_SECRET_NAME", ""),
		SecretField:   pkgconfig.GetEnv("SIGNING_SECRET_FIELD", "private_key"),
		SigningKeyHex: pkgconfig.GetEnv("SIGNING_KEY_HEX", ""),
		CacheTTL:      pkgconfig.GetEnvDuration("CACHE_TTL", 24*time.Hour),
		CleanupFreq:   pkgconfig.GetEnvDuration("CACHE_CLEANUP_FREQ", 10*time.Minute),

		FeedPollInterval: pkgconfig.GetEnvDuration("FEED_POLL_INTERVAL", 2*time.Second),

		RetryMaxRetries:        pkgconfig.GetEnvInt("RETRY_MAX_RETRIES", 3),
		RetryInitialDelay:      pkgconfig.GetEnvDuration("RETRY_INITIAL_DELAY", time.Second),
		RetryMaxDelay:          pkgconfig.GetEnvDuration("RETRY_MAX_DELAY", 10*time.Second),
		RetryBackoffMultiplier: 2,
	}
}
