package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"

	"github.com/quotedesk/rfq-client/internal/api"
	"github.com/quotedesk/rfq-client/internal/bus"
	"github.com/quotedesk/rfq-client/internal/config"
	"github.com/quotedesk/rfq-client/internal/entitystore"
	"github.com/quotedesk/rfq-client/internal/feed"
	"github.com/quotedesk/rfq-client/internal/retry"
	"github.com/quotedesk/rfq-client/internal/rfq"
	"github.com/quotedesk/rfq-client/internal/signer"
	"github.com/quotedesk/rfq-client/pkg/eventbus"
	"github.com/quotedesk/rfq-client/pkg/logger"
	"github.com/quotedesk/rfq-client/pkg/secrets"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()
	logg.Info("starting [rfqd]...")

	// --- Signing key ---
	sig, stopCleaner, err := loadSigner(ctx, cfg)
	if err != nil {
		logg.Fatalw("failed to load signing key", "error", err)
	}
	if stopCleaner != nil {
		defer close(stopCleaner)
	}

	// --- Store (Redis, optional Postgres journal) ---
	st, err := entitystore.NewRedis(cfg.RedisAddr, cfg.RedisDB, cfg.DatabaseURL, entitystore.PGPoolConfig{
		MaxConns:          int32(cfg.PGMaxConns),
		MinConns:          int32(cfg.PGMinConns),
		MaxConnLifetime:   cfg.PGMaxConnLifetime,
		MaxConnIdleTime:   cfg.PGMaxConnIdleTime,
		HealthCheckPeriod: cfg.PGHealthCheckPeriod,
	}, logger.L())
	if err != nil {
		logg.Fatalw("failed to init store", "error", err)
	}
	defer st.Close()

	// --- RFQ service ---
	svc := rfq.NewService(logger.L(), st, sig, retry.Config{
		MaxRetries:        cfg.RetryMaxRetries,
		InitialDelay:      cfg.RetryInitialDelay,
		MaxDelay:          cfg.RetryMaxDelay,
		BackoffMultiplier: cfg.RetryBackoffMultiplier,
	})

	// --- Event fan-out: change feed -> in-process bus -> transports ---
	evBus := eventbus.New()

	var nc *nats.Conn
	if cfg.NATSURL != "" {
		nc, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logg.Fatalw("failed to connect to NATS", "error", err)
		}

		pub, err := bus.NewNATSPublisher(nc, cfg.ServiceName, logger.L())
		if err != nil {
			logg.Fatalw("failed to init NATS publisher", "error", err)
		}
		bus.AttachNATS(evBus, pub)
	}

	if cfg.AMQPURL != "" {
		amqpPub, err := bus.NewAMQPPublisher(cfg.AMQPURL, evBus, logger.L())
		if err != nil {
			logg.Fatalw("failed to init AMQP publisher", "error", err)
		}
		defer amqpPub.Close()
	}

	watcher := feed.NewWatcher(logger.L(), st)
	unsub, err := watcher.Watch(ctx, feed.Options{
		PollInterval: cfg.FeedPollInterval,
		Handlers:     bus.FeedHandlers(evBus),
	})
	if err != nil {
		logg.Fatalw("failed to start change feed", "error", err)
	}
	defer unsub()

	// --- Fiber HTTP server ---
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		BodyLimit:    cfg.HTTPBodyLimit,
	})

	handler := api.NewRFQHandler(logger.L(), svc)
	api.RegisterRoutes(app, nc, st, handler)

	go func() {
		logg.Infof("HTTP API listening on :%d", cfg.Port)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logg.Fatalw("fiber.listen_failed", "error", err)
		}
	}()

	logg.Infow("[rfqd] running",
		"env", cfg.Env,
		"redis", cfg.RedisAddr,
		"nats", cfg.NATSURL,
		"feed_poll_interval", cfg.FeedPollInterval)

	<-ctx.Done()
	logg.Info("shutting down [rfqd]...")

	if err := app.Shutdown(); err != nil {
		logg.Errorw("fiber.shutdown_failed", "error", err)
	}
	if nc != nil && nc.IsConnected() {
		nc.Close()
	}
}

// loadSigner builds the payload signer, from AWS Secrets Manager when a
// secret is configured, otherwise from SIGNING_KEY_HEX.
func loadSigner(ctx context.Context, cfg *config.Config) (signer.Signer, chan struct{}, error) {
	if cfg.SecretName != "" {
		provider, err := secrets.NewAWSProvider(cfg.AWSRegion)
		if err != nil {
			return nil, nil, err
		}

		cache := secrets.NewCache[*signer.LocalSigner](cfg.CacheTTL)
		stopCleaner := make(chan struct{})
		go cache.StartCleaner(cfg.CleanupFreq, stopCleaner)

		resolver := signer.NewKeyResolver(logger.L(), provider, cache, cfg.SecretName, cfg.SecretField)
		s, err := resolver.Resolve(ctx)
		if err != nil {
			close(stopCleaner)
			return nil, nil, err
		}
		return s, stopCleaner, nil
	}

	if cfg.SigningKeyHex == "" {
		return nil, nil, fmt.Errorf("no signing key configured: set SIGNING_SECRET_NAME or SIGNING_KEY_HEX")
	}

	s, err := signer.NewLocalSigner(cfg.SigningKeyHex)
	if err != nil {
		return nil, nil, err
	}
	return s, nil, nil
}
