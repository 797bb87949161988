package retry

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quotedesk/rfq-client/pkg/model"
)

// Config controls the retry schedule around store operations.
type Config struct {
	MaxRetries        int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// DefaultConfig returns the standard schedule: 3 retries, 1s initial delay,
// 10s cap, doubling backoff.
func DefaultConfig() Config {
	return Config{
		MaxRetries:        3,
		InitialDelay:      1 * time.Second,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2,
	}
}

// Executor wraps fallible store operations with exponential backoff.
// Local validation and signing are never routed through it.
type Executor struct {
	cfg    Config
	logger *zap.Logger
}

// New creates an Executor. Zero config fields fall back to defaults.
func New(cfg Config, logger *zap.Logger) *Executor {
	def := DefaultConfig()
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = def.InitialDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	if cfg.BackoffMultiplier <= 0 {
		cfg.BackoffMultiplier = def.BackoffMultiplier
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{cfg: cfg, logger: logger}
}

// Backoff returns the sleep duration before retry attempt k (k >= 1):
// min(initial * multiplier^(k-1), max).
func (e *Executor) Backoff(attempt int) time.Duration {
	delay := float64(e.cfg.InitialDelay)
	for i := 1; i < attempt; i++ {
		delay *= e.cfg.BackoffMultiplier
	}
	if delay > float64(e.cfg.MaxDelay) {
		return e.cfg.MaxDelay
	}
	return time.Duration(delay)
}

// Do invokes fn up to MaxRetries+1 times. Non-retryable failures abort
// immediately and are surfaced as-is; exhaustion surfaces a single
// *model.NetworkError wrapping the last cause.
func (e *Executor) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= e.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := e.Backoff(attempt)
			e.logger.Warn("retry.waiting",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr))

			select {
			case <-ctx.Done():
				return &model.NetworkError{Op: op, Attempts: attempt, Err: ctx.Err()}
			case <-time.After(delay):
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !Retryable(err) {
			e.logger.Debug("retry.aborted",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return err
		}
	}

	e.logger.Warn("retry.exhausted",
		zap.String("op", op),
		zap.Int("attempts", e.cfg.MaxRetries+1),
		zap.Error(lastErr))

	return &model.NetworkError{Op: op, Attempts: e.cfg.MaxRetries + 1, Err: lastErr}
}

// Value is Do for operations that produce a result.
func Value[T any](ctx context.Context, e *Executor, op string, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := e.Do(ctx, op, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// Retryable classifies a failure. Validation, ownership, signature, and
// not-found failures are terminal, as is anything that looks like an HTTP
// 400/404 from the store.
func Retryable(err error) bool {
	var verr *model.ValidationError
	var oerr *model.OwnershipError
	var serr *model.SignatureError
	var nferr *model.RFQNotFoundError
	if errors.As(err, &verr) || errors.As(err, &oerr) || errors.As(err, &serr) || errors.As(err, &nferr) {
		return false
	}

	msg := err.Error()
	if strings.Contains(msg, "400") || strings.Contains(msg, "404") {
		return false
	}
	return true
}
