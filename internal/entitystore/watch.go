package entitystore

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultPollInterval is the watch polling cadence when unspecified.
const DefaultPollInterval = 2 * time.Second

// Watch starts a polling loop that observes entities matching the options
// and invokes OnCreated for newly observed keys and OnUpdated for changed
// ones. Each call runs its own independent loop; the returned unsubscribe
// is idempotent and only stops this subscription.
func (s *RedisStore) Watch(ctx context.Context, opts WatchOptions) (UnsubscribeFunc, error) {
	if opts.Type == "" {
		return nil, fmt.Errorf("watch requires an entity type")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	// Subscription setup failure is surfaced immediately, not retried.
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("watch setup failed: %w", err)
	}

	stopCh := make(chan struct{})
	var once sync.Once
	unsubscribe := func() {
		once.Do(func() { close(stopCh) })
	}

	go s.watchLoop(ctx, opts, stopCh)

	return unsubscribe, nil
}

type observed struct {
	updatedAt int64
	data      []byte
}

func (s *RedisStore) watchLoop(ctx context.Context, opts WatchOptions, stopCh <-chan struct{}) {
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	seen := make(map[string]observed)

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("store.watch_stopped",
				zap.String("type", opts.Type),
				zap.String("reason", "context_done"))
			return

		case <-stopCh:
			s.logger.Debug("store.watch_stopped",
				zap.String("type", opts.Type),
				zap.String("reason", "unsubscribed"))
			return

		case <-ticker.C:
			res, err := s.Query(ctx, Query{Type: opts.Type, Predicates: opts.Predicates})
			if err != nil {
				s.logger.Warn("store.watch_poll_failed",
					zap.String("type", opts.Type),
					zap.Error(err))
				continue
			}

			for _, e := range res.Entities {
				prev, ok := seen[e.Key]
				seen[e.Key] = observed{updatedAt: e.UpdatedAt, data: e.Data}

				switch {
				case !ok:
					if opts.OnCreated != nil {
						opts.OnCreated(e)
					}
				case prev.updatedAt != e.UpdatedAt || !bytes.Equal(prev.data, e.Data):
					if opts.OnUpdated != nil {
						opts.OnUpdated(e)
					}
				}
			}
		}
	}
}
