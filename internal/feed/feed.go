// Package feed turns the store's created/updated notifications into typed
// RFQ lifecycle events. It only classifies and re-dispatches; change
// detection itself is the store's job.
package feed

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/quotedesk/rfq-client/internal/entitystore"
	"github.com/quotedesk/rfq-client/internal/metrics"
	"github.com/quotedesk/rfq-client/internal/query"
	"github.com/quotedesk/rfq-client/internal/rfq"
	"github.com/quotedesk/rfq-client/pkg/model"
)

// DefaultPollInterval is the watch cadence when none is given.
const DefaultPollInterval = 2 * time.Second

// Handlers receives classified events. Any handler may be nil; cancelled
// and filled transitions fall through to OnUpdated when their dedicated
// handler is not registered.
type Handlers struct {
	OnCreated   func(model.RFQCreatedEvent)
	OnUpdated   func(model.RFQUpdatedEvent)
	OnCancelled func(model.RFQCancelledEvent)
	OnFilled    func(model.RFQFilledEvent)
}

// Options configures one watch subscription.
type Options struct {
	Filters      model.QueryFilters
	PollInterval time.Duration
	Handlers     Handlers
}

// Watcher dispatches RFQ change events observed through a store.
type Watcher struct {
	logger *zap.Logger
	store  entitystore.Store
}

// NewWatcher creates a Watcher over the given store.
func NewWatcher(logger *zap.Logger, store entitystore.Store) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{logger: logger, store: store}
}

// Watch registers a subscription and returns its unsubscribe handle.
// Each call runs an independent polling loop; unsubscribing one never
// affects another. Setup failure is surfaced immediately, not retried.
func (w *Watcher) Watch(ctx context.Context, opts Options) (entitystore.UnsubscribeFunc, error) {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	q := query.Translate(opts.Filters, nil, nil)

	unsub, err := w.store.Watch(ctx, entitystore.WatchOptions{
		Type:         q.Type,
		Predicates:   q.Predicates,
		PollInterval: opts.PollInterval,
		OnCreated:    func(e entitystore.Entity) { w.dispatchCreated(e, opts.Handlers) },
		OnUpdated:    func(e entitystore.Entity) { w.dispatchUpdated(e, opts.Handlers) },
	})
	if err != nil {
		w.logger.Error("feed.watch_setup_failed", zap.Error(err))
		return nil, err
	}

	w.logger.Info("feed.watch_started",
		zap.Duration("poll_interval", opts.PollInterval))
	return unsub, nil
}

func (w *Watcher) dispatchCreated(e entitystore.Entity, h Handlers) {
	r, err := rfq.FromEntity(e)
	if err != nil {
		w.logger.Warn("feed.decode_failed", zap.String("key", e.Key), zap.Error(err))
		return
	}

	if r.Status != model.StatusOpen {
		return
	}
	if h.OnCreated == nil {
		return
	}

	metrics.IncFeedEvent("created")
	w.logger.Debug("feed.rfq_created", zap.String("id", r.ID))
	h.OnCreated(model.RFQCreatedEvent{RFQ: r, ObservedAt: time.Now().Unix()})
}

func (w *Watcher) dispatchUpdated(e entitystore.Entity, h Handlers) {
	r, err := rfq.FromEntity(e)
	if err != nil {
		w.logger.Warn("feed.decode_failed", zap.String("key", e.Key), zap.Error(err))
		return
	}
	observedAt := time.Now().Unix()

	switch r.Status {
	case model.StatusCancelled:
		if h.OnCancelled != nil {
			metrics.IncFeedEvent("cancelled")
			w.logger.Debug("feed.rfq_cancelled", zap.String("id", r.ID))
			h.OnCancelled(model.RFQCancelledEvent{RFQ: r, ObservedAt: observedAt})
			return
		}
	case model.StatusFilled:
		if h.OnFilled != nil {
			metrics.IncFeedEvent("filled")
			w.logger.Debug("feed.rfq_filled", zap.String("id", r.ID))
			h.OnFilled(model.RFQFilledEvent{RFQ: r, ObservedAt: observedAt})
			return
		}
	}

	if h.OnUpdated != nil {
		metrics.IncFeedEvent("updated")
		w.logger.Debug("feed.rfq_updated", zap.String("id", r.ID), zap.String("status", string(r.Status)))
		h.OnUpdated(model.RFQUpdatedEvent{RFQ: r, ObservedAt: observedAt})
	}
}
