package bus

import (
	"context"

	"github.com/quotedesk/rfq-client/internal/feed"
	"github.com/quotedesk/rfq-client/pkg/eventbus"
	"github.com/quotedesk/rfq-client/pkg/model"
)

// FeedHandlers returns change feed handlers that republish every event
// on the in-process bus, where transports pick them up.
func FeedHandlers(bus *eventbus.EventBus) feed.Handlers {
	return feed.Handlers{
		OnCreated:   func(ev model.RFQCreatedEvent) { bus.Publish(ev) },
		OnUpdated:   func(ev model.RFQUpdatedEvent) { bus.Publish(ev) },
		OnCancelled: func(ev model.RFQCancelledEvent) { bus.Publish(ev) },
		OnFilled:    func(ev model.RFQFilledEvent) { bus.Publish(ev) },
	}
}

// AttachNATS subscribes a NATS publisher to the in-process bus so every
// RFQ lifecycle event is forwarded as a canonical envelope.
func AttachNATS(bus *eventbus.EventBus, pub *NATSPublisher) {
	ctx := context.Background()

	bus.Subscribe(model.RFQCreatedEvent{}, func(event any) {
		if ev, ok := event.(model.RFQCreatedEvent); ok {
			_ = pub.PublishRFQCreated(ctx, ev)
		}
	})
	bus.Subscribe(model.RFQUpdatedEvent{}, func(event any) {
		if ev, ok := event.(model.RFQUpdatedEvent); ok {
			_ = pub.PublishRFQUpdated(ctx, ev)
		}
	})
	bus.Subscribe(model.RFQCancelledEvent{}, func(event any) {
		if ev, ok := event.(model.RFQCancelledEvent); ok {
			_ = pub.PublishRFQCancelled(ctx, ev)
		}
	})
	bus.Subscribe(model.RFQFilledEvent{}, func(event any) {
		if ev, ok := event.(model.RFQFilledEvent); ok {
			_ = pub.PublishRFQFilled(ctx, ev)
		}
	})
}
