package bus

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/quotedesk/rfq-client/internal/metrics"
	"github.com/quotedesk/rfq-client/pkg/eventbus"
	"github.com/quotedesk/rfq-client/pkg/model"
)

// Routing keys for RFQ events on the default exchange.
const (
	RouteRFQCreated   = "rfq.events.created"
	RouteRFQUpdated   = "rfq.events.updated"
	RouteRFQCancelled = "rfq.events.cancelled"
	RouteRFQFilled    = "rfq.events.filled"
)

// amqpChannel is the slice of *amqp.Channel the publisher uses.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher mirrors RFQ lifecycle events from the in-process bus
// onto RabbitMQ queues.
type AMQPPublisher struct {
	conn    *amqp.Connection
	channel amqpChannel
	logger  *zap.Logger
}

// NewAMQPPublisher connects to RabbitMQ and subscribes itself to the
// in-process event bus.
func NewAMQPPublisher(url string, bus *eventbus.EventBus, logger *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	p := &AMQPPublisher{conn: conn, channel: channel, logger: logger}
	p.subscribe(bus)
	return p, nil
}

func (p *AMQPPublisher) subscribe(bus *eventbus.EventBus) {
	bus.Subscribe(model.RFQCreatedEvent{}, func(event any) {
		if ev, ok := event.(model.RFQCreatedEvent); ok {
			p.publish(RouteRFQCreated, ev.RFQ.ID, ev, 0)
		}
	})
	bus.Subscribe(model.RFQUpdatedEvent{}, func(event any) {
		if ev, ok := event.(model.RFQUpdatedEvent); ok {
			p.publish(RouteRFQUpdated, ev.RFQ.ID, ev, 0)
		}
	})
	bus.Subscribe(model.RFQCancelledEvent{}, func(event any) {
		if ev, ok := event.(model.RFQCancelledEvent); ok {
			p.publish(RouteRFQCancelled, ev.RFQ.ID, ev, 10)
		}
	})
	bus.Subscribe(model.RFQFilledEvent{}, func(event any) {
		if ev, ok := event.(model.RFQFilledEvent); ok {
			p.publish(RouteRFQFilled, ev.RFQ.ID, ev, 0)
		}
	})
}

func (p *AMQPPublisher) publish(route, id string, event any, priority uint8) {
	if id == "" {
		p.logger.Error("bus.amqp_event_missing_id", zap.String("route", route), zap.Any("event", event))
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("bus.amqp_marshal_failed", zap.String("route", route), zap.Error(err))
		metrics.IncBusPublishError(route)
		return
	}

	err = p.channel.PublishWithContext(
		context.Background(),
		"",    // exchange
		route, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
			Priority:    priority,
		},
	)
	if err != nil {
		p.logger.Error("bus.amqp_publish_failed", zap.String("route", route), zap.Error(err))
		metrics.IncBusPublishError(route)
		return
	}

	p.logger.Debug("bus.amqp_publish_success", zap.String("route", route), zap.String("id", id))
}

// Close closes the channel and connection.
func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
