// Package bus fans RFQ lifecycle events out to external transports.
package bus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/quotedesk/rfq-client/internal/metrics"
	"github.com/quotedesk/rfq-client/pkg/model"
)

// Subjects for canonical RFQ events.
const (
	SubjectRFQCreated   = "evt.rfq.created.v1"
	SubjectRFQUpdated   = "evt.rfq.updated.v1"
	SubjectRFQCancelled = "evt.rfq.cancelled.v1"
	SubjectRFQFilled    = "evt.rfq.filled.v1"
)

const envelopeVersion = "1.0.0"

// jetStream is the slice of nats.JetStreamContext the publisher uses.
type jetStream interface {
	PublishMsg(msg *nats.Msg, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// NATSPublisher publishes canonical RFQ event envelopes over JetStream.
type NATSPublisher struct {
	nc      *nats.Conn
	js      jetStream
	service string
	logger  *zap.Logger
}

// NewNATSPublisher creates a publisher with JetStream enabled.
func NewNATSPublisher(nc *nats.Conn, service string, logger *zap.Logger) (*NATSPublisher, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NATSPublisher{nc: nc, js: js, service: service, logger: logger}, nil
}

// PublishRFQCreated emits an rfq.created envelope.
func (p *NATSPublisher) PublishRFQCreated(ctx context.Context, ev model.RFQCreatedEvent) error {
	return p.publish(ctx, SubjectRFQCreated, "rfq.created", ev)
}

// PublishRFQUpdated emits an rfq.updated envelope.
func (p *NATSPublisher) PublishRFQUpdated(ctx context.Context, ev model.RFQUpdatedEvent) error {
	return p.publish(ctx, SubjectRFQUpdated, "rfq.updated", ev)
}

// PublishRFQCancelled emits an rfq.cancelled envelope.
func (p *NATSPublisher) PublishRFQCancelled(ctx context.Context, ev model.RFQCancelledEvent) error {
	return p.publish(ctx, SubjectRFQCancelled, "rfq.cancelled", ev)
}

// PublishRFQFilled emits an rfq.filled envelope.
func (p *NATSPublisher) PublishRFQFilled(ctx context.Context, ev model.RFQFilledEvent) error {
	return p.publish(ctx, SubjectRFQFilled, "rfq.filled", ev)
}

func (p *NATSPublisher) publish(_ context.Context, subject, eventType string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		p.logger.Error("bus.marshal_failed",
			zap.String("subject", subject),
			zap.String("event_type", eventType),
			zap.Error(err))
		metrics.IncBusPublishError(subject)
		return err
	}

	env := model.Envelope{
		ID:            uuid.New(),
		CorrelationID: uuid.New(),
		Topic:         subject,
		EventType:     eventType,
		Version:       envelopeVersion,
		Timestamp:     time.Now().UTC(),
		Payload:       payload,
	}

	data, err := json.Marshal(env)
	if err != nil {
		metrics.IncBusPublishError(subject)
		return err
	}

	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"event_type":     []string{eventType},
			"correlation_id": []string{env.CorrelationID.String()},
			"service":        []string{p.service},
			"content_type":   []string{"application/json"},
		},
	}

	if _, err := p.js.PublishMsg(msg); err != nil {
		p.logger.Error("bus.publish_failed",
			zap.String("subject", subject),
			zap.String("event_type", eventType),
			zap.Error(err))
		metrics.IncBusPublishError(subject)
		return err
	}

	p.logger.Debug("bus.publish_success",
		zap.String("subject", subject),
		zap.String("event_type", eventType))
	return nil
}

// Close drains the underlying connection.
func (p *NATSPublisher) Close() {
	if p.nc != nil && p.nc.IsConnected() {
		p.nc.Close()
	}
}
