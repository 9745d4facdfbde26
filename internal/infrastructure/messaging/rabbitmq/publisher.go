// internal/infrastructure/messaging/rabbitmq/publisher.go
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/your-org/evermore-storefront/internal/config"
	"github.com/your-org/evermore-storefront/internal/domain/order"
)

const publishTimeout = 3 * time.Second

// channel is the subset of *amqp.Channel the publisher needs
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends order events to a topic exchange
type Publisher struct {
	conn     *amqp.Connection
	ch       channel
	exchange string
	appID    string
	log      *logrus.Logger
}

// NewPublisher dials RabbitMQ and declares the order events exchange
func NewPublisher(cfg *config.Config, log *logrus.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.Messaging.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Messaging.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Messaging.Exchange, err)
	}

	log.WithField("exchange", cfg.Messaging.Exchange).Info("RabbitMQ publisher ready")

	p := newPublisher(ch, cfg.Messaging.Exchange, cfg.App.Name, log)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchange, appID string, log *logrus.Logger) *Publisher {
	return &Publisher{ch: ch, exchange: exchange, appID: appID, log: log}
}

// PublishOrderPlaced publishes a persistent order.placed message
func (p *Publisher) PublishOrderPlaced(ctx context.Context, event order.PlacedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", order.PlacedEventType, err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.ch.PublishWithContext(pubCtx, p.exchange, order.PlacedEventType, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.OrderNumber,
		Timestamp:    event.PlacedAt,
		Type:         order.PlacedEventType,
		AppId:        p.appID,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", order.PlacedEventType, err)
	}

	p.log.WithField("order_number", event.OrderNumber).Debug("Published order event")
	return nil
}

// Close closes the channel and connection
func (p *Publisher) Close() error {
	if err := p.ch.Close(); err != nil {
		return err
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NoopPublisher drops events, used when messaging is disabled
type NoopPublisher struct {
	log *logrus.Logger
}

// NewNoopPublisher creates a publisher that only logs
func NewNoopPublisher(log *logrus.Logger) *NoopPublisher {
	return &NoopPublisher{log: log}
}

// PublishOrderPlaced logs the event and returns nil
func (n *NoopPublisher) PublishOrderPlaced(_ context.Context, event order.PlacedEvent) error {
	n.log.WithField("order_number", event.OrderNumber).Debug("Messaging disabled, order event dropped")
	return nil
}

// Close is a no-op
func (n *NoopPublisher) Close() error { return nil }
