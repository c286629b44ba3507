package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher pushes notification events to RabbitMQ. It is designed for
// fire-and-forget use: every error is logged and returned so callers can
// ignore failures without interrupting the main request flow. Each
// publish opens a short-lived connection, which keeps the publisher free
// of connection state at the cost of per-message dial latency; the
// notification path is detached from request handling, so that latency
// is never user-visible.
type Publisher struct {
	url string
	log *zap.Logger
}

// NewPublisher returns a Publisher that dials the given AMQP URL.
func NewPublisher(url string, log *zap.Logger) *Publisher {
	return &Publisher{url: url, log: log}
}

// PublishTicketIssued publishes a TicketIssuedEvent to the ticket.issued queue.
func (p *Publisher) PublishTicketIssued(ctx context.Context, ev TicketIssuedEvent) error {
	return p.publish(ctx, TicketIssuedQueue, ev)
}

// PublishRefundProcessed publishes a RefundProcessedEvent to the refund.processed queue.
func (p *Publisher) PublishRefundProcessed(ctx context.Context, ev RefundProcessedEvent) error {
	return p.publish(ctx, RefundProcessedQueue, ev)
}

func (p *Publisher) publish(ctx context.Context, queueName string, ev any) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Error("rabbitmq dial failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Error("rabbitmq channel open failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts; declare is idempotent.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		p.log.Error("rabbitmq queue declare failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("rabbitmq marshal event failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		p.log.Error("rabbitmq publish failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}
	return nil
}
