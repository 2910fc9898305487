package queue

import (
	"context"
	"encoding/json"
	"time"

	"go-fairway/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const activityQueueName = "fairway.activity"

// Publisher sends domain events to the broker. Publishing is
// best-effort: errors are logged and returned so the caller can
// ignore them without interrupting the request flow. A nil Publisher
// is a no-op.
type Publisher struct {
	url string
}

func NewPublisher(url string) *Publisher {
	if url == "" {
		return nil
	}
	return &Publisher{url: url}
}

func (p *Publisher) PublishRoundCompleted(ctx context.Context, ev RoundCompletedEvent) error {
	if p == nil {
		return nil
	}
	return p.publish(ctx, ev)
}

func (p *Publisher) PublishSessionCompleted(ctx context.Context, ev SessionCompletedEvent) error {
	if p == nil {
		return nil
	}
	return p.publish(ctx, ev)
}

func (p *Publisher) publish(ctx context.Context, event interface{}) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		logger.L.Warn("rabbitmq: dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.L.Warn("rabbitmq: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(activityQueueName, true, false, false, false, nil); err != nil {
		logger.L.Warn("rabbitmq: queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", activityQueueName, false, false, pub); err != nil {
		logger.L.Warn("rabbitmq: publish failed", zap.Error(err))
		return err
	}

	return nil
}
