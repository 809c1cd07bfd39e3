package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// AMQPSender hands messages to a mail worker through a durable RabbitMQ
// queue. A connection is opened per message; notification volume is a few
// messages per registration.
type AMQPSender struct {
	url   string
	queue string
	log   *zap.Logger
}

func NewAMQPSender(url, queue string, log *zap.Logger) *AMQPSender {
	return &AMQPSender{
		url:   url,
		queue: queue,
		log:   log,
	}
}

func (s *AMQPSender) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	conn, err := amqp.Dial(s.url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		s.queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		return fmt.Errorf("declare queue %s: %w", s.queue, err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", s.queue, false, false, pub); err != nil {
		return fmt.Errorf("publish to %s: %w", s.queue, err)
	}

	s.log.Debug("notification queued",
		zap.String("queue", s.queue),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}
