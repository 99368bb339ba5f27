package events

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rabbitmq/amqp091-go"
)

// AmqpPublisher publishes to a durable topic exchange named after the topic,
// with the event type as routing key.
type AmqpPublisher struct {
	mu       sync.Mutex // amqp channels are not safe for concurrent publishes
	conn     *amqp091.Connection
	ch       *amqp091.Channel
	exchange string
}

func NewAmqpPublisher(url, exchange string) (*AmqpPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "dial amqp")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "open amqp channel")
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, errors.Wrapf(err, "declare exchange %s", exchange)
	}
	return &AmqpPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *AmqpPublisher) Publish(ctx context.Context, e Envelope) error {
	body, err := e.Encode()
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx, p.exchange, e.Type, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    e.ID,
		Timestamp:    e.OccurredAt,
		Type:         e.Type,
		Body:         body,
	})
	return errors.Wrap(err, "amqp publish")
}

func (p *AmqpPublisher) Close() error {
	_ = p.ch.Close()
	return errors.Wrap(p.conn.Close(), "close amqp")
}
