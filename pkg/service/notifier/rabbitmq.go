package notifier

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
)

// AMQPChannel is the subset of amqp.Channel used by the notifier
type AMQPChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQ publishes persistent JSON messages to a durable queue through
// the default exchange.
type RabbitMQ struct {
	ch    AMQPChannel
	queue string
	conn  *amqp.Connection
}

// NewRabbitMQ dials url, opens a channel and declares queue
func NewRabbitMQ(url, queue string) (*RabbitMQ, error) {
	if url == "" {
		return nil, goerr.New("rabbitmq URL is required")
	}
	if queue == "" {
		return nil, goerr.New("rabbitmq queue is required")
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to dial rabbitmq")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, goerr.Wrap(err, "failed to open rabbitmq channel")
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, goerr.Wrap(err, "failed to declare rabbitmq queue", goerr.V("queue", queue))
	}

	return &RabbitMQ{ch: ch, queue: queue, conn: conn}, nil
}

// NewRabbitMQWithChannel wraps an already configured channel. The queue is
// assumed to exist.
func NewRabbitMQWithChannel(ch AMQPChannel, queue string) *RabbitMQ {
	return &RabbitMQ{ch: ch, queue: queue}
}

func (n *RabbitMQ) Notify(ctx context.Context, event *model.WorkflowEvent) error {
	b, err := encodeEvent(event)
	if err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  contentTypeJSON,
		DeliveryMode: amqp.Persistent,
		MessageId:    string(event.ID),
		Type:         event.Type.String(),
		Timestamp:    event.OccurredAt,
		Body:         b,
	}
	if err := n.ch.PublishWithContext(ctx, "", n.queue, false, false, msg); err != nil {
		return goerr.Wrap(err, "failed to publish rabbitmq message",
			goerr.V("event_id", event.ID), goerr.V("queue", n.queue))
	}
	return nil
}

func (n *RabbitMQ) Close() error {
	var errs []error
	if err := n.ch.Close(); err != nil {
		errs = append(errs, err)
	}
	if n.conn != nil {
		if err := n.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return goerr.Wrap(err, "failed to close rabbitmq")
	}
	return nil
}
