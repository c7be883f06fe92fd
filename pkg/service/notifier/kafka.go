package notifier

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/segmentio/kafka-go"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
)

const eventTypeHeader = "event_type"

// KafkaWriter is the subset of kafka.Writer used by the notifier
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes events to a topic, keyed by risk ID so that events of the
// same risk land on the same partition in order.
type Kafka struct {
	writer KafkaWriter
}

type KafkaOption func(*kafka.Writer)

// WithKafkaBatchTimeout bounds how long the writer waits to fill a batch
func WithKafkaBatchTimeout(d time.Duration) KafkaOption {
	return func(w *kafka.Writer) {
		w.BatchTimeout = d
	}
}

// NewKafka creates a notifier writing to topic on the given brokers
func NewKafka(brokers []string, topic string, opts ...KafkaOption) (*Kafka, error) {
	if len(brokers) == 0 {
		return nil, goerr.New("kafka brokers are required")
	}
	if topic == "" {
		return nil, goerr.New("kafka topic is required")
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(w)
	}

	return &Kafka{writer: w}, nil
}

// NewKafkaWithWriter wraps an existing writer
func NewKafkaWithWriter(w KafkaWriter) *Kafka {
	return &Kafka{writer: w}
}

func (n *Kafka) Notify(ctx context.Context, event *model.WorkflowEvent) error {
	b, err := encodeEvent(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.RiskID.String()),
		Value: b,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: eventTypeHeader, Value: []byte(event.Type.String())},
		},
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return goerr.Wrap(err, "failed to write kafka message",
			goerr.V("event_id", event.ID), goerr.V("risk_id", event.RiskID))
	}
	return nil
}

func (n *Kafka) Close() error {
	if err := n.writer.Close(); err != nil {
		return goerr.Wrap(err, "failed to close kafka writer")
	}
	return nil
}
