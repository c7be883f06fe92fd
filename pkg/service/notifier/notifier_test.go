package notifier_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/types"
	"github.com/WilderMartins/GRC-sub003/pkg/service/notifier"
)

func newEvent() *model.WorkflowEvent {
	wf := &model.ApprovalWorkflow{
		ID:             types.NewWorkflowID(),
		RiskID:         types.NewRiskID(),
		OrganizationID: "O1",
		RequesterID:    "A",
		ApproverID:     "U1",
		Status:         types.WorkflowStatusApproved,
		CreatedAt:      time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt:      time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	return model.NewDecidedEvent(wf, types.RiskStatusAccepted, "U1")
}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafka(t *testing.T) {
	ev := newEvent()

	t.Run("message keyed by risk", func(t *testing.T) {
		w := &fakeWriter{}
		n := notifier.NewKafkaWithWriter(w)
		gt.NoError(t, n.Notify(context.Background(), ev)).Required()

		gt.A(t, w.msgs).Length(1)
		msg := w.msgs[0]
		gt.S(t, string(msg.Key)).Equal(ev.RiskID.String())
		gt.A(t, msg.Headers).Length(1)
		gt.S(t, string(msg.Headers[0].Value)).Equal("workflow.decided")

		var got map[string]any
		gt.NoError(t, json.Unmarshal(msg.Value, &got)).Required()
		gt.Value(t, got["workflow_id"]).Equal(ev.WorkflowID.String())
		gt.Value(t, got["new_status"]).Equal("approved")
		gt.Value(t, got["risk_status"]).Equal("accepted")
	})

	t.Run("write failure is returned", func(t *testing.T) {
		w := &fakeWriter{err: errors.New("broker unavailable")}
		n := notifier.NewKafkaWithWriter(w)
		gt.Error(t, n.Notify(context.Background(), ev))
	})

	t.Run("close closes writer", func(t *testing.T) {
		w := &fakeWriter{}
		gt.NoError(t, notifier.NewKafkaWithWriter(w).Close())
		gt.B(t, w.closed).True()
	})

	t.Run("configuration is required", func(t *testing.T) {
		_, err := notifier.NewKafka(nil, "grc.workflow")
		gt.Error(t, err)
		_, err = notifier.NewKafka([]string{"localhost:9092"}, "")
		gt.Error(t, err)
	})
}

type fakeChannel struct {
	queue string
	msgs  []amqp.Publishing
	err   error
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.queue = key
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *fakeChannel) Close() error { return nil }

func TestRabbitMQ(t *testing.T) {
	ev := newEvent()

	t.Run("persistent json message", func(t *testing.T) {
		ch := &fakeChannel{}
		n := notifier.NewRabbitMQWithChannel(ch, "grc-workflow-events")
		gt.NoError(t, n.Notify(context.Background(), ev)).Required()

		gt.S(t, ch.queue).Equal("grc-workflow-events")
		gt.A(t, ch.msgs).Length(1)
		msg := ch.msgs[0]
		gt.S(t, msg.ContentType).Equal("application/json")
		gt.Value(t, msg.DeliveryMode).Equal(amqp.Persistent)
		gt.S(t, msg.Type).Equal("workflow.decided")
		gt.S(t, msg.MessageId).Equal(string(ev.ID))

		var got model.WorkflowEvent
		gt.NoError(t, json.Unmarshal(msg.Body, &got)).Required()
		gt.Value(t, got.RiskID).Equal(ev.RiskID)
	})

	t.Run("publish failure is returned", func(t *testing.T) {
		ch := &fakeChannel{err: errors.New("channel closed")}
		n := notifier.NewRabbitMQWithChannel(ch, "q")
		gt.Error(t, n.Notify(context.Background(), ev))
		gt.NoError(t, n.Close())
	})
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	n := notifier.NewLog(slog.New(slog.NewJSONHandler(&buf, nil)))
	ev := newEvent()

	gt.NoError(t, n.Notify(context.Background(), ev)).Required()
	gt.S(t, buf.String()).Contains(`"event_type":"workflow.decided"`)
	gt.S(t, buf.String()).Contains(ev.WorkflowID.String())
	gt.NoError(t, n.Close())
}

func TestNop(t *testing.T) {
	n := notifier.NewNop()
	gt.NoError(t, n.Notify(context.Background(), newEvent()))
	gt.NoError(t, n.Close())
}
