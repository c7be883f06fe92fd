// Package notifier delivers approval workflow events to downstream consumers.
// Every implementation satisfies interfaces.Notifier; delivery is best-effort
// and callers never roll back a transition because a notification failed.
package notifier

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/interfaces"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
)

const contentTypeJSON = "application/json"

var (
	_ interfaces.Notifier = (*Nop)(nil)
	_ interfaces.Notifier = (*Log)(nil)
	_ interfaces.Notifier = (*Kafka)(nil)
	_ interfaces.Notifier = (*RabbitMQ)(nil)
)

func encodeEvent(event *model.WorkflowEvent) ([]byte, error) {
	if event == nil {
		return nil, goerr.New("event is nil")
	}
	b, err := json.Marshal(event)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal workflow event", goerr.V("event_id", event.ID))
	}
	return b, nil
}

// Nop drops every event
type Nop struct{}

func NewNop() *Nop { return &Nop{} }

func (n *Nop) Notify(ctx context.Context, event *model.WorkflowEvent) error { return nil }

func (n *Nop) Close() error { return nil }
