package notifier

import (
	"context"
	"log/slog"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
	"github.com/WilderMartins/GRC-sub003/pkg/utils/logging"
)

// Log writes each event as a structured log record. Useful in development
// and as an audit trail when no broker is configured.
type Log struct {
	logger *slog.Logger
}

// NewLog returns a Log notifier. A nil logger falls back to the logger
// carried by the context at notification time.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (n *Log) Notify(ctx context.Context, event *model.WorkflowEvent) error {
	b, err := encodeEvent(event)
	if err != nil {
		return err
	}

	logger := n.logger
	if logger == nil {
		logger = logging.From(ctx)
	}
	logger.Info("Workflow event",
		"event_id", event.ID,
		"event_type", event.Type,
		"risk_id", event.RiskID,
		"workflow_id", event.WorkflowID,
		"new_status", event.NewStatus,
		"payload", string(b),
	)
	return nil
}

func (n *Log) Close() error { return nil }
