package interfaces

import (
	"context"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
)

// Notifier delivers workflow events to downstream consumers
type Notifier interface {
	Notify(ctx context.Context, event *model.WorkflowEvent) error
	Close() error
}
