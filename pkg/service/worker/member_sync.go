package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
	"github.com/WilderMartins/GRC-sub003/pkg/utils/logging"
)

// MemberSource yields the authoritative list of organization members
type MemberSource interface {
	Members() ([]*model.Member, error)
}

// MemberImporter stores a validated batch of members
type MemberImporter interface {
	Import(ctx context.Context, members []*model.Member) error
}

// MemberSyncWorker periodically reloads members from the source and syncs
// them, so role changes and removals in the member file apply without a
// restart.
type MemberSyncWorker struct {
	source   MemberSource
	importer MemberImporter
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewMemberSyncWorker(source MemberSource, importer MemberImporter, interval time.Duration) *MemberSyncWorker {
	return &MemberSyncWorker{
		source:   source,
		importer: importer,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start performs the initial sync synchronously, so the server never starts
// without members, then refreshes in the background.
func (w *MemberSyncWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return goerr.New("member sync interval must be positive", goerr.V("interval", w.interval))
	}
	if err := w.sync(ctx); err != nil {
		return goerr.Wrap(err, "initial member sync failed")
	}

	logging.Default().Info("Member sync worker starting", "interval", w.interval.String())
	go w.run(ctx)
	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *MemberSyncWorker) Stop() {
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Member sync worker stopped")
}

func (w *MemberSyncWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.sync(ctx); err != nil {
				// Keep the previous members on failure
				logging.Default().Error("Member sync failed (will retry next interval)", "error", err)
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			return
		}
	}
}

func (w *MemberSyncWorker) sync(ctx context.Context) error {
	start := time.Now()

	members, err := w.source.Members()
	if err != nil {
		return goerr.Wrap(err, "failed to load members")
	}
	if err := w.importer.Import(ctx, members); err != nil {
		return goerr.Wrap(err, "failed to import members", goerr.V("count", len(members)))
	}

	logging.Default().Debug("Member sync completed",
		"count", len(members),
		"duration", time.Since(start).String())
	return nil
}
