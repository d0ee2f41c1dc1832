package refresh

import (
	"context"
	"log/slog"
	"time"

	"github.com/avelora/admin-metrics/internal/service/models/snapshot"
	"github.com/spf13/viper"
)

// fetcher fetches a fresh snapshot from the commerce API.
type fetcher interface {
	FetchSnapshot(ctx context.Context) (*snapshot.Snapshot, error)
}

// sink receives refreshed snapshots.
type sink interface {
	SetSnapshot(snap *snapshot.Snapshot)
}

// Worker keeps the held snapshot fresh by polling the commerce API. A failed
// refresh is logged and the previous snapshot stays live.
type Worker struct {
	fetcher      fetcher
	sink         sink
	pollInterval time.Duration
	notifyCh     chan *snapshot.Snapshot
	stopCh       chan struct{}
}

// NewWorker creates a new snapshot refresh worker.
func NewWorker(fetcher fetcher, sink sink) *Worker {
	pollIntervalSeconds := viper.GetInt("commerce.refresh_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 60
	}

	return &Worker{
		fetcher:      fetcher,
		sink:         sink,
		pollInterval: time.Duration(pollIntervalSeconds) * time.Second,
		notifyCh:     make(chan *snapshot.Snapshot, 1),
		stopCh:       make(chan struct{}),
	}
}

// Notifications returns the channel carrying refreshed snapshots, consumed by
// the stock alerts worker.
func (w *Worker) Notifications() <-chan *snapshot.Snapshot {
	return w.notifyCh
}

// Start refreshes once immediately, then keeps polling.
func (w *Worker) Start(ctx context.Context) {
	slog.Info("Snapshot refresh worker started", "poll_interval", w.pollInterval)

	if err := w.Refresh(ctx); err != nil {
		slog.Error("Initial snapshot refresh failed", "error", err)
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Snapshot refresh worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Snapshot refresh worker stopped")

			return
		case <-ticker.C:
			if err := w.Refresh(ctx); err != nil {
				slog.Error("Snapshot refresh failed", "error", err)
			}
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

// Refresh fetches a snapshot now and publishes it to the sink. Also called by
// the transport to back the dashboard refresh button.
func (w *Worker) Refresh(ctx context.Context) error {
	snap, err := w.fetcher.FetchSnapshot(ctx)
	if err != nil {
		return err
	}

	w.sink.SetSnapshot(snap)
	slog.Info("Snapshot refreshed",
		"snapshot_id", snap.ID,
		"orders", len(snap.Orders),
		"products", len(snap.Products),
		"reviews", len(snap.Reviews),
	)

	select {
	case w.notifyCh <- snap:
	default:
		// alerts worker is behind; it only needs the latest snapshot
	}

	return nil
}
