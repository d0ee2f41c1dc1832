package stockalerts

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/avelora/admin-metrics/internal/dal/rabbitmq"
	"github.com/avelora/admin-metrics/internal/service/models/snapshot"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
)

// Alert is the payload published when a product crosses a stock threshold.
type Alert struct {
	ProductID string    `json:"productId"`
	Name      string    `json:"name"`
	Stock     int       `json:"stock"`
	Level     string    `json:"level"`
	At        time.Time `json:"at"`
}

const (
	LevelLowStock   = "low_stock"
	LevelOutOfStock = "out_of_stock"
)

// Worker watches refreshed snapshots and publishes stock alerts to RabbitMQ.
// Each product alerts once per threshold crossing; the alert re-arms when the
// stock recovers above the threshold.
type Worker struct {
	rabbitClient *rabbitmq.Client
	snapshots    <-chan *snapshot.Snapshot
	exchange     string
	routingKey   string
	threshold    int
	alerted      map[string]string
	stopCh       chan struct{}
}

// NewWorker creates a new stock alerts worker.
func NewWorker(rabbitClient *rabbitmq.Client, snapshots <-chan *snapshot.Snapshot) *Worker {
	threshold := viper.GetInt("metrics.low_stock_threshold")
	if threshold == 0 {
		threshold = 5
	}

	routingKey := viper.GetString("rabbitmq.alerts.routing_key")
	if routingKey == "" {
		routingKey = "inventory.stock"
	}

	return &Worker{
		rabbitClient: rabbitClient,
		snapshots:    snapshots,
		exchange:     viper.GetString("rabbitmq.alerts.exchange"),
		routingKey:   routingKey,
		threshold:    threshold,
		alerted:      make(map[string]string),
		stopCh:       make(chan struct{}),
	}
}

// Start begins watching for refreshed snapshots.
func (w *Worker) Start(ctx context.Context) {
	slog.Info("Stock alerts worker started", "exchange", w.exchange, "threshold", w.threshold)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stock alerts worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Stock alerts worker stopped")

			return
		case snap := <-w.snapshots:
			w.processSnapshot(snap)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

// processSnapshot publishes an alert for every product that newly crossed a
// threshold and re-arms products that recovered.
func (w *Worker) processSnapshot(snap *snapshot.Snapshot) {
	for _, p := range snap.Products {
		var level string
		switch {
		case p.OutOfStock():
			level = LevelOutOfStock
		case p.LowStock(w.threshold):
			level = LevelLowStock
		default:
			delete(w.alerted, p.ID)
			continue
		}

		if w.alerted[p.ID] == level {
			continue
		}

		alert := Alert{
			ProductID: p.ID,
			Name:      p.Name,
			Stock:     p.Stock,
			Level:     level,
			At:        snap.FetchedAt,
		}
		payload, err := json.Marshal(alert)
		if err != nil {
			slog.Error("Failed to marshal stock alert", "product_id", p.ID, "error", err)
			continue
		}

		err = w.rabbitClient.Channel().Publish(
			w.exchange,
			w.routingKey,
			false,
			false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        payload,
			},
		)
		if err != nil {
			slog.Error("Failed to publish stock alert", "product_id", p.ID, "error", err)
			continue
		}

		w.alerted[p.ID] = level
		slog.Info("Published stock alert", "product_id", p.ID, "level", level, "stock", p.Stock)
	}
}
