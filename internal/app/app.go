package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avelora/admin-metrics/internal/dal/commerce"
	"github.com/avelora/admin-metrics/internal/dal/rabbitmq"
	"github.com/avelora/admin-metrics/internal/otel"
	"github.com/avelora/admin-metrics/internal/service/services/metricssvc"
	httptransport "github.com/avelora/admin-metrics/internal/transport/http"
	"github.com/avelora/admin-metrics/internal/worker/refresh"
	"github.com/avelora/admin-metrics/internal/worker/stockalerts"
	"github.com/spf13/viper"
)

// App represents the application.
type App struct {
	metricsSvc     *metricssvc.MetricsService
	transport      *httptransport.HTTPTransport
	refreshWorker  *refresh.Worker
	alertsWorker   *stockalerts.Worker
	rabbitClient   *rabbitmq.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()

	commerceClient := commerce.MustNewClient()
	metricsSvc := metricssvc.MustNewMetricsService()
	refreshWorker := refresh.NewWorker(commerceClient, metricsSvc)

	var (
		rabbitClient *rabbitmq.Client
		alertsWorker *stockalerts.Worker
	)
	if viper.GetBool("rabbitmq.alerts.enabled") {
		rabbitClient = rabbitmq.MustNewClient()
		alertsWorker = stockalerts.NewWorker(rabbitClient, refreshWorker.Notifications())
	}

	transport := httptransport.NewHTTPTransport(metricsSvc, refreshWorker)
	transport.RegisterRoutes()

	return &App{
		metricsSvc:     metricsSvc,
		transport:      transport,
		refreshWorker:  refreshWorker,
		alertsWorker:   alertsWorker,
		rabbitClient:   rabbitClient,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	// Create a channel to receive OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go a.refreshWorker.Start(workerCtx)
	if a.alertsWorker != nil {
		go a.alertsWorker.Start(workerCtx)
	}

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	cancelWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if a.rabbitClient != nil {
		if err := a.rabbitClient.Close(); err != nil {
			slog.Error("RabbitMQ connection close error", "error", err)
		} else {
			slog.Info("RabbitMQ connection closed gracefully")
		}
	}

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Trace provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
