package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/avelora/admin-metrics/internal/service/models/report"
	"github.com/avelora/admin-metrics/internal/service/services/metricssvc"
	getmetrics "github.com/avelora/admin-metrics/internal/transport/http/get_metrics"
	refreshsnapshot "github.com/avelora/admin-metrics/internal/transport/http/refresh_snapshot"
	"github.com/avelora/admin-metrics/pkg/http/middleware/auth"
	"github.com/avelora/admin-metrics/pkg/http/middleware/trace"
	"github.com/avelora/admin-metrics/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
)

type service interface {
	Report(ctx context.Context, req metricssvc.Request) (*report.Report, error)
}

type refresher interface {
	Refresh(ctx context.Context) error
}

type HTTPTransport struct {
	server    *http.Server
	router    *chi.Mux
	service   service
	refresher refresher
}

func NewHTTPTransport(service service, refresher refresher) *HTTPTransport {
	router := newRouter()
	server := newServer(router)
	return &HTTPTransport{
		server:    server,
		router:    router,
		service:   service,
		refresher: refresher,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Get("/healthz", healthz)
	h.router.Route("/api", func(r chi.Router) {
		r.Use(auth.NewBearerMiddleware(viper.GetString("server.http.auth_token")))
		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/metrics", h.getMetrics)
			r.Post("/refresh", h.refreshSnapshot)
		})
	})
}

func (h *HTTPTransport) getMetrics(w http.ResponseWriter, r *http.Request) {
	getmetrics.GetMetrics(w, r, h.service)
}

func (h *HTTPTransport) refreshSnapshot(w http.ResponseWriter, r *http.Request) {
	refreshsnapshot.RefreshSnapshot(w, r, h.refresher)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
		slog.Error("Error writing healthz response", "error", err)
	}
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
