package getmetrics

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/avelora/admin-metrics/internal/service/models/report"
	"github.com/avelora/admin-metrics/internal/service/models/timerange"
	"github.com/avelora/admin-metrics/internal/service/services/metricssvc"
)

// service is an interface for the service layer.
type service interface {
	Report(ctx context.Context, req metricssvc.Request) (*report.Report, error)
}

// GetMetrics handles the dashboard metrics request. The range defaults to 7d;
// an explicit days parameter sets the chart series length and is mandatory
// for range=all.
func GetMetrics(w http.ResponseWriter, r *http.Request, service service) {
	query := r.URL.Query()

	rangeParam := query.Get("range")
	if rangeParam == "" {
		rangeParam = timerange.Range7d.String()
	}
	rng, err := timerange.ParseRange(rangeParam)
	if err != nil {
		http.Error(w, "invalid range: "+rangeParam, http.StatusBadRequest)

		return
	}

	req := metricssvc.Request{Range: rng}
	if daysStr := query.Get("days"); daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil || days <= 0 {
			http.Error(w, "invalid days: "+daysStr, http.StatusBadRequest)

			return
		}
		req.SeriesDays = days
	}

	rep, err := service.Report(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, metricssvc.ErrSeriesDaysRequired):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, metricssvc.ErrNoSnapshot):
			http.Error(w, "dashboard data is still loading", http.StatusServiceUnavailable)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
			slog.Error("Error building report", "error", err)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rep); err != nil {
		slog.Error("Error writing response for dashboard metrics", "error", err)
	}
}
