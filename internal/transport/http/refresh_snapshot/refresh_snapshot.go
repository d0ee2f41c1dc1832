package refreshsnapshot

import (
	"context"
	"log/slog"
	"net/http"
)

// refresher forces an immediate snapshot refresh.
type refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshSnapshot handles the dashboard refresh button: it refetches the
// commerce collections synchronously so the next metrics request sees fresh
// data.
func RefreshSnapshot(w http.ResponseWriter, r *http.Request, refresher refresher) {
	if err := refresher.Refresh(r.Context()); err != nil {
		http.Error(w, "refresh failed", http.StatusBadGateway)
		slog.Error("Error refreshing snapshot", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(`{"status":"refreshed"}`)); err != nil {
		slog.Error("Error writing response for snapshot refresh", "error", err)
	}
}
