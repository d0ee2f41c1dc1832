package getmetrics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avelora/admin-metrics/internal/service/models/report"
	"github.com/avelora/admin-metrics/internal/service/models/timerange"
	"github.com/avelora/admin-metrics/internal/service/services/metricssvc"
)

type stubService struct {
	rep     *report.Report
	err     error
	lastReq metricssvc.Request
}

func (s *stubService) Report(_ context.Context, req metricssvc.Request) (*report.Report, error) {
	s.lastReq = req
	return s.rep, s.err
}

func TestGetMetrics_DefaultsToSevenDays(t *testing.T) {
	stub := &stubService{rep: &report.Report{Range: timerange.Range7d}}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/metrics", nil)

	GetMetrics(rec, req, stub)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if stub.lastReq.Range != timerange.Range7d {
		t.Errorf("range = %q, want 7d default", stub.lastReq.Range)
	}

	var rep report.Report
	if err := json.NewDecoder(rec.Body).Decode(&rep); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
}

func TestGetMetrics_InvalidRange(t *testing.T) {
	stub := &stubService{rep: &report.Report{}}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/metrics?range=fortnight", nil)

	GetMetrics(rec, req, stub)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetMetrics_AllRangeNeedsDays(t *testing.T) {
	stub := &stubService{err: metricssvc.ErrSeriesDaysRequired}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/metrics?range=all", nil)

	GetMetrics(rec, req, stub)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetMetrics_DaysParam(t *testing.T) {
	stub := &stubService{rep: &report.Report{}}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/metrics?range=all&days=30", nil)

	GetMetrics(rec, req, stub)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if stub.lastReq.SeriesDays != 30 {
		t.Errorf("SeriesDays = %d, want 30", stub.lastReq.SeriesDays)
	}
}

func TestGetMetrics_LoadingReturns503(t *testing.T) {
	stub := &stubService{err: metricssvc.ErrNoSnapshot}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/metrics", nil)

	GetMetrics(rec, req, stub)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
