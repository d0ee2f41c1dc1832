package metricssvc

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/avelora/admin-metrics/internal/service/models/order"
	"github.com/avelora/admin-metrics/internal/service/models/product"
	"github.com/avelora/admin-metrics/internal/service/models/report"
	"github.com/avelora/admin-metrics/internal/service/models/snapshot"
	"github.com/avelora/admin-metrics/internal/service/models/timerange"
	"github.com/spf13/viper"
)

var (
	// ErrNoSnapshot is returned before the first snapshot refresh completes.
	ErrNoSnapshot = errors.New("no snapshot loaded yet")

	// ErrSeriesDaysRequired is returned for RangeAll requests without an
	// explicit series day count; an unbounded series is never produced.
	ErrSeriesDaysRequired = errors.New("series day count required for range all")
)

const (
	defaultTopProducts       = 6
	defaultLowStockThreshold = 5
	defaultLowStockLimit     = 6
	defaultRecentOrders      = 6
)

// Request selects the time window of a report.
type Request struct {
	Range timerange.Range
	// SeriesDays overrides the chart series length. Defaults to the range's
	// day count; mandatory for RangeAll.
	SeriesDays int
}

func (r Request) normalize() (Request, error) {
	if _, err := timerange.ParseRange(r.Range.String()); err != nil {
		return r, err
	}
	if r.SeriesDays <= 0 {
		if r.Range == timerange.RangeAll {
			return r, ErrSeriesDaysRequired
		}
		r.SeriesDays = r.Range.Days()
	}

	return r, nil
}

// MetricsService computes dashboard reports from commerce snapshots. The
// computation itself is pure; the service additionally holds the most recent
// snapshot so the transport can serve reports without refetching.
type MetricsService struct {
	topProducts       int
	lowStockThreshold int
	lowStockLimit     int
	recentOrders      int
	now               func() time.Time

	mu   sync.RWMutex
	snap *snapshot.Snapshot
}

// option is a function that configures the MetricsService.
type option func(*MetricsService)

// MustNewMetricsService creates a new MetricsService. Config overrides apply
// first, then explicit options.
func MustNewMetricsService(opts ...option) *MetricsService {
	s := &MetricsService{
		topProducts:       defaultTopProducts,
		lowStockThreshold: defaultLowStockThreshold,
		lowStockLimit:     defaultLowStockLimit,
		recentOrders:      defaultRecentOrders,
		now:               time.Now,
	}

	if n := viper.GetInt("metrics.top_products"); n > 0 {
		s.topProducts = n
	}
	if n := viper.GetInt("metrics.low_stock_threshold"); n > 0 {
		s.lowStockThreshold = n
	}
	if n := viper.GetInt("metrics.low_stock_limit"); n > 0 {
		s.lowStockLimit = n
	}
	if n := viper.GetInt("metrics.recent_orders"); n > 0 {
		s.recentOrders = n
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithTopProducts sets the top-products truncation length.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithTopProducts(n int) option {
	return func(s *MetricsService) {
		s.topProducts = n
	}
}

// WithLowStockThreshold sets the inclusive low-stock boundary.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithLowStockThreshold(n int) option {
	return func(s *MetricsService) {
		s.lowStockThreshold = n
	}
}

// WithLowStockLimit caps the low-stock product list.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithLowStockLimit(n int) option {
	return func(s *MetricsService) {
		s.lowStockLimit = n
	}
}

// WithRecentOrders sets the recent-orders list length.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithRecentOrders(n int) option {
	return func(s *MetricsService) {
		s.recentOrders = n
	}
}

// WithClock injects the reference clock, used by tests to pin "today".
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *MetricsService) {
		s.now = now
	}
}

// SetSnapshot replaces the held snapshot.
func (s *MetricsService) SetSnapshot(snap *snapshot.Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

// Snapshot returns the held snapshot, nil before the first refresh.
func (s *MetricsService) Snapshot() *snapshot.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snap
}

// Report builds a report from the held snapshot.
func (s *MetricsService) Report(_ context.Context, req Request) (*report.Report, error) {
	snap := s.Snapshot()
	if snap == nil {
		return nil, ErrNoSnapshot
	}

	return s.BuildReport(snap, req, s.now())
}

// BuildReport aggregates one snapshot over one time range. It is a pure
// function of its arguments: it mutates nothing, allocates only the report,
// and is safe to call concurrently.
func (s *MetricsService) BuildReport(snap *snapshot.Snapshot, req Request, now time.Time) (*report.Report, error) {
	req, err := req.normalize()
	if err != nil {
		return nil, err
	}

	rep := &report.Report{
		Range:       req.Range,
		SnapshotID:  snap.ID,
		GeneratedAt: now,
		OrderCounts: report.OrderCounts{ByStatus: map[string]int{}},
	}

	bounded := req.Range != timerange.RangeAll
	var from time.Time
	if bounded {
		from = startOfDay(now.AddDate(0, 0, -(req.Range.Days() - 1)))
		rep.From = &from
	}

	days := dayBuckets(now, req.SeriesDays)
	rep.RevenueSeries = make([]report.Point, len(days))
	rep.OrdersSeries = make([]report.Point, len(days))
	dayIndex := make(map[int64]int, len(days))
	for i, d := range days {
		label := d.Format("02 Jan")
		rep.RevenueSeries[i] = report.Point{Label: label}
		rep.OrdersSeries[i] = report.Point{Label: label}
		dayIndex[d.Unix()] = i
	}

	var revenueOrders int64
	customers := map[string]struct{}{}
	qtyByProduct := map[string]int64{}
	var productOrder []string

	for i := range snap.Orders {
		o := &snap.Orders[i]
		if bounded && !o.CreatedWithin(from, now) {
			continue
		}

		rep.OrderCounts.Total++
		rep.OrderCounts.ByStatus[o.Status.String()]++
		switch o.Status {
		case order.StatusPending:
			rep.OrderCounts.Pending++
		case order.StatusDelivered, order.StatusCompleted:
			rep.OrderCounts.Delivered++
		case order.StatusCancelled, order.StatusCanceled:
			rep.OrderCounts.Cancelled++
		}

		rep.RefundsCents += o.RefundCents
		if o.CustomerID != "" {
			customers[o.CustomerID] = struct{}{}
		}

		bucket, inSeries := -1, false
		if !o.CreatedAt.IsZero() {
			bucket, inSeries = dayIndex[startOfDay(o.CreatedAt.In(now.Location())).Unix()]
		}
		if inSeries {
			rep.OrdersSeries[bucket].Value++
		}

		if !o.IsRevenue() {
			continue
		}

		amount := o.AmountCents()
		rep.GrossRevenueCents += amount
		rep.UnitsSold += o.Units()
		revenueOrders++
		if inSeries {
			rep.RevenueSeries[bucket].Value += float64(amount)
		}

		for _, it := range o.Items {
			label := productLabel(it)
			if _, seen := qtyByProduct[label]; !seen {
				productOrder = append(productOrder, label)
			}
			qty := it.Quantity
			if qty <= 0 {
				qty = 1
			}
			qtyByProduct[label] += qty
		}
	}

	rep.NetRevenueCents = rep.GrossRevenueCents - rep.RefundsCents
	if rep.NetRevenueCents < 0 {
		rep.NetRevenueCents = 0
	}
	if revenueOrders > 0 {
		rep.AverageOrderValueCents = rep.GrossRevenueCents / revenueOrders
	}
	rep.UniqueCustomers = len(customers)

	rep.TopProducts = make([]report.Point, 0, len(productOrder))
	for _, label := range productOrder {
		rep.TopProducts = append(rep.TopProducts, report.Point{Label: label, Value: float64(qtyByProduct[label])})
	}
	sort.SliceStable(rep.TopProducts, func(i, j int) bool {
		return rep.TopProducts[i].Value > rep.TopProducts[j].Value
	})
	if len(rep.TopProducts) > s.topProducts {
		rep.TopProducts = rep.TopProducts[:s.topProducts]
	}

	rep.LowStock = make([]product.Product, 0, s.lowStockLimit)
	for _, p := range snap.Products {
		if p.OutOfStock() {
			rep.OutOfStockCount++
			continue
		}
		if p.LowStock(s.lowStockThreshold) && len(rep.LowStock) < s.lowStockLimit {
			rep.LowStock = append(rep.LowStock, p)
		}
	}

	for _, r := range snap.Reviews {
		if !r.Approved {
			rep.PendingReviews++
		}
	}

	recent := make([]order.Order, len(snap.Orders))
	copy(recent, snap.Orders)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > s.recentOrders {
		recent = recent[:s.recentOrders]
	}
	rep.RecentOrders = recent

	return rep, nil
}

// productLabel names a line item for the top-products chart, preferring the
// embedded product name over the raw id.
func productLabel(it order.Item) string {
	switch {
	case it.ProductName != "":
		return it.ProductName
	case it.ProductID != "":
		return it.ProductID
	default:
		return "unknown"
	}
}

// startOfDay normalizes a timestamp to midnight in its own location. Day
// bucketing uses the observer's local day boundary, not UTC.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// dayBuckets returns n consecutive local calendar days ending at now,
// oldest first.
func dayBuckets(now time.Time, n int) []time.Time {
	days := make([]time.Time, n)
	today := startOfDay(now)
	for i := range days {
		days[i] = today.AddDate(0, 0, -(n - 1 - i))
	}

	return days
}
