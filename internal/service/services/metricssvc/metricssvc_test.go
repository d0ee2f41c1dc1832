package metricssvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avelora/admin-metrics/internal/service/models/order"
	"github.com/avelora/admin-metrics/internal/service/models/product"
	"github.com/avelora/admin-metrics/internal/service/models/review"
	"github.com/avelora/admin-metrics/internal/service/models/snapshot"
	"github.com/avelora/admin-metrics/internal/service/models/timerange"
)

var testNow = time.Date(2026, 8, 30, 15, 30, 0, 0, time.UTC)

func newSnapshot(orders []order.Order, products []product.Product, reviews []review.Review) *snapshot.Snapshot {
	return snapshot.New(testNow, orders, products, reviews)
}

func TestBuildReport_EmptyInput(t *testing.T) {
	svc := MustNewMetricsService()
	rep, err := svc.BuildReport(newSnapshot(nil, nil, nil), Request{Range: timerange.Range7d}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rep.GrossRevenueCents != 0 || rep.RefundsCents != 0 || rep.NetRevenueCents != 0 {
		t.Errorf("expected zero revenue, got gross=%d refunds=%d net=%d",
			rep.GrossRevenueCents, rep.RefundsCents, rep.NetRevenueCents)
	}
	if rep.AverageOrderValueCents != 0 {
		t.Errorf("AverageOrderValueCents = %d, want 0", rep.AverageOrderValueCents)
	}
	if rep.OrderCounts.Total != 0 {
		t.Errorf("OrderCounts.Total = %d, want 0", rep.OrderCounts.Total)
	}
	if len(rep.RevenueSeries) != 7 || len(rep.OrdersSeries) != 7 {
		t.Fatalf("series lengths = %d/%d, want 7/7", len(rep.RevenueSeries), len(rep.OrdersSeries))
	}
	for i, p := range rep.RevenueSeries {
		if p.Value != 0 {
			t.Errorf("RevenueSeries[%d].Value = %f, want 0", i, p.Value)
		}
	}
	if len(rep.TopProducts) != 0 || len(rep.LowStock) != 0 || len(rep.RecentOrders) != 0 {
		t.Error("expected empty top products, low stock, and recent orders")
	}
}

func TestBuildReport_InvalidRange(t *testing.T) {
	svc := MustNewMetricsService()
	_, err := svc.BuildReport(newSnapshot(nil, nil, nil), Request{Range: "fortnight"}, testNow)
	if !errors.Is(err, timerange.ErrInvalidRange) {
		t.Fatalf("error = %v, want ErrInvalidRange", err)
	}
}

func TestBuildReport_AllRangeRequiresSeriesDays(t *testing.T) {
	svc := MustNewMetricsService()
	_, err := svc.BuildReport(newSnapshot(nil, nil, nil), Request{Range: timerange.RangeAll}, testNow)
	if !errors.Is(err, ErrSeriesDaysRequired) {
		t.Fatalf("error = %v, want ErrSeriesDaysRequired", err)
	}

	rep, err := svc.BuildReport(newSnapshot(nil, nil, nil), Request{Range: timerange.RangeAll, SeriesDays: 14}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.From != nil {
		t.Error("From must be nil for range all")
	}
	if len(rep.RevenueSeries) != 14 {
		t.Errorf("series length = %d, want 14", len(rep.RevenueSeries))
	}
}

func TestBuildReport_EndToEnd(t *testing.T) {
	orders := []order.Order{
		{ID: "o1", CustomerID: "c1", Status: order.StatusDelivered, TotalCents: 100, CreatedAt: testNow.Add(-2 * time.Hour)},
		{ID: "o2", CustomerID: "c2", Status: order.StatusCancelled, TotalCents: 50, CreatedAt: testNow.Add(-3 * time.Hour)},
	}
	svc := MustNewMetricsService()
	rep, err := svc.BuildReport(newSnapshot(orders, nil, nil), Request{Range: timerange.Range7d}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rep.GrossRevenueCents != 100 {
		t.Errorf("GrossRevenueCents = %d, want 100", rep.GrossRevenueCents)
	}
	if rep.OrderCounts.Total != 2 {
		t.Errorf("OrderCounts.Total = %d, want 2", rep.OrderCounts.Total)
	}
	if rep.OrderCounts.Delivered != 1 {
		t.Errorf("OrderCounts.Delivered = %d, want 1", rep.OrderCounts.Delivered)
	}
	if rep.OrderCounts.Cancelled != 1 {
		t.Errorf("OrderCounts.Cancelled = %d, want 1", rep.OrderCounts.Cancelled)
	}
	if rep.AverageOrderValueCents != 100 {
		t.Errorf("AverageOrderValueCents = %d, want 100", rep.AverageOrderValueCents)
	}
	if rep.UniqueCustomers != 2 {
		t.Errorf("UniqueCustomers = %d, want 2", rep.UniqueCustomers)
	}

	last := rep.RevenueSeries[len(rep.RevenueSeries)-1]
	if last.Value != 100 {
		t.Errorf("last revenue bucket = %f, want 100 (cancelled order must not count)", last.Value)
	}
	lastOrders := rep.OrdersSeries[len(rep.OrdersSeries)-1]
	if lastOrders.Value != 2 {
		t.Errorf("last orders bucket = %f, want 2", lastOrders.Value)
	}
}

func TestBuildReport_NetNeverNegative(t *testing.T) {
	orders := []order.Order{
		{ID: "o1", Status: order.StatusDelivered, TotalCents: 100, RefundCents: 250, CreatedAt: testNow},
	}
	svc := MustNewMetricsService()
	rep, err := svc.BuildReport(newSnapshot(orders, nil, nil), Request{Range: timerange.Range7d}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.NetRevenueCents != 0 {
		t.Errorf("NetRevenueCents = %d, want 0", rep.NetRevenueCents)
	}
}

func TestBuildReport_RefundsIncludeNonRevenueOrders(t *testing.T) {
	orders := []order.Order{
		{ID: "o1", Status: order.StatusDelivered, TotalCents: 1000, CreatedAt: testNow},
		{ID: "o2", Status: order.StatusCancelled, TotalCents: 500, RefundCents: 300, CreatedAt: testNow},
	}
	svc := MustNewMetricsService()
	rep, err := svc.BuildReport(newSnapshot(orders, nil, nil), Request{Range: timerange.Range7d}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.RefundsCents != 300 {
		t.Errorf("RefundsCents = %d, want 300", rep.RefundsCents)
	}
	if rep.NetRevenueCents != 700 {
		t.Errorf("NetRevenueCents = %d, want 700", rep.NetRevenueCents)
	}
}

func TestBuildReport_SeriesDaysAreContiguous(t *testing.T) {
	svc := MustNewMetricsService()
	rep, err := svc.BuildReport(newSnapshot(nil, nil, nil), Request{Range: timerange.Range7d}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rep.RevenueSeries) != 7 {
		t.Fatalf("series length = %d, want 7", len(rep.RevenueSeries))
	}
	for i := 0; i < 7; i++ {
		want := testNow.AddDate(0, 0, -(6 - i)).Format("02 Jan")
		if rep.RevenueSeries[i].Label != want {
			t.Errorf("RevenueSeries[%d].Label = %q, want %q", i, rep.RevenueSeries[i].Label, want)
		}
	}
}

func TestBuildReport_RangeBounding(t *testing.T) {
	orders := []order.Order{
		{ID: "recent", Status: order.StatusDelivered, TotalCents: 100, CreatedAt: testNow.AddDate(0, 0, -2)},
		{ID: "old", Status: order.StatusDelivered, TotalCents: 900, CreatedAt: testNow.AddDate(0, 0, -10)},
		{ID: "undated", Status: order.StatusDelivered, TotalCents: 400},
	}
	svc := MustNewMetricsService()

	rep, err := svc.BuildReport(newSnapshot(orders, nil, nil), Request{Range: timerange.Range7d}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.GrossRevenueCents != 100 {
		t.Errorf("7d gross = %d, want 100", rep.GrossRevenueCents)
	}
	if rep.From == nil || !rep.From.Equal(time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("From = %v, want 2026-08-24 midnight", rep.From)
	}

	rep, err = svc.BuildReport(newSnapshot(orders, nil, nil), Request{Range: timerange.Range30d}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.GrossRevenueCents != 1000 {
		t.Errorf("30d gross = %d, want 1000", rep.GrossRevenueCents)
	}

	rep, err = svc.BuildReport(newSnapshot(orders, nil, nil), Request{Range: timerange.RangeAll, SeriesDays: 30}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.GrossRevenueCents != 1400 {
		t.Errorf("all gross = %d, want 1400 (undated order included)", rep.GrossRevenueCents)
	}
}

func TestBuildReport_TopProductsTruncationAndTies(t *testing.T) {
	orders := []order.Order{
		{
			ID:     "o1",
			Status: order.StatusDelivered,
			Items: []order.Item{
				{ProductName: "A", Quantity: 5},
				{ProductName: "B", Quantity: 9},
				{ProductName: "C", Quantity: 2},
				{ProductName: "D", Quantity: 9},
			},
			CreatedAt: testNow,
		},
	}
	svc := MustNewMetricsService(WithTopProducts(3))
	rep, err := svc.BuildReport(newSnapshot(orders, nil, nil), Request{Range: timerange.Range7d}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rep.TopProducts) != 3 {
		t.Fatalf("len(TopProducts) = %d, want 3", len(rep.TopProducts))
	}
	// B and D tie at 9; B was encountered first
	if rep.TopProducts[0].Label != "B" || rep.TopProducts[0].Value != 9 {
		t.Errorf("TopProducts[0] = %+v, want B/9", rep.TopProducts[0])
	}
	if rep.TopProducts[1].Label != "D" || rep.TopProducts[1].Value != 9 {
		t.Errorf("TopProducts[1] = %+v, want D/9", rep.TopProducts[1])
	}
	if rep.TopProducts[2].Label != "A" || rep.TopProducts[2].Value != 5 {
		t.Errorf("TopProducts[2] = %+v, want A/5", rep.TopProducts[2])
	}
	for _, p := range rep.TopProducts {
		if p.Label == "C" {
			t.Error("C must be truncated out")
		}
	}
}

func TestBuildReport_TopProductsExcludeNonRevenueOrders(t *testing.T) {
	orders := []order.Order{
		{ID: "o1", Status: order.StatusCancelled, Items: []order.Item{{ProductName: "A", Quantity: 50}}, CreatedAt: testNow},
		{ID: "o2", Status: order.StatusDelivered, Items: []order.Item{{ProductName: "B", Quantity: 1}}, CreatedAt: testNow},
	}
	svc := MustNewMetricsService()
	rep, err := svc.BuildReport(newSnapshot(orders, nil, nil), Request{Range: timerange.Range7d}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rep.TopProducts) != 1 || rep.TopProducts[0].Label != "B" {
		t.Errorf("TopProducts = %+v, want only B", rep.TopProducts)
	}
	if rep.UnitsSold != 1 {
		t.Errorf("UnitsSold = %d, want 1", rep.UnitsSold)
	}
}

func TestBuildReport_StockBuckets(t *testing.T) {
	products := []product.Product{
		{ID: "p0", Name: "empty", Stock: 0},
		{ID: "p3", Name: "low3", Stock: 3},
		{ID: "p5", Name: "low5", Stock: 5},
		{ID: "p6", Name: "ok", Stock: 6},
	}
	svc := MustNewMetricsService()
	rep, err := svc.BuildReport(newSnapshot(nil, products, nil), Request{Range: timerange.Range7d}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rep.OutOfStockCount != 1 {
		t.Errorf("OutOfStockCount = %d, want 1", rep.OutOfStockCount)
	}
	if len(rep.LowStock) != 2 {
		t.Fatalf("len(LowStock) = %d, want 2", len(rep.LowStock))
	}
	if rep.LowStock[0].ID != "p3" || rep.LowStock[1].ID != "p5" {
		t.Errorf("LowStock = %+v, want p3 and p5", rep.LowStock)
	}
}

func TestBuildReport_PendingReviews(t *testing.T) {
	reviews := []review.Review{
		{ID: "r1", Approved: true},
		{ID: "r2", Approved: false},
		{ID: "r3", Approved: false},
	}
	svc := MustNewMetricsService()
	rep, err := svc.BuildReport(newSnapshot(nil, nil, reviews), Request{Range: timerange.Range7d}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.PendingReviews != 2 {
		t.Errorf("PendingReviews = %d, want 2", rep.PendingReviews)
	}
}

func TestBuildReport_RecentOrders(t *testing.T) {
	orders := make([]order.Order, 0, 8)
	for i := 0; i < 8; i++ {
		orders = append(orders, order.Order{
			ID:        string(rune('a' + i)),
			Status:    order.StatusPending,
			CreatedAt: testNow.AddDate(0, 0, -i),
		})
	}
	svc := MustNewMetricsService(WithRecentOrders(5))
	rep, err := svc.BuildReport(newSnapshot(orders, nil, nil), Request{Range: timerange.Range7d}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rep.RecentOrders) != 5 {
		t.Fatalf("len(RecentOrders) = %d, want 5", len(rep.RecentOrders))
	}
	if rep.RecentOrders[0].ID != "a" {
		t.Errorf("RecentOrders[0].ID = %q, want newest order first", rep.RecentOrders[0].ID)
	}
	for i := 1; i < len(rep.RecentOrders); i++ {
		if rep.RecentOrders[i].CreatedAt.After(rep.RecentOrders[i-1].CreatedAt) {
			t.Fatal("RecentOrders must be sorted newest first")
		}
	}
}

func TestReport_NoSnapshot(t *testing.T) {
	svc := MustNewMetricsService(WithClock(func() time.Time { return testNow }))
	if _, err := svc.Report(context.Background(), Request{Range: timerange.Range7d}); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("error = %v, want ErrNoSnapshot", err)
	}

	svc.SetSnapshot(newSnapshot(nil, nil, nil))
	rep, err := svc.Report(context.Background(), Request{Range: timerange.Range7d})
	if err != nil {
		t.Fatalf("unexpected error after SetSnapshot: %v", err)
	}
	if !rep.GeneratedAt.Equal(testNow) {
		t.Errorf("GeneratedAt = %v, want injected clock value", rep.GeneratedAt)
	}
}

func TestBuildReport_DoesNotMutateSnapshot(t *testing.T) {
	orders := []order.Order{
		{ID: "b", Status: order.StatusPending, CreatedAt: testNow.AddDate(0, 0, -1)},
		{ID: "a", Status: order.StatusPending, CreatedAt: testNow},
	}
	snap := newSnapshot(orders, nil, nil)
	svc := MustNewMetricsService()
	if _, err := svc.BuildReport(snap, Request{Range: timerange.Range7d}, testNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Orders[0].ID != "b" || snap.Orders[1].ID != "a" {
		t.Error("BuildReport must not reorder the snapshot's orders")
	}
}
