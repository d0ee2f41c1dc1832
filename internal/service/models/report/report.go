package report

import (
	"time"

	"github.com/avelora/admin-metrics/internal/service/models/order"
	"github.com/avelora/admin-metrics/internal/service/models/product"
	"github.com/avelora/admin-metrics/internal/service/models/timerange"
	"github.com/google/uuid"
)

// Report is the aggregated dashboard view of one snapshot over one time range.
// All monetary figures are integer cents.
type Report struct {
	Range       timerange.Range `json:"range"`
	From        *time.Time      `json:"from"`
	SnapshotID  uuid.UUID       `json:"snapshotId"`
	GeneratedAt time.Time       `json:"generatedAt"`

	GrossRevenueCents      int64       `json:"grossRevenueCents"`
	RefundsCents           int64       `json:"refundsCents"`
	NetRevenueCents        int64       `json:"netRevenueCents"`
	AverageOrderValueCents int64       `json:"averageOrderValueCents"`
	OrderCounts            OrderCounts `json:"orderCounts"`
	UnitsSold              int64       `json:"unitsSold"`
	UniqueCustomers        int         `json:"uniqueCustomers"`
	PendingReviews         int         `json:"pendingReviews"`

	RevenueSeries []Point `json:"revenueSeries"`
	OrdersSeries  []Point `json:"ordersSeries"`
	TopProducts   []Point `json:"topProducts"`

	LowStock        []product.Product `json:"lowStock"`
	OutOfStockCount int               `json:"outOfStockCount"`
	RecentOrders    []order.Order     `json:"recentOrders"`
}

// Point is one labeled value in a chart series.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// OrderCounts breaks in-range orders down by status. Delivered folds in
// "completed", Cancelled folds in the "canceled" spelling. ByStatus keeps the
// full breakdown including unrecognized statuses; unrecognized statuses still
// count toward Total.
type OrderCounts struct {
	Total     int            `json:"total"`
	Pending   int            `json:"pending"`
	Delivered int            `json:"delivered"`
	Cancelled int            `json:"cancelled"`
	ByStatus  map[string]int `json:"byStatus"`
}
