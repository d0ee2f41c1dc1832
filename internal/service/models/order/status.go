package order

import (
	"strings"
)

// Status is an order fulfillment status. The commerce API uses a small fixed
// vocabulary but unrecognized values do occur; they are preserved as-is so the
// aggregator can still count the order in totals.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCompleted  Status = "completed"
	StatusPaid       Status = "paid"
	StatusCancelled  Status = "cancelled"
	StatusCanceled   Status = "canceled"
	StatusFailed     Status = "failed"
	StatusRefunded   Status = "refunded"
)

func (s Status) String() string {
	return string(s)
}

// Active reports whether the status counts as revenue on its own.
func (s Status) Active() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCompleted, StatusPaid:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status excludes the order from revenue outright.
func (s Status) Terminal() bool {
	switch s {
	case StatusCancelled, StatusCanceled, StatusFailed, StatusRefunded:
		return true
	default:
		return false
	}
}

// NormalizeStatus lowercases and trims a raw status string. Unknown values are
// kept so they still land in the per-status breakdown.
func NormalizeStatus(s string) Status {
	return Status(strings.ToLower(strings.TrimSpace(s)))
}

// PaymentStatus is the optional payment-processor status on an order.
type PaymentStatus string

const (
	PaymentPaid      PaymentStatus = "paid"
	PaymentCaptured  PaymentStatus = "captured"
	PaymentSucceeded PaymentStatus = "succeeded"
)

func (p PaymentStatus) String() string {
	return string(p)
}

// Settled reports whether the payment status alone qualifies the order as
// revenue.
func (p PaymentStatus) Settled() bool {
	switch p {
	case PaymentPaid, PaymentCaptured, PaymentSucceeded:
		return true
	default:
		return false
	}
}

// NormalizePaymentStatus lowercases and trims a raw payment status string.
func NormalizePaymentStatus(s string) PaymentStatus {
	return PaymentStatus(strings.ToLower(strings.TrimSpace(s)))
}
