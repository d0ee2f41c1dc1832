package snapshot

import (
	"time"

	"github.com/avelora/admin-metrics/internal/service/models/order"
	"github.com/avelora/admin-metrics/internal/service/models/product"
	"github.com/avelora/admin-metrics/internal/service/models/review"
	"github.com/google/uuid"
)

// Snapshot is an immutable point-in-time copy of the commerce collections.
// The aggregator is recomputed from the newest snapshot on every request;
// snapshots are never mutated after assembly.
type Snapshot struct {
	ID        uuid.UUID         `json:"id"`
	FetchedAt time.Time         `json:"fetchedAt"`
	Orders    []order.Order     `json:"orders"`
	Products  []product.Product `json:"products"`
	Reviews   []review.Review   `json:"reviews"`
}

// New assembles a snapshot with a fresh identity.
func New(fetchedAt time.Time, orders []order.Order, products []product.Product, reviews []review.Review) *Snapshot {
	return &Snapshot{
		ID:        uuid.New(),
		FetchedAt: fetchedAt,
		Orders:    orders,
		Products:  products,
		Reviews:   reviews,
	}
}
