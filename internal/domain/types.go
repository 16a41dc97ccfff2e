package domain

import (
	"math"
	"time"
)

// Order is the read-only projection of a purchase record owned by the
// commerce backend. The storefront never mutates it locally; lifecycle
// transitions happen upstream and are reflected after a refetch.
type Order struct {
	ID            string
	OrderID       string
	Items         []OrderItem
	Totals        OrderTotals
	Status        OrderStatus
	StatusHistory []StatusHistoryItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderItem is a cart line frozen into an order at creation time.
type OrderItem struct {
	ID       string
	Name     string
	Price    float64
	Quantity int
	Images   []string
	Href     string
	Stock    int
}

// OrderTotals carries the money amounts of an order in major currency units.
type OrderTotals struct {
	Subtotal float64
	Shipping float64
	Total    float64
}

// StatusHistoryItem is one entry of the append-only, possibly partial,
// status audit trail. Entries arrive oldest first.
type StatusHistoryItem struct {
	Status      OrderStatus
	Date        time.Time
	Description string
}

// MinorUnits converts a major-unit amount to minor units (cents), rounding
// half away from zero rather than truncating. 10.005 becomes 1001, not 1000.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
