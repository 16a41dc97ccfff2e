package domain

// OrderStatus enumerates the lifecycle states an order can report.
type OrderStatus string

const (
	OrderStatusPending               OrderStatus = "pending"
	OrderStatusPaid                  OrderStatus = "paid"
	OrderStatusProcessing            OrderStatus = "processing"
	OrderStatusShipped               OrderStatus = "shipped"
	OrderStatusDelivered             OrderStatus = "delivered"
	OrderStatusCancelled             OrderStatus = "cancelled"
	OrderStatusRefunded              OrderStatus = "refunded"
	OrderStatusCancellationRequested OrderStatus = "cancellation_requested"
)

// RankUnknown marks statuses that sit outside the ordered progression chain.
const RankUnknown = -1

// StatusInfo carries the display metadata registered for a lifecycle status.
type StatusInfo struct {
	Label           string
	Rank            int
	IsTerminalError bool
}

var statusRegistry = map[OrderStatus]StatusInfo{
	OrderStatusPending:               {Label: "Order Placed", Rank: 0},
	OrderStatusPaid:                  {Label: "Payment Confirmed", Rank: 1},
	OrderStatusProcessing:            {Label: "Processing", Rank: 2},
	OrderStatusShipped:               {Label: "Shipped", Rank: 3},
	OrderStatusDelivered:             {Label: "Delivered", Rank: 4},
	OrderStatusCancelled:             {Label: "Order Cancelled", Rank: RankUnknown, IsTerminalError: true},
	OrderStatusRefunded:              {Label: "Refund Issued", Rank: RankUnknown, IsTerminalError: true},
	OrderStatusCancellationRequested: {Label: "Cancellation Requested", Rank: RankUnknown},
}

var progressionOrder = [5]OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
}

// DisplayInfo resolves the registered metadata for a status. Unrecognized
// values degrade to a label-only entry with no progression rank so callers
// can keep rendering.
func DisplayInfo(status OrderStatus) StatusInfo {
	if info, ok := statusRegistry[status]; ok {
		return info
	}
	return StatusInfo{Label: string(status), Rank: RankUnknown}
}

// Rank returns the progression rank for a status, or RankUnknown when the
// status sits outside the ordered chain.
func Rank(status OrderStatus) int {
	return DisplayInfo(status).Rank
}

// IsTerminal reports whether the status ends the lifecycle entirely.
func IsTerminal(status OrderStatus) bool {
	return DisplayInfo(status).IsTerminalError
}

// ProgressionStatuses returns the five ordered happy-path statuses, rank 0
// through 4.
func ProgressionStatuses() [5]OrderStatus {
	return progressionOrder
}

// Valid reports whether the status is one of the eight known enumerators.
func (s OrderStatus) Valid() bool {
	_, ok := statusRegistry[s]
	return ok
}
