package commerce

import (
	"strings"
	"time"

	"github.com/solenne/storefront/internal/domain"
)

// Wire shapes for the backend's order records. Timestamps arrive as
// ISO-8601 strings; unparseable or absent values decode to the zero time
// rather than failing the whole order.

type orderPayload struct {
	ID            string               `json:"id"`
	OrderID       string               `json:"orderId"`
	Items         []orderItemPayload   `json:"items"`
	Subtotal      float64              `json:"subtotal"`
	Shipping      float64              `json:"shipping"`
	Total         float64              `json:"total"`
	OrderStatus   string               `json:"orderStatus"`
	StatusHistory []statusHistoryEntry `json:"statusHistory"`
	CreatedAt     string               `json:"createdAt"`
	UpdatedAt     string               `json:"updatedAt"`
}

type orderItemPayload struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Quantity int      `json:"quantity"`
	Images   []string `json:"images"`
	Href     string   `json:"href"`
	Stock    int      `json:"stock"`
}

type statusHistoryEntry struct {
	Status      string `json:"status"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

func (p orderPayload) toOrder() domain.Order {
	order := domain.Order{
		ID:      strings.TrimSpace(p.ID),
		OrderID: strings.TrimSpace(p.OrderID),
		Totals: domain.OrderTotals{
			Subtotal: p.Subtotal,
			Shipping: p.Shipping,
			Total:    p.Total,
		},
		Status:    domain.OrderStatus(strings.TrimSpace(p.OrderStatus)),
		CreatedAt: parseTimestamp(p.CreatedAt),
		UpdatedAt: parseTimestamp(p.UpdatedAt),
	}
	if len(p.Items) > 0 {
		order.Items = make([]domain.OrderItem, 0, len(p.Items))
		for _, item := range p.Items {
			order.Items = append(order.Items, domain.OrderItem{
				ID:       strings.TrimSpace(item.ID),
				Name:     item.Name,
				Price:    item.Price,
				Quantity: item.Quantity,
				Images:   item.Images,
				Href:     item.Href,
				Stock:    item.Stock,
			})
		}
	}
	if len(p.StatusHistory) > 0 {
		order.StatusHistory = make([]domain.StatusHistoryItem, 0, len(p.StatusHistory))
		for _, entry := range p.StatusHistory {
			order.StatusHistory = append(order.StatusHistory, domain.StatusHistoryItem{
				Status:      domain.OrderStatus(strings.TrimSpace(entry.Status)),
				Date:        parseTimestamp(entry.Date),
				Description: entry.Description,
			})
		}
	}
	return order
}

func parseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts.UTC()
	}
	if ts, err := time.Parse("2006-01-02T15:04:05.000Z0700", value); err == nil {
		return ts.UTC()
	}
	return time.Time{}
}
