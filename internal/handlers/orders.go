package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/solenne/storefront/internal/commerce"
	"github.com/solenne/storefront/internal/domain"
	"github.com/solenne/storefront/internal/platform/auth"
	"github.com/solenne/storefront/internal/platform/httpx"
	"github.com/solenne/storefront/internal/timeline"
)

// OrderService is the slice of the commerce client the order endpoints use.
type OrderService interface {
	GetOrder(ctx context.Context, token, orderID string) (domain.Order, error)
	RequestCancellation(ctx context.Context, token, orderID, reason string) error
}

// OrderHandlersDeps wires the order endpoints.
type OrderHandlersDeps struct {
	Service OrderService
}

// OrderHandlers exposes the authenticated order read and cancellation
// endpoints consumed by the storefront UI.
type OrderHandlers struct {
	service OrderService
}

// NewOrderHandlers constructs the order handlers.
func NewOrderHandlers(deps OrderHandlersDeps) (*OrderHandlers, error) {
	if deps.Service == nil {
		return nil, errors.New("handlers: order service is required")
	}
	return &OrderHandlers{service: deps.Service}, nil
}

// Routes registers the order endpoints on the provided router.
func (h *OrderHandlers) Routes(r chi.Router) {
	r.Get("/{orderID}", h.getOrder)
	r.Post("/{orderID}/request-cancellation", h.requestCancellation)
}

type orderItemPayload struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Quantity int      `json:"quantity"`
	Images   []string `json:"images,omitempty"`
	Href     string   `json:"href,omitempty"`
	Stock    int      `json:"stock"`
}

type statusHistoryPayload struct {
	Status      string `json:"status"`
	Date        string `json:"date,omitempty"`
	Description string `json:"description,omitempty"`
}

type timelineStepPayload struct {
	Status    string `json:"status"`
	Label     string `json:"label"`
	State     string `json:"state"`
	Timestamp string `json:"timestamp,omitempty"`
	InHistory bool   `json:"inHistory"`
}

type timelineBannerPayload struct {
	Kind      string `json:"kind"`
	Label     string `json:"label"`
	Timestamp string `json:"timestamp,omitempty"`
}

type orderResponse struct {
	ID            string                 `json:"id"`
	OrderID       string                 `json:"orderId"`
	Items         []orderItemPayload     `json:"items"`
	Subtotal      float64                `json:"subtotal"`
	Shipping      float64                `json:"shipping"`
	Total         float64                `json:"total"`
	OrderStatus   string                 `json:"orderStatus"`
	StatusHistory []statusHistoryPayload `json:"statusHistory,omitempty"`
	Timeline      []timelineStepPayload  `json:"timeline"`
	Banner        *timelineBannerPayload `json:"banner,omitempty"`
	CreatedAt     string                 `json:"createdAt,omitempty"`
	UpdatedAt     string                 `json:"updatedAt,omitempty"`
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("unauthorized", "authentication required", http.StatusUnauthorized))
		return
	}

	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
	if orderID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_order_id", "order id is required", http.StatusBadRequest))
		return
	}

	order, err := h.service.GetOrder(ctx, identity.Token, orderID)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, buildOrderResponse(order))
}

type cancellationRequest struct {
	Reason string `json:"reason"`
}

func (h *OrderHandlers) requestCancellation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("unauthorized", "authentication required", http.StatusUnauthorized))
		return
	}

	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
	if orderID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_order_id", "order id is required", http.StatusBadRequest))
		return
	}

	body, err := readLimitedBody(r, maxRequestBodySize)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body is required", http.StatusBadRequest))
		return
	}
	var req cancellationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid json body", http.StatusBadRequest))
		return
	}

	// Server-side guard: the UI disables submit on blank reasons, but the
	// boundary validates independently.
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_reason", "cancellation reason is required", http.StatusBadRequest))
		return
	}

	if err := h.service.RequestCancellation(ctx, identity.Token, orderID, reason); err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]any{"success": true})
}

func buildOrderResponse(order domain.Order) orderResponse {
	resp := orderResponse{
		ID:          order.ID,
		OrderID:     order.OrderID,
		Items:       make([]orderItemPayload, 0, len(order.Items)),
		Subtotal:    order.Totals.Subtotal,
		Shipping:    order.Totals.Shipping,
		Total:       order.Totals.Total,
		OrderStatus: string(order.Status),
		CreatedAt:   formatTime(order.CreatedAt),
		UpdatedAt:   formatTime(order.UpdatedAt),
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, orderItemPayload{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
			Images:   item.Images,
			Href:     item.Href,
			Stock:    item.Stock,
		})
	}
	for _, entry := range order.StatusHistory {
		resp.StatusHistory = append(resp.StatusHistory, statusHistoryPayload{
			Status:      string(entry.Status),
			Date:        formatTime(entry.Date),
			Description: entry.Description,
		})
	}

	tl := timeline.Build(order.Status, order.StatusHistory)
	resp.Timeline = make([]timelineStepPayload, 0, len(tl.Steps))
	for _, step := range tl.Steps {
		resp.Timeline = append(resp.Timeline, timelineStepPayload{
			Status:    string(step.Status),
			Label:     step.Label,
			State:     string(step.State),
			Timestamp: formatTimePointer(step.Timestamp),
			InHistory: step.InHistory,
		})
	}
	if tl.Banner != nil {
		resp.Banner = &timelineBannerPayload{
			Kind:      string(tl.Banner.Kind),
			Label:     tl.Banner.Label,
			Timestamp: formatTimePointer(tl.Banner.Timestamp),
		}
	}
	return resp
}

func writeOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, commerce.ErrUnauthorized):
		httpx.WriteError(ctx, w, httpx.NewError("unauthorized", "session is not valid for this order", http.StatusUnauthorized))
	case errors.Is(err, commerce.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
	case errors.Is(err, commerce.ErrEmptyReason):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_reason", "cancellation reason is required", http.StatusBadRequest))
	case errors.Is(err, context.DeadlineExceeded):
		httpx.WriteError(ctx, w, httpx.NewError("upstream_timeout", "commerce backend timed out", http.StatusGatewayTimeout))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_server_error", "internal server error", http.StatusInternalServerError))
	}
}
