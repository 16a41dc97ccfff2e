package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/solenne/storefront/internal/domain"
	"github.com/solenne/storefront/internal/payments"
)

const (
	webhookSecretHeader = "x-strapi-secret"
	traceIDHeader       = "x-trace-id"

	refundReason = "requested_by_customer"
)

// RefundLogger defines the logging contract for refund command handling.
type RefundLogger func(ctx context.Context, event string, fields map[string]any)

// RefundHandlersDeps wires the refund webhook handler.
type RefundHandlersDeps struct {
	Provider payments.Provider
	// Secret is the shared webhook secret the triggering backend sends.
	// Injected at construction so the authorization path is testable
	// without touching process environment. May be empty, which makes
	// every request fail with a configuration error.
	Secret string
	Logger RefundLogger
	Clock  func() time.Time
}

// RefundHandlers exposes the back-office refund webhook. Its response
// shapes are a fixed contract with the triggering backend and do not use
// the canonical API error envelope.
type RefundHandlers struct {
	provider payments.Provider
	secret   string
	logger   RefundLogger

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	clock   func() time.Time
}

// NewRefundHandlers constructs the refund webhook handler.
func NewRefundHandlers(deps RefundHandlersDeps) (*RefundHandlers, error) {
	if deps.Provider == nil {
		return nil, errors.New("handlers: payment provider is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &RefundHandlers{
		provider: deps.Provider,
		secret:   strings.TrimSpace(deps.Secret),
		logger:   logger,
		entropy:  ulid.Monotonic(rand.New(rand.NewSource(clock().UnixNano())), 0),
		clock:    clock,
	}, nil
}

// Routes registers the webhook endpoint on the provided router.
func (h *RefundHandlers) Routes(r chi.Router) {
	r.Post("/refund-order", h.refundOrder)
}

type refundOrderRequest struct {
	PaymentIntentID string  `json:"paymentIntentId"`
	Amount          float64 `json:"amount"`
	OrderID         string  `json:"orderId"`
}

func (h *RefundHandlers) refundOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	traceID := h.ensureTraceID(r.Header.Get(traceIDHeader))

	h.logger(ctx, "refund.received", map[string]any{"traceId": traceID})

	if h.secret == "" {
		h.logger(ctx, "refund.config_error", map[string]any{
			"traceId": traceID,
			"reason":  "webhook secret not configured",
		})
		writeJSONResponse(w, http.StatusInternalServerError, map[string]any{"error": "Server configuration error"})
		return
	}

	provided := r.Header.Get(webhookSecretHeader)
	if subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) != 1 {
		h.logger(ctx, "refund.unauthorized", map[string]any{"traceId": traceID})
		writeJSONResponse(w, http.StatusUnauthorized, map[string]any{"error": "Unauthorized"})
		return
	}

	body, err := readLimitedBody(r, maxRequestBodySize)
	if err != nil {
		h.logger(ctx, "refund.bad_request", map[string]any{
			"traceId": traceID,
			"reason":  "unreadable body",
		})
		writeJSONResponse(w, http.StatusBadRequest, map[string]any{"error": "Invalid JSON body"})
		return
	}

	var req refundOrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.logger(ctx, "refund.bad_request", map[string]any{
			"traceId": traceID,
			"reason":  "invalid json body",
		})
		writeJSONResponse(w, http.StatusBadRequest, map[string]any{"error": "Invalid JSON body"})
		return
	}

	if missing := missingRefundFields(req); len(missing) > 0 {
		h.logger(ctx, "refund.bad_request", map[string]any{
			"traceId": traceID,
			"missing": missing,
		})
		writeJSONResponse(w, http.StatusBadRequest, map[string]any{
			"error": "Missing required fields: " + strings.Join(missing, ", "),
		})
		return
	}

	refund, err := h.provider.Refund(ctx, payments.RefundRequest{
		PaymentIntentID: strings.TrimSpace(req.PaymentIntentID),
		Amount:          domain.MinorUnits(req.Amount),
		Reason:          refundReason,
		Metadata: map[string]string{
			"orderId": strings.TrimSpace(req.OrderID),
			"traceId": traceID,
		},
	})
	if err != nil {
		h.writeRefundFailure(ctx, w, traceID, err)
		return
	}

	h.logger(ctx, "refund.succeeded", map[string]any{
		"traceId":  traceID,
		"orderId":  req.OrderID,
		"refundId": refund.ID,
		"status":   refund.Status,
	})
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"success":  true,
		"refundId": refund.ID,
		"status":   refund.Status,
	})
}

func (h *RefundHandlers) writeRefundFailure(ctx context.Context, w http.ResponseWriter, traceID string, err error) {
	var providerErr *payments.ProviderError
	if errors.As(err, &providerErr) {
		status := providerErr.StatusCode
		if status == 0 {
			status = http.StatusInternalServerError
		}
		h.logger(ctx, "refund.provider_error", map[string]any{
			"traceId": traceID,
			"code":    providerErr.Code,
			"status":  status,
		})
		writeJSONResponse(w, status, map[string]any{
			"error":   "Stripe API Error",
			"message": providerErr.Message,
			"code":    providerErr.Code,
		})
		return
	}

	// Unexpected failures are logged with detail but never echoed.
	h.logger(ctx, "refund.failed", map[string]any{
		"traceId": traceID,
		"error":   err.Error(),
	})
	writeJSONResponse(w, http.StatusInternalServerError, map[string]any{"error": "Internal server error"})
}

// ensureTraceID returns the inbound trace identifier or generates a ULID
// when the header is absent, so every log line stays correlatable.
func (h *RefundHandlers) ensureTraceID(header string) string {
	if trimmed := strings.TrimSpace(header); trimmed != "" {
		return trimmed
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(h.clock()), h.entropy).String()
}

func missingRefundFields(req refundOrderRequest) []string {
	var missing []string
	if strings.TrimSpace(req.PaymentIntentID) == "" {
		missing = append(missing, "paymentIntentId")
	}
	// Zero and negative amounts are treated as missing: there is nothing
	// to refund, and a negative value must never reach the provider where
	// an absent amount would refund the entire charge.
	if req.Amount <= 0 {
		missing = append(missing, "amount")
	}
	if strings.TrimSpace(req.OrderID) == "" {
		missing = append(missing, "orderId")
	}
	return missing
}

