package payments

import (
	"context"
	"fmt"
)

// Logger defines the logging contract for provider operations.
type Logger func(ctx context.Context, event string, fields map[string]any)

// RefundRequest defines a PSP refund attempt. Amount is expressed in minor
// currency units and must be positive; partial refunds are expressed by an
// amount below the charge total, never by omitting it.
type RefundRequest struct {
	PaymentIntentID string
	Amount          int64
	Reason          string
	Metadata        map[string]string
	IdempotencyKey  string
}

// Refund is the normalised result of a successful refund.
type Refund struct {
	ID     string
	Status string
}

// Provider abstracts the payment service provider's refund surface.
type Provider interface {
	// Refund issues a refund for the given payment intent. Failures the
	// PSP attributes to the request come back as *ProviderError.
	Refund(ctx context.Context, req RefundRequest) (Refund, error)
}

// ProviderError carries a PSP-reported failure with enough structure for
// the boundary to translate it into a stable response contract.
type ProviderError struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "payments: provider error"
	}
	return fmt.Sprintf("payments: provider error %s: %s", e.Code, e.Message)
}
