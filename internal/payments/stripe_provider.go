package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
)

type stripeRefundAPI interface {
	New(params *stripe.RefundParams) (*stripe.Refund, error)
}

// StripeProviderConfig configures the StripeProvider.
type StripeProviderConfig struct {
	APIKey    string
	AccountID string
	Backends  *stripe.Backends
	Logger    Logger
	Refunds   stripeRefundAPI
}

// StripeProvider implements the Provider interface using Stripe APIs.
type StripeProvider struct {
	refunds stripeRefundAPI
	account string
	logger  Logger
}

// NewStripeProvider constructs a Stripe Provider using the given configuration.
func NewStripeProvider(cfg StripeProviderConfig) (*StripeProvider, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" && cfg.Refunds == nil {
		return nil, errors.New("stripe: api key is required")
	}

	refunds := cfg.Refunds
	if refunds == nil {
		sc := client.New(apiKey, cfg.Backends)
		refunds = sc.Refunds
	}

	logger := cfg.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &StripeProvider{
		refunds: refunds,
		account: strings.TrimSpace(cfg.AccountID),
		logger:  logger,
	}, nil
}

// Refund creates a refund for the provided payment intent.
func (p *StripeProvider) Refund(ctx context.Context, req RefundRequest) (Refund, error) {
	if p == nil {
		return Refund{}, errors.New("stripe: provider is nil")
	}
	intentID := strings.TrimSpace(req.PaymentIntentID)
	if intentID == "" {
		return Refund{}, errors.New("stripe: payment intent id is required")
	}
	// A non-positive amount must fail here: omitting Amount from the
	// params makes Stripe refund the entire charge.
	if req.Amount <= 0 {
		return Refund{}, fmt.Errorf("stripe: refund amount must be positive, got %d", req.Amount)
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
	}
	params.Context = ctx
	if key := strings.TrimSpace(req.IdempotencyKey); key != "" {
		params.SetIdempotencyKey(key)
	}
	if p.account != "" {
		params.SetStripeAccount(p.account)
	}
	params.Amount = stripe.Int64(req.Amount)
	if reason := mapStripeRefundReason(req.Reason); reason != "" {
		params.Reason = stripe.String(reason)
	}
	if len(req.Metadata) > 0 {
		params.Metadata = make(map[string]string, len(req.Metadata))
		for k, v := range req.Metadata {
			params.Metadata[k] = v
		}
	}

	refund, err := p.refunds.New(params)
	if err != nil {
		return Refund{}, translateStripeError(err)
	}

	p.logger(ctx, "payments.stripe.intent.refunded", map[string]any{
		"paymentIntent": intentID,
		"refund":        refund.ID,
	})
	return Refund{ID: refund.ID, Status: string(refund.Status)}, nil
}

func mapStripeRefundReason(reason string) string {
	switch strings.ToLower(strings.TrimSpace(reason)) {
	case string(stripe.RefundReasonDuplicate):
		return string(stripe.RefundReasonDuplicate)
	case string(stripe.RefundReasonFraudulent):
		return string(stripe.RefundReasonFraudulent)
	case string(stripe.RefundReasonRequestedByCustomer):
		return string(stripe.RefundReasonRequestedByCustomer)
	default:
		return ""
	}
}

func translateStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return &ProviderError{
			Code:       string(stripeErr.Code),
			Message:    stripeErr.Msg,
			StatusCode: stripeErr.HTTPStatusCode,
		}
	}
	return fmt.Errorf("stripe: refund payment intent: %w", err)
}
