package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/solenne/storefront/internal/payments"
)

type stubProvider struct {
	refundFn func(ctx context.Context, req payments.RefundRequest) (payments.Refund, error)
	calls    int
	last     payments.RefundRequest
}

func (s *stubProvider) Refund(ctx context.Context, req payments.RefundRequest) (payments.Refund, error) {
	s.calls++
	s.last = req
	if s.refundFn == nil {
		return payments.Refund{ID: "re_stub", Status: "succeeded"}, nil
	}
	return s.refundFn(ctx, req)
}

func newRefundRouter(t *testing.T, provider payments.Provider, secret string) chi.Router {
	t.Helper()
	handlers, err := NewRefundHandlers(RefundHandlersDeps{
		Provider: provider,
		Secret:   secret,
	})
	if err != nil {
		t.Fatalf("NewRefundHandlers: %v", err)
	}
	r := chi.NewRouter()
	r.Route("/api", handlers.Routes)
	return r
}

func postRefund(router http.Handler, secret, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/refund-order", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set("x-strapi-secret", secret)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

const validRefundBody = `{"paymentIntentId": "pi_1", "amount": 100, "orderId": "ORD-1"}`

func TestRefundOrderSuccess(t *testing.T) {
	provider := &stubProvider{refundFn: func(_ context.Context, req payments.RefundRequest) (payments.Refund, error) {
		return payments.Refund{ID: "re_42", Status: "succeeded"}, nil
	}}
	router := newRefundRouter(t, provider, "hook-secret")

	rec := postRefund(router, "hook-secret", validRefundBody)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["success"] != true || body["refundId"] != "re_42" || body["status"] != "succeeded" {
		t.Fatalf("body = %v", body)
	}

	// Minor-unit conversion: 100 major units -> 10000.
	if provider.last.Amount != 10000 {
		t.Fatalf("provider amount = %d, want 10000", provider.last.Amount)
	}
	if provider.last.Reason != "requested_by_customer" {
		t.Fatalf("reason = %q", provider.last.Reason)
	}
	if provider.last.Metadata["orderId"] != "ORD-1" {
		t.Fatalf("metadata = %v", provider.last.Metadata)
	}
	if provider.last.Metadata["traceId"] == "" {
		t.Fatal("trace id should be generated when the header is absent")
	}
}

func TestRefundOrderConvertsFractionalAmounts(t *testing.T) {
	cases := []struct {
		amount string
		want   int64
	}{
		{"19.99", 1999},
		{"0.1", 10},
		{"10.005", 1001},
	}
	for _, tc := range cases {
		provider := &stubProvider{}
		router := newRefundRouter(t, provider, "hook-secret")

		body := `{"paymentIntentId": "pi_1", "amount": ` + tc.amount + `, "orderId": "ORD-1"}`
		rec := postRefund(router, "hook-secret", body)

		if rec.Code != http.StatusOK {
			t.Fatalf("amount %s: status = %d", tc.amount, rec.Code)
		}
		if provider.last.Amount != tc.want {
			t.Fatalf("amount %s: provider amount = %d, want %d", tc.amount, provider.last.Amount, tc.want)
		}
	}
}

func TestRefundOrderPropagatesTraceHeader(t *testing.T) {
	provider := &stubProvider{}
	router := newRefundRouter(t, provider, "hook-secret")

	req := httptest.NewRequest(http.MethodPost, "/api/refund-order", strings.NewReader(validRefundBody))
	req.Header.Set("x-strapi-secret", "hook-secret")
	req.Header.Set("x-trace-id", "trace-abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if provider.last.Metadata["traceId"] != "trace-abc" {
		t.Fatalf("trace id = %q, want trace-abc", provider.last.Metadata["traceId"])
	}
}

func TestRefundOrderMissingSecretHeader(t *testing.T) {
	provider := &stubProvider{}
	router := newRefundRouter(t, provider, "hook-secret")

	rec := postRefund(router, "", validRefundBody)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Unauthorized" {
		t.Fatalf("body = %v", body)
	}
	if provider.calls != 0 {
		t.Fatal("provider must not be invoked on authorization failure")
	}
}

func TestRefundOrderWrongSecret(t *testing.T) {
	provider := &stubProvider{}
	router := newRefundRouter(t, provider, "hook-secret")

	rec := postRefund(router, "not-the-secret", validRefundBody)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "Unauthorized" {
		t.Fatalf("body = %v", body)
	}
}

func TestRefundOrderUnconfiguredSecret(t *testing.T) {
	provider := &stubProvider{}
	router := newRefundRouter(t, provider, "")

	// Configuration errors win over anything the caller sends.
	rec := postRefund(router, "whatever", validRefundBody)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Server configuration error" {
		t.Fatalf("body = %v", body)
	}
	if provider.calls != 0 {
		t.Fatal("provider must not be invoked when the secret is unconfigured")
	}
}

func TestRefundOrderMissingFields(t *testing.T) {
	cases := []struct {
		name string
		body string
		want []string
	}{
		{"all missing", `{}`, []string{"paymentIntentId", "amount", "orderId"}},
		{"zero amount", `{"paymentIntentId": "pi_1", "amount": 0, "orderId": "ORD-1"}`, []string{"amount"}},
		// A negative amount reaching the provider would be dropped from the
		// refund params, which Stripe reads as "refund the entire charge".
		{"negative amount", `{"paymentIntentId": "pi_1", "amount": -5, "orderId": "ORD-1"}`, []string{"amount"}},
		{"blank intent", `{"paymentIntentId": "  ", "amount": 10, "orderId": "ORD-1"}`, []string{"paymentIntentId"}},
	}
	for _, tc := range cases {
		provider := &stubProvider{}
		router := newRefundRouter(t, provider, "hook-secret")

		rec := postRefund(router, "hook-secret", tc.body)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", tc.name, rec.Code)
		}
		body := decodeBody(t, rec)
		message, _ := body["error"].(string)
		for _, field := range tc.want {
			if !strings.Contains(message, field) {
				t.Fatalf("%s: error %q should name %q", tc.name, message, field)
			}
		}
		if provider.calls != 0 {
			t.Fatalf("%s: provider must not be invoked on validation failure", tc.name)
		}
	}
}

func TestRefundOrderProviderErrorPassthrough(t *testing.T) {
	provider := &stubProvider{refundFn: func(context.Context, payments.RefundRequest) (payments.Refund, error) {
		return payments.Refund{}, &payments.ProviderError{
			Code:       "charge_already_refunded",
			Message:    "Charge pi_1 has already been refunded.",
			StatusCode: 402,
		}
	}}
	router := newRefundRouter(t, provider, "hook-secret")

	rec := postRefund(router, "hook-secret", validRefundBody)

	if rec.Code != 402 {
		t.Fatalf("status = %d, want 402", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Stripe API Error" {
		t.Fatalf("error = %v", body["error"])
	}
	if body["code"] != "charge_already_refunded" {
		t.Fatalf("code = %v", body["code"])
	}
	if body["message"] != "Charge pi_1 has already been refunded." {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestRefundOrderProviderErrorStatusFallback(t *testing.T) {
	provider := &stubProvider{refundFn: func(context.Context, payments.RefundRequest) (payments.Refund, error) {
		return payments.Refund{}, &payments.ProviderError{Code: "api_error", Message: "boom"}
	}}
	router := newRefundRouter(t, provider, "hook-secret")

	rec := postRefund(router, "hook-secret", validRefundBody)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 fallback", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "Stripe API Error" {
		t.Fatalf("body = %v", body)
	}
}

func TestRefundOrderUnexpectedErrorIsOpaque(t *testing.T) {
	provider := &stubProvider{refundFn: func(context.Context, payments.RefundRequest) (payments.Refund, error) {
		return payments.Refund{}, context.DeadlineExceeded
	}}
	router := newRefundRouter(t, provider, "hook-secret")

	rec := postRefund(router, "hook-secret", validRefundBody)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Internal server error" {
		t.Fatalf("body = %v", body)
	}
	if _, leaked := body["message"]; leaked {
		t.Fatal("unexpected errors must not leak details")
	}
}
