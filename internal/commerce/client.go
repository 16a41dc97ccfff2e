// Package commerce is the HTTP client for the headless commerce backend
// that owns order records and session validation.
package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/solenne/storefront/internal/domain"
)

// defaultTimeout bounds every backend call so a hung request cannot pin a
// caller indefinitely.
const defaultTimeout = 8 * time.Second

// Sentinel errors for backend responses the callers branch on.
var (
	ErrUnauthorized  = errors.New("commerce: unauthorized")
	ErrOrderNotFound = errors.New("commerce: order not found")
	ErrEmptyReason   = errors.New("commerce: cancellation reason is required")
)

// Client issues order reads and lifecycle commands against the backend.
type Client struct {
	baseURL string
	http    *http.Client
}

type clientOptions struct {
	httpClient *http.Client
	timeout    time.Duration
}

// Option customises the client.
type Option func(*clientOptions)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *clientOptions) {
		if httpClient != nil {
			o.httpClient = httpClient
		}
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// NewClient constructs a backend client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("commerce: base url is required")
	}

	var options clientOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	httpClient := options.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	// The timeout applies regardless of its position among the options.
	if options.timeout > 0 {
		httpClient.Timeout = options.timeout
	}

	return &Client{baseURL: trimmed, http: httpClient}, nil
}

// GetOrder fetches a single order projection using the caller's session token.
func (c *Client) GetOrder(ctx context.Context, token, orderID string) (domain.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return domain.Order{}, ErrOrderNotFound
	}

	endpoint, err := url.JoinPath(c.baseURL, "api", "orders", orderID)
	if err != nil {
		return domain.Order{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Order{}, err
	}
	req.Header.Set("Accept", "application/json")
	setBearer(req, token)

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Order{}, err
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return domain.Order{}, err
	}

	var payload orderPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Order{}, fmt.Errorf("commerce: decode order: %w", err)
	}
	return payload.toOrder(), nil
}

// RequestCancellation asks the backend to move the order into
// cancellation_requested. The backend is the source of truth for the
// transition; callers refetch the order afterwards instead of patching
// local state.
func (c *Client) RequestCancellation(ctx context.Context, token, orderID, reason string) error {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return ErrOrderNotFound
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrEmptyReason
	}

	endpoint, err := url.JoinPath(c.baseURL, "api", "orders", orderID, "request-cancellation")
	if err != nil {
		return err
	}
	payload, err := json.Marshal(map[string]string{"reason": reason})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	setBearer(req, token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return err
	}

	var result struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("commerce: decode cancellation response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("commerce: cancellation not acknowledged")
	}
	return nil
}

func setBearer(req *http.Request, token string) {
	if token = strings.TrimSpace(token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func statusError(resp *http.Response) error {
	switch {
	case resp.StatusCode < 400:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrOrderNotFound
	default:
		return fmt.Errorf("commerce: status %d: %s", resp.StatusCode, drainError(resp.Body))
	}
}

func drainError(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 512))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
