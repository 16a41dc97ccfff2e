// Package storefront holds the client-side interaction state the UI layer
// embeds, starting with the order cancellation dialog.
package storefront

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// DialogState enumerates the cancellation dialog's interaction states.
type DialogState string

const (
	DialogClosed     DialogState = "closed"
	DialogOpen       DialogState = "open"
	DialogSubmitting DialogState = "submitting"
)

// defaultSubmitTimeout bounds the in-flight cancellation call so a hung
// request cannot leave the dialog stuck in submitting.
const defaultSubmitTimeout = 10 * time.Second

var (
	// ErrDialogNotOpen is returned when Submit is called outside the open state.
	ErrDialogNotOpen = errors.New("storefront: cancellation dialog is not open")
	// ErrReasonRequired is returned when Submit is called with an empty reason.
	ErrReasonRequired = errors.New("storefront: cancellation reason is required")
)

// CancellationService is the slice of the commerce client the dialog needs.
type CancellationService interface {
	RequestCancellation(ctx context.Context, token, orderID, reason string) error
}

// CancellationDialog drives the request-cancellation interaction for one
// order view. It never patches order state locally: on success it closes
// and invokes the reload callback so the view refetches the order from the
// backend, which is the sole source of truth for the transition.
//
// The dialog is safe for use from UI event callbacks that may race; only
// one submission can be in flight at a time.
type CancellationDialog struct {
	mu      sync.Mutex
	state   DialogState
	reason  string
	lastErr error

	service CancellationService
	reload  func(ctx context.Context)
	orderID string
	token   string
	timeout time.Duration
}

// DialogConfig wires a CancellationDialog.
type DialogConfig struct {
	Service CancellationService
	OrderID string
	Token   string
	// Reload is invoked after a successful submission to refetch the
	// order view.
	Reload func(ctx context.Context)
	// SubmitTimeout bounds the backend call; defaults to 10s.
	SubmitTimeout time.Duration
}

// NewCancellationDialog constructs a closed dialog for one order.
func NewCancellationDialog(cfg DialogConfig) (*CancellationDialog, error) {
	if cfg.Service == nil {
		return nil, errors.New("storefront: cancellation service is required")
	}
	orderID := strings.TrimSpace(cfg.OrderID)
	if orderID == "" {
		return nil, errors.New("storefront: order id is required")
	}
	timeout := cfg.SubmitTimeout
	if timeout <= 0 {
		timeout = defaultSubmitTimeout
	}
	reload := cfg.Reload
	if reload == nil {
		reload = func(context.Context) {}
	}
	return &CancellationDialog{
		state:   DialogClosed,
		service: cfg.Service,
		reload:  reload,
		orderID: orderID,
		token:   strings.TrimSpace(cfg.Token),
		timeout: timeout,
	}, nil
}

// Open moves the dialog into the open state. Opening an already-open dialog
// is a no-op; opening mid-submission is ignored.
func (d *CancellationDialog) Open() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == DialogClosed {
		d.state = DialogOpen
		d.lastErr = nil
	}
}

// Close dismisses the dialog and clears the draft reason. Closing is
// ignored while a submission is in flight.
func (d *CancellationDialog) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == DialogOpen {
		d.state = DialogClosed
		d.reason = ""
		d.lastErr = nil
	}
}

// SetReason records the draft reason. Idempotent under repeated keystrokes;
// ignored while a submission is in flight.
func (d *CancellationDialog) SetReason(reason string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == DialogSubmitting {
		return
	}
	d.reason = reason
}

// Reason returns the current draft reason.
func (d *CancellationDialog) Reason() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reason
}

// State returns the current dialog state.
func (d *CancellationDialog) State() DialogState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Err returns the failure surfaced by the last submission, if any.
func (d *CancellationDialog) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

// CanSubmit reports whether the submit control should be enabled: the
// dialog is open, no submission is in flight, and the reason is non-blank.
// This is a UX guard only; the backend validates the reason independently.
func (d *CancellationDialog) CanSubmit() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state == DialogOpen && strings.TrimSpace(d.reason) != ""
}

// Submit sends the cancellation request. On success the dialog closes and
// the reload callback runs; on failure the dialog stays open with the error
// surfaced via Err, and nothing is retried automatically.
func (d *CancellationDialog) Submit(ctx context.Context) error {
	d.mu.Lock()
	if d.state != DialogOpen {
		d.mu.Unlock()
		return ErrDialogNotOpen
	}
	reason := strings.TrimSpace(d.reason)
	if reason == "" {
		d.mu.Unlock()
		return ErrReasonRequired
	}
	d.state = DialogSubmitting
	d.lastErr = nil
	d.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	err := d.service.RequestCancellation(callCtx, d.token, d.orderID, reason)
	cancel()

	d.mu.Lock()
	if err != nil {
		d.state = DialogOpen
		d.lastErr = err
		d.mu.Unlock()
		return err
	}
	d.state = DialogClosed
	d.reason = ""
	d.mu.Unlock()

	d.reload(ctx)
	return nil
}
