package timeline

import (
	"testing"
	"time"

	"github.com/solenne/storefront/internal/domain"
)

func TestBuildPendingNoHistory(t *testing.T) {
	tl := Build(domain.OrderStatusPending, nil)

	if tl.Banner != nil {
		t.Fatalf("unexpected banner %+v", tl.Banner)
	}
	completed, current, pending := countStates(tl)
	if completed != 0 {
		t.Fatalf("expected 0 completed steps, got %d", completed)
	}
	if current != 1 || tl.Steps[0].State != StateCurrent {
		t.Fatalf("expected pending to be the current step, got %+v", tl.Steps)
	}
	if pending != 4 {
		t.Fatalf("expected 4 pending steps, got %d", pending)
	}
}

func TestBuildDeliveredNoHistory(t *testing.T) {
	tl := Build(domain.OrderStatusDelivered, nil)

	completed, current, _ := countStates(tl)
	if completed != 4 {
		t.Fatalf("expected 4 completed steps, got %d", completed)
	}
	if current != 1 || tl.Steps[4].State != StateCurrent {
		t.Fatalf("expected delivered to be current, got %+v", tl.Steps[4])
	}
	for i := 0; i < 4; i++ {
		if tl.Steps[i].Timestamp != nil {
			t.Fatalf("rank-inferred step %d must not carry a timestamp", i)
		}
	}
}

func TestBuildRankInferenceCompletesEarlierSteps(t *testing.T) {
	tl := Build(domain.OrderStatusShipped, nil)

	for i := 0; i < 3; i++ {
		if tl.Steps[i].State != StateCompleted {
			t.Fatalf("step %d should be completed by rank inference, got %s", i, tl.Steps[i].State)
		}
	}
	if tl.Steps[3].State != StateCurrent {
		t.Fatalf("shipped should be current, got %s", tl.Steps[3].State)
	}
	if tl.Steps[4].State != StatePending {
		t.Fatalf("delivered should be pending, got %s", tl.Steps[4].State)
	}
}

func TestBuildHistoryWinsOverRank(t *testing.T) {
	paidAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	history := []domain.StatusHistoryItem{
		{Status: domain.OrderStatusPaid, Date: paidAt},
	}

	// Current status is pending: rank inference alone would leave paid
	// pending, but the history entry is authoritative.
	tl := Build(domain.OrderStatusPending, history)

	paid := tl.Steps[1]
	if paid.State != StateCompleted {
		t.Fatalf("paid should be completed from history, got %s", paid.State)
	}
	if !paid.InHistory {
		t.Fatal("paid should be flagged as recorded in history")
	}
	if paid.Timestamp == nil || !paid.Timestamp.Equal(paidAt) {
		t.Fatalf("paid timestamp = %v, want %v", paid.Timestamp, paidAt)
	}
}

func TestBuildCurrentStatusInHistorySuppressesCurrentMarker(t *testing.T) {
	shippedAt := time.Date(2026, 3, 16, 18, 0, 0, 0, time.UTC)
	history := []domain.StatusHistoryItem{
		{Status: domain.OrderStatusPending, Date: shippedAt.Add(-48 * time.Hour)},
		{Status: domain.OrderStatusShipped, Date: shippedAt},
	}

	tl := Build(domain.OrderStatusShipped, history)

	shipped := tl.Steps[3]
	if shipped.State != StateCompleted || !shipped.InHistory {
		t.Fatalf("current status with a history entry should render as a completed historical step, got %+v", shipped)
	}
	if shipped.Timestamp == nil || !shipped.Timestamp.Equal(shippedAt) {
		t.Fatalf("shipped timestamp = %v, want %v", shipped.Timestamp, shippedAt)
	}
	if _, current, _ := countStates(tl); current != 0 {
		t.Fatal("no generic current indicator expected when the current status is in history")
	}
}

func TestBuildDuplicateHistoryFirstOccurrenceWins(t *testing.T) {
	first := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	second := first.Add(2 * time.Hour)
	history := []domain.StatusHistoryItem{
		{Status: domain.OrderStatusPaid, Date: first},
		{Status: domain.OrderStatusPaid, Date: second},
	}

	tl := Build(domain.OrderStatusProcessing, history)

	paid := tl.Steps[1]
	if paid.Timestamp == nil || !paid.Timestamp.Equal(first) {
		t.Fatalf("duplicate history entry should keep first timestamp, got %v", paid.Timestamp)
	}
}

func TestBuildCancelledBanner(t *testing.T) {
	tl := Build(domain.OrderStatusCancelled, nil)

	if tl.Banner == nil {
		t.Fatal("expected cancelled banner")
	}
	if tl.Banner.Kind != BannerCancelled {
		t.Fatalf("banner kind = %s, want %s", tl.Banner.Kind, BannerCancelled)
	}
	// No history: nothing can be claimed completed or current.
	completed, current, pending := countStates(tl)
	if completed != 0 || current != 0 || pending != 5 {
		t.Fatalf("cancelled with no history should leave all slots pending, got completed=%d current=%d pending=%d", completed, current, pending)
	}
}

func TestBuildCancelledKeepsPreBranchProgress(t *testing.T) {
	cancelledAt := time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC)
	history := []domain.StatusHistoryItem{
		{Status: domain.OrderStatusPending, Date: cancelledAt.Add(-72 * time.Hour)},
		{Status: domain.OrderStatusPaid, Date: cancelledAt.Add(-71 * time.Hour)},
		{Status: domain.OrderStatusCancellationRequested, Date: cancelledAt.Add(-24 * time.Hour)},
		{Status: domain.OrderStatusCancelled, Date: cancelledAt},
	}

	tl := Build(domain.OrderStatusCancelled, history)

	if tl.Steps[0].State != StateCompleted || tl.Steps[1].State != StateCompleted {
		t.Fatalf("progress completed before the cancellation must survive, got %+v", tl.Steps)
	}
	for i := 2; i < 5; i++ {
		if tl.Steps[i].State != StatePending {
			t.Fatalf("step %d should stay pending after cancellation, got %s", i, tl.Steps[i].State)
		}
	}
	if tl.Banner == nil || tl.Banner.Timestamp == nil || !tl.Banner.Timestamp.Equal(cancelledAt) {
		t.Fatalf("banner should carry the cancellation timestamp, got %+v", tl.Banner)
	}
}

func TestBuildRefundedBanner(t *testing.T) {
	tl := Build(domain.OrderStatusRefunded, nil)

	if tl.Banner == nil || tl.Banner.Kind != BannerRefunded {
		t.Fatalf("expected refunded banner, got %+v", tl.Banner)
	}
}

func TestBuildUnknownStatusCompletesNothing(t *testing.T) {
	tl := Build(domain.OrderStatus("misplaced"), nil)

	completed, current, pending := countStates(tl)
	if completed != 0 || current != 0 || pending != 5 {
		t.Fatalf("unknown status should leave everything pending, got completed=%d current=%d pending=%d", completed, current, pending)
	}
	if tl.Banner != nil {
		t.Fatalf("unknown status must not raise a banner, got %+v", tl.Banner)
	}
}

func TestBuildOutOfProgressionHistoryDoesNotOccupySlots(t *testing.T) {
	history := []domain.StatusHistoryItem{
		{Status: domain.OrderStatusCancellationRequested, Date: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)},
	}

	tl := Build(domain.OrderStatusCancellationRequested, history)

	for i, step := range tl.Steps {
		if step.Status != domain.ProgressionStatuses()[i] {
			t.Fatalf("slot %d holds %q, want progression status", i, step.Status)
		}
	}
	if tl.Banner != nil {
		t.Fatalf("cancellation_requested is not terminal, no banner expected, got %+v", tl.Banner)
	}
}

func countStates(tl Timeline) (completed, current, pending int) {
	for _, step := range tl.Steps {
		switch step.State {
		case StateCompleted:
			completed++
		case StateCurrent:
			current++
		case StatePending:
			pending++
		}
	}
	return completed, current, pending
}
