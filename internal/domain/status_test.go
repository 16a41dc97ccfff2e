package domain

import "testing"

func TestDisplayInfoCoversAllStatuses(t *testing.T) {
	statuses := []OrderStatus{
		OrderStatusPending,
		OrderStatusPaid,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
		OrderStatusRefunded,
		OrderStatusCancellationRequested,
	}
	for _, status := range statuses {
		info := DisplayInfo(status)
		if info.Label == "" {
			t.Fatalf("status %q has no label", status)
		}
		if !status.Valid() {
			t.Fatalf("status %q should be valid", status)
		}
	}
}

func TestProgressionRanksAreOrdered(t *testing.T) {
	for i, status := range ProgressionStatuses() {
		if got := Rank(status); got != i {
			t.Fatalf("rank(%q) = %d, want %d", status, got, i)
		}
		if IsTerminal(status) {
			t.Fatalf("progression status %q must not be terminal", status)
		}
	}
}

func TestTerminalStatusesHaveNoRank(t *testing.T) {
	for _, status := range []OrderStatus{OrderStatusCancelled, OrderStatusRefunded} {
		info := DisplayInfo(status)
		if !info.IsTerminalError {
			t.Fatalf("status %q should be terminal", status)
		}
		if info.Rank != RankUnknown {
			t.Fatalf("status %q should have no progression rank, got %d", status, info.Rank)
		}
	}
}

func TestCancellationRequestedIsNotTerminal(t *testing.T) {
	info := DisplayInfo(OrderStatusCancellationRequested)
	if info.IsTerminalError {
		t.Fatal("cancellation_requested must not be flagged terminal")
	}
	if info.Rank != RankUnknown {
		t.Fatalf("cancellation_requested should have no progression rank, got %d", info.Rank)
	}
}

func TestDisplayInfoUnknownStatusDegrades(t *testing.T) {
	info := DisplayInfo(OrderStatus("lost_in_transit"))
	if info.Rank != RankUnknown {
		t.Fatalf("unknown status should report RankUnknown, got %d", info.Rank)
	}
	if info.IsTerminalError {
		t.Fatal("unknown status must not be treated as terminal")
	}
	if info.Label == "" {
		t.Fatal("unknown status should still carry a renderable label")
	}
	if OrderStatus("lost_in_transit").Valid() {
		t.Fatal("unknown status must not report valid")
	}
}

func TestMinorUnitsRoundsInsteadOfTruncating(t *testing.T) {
	cases := []struct {
		amount float64
		want   int64
	}{
		{100, 10000},
		{19.99, 1999},
		{0.1, 10},
		{10.005, 1001},
		{29.555, 2956},
		{0, 0},
	}
	for _, tc := range cases {
		if got := MinorUnits(tc.amount); got != tc.want {
			t.Fatalf("MinorUnits(%v) = %d, want %d", tc.amount, got, tc.want)
		}
	}
}
