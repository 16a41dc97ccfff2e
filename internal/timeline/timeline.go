// Package timeline reconstructs a presentable order progression from a
// current status and a possibly partial status history log.
package timeline

import (
	"time"

	"github.com/solenne/storefront/internal/domain"
)

// StepState describes how a progression slot should be rendered.
type StepState string

const (
	StateCompleted StepState = "completed"
	StateCurrent   StepState = "current"
	StatePending   StepState = "pending"
)

// BannerKind identifies which terminal banner takes visual precedence over
// the progression slots.
type BannerKind string

const (
	BannerCancelled BannerKind = "cancelled"
	BannerRefunded  BannerKind = "refunded"
)

// Step is one of the five progression slots. Timestamp is set only when the
// history log recorded the transition. InHistory distinguishes a current
// status that already has an authoritative history entry from one that is
// only known by rank, so renderers can suppress the generic "current"
// indicator when a timestamped entry exists.
type Step struct {
	Status    domain.OrderStatus `json:"status"`
	Label     string             `json:"label"`
	State     StepState          `json:"state"`
	Timestamp *time.Time         `json:"timestamp,omitempty"`
	InHistory bool               `json:"inHistory"`
}

// Banner reports a terminal lifecycle branch (cancelled or refunded). It is
// a separate output field, never a progression slot.
type Banner struct {
	Kind      BannerKind         `json:"kind"`
	Status    domain.OrderStatus `json:"status"`
	Label     string             `json:"label"`
	Timestamp *time.Time         `json:"timestamp,omitempty"`
}

// Timeline is the reconstructed display model for an order's lifecycle.
type Timeline struct {
	Steps  [5]Step `json:"steps"`
	Banner *Banner `json:"banner,omitempty"`
}

// Build reconstructs the five-slot progression for the given current status
// and history log. History entries are authoritative: a status present in
// the log is completed with that entry's timestamp even when rank inference
// would disagree, because the log carries the recorded transition time. Rank
// inference is the fallback for gaps the log never captured. Duplicate log
// entries keep the first occurrence; entries outside the progression chain
// only affect the banner. An unrecognized current status completes nothing.
// Build is pure and safe for concurrent use.
func Build(current domain.OrderStatus, history []domain.StatusHistoryItem) Timeline {
	recorded := firstOccurrences(history)
	currentRank := domain.Rank(current)

	var tl Timeline
	for i, status := range domain.ProgressionStatuses() {
		step := Step{
			Status: status,
			Label:  domain.DisplayInfo(status).Label,
			State:  StatePending,
		}
		if entry, ok := recorded[status]; ok {
			// History wins over rank inference, even for the current
			// status: the log entry carries the recorded timestamp.
			step.State = StateCompleted
			step.InHistory = true
			if !entry.Date.IsZero() {
				ts := entry.Date
				step.Timestamp = &ts
			}
		} else if currentRank != domain.RankUnknown && i < currentRank {
			step.State = StateCompleted
		} else if status == current {
			step.State = StateCurrent
		}
		tl.Steps[i] = step
	}

	tl.Banner = buildBanner(current, recorded)
	return tl
}

func buildBanner(current domain.OrderStatus, recorded map[domain.OrderStatus]domain.StatusHistoryItem) *Banner {
	var kind BannerKind
	switch current {
	case domain.OrderStatusCancelled:
		kind = BannerCancelled
	case domain.OrderStatusRefunded:
		kind = BannerRefunded
	default:
		return nil
	}

	banner := &Banner{
		Kind:   kind,
		Status: current,
		Label:  domain.DisplayInfo(current).Label,
	}
	if entry, ok := recorded[current]; ok && !entry.Date.IsZero() {
		ts := entry.Date
		banner.Timestamp = &ts
	}
	return banner
}

func firstOccurrences(history []domain.StatusHistoryItem) map[domain.OrderStatus]domain.StatusHistoryItem {
	if len(history) == 0 {
		return nil
	}
	recorded := make(map[domain.OrderStatus]domain.StatusHistoryItem, len(history))
	for _, entry := range history {
		if _, ok := recorded[entry.Status]; ok {
			continue
		}
		recorded[entry.Status] = entry
	}
	return recorded
}
