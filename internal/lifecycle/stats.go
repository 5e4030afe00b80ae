package lifecycle

import (
	"github.com/shopspring/decimal"

	"ecoloop/internal/model"
)

// StatDeltas describes how a status change adjusts the assigned
// worker's counters. Deltas are computed purely from the (from, to)
// pair, so worker-driven transitions and admin overrides apply the
// same bookkeeping: moving into completed credits the worker exactly
// once, moving back out reverses the credit, and leaving an active
// status releases the assignment slot.
type StatDeltas struct {
	Assigned  int
	Completed int
	Weight    decimal.Decimal
}

// IsZero reports whether the deltas would be a no-op.
func (d StatDeltas) IsZero() bool {
	return d.Assigned == 0 && d.Completed == 0 && d.Weight.IsZero()
}

// active statuses hold one of the worker's assignment slots.
func active(s model.PickupStatus) int {
	if s == model.StatusConfirmed || s == model.StatusInProgress {
		return 1
	}
	return 0
}

func completed(s model.PickupStatus) int {
	if s == model.StatusCompleted {
		return 1
	}
	return 0
}

// ComputeStatDeltas returns the counter adjustments for the pickup's
// assigned worker when the pickup moves from one status to another.
// actualWeight is the pickup's authoritative weight at transition
// time; it only contributes when the completed flag flips.
func ComputeStatDeltas(from, to model.PickupStatus, actualWeight decimal.Decimal) StatDeltas {
	completedFlip := completed(to) - completed(from)
	return StatDeltas{
		Assigned:  active(to) - active(from),
		Completed: completedFlip,
		Weight:    actualWeight.Mul(decimal.NewFromInt(int64(completedFlip))),
	}
}
