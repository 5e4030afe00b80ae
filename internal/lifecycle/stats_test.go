package lifecycle

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"ecoloop/internal/model"
)

func TestComputeStatDeltas(t *testing.T) {
	weight := decimal.NewFromFloat(12.5)

	tests := []struct {
		name          string
		from          model.PickupStatus
		to            model.PickupStatus
		wantAssigned  int
		wantCompleted int
		wantWeight    decimal.Decimal
	}{
		{"assignment takes a slot", model.StatusPending, model.StatusConfirmed, 1, 0, decimal.Zero},
		{"starting keeps the slot", model.StatusConfirmed, model.StatusInProgress, 0, 0, decimal.Zero},
		{"completion frees the slot and credits", model.StatusInProgress, model.StatusCompleted, -1, 1, weight},
		{"cancel releases the slot", model.StatusConfirmed, model.StatusCancelled, -1, 0, decimal.Zero},
		{"cancel mid-job releases the slot", model.StatusInProgress, model.StatusCancelled, -1, 0, decimal.Zero},
		{"unassign returns the slot", model.StatusConfirmed, model.StatusPending, -1, 0, decimal.Zero},
		{"reopen reverses the credit", model.StatusCompleted, model.StatusInProgress, 1, -1, weight.Neg()},
		{"reopen to pending reverses everything", model.StatusCompleted, model.StatusPending, 0, -1, weight.Neg()},
		{"uncancel restores the slot", model.StatusCancelled, model.StatusConfirmed, 1, 0, decimal.Zero},
		{"completed to cancelled reverses the credit", model.StatusCompleted, model.StatusCancelled, 0, -1, weight.Neg()},
		{"pending to cancelled is a no-op", model.StatusPending, model.StatusCancelled, 0, 0, decimal.Zero},
		{"same status is a no-op", model.StatusInProgress, model.StatusInProgress, 0, 0, decimal.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ComputeStatDeltas(tt.from, tt.to, weight)
			assert.Equal(t, tt.wantAssigned, d.Assigned)
			assert.Equal(t, tt.wantCompleted, d.Completed)
			assert.True(t, tt.wantWeight.Equal(d.Weight), "weight delta: want %s, got %s", tt.wantWeight, d.Weight)
		})
	}
}

// A round trip through any path and back must cancel out, otherwise
// counters drift whenever an admin reverses a status change.
func TestComputeStatDeltasRoundTrip(t *testing.T) {
	weight := decimal.NewFromFloat(7.25)
	statuses := []model.PickupStatus{
		model.StatusPending, model.StatusConfirmed, model.StatusInProgress,
		model.StatusCompleted, model.StatusCancelled,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			forward := ComputeStatDeltas(from, to, weight)
			back := ComputeStatDeltas(to, from, weight)
			assert.Equal(t, 0, forward.Assigned+back.Assigned, "%s <-> %s", from, to)
			assert.Equal(t, 0, forward.Completed+back.Completed, "%s <-> %s", from, to)
			assert.True(t, forward.Weight.Add(back.Weight).IsZero(), "%s <-> %s", from, to)
		}
	}
}

func TestStatDeltasIsZero(t *testing.T) {
	assert.True(t, StatDeltas{Weight: decimal.Zero}.IsZero())
	assert.False(t, StatDeltas{Assigned: 1, Weight: decimal.Zero}.IsZero())
	assert.False(t, StatDeltas{Weight: decimal.NewFromInt(1)}.IsZero())
}
