// Package lifecycle defines the pickup status state machine and the
// worker-statistic bookkeeping rules derived from it. Every status
// write in the system goes through this package so the transition
// rules and the counter math live in exactly one place.
package lifecycle

import (
	"fmt"

	"ecoloop/internal/model"
)

// Actor identifies who is attempting a transition.
type Actor string

const (
	ActorWorker   Actor = "worker"
	ActorAdmin    Actor = "admin"
	ActorCustomer Actor = "customer"
)

// Transition defines a valid state change and who may perform it.
type Transition struct {
	From  model.PickupStatus
	To    model.PickupStatus
	Actor Actor
}

// validTransitions is the authoritative state machine definition.
var validTransitions = []Transition{
	// Assignment: admin assigns, or a worker claims from the pool.
	{From: model.StatusPending, To: model.StatusConfirmed, Actor: ActorAdmin},
	{From: model.StatusPending, To: model.StatusConfirmed, Actor: ActorWorker},
	// Only the assigned worker advances the job on site.
	{From: model.StatusConfirmed, To: model.StatusInProgress, Actor: ActorWorker},
	{From: model.StatusInProgress, To: model.StatusCompleted, Actor: ActorWorker},
	// Cancellation from any non-terminal state; customers may only
	// back out before a worker is involved.
	{From: model.StatusPending, To: model.StatusCancelled, Actor: ActorAdmin},
	{From: model.StatusPending, To: model.StatusCancelled, Actor: ActorCustomer},
	{From: model.StatusConfirmed, To: model.StatusCancelled, Actor: ActorAdmin},
	{From: model.StatusInProgress, To: model.StatusCancelled, Actor: ActorAdmin},
}

type transitionKey struct {
	From  model.PickupStatus
	To    model.PickupStatus
	Actor Actor
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool, len(validTransitions))
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// IsTerminal reports whether no further transitions leave s.
func IsTerminal(s model.PickupStatus) bool {
	return s == model.StatusCompleted || s == model.StatusCancelled
}

// ValidTransitionsFrom returns all states reachable from status,
// regardless of actor.
func ValidTransitionsFrom(status model.PickupStatus) []model.PickupStatus {
	var nexts []model.PickupStatus
	seen := map[model.PickupStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks whether actor may move a pickup from one
// status to another. The returned error spells out the valid options
// so route handlers can surface it directly.
func CanTransition(from, to model.PickupStatus, actor Actor) error {
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return fmt.Errorf("invalid transition: %s -> %s is not allowed for actor %q; valid transitions from %s: %s",
		from, to, actor, from, describeValidFrom(from))
}

func describeValidFrom(status model.PickupStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	out := ""
	for i, s := range nexts {
		if i > 0 {
			out += ", "
		}
		out += string(s)
	}
	return out
}

// AllTransitions returns the full state machine for documentation.
func AllTransitions() []Transition {
	return validTransitions
}
