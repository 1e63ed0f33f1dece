package models

import (
	"testing"

	"pgregory.net/rapid"
)

var allOfferStatuses = []OfferStatus{
	OfferStatusPending,
	OfferStatusAccepted,
	OfferStatusRejected,
	OfferStatusCancelled,
	OfferStatusCompleted,
}

func TestOfferStatus_Valid(t *testing.T) {
	for _, s := range allOfferStatuses {
		if !s.Valid() {
			t.Errorf("Expected %q to be valid", s)
		}
	}

	for _, s := range []OfferStatus{"", "PENDING", "done", "accepted "} {
		if s.Valid() {
			t.Errorf("Expected %q to be invalid", s)
		}
	}
}

func TestOfferStatus_TransitionTable(t *testing.T) {
	tests := []struct {
		from    OfferStatus
		to      OfferStatus
		allowed bool
	}{
		{OfferStatusPending, OfferStatusAccepted, true},
		{OfferStatusPending, OfferStatusRejected, true},
		{OfferStatusPending, OfferStatusCancelled, false},
		{OfferStatusPending, OfferStatusCompleted, false},
		{OfferStatusAccepted, OfferStatusCancelled, true},
		{OfferStatusAccepted, OfferStatusCompleted, true},
		{OfferStatusAccepted, OfferStatusRejected, false},
		{OfferStatusRejected, OfferStatusPending, true},
		{OfferStatusRejected, OfferStatusAccepted, false},
		{OfferStatusCancelled, OfferStatusPending, false},
		{OfferStatusCompleted, OfferStatusCancelled, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.allowed {
			t.Errorf("CanTransition(%q -> %q) = %v, want %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}

// TestProperty_OfferStatus_TerminalHasNoExits tests that cancelled and
// completed offers never transition again.
// *For any* target status, a terminal status SHALL NOT permit a transition.
func TestProperty_OfferStatus_TerminalHasNoExits(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		from := rapid.SampledFrom(allOfferStatuses).Draw(rt, "from")
		to := rapid.SampledFrom(allOfferStatuses).Draw(rt, "to")

		if from.Terminal() && from.CanTransition(to) {
			t.Fatalf("PROPERTY VIOLATION: terminal status %q permits transition to %q", from, to)
		}
	})
}

// TestProperty_OfferStatus_AcceptedOnlyFromPending tests that acceptance
// always starts from a pending offer.
func TestProperty_OfferStatus_AcceptedOnlyFromPending(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		from := rapid.SampledFrom(allOfferStatuses).Draw(rt, "from")

		if from.CanTransition(OfferStatusAccepted) && from != OfferStatusPending {
			t.Fatalf("PROPERTY VIOLATION: %q may transition to accepted", from)
		}
	})
}

// TestProperty_OfferStatus_CompletedOnlyFromAccepted tests that completion
// requires a currently accepted offer.
func TestProperty_OfferStatus_CompletedOnlyFromAccepted(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		from := rapid.SampledFrom(allOfferStatuses).Draw(rt, "from")

		if from.CanTransition(OfferStatusCompleted) && from != OfferStatusAccepted {
			t.Fatalf("PROPERTY VIOLATION: %q may transition to completed", from)
		}
	})
}

// TestProperty_OfferStatus_NoSelfTransitions tests that no status
// transitions to itself.
func TestProperty_OfferStatus_NoSelfTransitions(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := rapid.SampledFrom(allOfferStatuses).Draw(rt, "status")

		if s.CanTransition(s) {
			t.Fatalf("PROPERTY VIOLATION: %q may transition to itself", s)
		}
	})
}

// TestProperty_OfferStatus_RevivalOnlyToPending tests that a rejected offer
// can only go back to pending, never jump ahead.
func TestProperty_OfferStatus_RevivalOnlyToPending(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		to := rapid.SampledFrom(allOfferStatuses).Draw(rt, "to")

		if OfferStatusRejected.CanTransition(to) && to != OfferStatusPending {
			t.Fatalf("PROPERTY VIOLATION: rejected may transition to %q", to)
		}
	})
}
