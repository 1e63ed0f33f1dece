package models

import (
	"time"

	"github.com/google/uuid"
)

// OfferStatus represents the lifecycle state of an offer
type OfferStatus string

const (
	OfferStatusPending   OfferStatus = "pending"
	OfferStatusAccepted  OfferStatus = "accepted"
	OfferStatusRejected  OfferStatus = "rejected"
	OfferStatusCancelled OfferStatus = "cancelled"
	OfferStatusCompleted OfferStatus = "completed"
)

// Valid reports whether s is a member of the closed status set.
func (s OfferStatus) Valid() bool {
	switch s {
	case OfferStatusPending, OfferStatusAccepted, OfferStatusRejected,
		OfferStatusCancelled, OfferStatusCompleted:
		return true
	}
	return false
}

// offerTransitions is the full transition table for the offer state machine.
// pending -> accepted          (owner accepts)
// pending -> rejected          (sibling demotion when another offer is accepted)
// accepted -> cancelled        (bidder cancels)
// accepted -> completed        (evaluation created)
// rejected -> pending          (sibling revival when the accepted offer is cancelled)
// cancelled and completed are terminal.
var offerTransitions = map[OfferStatus]map[OfferStatus]bool{
	OfferStatusPending: {
		OfferStatusAccepted: true,
		OfferStatusRejected: true,
	},
	OfferStatusAccepted: {
		OfferStatusCancelled: true,
		OfferStatusCompleted: true,
	},
	OfferStatusRejected: {
		OfferStatusPending: true,
	},
	OfferStatusCancelled: {},
	OfferStatusCompleted: {},
}

// CanTransition reports whether the state machine permits moving from s to next.
func (s OfferStatus) CanTransition(next OfferStatus) bool {
	return offerTransitions[s][next]
}

// Terminal reports whether no transition leaves s.
func (s OfferStatus) Terminal() bool {
	return len(offerTransitions[s]) == 0
}

// Offer represents one user's bid to receive a trade's product
type Offer struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	TradeID   uuid.UUID   `json:"trade_id" db:"trade_id"`
	UserID    uuid.UUID   `json:"user_id" db:"user_id"`
	Status    OfferStatus `json:"status" db:"status"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}
