package offer

import (
	"github.com/google/uuid"
	"github.com/scentswap/tradepost/internal/models"
)

// Permission predicates for the offer ownership model. They are evaluated by
// the API layer before an engine operation runs.

// CanAcceptOffers reports whether userID may accept offers on the trade.
// Only the trade owner may.
func CanAcceptOffers(trade *models.Trade, userID uuid.UUID) bool {
	return trade.OwnerID == userID
}

// CanListOffers reports whether userID may list all offers on the trade.
// Only the trade owner may.
func CanListOffers(trade *models.Trade, userID uuid.UUID) bool {
	return trade.OwnerID == userID
}

// CanViewOffer reports whether userID may view a single offer. The trade
// owner and the offer's own user may.
func CanViewOffer(trade *models.Trade, o *models.Offer, userID uuid.UUID) bool {
	return trade.OwnerID == userID || o.UserID == userID
}

// CanModifyOffer reports whether userID may cancel or rescind the offer.
// Only the offering user may.
func CanModifyOffer(o *models.Offer, userID uuid.UUID) bool {
	return o.UserID == userID
}
