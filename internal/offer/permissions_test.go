package offer

import (
	"testing"

	"github.com/google/uuid"
	"github.com/scentswap/tradepost/internal/models"
)

func TestPermissions(t *testing.T) {
	owner := uuid.New()
	bidder := uuid.New()
	stranger := uuid.New()

	tr := &models.Trade{ID: uuid.New(), OwnerID: owner}
	o := &models.Offer{ID: uuid.New(), TradeID: tr.ID, UserID: bidder}

	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"owner can accept", CanAcceptOffers(tr, owner), true},
		{"bidder cannot accept", CanAcceptOffers(tr, bidder), false},
		{"stranger cannot accept", CanAcceptOffers(tr, stranger), false},
		{"owner can list", CanListOffers(tr, owner), true},
		{"stranger cannot list", CanListOffers(tr, stranger), false},
		{"bidder can modify own offer", CanModifyOffer(o, bidder), true},
		{"owner cannot modify offer", CanModifyOffer(o, owner), false},
		{"owner can view offer", CanViewOffer(tr, o, owner), true},
		{"bidder can view own offer", CanViewOffer(tr, o, bidder), true},
		{"stranger cannot view offer", CanViewOffer(tr, o, stranger), false},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}
