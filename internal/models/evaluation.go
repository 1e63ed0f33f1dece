package models

import (
	"time"

	"github.com/google/uuid"
)

// Evaluation represents a post-trade rating left by the reviewer about the
// trade's owner. At most one evaluation exists per (trade, trader) pair and
// it is never updated or deleted.
type Evaluation struct {
	TradeID        uuid.UUID `json:"trade_id" db:"trade_id"`
	TraderID       uuid.UUID `json:"trader_id" db:"trader_id"`
	ReviewerID     uuid.UUID `json:"reviewer_id" db:"reviewer_id"`
	NoShow         bool      `json:"no_show" db:"no_show"`
	Responsiveness *int      `json:"responsiveness,omitempty" db:"responsiveness"`
	Demeanor       *int      `json:"demeanor,omitempty" db:"demeanor"`
	OverallRating  int       `json:"overall_rating" db:"overall_rating"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Aggregate is the derived read model over one trader's evaluations. It is
// computed on demand and never persisted. Averages, min and max are nil when
// the trader has no evaluations yet; that is a valid "no data" result.
type Aggregate struct {
	AvgResponsiveness *float64 `json:"avg_responsiveness"`
	AvgDemeanor       *float64 `json:"avg_demeanor"`
	AvgOverallRating  *float64 `json:"avg_overall_rating"`
	MaxOverallRating  *int     `json:"max_overall_rating"`
	MinOverallRating  *int     `json:"min_overall_rating"`
	OneStars          int      `json:"one_stars"`
	TwoStars          int      `json:"two_stars"`
	ThreeStars        int      `json:"three_stars"`
	FourStars         int      `json:"four_stars"`
	FiveStars         int      `json:"five_stars"`
	TotalEvaluations  int      `json:"total_evaluations"`
	TotalNoShow       int      `json:"total_no_show"`
}
