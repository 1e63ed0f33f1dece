package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalog entry that trades reference
type Product struct {
	ID          uuid.UUID           `json:"id" db:"id"`
	Name        string              `json:"name" db:"name"`
	Brand       *string             `json:"brand,omitempty" db:"brand"`
	Description *string             `json:"description,omitempty" db:"description"`
	Type        string              `json:"type" db:"type"`
	Price       decimal.NullDecimal `json:"price,omitempty" db:"price"`
	CreatedAt   time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at" db:"updated_at"`
}
