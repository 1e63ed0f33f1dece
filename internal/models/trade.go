package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradeSize represents the size of the product instance being traded
type TradeSize string

const (
	TradeSizeSample  TradeSize = "sample"
	TradeSizeTravel  TradeSize = "travel"
	TradeSizeRegular TradeSize = "regular"
	TradeSizeJumbo   TradeSize = "jumbo"
)

// Valid reports whether s is a member of the closed size set.
func (s TradeSize) Valid() bool {
	switch s {
	case TradeSizeSample, TradeSizeTravel, TradeSizeRegular, TradeSizeJumbo:
		return true
	}
	return false
}

// DisposalMode represents how the owner wants to dispose of the item
type DisposalMode string

const (
	DisposalModeTrade    DisposalMode = "trade"
	DisposalModeSell     DisposalMode = "sell"
	DisposalModeGiveaway DisposalMode = "giveaway"
)

// Valid reports whether m is a member of the closed disposal-mode set.
func (m DisposalMode) Valid() bool {
	switch m {
	case DisposalModeTrade, DisposalModeSell, DisposalModeGiveaway:
		return true
	}
	return false
}

// Trade represents a listing of one product instance, open for offers.
// OwnerID never changes after creation.
type Trade struct {
	ID        uuid.UUID           `json:"id" db:"id"`
	OwnerID   uuid.UUID           `json:"owner_id" db:"owner_id"`
	ProductID uuid.UUID           `json:"product_id" db:"product_id"`
	Size      TradeSize           `json:"size" db:"size"`
	Comment   *string             `json:"comment,omitempty" db:"comment"`
	WhatDo    DisposalMode        `json:"what_do" db:"what_do"`
	Price     decimal.NullDecimal `json:"price,omitempty" db:"price"`
	CreatedAt time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt time.Time           `json:"updated_at" db:"updated_at"`
}
