package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/scentswap/tradepost/internal/models"
	"github.com/shopspring/decimal"
)

// Service errors
var (
	ErrTradeNotFound  = errors.New("trade not found")
	ErrTradeNotOwned  = errors.New("trade not owned by user")
	ErrNoUpdateParams = errors.New("no valid update parameters, no update performed")
	ErrInvalidSize    = errors.New("invalid size: must be sample, travel, regular or jumbo")
	ErrInvalidWhatDo  = errors.New("invalid what_do: must be trade, sell or giveaway")
)

// Service handles trade listing operations
type Service struct {
	db *pgxpool.Pool
}

// NewService creates a new trade service
func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// CreateTradeRequest represents a request to list a product instance for trade
type CreateTradeRequest struct {
	ProductID uuid.UUID           `json:"product_id" binding:"required"`
	Size      models.TradeSize    `json:"size"`
	Comment   *string             `json:"comment,omitempty"`
	WhatDo    models.DisposalMode `json:"what_do"`
	Price     decimal.NullDecimal `json:"price,omitempty"`
}

// UpdateTradeRequest represents a partial update to a trade. Each field is
// either absent (nil) or present with a value; explicit zero values count as
// present.
type UpdateTradeRequest struct {
	Size    *models.TradeSize    `json:"size,omitempty"`
	Comment *string              `json:"comment,omitempty"`
	WhatDo  *models.DisposalMode `json:"what_do,omitempty"`
	Price   *decimal.NullDecimal `json:"price,omitempty"`
}

// Empty reports whether the patch carries no fields at all.
func (r *UpdateTradeRequest) Empty() bool {
	return r.Size == nil && r.Comment == nil && r.WhatDo == nil && r.Price == nil
}

const tradeColumns = `id, owner_id, product_id, size, comment, what_do, price, created_at, updated_at`

func scanTrade(row pgx.Row) (*models.Trade, error) {
	var t models.Trade
	err := row.Scan(
		&t.ID, &t.OwnerID, &t.ProductID, &t.Size, &t.Comment,
		&t.WhatDo, &t.Price, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create lists a new trade owned by ownerID
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, req *CreateTradeRequest) (*models.Trade, error) {
	size := req.Size
	if size == "" {
		size = models.TradeSizeRegular
	}
	if !size.Valid() {
		return nil, ErrInvalidSize
	}

	whatDo := req.WhatDo
	if whatDo == "" {
		whatDo = models.DisposalModeTrade
	}
	if !whatDo.Valid() {
		return nil, ErrInvalidWhatDo
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO trades (owner_id, product_id, size, comment, what_do, price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+tradeColumns,
		ownerID, req.ProductID, size, req.Comment, whatDo, req.Price,
	)
	trade, err := scanTrade(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create trade: %w", err)
	}
	return trade, nil
}

// GetByID retrieves a trade by ID
func (s *Service) GetByID(ctx context.Context, tradeID uuid.UUID) (*models.Trade, error) {
	trade, err := scanTrade(s.db.QueryRow(ctx, `
		SELECT `+tradeColumns+` FROM trades WHERE id = $1
	`, tradeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTradeNotFound
		}
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}
	return trade, nil
}

// ListByOwner retrieves all trades listed by one user
func (s *Service) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Trade, error) {
	return s.list(ctx, `
		SELECT `+tradeColumns+` FROM trades
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID)
}

// ListByProduct retrieves all trades offering a given product
func (s *Service) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Trade, error) {
	return s.list(ctx, `
		SELECT `+tradeColumns+` FROM trades
		WHERE product_id = $1
		ORDER BY created_at DESC
	`, productID)
}

func (s *Service) list(ctx context.Context, query string, arg any) ([]models.Trade, error) {
	rows, err := s.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, *trade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trades: %w", err)
	}
	return trades, nil
}

// Update applies a partial update to a trade. Only fields present in the
// patch are changed; an empty patch fails with ErrNoUpdateParams.
func (s *Service) Update(ctx context.Context, trade *models.Trade, req *UpdateTradeRequest) (*models.Trade, error) {
	if req.Empty() {
		return nil, ErrNoUpdateParams
	}

	if req.Size != nil {
		if !req.Size.Valid() {
			return nil, ErrInvalidSize
		}
		trade.Size = *req.Size
	}
	if req.Comment != nil {
		trade.Comment = req.Comment
	}
	if req.WhatDo != nil {
		if !req.WhatDo.Valid() {
			return nil, ErrInvalidWhatDo
		}
		trade.WhatDo = *req.WhatDo
	}
	if req.Price != nil {
		trade.Price = *req.Price
	}

	row := s.db.QueryRow(ctx, `
		UPDATE trades SET
			size = $1, comment = $2, what_do = $3, price = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING `+tradeColumns,
		trade.Size, trade.Comment, trade.WhatDo, trade.Price, trade.ID,
	)
	updated, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTradeNotFound
		}
		return nil, fmt.Errorf("failed to update trade: %w", err)
	}
	return updated, nil
}

// Delete removes a trade and, by cascade, its offers and evaluations.
// Returns the deleted trade's ID.
func (s *Service) Delete(ctx context.Context, tradeID uuid.UUID) (uuid.UUID, error) {
	result, err := s.db.Exec(ctx, `DELETE FROM trades WHERE id = $1`, tradeID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to delete trade: %w", err)
	}
	if result.RowsAffected() == 0 {
		return uuid.Nil, ErrTradeNotFound
	}
	return tradeID, nil
}
