package evaluation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/scentswap/tradepost/internal/logging"
	"github.com/scentswap/tradepost/internal/models"
	"github.com/scentswap/tradepost/internal/offer"
)

// Service errors
var (
	ErrEvaluationNotFound = errors.New("evaluation not found")
	ErrEvaluationExists   = errors.New("evaluation already exists for this trade and trader")
	ErrUnrelatedTrader    = errors.New("cannot leave an evaluation for an unrelated user")
	ErrInvalidRating      = errors.New("invalid rating: must be between 0 and 5")
)

const pgUniqueViolation = "23505"

// StatsInvalidator drops cached aggregate stats for a trader after their
// evaluation set changes.
type StatsInvalidator interface {
	Invalidate(ctx context.Context, traderID uuid.UUID) error
}

// Service creates and reads trade evaluations. Creation flips the reviewer's
// accepted offer to completed in the same transaction, so an evaluation never
// exists without its offer being completed.
type Service struct {
	db    *pgxpool.Pool
	stats StatsInvalidator
}

// NewService creates a new evaluation service. stats may be nil when no
// aggregate cache is configured.
func NewService(db *pgxpool.Pool, stats StatsInvalidator) *Service {
	return &Service{db: db, stats: stats}
}

// CreateEvaluationRequest represents the rating payload left by a reviewer
type CreateEvaluationRequest struct {
	NoShow         bool `json:"no_show"`
	Responsiveness *int `json:"responsiveness,omitempty" binding:"omitempty,min=0,max=5"`
	Demeanor       *int `json:"demeanor,omitempty" binding:"omitempty,min=0,max=5"`
	OverallRating  *int `json:"overall_rating" binding:"required,min=0,max=5"`
}

// Validate checks the rating bounds. It runs before any transaction opens.
func (r *CreateEvaluationRequest) Validate() error {
	if r.OverallRating == nil || !ratingInRange(*r.OverallRating) {
		return ErrInvalidRating
	}
	if r.Responsiveness != nil && !ratingInRange(*r.Responsiveness) {
		return ErrInvalidRating
	}
	if r.Demeanor != nil && !ratingInRange(*r.Demeanor) {
		return ErrInvalidRating
	}
	return nil
}

func ratingInRange(v int) bool {
	return v >= 0 && v <= 5
}

const evaluationColumns = `trade_id, trader_id, reviewer_id, no_show, responsiveness, demeanor, overall_rating, created_at, updated_at`

func scanEvaluation(row pgx.Row) (*models.Evaluation, error) {
	var e models.Evaluation
	err := row.Scan(
		&e.TradeID, &e.TraderID, &e.ReviewerID, &e.NoShow,
		&e.Responsiveness, &e.Demeanor, &e.OverallRating,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts an evaluation of traderID by reviewerID for the trade and
// marks the reviewer's accepted offer completed, committing both writes
// together. A second evaluation for the same (trade, trader) pair fails with
// ErrEvaluationExists: a pre-read inside the transaction catches the common
// case, and the primary key on (trade_id, trader_id) closes the race.
func (s *Service) Create(ctx context.Context, trade *models.Trade, traderID, reviewerID uuid.UUID, req *CreateEvaluationRequest) (*models.Evaluation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if trade.OwnerID != traderID {
		return nil, ErrUnrelatedTrader
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM evaluations WHERE trade_id = $1 AND trader_id = $2)
	`, trade.ID, traderID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing evaluation: %w", err)
	}
	if exists {
		return nil, ErrEvaluationExists
	}

	eval, err := scanEvaluation(tx.QueryRow(ctx, `
		INSERT INTO evaluations (trade_id, trader_id, reviewer_id, no_show, responsiveness, demeanor, overall_rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+evaluationColumns,
		trade.ID, traderID, reviewerID, req.NoShow, req.Responsiveness, req.Demeanor, *req.OverallRating,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEvaluationExists
		}
		return nil, fmt.Errorf("failed to create evaluation: %w", err)
	}

	if err := offer.MarkCompleted(ctx, tx, trade.ID, reviewerID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	logging.LogEvaluationCreated(
		trade.ID.String(), traderID.String(), reviewerID.String(), eval.OverallRating,
	)

	if s.stats != nil {
		if err := s.stats.Invalidate(ctx, traderID); err != nil {
			log.Warn().Err(err).Str("trader_id", traderID.String()).Msg("Failed to invalidate stats cache")
		}
	}

	return eval, nil
}

// GetForTrade retrieves the evaluation left about traderID on a trade
func (s *Service) GetForTrade(ctx context.Context, tradeID, traderID uuid.UUID) (*models.Evaluation, error) {
	eval, err := scanEvaluation(s.db.QueryRow(ctx, `
		SELECT `+evaluationColumns+` FROM evaluations
		WHERE trade_id = $1 AND trader_id = $2
	`, tradeID, traderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEvaluationNotFound
		}
		return nil, fmt.Errorf("failed to get evaluation: %w", err)
	}
	return eval, nil
}

// ListForTrader retrieves every evaluation left about a trader. An empty
// result is a valid answer, not an error.
func (s *Service) ListForTrader(ctx context.Context, traderID uuid.UUID) ([]models.Evaluation, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+evaluationColumns+` FROM evaluations
		WHERE trader_id = $1
		ORDER BY created_at DESC
	`, traderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	defer rows.Close()

	var evals []models.Evaluation
	for rows.Next() {
		eval, err := scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}
		evals = append(evals, *eval)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate evaluations: %w", err)
	}
	return evals, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
