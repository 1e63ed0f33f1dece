package offer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/scentswap/tradepost/internal/logging"
	"github.com/scentswap/tradepost/internal/models"
)

// Service errors
var (
	ErrOfferNotFound        = errors.New("offer not found")
	ErrOwnTradeOffer        = errors.New("cannot offer on own trade")
	ErrDuplicateOffer       = errors.New("duplicate offer")
	ErrTradeAlreadyAccepted = errors.New("trade already has an accepted offer")
	ErrNotPending           = errors.New("can only accept offers that are currently pending")
	ErrNotAccepted          = errors.New("can only cancel accepted offers")
	ErrNotRescindable       = errors.New("can only rescind currently pending offers")
	ErrNoAcceptedOffer      = errors.New("no accepted offer for this trade and user")
)

const pgUniqueViolation = "23505"

// Service owns the offer state machine. Every state-mutating operation runs
// as one transaction; siblings are locked with FOR UPDATE so concurrent
// accepts on the same trade serialize, and the partial unique index on
// (trade_id) WHERE status IN ('accepted','completed') backs the
// at-most-one-accepted invariant at the storage layer.
type Service struct {
	db *pgxpool.Pool
}

// NewService creates a new offer service
func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

const offerColumns = `id, trade_id, user_id, status, created_at, updated_at`

func scanOffer(row pgx.Row) (*models.Offer, error) {
	var o models.Offer
	err := row.Scan(&o.ID, &o.TradeID, &o.UserID, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// Create inserts a pending offer from userID on the given trade.
// The trade owner cannot bid on their own trade, and a user may hold at most
// one offer per trade; the unique constraint on (trade_id, user_id) makes the
// second check race-proof.
func (s *Service) Create(ctx context.Context, trade *models.Trade, userID uuid.UUID) (*models.Offer, error) {
	if userID == trade.OwnerID {
		return nil, ErrOwnTradeOffer
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO offers (trade_id, user_id, status)
		VALUES ($1, $2, $3)
		RETURNING `+offerColumns,
		trade.ID, userID, models.OfferStatusPending,
	)
	offer, err := scanOffer(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateOffer
		}
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}
	return offer, nil
}

// GetByID retrieves an offer by ID
func (s *Service) GetByID(ctx context.Context, offerID uuid.UUID) (*models.Offer, error) {
	offer, err := scanOffer(s.db.QueryRow(ctx, `
		SELECT `+offerColumns+` FROM offers WHERE id = $1
	`, offerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOfferNotFound
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	return offer, nil
}

// GetForTradeFromUser retrieves the single offer a user holds on a trade
func (s *Service) GetForTradeFromUser(ctx context.Context, tradeID, userID uuid.UUID) (*models.Offer, error) {
	offer, err := scanOffer(s.db.QueryRow(ctx, `
		SELECT `+offerColumns+` FROM offers
		WHERE trade_id = $1 AND user_id = $2
	`, tradeID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOfferNotFound
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	return offer, nil
}

// ListForTrade retrieves all offers on a trade
func (s *Service) ListForTrade(ctx context.Context, tradeID uuid.UUID) ([]models.Offer, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+offerColumns+` FROM offers
		WHERE trade_id = $1
		ORDER BY created_at ASC
	`, tradeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	defer rows.Close()

	var offers []models.Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, *offer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate offers: %w", err)
	}
	return offers, nil
}

// Accept flips the target offer to accepted and every pending sibling on the
// same trade to rejected, as one atomic unit. A concurrent accept on the same
// trade blocks on the row locks and then fails the no-accepted-sibling check.
func (s *Service) Accept(ctx context.Context, offerID uuid.UUID) (*models.Offer, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	target, err := lockTradeOffers(ctx, tx, offerID)
	if err != nil {
		return nil, err
	}

	// The accepted-sibling check runs first: accepting a demoted sibling of
	// an already-accepted offer is a conflict, not a bad transition
	var acceptedCount int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM offers
		WHERE trade_id = $1 AND status IN ($2, $3)
	`, target.TradeID, models.OfferStatusAccepted, models.OfferStatusCompleted).Scan(&acceptedCount)
	if err != nil {
		return nil, fmt.Errorf("failed to check accepted siblings: %w", err)
	}
	if acceptedCount > 0 {
		return nil, ErrTradeAlreadyAccepted
	}

	if target.Status != models.OfferStatusPending {
		return nil, ErrNotPending
	}

	accepted, err := scanOffer(tx.QueryRow(ctx, `
		UPDATE offers SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+offerColumns,
		models.OfferStatusAccepted, target.ID,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrTradeAlreadyAccepted
		}
		return nil, fmt.Errorf("failed to accept offer: %w", err)
	}

	demoted, err := tx.Exec(ctx, `
		UPDATE offers SET status = $1, updated_at = NOW()
		WHERE trade_id = $2 AND id <> $3 AND status = $4
	`, models.OfferStatusRejected, target.TradeID, target.ID, models.OfferStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to reject sibling offers: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	logging.LogOfferTransition(
		accepted.TradeID.String(), accepted.ID.String(),
		string(models.OfferStatusPending), string(models.OfferStatusAccepted),
		int(demoted.RowsAffected()),
	)
	return accepted, nil
}

// Cancel flips an accepted offer to cancelled and revives every rejected
// sibling back to pending, reopening the trade for a new round of acceptance.
// Cancelled siblings from earlier rounds stay cancelled.
func (s *Service) Cancel(ctx context.Context, offerID uuid.UUID) (*models.Offer, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	target, err := lockTradeOffers(ctx, tx, offerID)
	if err != nil {
		return nil, err
	}

	if target.Status != models.OfferStatusAccepted {
		return nil, ErrNotAccepted
	}

	cancelled, err := scanOffer(tx.QueryRow(ctx, `
		UPDATE offers SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+offerColumns,
		models.OfferStatusCancelled, target.ID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to cancel offer: %w", err)
	}

	revived, err := tx.Exec(ctx, `
		UPDATE offers SET status = $1, updated_at = NOW()
		WHERE trade_id = $2 AND id <> $3 AND status = $4
	`, models.OfferStatusPending, target.TradeID, target.ID, models.OfferStatusRejected)
	if err != nil {
		return nil, fmt.Errorf("failed to revive sibling offers: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	logging.LogOfferTransition(
		cancelled.TradeID.String(), cancelled.ID.String(),
		string(models.OfferStatusAccepted), string(models.OfferStatusCancelled),
		int(revived.RowsAffected()),
	)
	return cancelled, nil
}

// Rescind deletes a pending offer entirely; pending offers have no history
// value. Offers in any other state are kept for history and evaluation
// linkage and cannot be rescinded.
func (s *Service) Rescind(ctx context.Context, offerID uuid.UUID) (uuid.UUID, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status models.OfferStatus
	err = tx.QueryRow(ctx, `
		SELECT status FROM offers WHERE id = $1 FOR UPDATE
	`, offerID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrOfferNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to get offer: %w", err)
	}

	if status != models.OfferStatusPending {
		return uuid.Nil, fmt.Errorf("%w: offer is already %s", ErrNotRescindable, status)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM offers WHERE id = $1`, offerID); err != nil {
		return uuid.Nil, fmt.Errorf("failed to rescind offer: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return offerID, nil
}

// MarkCompleted flips the accepted offer held by recipientID on tradeID to
// completed, inside the caller's transaction. The evaluation engine invokes
// this so the evaluation insert and the completion update commit together.
// Callers must guarantee single invocation; the evaluation uniqueness check
// provides that.
func MarkCompleted(ctx context.Context, tx pgx.Tx, tradeID, recipientID uuid.UUID) error {
	result, err := tx.Exec(ctx, `
		UPDATE offers SET status = $1, updated_at = NOW()
		WHERE trade_id = $2 AND user_id = $3 AND status = $4
	`, models.OfferStatusCompleted, tradeID, recipientID, models.OfferStatusAccepted)
	if err != nil {
		return fmt.Errorf("failed to complete offer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNoAcceptedOffer
	}
	return nil
}

// lockTradeOffers locks every offer row on the target's trade and returns the
// target. Locking the whole sibling set serializes competing accept/cancel
// transactions on the same trade.
func lockTradeOffers(ctx context.Context, tx pgx.Tx, offerID uuid.UUID) (*models.Offer, error) {
	var tradeID uuid.UUID
	err := tx.QueryRow(ctx, `
		SELECT trade_id FROM offers WHERE id = $1
	`, offerID).Scan(&tradeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOfferNotFound
		}
		return nil, fmt.Errorf("failed to resolve offer: %w", err)
	}

	rows, err := tx.Query(ctx, `
		SELECT `+offerColumns+` FROM offers
		WHERE trade_id = $1
		ORDER BY id
		FOR UPDATE
	`, tradeID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock trade offers: %w", err)
	}
	defer rows.Close()

	var target *models.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		if o.ID == offerID {
			target = o
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate offers: %w", err)
	}
	if target == nil {
		return nil, ErrOfferNotFound
	}
	return target, nil
}
