package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apierrors "github.com/scentswap/tradepost/internal/errors"
	"github.com/scentswap/tradepost/internal/middleware"
	"github.com/scentswap/tradepost/internal/models"
	"github.com/scentswap/tradepost/internal/monitoring"
	"github.com/scentswap/tradepost/internal/offer"
	"github.com/scentswap/tradepost/internal/trade"
)

// parseUUIDParam parses a UUID path parameter. On failure it responds with a
// validation error and returns false.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, apierrors.NewValidationError("invalid "+name+": must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// loadTrade resolves the :id path parameter to a trade. On failure it
// responds and returns false.
func (s *APIServer) loadTrade(c *gin.Context) (*models.Trade, bool) {
	tradeID, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil, false
	}

	t, err := s.tradeService.GetByID(c.Request.Context(), tradeID)
	if err != nil {
		if errors.Is(err, trade.ErrTradeNotFound) {
			respondError(c, apierrors.ErrTradeNotFoundError)
		} else {
			respondInternalError(c, err)
		}
		return nil, false
	}
	return t, true
}

// loadOffer resolves the :id path parameter to an offer. On failure it
// responds and returns false.
func (s *APIServer) loadOffer(c *gin.Context) (*models.Offer, bool) {
	offerID, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil, false
	}

	o, err := s.offerService.GetByID(c.Request.Context(), offerID)
	if err != nil {
		if errors.Is(err, offer.ErrOfferNotFound) {
			respondError(c, apierrors.ErrOfferNotFoundError)
		} else {
			respondInternalError(c, err)
		}
		return nil, false
	}
	return o, true
}

// handleCreateTrade lists a new trade owned by the authenticated user
func (s *APIServer) handleCreateTrade(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	var req trade.CreateTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	created, err := s.tradeService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, trade.ErrInvalidSize), errors.Is(err, trade.ErrInvalidWhatDo):
			respondError(c, apierrors.NewValidationError(err.Error()))
		default:
			respondInternalError(c, err)
		}
		return
	}

	monitoring.RecordTradeCreated()
	c.JSON(http.StatusCreated, created)
}

// handleGetTrade retrieves a single trade
func (s *APIServer) handleGetTrade(c *gin.Context) {
	t, ok := s.loadTrade(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, t)
}

// handleUpdateTrade applies a partial update to a trade the user owns
func (s *APIServer) handleUpdateTrade(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	t, ok := s.loadTrade(c)
	if !ok {
		return
	}
	if t.OwnerID != userID {
		respondError(c, apierrors.NewForbiddenError("You do not own this trade"))
		return
	}

	var req trade.UpdateTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	updated, err := s.tradeService.Update(c.Request.Context(), t, &req)
	if err != nil {
		switch {
		case errors.Is(err, trade.ErrNoUpdateParams):
			respondError(c, &apierrors.APIError{
				Code:       apierrors.ErrNoOpUpdate,
				Message:    err.Error(),
				HTTPStatus: http.StatusBadRequest,
			})
		case errors.Is(err, trade.ErrInvalidSize), errors.Is(err, trade.ErrInvalidWhatDo):
			respondError(c, apierrors.NewValidationError(err.Error()))
		case errors.Is(err, trade.ErrTradeNotFound):
			respondError(c, apierrors.ErrTradeNotFoundError)
		default:
			respondInternalError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, updated)
}

// handleDeleteTrade removes a trade the user owns, along with its offers and
// evaluations
func (s *APIServer) handleDeleteTrade(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	t, ok := s.loadTrade(c)
	if !ok {
		return
	}
	if t.OwnerID != userID {
		respondError(c, apierrors.NewForbiddenError("You do not own this trade"))
		return
	}

	deletedID, err := s.tradeService.Delete(c.Request.Context(), t.ID)
	if err != nil {
		if errors.Is(err, trade.ErrTradeNotFound) {
			respondError(c, apierrors.ErrTradeNotFoundError)
		} else {
			respondInternalError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deletedID})
}

// handleCreateOffer places a pending offer on a trade
func (s *APIServer) handleCreateOffer(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	t, ok := s.loadTrade(c)
	if !ok {
		return
	}

	created, err := s.offerService.Create(c.Request.Context(), t, userID)
	if err != nil {
		switch {
		case errors.Is(err, offer.ErrOwnTradeOffer):
			respondError(c, apierrors.NewInvalidOperationError(err.Error()))
		case errors.Is(err, offer.ErrDuplicateOffer):
			respondError(c, apierrors.NewConflictError("You already have an offer on this trade"))
		default:
			respondInternalError(c, err)
		}
		return
	}

	monitoring.RecordOfferCreated()
	c.JSON(http.StatusCreated, created)
}

// handleListTradeOffers lists all offers on a trade, owner only
func (s *APIServer) handleListTradeOffers(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	t, ok := s.loadTrade(c)
	if !ok {
		return
	}
	if !offer.CanListOffers(t, userID) {
		respondError(c, apierrors.NewForbiddenError("Only the trade owner can list its offers"))
		return
	}

	offers, err := s.offerService.ListForTrade(c.Request.Context(), t.ID)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	if offers == nil {
		offers = []models.Offer{}
	}

	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

// handleGetOwnOffer retrieves the authenticated user's offer on a trade
func (s *APIServer) handleGetOwnOffer(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	t, ok := s.loadTrade(c)
	if !ok {
		return
	}

	o, err := s.offerService.GetForTradeFromUser(c.Request.Context(), t.ID, userID)
	if err != nil {
		if errors.Is(err, offer.ErrOfferNotFound) {
			respondError(c, apierrors.ErrOfferNotFoundError)
		} else {
			respondInternalError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, o)
}

// handleGetOffer retrieves a single offer, visible to the trade owner and
// the offering user
func (s *APIServer) handleGetOffer(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	o, ok := s.loadOffer(c)
	if !ok {
		return
	}

	t, err := s.tradeService.GetByID(c.Request.Context(), o.TradeID)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	if !offer.CanViewOffer(t, o, userID) {
		respondError(c, apierrors.NewForbiddenError("You cannot view this offer"))
		return
	}

	c.JSON(http.StatusOK, o)
}

// handleAcceptOffer accepts a pending offer; every pending sibling on the
// same trade is rejected in the same transaction
func (s *APIServer) handleAcceptOffer(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	o, ok := s.loadOffer(c)
	if !ok {
		return
	}

	t, err := s.tradeService.GetByID(c.Request.Context(), o.TradeID)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	if !offer.CanAcceptOffers(t, userID) {
		respondError(c, apierrors.NewForbiddenError("Only the trade owner can accept offers"))
		return
	}

	accepted, err := s.offerService.Accept(c.Request.Context(), o.ID)
	if err != nil {
		switch {
		case errors.Is(err, offer.ErrOfferNotFound):
			respondError(c, apierrors.ErrOfferNotFoundError)
		case errors.Is(err, offer.ErrNotPending):
			respondError(c, apierrors.NewInvalidOperationError(err.Error()))
		case errors.Is(err, offer.ErrTradeAlreadyAccepted):
			respondError(c, apierrors.NewConflictError(err.Error()))
		default:
			respondInternalError(c, err)
		}
		return
	}

	monitoring.RecordOfferTransition(string(models.OfferStatusAccepted))
	c.JSON(http.StatusOK, accepted)
}

// handleCancelOffer cancels an accepted offer; rejected siblings revive to
// pending
func (s *APIServer) handleCancelOffer(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	o, ok := s.loadOffer(c)
	if !ok {
		return
	}

	if !offer.CanModifyOffer(o, userID) {
		respondError(c, apierrors.NewForbiddenError("You can only cancel your own offer"))
		return
	}

	cancelled, err := s.offerService.Cancel(c.Request.Context(), o.ID)
	if err != nil {
		switch {
		case errors.Is(err, offer.ErrOfferNotFound):
			respondError(c, apierrors.ErrOfferNotFoundError)
		case errors.Is(err, offer.ErrNotAccepted):
			respondError(c, apierrors.NewInvalidOperationError(err.Error()))
		default:
			respondInternalError(c, err)
		}
		return
	}

	monitoring.RecordOfferTransition(string(models.OfferStatusCancelled))
	c.JSON(http.StatusOK, cancelled)
}

// handleRescindOffer deletes the user's own pending offer
func (s *APIServer) handleRescindOffer(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	o, ok := s.loadOffer(c)
	if !ok {
		return
	}

	if !offer.CanModifyOffer(o, userID) {
		respondError(c, apierrors.NewForbiddenError("You can only rescind your own offer"))
		return
	}

	deletedID, err := s.offerService.Rescind(c.Request.Context(), o.ID)
	if err != nil {
		switch {
		case errors.Is(err, offer.ErrOfferNotFound):
			respondError(c, apierrors.ErrOfferNotFoundError)
		case errors.Is(err, offer.ErrNotRescindable):
			respondError(c, apierrors.NewInvalidOperationError(err.Error()))
		default:
			respondInternalError(c, err)
		}
		return
	}

	monitoring.RecordOfferRescinded()
	c.JSON(http.StatusOK, gin.H{"deleted": deletedID})
}
