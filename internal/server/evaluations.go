package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/scentswap/tradepost/internal/errors"
	"github.com/scentswap/tradepost/internal/evaluation"
	"github.com/scentswap/tradepost/internal/middleware"
	"github.com/scentswap/tradepost/internal/models"
	"github.com/scentswap/tradepost/internal/monitoring"
	"github.com/scentswap/tradepost/internal/offer"
	"github.com/scentswap/tradepost/internal/products"
	"github.com/scentswap/tradepost/internal/users"
)

// handleCreateEvaluation records the reviewer's evaluation of the trade
// owner and completes the reviewer's accepted offer
func (s *APIServer) handleCreateEvaluation(c *gin.Context) {
	reviewerID := middleware.GetUserIDFromContext(c)

	t, ok := s.loadTrade(c)
	if !ok {
		return
	}

	var req evaluation.CreateEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	eval, err := s.evaluationService.Create(c.Request.Context(), t, t.OwnerID, reviewerID, &req)
	if err != nil {
		switch {
		case errors.Is(err, evaluation.ErrInvalidRating):
			respondError(c, apierrors.NewValidationError(err.Error()))
		case errors.Is(err, evaluation.ErrUnrelatedTrader):
			respondError(c, apierrors.NewInvalidOperationError(err.Error()))
		case errors.Is(err, evaluation.ErrEvaluationExists):
			respondError(c, apierrors.NewConflictError("You have already evaluated this trade"))
		case errors.Is(err, offer.ErrNoAcceptedOffer):
			respondError(c, apierrors.NewInvalidOperationError("You have no accepted offer on this trade"))
		default:
			respondInternalError(c, err)
		}
		return
	}

	monitoring.RecordEvaluationCreated()
	monitoring.RecordOfferTransition(string(models.OfferStatusCompleted))
	c.JSON(http.StatusCreated, eval)
}

// handleGetTradeEvaluation retrieves the evaluation left about the trade's
// owner
func (s *APIServer) handleGetTradeEvaluation(c *gin.Context) {
	t, ok := s.loadTrade(c)
	if !ok {
		return
	}

	eval, err := s.evaluationService.GetForTrade(c.Request.Context(), t.ID, t.OwnerID)
	if err != nil {
		if errors.Is(err, evaluation.ErrEvaluationNotFound) {
			respondError(c, apierrors.ErrEvaluationNotFoundError)
		} else {
			respondInternalError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, eval)
}

// loadUserByUsername resolves the :username path parameter. On failure it
// responds and returns false.
func (s *APIServer) loadUserByUsername(c *gin.Context) (*models.User, bool) {
	user, err := s.userService.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			respondError(c, apierrors.ErrUserNotFoundError)
		} else {
			respondInternalError(c, err)
		}
		return nil, false
	}
	return user, true
}

// handleGetUser retrieves a user's public profile
func (s *APIServer) handleGetUser(c *gin.Context) {
	user, ok := s.loadUserByUsername(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"created_at": user.CreatedAt,
	})
}

// handleListUserTrades lists the trades a user has listed
func (s *APIServer) handleListUserTrades(c *gin.Context) {
	user, ok := s.loadUserByUsername(c)
	if !ok {
		return
	}

	trades, err := s.tradeService.ListByOwner(c.Request.Context(), user.ID)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	if trades == nil {
		trades = []models.Trade{}
	}

	c.JSON(http.StatusOK, gin.H{"trades": trades})
}

// handleListUserEvaluations lists the evaluations left about a user
func (s *APIServer) handleListUserEvaluations(c *gin.Context) {
	user, ok := s.loadUserByUsername(c)
	if !ok {
		return
	}

	evals, err := s.evaluationService.ListForTrader(c.Request.Context(), user.ID)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	if evals == nil {
		evals = []models.Evaluation{}
	}

	c.JSON(http.StatusOK, gin.H{"evaluations": evals})
}

// handleGetUserStats retrieves the aggregate reputation statistics for a user
func (s *APIServer) handleGetUserStats(c *gin.Context) {
	user, ok := s.loadUserByUsername(c)
	if !ok {
		return
	}

	agg, err := s.statsService.GetTraderAggregates(c.Request.Context(), user.ID)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, agg)
}

// handleSearchProducts searches the product catalog
func (s *APIServer) handleSearchProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	prods, err := s.productService.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	if prods == nil {
		prods = []models.Product{}
	}

	c.JSON(http.StatusOK, gin.H{"products": prods})
}

// handleGetProduct retrieves a product by ID
func (s *APIServer) handleGetProduct(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	product, err := s.productService.GetByID(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, products.ErrProductNotFound) {
			respondError(c, apierrors.ErrProductNotFoundError)
		} else {
			respondInternalError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, product)
}

// handleListProductTrades lists the open trades offering a product
func (s *APIServer) handleListProductTrades(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	trades, err := s.tradeService.ListByProduct(c.Request.Context(), productID)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	if trades == nil {
		trades = []models.Trade{}
	}

	c.JSON(http.StatusOK, gin.H{"trades": trades})
}
