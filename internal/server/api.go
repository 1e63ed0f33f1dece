package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/scentswap/tradepost/internal/auth"
	"github.com/scentswap/tradepost/internal/config"
	apierrors "github.com/scentswap/tradepost/internal/errors"
	"github.com/scentswap/tradepost/internal/evaluation"
	"github.com/scentswap/tradepost/internal/logging"
	"github.com/scentswap/tradepost/internal/middleware"
	"github.com/scentswap/tradepost/internal/monitoring"
	"github.com/scentswap/tradepost/internal/offer"
	"github.com/scentswap/tradepost/internal/products"
	"github.com/scentswap/tradepost/internal/stats"
	"github.com/scentswap/tradepost/internal/trade"
	"github.com/scentswap/tradepost/internal/users"
)

// APIServer represents the main API server
type APIServer struct {
	config           *config.Config
	router           *gin.Engine
	db               *pgxpool.Pool
	jwtAuthenticator *middleware.JWTAuthenticator

	authService       *auth.Service
	userService       *users.Service
	productService    *products.Service
	tradeService      *trade.Service
	offerService      *offer.Service
	evaluationService *evaluation.Service
	statsService      *stats.Service
}

// NewAPIServer creates a new API server instance. statsCache may be nil when
// Redis is not configured.
func NewAPIServer(cfg *config.Config, db *pgxpool.Pool, statsCache *stats.Cache) *APIServer {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware in order
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	router.Use(monitoring.MetricsMiddleware())
	router.Use(logging.RequestLogger())

	statsService := stats.NewService(db, statsCache)

	var invalidator evaluation.StatsInvalidator
	if statsCache != nil {
		invalidator = statsCache
	}

	srv := &APIServer{
		config:            cfg,
		router:            router,
		db:                db,
		jwtAuthenticator:  middleware.NewJWTAuthenticator(cfg.JWT.Secret),
		authService:       auth.NewService(db, &cfg.JWT),
		userService:       users.NewService(db),
		productService:    products.NewService(db),
		tradeService:      trade.NewService(db),
		offerService:      offer.NewService(db),
		evaluationService: evaluation.NewService(db, invalidator),
		statsService:      statsService,
	}

	srv.setupRoutes()
	return srv
}

// Router returns the gin router
func (s *APIServer) Router() http.Handler {
	return s.router
}

// setupRoutes configures all API routes
func (s *APIServer) setupRoutes() {
	s.router.GET("/health", s.healthCheck)

	v1 := s.router.Group("/api/v1")
	{
		// Auth routes (public)
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", s.handleRegister)
			authGroup.POST("/login", s.handleLogin)
			authGroup.POST("/logout", s.handleLogout)
			authGroup.POST("/refresh", s.handleRefresh)
		}

		// Product catalog (public)
		productsGroup := v1.Group("/products")
		{
			productsGroup.GET("", s.handleSearchProducts)
			productsGroup.GET("/:id", s.handleGetProduct)
			productsGroup.GET("/:id/trades", s.handleListProductTrades)
		}

		// User profiles and reputation (public)
		usersGroup := v1.Group("/users")
		{
			usersGroup.GET("/:username", s.handleGetUser)
			usersGroup.GET("/:username/trades", s.handleListUserTrades)
			usersGroup.GET("/:username/evaluations", s.handleListUserEvaluations)
			usersGroup.GET("/:username/stats", s.handleGetUserStats)
		}

		// Trade listings (protected)
		trades := v1.Group("/trades")
		trades.Use(s.jwtAuthenticator.JWTAuth())
		{
			trades.POST("", s.handleCreateTrade)
			trades.GET("/:id", s.handleGetTrade)
			trades.PUT("/:id", s.handleUpdateTrade)
			trades.DELETE("/:id", s.handleDeleteTrade)

			trades.POST("/:id/offers", s.handleCreateOffer)
			trades.GET("/:id/offers", s.handleListTradeOffers)
			trades.GET("/:id/offers/mine", s.handleGetOwnOffer)

			trades.POST("/:id/evaluations", s.handleCreateEvaluation)
			trades.GET("/:id/evaluations", s.handleGetTradeEvaluation)
		}

		// Offer state machine (protected)
		offers := v1.Group("/offers")
		offers.Use(s.jwtAuthenticator.JWTAuth())
		{
			offers.GET("/:id", s.handleGetOffer)
			offers.POST("/:id/accept", s.handleAcceptOffer)
			offers.POST("/:id/cancel", s.handleCancelOffer)
			offers.DELETE("/:id", s.handleRescindOffer)
		}
	}
}

// Health check handler
func (s *APIServer) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "api",
	})
}

// handleRegister handles user registration
func (s *APIServer) handleRegister(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	resp, err := s.authService.Register(c.Request.Context(), &req)
	if err != nil {
		switch err {
		case auth.ErrUsernameTaken:
			respondError(c, apierrors.NewConflictError("Username already taken"))
		case auth.ErrEmailAlreadyExists:
			respondError(c, apierrors.NewConflictError("Email already registered"))
		default:
			respondInternalError(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// handleLogin handles user login
func (s *APIServer) handleLogin(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	resp, err := s.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if err == auth.ErrInvalidCredentials {
			respondError(c, apierrors.ErrInvalidCredentialsError)
		} else {
			respondInternalError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// handleLogout handles user logout. Tokens are stateless, so logout is
// client-side token removal.
func (s *APIServer) handleLogout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// handleRefresh handles token refresh
func (s *APIServer) handleRefresh(c *gin.Context) {
	var req auth.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	tokens, err := s.authService.RefreshTokens(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch err {
		case auth.ErrInvalidToken:
			respondError(c, apierrors.ErrInvalidCredentialsError)
		case auth.ErrTokenExpired:
			respondError(c, apierrors.ErrTokenExpiredError)
		case auth.ErrUserNotFound:
			respondError(c, apierrors.ErrUserNotFoundError)
		default:
			respondInternalError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// respondError sends a standardized error response
func respondError(c *gin.Context, err *apierrors.APIError) {
	c.JSON(err.HTTPStatus, apierrors.NewErrorResponse(err, middleware.GetRequestIDFromContext(c)))
}

// respondInternalError logs the underlying error and sends an opaque 500
func respondInternalError(c *gin.Context, err error) {
	logging.LogError(err, middleware.GetRequestIDFromContext(c), "server", c.Request.Method+" "+c.FullPath())
	respondError(c, apierrors.ErrInternalServerError)
}
