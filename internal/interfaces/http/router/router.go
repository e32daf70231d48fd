package router

import (
	"github.com/gin-gonic/gin"
	"github.com/swapmarket/backend/internal/infrastructure/config"
	"github.com/swapmarket/backend/internal/infrastructure/logger"
	"github.com/swapmarket/backend/internal/interfaces/http/handler"
	"github.com/swapmarket/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers mounted by the router
type Handlers struct {
	Auth         *handler.AuthHandler
	Items        *handler.ItemHandler
	Listings     *handler.ListingHandler
	Transactions *handler.TransactionHandler
	Offers       *handler.OfferHandler
	Health       *handler.HealthHandler
}

// Options configures the router
type Options struct {
	HTTP           config.HTTPConfig
	Telemetry      middleware.TracingConfig
	Security       middleware.SecurityConfig
	TokenValidator middleware.TokenValidator
	Logger         *zap.Logger
}

// New builds the gin engine with the global middleware chain and all routes
func New(opts Options, h Handlers) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(opts.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
			log.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
			_ = engine.SetTrustedProxies(nil)
		}
	} else {
		_ = engine.SetTrustedProxies(nil)
	}

	cors := middleware.DefaultCORSConfig()
	if len(opts.HTTP.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = opts.HTTP.CORSAllowOrigins
	}
	if len(opts.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = opts.HTTP.CORSAllowMethods
	}
	if len(opts.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = opts.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.SecureWithConfig(opts.Security),
		middleware.CORSWithConfig(cors),
		middleware.BodyLimit(opts.HTTP.MaxBodySize),
	)
	if opts.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(opts.HTTP.RateLimitRequests, opts.HTTP.RateLimitWindow, opts.HTTP.RateLimitBurst)
		engine.Use(middleware.RateLimit(limiter))
	}
	engine.Use(middleware.TracingWithConfig(opts.Telemetry), middleware.SpanAttributes())

	api := engine.Group("/api/v1")
	api.GET("/health", h.Health.Health)

	public := api.Group("")
	public.POST("/auth/register", h.Auth.Register)
	public.POST("/auth/login", h.Auth.Login)
	public.GET("/listings", h.Listings.ListActive)
	public.GET("/listings/:id", h.Listings.Get)

	authed := api.Group("", middleware.JWTAuth(opts.TokenValidator, log), middleware.SpanAttributes())

	items := authed.Group("/items")
	items.POST("", h.Items.Create)
	items.GET("", h.Items.ListMine)
	items.PUT("/:id", h.Items.Update)
	items.DELETE("/:id", h.Items.Delete)
	items.POST("/:id/image-upload", h.Items.RequestImageUpload)

	listings := authed.Group("/listings")
	listings.POST("", h.Listings.Create)
	listings.GET("/mine", h.Listings.ListMine)
	listings.PUT("/:id", h.Listings.Update)
	listings.POST("/:id/deactivate", h.Listings.Deactivate)
	listings.GET("/:id/transactions", h.Listings.ListTransactions)
	listings.GET("/:id/offers", h.Listings.ListOffers)

	transactions := authed.Group("/transactions")
	transactions.POST("/buy", h.Transactions.Buy)
	transactions.POST("/rent", h.Transactions.Rent)
	transactions.POST("/:id/respond", h.Transactions.Respond)
	transactions.GET("/mine", h.Transactions.ListMine)

	offers := authed.Group("/offers")
	offers.POST("", h.Offers.Make)
	offers.POST("/:id/respond", h.Offers.Respond)
	offers.GET("/mine", h.Offers.ListMine)

	return engine
}
