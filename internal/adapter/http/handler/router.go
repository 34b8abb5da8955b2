package handler

import (
	"marketplace-ledger/internal/adapter/http/middleware"
	redisStore "marketplace-ledger/internal/adapter/storage/redis"
	"marketplace-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	MarketSvc      ports.MarketService
	LedgerSvc      ports.LedgerService
	Treasury       ports.TreasuryService
	TokenSvc       ports.TokenService
	NetworkParams  ports.NetworkParams
	JournalRepo    ports.JournalRepository    // nil = journal endpoints return empty
	ParamsStore    *redisStore.ParamsStore    // nil = params tuning disabled
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	// --- Market state queries (public, read-only) ---
	marketHandler := NewMarketHandler(deps.MarketSvc, deps.Treasury, deps.Logger)
	market := v1.Group("/market")
	{
		market.GET("", rl("queries"), marketHandler.GetState)
		market.GET("/products", rl("queries"), marketHandler.GetProducts)
		market.GET("/purchases", rl("queries"), marketHandler.GetPurchases)
		market.GET("/purchases/:actor_id", rl("queries"), marketHandler.GetActorPurchases)
	}

	// --- Market mutations (JWT-authenticated) ---
	marketAuth := v1.Group("/market", jwtAuth)
	{
		// Purchases — any caller; the dispatcher escrows attached value.
		marketAuth.POST("/purchases", rl("buy"), marketHandler.Buy)
		marketAuth.GET("/purchases/me", rl("queries"), marketHandler.GetMyPurchases)

		// Catalog mutations — the market core enforces admin-only itself.
		marketAuth.POST("/products", rl("admin"), marketHandler.AddProduct)
		marketAuth.PATCH("/products/:name", rl("admin"), marketHandler.UpdateProduct)
		marketAuth.DELETE("/products/:name", rl("admin"), marketHandler.DeleteProduct)
		marketAuth.PUT("/config", rl("admin"), marketHandler.UpdateConfig)
	}

	// --- Wallet routes (JWT-authenticated) ---
	walletHandler := NewWalletHandler(deps.LedgerSvc, deps.JournalRepo)
	wallets := v1.Group("/wallets", jwtAuth)
	{
		wallets.GET("/balance", rl("queries"), walletHandler.GetBalance)
		wallets.POST("/topup", rl("wallets_topup"), walletHandler.Topup)
		wallets.GET("/journal", rl("queries"), walletHandler.GetJournal)
	}

	// --- Network params (JWT-authenticated, admin-gated inside) ---
	if deps.ParamsStore != nil {
		paramsHandler := NewParamsHandler(deps.MarketSvc, deps.NetworkParams, deps.ParamsStore)
		params := v1.Group("/params", jwtAuth)
		{
			params.GET("/min-transfer-value", rl("queries"), paramsHandler.GetMinTransferValue)
			params.PUT("/min-transfer-value", rl("admin"), paramsHandler.SetMinTransferValue)
		}
	}

	return r
}
