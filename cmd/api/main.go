package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace-ledger/config"
	httpHandler "marketplace-ledger/internal/adapter/http/handler"
	pgStorage "marketplace-ledger/internal/adapter/storage/postgres"
	redisStorage "marketplace-ledger/internal/adapter/storage/redis"
	"marketplace-ledger/internal/core/domain"
	"marketplace-ledger/internal/core/ports"
	"marketplace-ledger/internal/service"
	"marketplace-ledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Marketplace Ledger")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	accountRepo := pgStorage.NewAccountRepo(pool)
	balanceRepo := pgStorage.NewBalanceRepo(pool)
	journalRepo := pgStorage.NewJournalRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	paramsStore := redisStorage.NewParamsStore(rdb, cfg.Market.ExistentialDeposit)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	authSvc := service.NewAuthService(accountRepo, balanceRepo, hashSvc, tokenSvc)
	ledgerSvc := service.NewLedgerService(balanceRepo, transactor, log)

	// Bootstrap the admin and treasury accounts
	admin, err := ensureAccount(ctx, accountRepo, authSvc, cfg.Market.AdminUsername, cfg.Market.AdminPassword, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to bootstrap admin account")
	}
	treasury, err := ensureAccount(ctx, accountRepo, authSvc, cfg.Market.TreasuryUsername, uuid.NewString(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to bootstrap treasury account")
	}

	treasurySvc := service.NewTreasury(ledgerSvc, treasury.ID)

	// The market aggregate lives in memory for the process lifetime,
	// owned exclusively by the market service.
	market := domain.NewMarket(admin.ID, domain.MarketConfig{PublicKey: cfg.Market.PublicKey})
	marketSvc := service.NewMarketService(market, treasurySvc, paramsStore, journalRepo, log)

	log.Info().
		Str("admin", admin.ID.String()).
		Str("treasury", treasury.ID.String()).
		Msg("Market initialised")

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		MarketSvc:      marketSvc,
		LedgerSvc:      ledgerSvc,
		Treasury:       treasurySvc,
		TokenSvc:       tokenSvc,
		NetworkParams:  paramsStore,
		JournalRepo:    journalRepo,
		ParamsStore:    paramsStore,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// ensureAccount looks up a bootstrap account by username, registering it
// with the given password on first start.
func ensureAccount(
	ctx context.Context,
	accountRepo ports.AccountRepository,
	authSvc ports.AuthService,
	username, password string,
	log zerolog.Logger,
) (*domain.Account, error) {
	account, err := accountRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", username, err)
	}
	if account != nil {
		return account, nil
	}

	account, err = authSvc.Register(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", username, err)
	}
	log.Info().Str("username", username).Str("id", account.ID.String()).Msg("bootstrap account created")
	return account, nil
}
