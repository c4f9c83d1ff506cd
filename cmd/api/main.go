package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"retail-bank-ledger/config"
	httpHandler "retail-bank-ledger/internal/adapter/http/handler"
	pgStorage "retail-bank-ledger/internal/adapter/storage/postgres"
	redisStorage "retail-bank-ledger/internal/adapter/storage/redis"
	"retail-bank-ledger/internal/core/domain"
	"retail-bank-ledger/internal/core/ports"
	"retail-bank-ledger/internal/service"
	"retail-bank-ledger/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const bankName = "Retail Bank"

func main() {
	// A local .env is optional.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load(os.Getenv("LEDGER_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("jwt.secret is required (LEDGER_JWT_SECRET)")
	}

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Bool("database", cfg.Database.Enabled).
		Bool("redis", cfg.Redis.Enabled).
		Msg("Starting retail bank ledger")

	ctx := context.Background()

	var (
		journalRepo    ports.JournalRepository
		auditRepo      ports.AuditRepository
		idempCache     ports.IdempotencyCache
		denylist       ports.SessionDenylist
		rateLimitStore *redisStorage.RateLimitStore
		healthCheckers []ports.HealthChecker
	)

	// PostgreSQL journal and audit trail
	if cfg.Database.Enabled {
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		if err := pgStorage.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare schema")
		}
		pgJournal := pgStorage.NewJournalRepo(pool)
		log.Info().Str("journal_run_id", pgJournal.RunID().String()).Msg("PostgreSQL connected")

		journalRepo = pgJournal
		auditRepo = pgStorage.NewAuditRepository(pool)
		healthCheckers = append(healthCheckers, pgStorage.NewHealthCheck(pool))
	}

	// Redis idempotency cache, session denylist and rate limiter
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		log.Info().Msg("Redis connected")

		idempCache = redisStorage.NewIdempotencyCache(rdb)
		denylist = redisStorage.NewSessionDenylist(rdb)
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	}

	bank := domain.NewBank(bankName)
	journal := service.NewJournalService(journalRepo, cfg.Ledger.JournalBuffer, logger.Component(log, "journal"))

	accountSvc := service.NewAccountService(bank, nil, logger.Component(log, "accounts"))
	if err := registerChannels(ctx, accountSvc, cfg.Channels, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to register channels")
	}

	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.Ledger.SessionTTL, cfg.JWT.Issuer)
	sessionSvc := service.NewSessionService(bank, tokenSvc, denylist, logger.Component(log, "sessions"))
	operatorSvc := service.NewOperatorService(cfg.OperatorKeys(), tokenSvc, logger.Component(log, "operators"))
	if len(cfg.Operators) == 0 {
		log.Warn().Msg("no operators configured; onboarding and maintenance routes will reject every request")
	}
	paymentSvc := service.NewPaymentService(bank, idempCache, journal, cfg.Ledger.IdempotencyTTL, logger.Component(log, "payments"))
	reportingSvc := service.NewReportingService(bank, journalRepo)
	maintenanceSvc := service.NewMaintenanceService(bank, journal, logger.Component(log, "maintenance"))
	auditSvc := service.NewAuditService(auditRepo, logger.Component(log, "audit"))

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AccountSvc:     accountSvc,
		SessionSvc:     sessionSvc,
		OperatorSvc:    operatorSvc,
		PaymentSvc:     paymentSvc,
		ReportingSvc:   reportingSvc,
		MaintenanceSvc: maintenanceSvc,
		TokenSvc:       tokenSvc,
		Denylist:       denylist,
		RateLimitStore: rateLimitStore,
		HealthCheckers: healthCheckers,
		AuditSvc:       auditSvc,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Flush committed entries before the pool closes.
	journal.Close()

	log.Info().Msg("Server exited")
}

// registerChannels creates the terminals listed in configuration.
func registerChannels(ctx context.Context, svc ports.AccountService, cfg config.ChannelsConfig, log zerolog.Logger) error {
	for _, atm := range cfg.ATMs {
		if _, err := svc.RegisterChannel(ctx, ports.RegisterChannelRequest{
			ID:   atm.ID,
			Kind: domain.ChannelKindATM,
			Cash: decimal.NewFromInt(atm.Cash),
		}); err != nil {
			return fmt.Errorf("atm %s: %w", atm.ID, err)
		}
	}
	for _, id := range cfg.Counters {
		if _, err := svc.RegisterChannel(ctx, ports.RegisterChannelRequest{
			ID:   id,
			Kind: domain.ChannelKindCounter,
		}); err != nil {
			return fmt.Errorf("counter %s: %w", id, err)
		}
	}
	log.Info().Int("atms", len(cfg.ATMs)).Int("counters", len(cfg.Counters)).Msg("channels registered")
	return nil
}
