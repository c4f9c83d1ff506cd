package handler

import (
	"retail-bank-ledger/internal/adapter/http/middleware"
	redisStore "retail-bank-ledger/internal/adapter/storage/redis"
	"retail-bank-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AccountSvc     ports.AccountService
	SessionSvc     ports.SessionService
	OperatorSvc    ports.OperatorService
	PaymentSvc     ports.PaymentService
	ReportingSvc   ports.ReportingService
	MaintenanceSvc ports.MaintenanceService
	TokenSvc       ports.TokenService
	Denylist       ports.SessionDenylist      // nil = ejected tokens stay valid until expiry
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	rules := middleware.DefaultRateLimitRules()

	// rl returns the group's rate limiter, or a no-op without a store.
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

	v1 := r.Group("/api/v1")
	sessionAuth := middleware.SessionAuth(deps.TokenSvc, deps.Denylist, deps.Logger)
	operatorAuth := middleware.OperatorAuth(deps.TokenSvc, deps.Denylist, deps.Logger)
	anyAuth := middleware.AnyAuth(deps.TokenSvc, deps.Denylist, deps.Logger)

	// --- Operators ---
	if deps.OperatorSvc != nil {
		operatorHandler := NewOperatorHandler(deps.OperatorSvc)
		v1.POST("/operators/token", rl("sessions"), operatorHandler.Login)
	}

	// --- Onboarding (operator token) ---
	accountHandler := NewAccountHandler(deps.AccountSvc)
	v1.POST("/users", operatorAuth, rl("onboarding"), accountHandler.OpenUser)
	v1.POST("/users/:citizen_id/accounts", operatorAuth, rl("onboarding"), accountHandler.OpenAccount)
	v1.POST("/accounts/:account_no/cards", operatorAuth, rl("onboarding"), accountHandler.IssueCard)
	v1.POST("/channels", operatorAuth, rl("onboarding"), accountHandler.RegisterChannel)

	// --- Channel sessions ---
	sessionHandler := NewSessionHandler(deps.SessionSvc)
	channels := v1.Group("/channels/:channel_id")
	{
		channels.POST("/sessions/card", rl("sessions"), sessionHandler.StartCardSession)
		channels.POST("/sessions/counter", rl("sessions"), sessionHandler.StartCounterSession)
		channels.DELETE("/session", sessionAuth, sessionHandler.EndSession)
	}

	// --- Money movement (session token) ---
	txHandler := NewTransactionHandler(deps.PaymentSvc)
	accounts := v1.Group("/accounts/:account_no")
	{
		accounts.POST("/deposit", sessionAuth, rl("money"), txHandler.Deposit)
		accounts.POST("/withdraw", sessionAuth, rl("money"), txHandler.Withdraw)
		accounts.POST("/transfer", sessionAuth, rl("money"), txHandler.Transfer)
	}
	v1.POST("/payments", sessionAuth, rl("money"), txHandler.Pay)

	// --- Statements (operator, or the session covering the account) ---
	statementHandler := NewStatementHandler(deps.ReportingSvc)
	accounts.GET("", anyAuth, rl("reports"), statementHandler.GetAccount)
	accounts.GET("/transactions", anyAuth, rl("reports"), statementHandler.GetTransactions)
	accounts.GET("/journal", anyAuth, rl("reports"), statementHandler.GetJournal)

	// --- Bank maintenance (operator token) ---
	maintenanceHandler := NewMaintenanceHandler(deps.MaintenanceSvc)
	accounts.POST("/interest", operatorAuth, rl("maintenance"), maintenanceHandler.ApplyInterest)
	v1.POST("/maintenance/annual-fees", operatorAuth, rl("maintenance"), maintenanceHandler.CollectAnnualFees)
	v1.POST("/maintenance/daily-reset", operatorAuth, rl("maintenance"), maintenanceHandler.ResetDailyLimits)

	return r
}
