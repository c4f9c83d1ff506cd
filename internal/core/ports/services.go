package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"time"

	"retail-bank-ledger/internal/core/domain"

	"github.com/shopspring/decimal"
)

// TokenService issues and verifies channel session tokens.
type TokenService interface {
	Generate(claims SessionClaims) (string, time.Time, error)
	Validate(tokenString string) (*SessionClaims, error)
}

// Token roles.
const (
	RoleChannel  = "channel"
	RoleOperator = "operator"
)

// SessionClaims binds a token to one channel session. Principal is the card
// number for ATM/EDC sessions and the citizen id for counter sessions.
// Operator tokens carry RoleOperator, the operator id as Principal and no
// channel.
type SessionClaims struct {
	TokenID     string
	Role        string
	ChannelID   string
	ChannelKind domain.ChannelKind
	Principal   string
	ExpiresAt   time.Time
}

// IsOperator reports whether the claims belong to a bank operator.
func (c SessionClaims) IsOperator() bool {
	return c.Role == RoleOperator
}

// --- Service Ports (Business Logic) ---

// AccountService opens users and accounts, issues cards and registers channels.
type AccountService interface {
	OpenUser(ctx context.Context, citizenID, name string) (*domain.User, error)
	OpenAccount(ctx context.Context, req OpenAccountRequest) (*domain.Account, error)
	IssueCard(ctx context.Context, req IssueCardRequest) (*domain.Card, error)
	RegisterChannel(ctx context.Context, req RegisterChannelRequest) (domain.Channel, error)
}

// OpenAccountRequest holds validated input for opening an account.
type OpenAccountRequest struct {
	CitizenID      string
	AccountNo      string
	Kind           domain.AccountKind
	OpeningBalance decimal.Decimal
	TermMonths     int
}

// IssueCardRequest holds validated input for issuing and attaching a card.
type IssueCardRequest struct {
	AccountNo string
	CardNo    string
	PIN       string
	Type      domain.CardType
}

// RegisterChannelRequest holds validated input for registering a terminal.
type RegisterChannelRequest struct {
	ID                string
	Kind              domain.ChannelKind
	Cash              decimal.Decimal // ATM only
	MerchantAccountNo string          // EDC only
}

// SessionService authenticates principals at channels.
type SessionService interface {
	StartCardSession(ctx context.Context, channelID, cardNo, pin string) (*SessionResult, error)
	StartCounterSession(ctx context.Context, channelID, accountNo, citizenID string) (*SessionResult, error)
	EndSession(ctx context.Context, claims SessionClaims) error
}

// SessionResult is returned after a successful authentication.
type SessionResult struct {
	Token       string
	ExpiresAt   time.Time
	ChannelID   string
	ChannelKind domain.ChannelKind
	AccountNo   string
}

// OperatorService authenticates bank staff for onboarding, maintenance and
// statement reads.
type OperatorService interface {
	Login(ctx context.Context, operatorID, key string) (*OperatorSession, error)
}

// OperatorSession is returned after a successful operator login.
type OperatorSession struct {
	Token      string
	ExpiresAt  time.Time
	OperatorID string
}

// PaymentService moves money through an authenticated channel session.
type PaymentService interface {
	Deposit(ctx context.Context, req MoneyRequest) (*domain.Transaction, error)
	Withdraw(ctx context.Context, req MoneyRequest) (*domain.Transaction, error)
	Transfer(ctx context.Context, req TransferRequest) (*domain.TransferResult, error)
	Pay(ctx context.Context, req PayRequest) (*domain.PaymentResult, error)
}

// MoneyRequest holds validated input for a deposit or withdrawal.
// Principal, when set, must match the channel's current session.
type MoneyRequest struct {
	ChannelID      string
	Principal      string
	AccountNo      string
	Amount         decimal.Decimal
	IdempotencyKey string
}

// TransferRequest holds validated input for a transfer.
type TransferRequest struct {
	MoneyRequest
	TargetAccountNo string
}

// PayRequest holds validated input for an EDC payment. The merchant is the
// terminal's bound account.
type PayRequest struct {
	MoneyRequest
}

// ReportingService reads account state and history.
type ReportingService interface {
	GetAccountSummary(ctx context.Context, accountNo string) (*domain.AccountSummary, error)
	GetTransactions(ctx context.Context, accountNo string, count int) ([]*domain.Transaction, error)
	GetJournal(ctx context.Context, accountNo string, limit int) ([]domain.Transaction, error)
	// CheckAccess allows operators, and channel sessions whose live
	// session covers accountNo.
	CheckAccess(ctx context.Context, claims SessionClaims, accountNo string) error
}

// MaintenanceService runs bank-side jobs outside channel sessions.
type MaintenanceService interface {
	ApplyInterest(ctx context.Context, accountNo string) (*InterestResult, error)
	CollectAnnualFees(ctx context.Context) (*FeeCollectionResult, error)
	ResetDailyLimits(ctx context.Context) int
}

// InterestResult reports one interest run.
type InterestResult struct {
	AccountNo   string
	Interest    decimal.Decimal
	Balance     decimal.Decimal
	Transaction *domain.Transaction // nil when no interest was due
}

// FeeCollectionResult summarises a bank-wide annual fee run.
type FeeCollectionResult struct {
	Charged   int
	Failed    int
	Collected decimal.Decimal
	Results   []domain.FeeResult
}

// JournalService forwards committed entries to the journal repository.
type JournalService interface {
	Record(ctx context.Context, entries ...*domain.Transaction)
	Close()
}

// AuditService records audit entries.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
