package service

import (
	"context"

	"retail-bank-ledger/internal/core/domain"
	"retail-bank-ledger/internal/core/ports"
	"retail-bank-ledger/pkg/apperror"
)

const (
	defaultJournalLimit = 50
	maxJournalLimit     = 500
)

// reportingService implements ports.ReportingService.
type reportingService struct {
	bank        *domain.Bank
	journalRepo ports.JournalRepository
}

// NewReportingService creates a new reporting service. journalRepo may be
// nil when persistence is disabled.
func NewReportingService(bank *domain.Bank, journalRepo ports.JournalRepository) ports.ReportingService {
	return &reportingService{bank: bank, journalRepo: journalRepo}
}

// CheckAccess allows operators on every account and channel sessions only
// on the account their live session covers.
func (s *reportingService) CheckAccess(ctx context.Context, claims ports.SessionClaims, accountNo string) error {
	if claims.IsOperator() {
		return nil
	}
	ch, ok := s.bank.ChannelByID(claims.ChannelID)
	if !ok {
		return apperror.ErrInvalidToken()
	}
	account, ok := s.bank.AccountByNumber(accountNo)
	if !ok {
		return apperror.ErrNotFound("Account")
	}
	return domain.Authorize(domain.AsPrincipal(ch, claims.Principal), account)
}

// GetAccountSummary returns the current state of an account.
func (s *reportingService) GetAccountSummary(ctx context.Context, accountNo string) (*domain.AccountSummary, error) {
	account, ok := s.bank.AccountByNumber(accountNo)
	if !ok {
		return nil, apperror.ErrNotFound("Account")
	}
	summary := account.Summary()
	return &summary, nil
}

// GetTransactions returns the newest count entries of the in-memory log,
// oldest first. Zero returns the whole log.
func (s *reportingService) GetTransactions(ctx context.Context, accountNo string, count int) ([]*domain.Transaction, error) {
	if count < 0 {
		return nil, apperror.Validation("count cannot be negative")
	}
	account, ok := s.bank.AccountByNumber(accountNo)
	if !ok {
		return nil, apperror.ErrNotFound("Account")
	}
	return account.Transactions(count), nil
}

// GetJournal reads the persisted journal copy of an account's entries.
func (s *reportingService) GetJournal(ctx context.Context, accountNo string, limit int) ([]domain.Transaction, error) {
	if s.journalRepo == nil {
		return nil, apperror.Validation("journal persistence is disabled")
	}
	if _, ok := s.bank.AccountByNumber(accountNo); !ok {
		return nil, apperror.ErrNotFound("Account")
	}
	switch {
	case limit <= 0:
		limit = defaultJournalLimit
	case limit > maxJournalLimit:
		limit = maxJournalLimit
	}

	entries, err := s.journalRepo.ListByAccount(ctx, accountNo, limit)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	return entries, nil
}
