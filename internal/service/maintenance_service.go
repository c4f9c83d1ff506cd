package service

import (
	"context"

	"retail-bank-ledger/internal/core/domain"
	"retail-bank-ledger/internal/core/ports"
	"retail-bank-ledger/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// MaintenanceServiceImpl implements ports.MaintenanceService.
type MaintenanceServiceImpl struct {
	bank    *domain.Bank
	journal ports.JournalService
	log     zerolog.Logger
}

// NewMaintenanceService creates a new MaintenanceServiceImpl.
func NewMaintenanceService(bank *domain.Bank, journal ports.JournalService, log zerolog.Logger) *MaintenanceServiceImpl {
	return &MaintenanceServiceImpl{bank: bank, journal: journal, log: log}
}

// ApplyInterest credits the interest due on one account.
func (s *MaintenanceServiceImpl) ApplyInterest(ctx context.Context, accountNo string) (*ports.InterestResult, error) {
	account, ok := s.bank.AccountByNumber(accountNo)
	if !ok {
		return nil, apperror.ErrNotFound("Account")
	}

	interest, txn := account.CreditInterest()
	res := &ports.InterestResult{
		AccountNo:   accountNo,
		Interest:    interest,
		Balance:     account.Balance(),
		Transaction: txn,
	}
	if txn == nil {
		s.log.Debug().Str("account_no", accountNo).Msg("no interest due")
		return res, nil
	}
	res.Balance = txn.Balance

	s.journal.Record(ctx, txn)
	s.log.Info().
		Str("account_no", accountNo).
		Str("interest", interest.String()).
		Bool("withdrawn_early", account.WithdrawnEarly()).
		Msg("interest credited")
	return res, nil
}

// CollectAnnualFees charges every attached card. Accounts that cannot cover
// their fee are reported and skipped.
func (s *MaintenanceServiceImpl) CollectAnnualFees(ctx context.Context) (*ports.FeeCollectionResult, error) {
	results := s.bank.CollectAnnualFees()
	out := &ports.FeeCollectionResult{Collected: decimal.Zero, Results: results}

	for _, r := range results {
		if r.Err != nil {
			out.Failed++
			s.log.Warn().Err(r.Err).
				Str("account_no", r.AccountNo).
				Str("card_no", r.CardNo).
				Msg("annual fee not collected")
			continue
		}
		out.Charged++
		out.Collected = out.Collected.Add(r.Transaction.Amount)
		s.journal.Record(ctx, r.Transaction)
	}

	s.log.Info().
		Int("charged", out.Charged).
		Int("failed", out.Failed).
		Str("collected", out.Collected.String()).
		Msg("annual fees collected")
	return out, nil
}

// ResetDailyLimits zeroes daily usage on every account.
func (s *MaintenanceServiceImpl) ResetDailyLimits(ctx context.Context) int {
	n := s.bank.ResetDailyLimits()
	s.log.Info().Int("accounts", n).Msg("daily limits reset")
	return n
}
