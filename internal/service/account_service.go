package service

import (
	"context"
	"sync"

	"retail-bank-ledger/internal/core/domain"
	"retail-bank-ledger/internal/core/ports"
	"retail-bank-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// AccountServiceImpl implements ports.AccountService on top of the bank registry.
type AccountServiceImpl struct {
	bank  *domain.Bank
	clock domain.Clock
	log   zerolog.Logger

	// serialises onboarding so number uniqueness checks and inserts stay atomic
	mu sync.Mutex
}

// NewAccountService creates a new AccountServiceImpl. A nil clock uses wall time.
func NewAccountService(bank *domain.Bank, clock domain.Clock, log zerolog.Logger) *AccountServiceImpl {
	return &AccountServiceImpl{bank: bank, clock: clock, log: log}
}

// OpenUser registers a new account holder.
func (s *AccountServiceImpl) OpenUser(ctx context.Context, citizenID, name string) (*domain.User, error) {
	u, err := domain.NewUser(citizenID, name)
	if err != nil {
		return nil, err
	}
	if err := s.bank.AddUser(u); err != nil {
		return nil, err
	}

	s.log.Info().Str("citizen_id", citizenID).Msg("user opened")
	return u, nil
}

// OpenAccount opens an account for an existing user. Account numbers are
// unique bank-wide.
func (s *AccountServiceImpl) OpenAccount(ctx context.Context, req ports.OpenAccountRequest) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, ok := s.bank.UserByCitizenID(req.CitizenID)
	if !ok {
		return nil, apperror.ErrNotFound("User")
	}
	if _, exists := s.bank.AccountByNumber(req.AccountNo); exists {
		return nil, apperror.ErrDuplicate("Account " + req.AccountNo)
	}

	var opts []domain.AccountOption
	if s.clock != nil {
		opts = append(opts, domain.WithClock(s.clock))
	}
	account, err := domain.NewAccount(req.Kind, req.AccountNo, owner, req.OpeningBalance, req.TermMonths, opts...)
	if err != nil {
		return nil, err
	}
	if err := owner.AddAccount(account); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("account_no", req.AccountNo).
		Str("kind", string(req.Kind)).
		Str("citizen_id", req.CitizenID).
		Str("opening_balance", req.OpeningBalance.String()).
		Msg("account opened")
	return account, nil
}

// IssueCard creates a card for the account and attaches it.
func (s *AccountServiceImpl) IssueCard(ctx context.Context, req ports.IssueCardRequest) (*domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.bank.AccountByNumber(req.AccountNo)
	if !ok {
		return nil, apperror.ErrNotFound("Account")
	}
	if _, taken := s.bank.SearchAccountByCard(req.CardNo); taken {
		return nil, apperror.ErrDuplicate("Card " + req.CardNo)
	}

	card, err := domain.NewCard(req.CardNo, req.AccountNo, req.PIN, req.Type)
	if err != nil {
		return nil, err
	}
	if err := account.AttachCard(card); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("account_no", req.AccountNo).
		Str("card_no", req.CardNo).
		Str("card_type", string(req.Type)).
		Msg("card issued")
	return card, nil
}

// RegisterChannel creates and registers a terminal.
func (s *AccountServiceImpl) RegisterChannel(ctx context.Context, req ports.RegisterChannelRequest) (domain.Channel, error) {
	var (
		ch  domain.Channel
		err error
	)
	switch req.Kind {
	case domain.ChannelKindATM:
		ch, err = domain.NewATM(req.ID, req.Cash)
	case domain.ChannelKindEDC:
		merchant, ok := s.bank.AccountByNumber(req.MerchantAccountNo)
		if !ok {
			return nil, apperror.ErrNotFound("Merchant account")
		}
		ch, err = domain.NewEDC(req.ID, merchant)
	case domain.ChannelKindCounter:
		ch, err = domain.NewCounter(req.ID)
	default:
		return nil, apperror.Validation("unsupported channel kind: " + string(req.Kind))
	}
	if err != nil {
		return nil, err
	}
	if err := s.bank.AddChannel(ch); err != nil {
		return nil, err
	}

	s.log.Info().Str("channel_id", req.ID).Str("kind", string(req.Kind)).Msg("channel registered")
	return ch, nil
}
