package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"retail-bank-ledger/internal/core/domain"
	"retail-bank-ledger/internal/core/ports"
	"retail-bank-ledger/pkg/apperror"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const defaultIdempotencyTTL = 24 * time.Hour

// PaymentServiceImpl implements ports.PaymentService.
type PaymentServiceImpl struct {
	bank           *domain.Bank
	idempCache     ports.IdempotencyCache
	journal        ports.JournalService
	idempotencyTTL time.Duration
	inflight       singleflight.Group
	log            zerolog.Logger
}

// NewPaymentService creates a new PaymentServiceImpl. idempCache may be nil,
// which disables replay of idempotent requests across processes.
func NewPaymentService(
	bank *domain.Bank,
	idempCache ports.IdempotencyCache,
	journal ports.JournalService,
	idempotencyTTL time.Duration,
	log zerolog.Logger,
) *PaymentServiceImpl {
	if idempotencyTTL <= 0 {
		idempotencyTTL = defaultIdempotencyTTL
	}
	return &PaymentServiceImpl{
		bank:           bank,
		idempCache:     idempCache,
		journal:        journal,
		idempotencyTTL: idempotencyTTL,
		log:            log,
	}
}

// Deposit credits an account through the session's channel.
func (s *PaymentServiceImpl) Deposit(ctx context.Context, req ports.MoneyRequest) (*domain.Transaction, error) {
	ch, account, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	return idempotent(ctx, s, "deposit", req, req.Amount.String(), func() (*domain.Transaction, error) {
		txn, err := account.Deposit(ch, req.Amount)
		if err != nil {
			s.rejected("deposit", req, err)
			return nil, err
		}

		s.journal.Record(ctx, txn)
		s.log.Info().
			Str("tx_id", txn.ID.String()).
			Str("account_no", req.AccountNo).
			Str("channel_id", req.ChannelID).
			Str("amount", req.Amount.String()).
			Msg("deposit processed")
		return txn, nil
	})
}

// Withdraw debits an account through the session's channel.
func (s *PaymentServiceImpl) Withdraw(ctx context.Context, req ports.MoneyRequest) (*domain.Transaction, error) {
	ch, account, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	return idempotent(ctx, s, "withdraw", req, req.Amount.String(), func() (*domain.Transaction, error) {
		early := account.Kind() == domain.AccountKindFixed && !account.IsMatured() && !account.WithdrawnEarly()
		txn, err := account.Withdraw(ch, req.Amount)
		if err != nil {
			s.rejected("withdraw", req, err)
			return nil, err
		}
		if early {
			s.warnEarlyWithdrawal(account)
		}

		s.journal.Record(ctx, txn)
		s.log.Info().
			Str("tx_id", txn.ID.String()).
			Str("account_no", req.AccountNo).
			Str("channel_id", req.ChannelID).
			Str("amount", req.Amount.String()).
			Msg("withdrawal processed")
		return txn, nil
	})
}

// Transfer moves money between two accounts.
func (s *PaymentServiceImpl) Transfer(ctx context.Context, req ports.TransferRequest) (*domain.TransferResult, error) {
	ch, account, err := s.resolve(req.MoneyRequest)
	if err != nil {
		return nil, err
	}
	target, ok := s.bank.AccountByNumber(req.TargetAccountNo)
	if !ok {
		return nil, apperror.ErrNotFound("Target account")
	}
	fingerprint := req.Amount.String() + ">" + req.TargetAccountNo
	return idempotent(ctx, s, "transfer", req.MoneyRequest, fingerprint, func() (*domain.TransferResult, error) {
		early := account.Kind() == domain.AccountKindFixed && !account.IsMatured() && !account.WithdrawnEarly()
		res, err := account.TransferWithReceipt(ch, req.Amount, target)
		if err != nil {
			s.rejected("transfer", req.MoneyRequest, err)
			return nil, err
		}
		if early {
			s.warnEarlyWithdrawal(account)
		}

		s.journal.Record(ctx, res.Out, res.In)
		s.log.Info().
			Str("tx_id", res.Out.ID.String()).
			Str("account_no", req.AccountNo).
			Str("target_account_no", req.TargetAccountNo).
			Str("channel_id", req.ChannelID).
			Str("amount", req.Amount.String()).
			Msg("transfer processed")
		return res, nil
	})
}

// Pay charges an account at an EDC terminal and credits its merchant.
// Without an account number the account holding the session's card pays.
func (s *PaymentServiceImpl) Pay(ctx context.Context, req ports.PayRequest) (*domain.PaymentResult, error) {
	if req.AccountNo == "" && req.Principal != "" {
		if account, ok := s.bank.SearchAccountByCard(req.Principal); ok {
			req.AccountNo = account.Number()
		}
	}
	ch, account, err := s.resolve(req.MoneyRequest)
	if err != nil {
		return nil, err
	}
	edc, ok := s.bank.EDCByID(req.ChannelID)
	if !ok {
		return nil, apperror.Validation("payments require an EDC terminal")
	}
	return idempotent(ctx, s, "pay", req.MoneyRequest, req.Amount.String(), func() (*domain.PaymentResult, error) {
		res, err := account.Pay(ch, req.Amount, edc.Merchant())
		if err != nil {
			s.rejected("pay", req.MoneyRequest, err)
			return nil, err
		}

		s.journal.Record(ctx, res.Payment, res.MerchantCredit, res.Cashback)
		s.log.Info().
			Str("tx_id", res.Payment.ID.String()).
			Str("account_no", req.AccountNo).
			Str("merchant_account_no", edc.Merchant().Number()).
			Str("channel_id", req.ChannelID).
			Str("amount", req.Amount.String()).
			Str("cashback", res.CashbackAmount().String()).
			Msg("payment processed")
		return res, nil
	})
}

// resolve looks up the channel and account and checks that the caller's
// session may operate on the account. The returned channel is bound to
// req.Principal.
func (s *PaymentServiceImpl) resolve(req ports.MoneyRequest) (domain.Channel, *domain.Account, error) {
	ch, ok := s.bank.ChannelByID(req.ChannelID)
	if !ok {
		return nil, nil, apperror.ErrNotFound("Channel")
	}
	account, ok := s.bank.AccountByNumber(req.AccountNo)
	if !ok {
		return nil, nil, apperror.ErrNotFound("Account")
	}
	bound := domain.AsPrincipal(ch, req.Principal)
	if err := domain.Authorize(bound, account); err != nil {
		s.rejected("authorize", req, err)
		return nil, nil, err
	}
	return bound, account, nil
}

func (s *PaymentServiceImpl) rejected(op string, req ports.MoneyRequest, err error) {
	s.log.Warn().
		Err(err).
		Str("op", op).
		Str("kind", string(apperror.KindOf(err))).
		Str("account_no", req.AccountNo).
		Str("channel_id", req.ChannelID).
		Str("amount", req.Amount.String()).
		Msg("operation rejected")
}

func (s *PaymentServiceImpl) warnEarlyWithdrawal(account *domain.Account) {
	s.log.Warn().
		Str("account_no", account.Number()).
		Time("maturity_date", account.MaturityDate()).
		Msg("early withdrawal from fixed-term account, interest rate halved")
}

// cachedResult is the idempotency cache payload. Fingerprint identifies the
// request the result answered.
type cachedResult struct {
	Fingerprint string          `json:"fingerprint"`
	Result      json.RawMessage `json:"result"`
}

type flight[T any] struct {
	fingerprint string
	result      *T
}

// idempotent runs fn once per idempotency key. Concurrent duplicates share
// the in-flight result; later duplicates replay the cached response. A key
// reused for a request with another fingerprint is rejected.
//
// Keys are scoped to the channel and session principal, and callers must
// authorize the session before calling.
func idempotent[T any](ctx context.Context, s *PaymentServiceImpl, op string, req ports.MoneyRequest, fingerprint string, fn func() (*T, error)) (*T, error) {
	if req.IdempotencyKey == "" {
		return fn()
	}
	key := domain.BuildIdempotencyKey(op, req.ChannelID, req.Principal, req.AccountNo, req.IdempotencyKey)

	v, err, _ := s.inflight.Do(key, func() (interface{}, error) {
		if s.idempCache != nil {
			data, err := s.idempCache.Get(ctx, key)
			if err != nil {
				s.log.Warn().Err(err).Str("key", key).Msg("idempotency cache lookup failed")
			}
			if data != nil {
				var cached cachedResult
				if err := json.Unmarshal(data, &cached); err != nil {
					return nil, apperror.InternalError(fmt.Errorf("unmarshal cached result: %w", err))
				}
				out := new(T)
				if err := json.Unmarshal(cached.Result, out); err != nil {
					return nil, apperror.InternalError(fmt.Errorf("unmarshal cached result: %w", err))
				}
				s.log.Info().Str("key", key).Msg("idempotent replay")
				return &flight[T]{fingerprint: cached.Fingerprint, result: out}, nil
			}
		}

		res, err := fn()
		if err != nil {
			return nil, err
		}
		if s.idempCache != nil {
			s.cacheResult(ctx, key, fingerprint, res)
		}
		return &flight[T]{fingerprint: fingerprint, result: res}, nil
	})
	if err != nil {
		return nil, err
	}

	f := v.(*flight[T])
	if f.fingerprint != fingerprint {
		s.log.Warn().Str("key", key).Str("op", op).Msg("idempotency key reused for a different request")
		return nil, apperror.ErrIdempotencyConflict()
	}
	return f.result, nil
}

func (s *PaymentServiceImpl) cacheResult(ctx context.Context, key, fingerprint string, res interface{}) {
	result, err := json.Marshal(res)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to marshal result for idempotency cache")
		return
	}
	data, err := json.Marshal(cachedResult{Fingerprint: fingerprint, Result: result})
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to marshal result for idempotency cache")
		return
	}
	if err := s.idempCache.Set(ctx, key, data, s.idempotencyTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to cache idempotency result")
	}
}
