package service

import (
	"context"
	"fmt"
	"time"

	"retail-bank-ledger/internal/core/domain"
	"retail-bank-ledger/internal/core/ports"
	"retail-bank-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// SessionServiceImpl implements ports.SessionService.
type SessionServiceImpl struct {
	bank     *domain.Bank
	tokenSvc ports.TokenService
	denylist ports.SessionDenylist
	log      zerolog.Logger
}

// NewSessionService creates a new SessionServiceImpl. denylist may be nil,
// in which case ended tokens stay valid until they expire but fail the
// channel's session check.
func NewSessionService(
	bank *domain.Bank,
	tokenSvc ports.TokenService,
	denylist ports.SessionDenylist,
	log zerolog.Logger,
) *SessionServiceImpl {
	return &SessionServiceImpl{
		bank:     bank,
		tokenSvc: tokenSvc,
		denylist: denylist,
		log:      log,
	}
}

type cardTerminal interface {
	domain.Channel
	Authenticate(card *domain.Card, pin string) (bool, error)
}

// StartCardSession inserts or swipes a card at an ATM or EDC terminal.
func (s *SessionServiceImpl) StartCardSession(ctx context.Context, channelID, cardNo, pin string) (*ports.SessionResult, error) {
	ch, ok := s.bank.ChannelByID(channelID)
	if !ok {
		return nil, apperror.ErrNotFound("Channel")
	}
	terminal, ok := ch.(cardTerminal)
	if !ok {
		return nil, apperror.Validation("channel " + channelID + " does not accept cards")
	}

	// Unknown cards and wrong PINs are indistinguishable to the caller.
	account, ok := s.bank.SearchAccountByCard(cardNo)
	if !ok {
		s.log.Warn().Str("channel_id", channelID).Msg("authentication failed: unknown card")
		return nil, apperror.ErrAuthenticationFailed()
	}

	authenticated, err := terminal.Authenticate(account.Card(), pin)
	if err != nil {
		return nil, err
	}
	if !authenticated {
		s.log.Warn().Str("channel_id", channelID).Str("card_no", cardNo).Msg("authentication failed: wrong pin")
		return nil, apperror.ErrAuthenticationFailed()
	}

	return s.issue(ch, cardNo, account.Number())
}

// StartCounterSession verifies the owner of accountNo at a counter.
func (s *SessionServiceImpl) StartCounterSession(ctx context.Context, channelID, accountNo, citizenID string) (*ports.SessionResult, error) {
	counter, ok := s.bank.CounterByID(channelID)
	if !ok {
		if _, exists := s.bank.ChannelByID(channelID); exists {
			return nil, apperror.Validation("channel " + channelID + " is not a counter")
		}
		return nil, apperror.ErrNotFound("Channel")
	}
	account, ok := s.bank.AccountByNumber(accountNo)
	if !ok {
		return nil, apperror.ErrNotFound("Account")
	}

	verified, err := counter.Authenticate(account, citizenID)
	if err != nil {
		return nil, err
	}
	if !verified {
		s.log.Warn().Str("channel_id", channelID).Str("account_no", accountNo).Msg("identity verification failed")
		return nil, apperror.ErrAuthenticationFailed()
	}

	return s.issue(counter, citizenID, accountNo)
}

// issue signs the session token, rolling the channel back if signing fails.
func (s *SessionServiceImpl) issue(ch domain.Channel, principal, accountNo string) (*ports.SessionResult, error) {
	token, expiresAt, err := s.tokenSvc.Generate(ports.SessionClaims{
		ChannelID:   ch.ID(),
		ChannelKind: ch.Kind(),
		Principal:   principal,
	})
	if err != nil {
		if endErr := domain.EndSession(ch); endErr != nil {
			s.log.Error().Err(endErr).Str("channel_id", ch.ID()).Msg("failed to release channel after token error")
		}
		return nil, apperror.InternalError(fmt.Errorf("generate session token: %w", err))
	}

	s.log.Info().
		Str("channel_id", ch.ID()).
		Str("kind", string(ch.Kind())).
		Str("account_no", accountNo).
		Msg("session started")

	return &ports.SessionResult{
		Token:       token,
		ExpiresAt:   expiresAt,
		ChannelID:   ch.ID(),
		ChannelKind: ch.Kind(),
		AccountNo:   accountNo,
	}, nil
}

// EndSession ejects the card or clears the counter, then revokes the token.
func (s *SessionServiceImpl) EndSession(ctx context.Context, claims ports.SessionClaims) error {
	ch, ok := s.bank.ChannelByID(claims.ChannelID)
	if !ok {
		return apperror.ErrNotFound("Channel")
	}
	if err := domain.EndSession(domain.AsPrincipal(ch, claims.Principal)); err != nil {
		return err
	}

	if s.denylist != nil {
		if ttl := time.Until(claims.ExpiresAt); ttl > 0 {
			if err := s.denylist.Revoke(ctx, claims.TokenID, ttl); err != nil {
				s.log.Warn().Err(err).Str("channel_id", claims.ChannelID).Msg("failed to revoke session token")
			}
		}
	}

	s.log.Info().Str("channel_id", claims.ChannelID).Msg("session ended")
	return nil
}
