package service

import (
	"context"
	"crypto/subtle"

	"retail-bank-ledger/internal/core/ports"
	"retail-bank-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// OperatorServiceImpl implements ports.OperatorService against the
// configured operator keys.
type OperatorServiceImpl struct {
	keys     map[string]string
	tokenSvc ports.TokenService
	log      zerolog.Logger
}

// NewOperatorService creates a new OperatorServiceImpl. keys maps operator
// id to its shared key; an empty map disables operator login.
func NewOperatorService(keys map[string]string, tokenSvc ports.TokenService, log zerolog.Logger) *OperatorServiceImpl {
	return &OperatorServiceImpl{keys: keys, tokenSvc: tokenSvc, log: log}
}

// Login exchanges an operator key for an operator token.
func (s *OperatorServiceImpl) Login(ctx context.Context, operatorID, key string) (*ports.OperatorSession, error) {
	expected, ok := s.keys[operatorID]
	if !ok || key == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(key)) != 1 {
		s.log.Warn().Str("operator_id", operatorID).Msg("operator authentication failed")
		return nil, apperror.ErrAuthenticationFailed()
	}

	token, expiresAt, err := s.tokenSvc.Generate(ports.SessionClaims{
		Role:      ports.RoleOperator,
		Principal: operatorID,
	})
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	s.log.Info().Str("operator_id", operatorID).Msg("operator signed in")
	return &ports.OperatorSession{
		Token:      token,
		ExpiresAt:  expiresAt,
		OperatorID: operatorID,
	}, nil
}
