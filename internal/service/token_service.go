package service

import (
	"fmt"
	"time"

	"retail-bank-ledger/internal/core/domain"
	"retail-bank-ledger/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTTokenService implements ports.TokenService using HS256 JWT.
type JWTTokenService struct {
	secret []byte
	expiry time.Duration
	issuer string
}

// NewJWTTokenService creates a new JWT token service.
func NewJWTTokenService(secret string, expiry time.Duration, issuer string) *JWTTokenService {
	return &JWTTokenService{
		secret: []byte(secret),
		expiry: expiry,
		issuer: issuer,
	}
}

// Generate creates a signed session token. A missing TokenID is filled in
// and a missing Role defaults to a channel session.
func (s *JWTTokenService) Generate(c ports.SessionClaims) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiry)
	if c.TokenID == "" {
		c.TokenID = uuid.NewString()
	}
	if c.Role == "" {
		c.Role = ports.RoleChannel
	}

	claims := jwt.MapClaims{
		"jti": c.TokenID,
		"rol": c.Role,
		"sub": c.Principal,
		"chn": c.ChannelID,
		"knd": string(c.ChannelKind),
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
		"iss": s.issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// Validate parses and validates a session token, returning its claims.
func (s *JWTTokenService) Validate(tokenString string) (*ports.SessionClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	jti, _ := claims["jti"].(string)
	role, _ := claims["rol"].(string)
	channelID, _ := claims["chn"].(string)
	kind, _ := claims["knd"].(string)
	sub, _ := claims["sub"].(string)
	if jti == "" || sub == "" {
		return nil, fmt.Errorf("missing session claims")
	}
	switch role {
	case ports.RoleChannel:
		if channelID == "" {
			return nil, fmt.Errorf("missing channel claim")
		}
	case ports.RoleOperator:
		if channelID != "" {
			return nil, fmt.Errorf("operator token bound to a channel")
		}
	default:
		return nil, fmt.Errorf("unknown token role %q", role)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("missing expiry claim")
	}

	return &ports.SessionClaims{
		TokenID:     jti,
		Role:        role,
		ChannelID:   channelID,
		ChannelKind: domain.ChannelKind(kind),
		Principal:   sub,
		ExpiresAt:   exp.Time,
	}, nil
}
