package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"retail-bank-ledger/internal/core/ports"
	"retail-bank-ledger/pkg/apperror"
	"retail-bank-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	HeaderRequestID      = "X-Request-ID"
	HeaderIdempotencyKey = "Idempotency-Key"

	// Context keys
	CtxClaims     = "session_claims"
	CtxChannelID  = "channel_id"
	CtxOperatorID = "operator_id"
)

// SessionAuth validates the channel session token and rejects tokens
// revoked by an earlier eject. Operator tokens cannot act through a
// channel. denylist may be nil.
func SessionAuth(tokenSvc ports.TokenService, denylist ports.SessionDenylist, log zerolog.Logger) gin.HandlerFunc {
	return authenticate(tokenSvc, denylist, log, func(claims *ports.SessionClaims) error {
		if claims.IsOperator() {
			return apperror.ErrInvalidToken()
		}
		return nil
	})
}

// OperatorAuth admits operator tokens only.
func OperatorAuth(tokenSvc ports.TokenService, denylist ports.SessionDenylist, log zerolog.Logger) gin.HandlerFunc {
	return authenticate(tokenSvc, denylist, log, func(claims *ports.SessionClaims) error {
		if !claims.IsOperator() {
			return apperror.ErrOperatorRequired()
		}
		return nil
	})
}

// AnyAuth admits operator and channel session tokens. Handlers scope what a
// channel session may see.
func AnyAuth(tokenSvc ports.TokenService, denylist ports.SessionDenylist, log zerolog.Logger) gin.HandlerFunc {
	return authenticate(tokenSvc, denylist, log, nil)
}

func authenticate(
	tokenSvc ports.TokenService,
	denylist ports.SessionDenylist,
	log zerolog.Logger,
	admit func(*ports.SessionClaims) error,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		claims, err := tokenSvc.Validate(tokenStr)
		if err != nil {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		if admit != nil {
			if err := admit(claims); err != nil {
				response.Error(c, err)
				c.Abort()
				return
			}
		}

		if denylist != nil {
			revoked, err := denylist.IsRevoked(c.Request.Context(), claims.TokenID)
			if err != nil {
				log.Warn().Err(err).Str("token_id", claims.TokenID).Msg("session denylist unavailable, allowing request")
			} else if revoked {
				response.Error(c, apperror.ErrInvalidToken())
				c.Abort()
				return
			}
		}

		c.Set(CtxClaims, claims)
		if claims.IsOperator() {
			c.Set(CtxOperatorID, claims.Principal)
		} else {
			c.Set(CtxChannelID, claims.ChannelID)
		}
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by the auth middleware.
func ClaimsFrom(c *gin.Context) (*ports.SessionClaims, bool) {
	v, exists := c.Get(CtxClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*ports.SessionClaims)
	return claims, ok
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

// RequestID propagates X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 64 {
			id = uuid.New().String()
		}
		c.Set(response.RequestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("request_id", c.GetString(response.RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("channel_id", c.GetString(CtxChannelID)).
			Str("operator_id", c.GetString(CtxOperatorID)).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				response.Error(c, apperror.InternalError(fmt.Errorf("panic: %v", r)))
				c.Abort()
			}
		}()
		c.Next()
	}
}
