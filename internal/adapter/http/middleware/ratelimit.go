package middleware

import (
	"fmt"
	"strconv"
	"time"

	redisStore "retail-bank-ledger/internal/adapter/storage/redis"
	"retail-bank-ledger/pkg/apperror"
	"retail-bank-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RateLimitRule defines a rate limit for an endpoint group.
type RateLimitRule struct {
	Limit  int64
	Window time.Duration
}

// DefaultRateLimitRules returns the rate limits per endpoint group.
// Session starts are kept tight to slow PIN guessing.
func DefaultRateLimitRules() map[string]RateLimitRule {
	return map[string]RateLimitRule{
		"onboarding":  {Limit: 30, Window: time.Minute},
		"sessions":    {Limit: 10, Window: time.Minute},
		"money":       {Limit: 60, Window: time.Minute},
		"reports":     {Limit: 120, Window: time.Minute},
		"maintenance": {Limit: 5, Window: time.Minute},
	}
}

// RateLimiter creates a rate-limiting middleware for a given endpoint group.
func RateLimiter(store *redisStore.RateLimitStore, group string, rule RateLimitRule, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identifier := extractIdentifier(c)
		key := fmt.Sprintf("%s:%s", identifier, group)

		result, err := store.Allow(c.Request.Context(), key, rule.Limit, rule.Window)
		if err != nil {
			log.Warn().Err(err).Str("group", group).Msg("rate limit check failed, allowing request (degraded mode)")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt, 10))

		if !result.Allowed {
			retryAfter := result.ResetAt - time.Now().Unix()
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			response.Error(c, apperror.ErrRateLimitExceeded())
			c.Abort()
			return
		}

		c.Next()
	}
}

// extractIdentifier keys authenticated requests by channel or operator and
// the rest by client IP. Session starts carry the channel in the path.
func extractIdentifier(c *gin.Context) string {
	if id := c.GetString(CtxChannelID); id != "" {
		return "channel:" + id
	}
	if id := c.GetString(CtxOperatorID); id != "" {
		return "operator:" + id
	}
	if id := c.Param("channel_id"); id != "" {
		return "channel:" + id
	}
	return "ip:" + c.ClientIP()
}
