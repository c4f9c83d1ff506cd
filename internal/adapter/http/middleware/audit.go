package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"retail-bank-ledger/internal/core/domain"
	"retail-bank-ledger/internal/core/ports"
	"retail-bank-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type auditRoute struct {
	action       domain.AuditAction
	resourceType string
	param        string // path parameter naming the resource, if any
}

var auditRoutes = map[string]auditRoute{
	"POST /api/v1/users":                                 {domain.AuditActionOpenUser, "user", ""},
	"POST /api/v1/users/:citizen_id/accounts":            {domain.AuditActionOpenAccount, "account", "citizen_id"},
	"POST /api/v1/accounts/:account_no/cards":            {domain.AuditActionIssueCard, "card", "account_no"},
	"POST /api/v1/channels":                              {domain.AuditActionRegisterChannel, "channel", ""},
	"POST /api/v1/channels/:channel_id/sessions/card":    {domain.AuditActionStartSession, "session", "channel_id"},
	"POST /api/v1/channels/:channel_id/sessions/counter": {domain.AuditActionStartSession, "session", "channel_id"},
	"DELETE /api/v1/channels/:channel_id/session":        {domain.AuditActionEndSession, "session", "channel_id"},
	"POST /api/v1/accounts/:account_no/deposit":          {domain.AuditActionDeposit, "transaction", "account_no"},
	"POST /api/v1/accounts/:account_no/withdraw":         {domain.AuditActionWithdraw, "transaction", "account_no"},
	"POST /api/v1/accounts/:account_no/transfer":         {domain.AuditActionTransfer, "transaction", "account_no"},
	"POST /api/v1/payments":                              {domain.AuditActionPayment, "transaction", ""},
	"POST /api/v1/accounts/:account_no/interest":         {domain.AuditActionInterest, "transaction", "account_no"},
	"POST /api/v1/maintenance/annual-fees":               {domain.AuditActionAnnualFees, "bank", ""},
	"POST /api/v1/maintenance/daily-reset":               {domain.AuditActionDailyReset, "bank", ""},
	"POST /api/v1/operators/token":                       {domain.AuditActionOperatorLogin, "operator", ""},
}

// AuditLog creates an audit middleware that records successful write
// operations. Routes are matched on their registered pattern.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}

		route, ok := mapRouteToAction(c.Request.Method, c.FullPath())
		if !ok {
			return
		}

		var resourceID string
		if route.param != "" {
			resourceID = c.Param(route.param)
		}

		fields := map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"request_id": c.GetString(response.RequestIDKey),
		}
		if op := c.GetString(CtxOperatorID); op != "" {
			fields["operator_id"] = op
		}
		details, _ := json.Marshal(fields)

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			ChannelID:    c.GetString(CtxChannelID),
			Action:       route.action,
			ResourceType: route.resourceType,
			ResourceID:   resourceID,
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now(),
		})
	}
}

func mapRouteToAction(method, fullPath string) (auditRoute, bool) {
	r, ok := auditRoutes[method+" "+fullPath]
	return r, ok
}
