package handler

import (
	"strconv"

	"retail-bank-ledger/internal/adapter/http/dto"
	"retail-bank-ledger/internal/adapter/http/middleware"
	"retail-bank-ledger/internal/core/domain"
	"retail-bank-ledger/internal/core/ports"
	"retail-bank-ledger/pkg/apperror"
	"retail-bank-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// StatementHandler handles balance and history endpoints.
type StatementHandler struct {
	reportingSvc ports.ReportingService
}

// NewStatementHandler creates a new StatementHandler.
func NewStatementHandler(reportingSvc ports.ReportingService) *StatementHandler {
	return &StatementHandler{reportingSvc: reportingSvc}
}

// GetAccount handles GET /api/v1/accounts/:account_no.
func (h *StatementHandler) GetAccount(c *gin.Context) {
	if !h.allowed(c) {
		return
	}
	summary, err := h.reportingSvc.GetAccountSummary(c.Request.Context(), c.Param("account_no"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, summary)
}

// GetTransactions handles GET /api/v1/accounts/:account_no/transactions?count=N.
// Without count the whole log is returned.
func (h *StatementHandler) GetTransactions(c *gin.Context) {
	count, ok := intQuery(c, "count")
	if !ok || !h.allowed(c) {
		return
	}

	accountNo := c.Param("account_no")
	txns, err := h.reportingSvc.GetTransactions(c.Request.Context(), accountNo, count)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.StatementResponse{
		AccountNo:    accountNo,
		Transactions: dto.NewTransactionList(txns),
	})
}

// GetJournal handles GET /api/v1/accounts/:account_no/journal?limit=N.
func (h *StatementHandler) GetJournal(c *gin.Context) {
	limit, ok := intQuery(c, "limit")
	if !ok || !h.allowed(c) {
		return
	}

	accountNo := c.Param("account_no")
	entries, err := h.reportingSvc.GetJournal(c.Request.Context(), accountNo, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	txns := make([]*domain.Transaction, len(entries))
	for i := range entries {
		txns[i] = &entries[i]
	}
	response.OK(c, dto.StatementResponse{
		AccountNo:    accountNo,
		Transactions: dto.NewTransactionList(txns),
	})
}

// allowed checks that the caller may read the account in the path. It
// writes the error response itself.
func (h *StatementHandler) allowed(c *gin.Context) bool {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return false
	}
	if err := h.reportingSvc.CheckAccess(c.Request.Context(), *claims, c.Param("account_no")); err != nil {
		response.Error(c, err)
		return false
	}
	return true
}

// intQuery parses an optional integer query parameter, zero when absent.
func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		response.Error(c, apperror.Validation(name+" must be an integer"))
		return 0, false
	}
	return n, true
}
