package handler

import (
	"errors"

	"retail-bank-ledger/internal/adapter/http/dto"
	"retail-bank-ledger/internal/core/ports"
	"retail-bank-ledger/pkg/apperror"
	"retail-bank-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// MaintenanceHandler handles bank-side jobs.
type MaintenanceHandler struct {
	maintenanceSvc ports.MaintenanceService
}

// NewMaintenanceHandler creates a new MaintenanceHandler.
func NewMaintenanceHandler(maintenanceSvc ports.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenanceSvc: maintenanceSvc}
}

// ApplyInterest handles POST /api/v1/accounts/:account_no/interest.
func (h *MaintenanceHandler) ApplyInterest(c *gin.Context) {
	res, err := h.maintenanceSvc.ApplyInterest(c.Request.Context(), c.Param("account_no"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.InterestResponse{
		AccountNo:   res.AccountNo,
		Interest:    res.Interest,
		Balance:     res.Balance,
		Transaction: dto.NewTransactionResponse(res.Transaction),
	})
}

// CollectAnnualFees handles POST /api/v1/maintenance/annual-fees.
func (h *MaintenanceHandler) CollectAnnualFees(c *gin.Context) {
	res, err := h.maintenanceSvc.CollectAnnualFees(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	results := make([]dto.FeeResultResponse, 0, len(res.Results))
	for _, r := range res.Results {
		item := dto.FeeResultResponse{
			AccountNo:   r.AccountNo,
			CardNo:      r.CardNo,
			Transaction: dto.NewTransactionResponse(r.Transaction),
		}
		if r.Err != nil {
			item.Error = r.Err.Error()
			var appErr *apperror.AppError
			if errors.As(r.Err, &appErr) {
				item.ErrorCode = appErr.Code
				item.Error = appErr.Message
			}
		}
		results = append(results, item)
	}

	response.OK(c, dto.FeeCollectionResponse{
		Charged:   res.Charged,
		Failed:    res.Failed,
		Collected: res.Collected,
		Results:   results,
	})
}

// ResetDailyLimits handles POST /api/v1/maintenance/daily-reset.
func (h *MaintenanceHandler) ResetDailyLimits(c *gin.Context) {
	n := h.maintenanceSvc.ResetDailyLimits(c.Request.Context())
	response.OK(c, dto.DailyResetResponse{Accounts: n})
}
