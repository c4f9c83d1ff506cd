package handler

import (
	"retail-bank-ledger/internal/adapter/http/dto"
	"retail-bank-ledger/internal/core/ports"
	"retail-bank-ledger/pkg/apperror"
	"retail-bank-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// OperatorHandler signs in bank staff.
type OperatorHandler struct {
	operatorSvc ports.OperatorService
}

// NewOperatorHandler creates a new OperatorHandler.
func NewOperatorHandler(operatorSvc ports.OperatorService) *OperatorHandler {
	return &OperatorHandler{operatorSvc: operatorSvc}
}

// Login handles POST /api/v1/operators/token. The key is compared as sent.
func (h *OperatorHandler) Login(c *gin.Context) {
	var req dto.OperatorLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	session, err := h.operatorSvc.Login(c.Request.Context(), req.OperatorID, req.Key)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.OperatorSessionResponse{
		Token:      session.Token,
		ExpiresAt:  session.ExpiresAt,
		OperatorID: session.OperatorID,
	})
}
