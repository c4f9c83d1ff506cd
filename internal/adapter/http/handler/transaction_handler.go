package handler

import (
	"retail-bank-ledger/internal/adapter/http/dto"
	"retail-bank-ledger/internal/adapter/http/middleware"
	"retail-bank-ledger/internal/core/ports"
	"retail-bank-ledger/pkg/apperror"
	"retail-bank-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

const maxIdempotencyKeyLen = 128

// TransactionHandler handles money movement through a channel session.
type TransactionHandler struct {
	paymentSvc ports.PaymentService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(paymentSvc ports.PaymentService) *TransactionHandler {
	return &TransactionHandler{paymentSvc: paymentSvc}
}

// Deposit handles POST /api/v1/accounts/:account_no/deposit.
func (h *TransactionHandler) Deposit(c *gin.Context) {
	req, ok := h.moneyRequest(c)
	if !ok {
		return
	}

	txn, err := h.paymentSvc.Deposit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewTransactionResponse(txn))
}

// Withdraw handles POST /api/v1/accounts/:account_no/withdraw.
func (h *TransactionHandler) Withdraw(c *gin.Context) {
	req, ok := h.moneyRequest(c)
	if !ok {
		return
	}

	txn, err := h.paymentSvc.Withdraw(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewTransactionResponse(txn))
}

// Transfer handles POST /api/v1/accounts/:account_no/transfer.
func (h *TransactionHandler) Transfer(c *gin.Context) {
	claims, ok := sessionClaims(c)
	if !ok {
		return
	}
	key, ok := idempotencyKey(c)
	if !ok {
		return
	}

	var body dto.TransferRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&body)

	res, err := h.paymentSvc.Transfer(c.Request.Context(), ports.TransferRequest{
		MoneyRequest: ports.MoneyRequest{
			ChannelID:      claims.ChannelID,
			Principal:      claims.Principal,
			AccountNo:      c.Param("account_no"),
			Amount:         body.Amount,
			IdempotencyKey: key,
		},
		TargetAccountNo: body.TargetAccountNo,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.TransferResponse{
		Out: *dto.NewTransactionResponse(res.Out),
		In:  *dto.NewTransactionResponse(res.In),
	})
}

// Pay handles POST /api/v1/payments. The session must be held by an EDC.
func (h *TransactionHandler) Pay(c *gin.Context) {
	claims, ok := sessionClaims(c)
	if !ok {
		return
	}
	key, ok := idempotencyKey(c)
	if !ok {
		return
	}

	var body dto.PayRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&body)

	res, err := h.paymentSvc.Pay(c.Request.Context(), ports.PayRequest{
		MoneyRequest: ports.MoneyRequest{
			ChannelID:      claims.ChannelID,
			Principal:      claims.Principal,
			AccountNo:      body.AccountNo,
			Amount:         body.Amount,
			IdempotencyKey: key,
		},
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.PaymentResponse{
		Payment:        *dto.NewTransactionResponse(res.Payment),
		MerchantCredit: *dto.NewTransactionResponse(res.MerchantCredit),
		Cashback:       dto.NewTransactionResponse(res.Cashback),
	})
}

func (h *TransactionHandler) moneyRequest(c *gin.Context) (ports.MoneyRequest, bool) {
	claims, ok := sessionClaims(c)
	if !ok {
		return ports.MoneyRequest{}, false
	}
	key, ok := idempotencyKey(c)
	if !ok {
		return ports.MoneyRequest{}, false
	}

	var body dto.AmountRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return ports.MoneyRequest{}, false
	}

	return ports.MoneyRequest{
		ChannelID:      claims.ChannelID,
		Principal:      claims.Principal,
		AccountNo:      c.Param("account_no"),
		Amount:         body.Amount,
		IdempotencyKey: key,
	}, true
}

func idempotencyKey(c *gin.Context) (string, bool) {
	key := c.GetHeader(middleware.HeaderIdempotencyKey)
	if len(key) > maxIdempotencyKeyLen {
		response.Error(c, apperror.Validation("Idempotency-Key is too long"))
		return "", false
	}
	return key, true
}
