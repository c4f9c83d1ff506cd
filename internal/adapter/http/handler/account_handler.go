package handler

import (
	"retail-bank-ledger/internal/adapter/http/dto"
	"retail-bank-ledger/internal/core/domain"
	"retail-bank-ledger/internal/core/ports"
	"retail-bank-ledger/pkg/apperror"
	"retail-bank-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// AccountHandler handles onboarding endpoints: users, accounts, cards and channels.
type AccountHandler struct {
	accountSvc ports.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountSvc ports.AccountService) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc}
}

// OpenUser handles POST /api/v1/users.
func (h *AccountHandler) OpenUser(c *gin.Context) {
	var req dto.OpenUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	user, err := h.accountSvc.OpenUser(c.Request.Context(), req.CitizenID, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toUserResponse(user))
}

// OpenAccount handles POST /api/v1/users/:citizen_id/accounts.
func (h *AccountHandler) OpenAccount(c *gin.Context) {
	var req dto.OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	account, err := h.accountSvc.OpenAccount(c.Request.Context(), ports.OpenAccountRequest{
		CitizenID:      c.Param("citizen_id"),
		AccountNo:      req.AccountNo,
		Kind:           domain.AccountKind(dto.Normalize(req.Kind)),
		OpeningBalance: req.OpeningBalance,
		TermMonths:     req.TermMonths,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, account.Summary())
}

// IssueCard handles POST /api/v1/accounts/:account_no/cards.
func (h *AccountHandler) IssueCard(c *gin.Context) {
	var req dto.IssueCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	cardType, err := domain.ParseCardType(req.Type)
	if err != nil {
		response.Error(c, err)
		return
	}

	card, err := h.accountSvc.IssueCard(c.Request.Context(), ports.IssueCardRequest{
		AccountNo: c.Param("account_no"),
		CardNo:    req.CardNo,
		PIN:       req.PIN,
		Type:      cardType,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.CardResponse{
		CardNo:    card.Number(),
		AccountNo: card.AccountNo(),
		Type:      card.Type(),
		TypeLabel: card.TypeLabel(),
		AnnualFee: card.AnnualFee(),
	})
}

// RegisterChannel handles POST /api/v1/channels.
func (h *AccountHandler) RegisterChannel(c *gin.Context) {
	var req dto.RegisterChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	ch, err := h.accountSvc.RegisterChannel(c.Request.Context(), ports.RegisterChannelRequest{
		ID:                req.ID,
		Kind:              domain.ChannelKind(dto.Normalize(req.Kind)),
		Cash:              req.Cash,
		MerchantAccountNo: req.MerchantAccountNo,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toChannelResponse(ch))
}

func toUserResponse(u *domain.User) dto.UserResponse {
	accounts := u.Accounts()
	numbers := make([]string, 0, len(accounts))
	for _, a := range accounts {
		numbers = append(numbers, a.Number())
	}
	return dto.UserResponse{
		CitizenID: u.CitizenID(),
		Name:      u.Name(),
		Accounts:  numbers,
	}
}

func toChannelResponse(ch domain.Channel) dto.ChannelResponse {
	resp := dto.ChannelResponse{
		ID:     ch.ID(),
		Kind:   ch.Kind(),
		Active: ch.IsActive(),
	}
	switch t := ch.(type) {
	case *domain.ATM:
		cash := t.Cash()
		resp.Cash = &cash
	case *domain.EDC:
		resp.MerchantAccountNo = t.Merchant().Number()
	}
	return resp
}
