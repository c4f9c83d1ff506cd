package handler

import (
	"retail-bank-ledger/internal/adapter/http/dto"
	"retail-bank-ledger/internal/adapter/http/middleware"
	"retail-bank-ledger/internal/core/ports"
	"retail-bank-ledger/pkg/apperror"
	"retail-bank-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// SessionHandler handles channel authentication endpoints.
type SessionHandler struct {
	sessionSvc ports.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionSvc ports.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// StartCardSession handles POST /api/v1/channels/:channel_id/sessions/card.
func (h *SessionHandler) StartCardSession(c *gin.Context) {
	var req dto.CardSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.sessionSvc.StartCardSession(c.Request.Context(), c.Param("channel_id"), req.CardNo, req.PIN)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toSessionResponse(result))
}

// StartCounterSession handles POST /api/v1/channels/:channel_id/sessions/counter.
func (h *SessionHandler) StartCounterSession(c *gin.Context) {
	var req dto.CounterSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.sessionSvc.StartCounterSession(c.Request.Context(), c.Param("channel_id"), req.AccountNo, req.CitizenID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toSessionResponse(result))
}

// EndSession handles DELETE /api/v1/channels/:channel_id/session. The token
// must belong to the channel in the path.
func (h *SessionHandler) EndSession(c *gin.Context) {
	claims, ok := sessionClaims(c)
	if !ok {
		return
	}

	if err := h.sessionSvc.EndSession(c.Request.Context(), *claims); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"channel_id": claims.ChannelID, "active": false})
}

// sessionClaims returns the caller's claims after checking they were issued
// for the channel named in the path, if any. It writes the error response
// itself and reports false on failure.
func sessionClaims(c *gin.Context) (*ports.SessionClaims, bool) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return nil, false
	}
	if id := c.Param("channel_id"); id != "" && id != claims.ChannelID {
		response.Error(c, apperror.ErrSessionMismatch())
		return nil, false
	}
	return claims, true
}

func toSessionResponse(r *ports.SessionResult) dto.SessionResponse {
	return dto.SessionResponse{
		Token:       r.Token,
		ExpiresAt:   r.ExpiresAt,
		ChannelID:   r.ChannelID,
		ChannelKind: r.ChannelKind,
		AccountNo:   r.AccountNo,
	}
}
