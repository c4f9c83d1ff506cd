package dto

import (
	"time"

	"retail-bank-ledger/internal/core/domain"

	"github.com/shopspring/decimal"
)

// OpenUserRequest is the request body for registering an account holder.
type OpenUserRequest struct {
	CitizenID string `json:"citizen_id" binding:"required,citizen_id"`
	Name      string `json:"name" binding:"required,min=1,max=100"`
}

// OpenAccountRequest is the request body for opening an account.
type OpenAccountRequest struct {
	AccountNo      string          `json:"account_no" binding:"required,account_no"`
	Kind           string          `json:"kind" binding:"required,account_kind"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	TermMonths     int             `json:"term_months" binding:"omitempty,min=1,max=120"`
}

// IssueCardRequest is the request body for issuing a card.
type IssueCardRequest struct {
	CardNo string `json:"card_no" binding:"required,safe_id,max=32"`
	PIN    string `json:"pin" binding:"required,pin"`
	Type   string `json:"type" binding:"required"`
}

// RegisterChannelRequest is the request body for registering a terminal.
type RegisterChannelRequest struct {
	ID                string          `json:"id" binding:"required,safe_id,max=32"`
	Kind              string          `json:"kind" binding:"required,channel_kind"`
	Cash              decimal.Decimal `json:"cash"`
	MerchantAccountNo string          `json:"merchant_account_no" binding:"omitempty,account_no"`
}

// CardSessionRequest authenticates a card at an ATM or EDC.
type CardSessionRequest struct {
	CardNo string `json:"card_no" binding:"required,safe_id"`
	PIN    string `json:"pin" binding:"required,pin"`
}

// CounterSessionRequest verifies an account owner at a counter.
type CounterSessionRequest struct {
	AccountNo string `json:"account_no" binding:"required,account_no"`
	CitizenID string `json:"citizen_id" binding:"required,citizen_id"`
}

// OperatorLoginRequest exchanges an operator key for an operator token.
type OperatorLoginRequest struct {
	OperatorID string `json:"operator_id" binding:"required,safe_id,max=32"`
	Key        string `json:"key" binding:"required,max=256"`
}

// AmountRequest is the request body for deposits and withdrawals.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// TransferRequest is the request body for transfers.
type TransferRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	TargetAccountNo string          `json:"target_account_no" binding:"required,account_no"`
}

// PayRequest is the request body for EDC payments. AccountNo defaults to
// the account holding the session's card.
type PayRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	AccountNo string          `json:"account_no" binding:"omitempty,account_no"`
}

// UserResponse describes an account holder.
type UserResponse struct {
	CitizenID string   `json:"citizen_id"`
	Name      string   `json:"name"`
	Accounts  []string `json:"accounts"`
}

// CardResponse describes an issued card.
type CardResponse struct {
	CardNo    string          `json:"card_no"`
	AccountNo string          `json:"account_no"`
	Type      domain.CardType `json:"type"`
	TypeLabel string          `json:"type_label"`
	AnnualFee decimal.Decimal `json:"annual_fee"`
}

// ChannelResponse describes a registered terminal.
type ChannelResponse struct {
	ID                string             `json:"id"`
	Kind              domain.ChannelKind `json:"kind"`
	Active            bool               `json:"active"`
	Cash              *decimal.Decimal   `json:"cash,omitempty"`
	MerchantAccountNo string             `json:"merchant_account_no,omitempty"`
}

// SessionResponse is returned after a successful authentication.
type SessionResponse struct {
	Token       string             `json:"token"`
	ExpiresAt   time.Time          `json:"expires_at"`
	ChannelID   string             `json:"channel_id"`
	ChannelKind domain.ChannelKind `json:"channel_kind"`
	AccountNo   string             `json:"account_no,omitempty"`
}

// OperatorSessionResponse is returned after a successful operator login.
type OperatorSessionResponse struct {
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expires_at"`
	OperatorID string    `json:"operator_id"`
}

// TransactionResponse is one ledger entry with its statement rendering.
type TransactionResponse struct {
	*domain.Transaction
	Statement string `json:"statement"`
}

// TransferResponse holds both sides of a transfer.
type TransferResponse struct {
	Out TransactionResponse `json:"out"`
	In  TransactionResponse `json:"in"`
}

// PaymentResponse holds the entries written by an EDC payment.
type PaymentResponse struct {
	Payment        TransactionResponse  `json:"payment"`
	MerchantCredit TransactionResponse  `json:"merchant_credit"`
	Cashback       *TransactionResponse `json:"cashback,omitempty"`
}

// StatementResponse lists the most recent entries of an account.
type StatementResponse struct {
	AccountNo    string                `json:"account_no"`
	Transactions []TransactionResponse `json:"transactions"`
}

// InterestResponse reports an interest run.
type InterestResponse struct {
	AccountNo   string               `json:"account_no"`
	Interest    decimal.Decimal      `json:"interest"`
	Balance     decimal.Decimal      `json:"balance"`
	Transaction *TransactionResponse `json:"transaction,omitempty"`
}

// FeeResultResponse is the outcome for one card in a fee run.
type FeeResultResponse struct {
	AccountNo   string               `json:"account_no"`
	CardNo      string               `json:"card_no"`
	Transaction *TransactionResponse `json:"transaction,omitempty"`
	ErrorCode   string               `json:"error_code,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// FeeCollectionResponse summarises a bank-wide fee run.
type FeeCollectionResponse struct {
	Charged   int                 `json:"charged"`
	Failed    int                 `json:"failed"`
	Collected decimal.Decimal     `json:"collected"`
	Results   []FeeResultResponse `json:"results"`
}

// DailyResetResponse reports how many accounts were reset.
type DailyResetResponse struct {
	Accounts int `json:"accounts"`
}

// NewTransactionResponse wraps a ledger entry; nil stays nil.
func NewTransactionResponse(t *domain.Transaction) *TransactionResponse {
	if t == nil {
		return nil
	}
	return &TransactionResponse{Transaction: t, Statement: t.String()}
}

// NewTransactionList wraps a slice of entries.
func NewTransactionList(txns []*domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txns))
	for _, t := range txns {
		if t != nil {
			out = append(out, *NewTransactionResponse(t))
		}
	}
	return out
}
