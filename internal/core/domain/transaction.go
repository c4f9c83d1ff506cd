package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of ledger entry.
type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "DEPOSIT"
	TransactionTypeWithdraw    TransactionType = "WITHDRAW"
	TransactionTypeTransferOut TransactionType = "TRANSFER_OUT"
	TransactionTypeTransferIn  TransactionType = "TRANSFER_IN"
	TransactionTypeInterest    TransactionType = "INTEREST"
	TransactionTypePayment     TransactionType = "PAYMENT"
	TransactionTypeFee         TransactionType = "FEE"
)

var transactionCodes = map[TransactionType]string{
	TransactionTypeDeposit:     "D",
	TransactionTypeWithdraw:    "W",
	TransactionTypeTransferOut: "TW",
	TransactionTypeTransferIn:  "TD",
	TransactionTypeInterest:    "I",
	TransactionTypePayment:     "P",
	TransactionTypeFee:         "F",
}

// Code returns the short statement code (D, W, TW, TD, I, P, F).
func (t TransactionType) Code() string {
	if c, ok := transactionCodes[t]; ok {
		return c
	}
	return string(t)
}

// IsCredit reports whether the entry increases the balance.
func (t TransactionType) IsCredit() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeTransferIn, TransactionTypeInterest:
		return true
	}
	return false
}

// ChannelKind identifies where a transaction originated.
type ChannelKind string

const (
	ChannelKindATM     ChannelKind = "ATM"
	ChannelKindEDC     ChannelKind = "EDC"
	ChannelKindCounter ChannelKind = "COUNTER"
	ChannelKindSystem  ChannelKind = "SYSTEM"
)

// IsCapped reports whether the channel takes part in daily and channel caps.
func (k ChannelKind) IsCapped() bool {
	return k == ChannelKindATM || k == ChannelKindEDC
}

// System channel ids used for entries without a terminal.
const (
	SystemChannelInterest  = "AUTO"
	SystemChannelAnnualFee = "ANNUAL_FEE"
)

// Transaction is an immutable ledger entry. Balance is the account balance
// right after the entry was applied.
type Transaction struct {
	ID           uuid.UUID       `json:"id"`
	Seq          int             `json:"seq"`
	AccountNo    string          `json:"account_no"`
	Type         TransactionType `json:"type"`
	ChannelKind  ChannelKind     `json:"channel_kind"`
	ChannelID    string          `json:"channel_id"`
	Amount       decimal.Decimal `json:"amount"`
	Balance      decimal.Decimal `json:"balance"`
	Counterparty string          `json:"counterparty,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (t *Transaction) clone() *Transaction {
	c := *t
	return &c
}

// String renders the entry in statement form, e.g. "W-ATM:ATM-001-500.00-19500.00".
func (t *Transaction) String() string {
	s := fmt.Sprintf("%s-%s:%s-%s-%s",
		t.Type.Code(), t.ChannelKind, t.ChannelID,
		t.Amount.StringFixed(2), t.Balance.StringFixed(2))
	if t.Counterparty != "" {
		s += "-" + t.Counterparty
	}
	return s
}
