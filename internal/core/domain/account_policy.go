package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const daysPerTermMonth = 30

var (
	// DefaultDailyCap applies to ATM/EDC usage when the card sets no cap of its own.
	DefaultDailyCap = decimal.NewFromInt(40000)
	// SavingsTransactionCap bounds a single savings withdrawal on any channel.
	SavingsTransactionCap = decimal.NewFromInt(40000)

	savingsInterestRate = decimal.RequireFromString("0.005")
	fixedInterestRate   = decimal.RequireFromString("0.025")
	monthsPerYear       = decimal.NewFromInt(12)
	two                 = decimal.NewFromInt(2)
)

// transactionCap returns the per-transaction cap of the account type.
// Card types never change it.
func (a *Account) transactionCap() (decimal.Decimal, bool) {
	if a.kind == AccountKindSavings {
		return SavingsTransactionCap, true
	}
	return decimal.Zero, false
}

// dailyCap returns the card's daily cap or the bank default.
func (a *Account) dailyCap() decimal.Decimal {
	if a.card != nil {
		if c, ok := a.card.DailyCap(); ok {
			return c
		}
	}
	return DefaultDailyCap
}

func (a *Account) interestRate() decimal.Decimal {
	switch a.kind {
	case AccountKindSavings:
		return savingsInterestRate
	case AccountKindFixed:
		rate := fixedInterestRate.Mul(decimal.NewFromInt(int64(a.termMonths))).Div(monthsPerYear)
		if a.withdrawnEarly {
			rate = rate.Div(two)
		}
		return rate
	}
	return decimal.Zero
}

// TypeLabel returns the display name of the account type.
func (a *Account) TypeLabel() string {
	switch a.kind {
	case AccountKindSavings:
		return "Saving Account"
	case AccountKindFixed:
		return fmt.Sprintf("Fixed Account (%d months)", a.termMonths)
	case AccountKindCurrent:
		return "Current Account"
	}
	return string(a.kind)
}

// TermMonths returns the fixed-term length, zero for other kinds.
func (a *Account) TermMonths() int { return a.termMonths }

// StartDate returns the fixed-term start, zero for other kinds.
func (a *Account) StartDate() time.Time { return a.startDate }

// MaturityDate returns the fixed-term maturity, zero for other kinds.
func (a *Account) MaturityDate() time.Time { return a.maturityDate }

// IsMatured reports whether a fixed-term account has reached maturity.
// Other kinds are always matured.
func (a *Account) IsMatured() bool {
	if a.kind != AccountKindFixed {
		return true
	}
	return !a.clock().Before(a.maturityDate)
}

// WithdrawnEarly reports whether a fixed-term account was debited before maturity.
func (a *Account) WithdrawnEarly() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.withdrawnEarly
}

// AccountSummary is a consistent point-in-time view of an account.
type AccountSummary struct {
	Number           string          `json:"account_no"`
	Kind             AccountKind     `json:"kind"`
	TypeLabel        string          `json:"type_label"`
	OwnerName        string          `json:"owner_name"`
	Balance          decimal.Decimal `json:"balance"`
	DailyUsed        decimal.Decimal `json:"daily_used"`
	DailyCap         decimal.Decimal `json:"daily_cap"`
	CardNo           string          `json:"card_no,omitempty"`
	CardType         string          `json:"card_type,omitempty"`
	CashbackTotal    decimal.Decimal `json:"cashback_total"`
	TransactionCount int             `json:"transaction_count"`
	MaturityDate     *time.Time      `json:"maturity_date,omitempty"`
}

// Summary snapshots the account under its lock.
func (a *Account) Summary() AccountSummary {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := AccountSummary{
		Number:           a.number,
		Kind:             a.kind,
		TypeLabel:        a.TypeLabel(),
		OwnerName:        a.owner.Name(),
		Balance:          a.balance,
		DailyUsed:        decimal.Zero,
		DailyCap:         a.dailyCap(),
		CashbackTotal:    decimal.Zero,
		TransactionCount: len(a.txns),
	}
	if a.dailyResetDate == a.clock().Format(dayLayout) {
		s.DailyUsed = a.dailyUsed
	}
	if a.card != nil {
		s.CardNo = a.card.Number()
		s.CardType = a.card.TypeLabel()
		s.CashbackTotal = a.card.CashbackTotal()
	}
	if a.kind == AccountKindFixed {
		m := a.maturityDate
		s.MaturityDate = &m
	}
	return s
}
