package domain

import (
	"crypto/subtle"
	"strings"
	"sync"

	"retail-bank-ledger/pkg/apperror"

	"github.com/shopspring/decimal"
)

// CardType is the closed set of card variants.
type CardType string

const (
	CardTypeBasic    CardType = "BASIC"
	CardTypeDebit    CardType = "DEBIT"
	CardTypePremium  CardType = "PREMIUM"
	CardTypeShopping CardType = "SHOPPING"
)

// cardProfile holds the parameters a card type fixes.
// A zero dailyCap means the bank default applies.
type cardProfile struct {
	label        string
	annualFee    decimal.Decimal
	dailyCap     decimal.Decimal
	cashbackRate decimal.Decimal
	cashbackMin  decimal.Decimal
	debitFamily  bool
}

var cardProfiles = map[CardType]cardProfile{
	CardTypeBasic: {
		label:     "ATM Card",
		annualFee: decimal.NewFromInt(100),
	},
	CardTypeDebit: {
		label:       "Debit Card",
		annualFee:   decimal.NewFromInt(300),
		debitFamily: true,
	},
	CardTypePremium: {
		label:        "Premium Card",
		annualFee:    decimal.NewFromInt(500),
		dailyCap:     decimal.NewFromInt(100000),
		cashbackRate: decimal.RequireFromString("0.02"),
		debitFamily:  true,
	},
	CardTypeShopping: {
		label:        "Shopping Card",
		annualFee:    decimal.NewFromInt(300),
		dailyCap:     decimal.NewFromInt(40000),
		cashbackRate: decimal.RequireFromString("0.01"),
		cashbackMin:  decimal.NewFromInt(1000),
		debitFamily:  true,
	},
}

// ParseCardType accepts a card type name in any case.
func ParseCardType(s string) (CardType, error) {
	t := CardType(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := cardProfiles[t]; !ok {
		return "", apperror.Validation("unknown card type: " + s)
	}
	return t, nil
}

// Card is issued for exactly one account and attached to it once.
// The PIN is compared as an opaque secret.
type Card struct {
	number    string
	accountNo string
	pin       string
	cardType  CardType
	profile   cardProfile

	mu       sync.Mutex
	attached bool
	cashback decimal.Decimal
}

// NewCard issues a card of the given type for accountNo.
func NewCard(number, accountNo, pin string, cardType CardType) (*Card, error) {
	profile, ok := cardProfiles[cardType]
	if !ok {
		return nil, apperror.Validation("unknown card type: " + string(cardType))
	}
	if number == "" || accountNo == "" {
		return nil, apperror.Validation("card number and account number are required")
	}
	if pin == "" {
		return nil, apperror.Validation("pin is required")
	}
	return &Card{
		number:    number,
		accountNo: accountNo,
		pin:       pin,
		cardType:  cardType,
		profile:   profile,
		cashback:  decimal.Zero,
	}, nil
}

func (c *Card) Number() string    { return c.number }
func (c *Card) AccountNo() string { return c.accountNo }
func (c *Card) Type() CardType    { return c.cardType }

// TypeLabel returns the display name, e.g. "Premium Card".
func (c *Card) TypeLabel() string { return c.profile.label }

// AnnualFee returns the yearly fee charged by ChargeAnnualFee.
func (c *Card) AnnualFee() decimal.Decimal { return c.profile.annualFee }

// IsDebitFamily reports whether the card is accepted at EDC terminals.
func (c *Card) IsDebitFamily() bool { return c.profile.debitFamily }

// DailyCap returns the card's own daily cap, if the type defines one.
func (c *Card) DailyCap() (decimal.Decimal, bool) {
	if c.profile.dailyCap.IsZero() {
		return decimal.Zero, false
	}
	return c.profile.dailyCap, true
}

// ValidatePIN reports whether input matches the card PIN.
func (c *Card) ValidatePIN(input string) bool {
	return subtle.ConstantTimeCompare([]byte(c.pin), []byte(input)) == 1
}

// Cashback returns the rebate earned by an EDC payment of amount.
func (c *Card) Cashback(amount decimal.Decimal) decimal.Decimal {
	p := c.profile
	if p.cashbackRate.IsZero() || amount.LessThan(p.cashbackMin) {
		return decimal.Zero
	}
	return amount.Mul(p.cashbackRate)
}

// CashbackTotal returns the cashback accumulated so far.
func (c *Card) CashbackTotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cashback
}

func (c *Card) addCashback(amount decimal.Decimal) {
	c.mu.Lock()
	c.cashback = c.cashback.Add(amount)
	c.mu.Unlock()
}

func (c *Card) markAttached() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attached {
		return apperror.ErrCardAlreadyAttached()
	}
	c.attached = true
	return nil
}

// ChargeAnnualFee debits the card's annual fee from account.
func (c *Card) ChargeAnnualFee(account *Account) (*Transaction, error) {
	if account == nil || account.Number() != c.accountNo {
		return nil, apperror.Validation("card does not belong to this account")
	}
	return account.ChargeFee(c.AnnualFee())
}
