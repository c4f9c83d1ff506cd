package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCardType(t *testing.T) {
	tests := []struct {
		in      string
		want    CardType
		wantErr bool
	}{
		{"basic", CardTypeBasic, false},
		{"DEBIT", CardTypeDebit, false},
		{" Premium ", CardTypePremium, false},
		{"shopping", CardTypeShopping, false},
		{"platinum", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCardType(tt.in)
			if tt.wantErr {
				assertAppError(t, err, "VAL_003")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewCard_Validation(t *testing.T) {
	_, err := NewCard("", "1000000001", "1234", CardTypeDebit)
	assertAppError(t, err, "VAL_003")

	_, err = NewCard("C-1", "1000000001", "", CardTypeDebit)
	assertAppError(t, err, "VAL_003")

	_, err = NewCard("C-1", "1000000001", "1234", CardType("GOLD"))
	assertAppError(t, err, "VAL_003")
}

func TestCard_Profiles(t *testing.T) {
	tests := []struct {
		cardType    CardType
		label       string
		fee         string
		dailyCap    string
		debitFamily bool
	}{
		{CardTypeBasic, "ATM Card", "100", "", false},
		{CardTypeDebit, "Debit Card", "300", "", true},
		{CardTypePremium, "Premium Card", "500", "100000", true},
		{CardTypeShopping, "Shopping Card", "300", "40000", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.cardType), func(t *testing.T) {
			c, err := NewCard("C-1", "1000000001", "1234", tt.cardType)
			require.NoError(t, err)

			assert.Equal(t, tt.label, c.TypeLabel())
			assertDecimal(t, tt.fee, c.AnnualFee())
			assert.Equal(t, tt.debitFamily, c.IsDebitFamily())

			capAmount, ok := c.DailyCap()
			if tt.dailyCap == "" {
				assert.False(t, ok)
			} else {
				require.True(t, ok)
				assertDecimal(t, tt.dailyCap, capAmount)
			}
		})
	}
}

func TestCard_ValidatePIN(t *testing.T) {
	c, err := NewCard("C-1", "1000000001", "4321", CardTypeBasic)
	require.NoError(t, err)

	assert.True(t, c.ValidatePIN("4321"))
	assert.False(t, c.ValidatePIN("1234"))
	assert.False(t, c.ValidatePIN(""))
}

func TestCard_Cashback(t *testing.T) {
	tests := []struct {
		name     string
		cardType CardType
		amount   string
		want     string
	}{
		{"basic earns nothing", CardTypeBasic, "5000", "0"},
		{"debit earns nothing", CardTypeDebit, "5000", "0"},
		{"premium 2% on small amount", CardTypePremium, "500", "10"},
		{"premium 2% on large amount", CardTypePremium, "3000", "60"},
		{"shopping below minimum", CardTypeShopping, "999.99", "0"},
		{"shopping at minimum", CardTypeShopping, "1000", "10"},
		{"shopping 1%", CardTypeShopping, "3000", "30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCard("C-1", "1000000001", "1234", tt.cardType)
			require.NoError(t, err)
			assertDecimal(t, tt.want, c.Cashback(d(tt.amount)))
		})
	}
}

func TestCard_ChargeAnnualFee(t *testing.T) {
	u := newTestUser(t, "1-1101-12345-12-0", "Harry Potter")
	acct := newTestSavings(t, u, "1000000001", "1000")
	card := attachCard(t, acct, "C-1", CardTypeShopping)

	txn, err := card.ChargeAnnualFee(acct)
	require.NoError(t, err)
	assert.Equal(t, TransactionTypeFee, txn.Type)
	assert.Equal(t, ChannelKindSystem, txn.ChannelKind)
	assert.Equal(t, SystemChannelAnnualFee, txn.ChannelID)
	assertDecimal(t, "700", acct.Balance())
	assertDecimal(t, "700", txn.Balance)
}

func TestCard_ChargeAnnualFee_InsufficientFunds(t *testing.T) {
	u := newTestUser(t, "1-2222-22222-22-2", "Poor User")
	acct := newTestSavings(t, u, "3000000001", "100")
	card := attachCard(t, acct, "C-1", CardTypePremium)

	_, err := card.ChargeAnnualFee(acct)
	assertAppError(t, err, "FND_001")
	assertDecimal(t, "100", acct.Balance())
	assert.Zero(t, acct.TransactionCount())
}

func TestCard_ChargeAnnualFee_WrongAccount(t *testing.T) {
	u := newTestUser(t, "1-1101-12345-12-0", "Harry Potter")
	acct := newTestSavings(t, u, "1000000001", "1000")
	other := newTestSavings(t, u, "1000000002", "1000")
	card := attachCard(t, acct, "C-1", CardTypeDebit)

	_, err := card.ChargeAnnualFee(other)
	assertAppError(t, err, "VAL_003")
	assertDecimal(t, "1000", other.Balance())
}
