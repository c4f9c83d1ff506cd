package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount_Validation(t *testing.T) {
	u := newTestUser(t, "1-1101-12345-12-0", "Harry Potter")

	_, err := NewSavingsAccount("", u, d("0"))
	assertAppError(t, err, "VAL_003")

	_, err = NewSavingsAccount("1000000001", nil, d("0"))
	assertAppError(t, err, "VAL_003")

	_, err = NewCurrentAccount("1000000001", u, d("-1"))
	assertAppError(t, err, "VAL_003")

	_, err = NewFixedAccount("1000000001", u, d("100"), 0)
	assertAppError(t, err, "VAL_003")

	_, err = NewAccount(AccountKind("LOAN"), "1000000001", u, d("0"), 0)
	assertAppError(t, err, "VAL_003")
}

func TestAccount_TypeLabel(t *testing.T) {
	u := newTestUser(t, "1-1101-12345-12-0", "Harry Potter")

	savings, err := NewAccount(AccountKindSavings, "1", u, d("0"), 0)
	require.NoError(t, err)
	fixed, err := NewAccount(AccountKindFixed, "2", u, d("0"), 12)
	require.NoError(t, err)
	current, err := NewAccount(AccountKindCurrent, "3", u, d("0"), 0)
	require.NoError(t, err)

	assert.Equal(t, "Saving Account", savings.TypeLabel())
	assert.Equal(t, "Fixed Account (12 months)", fixed.TypeLabel())
	assert.Equal(t, "Current Account", current.TypeLabel())
}

func TestAccount_AttachCard(t *testing.T) {
	u := newTestUser(t, "1-1101-12345-12-0", "Harry Potter")
	acct := newTestSavings(t, u, "1000000001", "0")
	other := newTestSavings(t, u, "1000000002", "0")

	first, err := NewCard("C-1", "1000000001", "1234", CardTypeDebit)
	require.NoError(t, err)
	second, err := NewCard("C-2", "1000000001", "1234", CardTypePremium)
	require.NoError(t, err)
	foreign, err := NewCard("C-3", "1000000002", "1234", CardTypeDebit)
	require.NoError(t, err)

	assertAppError(t, acct.AttachCard(nil), "VAL_003")
	assertAppError(t, acct.AttachCard(foreign), "VAL_003")

	require.NoError(t, acct.AttachCard(first))
	assert.Same(t, first, acct.Card())

	assertAppError(t, acct.AttachCard(second), "STA_001")
	assert.Same(t, first, acct.Card(), "the first card stays attached")

	require.NoError(t, other.AttachCard(foreign))
	assertAppError(t, other.AttachCard(foreign), "STA_001")
}

func TestAccount_Deposit(t *testing.T) {
	u := newTestUser(t, "1-1101-12345-12-0", "Harry Potter")
	acct := newTestSavings(t, u, "1000000001", "20000")
	card := attachCard(t, acct, "C-1", CardTypeDebit)
	atm := newTestATM(t, "ATM-001", "1000")
	insertCard(t, atm, card)

	txn, err := acct.Deposit(atm, d("500"))
	require.NoError(t, err)

	assertDecimal(t, "20500", acct.Balance())
	assertDecimal(t, "1500", atm.Cash(), "deposited cash goes into the reservoir")
	assert.Equal(t, TransactionTypeDeposit, txn.Type)
	assert.Equal(t, "ATM-001", txn.ChannelID)
	assertDecimal(t, "20500", txn.Balance)
	assert.Equal(t, 1, txn.Seq)
	assert.Equal(t, txn, acct.LastTransaction())

	for _, amount := range []string{"0", "-10"} {
		_, err = acct.Deposit(atm, d(amount))
		assertAppError(t, err, "VAL_001")
	}
	assert.Equal(t, 1, acct.TransactionCount())
}

func TestAccount_Withdraw_BalanceInvariant(t *testing.T) {
	u := newTestUser(t, "1-1101-12345-12-0", "Harry Potter")
	acct := newTestSavings(t, u, "1000000001", "20000")
	counter := openCounter(t, "COUNTER-01", acct)

	before := acct.Balance()
	txn, err := acct.Withdraw(counter, d("1234.56"))
	require.NoError(t, err)

	want := before.Sub(d("1234.56"))
	assert.True(t, want.Equal(acct.Balance()))
	assert.True(t, want.Equal(txn.Balance))
	assert.Equal(t, TransactionTypeWithdraw, txn.Type)
	assert.Equal(t, ChannelKindCounter, txn.ChannelKind)
	assertDecimal(t, "0", acct.DailyUsed(), "counter withdrawals are not counted against the daily cap")
}

func TestAccount_Withdraw_TransactionCapBoundary(t *testing.T) {
	u := newTestUser(t, "1-1101-12345-12-0", "Harry Potter")
	acct := newTestSavings(t, u, "1000000001", "100000")
	counter := openCounter(t, "COUNTER-01", acct)

	_, err := acct.Withdraw(counter, d("40000.01"))
	assertAppError(t, err, "LIM_001")
	assertDecimal(t, "100000", acct.Balance())

	_, err = acct.Withdraw(counter, d("40000"))
	require.NoError(t, err)
	assertDecimal(t, "60000", acct.Balance())
}

func TestAccount_Withdraw_RejectionsLeaveStateUnchanged(t *testing.T) {
	tests := []struct {
		name     string
		kind     AccountKind
		opening  string
		cardType CardType
		atmCash  string
		amount   string
		code     string
	}{
		{"non-positive amount", AccountKindSavings, "20000", CardTypeDebit, "100000", "0", "VAL_001"},
		{"savings per-transaction cap", AccountKindSavings, "100000", CardTypePremium, "100000", "40001", "LIM_001"},
		{"daily cap with default", AccountKindCurrent, "100000", CardTypeDebit, "100000", "40000.5", "LIM_002"},
		{"channel cap", AccountKindCurrent, "100000", CardTypePremium, "100000", "45000", "LIM_003"},
		{"insufficient balance", AccountKindSavings, "1000", CardTypeDebit, "100000", "1500", "FND_001"},
		{"annual fee headroom", AccountKindSavings, "10000", CardTypePremium, "100000", "9600", "FND_002"},
		{"atm cash", AccountKindSavings, "20000", CardTypeBasic, "100", "500", "FND_003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := newTestUser(t, "1-1101-12345-12-0", "Harry Potter")
			acct, err := NewAccount(tt.kind, "1000000001", u, d(tt.opening), 0)
			require.NoError(t, err)
			card := attachCard(t, acct, "C-1", tt.cardType)
			atm := newTestATM(t, "ATM-001", tt.atmCash)
			insertCard(t, atm, card)

			_, err = acct.Withdraw(atm, d(tt.amount))
			assertAppError(t, err, tt.code)

			assertDecimal(t, tt.opening, acct.Balance())
			assertDecimal(t, "0", acct.DailyUsed())
			assertDecimal(t, tt.atmCash, atm.Cash())
			assert.Zero(t, acct.TransactionCount())
		})
	}
}

func TestAccount_Withdraw_FeeHeadroomExactlyRetained(t *testing.T) {
	u := newTestUser(t, "1-1101-12345-12-0", "Harry Potter")
	acct := newTestSavings(t, u, "1000000001", "10000")
	card := attachCard(t, acct, "C-1", CardTypePremium)
	atm := newTestATM(t, "ATM-001", "100000")
	insertCard(t, atm, card)

	_, err := acct.Withdraw(atm, d("9500"))
	require.NoError(t, err)
	assertDecimal(t, "500", acct.Balance())
	assertDecimal(t, "90500", atm.Cash())
}

func TestAccount_DailyUsage_ResetsOnNewDay(t *testing.T) {
	clock := newFakeClock()
	u := newTestUser(t, "1-3333-33333-33-3", "ATM User")
	acct := newTestSavings(t, u, "4000000001", "100000", WithClock(clock.Now))
	card := attachCard(t, acct, "C-1", CardTypeBasic)
	atm := newTestATM(t, "ATM-001", "1000000")
	insertCard(t, atm, card)

	_, err := acct.Withdraw(atm, d("30000"))
	require.NoError(t, err)
	_, err = acct.Withdraw(atm, d("5000"))
	require.NoError(t, err)
	assertDecimal(t, "35000", acct.DailyUsed(), "same-day withdrawals accumulate")

	_, err = acct.Withdraw(atm, d("5000.01"))
	assertAppError(t, err, "LIM_002")
	assertDecimal(t, "35000", acct.DailyUsed())

	clock.Advance(24 * time.Hour)
	assertDecimal(t, "0", acct.DailyUsed())

	_, err = acct.Withdraw(atm, d("15000"))
	require.NoError(t, err)
	assertDecimal(t, "15000", acct.DailyUsed(), "the new day starts from zero exactly once")

	_, err = acct.Withdraw(atm, d("1000"))
	require.NoError(t, err)
	assertDecimal(t, "16000", acct.DailyUsed())
}

func TestAccount_ScenarioA_PremiumDailyCap(t *testing.T) {
	u := newTestUser(t, "1-1101-12345-12-0", "Harry Potter")
	acct := newTestSavings(t, u, "1000000001", "20000")
	card := attachCard(t, acct, "C-PREMIUM", CardTypePremium)
	atm := newTestATM(t, "ATM-001", "1000000")
	insertCard(t, atm, card)

	_, err := acct.Deposit(atm, d("100000"))
	require.NoError(t, err)
	assertDecimal(t, "120000", acct.Balance())

	_, err = acct.Withdraw(atm, d("40000"))
	require.NoError(t, err)
	assertDecimal(t, "80000", acct.Balance())
	assertDecimal(t, "40000", acct.DailyUsed())

	_, err = acct.Withdraw(atm, d("50000"))
	assertAppError(t, err, "LIM_001")

	_, err = acct.Withdraw(atm, d("40000"))
	require.NoError(t, err)
	_, err = acct.Withdraw(atm, d("20000"))
	require.NoError(t, err)
	assertDecimal(t, "100000", acct.DailyUsed())
	assertDecimal(t, "20000", acct.Balance())

	_, err = acct.Withdraw(atm, d("1"))
	assertAppError(t, err, "LIM_002")
	assert.Equal(t, 4, acct.TransactionCount())
}

func TestAccount_ScenarioC_ATMOutOfCash(t *testing.T) {
	u := newTestUser(t, "1-3333-33333-33-3", "ATM User")
	acct := newTestSavings(t, u, "4000000001", "5000")
	card := attachCard(t, acct, "C-1", CardTypeBasic)
	atm := newTestATM(t, "ATM-LOW", "100")
	insertCard(t, atm, card)

	_, err := acct.Withdraw(atm, d("500"))
	assertAppError(t, err, "FND_003")

	assertDecimal(t, "100", atm.Cash())
	assertDecimal(t, "5000", acct.Balance())
	assert.Zero(t, acct.TransactionCount())
}

func TestAccount_Transfer_Conservation(t *testing.T) {
	harry := newTestUser(t, "1-1101-12345-12-0", "Harry Potter")
	hermione := newTestUser(t, "1-1101-12345-13-0", "Hermione Granger")
	src := newTestSavings(t, harry, "1000000001", "20000")
	dst := newTestSavings(t, hermione, "2000000001", "30000")
	card := attachCard(t, src, "C-1", CardTypeDebit)
	atm := newTestATM(t, "ATM-001", "0")
	insertCard(t, atm, card)

	total := src.Balance().Add(dst.Balance())
	out, err := src.Transfer(atm, d("5000"), dst)
	require.NoError(t, err)

	assert.True(t, total.Equal(src.Balance().Add(dst.Balance())))
	assertDecimal(t, "15000", src.Balance())
	assertDecimal(t, "35000", dst.Balance())
	assertDecimal(t, "5000", src.DailyUsed())
	assertDecimal(t, "0", atm.Cash(), "transfers do not touch the reservoir")

	assert.Equal(t, TransactionTypeTransferOut, out.Type)
	assert.Equal(t, "2000000001", out.Counterparty)
	assertDecimal(t, "15000", out.Balance)

	in := dst.LastTransaction()
	require.NotNil(t, in)
	assert.Equal(t, TransactionTypeTransferIn, in.Type)
	assert.Equal(t, "1000000001", in.Counterparty)
	assert.Equal(t, "ATM-001", in.ChannelID)
	assertDecimal(t, "35000", in.Balance)
}

func TestAccount_TransferWithReceipt(t *testing.T) {
	harry := newTestUser(t, "1-1101-12345-12-0", "Harry Potter")
	src := newTestSavings(t, harry, "1000000001", "1000")
	dst := newTestCurrent(t, harry, "1000000003", "0")
	counter := openCounter(t, "COUNTER-01", src)

	res, err := src.TransferWithReceipt(counter, d("250"), dst)
	require.NoError(t, err)
	require.NotNil(t, res.Out)
	require.NotNil(t, res.In)
	assert.Equal(t, TransactionTypeTransferOut, res.Out.Type)
	assert.Equal(t, TransactionTypeTransferIn, res.In.Type)
	assert.Equal(t, "1000000003", res.In.AccountNo)
	assert.Equal(t, "1000000001", res.In.Counterparty)
	assert.Equal(t, dst.LastTransaction(), res.In)
	assertDecimal(t, "750", res.Out.Balance)
	assertDecimal(t, "250", res.In.Balance)
}

func TestAccount_Transfer_Rejections(t *testing.T) {
	harry := newTestUser(t, "1-1101-12345-12-0", "Harry Potter")
	src := newTestSavings(t, harry, "1000000001", "50000")
	dst := newTestSavings(t, harry, "1000000002", "0")
	counter := openCounter(t, "COUNTER-01", src)

	_, err := src.Transfer(counter, d("100"), nil)
	assertAppError(t, err, "VAL_003")

	_, err = src.Transfer(counter, d("100"), src)
	assertAppError(t, err, "VAL_003")

	_, err = src.Transfer(counter, d("40000.01"), dst)
	assertAppError(t, err, "LIM_001")

	_, err = src.Transfer(counter, d("-1"), dst)
	assertAppError(t, err, "VAL_001")

	assertDecimal(t, "50000", src.Balance())
	assertDecimal(t, "0", dst.Balance())
	assert.Zero(t, src.TransactionCount())
	assert.Zero(t, dst.TransactionCount())
}

func TestAccount_ScenarioD_CounterTransferIsExemptFromChannelCaps(t *testing.T) {
	harry := newTestUser(t, "1-1101-12345-12-0", "Harry Potter")
	savings := newTestSavings(t, harry, "1000000001", "20000")
	current := newTestCurrent(t, harry, "1000000003", "50000")
	counter := openCounter(t, "COUNTER-01", savings)

	_, err := savings.Transfer(counter, d("2000"), current)
	require.NoError(t, err)
	assertDecimal(t, "18000", savings.Balance())
	assertDecimal(t, "52000", current.Balance())

	// Above the 40,000 ATM/EDC ceiling and without any card.
	_, err = current.Transfer(counter, d("45000"), savings)
	require.NoError(t, err)
	assertDecimal(t, "7000", current.Balance())
	assertDecimal(t, "63000", savings.Balance())
	assertDecimal(t, "0", current.DailyUsed())
}

func TestAccount_ReceiveTransfer(t *testing.T) {
	u := newTestUser(t, "1-1101-12345-12-0", "Harry Potter")
	acct := newTestSavings(t, u, "1000000001", "100")

	txn, err := acct.ReceiveTransfer(d("50"), nil, "2000000001")
	require.NoError(t, err)
	assert.Equal(t, TransactionTypeTransferIn, txn.Type)
	assert.Equal(t, ChannelKindSystem, txn.ChannelKind)
	assertDecimal(t, "150", acct.Balance())

	_, err = acct.ReceiveTransfer(d("0"), nil, "2000000001")
	assertAppError(t, err, "VAL_001")
}

func newPaymentFixture(t *testing.T, cardType CardType, payerBalance string) (*Account, *Card, *EDC, *Account) {
	t.Helper()
	merchantUser := newTestUser(t, "1-9999-99999-99-0", "Shop ABC")
	merchant := newTestCurrent(t, merchantUser, "9000000001", "100000")
	edc, err := NewEDC("EDC-001", merchant)
	require.NoError(t, err)

	payer := newTestUser(t, "1-1101-12345-13-0", "Hermione Granger")
	acct := newTestSavings(t, payer, "2000000001", payerBalance)
	card := attachCard(t, acct, "C-PAY", cardType)

	ok, err := edc.Authenticate(card, "1234")
	require.NoError(t, err)
	require.True(t, ok)
	return acct, card, edc, merchant
}

func TestAccount_ScenarioB_ShoppingCashback(t *testing.T) {
	acct, card, edc, merchant := newPaymentFixture(t, CardTypeShopping, "30000")

	res, err := edc.Pay(acct, d("3000"))
	require.NoError(t, err)

	assertDecimal(t, "30", res.CashbackAmount())
	assertDecimal(t, "30", card.CashbackTotal())
	assertDecimal(t, "103000", merchant.Balance())
	assertDecimal(t, "27030", acct.Balance())
	assertDecimal(t, "3000", acct.DailyUsed())

	assert.Equal(t, TransactionTypePayment, res.Payment.Type)
	assert.Equal(t, "9000000001", res.Payment.Counterparty)
	assertDecimal(t, "27000", res.Payment.Balance)

	require.NotNil(t, res.Cashback)
	assert.Equal(t, TransactionTypeInterest, res.Cashback.Type)
	assertDecimal(t, "27030", res.Cashback.Balance)

	assert.Equal(t, TransactionTypeDeposit, res.MerchantCredit.Type)
	assert.Equal(t, "2000000001", res.MerchantCredit.Counterparty)
	assertDecimal(t, "103000", res.MerchantCredit.Balance)

	assert.Equal(t, 2, acct.TransactionCount())
	assert.Equal(t, 1, merchant.TransactionCount())
}

func TestAccount_Pay_CashbackRules(t *testing.T) {
	tests := []struct {
		name     string
		cardType CardType
		amount   string
		cashback string
	}{
		{"premium is unconditional", CardTypePremium, "500", "10"},
		{"shopping below minimum", CardTypeShopping, "999", "0"},
		{"plain debit", CardTypeDebit, "5000", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acct, card, edc, _ := newPaymentFixture(t, tt.cardType, "20000")

			res, err := acct.Pay(edc, d(tt.amount), edc.Merchant())
			require.NoError(t, err)
			assertDecimal(t, tt.cashback, res.CashbackAmount())
			assertDecimal(t, tt.cashback, card.CashbackTotal())
			if d(tt.cashback).IsZero() {
				assert.Nil(t, res.Cashback)
				assert.Equal(t, 1, acct.TransactionCount())
			}
		})
	}
}

func TestAccount_Pay_Rejections(t *testing.T) {
	acct, _, edc, merchant := newPaymentFixture(t, CardTypeDebit, "1000")

	_, err := edc.Pay(acct, d("1500"))
	assertAppError(t, err, "FND_001")

	_, err = edc.Pay(acct, d("0"))
	assertAppError(t, err, "VAL_001")

	_, err = acct.Pay(edc, d("10"), nil)
	assertAppError(t, err, "VAL_003")

	_, err = acct.Pay(edc, d("10"), acct)
	assertAppError(t, err, "VAL_003")

	counter := openCounter(t, "COUNTER-01", acct)
	_, err = acct.Pay(counter, d("10"), merchant)
	assertAppError(t, err, "VAL_003")

	_, err = acct.Pay(nil, d("10"), merchant)
	assertAppError(t, err, "SES_001")

	_, err = edc.Pay(nil, d("10"))
	assertAppError(t, err, "VAL_003")

	require.NoError(t, edc.Eject())
	_, err = edc.Pay(acct, d("10"))
	assertAppError(t, err, "SES_001")

	assertDecimal(t, "1000", acct.Balance())
	assertDecimal(t, "100000", merchant.Balance())
	assert.Zero(t, acct.TransactionCount())
}

func TestAccount_CalculateInterest_Savings(t *testing.T) {
	u := newTestUser(t, "1-1101-12345-12-0", "Harry Potter")
	acct := newTestSavings(t, u, "1000000001", "20000")
	before := acct.Balance()

	interest := acct.CalculateInterest()

	assert.True(t, interest.Equal(before.Mul(d("0.005"))))
	assertDecimal(t, "100", interest)
	assert.True(t, acct.Balance().Equal(before.Add(interest)))
	require.Equal(t, 1, acct.TransactionCount())

	txn := acct.LastTransaction()
	assert.Equal(t, TransactionTypeInterest, txn.Type)
	assert.Equal(t, ChannelKindSystem, txn.ChannelKind)
	assert.Equal(t, SystemChannelInterest, txn.ChannelID)
	assertDecimal(t, "20100", txn.Balance)
}

func TestAccount_CreditInterest_ReturnsEntry(t *testing.T) {
	u := newTestUser(t, "1-1101-12345-12-0", "Harry Potter")
	savings := newTestSavings(t, u, "1000000001", "1000")
	current := newTestCurrent(t, u, "1000000003", "1000")

	interest, txn := savings.CreditInterest()
	assertDecimal(t, "5", interest)
	require.NotNil(t, txn)
	assert.Equal(t, savings.LastTransaction(), txn)

	interest, txn = current.CreditInterest()
	assertDecimal(t, "0", interest)
	assert.Nil(t, txn)
}

func TestAccount_CalculateInterest_Current(t *testing.T) {
	u := newTestUser(t, "1-1101-12345-12-0", "Harry Potter")
	acct := newTestCurrent(t, u, "1000000003", "50000")

	assertDecimal(t, "0", acct.CalculateInterest())
	assertDecimal(t, "50000", acct.Balance())
	assert.Zero(t, acct.TransactionCount())
}

func TestAccount_CalculateInterest_ZeroBalance(t *testing.T) {
	u := newTestUser(t, "1-1101-12345-12-0", "Harry Potter")
	acct := newTestSavings(t, u, "1000000001", "0")

	assertDecimal(t, "0", acct.CalculateInterest())
	assert.Zero(t, acct.TransactionCount())
}

func TestAccount_FixedTerm(t *testing.T) {
	clock := newFakeClock()
	u := newTestUser(t, "1-1101-12345-12-0", "Harry Potter")

	fixed, err := NewFixedAccount("1000000002", u, d("100000"), 12, WithClock(clock.Now))
	require.NoError(t, err)
	require.NoError(t, u.AddAccount(fixed))

	assert.Equal(t, 12, fixed.TermMonths())
	assert.Equal(t, clock.Now(), fixed.StartDate())
	assert.Equal(t, clock.Now().AddDate(0, 0, 360), fixed.MaturityDate())
	assert.False(t, fixed.IsMatured())

	t.Run("full rate before any withdrawal", func(t *testing.T) {
		assertDecimal(t, "2500", fixed.CalculateInterest())
		assertDecimal(t, "102500", fixed.Balance())
	})

	t.Run("early withdrawal halves the rate", func(t *testing.T) {
		counter := openCounter(t, "COUNTER-01", fixed)
		_, err := fixed.Withdraw(counter, d("2500"))
		require.NoError(t, err)
		assert.True(t, fixed.WithdrawnEarly())

		assertDecimal(t, "1250", fixed.CalculateInterest())
		assertDecimal(t, "101250", fixed.Balance())
	})
}

func TestAccount_FixedTerm_WithdrawAfterMaturity(t *testing.T) {
	clock := newFakeClock()
	u := newTestUser(t, "1-1101-12345-12-0", "Harry Potter")
	start := clock.Now()

	fixed, err := NewFixedAccount("1000000002", u, d("60000"), 6, WithClock(clock.Now), WithStartDate(start))
	require.NoError(t, err)
	require.NoError(t, u.AddAccount(fixed))

	clock.Advance(180 * 24 * time.Hour)
	assert.True(t, fixed.IsMatured())

	counter := openCounter(t, "COUNTER-01", fixed)
	_, err = fixed.Withdraw(counter, d("50000"))
	require.NoError(t, err, "fixed-term accounts have no per-transaction cap")
	assert.False(t, fixed.WithdrawnEarly())

	// 10,000 x 2.5% x 6/12
	assertDecimal(t, "125", fixed.CalculateInterest())
}

func TestAccount_ChargeFee(t *testing.T) {
	u := newTestUser(t, "1-1101-12345-12-0", "Harry Potter")
	acct := newTestSavings(t, u, "1000000001", "250")

	_, err := acct.ChargeFee(d("300"))
	assertAppError(t, err, "FND_001")
	assertDecimal(t, "250", acct.Balance())

	_, err = acct.ChargeFee(d("0"))
	assertAppError(t, err, "VAL_001")

	txn, err := acct.ChargeFee(d("250"))
	require.NoError(t, err)
	assertDecimal(t, "0", acct.Balance())
	assert.Equal(t, TransactionTypeFee, txn.Type)
}

func TestAccount_TransactionsAccessors(t *testing.T) {
	u := newTestUser(t, "1-1101-12345-12-0", "Harry Potter")
	acct := newTestSavings(t, u, "1000000001", "1000")
	counter := openCounter(t, "COUNTER-01", acct)

	assert.Nil(t, acct.LastTransaction())
	assert.Empty(t, acct.Transactions(0))

	for _, amount := range []string{"10", "20", "30", "40"} {
		_, err := acct.Deposit(counter, d(amount))
		require.NoError(t, err)
	}

	all := acct.Transactions(0)
	require.Len(t, all, 4)
	for i, txn := range all {
		assert.Equal(t, i+1, txn.Seq)
	}

	last2 := acct.Transactions(2)
	require.Len(t, last2, 2)
	assertDecimal(t, "30", last2[0].Amount)
	assertDecimal(t, "40", last2[1].Amount)

	assert.Len(t, acct.Transactions(10), 4)
	assert.Equal(t, 4, acct.TransactionCount())
	assertDecimal(t, "1100", acct.LastTransaction().Balance)

	// Returned slices are copies.
	all[0] = nil
	assert.NotNil(t, acct.Transactions(0)[0])
}

func TestAccount_Summary(t *testing.T) {
	u := newTestUser(t, "1-1101-12345-12-0", "Harry Potter")
	acct := newTestSavings(t, u, "1000000001", "20000")
	card := attachCard(t, acct, "C-1", CardTypePremium)
	atm := newTestATM(t, "ATM-001", "100000")
	insertCard(t, atm, card)

	_, err := acct.Withdraw(atm, d("1000"))
	require.NoError(t, err)

	s := acct.Summary()
	assert.Equal(t, "1000000001", s.Number)
	assert.Equal(t, "Saving Account", s.TypeLabel)
	assert.Equal(t, "Harry Potter", s.OwnerName)
	assertDecimal(t, "19000", s.Balance)
	assertDecimal(t, "1000", s.DailyUsed)
	assertDecimal(t, "100000", s.DailyCap)
	assert.Equal(t, "Premium Card", s.CardType)
	assert.Equal(t, 1, s.TransactionCount)
	assert.Nil(t, s.MaturityDate)
}

func TestAccount_Pay_RejectsMerchantNotBoundToTerminal(t *testing.T) {
	acct, _, edc, merchant := newPaymentFixture(t, CardTypeDebit, "10000")
	other := newTestCurrent(t, newTestUser(t, "1-8888-88888-88-0", "Other Shop"), "9000000002", "0")

	_, err := acct.Pay(edc, d("100"), other)
	assertAppError(t, err, "VAL_003")

	assertDecimal(t, "10000", acct.Balance())
	assertDecimal(t, "0", other.Balance())
	assertDecimal(t, "100000", merchant.Balance())
}

func TestAccount_LogEntriesCannotBeRewrittenByCallers(t *testing.T) {
	u := newTestUser(t, "1-1101-12345-12-0", "Harry Potter")
	acct := newTestSavings(t, u, "1000000001", "20000")
	counter := openCounter(t, "COUNTER-01", acct)

	txn, err := acct.Deposit(counter, d("500"))
	require.NoError(t, err)
	txn.Amount = d("999999")

	listed := acct.Transactions(0)
	require.Len(t, listed, 1)
	listed[0].Balance = d("0")
	acct.LastTransaction().Seq = 42

	last := acct.LastTransaction()
	assertDecimal(t, "500", last.Amount)
	assertDecimal(t, "20500", last.Balance)
	assert.Equal(t, 1, last.Seq)
}
