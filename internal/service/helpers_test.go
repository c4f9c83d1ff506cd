package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"retail-bank-ledger/internal/core/domain"
	"retail-bank-ledger/internal/core/ports"
	"retail-bank-ledger/pkg/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// bankFixture builds registry state through the account service.
type bankFixture struct {
	bank     *domain.Bank
	clock    *testClock
	accounts *AccountServiceImpl
}

func newBankFixture(t *testing.T) *bankFixture {
	t.Helper()
	clock := &testClock{now: time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)}
	bank := domain.NewBank("Hogwarts Bank")
	return &bankFixture{
		bank:     bank,
		clock:    clock,
		accounts: NewAccountService(bank, clock.Now, newTestLogger()),
	}
}

func (f *bankFixture) user(t *testing.T, citizenID, name string) {
	t.Helper()
	_, err := f.accounts.OpenUser(context.Background(), citizenID, name)
	require.NoError(t, err)
}

func (f *bankFixture) account(t *testing.T, citizenID, accountNo string, kind domain.AccountKind, opening string) *domain.Account {
	t.Helper()
	a, err := f.accounts.OpenAccount(context.Background(), ports.OpenAccountRequest{
		CitizenID:      citizenID,
		AccountNo:      accountNo,
		Kind:           kind,
		OpeningBalance: dec(opening),
		TermMonths:     12,
	})
	require.NoError(t, err)
	return a
}

func (f *bankFixture) card(t *testing.T, accountNo, cardNo string, cardType domain.CardType) *domain.Card {
	t.Helper()
	c, err := f.accounts.IssueCard(context.Background(), ports.IssueCardRequest{
		AccountNo: accountNo,
		CardNo:    cardNo,
		PIN:       "1234",
		Type:      cardType,
	})
	require.NoError(t, err)
	return c
}

func (f *bankFixture) channel(t *testing.T, req ports.RegisterChannelRequest) domain.Channel {
	t.Helper()
	ch, err := f.accounts.RegisterChannel(context.Background(), req)
	require.NoError(t, err)
	return ch
}

// standard seeds Harry with a savings account and debit card, Hermione with
// a current account, an ATM holding 100,000 and a counter.
func (f *bankFixture) standard(t *testing.T) {
	t.Helper()
	f.user(t, "1-1101-12345-12-0", "Harry Potter")
	f.user(t, "1-1101-12345-13-0", "Hermione Granger")
	f.account(t, "1-1101-12345-12-0", "1000000001", domain.AccountKindSavings, "20000")
	f.account(t, "1-1101-12345-13-0", "2000000001", domain.AccountKindCurrent, "50000")
	f.card(t, "1000000001", "4000-0001", domain.CardTypeDebit)
	f.channel(t, ports.RegisterChannelRequest{ID: "ATM-001", Kind: domain.ChannelKindATM, Cash: dec("100000")})
	f.channel(t, ports.RegisterChannelRequest{ID: "COUNTER-01", Kind: domain.ChannelKindCounter})
}

func (f *bankFixture) insert(t *testing.T, channelID, cardNo string) {
	t.Helper()
	atm, ok := f.bank.ATMByID(channelID)
	require.True(t, ok)
	account, ok := f.bank.SearchAccountByCard(cardNo)
	require.True(t, ok)
	authenticated, err := atm.Authenticate(account.Card(), "1234")
	require.NoError(t, err)
	require.True(t, authenticated)
}
