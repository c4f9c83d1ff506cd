package domain

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"retail-bank-ledger/pkg/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(dur time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(dur)
	c.mu.Unlock()
}

func assertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, expectedCode, appErr.Code)
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	if !d(expected).Equal(actual) {
		assert.Fail(t, fmt.Sprintf("expected %s, got %s", expected, actual), msgAndArgs...)
	}
}

func newTestUser(t *testing.T, citizenID, name string) *User {
	t.Helper()
	u, err := NewUser(citizenID, name)
	require.NoError(t, err)
	return u
}

func newTestSavings(t *testing.T, u *User, number, opening string, opts ...AccountOption) *Account {
	t.Helper()
	a, err := NewSavingsAccount(number, u, d(opening), opts...)
	require.NoError(t, err)
	require.NoError(t, u.AddAccount(a))
	return a
}

func newTestCurrent(t *testing.T, u *User, number, opening string, opts ...AccountOption) *Account {
	t.Helper()
	a, err := NewCurrentAccount(number, u, d(opening), opts...)
	require.NoError(t, err)
	require.NoError(t, u.AddAccount(a))
	return a
}

func attachCard(t *testing.T, a *Account, cardNo string, cardType CardType) *Card {
	t.Helper()
	c, err := NewCard(cardNo, a.Number(), "1234", cardType)
	require.NoError(t, err)
	require.NoError(t, a.AttachCard(c))
	return c
}

func newTestATM(t *testing.T, id, cash string) *ATM {
	t.Helper()
	atm, err := NewATM(id, d(cash))
	require.NoError(t, err)
	return atm
}

func insertCard(t *testing.T, atm *ATM, c *Card) {
	t.Helper()
	ok, err := atm.Authenticate(c, "1234")
	require.NoError(t, err)
	require.True(t, ok)
}

func openCounter(t *testing.T, id string, a *Account) *Counter {
	t.Helper()
	counter, err := NewCounter(id)
	require.NoError(t, err)
	ok, err := counter.Authenticate(a, a.Owner().CitizenID())
	require.NoError(t, err)
	require.True(t, ok)
	return counter
}
