package domain

import (
	"crypto/subtle"
	"sync"

	"retail-bank-ledger/pkg/apperror"
)

// User is an account holder identified by citizen id.
type User struct {
	citizenID string
	name      string

	mu       sync.RWMutex
	accounts []*Account
}

// NewUser creates a user with no accounts.
func NewUser(citizenID, name string) (*User, error) {
	if citizenID == "" || name == "" {
		return nil, apperror.Validation("citizen id and name are required")
	}
	return &User{citizenID: citizenID, name: name}, nil
}

func (u *User) CitizenID() string { return u.citizenID }
func (u *User) Name() string      { return u.name }

// CheckCitizenID reports whether id matches the user's citizen id.
func (u *User) CheckCitizenID(id string) bool {
	return subtle.ConstantTimeCompare([]byte(u.citizenID), []byte(id)) == 1
}

// AddAccount registers an account the user owns.
func (u *User) AddAccount(a *Account) error {
	if a == nil {
		return apperror.Validation("account is required")
	}
	if a.Owner() != u {
		return apperror.Validation("account belongs to another user")
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, existing := range u.accounts {
		if existing.Number() == a.Number() {
			return apperror.ErrDuplicate("Account " + a.Number())
		}
	}
	u.accounts = append(u.accounts, a)
	return nil
}

// Accounts returns the user's accounts in registration order.
func (u *User) Accounts() []*Account {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make([]*Account, len(u.accounts))
	copy(out, u.accounts)
	return out
}

// AccountByNumber finds an owned account.
func (u *User) AccountByNumber(number string) (*Account, bool) {
	for _, a := range u.Accounts() {
		if a.Number() == number {
			return a, true
		}
	}
	return nil, false
}

// SearchAccountByCard finds the owned account whose attached card is cardNo.
func (u *User) SearchAccountByCard(cardNo string) (*Account, bool) {
	for _, a := range u.Accounts() {
		if c := a.Card(); c != nil && c.Number() == cardNo {
			return a, true
		}
	}
	return nil, false
}
