package domain

import (
	"sort"
	"sync"

	"retail-bank-ledger/pkg/apperror"
)

// Bank is the registry of users and channels. Lookups report absence with
// a false second result.
type Bank struct {
	name string

	mu       sync.RWMutex
	users    map[string]*User
	channels map[string]Channel
}

// NewBank creates an empty registry.
func NewBank(name string) *Bank {
	return &Bank{
		name:     name,
		users:    make(map[string]*User),
		channels: make(map[string]Channel),
	}
}

func (b *Bank) Name() string { return b.name }

// AddUser registers u. Citizen ids are unique.
func (b *Bank) AddUser(u *User) error {
	if u == nil {
		return apperror.Validation("user is required")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.users[u.CitizenID()]; ok {
		return apperror.ErrDuplicate("User " + u.CitizenID())
	}
	b.users[u.CitizenID()] = u
	return nil
}

func (b *Bank) AddATM(atm *ATM) error {
	if atm == nil {
		return apperror.Validation("atm is required")
	}
	return b.addChannel(atm)
}

func (b *Bank) AddEDC(edc *EDC) error {
	if edc == nil {
		return apperror.Validation("edc is required")
	}
	return b.addChannel(edc)
}

func (b *Bank) AddCounter(counter *Counter) error {
	if counter == nil {
		return apperror.Validation("counter is required")
	}
	return b.addChannel(counter)
}

// AddChannel registers any channel kind. Channel ids are unique across kinds.
func (b *Bank) AddChannel(ch Channel) error {
	switch c := ch.(type) {
	case *ATM:
		return b.AddATM(c)
	case *EDC:
		return b.AddEDC(c)
	case *Counter:
		return b.AddCounter(c)
	}
	return apperror.Validation("unsupported channel")
}

func (b *Bank) addChannel(ch Channel) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.channels[ch.ID()]; ok {
		return apperror.ErrDuplicate("Channel " + ch.ID())
	}
	b.channels[ch.ID()] = ch
	return nil
}

func (b *Bank) UserByCitizenID(citizenID string) (*User, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	u, ok := b.users[citizenID]
	return u, ok
}

// Users returns every user ordered by citizen id.
func (b *Bank) Users() []*User {
	b.mu.RLock()
	out := make([]*User, 0, len(b.users))
	for _, u := range b.users {
		out = append(out, u)
	}
	b.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CitizenID() < out[j].CitizenID() })
	return out
}

func (b *Bank) ChannelByID(id string) (Channel, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ch, ok := b.channels[id]
	return ch, ok
}

func (b *Bank) ATMByID(id string) (*ATM, bool) {
	ch, _ := b.ChannelByID(id)
	atm, ok := ch.(*ATM)
	return atm, ok
}

func (b *Bank) EDCByID(id string) (*EDC, bool) {
	ch, _ := b.ChannelByID(id)
	edc, ok := ch.(*EDC)
	return edc, ok
}

func (b *Bank) CounterByID(id string) (*Counter, bool) {
	ch, _ := b.ChannelByID(id)
	counter, ok := ch.(*Counter)
	return counter, ok
}

// Accounts returns every account across all users.
func (b *Bank) Accounts() []*Account {
	var out []*Account
	for _, u := range b.Users() {
		out = append(out, u.Accounts()...)
	}
	return out
}

func (b *Bank) AccountByNumber(number string) (*Account, bool) {
	for _, u := range b.Users() {
		if a, ok := u.AccountByNumber(number); ok {
			return a, true
		}
	}
	return nil, false
}

// SearchAccountByCard finds the account a card is attached to.
func (b *Bank) SearchAccountByCard(cardNo string) (*Account, bool) {
	for _, u := range b.Users() {
		if a, ok := u.SearchAccountByCard(cardNo); ok {
			return a, true
		}
	}
	return nil, false
}

// FeeResult is the outcome of charging one card's annual fee.
type FeeResult struct {
	AccountNo   string       `json:"account_no"`
	CardNo      string       `json:"card_no"`
	Transaction *Transaction `json:"transaction,omitempty"`
	Err         error        `json:"-"`
}

// CollectAnnualFees charges the annual fee of every attached card. A card
// whose account cannot cover the fee is reported and skipped.
func (b *Bank) CollectAnnualFees() []FeeResult {
	var results []FeeResult
	for _, a := range b.Accounts() {
		card := a.Card()
		if card == nil {
			continue
		}
		txn, err := card.ChargeAnnualFee(a)
		results = append(results, FeeResult{
			AccountNo:   a.Number(),
			CardNo:      card.Number(),
			Transaction: txn,
			Err:         err,
		})
	}
	return results
}

// ResetDailyLimits zeroes daily usage on every account and returns how many
// accounts were reset.
func (b *Bank) ResetDailyLimits() int {
	accounts := b.Accounts()
	for _, a := range accounts {
		a.ResetDailyUsage()
	}
	return len(accounts)
}
