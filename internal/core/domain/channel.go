package domain

import (
	"sync"

	"retail-bank-ledger/pkg/apperror"

	"github.com/shopspring/decimal"
)

// ChannelTransactionCap is the per-transaction ceiling of ATM and EDC terminals.
var ChannelTransactionCap = decimal.NewFromInt(40000)

// Channel is a session-holding terminal. The set of implementations is
// closed to ATM, EDC and Counter.
//
// Account operations lock the channel before the accounts they touch, so
// session state and the ATM reservoir change together with the balance.
type Channel interface {
	ID() string
	Kind() ChannelKind
	IsActive() bool

	// authorize checks, with the channel locked, that the current session
	// may operate on a.
	authorize(a *Account) error
	// sessionPrincipal returns the card number or citizen id of the current
	// session, empty when idle. The channel must be locked.
	sessionPrincipal() string
	// end clears the session. The channel must be locked.
	end() error
	// base returns the concrete terminal behind a bound view.
	base() Channel
	lock()
	unlock()
}

type terminal struct {
	mu sync.Mutex
	id string
}

func (t *terminal) ID() string { return t.id }
func (t *terminal) lock()      { t.mu.Lock() }
func (t *terminal) unlock()    { t.mu.Unlock() }

// cardSession is the session state shared by card terminals.
type cardSession struct {
	terminal
	card *Card
}

func (s *cardSession) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.card != nil
}

// CurrentCard returns the card bound to the session, or nil when idle.
func (s *cardSession) CurrentCard() *Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.card
}

func (s *cardSession) begin(card *Card, pin string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.card != nil {
		return false, apperror.ErrSessionActive()
	}
	if !card.ValidatePIN(pin) {
		return false, nil
	}
	s.card = card
	return true, nil
}

// Eject ends the session.
func (s *cardSession) Eject() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.end()
}

func (s *cardSession) end() error {
	if s.card == nil {
		return apperror.ErrNoSessionToClear()
	}
	s.card = nil
	return nil
}

func (s *cardSession) sessionPrincipal() string {
	if s.card == nil {
		return ""
	}
	return s.card.Number()
}

func (s *cardSession) authorize(a *Account) error {
	if s.card == nil {
		return apperror.ErrNoSession()
	}
	if a.card == nil || a.card != s.card {
		return apperror.ErrSessionMismatch()
	}
	return nil
}

// ATM is a cash terminal accepting every card type.
type ATM struct {
	cardSession
	cash decimal.Decimal
}

// NewATM creates an idle ATM loaded with cash.
func NewATM(id string, cash decimal.Decimal) (*ATM, error) {
	if id == "" {
		return nil, apperror.Validation("channel id is required")
	}
	if cash.IsNegative() {
		return nil, apperror.Validation("cash reservoir cannot be negative")
	}
	return &ATM{cardSession: cardSession{terminal: terminal{id: id}}, cash: cash}, nil
}

func (m *ATM) Kind() ChannelKind { return ChannelKindATM }
func (m *ATM) base() Channel     { return m }

// Authenticate binds card to the ATM when pin matches. A wrong PIN returns
// false and leaves the ATM idle.
func (m *ATM) Authenticate(card *Card, pin string) (bool, error) {
	if card == nil {
		return false, apperror.Validation("card is required")
	}
	return m.begin(card, pin)
}

// InsertCard is an alias of Authenticate.
func (m *ATM) InsertCard(card *Card, pin string) (bool, error) {
	return m.Authenticate(card, pin)
}

// Cash returns the reservoir balance.
func (m *ATM) Cash() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cash
}

func (m *ATM) HasSufficientCash(amount decimal.Decimal) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasCash(amount)
}

// DispenseCash takes amount out of the reservoir.
func (m *ATM) DispenseCash(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperror.ErrInvalidAmount()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasCash(amount) {
		return apperror.ErrInsufficientCash()
	}
	m.cash = m.cash.Sub(amount)
	return nil
}

// ReceiveCash adds amount to the reservoir.
func (m *ATM) ReceiveCash(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperror.ErrInvalidAmount()
	}
	m.mu.Lock()
	m.cash = m.cash.Add(amount)
	m.mu.Unlock()
	return nil
}

func (m *ATM) hasCash(amount decimal.Decimal) bool {
	return m.cash.GreaterThanOrEqual(amount)
}

// EDC is a merchant payment terminal bound to one Current account.
type EDC struct {
	cardSession
	merchant *Account
}

// NewEDC creates an idle terminal paying into merchant.
func NewEDC(id string, merchant *Account) (*EDC, error) {
	if id == "" {
		return nil, apperror.Validation("channel id is required")
	}
	if merchant == nil || merchant.Kind() != AccountKindCurrent {
		return nil, apperror.Validation("EDC merchant must be a current account")
	}
	return &EDC{cardSession: cardSession{terminal: terminal{id: id}}, merchant: merchant}, nil
}

func (e *EDC) Kind() ChannelKind { return ChannelKindEDC }
func (e *EDC) base() Channel     { return e }

// Merchant returns the account payments are credited to.
func (e *EDC) Merchant() *Account { return e.merchant }

// Authenticate binds a Debit-family card to the terminal when pin matches.
func (e *EDC) Authenticate(card *Card, pin string) (bool, error) {
	if card == nil {
		return false, apperror.Validation("card is required")
	}
	if !card.IsDebitFamily() {
		return false, apperror.ErrCardNotAccepted(card.TypeLabel())
	}
	return e.begin(card, pin)
}

// SwipeCard is an alias of Authenticate.
func (e *EDC) SwipeCard(card *Card, pin string) (bool, error) {
	return e.Authenticate(card, pin)
}

// Pay charges account for a purchase at this terminal's merchant.
func (e *EDC) Pay(account *Account, amount decimal.Decimal) (*PaymentResult, error) {
	if account == nil {
		return nil, apperror.Validation("account is required")
	}
	return account.Pay(e, amount, e.merchant)
}

// Counter is a teller desk. Its session is bound to a verified account
// owner and covers every account that owner holds.
type Counter struct {
	terminal
	user *User
}

// NewCounter creates an idle counter.
func NewCounter(id string) (*Counter, error) {
	if id == "" {
		return nil, apperror.Validation("channel id is required")
	}
	return &Counter{terminal: terminal{id: id}}, nil
}

func (c *Counter) Kind() ChannelKind { return ChannelKindCounter }
func (c *Counter) base() Channel     { return c }

func (c *Counter) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user != nil
}

// CurrentUser returns the verified owner, or nil when idle.
func (c *Counter) CurrentUser() *User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// Authenticate verifies citizenID against the owner of account. A mismatch
// returns false and leaves the counter idle.
func (c *Counter) Authenticate(account *Account, citizenID string) (bool, error) {
	if account == nil || account.Owner() == nil {
		return false, apperror.Validation("account is required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user != nil {
		return false, apperror.ErrSessionActive()
	}
	if !account.Owner().CheckCitizenID(citizenID) {
		return false, nil
	}
	c.user = account.Owner()
	return true, nil
}

// VerifyIdentity is an alias of Authenticate.
func (c *Counter) VerifyIdentity(account *Account, citizenID string) (bool, error) {
	return c.Authenticate(account, citizenID)
}

// ClearSession ends the session.
func (c *Counter) ClearSession() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.end()
}

func (c *Counter) end() error {
	if c.user == nil {
		return apperror.ErrNoSessionToClear()
	}
	c.user = nil
	return nil
}

func (c *Counter) sessionPrincipal() string {
	if c.user == nil {
		return ""
	}
	return c.user.CitizenID()
}

func (c *Counter) authorize(a *Account) error {
	if c.user == nil {
		return apperror.ErrNoSession()
	}
	if a.owner != c.user {
		return apperror.ErrSessionMismatch()
	}
	return nil
}

// EndSession ejects the card or clears the counter, whichever applies.
func EndSession(ch Channel) error {
	if ch == nil {
		return apperror.Validation("unsupported channel")
	}
	ch.lock()
	defer ch.unlock()
	return ch.end()
}

// boundChannel is a channel view that only acts while the session still
// belongs to principal. The check runs under the same channel lock as the
// operation it guards.
type boundChannel struct {
	Channel
	principal string
}

// AsPrincipal returns ch restricted to sessions held by principal (a card
// number for ATM/EDC, a citizen id for a counter). An empty principal
// returns ch unchanged.
func AsPrincipal(ch Channel, principal string) Channel {
	if ch == nil || principal == "" {
		return ch
	}
	return &boundChannel{Channel: ch, principal: principal}
}

func (b *boundChannel) checkPrincipal() error {
	switch current := b.Channel.sessionPrincipal(); current {
	case "":
		return apperror.ErrNoSession()
	case b.principal:
		return nil
	default:
		return apperror.ErrInvalidToken()
	}
}

func (b *boundChannel) authorize(a *Account) error {
	if err := b.checkPrincipal(); err != nil {
		return err
	}
	return b.Channel.authorize(a)
}

func (b *boundChannel) end() error {
	if err := b.checkPrincipal(); err != nil {
		return err
	}
	return b.Channel.end()
}

// Authorize reports whether the current session of ch may operate on
// account, without changing anything.
func Authorize(ch Channel, account *Account) error {
	if ch == nil {
		return apperror.ErrNoSession()
	}
	if account == nil {
		return apperror.Validation("account is required")
	}
	ch.lock()
	defer ch.unlock()
	account.mu.Lock()
	defer account.mu.Unlock()
	return ch.authorize(account)
}
