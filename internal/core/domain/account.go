package domain

import (
	"sync"
	"time"

	"retail-bank-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountKind is the closed set of account variants.
type AccountKind string

const (
	AccountKindSavings AccountKind = "SAVINGS"
	AccountKindFixed   AccountKind = "FIXED"
	AccountKindCurrent AccountKind = "CURRENT"
)

// Clock supplies the current time. Tests replace it to cross day boundaries.
type Clock func() time.Time

const dayLayout = "2006-01-02"

// Account holds a balance, at most one card, the rolling daily usage and
// an append-only transaction log. All mutation happens under mu.
type Account struct {
	mu sync.Mutex

	number string
	kind   AccountKind
	owner  *User
	clock  Clock

	balance        decimal.Decimal
	card           *Card
	dailyUsed      decimal.Decimal
	dailyResetDate string
	txns           []*Transaction

	// fixed-term only
	termMonths     int
	startDate      time.Time
	maturityDate   time.Time
	withdrawnEarly bool
}

// AccountOption customises a new account.
type AccountOption func(*Account)

// WithClock sets the time source used for timestamps, daily rollover and maturity.
func WithClock(c Clock) AccountOption {
	return func(a *Account) { a.clock = c }
}

// WithStartDate sets the fixed-term start date. Defaults to the clock's now.
func WithStartDate(t time.Time) AccountOption {
	return func(a *Account) { a.startDate = t }
}

// NewSavingsAccount opens a savings account.
func NewSavingsAccount(number string, owner *User, opening decimal.Decimal, opts ...AccountOption) (*Account, error) {
	return newAccount(AccountKindSavings, number, owner, opening, opts)
}

// NewCurrentAccount opens a current account.
func NewCurrentAccount(number string, owner *User, opening decimal.Decimal, opts ...AccountOption) (*Account, error) {
	return newAccount(AccountKindCurrent, number, owner, opening, opts)
}

// NewFixedAccount opens a fixed-term account maturing termMonths*30 days
// after its start date.
func NewFixedAccount(number string, owner *User, opening decimal.Decimal, termMonths int, opts ...AccountOption) (*Account, error) {
	if termMonths <= 0 {
		return nil, apperror.Validation("term_months must be positive")
	}
	a, err := newAccount(AccountKindFixed, number, owner, opening, opts)
	if err != nil {
		return nil, err
	}
	a.termMonths = termMonths
	if a.startDate.IsZero() {
		a.startDate = a.clock()
	}
	a.maturityDate = a.startDate.AddDate(0, 0, termMonths*daysPerTermMonth)
	return a, nil
}

// NewAccount opens an account of the given kind. termMonths is only used
// for fixed-term accounts.
func NewAccount(kind AccountKind, number string, owner *User, opening decimal.Decimal, termMonths int, opts ...AccountOption) (*Account, error) {
	switch kind {
	case AccountKindSavings:
		return NewSavingsAccount(number, owner, opening, opts...)
	case AccountKindFixed:
		return NewFixedAccount(number, owner, opening, termMonths, opts...)
	case AccountKindCurrent:
		return NewCurrentAccount(number, owner, opening, opts...)
	}
	return nil, apperror.Validation("unknown account kind: " + string(kind))
}

func newAccount(kind AccountKind, number string, owner *User, opening decimal.Decimal, opts []AccountOption) (*Account, error) {
	if number == "" {
		return nil, apperror.Validation("account number is required")
	}
	if owner == nil {
		return nil, apperror.Validation("account owner is required")
	}
	if opening.IsNegative() {
		return nil, apperror.Validation("opening balance cannot be negative")
	}
	a := &Account{
		number:    number,
		kind:      kind,
		owner:     owner,
		clock:     time.Now,
		balance:   opening,
		dailyUsed: decimal.Zero,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Account) Number() string    { return a.number }
func (a *Account) Kind() AccountKind { return a.kind }
func (a *Account) Owner() *User      { return a.owner }

func (a *Account) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// Card returns the attached card, or nil.
func (a *Account) Card() *Card {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.card
}

// DailyUsed returns today's ATM/EDC usage. Usage from an earlier day reads as zero.
func (a *Account) DailyUsed() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.dailyResetDate != a.clock().Format(dayLayout) {
		return decimal.Zero
	}
	return a.dailyUsed
}

// ResetDailyUsage zeroes the daily usage counter.
func (a *Account) ResetDailyUsage() {
	a.mu.Lock()
	a.dailyUsed = decimal.Zero
	a.dailyResetDate = a.clock().Format(dayLayout)
	a.mu.Unlock()
}

// AttachCard binds card to the account. An account holds at most one card
// and a card is attached once.
func (a *Account) AttachCard(card *Card) error {
	if card == nil {
		return apperror.Validation("card is required")
	}
	if card.AccountNo() != a.number {
		return apperror.Validation("card was issued for another account")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.card != nil {
		return apperror.ErrCardAlreadyAttached()
	}
	if err := card.markAttached(); err != nil {
		return err
	}
	a.card = card
	return nil
}

// Deposit credits amount through an authenticated channel. Cash deposited
// at an ATM goes into its reservoir.
func (a *Account) Deposit(ch Channel, amount decimal.Decimal) (*Transaction, error) {
	if ch == nil {
		return nil, apperror.ErrNoSession()
	}
	ch.lock()
	defer ch.unlock()
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := ch.authorize(a); err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	if atm, ok := ch.base().(*ATM); ok {
		atm.cash = atm.cash.Add(amount)
	}
	a.balance = a.balance.Add(amount)
	return a.record(TransactionTypeDeposit, ch.Kind(), ch.ID(), amount, "", a.clock()), nil
}

// Withdraw debits amount through an authenticated channel. Nothing changes
// unless every limit and funds check passes.
func (a *Account) Withdraw(ch Channel, amount decimal.Decimal) (*Transaction, error) {
	if ch == nil {
		return nil, apperror.ErrNoSession()
	}
	ch.lock()
	defer ch.unlock()
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock()
	if err := ch.authorize(a); err != nil {
		return nil, err
	}
	a.rollover(now)
	if err := a.checkDebit(ch, amount, true); err != nil {
		return nil, err
	}

	a.debit(ch.Kind(), amount, now)
	if atm, ok := ch.base().(*ATM); ok {
		atm.cash = atm.cash.Sub(amount)
	}
	return a.record(TransactionTypeWithdraw, ch.Kind(), ch.ID(), amount, "", now), nil
}

// Transfer moves amount to target. The source follows the withdrawal rules
// (without the cash check); the target is credited unconditionally.
// It returns the source's TRANSFER_OUT entry.
func (a *Account) Transfer(ch Channel, amount decimal.Decimal, target *Account) (*Transaction, error) {
	res, err := a.TransferWithReceipt(ch, amount, target)
	if err != nil {
		return nil, err
	}
	return res.Out, nil
}

// TransferResult pairs the two entries written by a transfer.
type TransferResult struct {
	Out *Transaction `json:"out"`
	In  *Transaction `json:"in"`
}

// TransferWithReceipt is Transfer returning both sides of the move.
func (a *Account) TransferWithReceipt(ch Channel, amount decimal.Decimal, target *Account) (*TransferResult, error) {
	if ch == nil {
		return nil, apperror.ErrNoSession()
	}
	if target == nil {
		return nil, apperror.Validation("transfer target is required")
	}
	if target == a || target.number == a.number {
		return nil, apperror.Validation("cannot transfer to the same account")
	}
	ch.lock()
	defer ch.unlock()
	defer lockPair(a, target)()

	now := a.clock()
	if err := ch.authorize(a); err != nil {
		return nil, err
	}
	a.rollover(now)
	if err := a.checkDebit(ch, amount, false); err != nil {
		return nil, err
	}

	a.debit(ch.Kind(), amount, now)
	return &TransferResult{
		Out: a.record(TransactionTypeTransferOut, ch.Kind(), ch.ID(), amount, target.number, now),
		In:  target.credit(TransactionTypeTransferIn, ch.Kind(), ch.ID(), amount, a.number),
	}, nil
}

// ReceiveTransfer credits an incoming transfer from sourceNo. It bypasses
// session and limit checks.
func (a *Account) ReceiveTransfer(amount decimal.Decimal, ch Channel, sourceNo string) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	kind, id := ChannelKindSystem, ""
	if ch != nil {
		kind, id = ch.Kind(), ch.ID()
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.credit(TransactionTypeTransferIn, kind, id, amount, sourceNo), nil
}

// PaymentResult collects the entries written by one EDC payment.
type PaymentResult struct {
	Payment        *Transaction `json:"payment"`
	MerchantCredit *Transaction `json:"merchant_credit"`
	Cashback       *Transaction `json:"cashback,omitempty"`
}

// CashbackAmount returns the rebate credited, or zero.
func (r *PaymentResult) CashbackAmount() decimal.Decimal {
	if r.Cashback == nil {
		return decimal.Zero
	}
	return r.Cashback.Amount
}

// Pay debits amount for a purchase at an EDC terminal and credits merchant.
// Cashback earned by the card is credited back as an INTEREST entry.
func (a *Account) Pay(ch Channel, amount decimal.Decimal, merchant *Account) (*PaymentResult, error) {
	if ch == nil {
		return nil, apperror.ErrNoSession()
	}
	edc, ok := ch.base().(*EDC)
	if !ok {
		return nil, apperror.Validation("payments require an EDC terminal")
	}
	if merchant == nil {
		return nil, apperror.Validation("merchant account is required")
	}
	if merchant != edc.merchant {
		return nil, apperror.Validation("merchant is not bound to terminal " + edc.id)
	}
	if merchant == a || merchant.number == a.number {
		return nil, apperror.Validation("cannot pay into the paying account")
	}
	ch.lock()
	defer ch.unlock()
	defer lockPair(a, merchant)()

	now := a.clock()
	if err := ch.authorize(a); err != nil {
		return nil, err
	}
	if !a.card.IsDebitFamily() {
		return nil, apperror.ErrCardNotAccepted(a.card.TypeLabel())
	}
	a.rollover(now)
	if err := a.checkDebit(edc, amount, false); err != nil {
		return nil, err
	}

	a.debit(ChannelKindEDC, amount, now)
	res := &PaymentResult{
		Payment:        a.record(TransactionTypePayment, ChannelKindEDC, edc.id, amount, merchant.number, now),
		MerchantCredit: merchant.credit(TransactionTypeDeposit, ChannelKindEDC, edc.id, amount, a.number),
	}
	if cb := a.card.Cashback(amount); cb.IsPositive() {
		a.card.addCashback(cb)
		res.Cashback = a.credit(TransactionTypeInterest, ChannelKindEDC, edc.id, cb, "")
	}
	return res, nil
}

// CalculateInterest credits the interest due for the account type and
// returns it. Zero interest writes no entry.
func (a *Account) CalculateInterest() decimal.Decimal {
	interest, _ := a.CreditInterest()
	return interest
}

// CreditInterest is CalculateInterest also returning the INTEREST entry,
// which is nil when nothing was due.
func (a *Account) CreditInterest() (decimal.Decimal, *Transaction) {
	a.mu.Lock()
	defer a.mu.Unlock()

	interest := a.balance.Mul(a.interestRate())
	if !interest.IsPositive() {
		return interest, nil
	}
	return interest, a.credit(TransactionTypeInterest, ChannelKindSystem, SystemChannelInterest, interest, "")
}

// ChargeFee debits a fee outside any channel session.
func (a *Account) ChargeFee(amount decimal.Decimal) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.balance.LessThan(amount) {
		return nil, apperror.ErrInsufficientFunds()
	}
	a.balance = a.balance.Sub(amount)
	return a.record(TransactionTypeFee, ChannelKindSystem, SystemChannelAnnualFee, amount, "", a.clock()), nil
}

// Transactions returns copies of the most recent count entries, oldest
// first. A count of zero or less returns the whole log.
func (a *Account) Transactions(count int) []*Transaction {
	a.mu.Lock()
	defer a.mu.Unlock()
	start := 0
	if count > 0 && count < len(a.txns) {
		start = len(a.txns) - count
	}
	out := make([]*Transaction, 0, len(a.txns)-start)
	for _, t := range a.txns[start:] {
		out = append(out, t.clone())
	}
	return out
}

// LastTransaction returns the newest entry, or nil for an empty log.
func (a *Account) LastTransaction() *Transaction {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.txns) == 0 {
		return nil
	}
	return a.txns[len(a.txns)-1].clone()
}

func (a *Account) TransactionCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.txns)
}

// rollover starts a new usage day when the calendar date has changed.
func (a *Account) rollover(now time.Time) {
	day := now.Format(dayLayout)
	if a.dailyResetDate != day {
		a.dailyUsed = decimal.Zero
		a.dailyResetDate = day
	}
}

// checkDebit validates a debit of amount through ch without mutating
// anything. cash adds the ATM reservoir check.
func (a *Account) checkDebit(ch Channel, amount decimal.Decimal, cash bool) error {
	if !amount.IsPositive() {
		return apperror.ErrInvalidAmount()
	}
	if limit, ok := a.transactionCap(); ok && amount.GreaterThan(limit) {
		return apperror.ErrTransactionLimitExceeded()
	}
	capped := ch.Kind().IsCapped()
	if capped && a.dailyUsed.Add(amount).GreaterThan(a.dailyCap()) {
		return apperror.ErrDailyLimitExceeded()
	}
	if a.balance.LessThan(amount) {
		return apperror.ErrInsufficientFunds()
	}
	if capped && amount.GreaterThan(ChannelTransactionCap) {
		return apperror.ErrChannelLimitExceeded()
	}
	if atm, ok := ch.base().(*ATM); ok {
		if a.card != nil && a.balance.Sub(amount).LessThan(a.card.AnnualFee()) {
			return apperror.ErrFeeHeadroom()
		}
		if cash && !atm.hasCash(amount) {
			return apperror.ErrInsufficientCash()
		}
	}
	return nil
}

func (a *Account) debit(kind ChannelKind, amount decimal.Decimal, now time.Time) {
	a.balance = a.balance.Sub(amount)
	if kind.IsCapped() {
		a.dailyUsed = a.dailyUsed.Add(amount)
	}
	if a.kind == AccountKindFixed && now.Before(a.maturityDate) {
		a.withdrawnEarly = true
	}
}

func (a *Account) credit(t TransactionType, kind ChannelKind, channelID string, amount decimal.Decimal, counterparty string) *Transaction {
	a.balance = a.balance.Add(amount)
	return a.record(t, kind, channelID, amount, counterparty, a.clock())
}

func (a *Account) record(t TransactionType, kind ChannelKind, channelID string, amount decimal.Decimal, counterparty string, at time.Time) *Transaction {
	txn := &Transaction{
		ID:           uuid.New(),
		Seq:          len(a.txns) + 1,
		AccountNo:    a.number,
		Type:         t,
		ChannelKind:  kind,
		ChannelID:    channelID,
		Amount:       amount,
		Balance:      a.balance,
		Counterparty: counterparty,
		CreatedAt:    at,
	}
	a.txns = append(a.txns, txn)
	return txn.clone()
}

// lockPair locks two distinct accounts in account-number order and returns
// the matching unlock.
func lockPair(x, y *Account) func() {
	first, second := x, y
	if second.number < first.number {
		first, second = second, first
	}
	first.mu.Lock()
	second.mu.Lock()
	return func() {
		second.mu.Unlock()
		first.mu.Unlock()
	}
}
