package service

import (
	"context"
	"errors"
	"testing"

	"retail-bank-ledger/internal/core/domain"
	"retail-bank-ledger/internal/core/ports"
	"retail-bank-ledger/internal/core/ports/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestReportingService_GetAccountSummary(t *testing.T) {
	f := newBankFixture(t)
	f.standard(t)
	svc := NewReportingService(f.bank, nil)

	summary, err := svc.GetAccountSummary(context.Background(), "1000000001")
	require.NoError(t, err)
	assert.Equal(t, "1000000001", summary.Number)
	assert.Equal(t, "Harry Potter", summary.OwnerName)

	_, err = svc.GetAccountSummary(context.Background(), "404")
	assertCode(t, err, "NF_001")
}

func TestReportingService_GetTransactions(t *testing.T) {
	f := newBankFixture(t)
	f.standard(t)
	svc := NewReportingService(f.bank, nil)
	account, _ := f.bank.AccountByNumber("1000000001")
	for i := 0; i < 3; i++ {
		account.CalculateInterest()
	}

	txns, err := svc.GetTransactions(context.Background(), "1000000001", 2)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, 2, txns[0].Seq)
	assert.Equal(t, 3, txns[1].Seq)

	all, err := svc.GetTransactions(context.Background(), "1000000001", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = svc.GetTransactions(context.Background(), "1000000001", -1)
	assertCode(t, err, "VAL_003")

	_, err = svc.GetTransactions(context.Background(), "404", 1)
	assertCode(t, err, "NF_001")
}

func TestReportingService_GetJournal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newBankFixture(t)
	f.standard(t)
	repo := mocks.NewMockJournalRepository(ctrl)
	svc := NewReportingService(f.bank, repo)
	ctx := context.Background()

	expected := []domain.Transaction{{Seq: 1, AccountNo: "1000000001"}}
	repo.EXPECT().ListByAccount(ctx, "1000000001", defaultJournalLimit).Return(expected, nil)
	entries, err := svc.GetJournal(ctx, "1000000001", 0)
	require.NoError(t, err)
	assert.Equal(t, expected, entries)

	repo.EXPECT().ListByAccount(ctx, "1000000001", maxJournalLimit).Return(nil, nil)
	_, err = svc.GetJournal(ctx, "1000000001", 10000)
	require.NoError(t, err)

	repo.EXPECT().ListByAccount(ctx, "1000000001", 5).Return(nil, errors.New("db error"))
	_, err = svc.GetJournal(ctx, "1000000001", 5)
	assertCode(t, err, "SYS_001")

	_, err = svc.GetJournal(ctx, "404", 5)
	assertCode(t, err, "NF_001")
}

func TestReportingService_GetJournal_Disabled(t *testing.T) {
	f := newBankFixture(t)
	f.standard(t)
	svc := NewReportingService(f.bank, nil)

	_, err := svc.GetJournal(context.Background(), "1000000001", 10)
	assertCode(t, err, "VAL_003")
}

func TestReportingService_CheckAccess(t *testing.T) {
	f := newBankFixture(t)
	f.standard(t)
	svc := NewReportingService(f.bank, nil)
	ctx := context.Background()

	harryATM := ports.SessionClaims{Role: ports.RoleChannel, ChannelID: "ATM-001", Principal: "4000-0001"}

	// No live session behind the token.
	assertCode(t, svc.CheckAccess(ctx, harryATM, "1000000001"), "SES_001")

	f.insert(t, "ATM-001", "4000-0001")
	assert.NoError(t, svc.CheckAccess(ctx, harryATM, "1000000001"))
	assertCode(t, svc.CheckAccess(ctx, harryATM, "2000000001"), "SES_002")
	assertCode(t, svc.CheckAccess(ctx, harryATM, "404"), "NF_001")

	// A token naming a different holder than the one at the terminal.
	stale := ports.SessionClaims{Role: ports.RoleChannel, ChannelID: "ATM-001", Principal: "4000-0009"}
	assertCode(t, svc.CheckAccess(ctx, stale, "1000000001"), "SES_004")

	unknown := ports.SessionClaims{Role: ports.RoleChannel, ChannelID: "ATM-404", Principal: "4000-0001"}
	assertCode(t, svc.CheckAccess(ctx, unknown, "1000000001"), "SES_004")

	operator := ports.SessionClaims{Role: ports.RoleOperator, Principal: "ops-1"}
	assert.NoError(t, svc.CheckAccess(ctx, operator, "2000000001"))
}

func TestReportingService_CheckAccess_CounterCoversOwnersAccounts(t *testing.T) {
	f := newBankFixture(t)
	f.standard(t)
	svc := NewReportingService(f.bank, nil)
	ctx := context.Background()

	counter, _ := f.bank.CounterByID("COUNTER-01")
	account, _ := f.bank.AccountByNumber("2000000001")
	ok, err := counter.Authenticate(account, "1-1101-12345-13-0")
	require.NoError(t, err)
	require.True(t, ok)

	hermione := ports.SessionClaims{Role: ports.RoleChannel, ChannelID: "COUNTER-01", Principal: "1-1101-12345-13-0"}
	assert.NoError(t, svc.CheckAccess(ctx, hermione, "2000000001"))
	assertCode(t, svc.CheckAccess(ctx, hermione, "1000000001"), "SES_002")
}
