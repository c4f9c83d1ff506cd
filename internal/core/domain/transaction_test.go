package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransaction_String(t *testing.T) {
	tests := []struct {
		name string
		txn  *Transaction
		want string
	}{
		{
			name: "withdraw without counterparty",
			txn: &Transaction{
				Type: TransactionTypeWithdraw, ChannelKind: ChannelKindATM, ChannelID: "ATM-001",
				Amount: d("500"), Balance: d("19500.5"),
			},
			want: "W-ATM:ATM-001-500.00-19500.50",
		},
		{
			name: "transfer out names the target",
			txn: &Transaction{
				Type: TransactionTypeTransferOut, ChannelKind: ChannelKindCounter, ChannelID: "COUNTER-01",
				Amount: d("2000"), Balance: d("18000"), Counterparty: "2000000001",
			},
			want: "TW-COUNTER:COUNTER-01-2000.00-18000.00-2000000001",
		},
		{
			name: "annual fee",
			txn: &Transaction{
				Type: TransactionTypeFee, ChannelKind: ChannelKindSystem, ChannelID: SystemChannelAnnualFee,
				Amount: d("300"), Balance: d("700"),
			},
			want: "F-SYSTEM:ANNUAL_FEE-300.00-700.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.txn.String())
		})
	}
}

func TestTransactionType_Code(t *testing.T) {
	codes := map[TransactionType]string{
		TransactionTypeDeposit:     "D",
		TransactionTypeWithdraw:    "W",
		TransactionTypeTransferOut: "TW",
		TransactionTypeTransferIn:  "TD",
		TransactionTypeInterest:    "I",
		TransactionTypePayment:     "P",
		TransactionTypeFee:         "F",
		TransactionType("OTHER"):   "OTHER",
	}
	for typ, code := range codes {
		assert.Equal(t, code, typ.Code(), string(typ))
	}
}

func TestTransactionType_IsCredit(t *testing.T) {
	assert.True(t, TransactionTypeDeposit.IsCredit())
	assert.True(t, TransactionTypeTransferIn.IsCredit())
	assert.True(t, TransactionTypeInterest.IsCredit())
	assert.False(t, TransactionTypeWithdraw.IsCredit())
	assert.False(t, TransactionTypePayment.IsCredit())
	assert.False(t, TransactionTypeFee.IsCredit())
}

func TestChannelKind_IsCapped(t *testing.T) {
	assert.True(t, ChannelKindATM.IsCapped())
	assert.True(t, ChannelKindEDC.IsCapped())
	assert.False(t, ChannelKindCounter.IsCapped())
	assert.False(t, ChannelKindSystem.IsCapped())
}

func TestBuildIdempotencyKey(t *testing.T) {
	assert.Equal(t, "withdraw:ATM-001:4000-0001:1000000001:abc",
		BuildIdempotencyKey("withdraw", "ATM-001", "4000-0001", "1000000001", "abc"))
	assert.NotEqual(t,
		BuildIdempotencyKey("withdraw", "ATM-001", "4000-0001", "1000000001", "abc"),
		BuildIdempotencyKey("withdraw", "COUNTER-01", "1-1101-12345-12-0", "1000000001", "abc"))
}
