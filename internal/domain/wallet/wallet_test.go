package wallet

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceDelta(t *testing.T) {
	amount := decimal.NewFromFloat(10)

	tests := []struct {
		txType TransactionType
		want   decimal.Decimal
	}{
		{TypeDeposit, amount},
		{TypeRefund, amount},
		{TypeWithdraw, amount.Neg()},
		{TypePurchase, amount.Neg()},
	}

	for _, tt := range tests {
		t.Run(tt.txType.String(), func(t *testing.T) {
			assert.True(t, tt.txType.BalanceDelta(amount).Equal(tt.want))
		})
	}
}

func TestNewTransaction(t *testing.T) {
	tx, err := NewTransaction(7, 3, TypeDeposit, decimal.NewFromFloat(50), "top up")
	require.NoError(t, err)

	assert.Equal(t, int64(7), tx.UserID())
	assert.Equal(t, int64(3), tx.OrderID())
	assert.Equal(t, "completed", tx.Status())
	assert.True(t, tx.Amount().Equal(decimal.NewFromFloat(50)))
}

func TestNewTransaction_Validation(t *testing.T) {
	_, err := NewTransaction(7, 0, TransactionType("bonus"), decimal.NewFromFloat(1), "")
	assert.ErrorIs(t, err, ErrTransactionTypeInvalid)

	_, err = NewTransaction(0, 0, TypeDeposit, decimal.NewFromFloat(1), "")
	assert.ErrorIs(t, err, ErrUserIDInvalid)

	_, err = NewTransaction(7, 0, TypeDeposit, decimal.NewFromFloat(-1), "")
	assert.ErrorIs(t, err, ErrAmountNotPositive)
}
