package orders

import (
	"testing"
	"time"

	"github.com/DoomsdayProd/ccshop-panel/internal/domain/entries"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder(t *testing.T) {
	ord, err := NewOrder(7, 42, 3, PaymentMethodInvoice)
	require.NoError(t, err)

	assert.Equal(t, PaymentStatusPending, ord.PaymentStatus())
	assert.Equal(t, int64(7), ord.UserID())
	assert.Equal(t, int64(42), ord.TelegramUserID())
	assert.Equal(t, int64(3), ord.DataEntryID())
	assert.True(t, ord.TotalAmount().IsZero())
}

func TestNewOrder_Validation(t *testing.T) {
	tests := []struct {
		name           string
		userID         int64
		telegramUserID int64
		dataEntryID    int64
		method         PaymentMethod
		wantErr        error
	}{
		{
			name:        "invalid method",
			userID:      1,
			dataEntryID: 1,
			method:      PaymentMethod("cash"),
			wantErr:     ErrPaymentMethodInvalid,
		},
		{
			name:    "missing entry",
			userID:  1,
			method:  PaymentMethodInvoice,
			wantErr: ErrDataEntryIDInvalid,
		},
		{
			name:        "missing user refs",
			dataEntryID: 1,
			method:      PaymentMethodCrypto,
			wantErr:     ErrUserRefMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrder(tt.userID, tt.telegramUserID, tt.dataEntryID, tt.method)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewOrder_TelegramRefOnly(t *testing.T) {
	ord, err := NewOrder(0, 42, 1, PaymentMethodCrypto)
	require.NoError(t, err)
	assert.Zero(t, ord.UserID())
}

func TestEntryStatusForPayment(t *testing.T) {
	tests := []struct {
		status     PaymentStatus
		wantStatus entries.Status
		wantMapped bool
	}{
		{PaymentStatusPending, entries.StatusReserved, true},
		{PaymentStatusCompleted, entries.StatusSold, true},
		{PaymentStatusCancelled, entries.StatusAvailable, true},
		{PaymentStatusFailed, entries.StatusAvailable, true},
		{PaymentStatusProcessing, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			status, mapped := EntryStatusForPayment(tt.status)
			assert.Equal(t, tt.wantMapped, mapped)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestRestoreOrder_InvalidStatus(t *testing.T) {
	now := time.Now()

	_, err := RestoreOrder(1, 1, 42, 1, PaymentMethodInvoice, PaymentStatus("bogus"),
		decimal.Zero, "", "", now, now)
	assert.ErrorIs(t, err, ErrPaymentStatusInvalid)
}

func TestValidatePaymentStatus(t *testing.T) {
	for _, status := range []PaymentStatus{
		PaymentStatusPending, PaymentStatusProcessing, PaymentStatusCompleted,
		PaymentStatusCancelled, PaymentStatusFailed,
	} {
		assert.NoError(t, ValidatePaymentStatus(status))
	}

	assert.ErrorIs(t, ValidatePaymentStatus("refunded"), ErrPaymentStatusInvalid)
}
