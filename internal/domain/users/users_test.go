package users

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	usr, err := NewUser(42, Profile{Username: "buyer", FirstName: "Jo"})
	require.NoError(t, err)

	assert.Equal(t, StatusActive, usr.Status())
	assert.Equal(t, int64(42), usr.TelegramID())
	assert.Equal(t, "buyer", usr.Profile().Username)
	assert.True(t, usr.WalletBalance().IsZero())
	assert.True(t, usr.TotalSpent().IsZero())
	assert.Zero(t, usr.TotalOrders())
	assert.False(t, usr.AgreedToTerms())
}

func TestNewUser_InvalidTelegramID(t *testing.T) {
	_, err := NewUser(0, Profile{})
	assert.ErrorIs(t, err, ErrTelegramIDInvalid)
}

func TestUserMutators(t *testing.T) {
	usr, err := NewUser(42, Profile{})
	require.NoError(t, err)

	usr.AddWalletBalance(decimal.NewFromFloat(100))
	usr.AddWalletBalance(decimal.NewFromFloat(-25))
	assert.True(t, usr.WalletBalance().Equal(decimal.NewFromFloat(75)))

	usr.AddTotalSpent(decimal.NewFromFloat(25.99))
	assert.True(t, usr.TotalSpent().Equal(decimal.NewFromFloat(25.99)))

	usr.IncrementTotalOrders()
	usr.IncrementTotalOrders()
	assert.Equal(t, 2, usr.TotalOrders())

	usr.SetStatus(StatusBanned)
	assert.Equal(t, StatusBanned, usr.Status())
}

func TestAcceptTerms(t *testing.T) {
	usr, err := NewUser(42, Profile{})
	require.NoError(t, err)

	at := time.Now()
	usr.AcceptTerms(at)

	assert.True(t, usr.AgreedToTerms())
	assert.Equal(t, at, usr.AgreedAt())
}

func TestRestoreUser_InvalidStatus(t *testing.T) {
	now := time.Now()

	_, err := RestoreUser(1, 42, Profile{}, decimal.Zero, decimal.Zero, 0,
		Status("ghost"), false, time.Time{}, now, now)
	assert.ErrorIs(t, err, ErrStatusInvalid)
}
