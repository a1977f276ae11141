package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/DoomsdayProd/ccshop-panel/internal/domain/entries"
	"github.com/DoomsdayProd/ccshop-panel/internal/domain/users"
	"github.com/DoomsdayProd/ccshop-panel/internal/domain/wallet"
	"github.com/DoomsdayProd/ccshop-panel/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEntry(t *testing.T, number, brand string, price string) *entries.Entry {
	t.Helper()

	entry, err := entries.NewEntry(entries.Card{Number: number, Brand: brand},
		entries.DataFormatFull, decimal.RequireFromString(price))
	require.NoError(t, err)

	return entry
}

func TestEntryCRUD(t *testing.T) {
	store := NewStorage()
	ctx := context.Background()

	created, err := store.CreateEntry(ctx, mustEntry(t, "4111111111111111", "Visa", "10.00"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID())

	got, err := store.GetEntry(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, created.ID(), got.ID())

	newPrice := decimal.RequireFromString("12.50")
	updated, err := store.UpdateEntry(ctx, created.ID(), storage.EntryUpdate{Price: &newPrice})
	require.NoError(t, err)
	assert.True(t, updated.Price().Equal(newPrice))

	require.NoError(t, store.DeleteEntry(ctx, created.ID()))

	_, err = store.GetEntry(ctx, created.ID())
	assert.ErrorIs(t, err, storage.ErrEntryNotFound)
	assert.ErrorIs(t, store.DeleteEntry(ctx, created.ID()), storage.ErrEntryNotFound)
}

func TestGetEntries_Filters(t *testing.T) {
	store := NewStorage()
	ctx := context.Background()

	_, err := store.CreateEntry(ctx, mustEntry(t, "4111111111111111", "Visa", "10.00"))
	require.NoError(t, err)

	mastercard, err := store.CreateEntry(ctx, mustEntry(t, "5500005555555559", "Mastercard", "12.00"))
	require.NoError(t, err)

	sold := entries.StatusSold
	_, err = store.UpdateEntry(ctx, mastercard.ID(), storage.EntryUpdate{Status: &sold})
	require.NoError(t, err)

	available, total, err := store.GetEntries(ctx, storage.EntryFilter{Status: entries.StatusAvailable})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, available, 1)
	assert.Equal(t, "Visa", available[0].Card().Brand)

	byBrand, total, err := store.GetEntries(ctx, storage.EntryFilter{Search: "master"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, byBrand, 1)
	assert.Equal(t, "Mastercard", byBrand[0].Card().Brand)
}

func TestGetEntries_Pagination(t *testing.T) {
	store := NewStorage()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := store.CreateEntry(ctx, mustEntry(t, "4111111111111111", "Visa", "10.00"))
		require.NoError(t, err)
	}

	page, total, err := store.GetEntries(ctx, storage.EntryFilter{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, page, 1)

	page, total, err = store.GetEntries(ctx, storage.EntryFilter{Limit: 2, Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, page)
}

func TestGetEntriesByStatus(t *testing.T) {
	store := NewStorage()
	ctx := context.Background()

	first, err := store.CreateEntry(ctx, mustEntry(t, "4111111111111111", "Visa", "10.00"))
	require.NoError(t, err)

	_, err = store.CreateEntry(ctx, mustEntry(t, "5500005555555559", "Mastercard", "12.00"))
	require.NoError(t, err)

	reserved := entries.StatusReserved
	_, err = store.UpdateEntry(ctx, first.ID(), storage.EntryUpdate{Status: &reserved})
	require.NoError(t, err)

	matched, err := store.GetEntriesByStatus(ctx, entries.StatusReserved, entries.StatusSold)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, first.ID(), matched[0].ID())
}

func TestFindOrCreateUserByTelegramID(t *testing.T) {
	store := NewStorage()
	ctx := context.Background()

	first, err := store.FindOrCreateUserByTelegramID(ctx, 42, users.Profile{Username: "buyer"})
	require.NoError(t, err)

	second, err := store.FindOrCreateUserByTelegramID(ctx, 42, users.Profile{Username: "other"})
	require.NoError(t, err)

	assert.Equal(t, first.ID(), second.ID())
	assert.Equal(t, "buyer", second.Profile().Username)

	_, total, err := store.GetUsers(ctx, storage.UserFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestCreateUser_Duplicate(t *testing.T) {
	store := NewStorage()
	ctx := context.Background()

	usr, err := users.NewUser(42, users.Profile{})
	require.NoError(t, err)

	_, err = store.CreateUser(ctx, usr)
	require.NoError(t, err)

	dup, err := users.NewUser(42, users.Profile{})
	require.NoError(t, err)

	_, err = store.CreateUser(ctx, dup)
	assert.ErrorIs(t, err, storage.ErrUserAlreadyExists)
}

func TestAcceptUserAgreement(t *testing.T) {
	store := NewStorage()
	ctx := context.Background()

	at := time.Now()

	usr, err := store.AcceptUserAgreement(ctx, 42, users.Profile{Username: "buyer"}, at)
	require.NoError(t, err)
	assert.True(t, usr.AgreedToTerms())
	assert.Equal(t, at, usr.AgreedAt())

	again, err := store.AcceptUserAgreement(ctx, 42, users.Profile{}, at.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, usr.ID(), again.ID())

	_, total, err := store.GetUsers(ctx, storage.UserFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestCreateWalletTransaction(t *testing.T) {
	store := NewStorage()
	ctx := context.Background()

	usr, err := users.NewUser(42, users.Profile{})
	require.NoError(t, err)

	created, err := store.CreateUser(ctx, usr)
	require.NoError(t, err)

	deposit, err := wallet.NewTransaction(created.ID(), 0, wallet.TypeDeposit,
		decimal.RequireFromString("100.00"), "top up")
	require.NoError(t, err)

	_, updated, err := store.CreateWalletTransaction(ctx, deposit)
	require.NoError(t, err)
	assert.True(t, updated.WalletBalance().Equal(decimal.RequireFromString("100.00")))

	purchase, err := wallet.NewTransaction(created.ID(), 0, wallet.TypePurchase,
		decimal.RequireFromString("30.00"), "order")
	require.NoError(t, err)

	_, updated, err = store.CreateWalletTransaction(ctx, purchase)
	require.NoError(t, err)
	assert.True(t, updated.WalletBalance().Equal(decimal.RequireFromString("70.00")))

	items, total, err := store.GetWalletTransactions(ctx, storage.WalletFilter{UserID: created.ID()})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, items, 2)

	deposits, total, err := store.GetWalletTransactions(ctx, storage.WalletFilter{Type: wallet.TypeDeposit})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, deposits, 1)
	assert.Equal(t, wallet.TypeDeposit, deposits[0].Type())
}

func TestCreateWalletTransaction_UserMissing(t *testing.T) {
	store := NewStorage()

	tx, err := wallet.NewTransaction(9000, 0, wallet.TypeDeposit, decimal.RequireFromString("1.00"), "")
	require.NoError(t, err)

	_, _, err = store.CreateWalletTransaction(context.Background(), tx)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestStockStats(t *testing.T) {
	store := NewStorage()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.CreateEntry(ctx, mustEntry(t, "4111111111111111", "Visa", "10.00"))
		require.NoError(t, err)
	}

	sold := entries.StatusSold
	_, err := store.UpdateEntry(ctx, 1, storage.EntryUpdate{Status: &sold})
	require.NoError(t, err)

	stats, err := store.GetStockStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Available)
	assert.Zero(t, stats.Reserved)
	assert.Equal(t, 1, stats.Sold)
}

func TestUserStats(t *testing.T) {
	store := NewStorage()
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		usr, err := users.NewUser(i, users.Profile{})
		require.NoError(t, err)

		_, err = store.CreateUser(ctx, usr)
		require.NoError(t, err)
	}

	banned := users.StatusBanned
	_, err := store.UpdateUser(ctx, 1, storage.UserUpdate{Status: &banned})
	require.NoError(t, err)

	stats, err := store.GetUserStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalUsers)
	assert.Equal(t, 2, stats.ActiveUsers)
	assert.Equal(t, 1, stats.BannedUsers)
	assert.Equal(t, 3, stats.NewToday)
}
