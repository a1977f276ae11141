package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/DoomsdayProd/ccshop-panel/internal/domain/entries"
	"github.com/DoomsdayProd/ccshop-panel/internal/domain/orders"
	"github.com/DoomsdayProd/ccshop-panel/internal/notifier"
	"github.com/DoomsdayProd/ccshop-panel/internal/storage"
	"github.com/DoomsdayProd/ccshop-panel/internal/storage/inmemory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNotifier struct {
	mu        sync.Mutex
	purchases []notifier.PurchaseEvent
	updates   []notifier.StatusEvent
	result    notifier.Result
}

func (s *stubNotifier) NotifyPurchase(_ context.Context, event notifier.PurchaseEvent) notifier.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purchases = append(s.purchases, event)

	return s.result
}

func (s *stubNotifier) NotifyOrderUpdate(_ context.Context, event notifier.StatusEvent) notifier.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updates = append(s.updates, event)

	return s.result
}

func seedEntry(t *testing.T, store *inmemory.Storage, price string) *entries.Entry {
	t.Helper()

	entry, err := entries.NewEntry(entries.Card{Number: "4111111111111111"}, entries.DataFormatFull, decimal.RequireFromString(price))
	require.NoError(t, err)

	created, err := store.CreateEntry(context.Background(), entry)
	require.NoError(t, err)

	return created
}

func TestCreateOrder(t *testing.T) {
	store := inmemory.NewStorage()
	notif := &stubNotifier{result: notifier.Result{UserNotified: true, AdminNotified: true}}
	controller := NewController(store, WithNotifier(notif))

	entry := seedEntry(t, store, "25.99")

	res, err := controller.CreateOrder(context.Background(), CreateOrderRequest{
		TelegramUserID: 42,
		Username:       "buyer",
		DataEntryID:    entry.ID(),
		PaymentMethod:  orders.PaymentMethodInvoice,
	})
	require.NoError(t, err)

	assert.Equal(t, orders.PaymentStatusPending, res.Order.PaymentStatus())
	assert.True(t, res.Order.TotalAmount().Equal(decimal.RequireFromString("25.99")))
	assert.Equal(t, entries.StatusReserved, res.Entry.Status())
	assert.True(t, res.UserNotified)
	assert.True(t, res.AdminNotified)

	usr, err := store.GetUserByTelegramID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 1, usr.TotalOrders())
	assert.Equal(t, usr.ID(), res.Order.UserID())

	require.Len(t, notif.purchases, 1)
	assert.Equal(t, res.Order.ID(), notif.purchases[0].OrderID)
}

func TestCreateOrder_EntryUnavailable(t *testing.T) {
	store := inmemory.NewStorage()
	controller := NewController(store)

	entry := seedEntry(t, store, "10.00")

	sold := entries.StatusSold
	_, err := store.UpdateEntry(context.Background(), entry.ID(), storage.EntryUpdate{Status: &sold})
	require.NoError(t, err)

	_, err = controller.CreateOrder(context.Background(), CreateOrderRequest{
		TelegramUserID: 42,
		DataEntryID:    entry.ID(),
		PaymentMethod:  orders.PaymentMethodInvoice,
	})
	require.ErrorIs(t, err, storage.ErrEntryUnavailable)

	_, total, err := store.GetOrders(context.Background(), storage.OrderFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCreateOrder_EntryMissing(t *testing.T) {
	store := inmemory.NewStorage()
	controller := NewController(store)

	_, err := controller.CreateOrder(context.Background(), CreateOrderRequest{
		TelegramUserID: 42,
		DataEntryID:    9000,
		PaymentMethod:  orders.PaymentMethodCrypto,
	})
	require.ErrorIs(t, err, storage.ErrEntryUnavailable)
}

func TestCreateOrder_SnapshotSurvivesPriceEdit(t *testing.T) {
	store := inmemory.NewStorage()
	controller := NewController(store)

	entry := seedEntry(t, store, "25.99")

	res, err := controller.CreateOrder(context.Background(), CreateOrderRequest{
		TelegramUserID: 42,
		DataEntryID:    entry.ID(),
		PaymentMethod:  orders.PaymentMethodCrypto,
	})
	require.NoError(t, err)

	newPrice := decimal.RequireFromString("99.99")
	_, err = store.UpdateEntry(context.Background(), entry.ID(), storage.EntryUpdate{Price: &newPrice})
	require.NoError(t, err)

	ord, err := store.GetOrder(context.Background(), res.Order.ID())
	require.NoError(t, err)
	assert.True(t, ord.TotalAmount().Equal(decimal.RequireFromString("25.99")))
}

func TestCreateOrder_ConcurrentSingleWinner(t *testing.T) {
	store := inmemory.NewStorage()
	controller := NewController(store)

	entry := seedEntry(t, store, "5.00")

	const attempts = 25

	var wg sync.WaitGroup

	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			_, err := controller.CreateOrder(context.Background(), CreateOrderRequest{
				TelegramUserID: int64(100 + i),
				DataEntryID:    entry.ID(),
				PaymentMethod:  orders.PaymentMethodInvoice,
			})
			errs[i] = err
		}(i)
	}

	wg.Wait()

	var won, lost int

	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, storage.ErrEntryUnavailable):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, won)
	assert.Equal(t, attempts-1, lost)

	reserved, err := store.GetEntry(context.Background(), entry.ID())
	require.NoError(t, err)
	assert.Equal(t, entries.StatusReserved, reserved.Status())
}

func TestCreateOrder_ConcurrentSameTelegramUser(t *testing.T) {
	store := inmemory.NewStorage()
	controller := NewController(store)

	const attempts = 10

	ids := make([]int64, attempts)
	for i := range ids {
		ids[i] = seedEntry(t, store, "1.00").ID()
	}

	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			_, err := controller.CreateOrder(context.Background(), CreateOrderRequest{
				TelegramUserID: 42,
				DataEntryID:    ids[i],
				PaymentMethod:  orders.PaymentMethodInvoice,
			})
			require.NoError(t, err)
		}(i)
	}

	wg.Wait()

	_, total, err := store.GetUsers(context.Background(), storage.UserFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total, "same telegram id must map to a single user")

	usr, err := store.GetUserByTelegramID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, attempts, usr.TotalOrders())
}

func createPendingOrder(t *testing.T, controller *Controller, store *inmemory.Storage, price string) (*orders.Order, *entries.Entry) {
	t.Helper()

	entry := seedEntry(t, store, price)

	res, err := controller.CreateOrder(context.Background(), CreateOrderRequest{
		TelegramUserID: 42,
		DataEntryID:    entry.ID(),
		PaymentMethod:  orders.PaymentMethodInvoice,
	})
	require.NoError(t, err)

	return res.Order, res.Entry
}

func statusPtr(s orders.PaymentStatus) *orders.PaymentStatus {
	return &s
}

func TestTransitionOrderStatus_Completed(t *testing.T) {
	store := inmemory.NewStorage()
	notif := &stubNotifier{}
	controller := NewController(store, WithNotifier(notif))

	ord, entry := createPendingOrder(t, controller, store, "25.99")

	res, err := controller.TransitionOrderStatus(context.Background(), ord.ID(), storage.OrderUpdate{
		PaymentStatus: statusPtr(orders.PaymentStatusCompleted),
	})
	require.NoError(t, err)
	assert.Equal(t, orders.PaymentStatusCompleted, res.Order.PaymentStatus())

	soldEntry, err := store.GetEntry(context.Background(), entry.ID())
	require.NoError(t, err)
	assert.Equal(t, entries.StatusSold, soldEntry.Status())

	usr, err := store.GetUserByTelegramID(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, usr.TotalSpent().Equal(decimal.RequireFromString("25.99")))

	require.Len(t, notif.updates, 1)
	assert.Equal(t, "completed", notif.updates[0].Status)
}

func TestTransitionOrderStatus_RepeatCompletedIsNoOp(t *testing.T) {
	store := inmemory.NewStorage()
	controller := NewController(store)

	ord, _ := createPendingOrder(t, controller, store, "25.99")

	_, err := controller.TransitionOrderStatus(context.Background(), ord.ID(), storage.OrderUpdate{
		PaymentStatus: statusPtr(orders.PaymentStatusCompleted),
	})
	require.NoError(t, err)

	_, err = controller.TransitionOrderStatus(context.Background(), ord.ID(), storage.OrderUpdate{
		PaymentStatus: statusPtr(orders.PaymentStatusCompleted),
	})
	require.ErrorIs(t, err, storage.ErrNoFieldsToUpdate)

	usr, err := store.GetUserByTelegramID(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, usr.TotalSpent().Equal(decimal.RequireFromString("25.99")),
		"repeat completion must not double-count total_spent")
}

func TestTransitionOrderStatus_CancelReleasesEntry(t *testing.T) {
	for _, target := range []orders.PaymentStatus{orders.PaymentStatusCancelled, orders.PaymentStatusFailed} {
		t.Run(target.String(), func(t *testing.T) {
			store := inmemory.NewStorage()
			controller := NewController(store)

			ord, entry := createPendingOrder(t, controller, store, "10.00")

			_, err := controller.TransitionOrderStatus(context.Background(), ord.ID(), storage.OrderUpdate{
				PaymentStatus: statusPtr(target),
			})
			require.NoError(t, err)

			released, err := store.GetEntry(context.Background(), entry.ID())
			require.NoError(t, err)
			assert.Equal(t, entries.StatusAvailable, released.Status())

			usr, err := store.GetUserByTelegramID(context.Background(), 42)
			require.NoError(t, err)
			assert.True(t, usr.TotalSpent().IsZero())
		})
	}
}

func TestTransitionOrderStatus_ProcessingKeepsEntry(t *testing.T) {
	store := inmemory.NewStorage()
	controller := NewController(store)

	ord, entry := createPendingOrder(t, controller, store, "10.00")

	_, err := controller.TransitionOrderStatus(context.Background(), ord.ID(), storage.OrderUpdate{
		PaymentStatus: statusPtr(orders.PaymentStatusProcessing),
	})
	require.NoError(t, err)

	unchanged, err := store.GetEntry(context.Background(), entry.ID())
	require.NoError(t, err)
	assert.Equal(t, entries.StatusReserved, unchanged.Status())
}

func TestTransitionOrderStatus_BackToPendingReservesEntry(t *testing.T) {
	store := inmemory.NewStorage()
	controller := NewController(store)

	ord, entry := createPendingOrder(t, controller, store, "10.00")

	_, err := controller.TransitionOrderStatus(context.Background(), ord.ID(), storage.OrderUpdate{
		PaymentStatus: statusPtr(orders.PaymentStatusCancelled),
	})
	require.NoError(t, err)

	_, err = controller.TransitionOrderStatus(context.Background(), ord.ID(), storage.OrderUpdate{
		PaymentStatus: statusPtr(orders.PaymentStatusPending),
	})
	require.NoError(t, err)

	reserved, err := store.GetEntry(context.Background(), entry.ID())
	require.NoError(t, err)
	assert.Equal(t, entries.StatusReserved, reserved.Status())
}

func TestTransitionOrderStatus_OrderNotFound(t *testing.T) {
	store := inmemory.NewStorage()
	controller := NewController(store)

	_, err := controller.TransitionOrderStatus(context.Background(), 9000, storage.OrderUpdate{
		PaymentStatus: statusPtr(orders.PaymentStatusCompleted),
	})
	require.ErrorIs(t, err, storage.ErrOrderNotFound)
}

func TestTransitionOrderStatus_EmptyUpdate(t *testing.T) {
	store := inmemory.NewStorage()
	controller := NewController(store)

	ord, _ := createPendingOrder(t, controller, store, "10.00")

	_, err := controller.TransitionOrderStatus(context.Background(), ord.ID(), storage.OrderUpdate{})
	require.ErrorIs(t, err, storage.ErrNoFieldsToUpdate)
}

func TestTransitionOrderStatus_FieldEditWithoutCascade(t *testing.T) {
	store := inmemory.NewStorage()
	notif := &stubNotifier{}
	controller := NewController(store, WithNotifier(notif))

	ord, entry := createPendingOrder(t, controller, store, "10.00")

	invoiceID := "inv-7"
	res, err := controller.TransitionOrderStatus(context.Background(), ord.ID(), storage.OrderUpdate{
		InvoiceID: &invoiceID,
	})
	require.NoError(t, err)
	assert.Equal(t, "inv-7", res.Order.InvoiceID())
	assert.Equal(t, orders.PaymentStatusPending, res.Order.PaymentStatus())

	unchanged, err := store.GetEntry(context.Background(), entry.ID())
	require.NoError(t, err)
	assert.Equal(t, entries.StatusReserved, unchanged.Status())

	assert.Empty(t, notif.updates, "field-only edits must not emit status events")
}

func TestTransitionOrderStatus_InvalidStatus(t *testing.T) {
	store := inmemory.NewStorage()
	controller := NewController(store)

	ord, _ := createPendingOrder(t, controller, store, "10.00")

	bogus := orders.PaymentStatus("refunded")
	_, err := controller.TransitionOrderStatus(context.Background(), ord.ID(), storage.OrderUpdate{
		PaymentStatus: &bogus,
	})
	require.ErrorIs(t, err, orders.ErrPaymentStatusInvalid)
}

func TestCreateOrder_NotificationFailureDoesNotFail(t *testing.T) {
	store := inmemory.NewStorage()
	notif := &stubNotifier{result: notifier.Result{}}
	controller := NewController(store, WithNotifier(notif))

	entry := seedEntry(t, store, "10.00")

	res, err := controller.CreateOrder(context.Background(), CreateOrderRequest{
		TelegramUserID: 42,
		DataEntryID:    entry.ID(),
		PaymentMethod:  orders.PaymentMethodInvoice,
	})
	require.NoError(t, err)
	assert.False(t, res.UserNotified)
	assert.False(t, res.AdminNotified)

	ord, err := store.GetOrder(context.Background(), res.Order.ID())
	require.NoError(t, err)
	assert.Equal(t, orders.PaymentStatusPending, ord.PaymentStatus())
}
