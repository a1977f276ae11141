package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DoomsdayProd/ccshop-panel/internal/telegram"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessenger struct {
	sent    []telegram.OutgoingMessage
	failFor map[int64]error
}

func (f *fakeMessenger) SendMessage(_ context.Context, msg telegram.OutgoingMessage) error {
	if err, ok := f.failFor[msg.ChatID]; ok {
		return err
	}

	f.sent = append(f.sent, msg)

	return nil
}

func purchaseEvent() PurchaseEvent {
	return PurchaseEvent{
		OrderID:        1,
		UserID:         7,
		TelegramUserID: 42,
		DataEntryID:    3,
		PaymentMethod:  "invoice",
		Amount:         decimal.RequireFromString("25.99"),
		Timestamp:      time.Now(),
	}
}

func TestNotifyPurchase(t *testing.T) {
	messenger := &fakeMessenger{}
	dispatcher := New(messenger, WithAdminChatID(999))

	res := dispatcher.NotifyPurchase(context.Background(), purchaseEvent())

	assert.True(t, res.AdminNotified)
	assert.True(t, res.UserNotified)

	require.Len(t, messenger.sent, 2)
	assert.Equal(t, int64(999), messenger.sent[0].ChatID)
	assert.Contains(t, messenger.sent[0].Text, "New Purchase")
	assert.Contains(t, messenger.sent[0].Text, "$25.99")
	assert.Equal(t, int64(42), messenger.sent[1].ChatID)
	assert.Contains(t, messenger.sent[1].Text, "order #1")
}

func TestNotifyPurchase_NoAdminChat(t *testing.T) {
	messenger := &fakeMessenger{}
	dispatcher := New(messenger)

	res := dispatcher.NotifyPurchase(context.Background(), purchaseEvent())

	assert.False(t, res.AdminNotified)
	assert.True(t, res.UserNotified)
	require.Len(t, messenger.sent, 1)
	assert.Equal(t, int64(42), messenger.sent[0].ChatID)
}

func TestNotifyPurchase_UserSendFails(t *testing.T) {
	messenger := &fakeMessenger{failFor: map[int64]error{42: errors.New("blocked")}}
	dispatcher := New(messenger, WithAdminChatID(999))

	res := dispatcher.NotifyPurchase(context.Background(), purchaseEvent())

	assert.True(t, res.AdminNotified)
	assert.False(t, res.UserNotified)
}

func TestNotifyPurchase_Disabled(t *testing.T) {
	messenger := &fakeMessenger{}
	dispatcher := New(messenger, WithAdminChatID(999), WithEnabled(false))

	res := dispatcher.NotifyPurchase(context.Background(), purchaseEvent())

	assert.False(t, res.AdminNotified)
	assert.False(t, res.UserNotified)
	assert.Empty(t, messenger.sent)
}

func TestNotifyOrderUpdate(t *testing.T) {
	messenger := &fakeMessenger{}
	dispatcher := New(messenger, WithAdminChatID(999))

	res := dispatcher.NotifyOrderUpdate(context.Background(), StatusEvent{
		OrderID:        1,
		UserID:         7,
		TelegramUserID: 42,
		Status:         "completed",
		Amount:         decimal.RequireFromString("25.99"),
		Timestamp:      time.Now(),
	})

	assert.True(t, res.AdminNotified)
	assert.True(t, res.UserNotified)

	require.Len(t, messenger.sent, 2)
	assert.Contains(t, messenger.sent[0].Text, "Status: completed")
	assert.Contains(t, messenger.sent[1].Text, "Order #1")
}
