package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DoomsdayProd/ccshop-panel/internal/telegram"
	"github.com/shopspring/decimal"
)

// Messenger sends messages through the messaging platform. Satisfied by
// *telegram.Client.
type Messenger interface {
	SendMessage(ctx context.Context, msg telegram.OutgoingMessage) error
}

// PurchaseEvent is emitted after a successful order creation commit.
type PurchaseEvent struct {
	OrderID        int64
	UserID         int64
	TelegramUserID int64
	DataEntryID    int64
	PaymentMethod  string
	Amount         decimal.Decimal
	Timestamp      time.Time
}

// StatusEvent is emitted after a successful payment-status transition commit.
type StatusEvent struct {
	OrderID        int64
	UserID         int64
	TelegramUserID int64
	Status         string
	Amount         decimal.Decimal
	Timestamp      time.Time
}

// Result reports which parties received the notification. Dispatch is best
// effort: failures are logged and surfaced here, never returned as errors.
type Result struct {
	UserNotified  bool
	AdminNotified bool
}

// Dispatcher fans order events out to the admin chat and the buyer.
type Dispatcher struct {
	log         *slog.Logger
	messenger   Messenger
	adminChatID int64
	enabled     bool
}

type Config struct {
	logger      *slog.Logger
	adminChatID int64
	enabled     bool
}

type Option func(c *Config)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.logger = logger
	}
}

func WithAdminChatID(chatID int64) Option {
	return func(c *Config) {
		c.adminChatID = chatID
	}
}

func WithEnabled(enabled bool) Option {
	return func(c *Config) {
		c.enabled = enabled
	}
}

func New(messenger Messenger, opts ...Option) *Dispatcher {
	cfg := &Config{
		logger:  slog.New(&slog.JSONHandler{}),
		enabled: true,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &Dispatcher{
		log:         cfg.logger.With(slog.String("module", "notifier")),
		messenger:   messenger,
		adminChatID: cfg.adminChatID,
		enabled:     cfg.enabled,
	}
}

func (d *Dispatcher) NotifyPurchase(ctx context.Context, event PurchaseEvent) Result {
	if !d.enabled {
		return Result{}
	}

	var res Result

	adminText := fmt.Sprintf(
		"🛒 New Purchase!\n\nOrder ID: %d\nUser ID: %d\nData Entry ID: %d\nPayment Method: %s\nAmount: $%s\nTime: %s",
		event.OrderID, event.UserID, event.DataEntryID, event.PaymentMethod,
		event.Amount.StringFixed(2), event.Timestamp.Format(time.RFC1123),
	)

	res.AdminNotified = d.send(ctx, d.adminChatID, adminText)

	userText := fmt.Sprintf(
		"✅ Purchase Confirmed!\n\nYour order #%d has been received.\nYou will receive the data shortly.\n\nThank you for your purchase!",
		event.OrderID,
	)

	res.UserNotified = d.send(ctx, event.TelegramUserID, userText)

	return res
}

func (d *Dispatcher) NotifyOrderUpdate(ctx context.Context, event StatusEvent) Result {
	if !d.enabled {
		return Result{}
	}

	var res Result

	adminText := fmt.Sprintf(
		"📦 Order Update\n\nOrder ID: %d\nUser ID: %d\nStatus: %s\nAmount: $%s",
		event.OrderID, event.UserID, event.Status, event.Amount.StringFixed(2),
	)

	res.AdminNotified = d.send(ctx, d.adminChatID, adminText)

	userText := fmt.Sprintf(
		"📦 Order #%d update\n\nStatus: %s",
		event.OrderID, event.Status,
	)

	res.UserNotified = d.send(ctx, event.TelegramUserID, userText)

	return res
}

// send reports success as a flag. A failed notification never fails the
// operation that produced the event.
func (d *Dispatcher) send(ctx context.Context, chatID int64, text string) bool {
	if chatID == 0 {
		return false
	}

	err := d.messenger.SendMessage(ctx, telegram.OutgoingMessage{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		d.log.Error("messenger.SendMessage",
			slog.Int64("chat_id", chatID), slog.Any("error", err))

		return false
	}

	return true
}
