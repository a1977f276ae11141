// Package bot routes Telegram webhook updates to command handlers.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/DoomsdayProd/ccshop-panel/internal/domain/orders"
	"github.com/DoomsdayProd/ccshop-panel/internal/storage"
	"github.com/DoomsdayProd/ccshop-panel/internal/telegram"
)

// Messenger is the outbound Telegram surface the dispatcher needs.
type Messenger interface {
	SendMessage(ctx context.Context, msg telegram.OutgoingMessage) error
	AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string) error
}

// OrderGetter lists orders for the /orders command.
type OrderGetter interface {
	GetOrders(ctx context.Context, filter storage.OrderFilter) ([]*orders.Order, int, error)
}

const (
	callbackOpenShop   = "open_shop"
	callbackViewOrders = "view_orders"

	recentOrdersLimit = 5
)

// relayTagRe extracts the user chat id from a relayed message header so an
// admin reply can be routed back.
var relayTagRe = regexp.MustCompile(`\[id:(\d+)\]`)

type Bot struct {
	messenger Messenger
	store     OrderGetter
	log       *slog.Logger

	appURL             string
	adminChatID        int64
	welcomeMessage     string
	helpMessage        string
	maintenanceMode    bool
	maintenanceMessage string
}

type Option func(b *Bot)

func WithLogger(log *slog.Logger) Option {
	return func(b *Bot) {
		b.log = log
	}
}

func WithAppURL(url string) Option {
	return func(b *Bot) {
		b.appURL = url
	}
}

func WithAdminChatID(chatID int64) Option {
	return func(b *Bot) {
		b.adminChatID = chatID
	}
}

func WithWelcomeMessage(msg string) Option {
	return func(b *Bot) {
		b.welcomeMessage = msg
	}
}

func WithHelpMessage(msg string) Option {
	return func(b *Bot) {
		b.helpMessage = msg
	}
}

func WithMaintenanceMode(on bool) Option {
	return func(b *Bot) {
		b.maintenanceMode = on
	}
}

func WithMaintenanceMessage(msg string) Option {
	return func(b *Bot) {
		b.maintenanceMessage = msg
	}
}

func NewBot(messenger Messenger, store OrderGetter, opts ...Option) *Bot {
	b := &Bot{
		messenger:          messenger,
		store:              store,
		log:                slog.Default(),
		welcomeMessage:     "Welcome!",
		helpMessage:        "Send /start to open the shop.",
		maintenanceMessage: "The shop is under maintenance. Please try again later.",
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// HandleUpdate dispatches a single webhook update. Errors are returned for
// logging only; the webhook endpoint always acknowledges Telegram.
func (b *Bot) HandleUpdate(ctx context.Context, update telegram.Update) error {
	switch {
	case update.CallbackQuery != nil:
		return b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		return b.handleMessage(ctx, update.Message)
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) error {
	if msg.From == nil || msg.Chat == nil {
		return nil
	}

	if b.adminChatID != 0 && msg.Chat.ID == b.adminChatID {
		return b.handleAdminMessage(ctx, msg)
	}

	if b.maintenanceMode {
		return b.reply(ctx, msg.Chat.ID, b.maintenanceMessage)
	}

	command, _, _ := strings.Cut(strings.TrimSpace(msg.Text), " ")
	command, _, _ = strings.Cut(command, "@")

	switch command {
	case "/start":
		return b.sendShopKeyboard(ctx, msg.Chat.ID, b.welcomeMessage)
	case "/shop":
		return b.sendShopKeyboard(ctx, msg.Chat.ID, "🛍 Tap the button below to browse the shop.")
	case "/orders":
		return b.sendRecentOrders(ctx, msg.Chat.ID, msg.From.ID)
	case "/help":
		return b.reply(ctx, msg.Chat.ID, b.helpMessage)
	case "/status":
		return b.reply(ctx, msg.Chat.ID, "✅ Bot is up and running.")
	}

	if strings.HasPrefix(command, "/") {
		return b.reply(ctx, msg.Chat.ID, "Unknown command. Send /help for the list of commands.")
	}

	return b.relayToAdmin(ctx, msg)
}

func (b *Bot) handleCallback(ctx context.Context, query *telegram.CallbackQuery) error {
	if err := b.messenger.AnswerCallbackQuery(ctx, query.ID, ""); err != nil {
		b.log.Error("messenger.AnswerCallbackQuery", slog.Any("error", err))
	}

	if query.Message == nil || query.Message.Chat == nil || query.From == nil {
		return nil
	}

	chatID := query.Message.Chat.ID

	if b.maintenanceMode {
		return b.reply(ctx, chatID, b.maintenanceMessage)
	}

	switch query.Data {
	case callbackOpenShop:
		return b.sendShopKeyboard(ctx, chatID, "🛍 Tap the button below to browse the shop.")
	case callbackViewOrders:
		return b.sendRecentOrders(ctx, chatID, query.From.ID)
	}

	return nil
}

// handleAdminMessage relays an admin reply back to the user whose message was
// forwarded into the admin chat.
func (b *Bot) handleAdminMessage(ctx context.Context, msg *telegram.Message) error {
	if msg.ReplyToMessage == nil || msg.Text == "" {
		return nil
	}

	match := relayTagRe.FindStringSubmatch(msg.ReplyToMessage.Text)
	if match == nil {
		return nil
	}

	userChatID, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return fmt.Errorf("strconv.ParseInt: %w", err)
	}

	return b.reply(ctx, userChatID, fmt.Sprintf("💬 Support:\n%s", msg.Text))
}

func (b *Bot) relayToAdmin(ctx context.Context, msg *telegram.Message) error {
	if b.adminChatID == 0 || msg.Text == "" {
		return nil
	}

	username := msg.From.Username
	if username == "" {
		username = strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName)
	}

	text := fmt.Sprintf("💬 Message from %s [id:%d]:\n%s", username, msg.From.ID, msg.Text)

	return b.reply(ctx, b.adminChatID, text)
}

func (b *Bot) sendShopKeyboard(ctx context.Context, chatID int64, text string) error {
	shopButton := telegram.InlineKeyboardButton{Text: "🛍 Open Shop"}
	if b.appURL != "" {
		shopButton.WebApp = &telegram.WebAppInfo{URL: b.appURL}
	} else {
		shopButton.CallbackData = callbackOpenShop
	}

	ordersButton := telegram.InlineKeyboardButton{Text: "📦 My Orders", CallbackData: callbackViewOrders}

	return b.messenger.SendMessage(ctx, telegram.OutgoingMessage{
		ChatID: chatID,
		Text:   text,
		ReplyMarkup: &telegram.InlineKeyboardMarkup{
			InlineKeyboard: [][]telegram.InlineKeyboardButton{
				{shopButton},
				{ordersButton},
			},
		},
	})
}

func (b *Bot) sendRecentOrders(ctx context.Context, chatID, telegramUserID int64) error {
	recent, _, err := b.store.GetOrders(ctx, storage.OrderFilter{
		TelegramUserID: telegramUserID,
		Limit:          recentOrdersLimit,
	})
	if err != nil {
		return fmt.Errorf("store.GetOrders: %w", err)
	}

	if len(recent) == 0 {
		return b.reply(ctx, chatID, "You have no orders yet. Send /shop to browse the catalog.")
	}

	var sb strings.Builder

	sb.WriteString("📦 Your recent orders:\n")

	for _, ord := range recent {
		fmt.Fprintf(&sb, "\n%s Order #%d - $%s (%s)",
			statusEmoji(ord.PaymentStatus()), ord.ID(),
			ord.TotalAmount().StringFixed(2), ord.PaymentStatus())
	}

	return b.reply(ctx, chatID, sb.String())
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) error {
	err := b.messenger.SendMessage(ctx, telegram.OutgoingMessage{ChatID: chatID, Text: text})
	if err != nil {
		return fmt.Errorf("messenger.SendMessage: %w", err)
	}

	return nil
}

func statusEmoji(status orders.PaymentStatus) string {
	switch status {
	case orders.PaymentStatusPending:
		return "⏳"
	case orders.PaymentStatusProcessing:
		return "🔄"
	case orders.PaymentStatusCompleted:
		return "✅"
	case orders.PaymentStatusCancelled:
		return "❌"
	case orders.PaymentStatusFailed:
		return "⚠️"
	}

	return "•"
}
