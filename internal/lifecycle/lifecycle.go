package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DoomsdayProd/ccshop-panel/internal/domain/entries"
	"github.com/DoomsdayProd/ccshop-panel/internal/domain/orders"
	"github.com/DoomsdayProd/ccshop-panel/internal/domain/users"
	"github.com/DoomsdayProd/ccshop-panel/internal/notifier"
	"github.com/DoomsdayProd/ccshop-panel/internal/storage"
)

var ErrUserLookupFailed = errors.New("user lookup failed")

// Notifier dispatches order events after a state mutation commits. Failures
// surface only as flags in the result.
type Notifier interface {
	NotifyPurchase(ctx context.Context, event notifier.PurchaseEvent) notifier.Result
	NotifyOrderUpdate(ctx context.Context, event notifier.StatusEvent) notifier.Result
}

// noopNotifier is used when no dispatcher is wired.
type noopNotifier struct{}

func (noopNotifier) NotifyPurchase(context.Context, notifier.PurchaseEvent) notifier.Result {
	return notifier.Result{}
}

func (noopNotifier) NotifyOrderUpdate(context.Context, notifier.StatusEvent) notifier.Result {
	return notifier.Result{}
}

// Controller owns every legal transition of an order's payment status and
// its cascades into the catalog and the user ledger. No other code path
// mutates entry availability or user aggregates.
type Controller struct {
	storage  storage.Storage
	notifier Notifier
	log      *slog.Logger
}

func NewController(store storage.Storage, opts ...Option) *Controller {
	controller := &Controller{
		storage:  store,
		notifier: noopNotifier{},
		log:      slog.New(&slog.JSONHandler{}),
	}

	for _, opt := range opts {
		opt(controller)
	}

	return controller
}

type Option func(c *Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.log = logger.With(slog.String("module", "lifecycle"))
	}
}

func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		c.notifier = n
	}
}

// CreateOrderRequest identifies the buyer either by internal user id or by
// telegram user id; with only the latter, the user is created on first
// order.
type CreateOrderRequest struct {
	UserID         int64
	TelegramUserID int64
	Username       string
	FirstName      string
	DataEntryID    int64
	PaymentMethod  orders.PaymentMethod
	CryptoAddress  string
	InvoiceID      string
}

type CreateOrderResult struct {
	Order         *orders.Order
	Entry         *entries.Entry
	UserNotified  bool
	AdminNotified bool
}

// CreateOrder reserves the entry and records the purchase attempt. The
// reservation, the order insert and the total_orders increment land
// atomically; the purchase notification goes out only after the commit.
func (c *Controller) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	userID := req.UserID

	if userID == 0 && req.TelegramUserID != 0 {
		usr, err := c.storage.FindOrCreateUserByTelegramID(ctx, req.TelegramUserID, users.Profile{
			Username:  req.Username,
			FirstName: req.FirstName,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUserLookupFailed, err)
		}

		userID = usr.ID()
	}

	ord, err := orders.NewOrder(userID, req.TelegramUserID, req.DataEntryID, req.PaymentMethod)
	if err != nil {
		return nil, fmt.Errorf("orders.NewOrder: %w", err)
	}

	ord.SetCryptoAddress(req.CryptoAddress)
	ord.SetInvoiceID(req.InvoiceID)

	created, entry, err := c.storage.CreateOrder(ctx, ord)
	if err != nil {
		return nil, fmt.Errorf("storage.CreateOrder: %w", err)
	}

	c.log.Info("order created",
		slog.Int64("order_id", created.ID()),
		slog.Int64("data_entry_id", entry.ID()),
		slog.String("amount", created.TotalAmount().String()),
	)

	notifyRes := c.notifier.NotifyPurchase(ctx, notifier.PurchaseEvent{
		OrderID:        created.ID(),
		UserID:         created.UserID(),
		TelegramUserID: created.TelegramUserID(),
		DataEntryID:    created.DataEntryID(),
		PaymentMethod:  created.PaymentMethod().String(),
		Amount:         created.TotalAmount(),
		Timestamp:      time.Now(),
	})

	return &CreateOrderResult{
		Order:         created,
		Entry:         entry,
		UserNotified:  notifyRes.UserNotified,
		AdminNotified: notifyRes.AdminNotified,
	}, nil
}

type TransitionResult struct {
	Order         *orders.Order
	UserNotified  bool
	AdminNotified bool
}

// TransitionOrderStatus applies a payment-status change plus any extra field
// edits as one atomic unit. The cascade into the catalog and the user
// ledger fires only when the status actually changes: repeating the current
// status does not touch the entry or total_spent, so a double "completed"
// cannot double-charge the aggregate.
func (c *Controller) TransitionOrderStatus(ctx context.Context, orderID int64, update storage.OrderUpdate) (*TransitionResult, error) {
	if update.PaymentStatus != nil {
		if err := orders.ValidatePaymentStatus(*update.PaymentStatus); err != nil {
			return nil, fmt.Errorf("orders.ValidatePaymentStatus: %w", err)
		}
	}

	// The guarded update below can miss when another transition lands
	// between our read and our write; one re-read is enough to either apply
	// on fresh state or conclude the change is a no-op.
	const attempts = 2

	var lastErr error

	for i := 0; i < attempts; i++ {
		current, err := c.storage.GetOrder(ctx, orderID)
		if err != nil {
			return nil, fmt.Errorf("storage.GetOrder: %w", err)
		}

		tr, statusChanged := buildTransition(current, update)

		if tr.Update.Empty() {
			return nil, storage.ErrNoFieldsToUpdate
		}

		updated, err := c.storage.ApplyOrderTransition(ctx, tr)
		if err != nil {
			if errors.Is(err, storage.ErrOrderConflict) {
				lastErr = err

				continue
			}

			return nil, fmt.Errorf("storage.ApplyOrderTransition: %w", err)
		}

		res := &TransitionResult{Order: updated}

		if statusChanged {
			c.log.Info("order status changed",
				slog.Int64("order_id", updated.ID()),
				slog.String("status", updated.PaymentStatus().String()),
			)

			notifyRes := c.notifier.NotifyOrderUpdate(ctx, notifier.StatusEvent{
				OrderID:        updated.ID(),
				UserID:         updated.UserID(),
				TelegramUserID: updated.TelegramUserID(),
				Status:         updated.PaymentStatus().String(),
				Amount:         updated.TotalAmount(),
				Timestamp:      time.Now(),
			})

			res.UserNotified = notifyRes.UserNotified
			res.AdminNotified = notifyRes.AdminNotified
		}

		return res, nil
	}

	return nil, fmt.Errorf("storage.ApplyOrderTransition: %w", lastErr)
}

// buildTransition derives the atomic mutation unit for an order update
// against its currently observed state.
func buildTransition(current *orders.Order, update storage.OrderUpdate) (storage.OrderTransition, bool) {
	tr := storage.OrderTransition{
		OrderID:        current.ID(),
		ExpectedStatus: current.PaymentStatus(),
		Update:         update,
	}

	statusChanged := false

	if update.PaymentStatus != nil {
		newStatus := *update.PaymentStatus

		if newStatus == current.PaymentStatus() {
			// Same target status: drop it from the update so a bare repeat
			// surfaces as "no fields to update" instead of re-running
			// cascades.
			tr.Update.PaymentStatus = nil
		} else {
			statusChanged = true

			if entryStatus, ok := orders.EntryStatusForPayment(newStatus); ok {
				tr.EntryID = current.DataEntryID()
				tr.EntryStatus = entryStatus
			}

			if newStatus == orders.PaymentStatusCompleted && current.UserID() != 0 {
				tr.SpentUserID = current.UserID()
				tr.SpentDelta = current.TotalAmount()
			}
		}
	}

	return tr, statusChanged
}
