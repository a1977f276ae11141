package storage

import (
	"context"
	"errors"
	"time"

	"github.com/DoomsdayProd/ccshop-panel/internal/domain/entries"
	"github.com/DoomsdayProd/ccshop-panel/internal/domain/orders"
	"github.com/DoomsdayProd/ccshop-panel/internal/domain/users"
	"github.com/DoomsdayProd/ccshop-panel/internal/domain/wallet"
	"github.com/shopspring/decimal"
)

var (
	ErrEntryNotFound     = errors.New("data entry not found")
	ErrEntryUnavailable  = errors.New("data entry is not available")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderConflict     = errors.New("order was modified concurrently")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrNoFieldsToUpdate  = errors.New("no fields to update")
)

// EntryFilter narrows catalog listings. Zero values mean "no filter".
type EntryFilter struct {
	Search string
	Status entries.Status
	Format entries.DataFormat
	Limit  int
	Offset int
}

// OrderFilter narrows order listings. Zero values mean "no filter".
type OrderFilter struct {
	UserID         int64
	TelegramUserID int64
	Status         orders.PaymentStatus
	Limit          int
	Offset         int
}

// UserFilter narrows user listings. Zero values mean "no filter".
type UserFilter struct {
	Search string
	Status users.Status
	Limit  int
	Offset int
}

// WalletFilter narrows wallet transaction listings.
type WalletFilter struct {
	UserID int64
	Type   wallet.TransactionType
	Limit  int
	Offset int
}

// EntryUpdate carries optional admin edits to a catalog entry. Nil fields
// are left untouched.
type EntryUpdate struct {
	Price  *decimal.Decimal
	Status *entries.Status
}

// UserUpdate carries optional admin edits to a user. Nil fields are left
// untouched.
type UserUpdate struct {
	Status        *users.Status
	WalletBalance *decimal.Decimal
}

// OrderUpdate carries the fields an order transition may change besides the
// payment status. Nil fields are left untouched.
type OrderUpdate struct {
	PaymentStatus *orders.PaymentStatus
	PaymentMethod *orders.PaymentMethod
	CryptoAddress *string
	InvoiceID     *string
}

// Empty reports whether the update carries no changes at all.
func (u OrderUpdate) Empty() bool {
	return u.PaymentStatus == nil && u.PaymentMethod == nil &&
		u.CryptoAddress == nil && u.InvoiceID == nil
}

// OrderTransition is the atomic mutation unit applied when an order changes
// payment status. The store must apply the order update, the entry status
// change and the user aggregate delta together, or not at all. The order row
// is guarded by ExpectedStatus: if the persisted status no longer matches,
// the store returns ErrOrderConflict and writes nothing.
type OrderTransition struct {
	OrderID        int64
	ExpectedStatus orders.PaymentStatus
	Update         OrderUpdate

	// Cascade derived by the lifecycle controller. EntryID/EntryStatus are
	// set together; SpentUserID/SpentDelta are set together.
	EntryID     int64
	EntryStatus entries.Status
	SpentUserID int64
	SpentDelta  decimal.Decimal
}

type EntryStorage interface {
	CreateEntry(ctx context.Context, entry *entries.Entry) (*entries.Entry, error)
	CreateEntries(ctx context.Context, batch []*entries.Entry) ([]*entries.Entry, error)
	GetEntry(ctx context.Context, id int64) (*entries.Entry, error)
	GetEntries(ctx context.Context, filter EntryFilter) ([]*entries.Entry, int, error)
	GetEntriesByStatus(ctx context.Context, statuses ...entries.Status) ([]*entries.Entry, error)
	UpdateEntry(ctx context.Context, id int64, update EntryUpdate) (*entries.Entry, error)
	DeleteEntry(ctx context.Context, id int64) error
}

type UserStorage interface {
	CreateUser(ctx context.Context, usr *users.User) (*users.User, error)
	GetUser(ctx context.Context, id int64) (*users.User, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*users.User, error)

	// FindOrCreateUserByTelegramID resolves a user by the messaging-platform
	// id, creating one when absent. Implementations must be safe against two
	// concurrent first orders for the same id: creation races on the unique
	// telegram_id constraint and the loser re-reads the winner's row.
	FindOrCreateUserByTelegramID(ctx context.Context, telegramID int64, profile users.Profile) (*users.User, error)

	GetUsers(ctx context.Context, filter UserFilter) ([]*users.User, int, error)
	UpdateUser(ctx context.Context, id int64, update UserUpdate) (*users.User, error)
	AcceptUserAgreement(ctx context.Context, telegramID int64, profile users.Profile, at time.Time) (*users.User, error)
}

type OrderStorage interface {
	// CreateOrder atomically reserves the referenced entry and records the
	// order: the entry flips available -> reserved (conditionally, under the
	// store's native concurrency control), the order is inserted pending with
	// total_amount stamped from the reserved row's price, and the owning
	// user's total_orders is incremented. If the entry is missing or not
	// available, ErrEntryUnavailable is returned and nothing is written.
	CreateOrder(ctx context.Context, order *orders.Order) (*orders.Order, *entries.Entry, error)

	GetOrder(ctx context.Context, id int64) (*orders.Order, error)
	GetOrders(ctx context.Context, filter OrderFilter) ([]*orders.Order, int, error)

	// ApplyOrderTransition applies one OrderTransition as a single atomic
	// unit and returns the updated order.
	ApplyOrderTransition(ctx context.Context, tr OrderTransition) (*orders.Order, error)
}

type WalletStorage interface {
	// CreateWalletTransaction inserts the transaction and adjusts the user's
	// wallet balance in one atomic unit.
	CreateWalletTransaction(ctx context.Context, tx *wallet.Transaction) (*wallet.Transaction, *users.User, error)
	GetWalletTransactions(ctx context.Context, filter WalletFilter) ([]*wallet.Transaction, int, error)
}

// SalesStats aggregates completed orders for the admin dashboard.
type SalesStats struct {
	TotalOrders   int
	TotalSales    decimal.Decimal
	OrdersToday   int
	SalesToday    decimal.Decimal
	PendingOrders int
}

// StockStats counts catalog entries per status.
type StockStats struct {
	Available int
	Reserved  int
	Sold      int
}

// UserStats aggregates the user ledger for the admin dashboard.
type UserStats struct {
	TotalUsers  int
	ActiveUsers int
	BannedUsers int
	NewToday    int
}

type StatsStorage interface {
	GetSalesStats(ctx context.Context) (*SalesStats, error)
	GetStockStats(ctx context.Context) (*StockStats, error)
	GetUserStats(ctx context.Context) (*UserStats, error)
}

type Storage interface {
	EntryStorage
	UserStorage
	OrderStorage
	WalletStorage
	StatsStorage
	Close() error
	Ping(ctx context.Context) error
}

func NewStorage(store Storage) Storage {
	return store
}
