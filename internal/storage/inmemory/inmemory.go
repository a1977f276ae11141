package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/DoomsdayProd/ccshop-panel/internal/domain/entries"
	"github.com/DoomsdayProd/ccshop-panel/internal/domain/orders"
	"github.com/DoomsdayProd/ccshop-panel/internal/domain/users"
	"github.com/DoomsdayProd/ccshop-panel/internal/domain/wallet"
	"github.com/DoomsdayProd/ccshop-panel/internal/storage"
	"github.com/shopspring/decimal"
)

var _ storage.Storage = (*Storage)(nil)

// Storage is a map-backed implementation used by tests and local runs.
// A single mutex spans all tables so that the composite operations
// (CreateOrder, ApplyOrderTransition, CreateWalletTransaction) are atomic
// the same way a database transaction makes them atomic in pgstorage.
type Storage struct {
	mu sync.Mutex

	entries      map[int64]*entries.Entry
	users        map[int64]*users.User
	usersByTgID  map[int64]int64
	orders       map[int64]*orders.Order
	transactions map[int64]*wallet.Transaction

	nextEntryID int64
	nextUserID  int64
	nextOrderID int64
	nextTxID    int64
}

func NewStorage() *Storage {
	return &Storage{
		entries:      make(map[int64]*entries.Entry),
		users:        make(map[int64]*users.User),
		usersByTgID:  make(map[int64]int64),
		orders:       make(map[int64]*orders.Order),
		transactions: make(map[int64]*wallet.Transaction),
	}
}

func (s *Storage) Close() error {
	return nil
}

func (s *Storage) Ping(_ context.Context) error {
	return nil
}

func (s *Storage) CreateEntry(_ context.Context, entry *entries.Entry) (*entries.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextEntryID++
	entry.SetID(s.nextEntryID)
	s.entries[entry.ID()] = entry

	return entry, nil
}

func (s *Storage) CreateEntries(ctx context.Context, batch []*entries.Entry) ([]*entries.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range batch {
		s.nextEntryID++
		entry.SetID(s.nextEntryID)
		s.entries[entry.ID()] = entry
	}

	return batch, nil
}

func (s *Storage) GetEntry(_ context.Context, id int64) (*entries.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, storage.ErrEntryNotFound
	}

	return entry, nil
}

func (s *Storage) GetEntries(_ context.Context, filter storage.EntryFilter) ([]*entries.Entry, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*entries.Entry

	for _, entry := range s.entries {
		if filter.Status != "" && entry.Status() != filter.Status {
			continue
		}

		if filter.Format != "" && entry.DataFormat() != filter.Format {
			continue
		}

		if filter.Search != "" && !entryMatches(entry, filter.Search) {
			continue
		}

		matched = append(matched, entry)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt().After(matched[j].CreatedAt())
	})

	total := len(matched)

	return paginate(matched, filter.Limit, filter.Offset), total, nil
}

func entryMatches(entry *entries.Entry, search string) bool {
	search = strings.ToLower(search)
	card := entry.Card()

	for _, candidate := range []string{card.CardholderName, card.BankName, card.Brand, card.Country} {
		if strings.Contains(strings.ToLower(candidate), search) {
			return true
		}
	}

	return false
}

func (s *Storage) GetEntriesByStatus(_ context.Context, statuses ...entries.Status) ([]*entries.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*entries.Entry

	for _, entry := range s.entries {
		if len(statuses) == 0 {
			matched = append(matched, entry)

			continue
		}

		for _, status := range statuses {
			if entry.Status() == status {
				matched = append(matched, entry)

				break
			}
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ID() < matched[j].ID()
	})

	return matched, nil
}

func (s *Storage) UpdateEntry(_ context.Context, id int64, update storage.EntryUpdate) (*entries.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, storage.ErrEntryNotFound
	}

	if update.Price != nil {
		entry.SetPrice(*update.Price)
	}

	if update.Status != nil {
		entry.SetStatus(*update.Status)
	}

	return entry, nil
}

func (s *Storage) DeleteEntry(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return storage.ErrEntryNotFound
	}

	delete(s.entries, id)

	return nil
}

func (s *Storage) CreateUser(_ context.Context, usr *users.User) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.createUserLocked(usr)
}

func (s *Storage) createUserLocked(usr *users.User) (*users.User, error) {
	if _, ok := s.usersByTgID[usr.TelegramID()]; ok {
		return nil, storage.ErrUserAlreadyExists
	}

	s.nextUserID++
	usr.SetID(s.nextUserID)
	s.users[usr.ID()] = usr
	s.usersByTgID[usr.TelegramID()] = usr.ID()

	return usr, nil
}

func (s *Storage) GetUser(_ context.Context, id int64) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	usr, ok := s.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}

	return usr, nil
}

func (s *Storage) GetUserByTelegramID(_ context.Context, telegramID int64) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getUserByTelegramIDLocked(telegramID)
}

func (s *Storage) getUserByTelegramIDLocked(telegramID int64) (*users.User, error) {
	id, ok := s.usersByTgID[telegramID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}

	return s.users[id], nil
}

func (s *Storage) FindOrCreateUserByTelegramID(_ context.Context, telegramID int64, profile users.Profile) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if usr, err := s.getUserByTelegramIDLocked(telegramID); err == nil {
		return usr, nil
	}

	usr, err := users.NewUser(telegramID, profile)
	if err != nil {
		return nil, err
	}

	return s.createUserLocked(usr)
}

func (s *Storage) GetUsers(_ context.Context, filter storage.UserFilter) ([]*users.User, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*users.User

	for _, usr := range s.users {
		if filter.Status != "" && usr.Status() != filter.Status {
			continue
		}

		if filter.Search != "" && !userMatches(usr, filter.Search) {
			continue
		}

		matched = append(matched, usr)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt().After(matched[j].CreatedAt())
	})

	total := len(matched)

	return paginate(matched, filter.Limit, filter.Offset), total, nil
}

func userMatches(usr *users.User, search string) bool {
	search = strings.ToLower(search)
	profile := usr.Profile()

	for _, candidate := range []string{profile.Username, profile.FirstName, profile.LastName} {
		if strings.Contains(strings.ToLower(candidate), search) {
			return true
		}
	}

	return false
}

func (s *Storage) UpdateUser(_ context.Context, id int64, update storage.UserUpdate) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	usr, ok := s.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}

	if update.Status != nil {
		usr.SetStatus(*update.Status)
	}

	if update.WalletBalance != nil {
		usr.AddWalletBalance(update.WalletBalance.Sub(usr.WalletBalance()))
	}

	return usr, nil
}

func (s *Storage) AcceptUserAgreement(_ context.Context, telegramID int64, profile users.Profile, at time.Time) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	usr, err := s.getUserByTelegramIDLocked(telegramID)
	if err != nil {
		newUsr, err := users.NewUser(telegramID, profile)
		if err != nil {
			return nil, err
		}

		usr, err = s.createUserLocked(newUsr)
		if err != nil {
			return nil, err
		}
	}

	usr.AcceptTerms(at)

	return usr, nil
}

func (s *Storage) CreateOrder(_ context.Context, ord *orders.Order) (*orders.Order, *entries.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[ord.DataEntryID()]
	if !ok || entry.Status() != entries.StatusAvailable {
		return nil, nil, storage.ErrEntryUnavailable
	}

	// Snapshot the price before flipping the entry to reserved. Everything
	// below happens under the same lock, so either all of it is visible or
	// none of it.
	ord.SetTotalAmount(entry.Price())
	entry.SetStatus(entries.StatusReserved)

	s.nextOrderID++
	ord.SetID(s.nextOrderID)
	s.orders[ord.ID()] = ord

	if usr, ok := s.users[ord.UserID()]; ok {
		usr.IncrementTotalOrders()
	}

	return ord, entry, nil
}

func (s *Storage) GetOrder(_ context.Context, id int64) (*orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ord, ok := s.orders[id]
	if !ok {
		return nil, storage.ErrOrderNotFound
	}

	return ord, nil
}

func (s *Storage) GetOrders(_ context.Context, filter storage.OrderFilter) ([]*orders.Order, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*orders.Order

	for _, ord := range s.orders {
		if filter.UserID != 0 && ord.UserID() != filter.UserID {
			continue
		}

		if filter.TelegramUserID != 0 && ord.TelegramUserID() != filter.TelegramUserID {
			continue
		}

		if filter.Status != "" && ord.PaymentStatus() != filter.Status {
			continue
		}

		matched = append(matched, ord)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt().After(matched[j].CreatedAt())
	})

	total := len(matched)

	return paginate(matched, filter.Limit, filter.Offset), total, nil
}

func (s *Storage) ApplyOrderTransition(_ context.Context, tr storage.OrderTransition) (*orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ord, ok := s.orders[tr.OrderID]
	if !ok {
		return nil, storage.ErrOrderNotFound
	}

	if ord.PaymentStatus() != tr.ExpectedStatus {
		return nil, storage.ErrOrderConflict
	}

	if tr.Update.PaymentStatus != nil {
		ord.SetPaymentStatus(*tr.Update.PaymentStatus)
	}

	if tr.Update.PaymentMethod != nil {
		// Payment method edits come from the admin panel alongside status
		// changes; the order keeps its identity and amount.
		restored, err := orders.RestoreOrder(
			ord.ID(), ord.UserID(), ord.TelegramUserID(), ord.DataEntryID(),
			*tr.Update.PaymentMethod, ord.PaymentStatus(), ord.TotalAmount(),
			ord.CryptoAddress(), ord.InvoiceID(), ord.CreatedAt(), time.Now(),
		)
		if err != nil {
			return nil, err
		}

		s.orders[ord.ID()] = restored
		ord = restored
	}

	if tr.Update.CryptoAddress != nil {
		ord.SetCryptoAddress(*tr.Update.CryptoAddress)
	}

	if tr.Update.InvoiceID != nil {
		ord.SetInvoiceID(*tr.Update.InvoiceID)
	}

	if tr.EntryID != 0 {
		if entry, ok := s.entries[tr.EntryID]; ok {
			entry.SetStatus(tr.EntryStatus)
		}
	}

	if tr.SpentUserID != 0 {
		if usr, ok := s.users[tr.SpentUserID]; ok {
			usr.AddTotalSpent(tr.SpentDelta)
		}
	}

	return ord, nil
}

func (s *Storage) CreateWalletTransaction(_ context.Context, tx *wallet.Transaction) (*wallet.Transaction, *users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	usr, ok := s.users[tx.UserID()]
	if !ok {
		return nil, nil, storage.ErrUserNotFound
	}

	s.nextTxID++
	tx.SetID(s.nextTxID)
	s.transactions[tx.ID()] = tx

	usr.AddWalletBalance(tx.Type().BalanceDelta(tx.Amount()))

	return tx, usr, nil
}

func (s *Storage) GetWalletTransactions(_ context.Context, filter storage.WalletFilter) ([]*wallet.Transaction, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*wallet.Transaction

	for _, tx := range s.transactions {
		if filter.UserID != 0 && tx.UserID() != filter.UserID {
			continue
		}

		if filter.Type != "" && tx.Type() != filter.Type {
			continue
		}

		matched = append(matched, tx)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt().After(matched[j].CreatedAt())
	})

	total := len(matched)

	return paginate(matched, filter.Limit, filter.Offset), total, nil
}

func (s *Storage) GetSalesStats(_ context.Context) (*storage.SalesStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &storage.SalesStats{
		TotalSales: decimal.Zero,
		SalesToday: decimal.Zero,
	}

	today := time.Now().Truncate(24 * time.Hour)

	for _, ord := range s.orders {
		switch ord.PaymentStatus() {
		case orders.PaymentStatusCompleted:
			stats.TotalOrders++
			stats.TotalSales = stats.TotalSales.Add(ord.TotalAmount())

			if !ord.CreatedAt().Before(today) {
				stats.OrdersToday++
				stats.SalesToday = stats.SalesToday.Add(ord.TotalAmount())
			}
		case orders.PaymentStatusPending, orders.PaymentStatusProcessing:
			stats.PendingOrders++
		}
	}

	return stats, nil
}

func (s *Storage) GetStockStats(_ context.Context) (*storage.StockStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &storage.StockStats{}

	for _, entry := range s.entries {
		switch entry.Status() {
		case entries.StatusAvailable:
			stats.Available++
		case entries.StatusReserved:
			stats.Reserved++
		case entries.StatusSold:
			stats.Sold++
		}
	}

	return stats, nil
}

func (s *Storage) GetUserStats(_ context.Context) (*storage.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &storage.UserStats{}
	today := time.Now().Truncate(24 * time.Hour)

	for _, usr := range s.users {
		stats.TotalUsers++

		switch usr.Status() {
		case users.StatusActive:
			stats.ActiveUsers++
		case users.StatusBanned:
			stats.BannedUsers++
		}

		if !usr.CreatedAt().Before(today) {
			stats.NewToday++
		}
	}

	return stats, nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}

	items = items[offset:]

	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}

	return items
}
