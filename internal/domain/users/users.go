package users

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrTelegramIDInvalid = errors.New("user telegram id is invalid")
	ErrStatusInvalid     = errors.New("user status is invalid")
)

type Status string

const (
	StatusActive   Status = "active"
	StatusBanned   Status = "banned"
	StatusInactive Status = "inactive"
)

func (s Status) String() string {
	return string(s)
}

func ValidateStatus(status Status) error {
	switch status {
	case StatusActive, StatusBanned, StatusInactive:
		return nil
	}

	return ErrStatusInvalid
}

// Profile holds the fields supplied by the messaging platform on first
// contact. All of them are optional.
type Profile struct {
	Username  string
	FirstName string
	LastName  string
}

type User struct {
	id            int64
	telegramID    int64
	profile       Profile
	walletBalance decimal.Decimal
	totalSpent    decimal.Decimal
	totalOrders   int
	status        Status
	agreedToTerms bool
	agreedAt      time.Time
	createdAt     time.Time
	updatedAt     time.Time
}

// NewUser builds a fresh user keyed by the messaging-platform identifier.
// New users start active with zero balances.
func NewUser(telegramID int64, profile Profile) (*User, error) {
	if telegramID <= 0 {
		return nil, ErrTelegramIDInvalid
	}

	now := time.Now()

	return &User{
		telegramID: telegramID,
		profile:    profile,
		status:     StatusActive,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// RestoreUser rebuilds a user from persisted state.
func RestoreUser(
	id, telegramID int64, profile Profile,
	walletBalance, totalSpent decimal.Decimal, totalOrders int,
	status Status, agreedToTerms bool, agreedAt, createdAt, updatedAt time.Time,
) (*User, error) {
	if err := ValidateStatus(status); err != nil {
		return nil, err
	}

	return &User{
		id:            id,
		telegramID:    telegramID,
		profile:       profile,
		walletBalance: walletBalance,
		totalSpent:    totalSpent,
		totalOrders:   totalOrders,
		status:        status,
		agreedToTerms: agreedToTerms,
		agreedAt:      agreedAt,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}, nil
}

func (u *User) ID() int64 {
	return u.id
}

func (u *User) TelegramID() int64 {
	return u.telegramID
}

func (u *User) Profile() Profile {
	return u.profile
}

func (u *User) WalletBalance() decimal.Decimal {
	return u.walletBalance
}

func (u *User) TotalSpent() decimal.Decimal {
	return u.totalSpent
}

func (u *User) TotalOrders() int {
	return u.totalOrders
}

func (u *User) Status() Status {
	return u.status
}

func (u *User) AgreedToTerms() bool {
	return u.agreedToTerms
}

func (u *User) AgreedAt() time.Time {
	return u.agreedAt
}

func (u *User) CreatedAt() time.Time {
	return u.createdAt
}

func (u *User) UpdatedAt() time.Time {
	return u.updatedAt
}

func (u *User) SetID(id int64) {
	u.id = id
}

func (u *User) SetStatus(status Status) {
	u.status = status
	u.updatedAt = time.Now()
}

func (u *User) AddWalletBalance(amount decimal.Decimal) {
	u.walletBalance = u.walletBalance.Add(amount)
	u.updatedAt = time.Now()
}

func (u *User) AddTotalSpent(amount decimal.Decimal) {
	u.totalSpent = u.totalSpent.Add(amount)
	u.updatedAt = time.Now()
}

func (u *User) IncrementTotalOrders() {
	u.totalOrders++
	u.updatedAt = time.Now()
}

func (u *User) AcceptTerms(at time.Time) {
	u.agreedToTerms = true
	u.agreedAt = at
	u.updatedAt = time.Now()
}
