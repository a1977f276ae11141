package dbmodels

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type DataEntry struct {
	ID             int64
	CardNumber     string
	ExpiryMonth    sql.NullString
	ExpiryYear     sql.NullString
	CVV            sql.NullString
	CardholderName sql.NullString
	BankName       sql.NullString
	CardBrand      sql.NullString
	CardType       sql.NullString
	CardLevel      sql.NullString
	AddressLine1   sql.NullString
	AddressLine2   sql.NullString
	City           sql.NullString
	State          sql.NullString
	ZipCode        sql.NullString
	Country        sql.NullString
	Phone          sql.NullString
	Email          sql.NullString
	AdditionalInfo sql.NullString
	DataFormat     string
	Price          decimal.Decimal
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type User struct {
	ID            int64
	TelegramID    int64
	Username      sql.NullString
	FirstName     sql.NullString
	LastName      sql.NullString
	WalletBalance decimal.Decimal
	TotalSpent    decimal.Decimal
	TotalOrders   int
	Status        string
	AgreedToTerms bool
	AgreedAt      sql.NullTime
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Order struct {
	ID             int64
	UserID         sql.NullInt64
	TelegramUserID sql.NullInt64
	DataEntryID    int64
	PaymentMethod  string
	PaymentStatus  string
	TotalAmount    decimal.Decimal
	CryptoAddress  sql.NullString
	InvoiceID      sql.NullString
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type WalletTransaction struct {
	ID          int64
	UserID      int64
	OrderID     sql.NullInt64
	Type        string
	Amount      decimal.Decimal
	Description sql.NullString
	Status      string
	CreatedAt   time.Time
}
