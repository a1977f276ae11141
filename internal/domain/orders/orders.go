package orders

import (
	"errors"
	"time"

	"github.com/DoomsdayProd/ccshop-panel/internal/domain/entries"
	"github.com/shopspring/decimal"
)

var (
	ErrPaymentMethodInvalid = errors.New("order payment method is invalid")
	ErrPaymentStatusInvalid = errors.New("order payment status is invalid")
	ErrDataEntryIDInvalid   = errors.New("order data entry id is invalid")
	ErrUserRefMissing       = errors.New("order has no user reference")
)

type PaymentMethod string

const (
	PaymentMethodInvoice PaymentMethod = "invoice"
	PaymentMethodCrypto  PaymentMethod = "cryptocurrency"
)

func (m PaymentMethod) String() string {
	return string(m)
}

func ValidatePaymentMethod(method PaymentMethod) error {
	switch method {
	case PaymentMethodInvoice, PaymentMethodCrypto:
		return nil
	}

	return ErrPaymentMethodInvalid
}

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusCancelled  PaymentStatus = "cancelled"
	PaymentStatusFailed     PaymentStatus = "failed"
)

func (s PaymentStatus) String() string {
	return string(s)
}

func ValidatePaymentStatus(status PaymentStatus) error {
	switch status {
	case PaymentStatusPending, PaymentStatusProcessing, PaymentStatusCompleted,
		PaymentStatusCancelled, PaymentStatusFailed:
		return nil
	}

	return ErrPaymentStatusInvalid
}

// EntryStatusForPayment maps a payment status to the catalog status the
// referenced entry must take. Processing has no mapping: the entry keeps
// whatever status it has, and the second return value is false.
func EntryStatusForPayment(status PaymentStatus) (entries.Status, bool) {
	switch status {
	case PaymentStatusCompleted:
		return entries.StatusSold, true
	case PaymentStatusPending:
		return entries.StatusReserved, true
	case PaymentStatusCancelled, PaymentStatusFailed:
		return entries.StatusAvailable, true
	}

	return "", false
}

type Order struct {
	id             int64
	userID         int64
	telegramUserID int64
	dataEntryID    int64
	paymentMethod  PaymentMethod
	paymentStatus  PaymentStatus
	totalAmount    decimal.Decimal
	cryptoAddress  string
	invoiceID      string
	createdAt      time.Time
	updatedAt      time.Time
}

// NewOrder builds a purchase attempt. Orders always start pending; the
// total amount is stamped by the store when the entry is reserved.
func NewOrder(userID, telegramUserID, dataEntryID int64, method PaymentMethod) (*Order, error) {
	if err := ValidatePaymentMethod(method); err != nil {
		return nil, err
	}

	if dataEntryID <= 0 {
		return nil, ErrDataEntryIDInvalid
	}

	if userID <= 0 && telegramUserID <= 0 {
		return nil, ErrUserRefMissing
	}

	now := time.Now()

	return &Order{
		userID:         userID,
		telegramUserID: telegramUserID,
		dataEntryID:    dataEntryID,
		paymentMethod:  method,
		paymentStatus:  PaymentStatusPending,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// RestoreOrder rebuilds an order from persisted state.
func RestoreOrder(
	id, userID, telegramUserID, dataEntryID int64,
	method PaymentMethod, status PaymentStatus, totalAmount decimal.Decimal,
	cryptoAddress, invoiceID string, createdAt, updatedAt time.Time,
) (*Order, error) {
	if err := ValidatePaymentStatus(status); err != nil {
		return nil, err
	}

	return &Order{
		id:             id,
		userID:         userID,
		telegramUserID: telegramUserID,
		dataEntryID:    dataEntryID,
		paymentMethod:  method,
		paymentStatus:  status,
		totalAmount:    totalAmount,
		cryptoAddress:  cryptoAddress,
		invoiceID:      invoiceID,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}, nil
}

func (o *Order) ID() int64 {
	return o.id
}

func (o *Order) UserID() int64 {
	return o.userID
}

func (o *Order) TelegramUserID() int64 {
	return o.telegramUserID
}

func (o *Order) DataEntryID() int64 {
	return o.dataEntryID
}

func (o *Order) PaymentMethod() PaymentMethod {
	return o.paymentMethod
}

func (o *Order) PaymentStatus() PaymentStatus {
	return o.paymentStatus
}

// TotalAmount is the entry price snapshot taken at reservation time. It is
// never recalculated from the catalog.
func (o *Order) TotalAmount() decimal.Decimal {
	return o.totalAmount
}

func (o *Order) CryptoAddress() string {
	return o.cryptoAddress
}

func (o *Order) InvoiceID() string {
	return o.invoiceID
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

func (o *Order) SetID(id int64) {
	o.id = id
}

func (o *Order) SetUserID(userID int64) {
	o.userID = userID
}

func (o *Order) SetTotalAmount(amount decimal.Decimal) {
	o.totalAmount = amount
}

func (o *Order) SetPaymentStatus(status PaymentStatus) {
	o.paymentStatus = status
	o.updatedAt = time.Now()
}

func (o *Order) SetCryptoAddress(addr string) {
	o.cryptoAddress = addr
}

func (o *Order) SetInvoiceID(invoiceID string) {
	o.invoiceID = invoiceID
}
