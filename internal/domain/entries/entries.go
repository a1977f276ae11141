package entries

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrEntryPriceNegative  = errors.New("entry price is negative")
	ErrEntryStatusInvalid  = errors.New("entry status is invalid")
	ErrEntryCardNumberEmpty = errors.New("entry card number is empty")
)

// Status is the availability state of a data entry in the catalog.
type Status string

const (
	StatusAvailable Status = "available"
	StatusReserved  Status = "reserved"
	StatusSold      Status = "sold"
)

func (s Status) String() string {
	return string(s)
}

// ValidateStatus checks that a status value is one of the known states.
func ValidateStatus(status Status) error {
	switch status {
	case StatusAvailable, StatusReserved, StatusSold:
		return nil
	}

	return ErrEntryStatusInvalid
}

// DataFormat identifies which bulk-upload layout an entry came from.
type DataFormat string

const (
	DataFormatFull  DataFormat = "format1"
	DataFormatShort DataFormat = "format2"
)

// Card holds the sellable payload of an entry. The lifecycle logic treats
// these fields as opaque.
type Card struct {
	Number         string
	ExpiryMonth    string
	ExpiryYear     string
	CVV            string
	CardholderName string
	BankName       string
	Brand          string
	Type           string
	Level          string
	AddressLine1   string
	AddressLine2   string
	City           string
	State          string
	ZipCode        string
	Country        string
	Phone          string
	Email          string
	AdditionalInfo string
}

type Entry struct {
	id         int64
	card       Card
	dataFormat DataFormat
	price      decimal.Decimal
	status     Status
	createdAt  time.Time
	updatedAt  time.Time
}

// NewEntry builds an entry for upload. Entries always start available.
func NewEntry(card Card, format DataFormat, price decimal.Decimal) (*Entry, error) {
	if card.Number == "" {
		return nil, ErrEntryCardNumberEmpty
	}

	if price.IsNegative() {
		return nil, ErrEntryPriceNegative
	}

	now := time.Now()

	return &Entry{
		card:       card,
		dataFormat: format,
		price:      price,
		status:     StatusAvailable,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// RestoreEntry rebuilds an entry from persisted state.
func RestoreEntry(
	id int64, card Card, format DataFormat, price decimal.Decimal,
	status Status, createdAt, updatedAt time.Time,
) (*Entry, error) {
	if err := ValidateStatus(status); err != nil {
		return nil, err
	}

	return &Entry{
		id:         id,
		card:       card,
		dataFormat: format,
		price:      price,
		status:     status,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}, nil
}

func (e *Entry) ID() int64 {
	return e.id
}

func (e *Entry) Card() Card {
	return e.card
}

func (e *Entry) DataFormat() DataFormat {
	return e.dataFormat
}

func (e *Entry) Price() decimal.Decimal {
	return e.price
}

func (e *Entry) Status() Status {
	return e.status
}

func (e *Entry) CreatedAt() time.Time {
	return e.createdAt
}

func (e *Entry) UpdatedAt() time.Time {
	return e.updatedAt
}

func (e *Entry) SetID(id int64) {
	e.id = id
}

func (e *Entry) SetPrice(price decimal.Decimal) {
	e.price = price
}

func (e *Entry) SetStatus(status Status) {
	e.status = status
	e.updatedAt = time.Now()
}
