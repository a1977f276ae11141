package wallet

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrTransactionTypeInvalid = errors.New("wallet transaction type is invalid")
	ErrAmountNotPositive      = errors.New("wallet transaction amount must be positive")
	ErrUserIDInvalid          = errors.New("wallet transaction user id is invalid")
)

// TransactionType drives the sign of the wallet balance adjustment:
// deposits and refunds credit the wallet, withdrawals and purchases debit it.
type TransactionType string

const (
	TypeDeposit  TransactionType = "deposit"
	TypeWithdraw TransactionType = "withdraw"
	TypePurchase TransactionType = "purchase"
	TypeRefund   TransactionType = "refund"
)

func (t TransactionType) String() string {
	return string(t)
}

func ValidateTransactionType(t TransactionType) error {
	switch t {
	case TypeDeposit, TypeWithdraw, TypePurchase, TypeRefund:
		return nil
	}

	return ErrTransactionTypeInvalid
}

// BalanceDelta returns the signed amount applied to the wallet balance.
func (t TransactionType) BalanceDelta(amount decimal.Decimal) decimal.Decimal {
	switch t {
	case TypeWithdraw, TypePurchase:
		return amount.Abs().Neg()
	}

	return amount.Abs()
}

type Transaction struct {
	id          int64
	userID      int64
	orderID     int64
	txType      TransactionType
	amount      decimal.Decimal
	description string
	status      string
	createdAt   time.Time
}

func NewTransaction(userID, orderID int64, txType TransactionType, amount decimal.Decimal, description string) (*Transaction, error) {
	if err := ValidateTransactionType(txType); err != nil {
		return nil, err
	}

	if userID <= 0 {
		return nil, ErrUserIDInvalid
	}

	if !amount.IsPositive() {
		return nil, ErrAmountNotPositive
	}

	return &Transaction{
		userID:      userID,
		orderID:     orderID,
		txType:      txType,
		amount:      amount,
		description: description,
		status:      "completed",
		createdAt:   time.Now(),
	}, nil
}

// RestoreTransaction rebuilds a transaction from persisted state.
func RestoreTransaction(
	id, userID, orderID int64, txType TransactionType,
	amount decimal.Decimal, description, status string, createdAt time.Time,
) *Transaction {
	return &Transaction{
		id:          id,
		userID:      userID,
		orderID:     orderID,
		txType:      txType,
		amount:      amount,
		description: description,
		status:      status,
		createdAt:   createdAt,
	}
}

func (t *Transaction) ID() int64 {
	return t.id
}

func (t *Transaction) UserID() int64 {
	return t.userID
}

func (t *Transaction) OrderID() int64 {
	return t.orderID
}

func (t *Transaction) Type() TransactionType {
	return t.txType
}

func (t *Transaction) Amount() decimal.Decimal {
	return t.amount
}

func (t *Transaction) Description() string {
	return t.description
}

func (t *Transaction) Status() string {
	return t.status
}

func (t *Transaction) CreatedAt() time.Time {
	return t.createdAt
}

func (t *Transaction) SetID(id int64) {
	t.id = id
}
