package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrLockTimeout    = errors.New("lock timeout")
	ErrUnknown        = errors.New("unknown error")

	ErrUnauthorized         = errors.New("unauthorized")
	ErrValidation           = errors.New("validation error")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrNotFoundOrNotPending = errors.New("transaction not found or not pending approval")
)

type InsufficientFundsError struct {
	AccountID int64
	Balance   decimal.Decimal
	Amount    decimal.Decimal
}

func NewInsufficientFundsError(accountID int64, balance, amount decimal.Decimal) error {
	return &InsufficientFundsError{AccountID: accountID, Balance: balance, Amount: amount}
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf(
		"account %d balance %s is less than withdrawal amount %s",
		e.AccountID,
		e.Balance.String(),
		e.Amount.String(),
	)
}

// Unwrap позволяет проверять ошибку через errors.Is(err, ErrInsufficientFunds).
func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}
