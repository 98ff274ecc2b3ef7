package repoargs

import (
	"time"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/shopspring/decimal"
)

type TransactionCreate struct {
	AccountID   int64
	Amount      decimal.Decimal
	Type        domain.TransactionType
	Status      domain.TransactionStatusType
	Description string
	CreatedBy   string
}

type TransactionApprove struct {
	ID         int64
	ApprovedBy string
	ApprovedAt time.Time
}

// TransactionDetails проекция транзакции вместе со счетом и клиентом, которым она принадлежит.
type TransactionDetails struct {
	Transaction domain.Transaction
	Account     domain.Account
	Customer    domain.Customer
}
