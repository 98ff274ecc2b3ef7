package domain

import (
	"github.com/shopspring/decimal"

	"time"
)

type Customer struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string
	Address   string
	Phone     string
	Email     string
	CreatedBy string
}

type Account struct {
	ID         int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
	CustomerID int64
	Balance    decimal.Decimal
	Status     AccountStatusType
}

type Transaction struct {
	ID          int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	AccountID   int64
	Amount      decimal.Decimal
	Type        TransactionType
	Status      TransactionStatusType
	Description string
	CreatedBy   string
	ApprovedBy  *string
	ApprovedAt  *time.Time
}

type AuditEntry struct {
	ID             int64
	CreatedAt      time.Time
	Principal      string
	Action         AuditActionType
	AffectedEntity string
	AffectedID     int64
	OldValue       *string
	NewValue       *string
	Origin         *string
}
