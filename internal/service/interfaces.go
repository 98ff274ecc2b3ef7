package service

import (
	"context"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/repository/repoargs"
	"github.com/fsdevblog/groph-bank/pkg/uow"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type CustomerRepository interface {
	Create(ctx context.Context, args repoargs.CustomerCreate) (*domain.Customer, error)
	FindByID(ctx context.Context, id int64) (*domain.Customer, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*domain.Customer, error)
	Update(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
}

type AccountRepository interface {
	Create(ctx context.Context, customerID int64) (*domain.Account, error)
	FindByID(ctx context.Context, id int64) (*domain.Account, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*domain.Account, error)
	UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) (*domain.Account, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, args repoargs.TransactionCreate) (*domain.Transaction, error)
	FindPendingByIDForUpdate(ctx context.Context, id int64) (*domain.Transaction, error)
	Approve(ctx context.Context, args repoargs.TransactionApprove) (*domain.Transaction, error)
	FindDetailsByID(ctx context.Context, id int64) (*repoargs.TransactionDetails, error)
}

type AuditRepository interface {
	Create(ctx context.Context, args repoargs.AuditEntryCreate) (*domain.AuditEntry, error)
	Query(ctx context.Context, q repoargs.AuditQuery) ([]domain.AuditEntry, error)
}

type RoleRepository interface {
	HasRole(ctx context.Context, principal string, role domain.RoleType) (bool, error)
}

// Authorizer шлюз авторизации. Authorize - режим run-as-caller, Elevate - run-as-service.
type Authorizer interface {
	Authorize(ctx context.Context, principal string, capability Capability) error
	Elevate(ctx context.Context, principal string, capability Capability) (string, error)
}

// AuditRecorder пишет запись аудита внутри чужой единицы работы. Бизнес-операции обязаны
// вызывать его в той же транзакции, что и свое изменение состояния.
type AuditRecorder interface {
	RecordInTx(
		ctx context.Context,
		tx uow.TX,
		principal string,
		args RecordAuditArgs,
	) (*domain.AuditEntry, error)
}
