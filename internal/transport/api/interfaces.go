package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/repository/repoargs"
	"github.com/fsdevblog/groph-bank/internal/service"
)

type CustomerServicer interface {
	Create(ctx context.Context, principal string, args service.CreateCustomerArgs) (*domain.Customer, error)
	GetDetails(ctx context.Context, principal string, id int64) (*domain.Customer, error)
	Update(
		ctx context.Context,
		principal string,
		id int64,
		fields repoargs.CustomerUpdateFields,
	) (*domain.Customer, error)
	OpenAccount(ctx context.Context, principal string, customerID int64) (*domain.Account, error)
}

type TransactionServicer interface {
	Create(
		ctx context.Context,
		principal string,
		args service.CreateTransactionArgs,
	) (*domain.Transaction, error)
	Approve(ctx context.Context, principal string, id int64) (*domain.Transaction, error)
	GetDetails(ctx context.Context, principal string, id int64) (*repoargs.TransactionDetails, error)
}

type AuditServicer interface {
	Record(ctx context.Context, principal string, args service.RecordAuditArgs) (*domain.AuditEntry, error)
	Query(ctx context.Context, principal string, q repoargs.AuditQuery) ([]domain.AuditEntry, error)
}
