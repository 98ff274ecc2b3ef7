package service

import (
	"context"
	"fmt"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/repository/repoargs"
	"github.com/fsdevblog/groph-bank/pkg/uow"
)

// AuditService единственный писатель и читатель журнала аудита. Работает в режиме
// run-as-service: внутреннее обращение к стору идет под ServicePrincipal, вызывающему
// достаточно грубого права на внешнюю операцию (audit:write есть у всех трех ролей,
// audit:read - только у AUDITOR и MANAGER).
type AuditService struct {
	uow       uow.UOW
	gate      Authorizer
	auditRepo AuditRepository
}

func NewAuditService(u uow.UOW, gate Authorizer) (*AuditService, error) {
	auditRepo, err := uow.GetRepositoryAs[AuditRepository](u, uow.RepositoryName(repoargs.AuditRepoName))
	if err != nil {
		return nil, err
	}
	return &AuditService{
		uow:       u,
		gate:      gate,
		auditRepo: auditRepo,
	}, nil
}

type RecordAuditArgs struct {
	Action         domain.AuditActionType
	AffectedEntity string
	AffectedID     int64
	OldValue       *string
	NewValue       *string
}

// Record публичная операция записи события аудита. Имя таблицы и old/new значения
// самодекларируются вызывающим и не валидируются против целевой сущности - эта граница
// доверия унаследована от исходного дизайна.
func (a *AuditService) Record(
	ctx context.Context,
	principal string,
	args RecordAuditArgs,
) (*domain.AuditEntry, error) {
	origin, err := a.gate.Elevate(ctx, principal, CapAuditWrite)
	if err != nil {
		return nil, err
	}

	var entry *domain.AuditEntry
	txErr := a.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		var recErr error
		entry, recErr = a.recordWithOrigin(c, tx, principal, origin, args)
		return recErr
	})
	if txErr != nil {
		return nil, fmt.Errorf("recording audit event: %w", txErr)
	}
	return entry, nil
}

// RecordInTx запись аудита как побочный эффект бизнес-операции, внутри её единицы работы.
// Право audit:write здесь не перепроверяется: любая роль, прошедшая шлюз внешней операции,
// им обладает, а ошибка записи обязана откатить всю операцию целиком.
func (a *AuditService) RecordInTx(
	ctx context.Context,
	tx uow.TX,
	principal string,
	args RecordAuditArgs,
) (*domain.AuditEntry, error) {
	return a.recordWithOrigin(ctx, tx, principal, ServicePrincipal, args)
}

// Query читает журнал за интервал [Start, End] (End по умолчанию - сейчас) с опциональным
// фильтром по принципалу, сортировка по времени по убыванию.
func (a *AuditService) Query(
	ctx context.Context,
	principal string,
	q repoargs.AuditQuery,
) ([]domain.AuditEntry, error) {
	if _, err := a.gate.Elevate(ctx, principal, CapAuditRead); err != nil {
		return nil, err
	}
	entries, err := a.auditRepo.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	return entries, nil
}

func (a *AuditService) recordWithOrigin(
	ctx context.Context,
	tx uow.TX,
	principal string,
	origin string,
	args RecordAuditArgs,
) (*domain.AuditEntry, error) {
	repo, repoErr := uow.GetAs[AuditRepository](tx, uow.RepositoryName(repoargs.AuditRepoName))
	if repoErr != nil {
		return nil, repoErr //nolint:wrapcheck
	}
	entry, err := repo.Create(ctx, repoargs.AuditEntryCreate{
		Principal:      principal,
		Action:         args.Action,
		AffectedEntity: args.AffectedEntity,
		AffectedID:     args.AffectedID,
		OldValue:       args.OldValue,
		NewValue:       args.NewValue,
		Origin:         &origin,
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return entry, nil
}
