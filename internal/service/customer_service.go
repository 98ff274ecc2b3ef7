package service

import (
	"context"
	"fmt"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/repository/repoargs"
	"github.com/fsdevblog/groph-bank/pkg/uow"
)

const (
	customersEntity = "customers"
	accountsEntity  = "accounts"
)

type CustomerService struct {
	uow   uow.UOW
	gate  Authorizer
	audit AuditRecorder
}

func NewCustomerService(u uow.UOW, gate Authorizer, audit AuditRecorder) *CustomerService {
	return &CustomerService{
		uow:   u,
		gate:  gate,
		audit: audit,
	}
}

type CreateCustomerArgs struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

// Create заводит клиента под учеткой вызывающего (created_by). Вставка и запись аудита -
// одна единица работы: при любой ошибке не сохраняется ничего, включая запись аудита.
func (s *CustomerService) Create(
	ctx context.Context,
	principal string,
	args CreateCustomerArgs,
) (*domain.Customer, error) {
	if err := s.gate.Authorize(ctx, principal, CapCustomerInsert); err != nil {
		return nil, err
	}

	var customer *domain.Customer
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		repo, repoErr := uow.GetAs[CustomerRepository](tx, uow.RepositoryName(repoargs.CustomerRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		var createErr error
		customer, createErr = repo.Create(c, repoargs.CustomerCreate{
			Name:      args.Name,
			Address:   args.Address,
			Phone:     args.Phone,
			Email:     args.Email,
			CreatedBy: principal,
		})
		if createErr != nil {
			return createErr //nolint:wrapcheck
		}

		snapshot := customerSnapshot(customer)
		_, auditErr := s.audit.RecordInTx(c, tx, principal, RecordAuditArgs{
			Action:         domain.AuditActionCreate,
			AffectedEntity: customersEntity,
			AffectedID:     customer.ID,
			NewValue:       &snapshot,
		})
		return auditErr
	})
	if txErr != nil {
		return nil, fmt.Errorf("creating customer: %w", txErr)
	}
	return customer, nil
}

// GetDetails возвращает клиента по id. Успешное чтение обязано оставить VIEW-запись в журнале:
// чтение и запись аудита идут в одной транзакции, ошибка аудита откатывает и само чтение.
func (s *CustomerService) GetDetails(
	ctx context.Context,
	principal string,
	id int64,
) (*domain.Customer, error) {
	if err := s.gate.Authorize(ctx, principal, CapCustomerRead); err != nil {
		return nil, err
	}

	var customer *domain.Customer
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		repo, repoErr := uow.GetAs[CustomerRepository](tx, uow.RepositoryName(repoargs.CustomerRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		var findErr error
		customer, findErr = repo.FindByID(c, id)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}

		_, auditErr := s.audit.RecordInTx(c, tx, principal, RecordAuditArgs{
			Action:         domain.AuditActionView,
			AffectedEntity: customersEntity,
			AffectedID:     id,
		})
		return auditErr
	})
	if txErr != nil {
		return nil, fmt.Errorf("getting customer details: %w", txErr)
	}
	return customer, nil
}

// Update частично обновляет клиента: nil-поле остается нетронутым (отсутствие поля не равно
// его очистке). Строка блокируется на время read-modify-write, в аудит пишутся снапшоты
// до и после изменения.
func (s *CustomerService) Update(
	ctx context.Context,
	principal string,
	id int64,
	fields repoargs.CustomerUpdateFields,
) (*domain.Customer, error) {
	if err := s.gate.Authorize(ctx, principal, CapCustomerUpdate); err != nil {
		return nil, err
	}

	var updated *domain.Customer
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		repo, repoErr := uow.GetAs[CustomerRepository](tx, uow.RepositoryName(repoargs.CustomerRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		current, findErr := repo.FindByIDForUpdate(c, id)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}
		oldSnapshot := customerSnapshot(current)

		merged := *current
		if fields.Name != nil {
			merged.Name = *fields.Name
		}
		if fields.Address != nil {
			merged.Address = *fields.Address
		}
		if fields.Phone != nil {
			merged.Phone = *fields.Phone
		}
		if fields.Email != nil {
			merged.Email = *fields.Email
		}

		var updateErr error
		updated, updateErr = repo.Update(c, merged)
		if updateErr != nil {
			return updateErr //nolint:wrapcheck
		}
		newSnapshot := customerSnapshot(updated)

		_, auditErr := s.audit.RecordInTx(c, tx, principal, RecordAuditArgs{
			Action:         domain.AuditActionUpdate,
			AffectedEntity: customersEntity,
			AffectedID:     id,
			OldValue:       &oldSnapshot,
			NewValue:       &newSnapshot,
		})
		return auditErr
	})
	if txErr != nil {
		return nil, fmt.Errorf("updating customer %d: %w", id, txErr)
	}
	return updated, nil
}

// OpenAccount открывает клиенту счет с нулевым балансом. Дальше баланс меняется
// исключительно транзакционным движком.
func (s *CustomerService) OpenAccount(
	ctx context.Context,
	principal string,
	customerID int64,
) (*domain.Account, error) {
	if err := s.gate.Authorize(ctx, principal, CapAccountInsert); err != nil {
		return nil, err
	}

	var account *domain.Account
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		customerRepo, repoErr := uow.GetAs[CustomerRepository](tx, uow.RepositoryName(repoargs.CustomerRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		accountRepo, repoErr := uow.GetAs[AccountRepository](tx, uow.RepositoryName(repoargs.AccountRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		if _, findErr := customerRepo.FindByID(c, customerID); findErr != nil {
			return findErr //nolint:wrapcheck
		}

		var createErr error
		account, createErr = accountRepo.Create(c, customerID)
		if createErr != nil {
			return createErr //nolint:wrapcheck
		}

		snapshot := fmt.Sprintf("customer_id=%d balance=%s status=%s",
			account.CustomerID, account.Balance.String(), account.Status)
		_, auditErr := s.audit.RecordInTx(c, tx, principal, RecordAuditArgs{
			Action:         domain.AuditActionCreate,
			AffectedEntity: accountsEntity,
			AffectedID:     account.ID,
			NewValue:       &snapshot,
		})
		return auditErr
	})
	if txErr != nil {
		return nil, fmt.Errorf("opening account for customer %d: %w", customerID, txErr)
	}
	return account, nil
}

// customerSnapshot конкатенация всех изменяемых полей для old/new значений аудита.
func customerSnapshot(c *domain.Customer) string {
	return fmt.Sprintf("name=%s address=%s phone=%s email=%s", c.Name, c.Address, c.Phone, c.Email)
}
