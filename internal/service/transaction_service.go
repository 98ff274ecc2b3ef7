package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/repository/repoargs"
	"github.com/fsdevblog/groph-bank/pkg/uow"
	"github.com/shopspring/decimal"
)

const transactionsEntity = "transactions"

// approvalThreshold транзакции на сумму строго больше порога требуют ручного утверждения
// менеджером. Порог фиксированный и не привязан к валюте.
var approvalThreshold = decimal.NewFromInt(10000)

type TransactionService struct {
	uow   uow.UOW
	gate  Authorizer
	audit AuditRecorder
}

func NewTransactionService(u uow.UOW, gate Authorizer, audit AuditRecorder) *TransactionService {
	return &TransactionService{
		uow:   u,
		gate:  gate,
		audit: audit,
	}
}

type CreateTransactionArgs struct {
	AccountID   int64
	Amount      decimal.Decimal
	Type        domain.TransactionType
	Description string
}

// Create создает транзакцию. Строка счета блокируется на весь вызов. Суммы выше порога
// сохраняются в статусе PENDING_APPROVAL без изменения баланса; остальные утверждаются
// сразу, и баланс применяется в той же единице работы. Снятие сверх баланса откатывает
// всю единицу целиком - запись о транзакции не создается вовсе.
func (s *TransactionService) Create(
	ctx context.Context,
	principal string,
	args CreateTransactionArgs,
) (*domain.Transaction, error) {
	if args.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("transaction amount must be positive: %w", domain.ErrValidation)
	}
	if args.Type != domain.TransactionTypeDeposit && args.Type != domain.TransactionTypeWithdrawal {
		return nil, fmt.Errorf("unknown transaction type %q: %w", args.Type, domain.ErrValidation)
	}
	if err := s.gate.Authorize(ctx, principal, CapTransactionInsert); err != nil {
		return nil, err
	}

	var transaction *domain.Transaction
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		accountRepo, repoErr := uow.GetAs[AccountRepository](tx, uow.RepositoryName(repoargs.AccountRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		transactionRepo, repoErr := uow.GetAs[TransactionRepository](tx, uow.RepositoryName(repoargs.TransactionRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		account, lockErr := accountRepo.FindByIDForUpdate(c, args.AccountID)
		if lockErr != nil {
			return lockErr //nolint:wrapcheck
		}

		status := domain.TransactionStatusApproved
		if args.Amount.GreaterThan(approvalThreshold) {
			// проверка достаточности средств откладывается до момента утверждения
			status = domain.TransactionStatusPendingApproval
		} else if applyErr := applyToBalance(c, accountRepo, account, args.Amount, args.Type); applyErr != nil {
			return applyErr
		}

		var createErr error
		transaction, createErr = transactionRepo.Create(c, repoargs.TransactionCreate{
			AccountID:   args.AccountID,
			Amount:      args.Amount,
			Type:        args.Type,
			Status:      status,
			Description: args.Description,
			CreatedBy:   principal,
		})
		if createErr != nil {
			return createErr //nolint:wrapcheck
		}

		snapshot := transactionSnapshot(transaction)
		_, auditErr := s.audit.RecordInTx(c, tx, principal, RecordAuditArgs{
			Action:         domain.AuditActionCreate,
			AffectedEntity: transactionsEntity,
			AffectedID:     transaction.ID,
			NewValue:       &snapshot,
		})
		return auditErr
	})
	if txErr != nil {
		return nil, fmt.Errorf("creating transaction: %w", txErr)
	}
	return transaction, nil
}

// Approve утверждает ожидающую транзакцию. Помимо сторадж-грантов требуется явная роль
// MANAGER: право UPDATE на таблицу слишком грубое, чтобы отличить "может утверждать" от
// "может править описание". Отсутствующая и уже утвержденная транзакции неразличимы для
// вызывающего - обе дают ErrNotFoundOrNotPending. Достаточность средств для снятия
// перепроверяется по текущему балансу, а не по балансу на момент создания.
func (s *TransactionService) Approve(
	ctx context.Context,
	principal string,
	id int64,
) (*domain.Transaction, error) {
	if err := s.gate.Authorize(ctx, principal, CapTransactionApprove); err != nil {
		return nil, err
	}

	var transaction *domain.Transaction
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		transactionRepo, repoErr := uow.GetAs[TransactionRepository](tx, uow.RepositoryName(repoargs.TransactionRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		accountRepo, repoErr := uow.GetAs[AccountRepository](tx, uow.RepositoryName(repoargs.AccountRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		pending, lockErr := transactionRepo.FindPendingByIDForUpdate(c, id)
		if lockErr != nil {
			if errors.Is(lockErr, domain.ErrRecordNotFound) {
				return fmt.Errorf("transaction %d: %w", id, domain.ErrNotFoundOrNotPending)
			}
			return lockErr //nolint:wrapcheck
		}

		// порядок блокировок всегда одинаковый: сначала транзакция, потом счет
		account, accErr := accountRepo.FindByIDForUpdate(c, pending.AccountID)
		if accErr != nil {
			return accErr //nolint:wrapcheck
		}

		if applyErr := applyToBalance(c, accountRepo, account, pending.Amount, pending.Type); applyErr != nil {
			return applyErr
		}

		var approveErr error
		transaction, approveErr = transactionRepo.Approve(c, repoargs.TransactionApprove{
			ID:         id,
			ApprovedBy: principal,
			ApprovedAt: time.Now(),
		})
		if approveErr != nil {
			return approveErr //nolint:wrapcheck
		}

		oldValue := string(domain.TransactionStatusPendingApproval)
		newValue := string(domain.TransactionStatusApproved)
		_, auditErr := s.audit.RecordInTx(c, tx, principal, RecordAuditArgs{
			Action:         domain.AuditActionApprove,
			AffectedEntity: transactionsEntity,
			AffectedID:     id,
			OldValue:       &oldValue,
			NewValue:       &newValue,
		})
		return auditErr
	})
	if txErr != nil {
		return nil, fmt.Errorf("approving transaction %d: %w", id, txErr)
	}
	return transaction, nil
}

// GetDetails возвращает транзакцию вместе со счетом и клиентом. Как и любое успешное чтение,
// оставляет VIEW-запись в журнале в той же единице работы.
func (s *TransactionService) GetDetails(
	ctx context.Context,
	principal string,
	id int64,
) (*repoargs.TransactionDetails, error) {
	if err := s.gate.Authorize(ctx, principal, CapTransactionRead); err != nil {
		return nil, err
	}

	var details *repoargs.TransactionDetails
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		repo, repoErr := uow.GetAs[TransactionRepository](tx, uow.RepositoryName(repoargs.TransactionRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		var findErr error
		details, findErr = repo.FindDetailsByID(c, id)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}

		_, auditErr := s.audit.RecordInTx(c, tx, principal, RecordAuditArgs{
			Action:         domain.AuditActionView,
			AffectedEntity: transactionsEntity,
			AffectedID:     id,
		})
		return auditErr
	})
	if txErr != nil {
		return nil, fmt.Errorf("getting transaction details: %w", txErr)
	}
	return details, nil
}

// applyToBalance применяет сумму к заблокированной строке счета. DEPOSIT - безусловное
// сложение; WITHDRAWAL падает с InsufficientFundsError, если средств не хватает, поэтому
// баланс никогда не уходит в минус.
func applyToBalance(
	ctx context.Context,
	repo AccountRepository,
	account *domain.Account,
	amount decimal.Decimal,
	transactionType domain.TransactionType,
) error {
	var newBalance decimal.Decimal
	switch transactionType {
	case domain.TransactionTypeDeposit:
		newBalance = account.Balance.Add(amount)
	case domain.TransactionTypeWithdrawal:
		if account.Balance.LessThan(amount) {
			return domain.NewInsufficientFundsError(account.ID, account.Balance, amount)
		}
		newBalance = account.Balance.Sub(amount)
	default:
		return fmt.Errorf("unknown transaction type %q: %w", transactionType, domain.ErrValidation)
	}

	if _, err := repo.UpdateBalance(ctx, account.ID, newBalance); err != nil {
		return err //nolint:wrapcheck
	}
	return nil
}

func transactionSnapshot(t *domain.Transaction) string {
	return fmt.Sprintf("account_id=%d amount=%s type=%s status=%s",
		t.AccountID, t.Amount.String(), t.Type, t.Status)
}
