package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/repository/repoargs"
	"github.com/fsdevblog/groph-bank/pkg/uow"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = "id, created_at, updated_at, account_id, amount, type, status, " +
	"description, created_by, approved_by, approved_at"

type TransactionRepository struct {
	conn uow.DBTX
}

func NewTransactionRepository(conn uow.DBTX) *TransactionRepository {
	return &TransactionRepository{conn: conn}
}

func (r *TransactionRepository) Create(
	ctx context.Context,
	args repoargs.TransactionCreate,
) (*domain.Transaction, error) {
	row := r.conn.QueryRow(ctx, `
		INSERT INTO transactions (account_id, amount, type, status, description, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+transactionColumns,
		args.AccountID, args.Amount, args.Type, args.Status, args.Description, args.CreatedBy,
	)
	transaction, err := scanTransaction(row)
	if err != nil {
		return nil, convertErr(err, "creating transaction for account %d", args.AccountID)
	}
	return transaction, nil
}

// FindPendingByIDForUpdate блокирует строку транзакции со статусом PENDING_APPROVAL.
// Отсутствие строки и неподходящий статус неразличимы: оба случая дают pgx.ErrNoRows,
// который конвертируется в domain.ErrRecordNotFound. Разводит их сервисный слой,
// поднимая единый domain.ErrNotFoundOrNotPending.
func (r *TransactionRepository) FindPendingByIDForUpdate(
	ctx context.Context,
	id int64,
) (*domain.Transaction, error) {
	row := r.conn.QueryRow(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = $1 AND status = $2
		FOR UPDATE`,
		id, domain.TransactionStatusPendingApproval,
	)
	transaction, err := scanTransaction(row)
	if err != nil {
		return nil, convertErr(err, "locking pending transaction %d", id)
	}
	return transaction, nil
}

// Approve переводит транзакцию в APPROVED, фиксируя кто и когда утвердил.
// Обратного перехода не существует ни на одном слое.
func (r *TransactionRepository) Approve(
	ctx context.Context,
	args repoargs.TransactionApprove,
) (*domain.Transaction, error) {
	row := r.conn.QueryRow(ctx, `
		UPDATE transactions
		SET status = $2, approved_by = $3, approved_at = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+transactionColumns,
		args.ID, domain.TransactionStatusApproved, args.ApprovedBy, args.ApprovedAt,
	)
	transaction, err := scanTransaction(row)
	if err != nil {
		return nil, convertErr(err, "approving transaction %d", args.ID)
	}
	return transaction, nil
}

// FindDetailsByID возвращает транзакцию вместе со счетом и клиентом одним запросом.
func (r *TransactionRepository) FindDetailsByID(
	ctx context.Context,
	id int64,
) (*repoargs.TransactionDetails, error) {
	row := r.conn.QueryRow(ctx, `
		SELECT
			t.id, t.created_at, t.updated_at, t.account_id, t.amount, t.type, t.status,
			t.description, t.created_by, t.approved_by, t.approved_at,
			a.id, a.created_at, a.updated_at, a.customer_id, a.balance, a.status,
			c.id, c.created_at, c.updated_at, c.name, c.address, c.phone, c.email, c.created_by
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		JOIN customers c ON c.id = a.customer_id
		WHERE t.id = $1`,
		id,
	)

	var d repoargs.TransactionDetails
	err := row.Scan(
		&d.Transaction.ID, &d.Transaction.CreatedAt, &d.Transaction.UpdatedAt,
		&d.Transaction.AccountID, &d.Transaction.Amount, &d.Transaction.Type,
		&d.Transaction.Status, &d.Transaction.Description, &d.Transaction.CreatedBy,
		&d.Transaction.ApprovedBy, &d.Transaction.ApprovedAt,
		&d.Account.ID, &d.Account.CreatedAt, &d.Account.UpdatedAt,
		&d.Account.CustomerID, &d.Account.Balance, &d.Account.Status,
		&d.Customer.ID, &d.Customer.CreatedAt, &d.Customer.UpdatedAt,
		&d.Customer.Name, &d.Customer.Address, &d.Customer.Phone, &d.Customer.Email,
		&d.Customer.CreatedBy,
	)
	if err != nil {
		return nil, convertErr(err, "finding transaction details by id %d", id)
	}
	return &d, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var m domain.Transaction
	err := row.Scan(
		&m.ID,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.AccountID,
		&m.Amount,
		&m.Type,
		&m.Status,
		&m.Description,
		&m.CreatedBy,
		&m.ApprovedBy,
		&m.ApprovedAt,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &m, nil
}
