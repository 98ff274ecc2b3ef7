package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/pkg/uow"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const accountColumns = "id, created_at, updated_at, customer_id, balance, status"

type AccountRepository struct {
	conn uow.DBTX
}

func NewAccountRepository(conn uow.DBTX) *AccountRepository {
	return &AccountRepository{conn: conn}
}

// Create открывает счет с нулевым балансом.
func (r *AccountRepository) Create(ctx context.Context, customerID int64) (*domain.Account, error) {
	row := r.conn.QueryRow(ctx, `
		INSERT INTO accounts (customer_id, balance, status)
		VALUES ($1, 0, $2)
		RETURNING `+accountColumns,
		customerID, domain.AccountStatusActive,
	)
	account, err := scanAccount(row)
	if err != nil {
		return nil, convertErr(err, "creating account for customer %d", customerID)
	}
	return account, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	account, err := scanAccount(row)
	if err != nil {
		return nil, convertErr(err, "finding account by id %d", id)
	}
	return account, nil
}

// FindByIDForUpdate блокирует строку счета до конца текущей транзакции. Конкурентные операции
// по одному счету сериализуются на этой блокировке - гонок lost-update по балансу нет.
func (r *AccountRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Account, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id)
	account, err := scanAccount(row)
	if err != nil {
		return nil, convertErr(err, "locking account by id %d", id)
	}
	return account, nil
}

// UpdateBalance записывает новый баланс. Вызывается только держателем блокировки строки
// (после FindByIDForUpdate) внутри той же транзакции.
func (r *AccountRepository) UpdateBalance(
	ctx context.Context,
	id int64,
	balance decimal.Decimal,
) (*domain.Account, error) {
	row := r.conn.QueryRow(ctx, `
		UPDATE accounts SET balance = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+accountColumns,
		id, balance,
	)
	account, err := scanAccount(row)
	if err != nil {
		return nil, convertErr(err, "updating balance of account %d", id)
	}
	return account, nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var m domain.Account
	err := row.Scan(
		&m.ID,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.CustomerID,
		&m.Balance,
		&m.Status,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &m, nil
}
