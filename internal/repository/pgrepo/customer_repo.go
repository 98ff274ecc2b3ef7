package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/repository/repoargs"
	"github.com/fsdevblog/groph-bank/pkg/uow"
	"github.com/jackc/pgx/v5"
)

const customerColumns = "id, created_at, updated_at, name, address, phone, email, created_by"

type CustomerRepository struct {
	conn uow.DBTX
}

func NewCustomerRepository(conn uow.DBTX) *CustomerRepository {
	return &CustomerRepository{conn: conn}
}

func (r *CustomerRepository) Create(
	ctx context.Context,
	args repoargs.CustomerCreate,
) (*domain.Customer, error) {
	row := r.conn.QueryRow(ctx, `
		INSERT INTO customers (name, address, phone, email, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+customerColumns,
		args.Name, args.Address, args.Phone, args.Email, args.CreatedBy,
	)
	customer, err := scanCustomer(row)
	if err != nil {
		return nil, convertErr(err, "creating customer")
	}
	return customer, nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id int64) (*domain.Customer, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	customer, err := scanCustomer(row)
	if err != nil {
		return nil, convertErr(err, "finding customer by id %d", id)
	}
	return customer, nil
}

// FindByIDForUpdate блокирует строку клиента до конца текущей транзакции.
// Вызывается только внутри uow.Do.
func (r *CustomerRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Customer, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1 FOR UPDATE`, id)
	customer, err := scanCustomer(row)
	if err != nil {
		return nil, convertErr(err, "locking customer by id %d", id)
	}
	return customer, nil
}

// Update перезаписывает все изменяемые поля клиента. Частичная семантика (nil = без изменений)
// реализуется сервисным слоем поверх FindByIDForUpdate.
func (r *CustomerRepository) Update(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	row := r.conn.QueryRow(ctx, `
		UPDATE customers
		SET name = $2, address = $3, phone = $4, email = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+customerColumns,
		customer.ID, customer.Name, customer.Address, customer.Phone, customer.Email,
	)
	updated, err := scanCustomer(row)
	if err != nil {
		return nil, convertErr(err, "updating customer %d", customer.ID)
	}
	return updated, nil
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var m domain.Customer
	err := row.Scan(
		&m.ID,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.Name,
		&m.Address,
		&m.Phone,
		&m.Email,
		&m.CreatedBy,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &m, nil
}
