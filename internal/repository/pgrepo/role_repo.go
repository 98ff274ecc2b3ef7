package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/pkg/uow"
)

// RoleRepository читает реестр ролей. Членство в ролях управляется внешним
// административным процессом, отсюда только чтение.
type RoleRepository struct {
	conn uow.DBTX
}

func NewRoleRepository(conn uow.DBTX) *RoleRepository {
	return &RoleRepository{conn: conn}
}

// HasRole проверяет членство принципала в роли. Имя роли сравнивается без учета регистра.
// Результат не кэшируется: каждый вызов - свежий запрос к реестру.
func (r *RoleRepository) HasRole(
	ctx context.Context,
	principal string,
	role domain.RoleType,
) (bool, error) {
	row := r.conn.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM role_memberships
			WHERE principal = $1 AND LOWER(role) = LOWER($2)
		)`,
		principal, string(role),
	)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, convertErr(err, "checking role %q of principal %q", role, principal)
	}
	return exists, nil
}
