package service

import (
	"context"
	"fmt"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/repository/repoargs"
	"github.com/fsdevblog/groph-bank/pkg/uow"
)

// ServicePrincipal фиксированная сервисная учетка, под которой выполняются операции
// над журналом аудита независимо от вызывающего.
const ServicePrincipal = "svc:audit"

// Capability право на один класс операций над одним типом сущностей.
type Capability string

const (
	CapCustomerInsert Capability = "customers:insert"
	CapCustomerRead   Capability = "customers:read"
	CapCustomerUpdate Capability = "customers:update"

	CapAccountInsert Capability = "accounts:insert"

	CapTransactionInsert  Capability = "transactions:insert"
	CapTransactionRead    Capability = "transactions:read"
	CapTransactionApprove Capability = "transactions:approve"

	CapAuditWrite Capability = "audit:write"
	CapAuditRead  Capability = "audit:read"
)

// capabilityRoles матрица выдачи прав: какая роль дает какое право.
var capabilityRoles = map[Capability][]domain.RoleType{
	CapCustomerInsert: {domain.RoleTeller, domain.RoleManager},
	CapCustomerRead:   {domain.RoleTeller, domain.RoleManager, domain.RoleAuditor},
	CapCustomerUpdate: {domain.RoleManager},

	CapAccountInsert: {domain.RoleTeller, domain.RoleManager},

	CapTransactionInsert:  {domain.RoleTeller, domain.RoleManager},
	CapTransactionRead:    {domain.RoleTeller, domain.RoleManager, domain.RoleAuditor},
	CapTransactionApprove: {domain.RoleManager},

	CapAuditWrite: {domain.RoleTeller, domain.RoleManager, domain.RoleAuditor},
	CapAuditRead:  {domain.RoleAuditor, domain.RoleManager},
}

// Gate сквозная проверка прав. Вызывается сервисами до любых изменений состояния,
// эффективная учетка всегда передается явным аргументом - никакого глобального
// "текущего пользователя" не существует.
type Gate struct {
	roleRepo RoleRepository
}

func NewGate(u uow.UOW) (*Gate, error) {
	roleRepo, err := uow.GetRepositoryAs[RoleRepository](u, uow.RepositoryName(repoargs.RoleRepoName))
	if err != nil {
		return nil, err
	}
	return &Gate{roleRepo: roleRepo}, nil
}

// Authorize режим run-as-caller: операция выполнится под правами вызывающего, поэтому
// проверяем, что одна из его ролей дает запрошенное право. Членство в ролях запрашивается
// у реестра на каждый вызов, без кэша.
func (g *Gate) Authorize(ctx context.Context, principal string, capability Capability) error {
	roles, ok := capabilityRoles[capability]
	if !ok {
		return fmt.Errorf("authorize: unknown capability %q: %w", capability, domain.ErrUnauthorized)
	}
	for _, role := range roles {
		hasRole, err := g.roleRepo.HasRole(ctx, principal, role)
		if err != nil {
			return fmt.Errorf("authorize: %w", err)
		}
		if hasRole {
			return nil
		}
	}
	return fmt.Errorf("principal %q lacks capability %q: %w", principal, capability, domain.ErrUnauthorized)
}

// Elevate режим run-as-service: вызывающий обязан иметь право на внешнюю операцию,
// но само действие со стором выполнится под фиксированной сервисной учеткой, которую
// метод и возвращает. Собственные сторадж-права вызывающего на целевую таблицу не важны.
func (g *Gate) Elevate(ctx context.Context, principal string, capability Capability) (string, error) {
	if err := g.Authorize(ctx, principal, capability); err != nil {
		return "", err
	}
	return ServicePrincipal, nil
}
