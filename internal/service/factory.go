package service

import (
	"fmt"

	"github.com/fsdevblog/groph-bank/pkg/uow"
)

type AppServices struct {
	Gate               *Gate
	AuditService       *AuditService
	CustomerService    *CustomerService
	TransactionService *TransactionService
}

func Factory(unitOfWork uow.UOW) (*AppServices, error) {
	gate, gateErr := NewGate(unitOfWork)
	if gateErr != nil {
		return nil, fmt.Errorf("service factory: %w", gateErr)
	}

	auditService, auditServiceErr := NewAuditService(unitOfWork, gate)
	if auditServiceErr != nil {
		return nil, fmt.Errorf("service factory: %w", auditServiceErr)
	}

	return &AppServices{
		Gate:               gate,
		AuditService:       auditService,
		CustomerService:    NewCustomerService(unitOfWork, gate, auditService),
		TransactionService: NewTransactionService(unitOfWork, gate, auditService),
	}, nil
}
