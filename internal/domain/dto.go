package domain

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
)

type TransactionStatusType string

const (
	TransactionStatusPendingApproval TransactionStatusType = "PENDING_APPROVAL"
	TransactionStatusApproved        TransactionStatusType = "APPROVED"
)

type AccountStatusType string

const (
	AccountStatusActive AccountStatusType = "ACTIVE"
	AccountStatusClosed AccountStatusType = "CLOSED"
)

type RoleType string

const (
	RoleTeller  RoleType = "TELLER"
	RoleManager RoleType = "MANAGER"
	RoleAuditor RoleType = "AUDITOR"
)

type AuditActionType string

const (
	AuditActionCreate  AuditActionType = "CREATE"
	AuditActionUpdate  AuditActionType = "UPDATE"
	AuditActionView    AuditActionType = "VIEW"
	AuditActionApprove AuditActionType = "APPROVE"
)
