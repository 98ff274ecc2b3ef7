package api

import (
	"context"
	"net/http"
	"time"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type TransactionsHandler struct {
	svs TransactionServicer
}

func NewTransactionsHandler(svs TransactionServicer) *TransactionsHandler {
	return &TransactionsHandler{
		svs: svs,
	}
}

type CreateTransactionParams struct {
	AccountID   int64           `json:"account_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Type        string          `json:"type" binding:"required,oneof=DEPOSIT WITHDRAWAL"`
	Description string          `json:"description" binding:"omitempty,max_bytes=512"`
}

type TransactionResponse struct {
	ID          int64      `json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	AccountID   int64      `json:"account_id"`
	Amount      float64    `json:"amount"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	Description string     `json:"description,omitempty"`
	CreatedBy   string     `json:"created_by"`
	ApprovedBy  *string    `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
}

type TransactionDetailsResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Account     AccountResponse     `json:"account"`
	Customer    CustomerResponse    `json:"customer"`
}

// Create POST RouteGroup + TransactionsRoute.
func (h *TransactionsHandler) Create(c *gin.Context) {
	principal := getPrincipalFromContext(c)

	var params CreateTransactionParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transaction, err := h.svs.Create(reqCtx, principal, service.CreateTransactionArgs{
		AccountID:   params.AccountID,
		Amount:      params.Amount,
		Type:        domain.TransactionType(params.Type),
		Description: params.Description,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newTransactionResponse(transaction))
}

// Approve POST RouteGroup + TransactionApproveRoute.
func (h *TransactionsHandler) Approve(c *gin.Context) {
	principal := getPrincipalFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transaction, err := h.svs.Approve(reqCtx, principal, id)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTransactionResponse(transaction))
}

// Show GET RouteGroup + TransactionRoute.
func (h *TransactionsHandler) Show(c *gin.Context) {
	principal := getPrincipalFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	details, err := h.svs.GetDetails(reqCtx, principal, id)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, &TransactionDetailsResponse{
		Transaction: *newTransactionResponse(&details.Transaction),
		Account:     *newAccountResponse(&details.Account),
		Customer:    *newCustomerResponse(&details.Customer),
	})
}

func newTransactionResponse(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:          t.ID,
		CreatedAt:   t.CreatedAt,
		AccountID:   t.AccountID,
		Amount:      t.Amount.InexactFloat64(),
		Type:        string(t.Type),
		Status:      string(t.Status),
		Description: t.Description,
		CreatedBy:   t.CreatedBy,
		ApprovedBy:  t.ApprovedBy,
		ApprovedAt:  t.ApprovedAt,
	}
}
