package api

import (
	"context"
	"net/http"
	"time"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/repository/repoargs"
	"github.com/fsdevblog/groph-bank/internal/service"
	"github.com/gin-gonic/gin"
)

type CustomersHandler struct {
	svs CustomerServicer
}

func NewCustomersHandler(svs CustomerServicer) *CustomersHandler {
	return &CustomersHandler{
		svs: svs,
	}
}

type CreateCustomerParams struct {
	Name    string `json:"name" binding:"required,max_bytes=255"`
	Address string `json:"address" binding:"omitempty,max_bytes=512"`
	Phone   string `json:"phone" binding:"omitempty,max_bytes=32"`
	Email   string `json:"email" binding:"omitempty,email,max_bytes=255"`
}

// UpdateCustomerParams nil-поле означает "не менять", присланное пустое значение - очистку.
type UpdateCustomerParams struct {
	Name    *string `json:"name" binding:"omitempty,max_bytes=255"`
	Address *string `json:"address" binding:"omitempty,max_bytes=512"`
	Phone   *string `json:"phone" binding:"omitempty,max_bytes=32"`
	Email   *string `json:"email" binding:"omitempty,email,max_bytes=255"`
}

type CustomerResponse struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	CreatedBy string    `json:"created_by"`
}

type AccountResponse struct {
	ID         int64     `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	CustomerID int64     `json:"customer_id"`
	Balance    float64   `json:"balance"`
	Status     string    `json:"status"`
}

// Create POST RouteGroup + CustomersRoute.
func (h *CustomersHandler) Create(c *gin.Context) {
	principal := getPrincipalFromContext(c)

	var params CreateCustomerParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	customer, err := h.svs.Create(reqCtx, principal, service.CreateCustomerArgs{
		Name:    params.Name,
		Address: params.Address,
		Phone:   params.Phone,
		Email:   params.Email,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newCustomerResponse(customer))
}

// Show GET RouteGroup + CustomerRoute.
func (h *CustomersHandler) Show(c *gin.Context) {
	principal := getPrincipalFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	customer, err := h.svs.GetDetails(reqCtx, principal, id)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newCustomerResponse(customer))
}

// Update PATCH RouteGroup + CustomerRoute.
func (h *CustomersHandler) Update(c *gin.Context) {
	principal := getPrincipalFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var params UpdateCustomerParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	customer, err := h.svs.Update(reqCtx, principal, id, repoargs.CustomerUpdateFields{
		Name:    params.Name,
		Address: params.Address,
		Phone:   params.Phone,
		Email:   params.Email,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newCustomerResponse(customer))
}

// OpenAccount POST RouteGroup + CustomerAccountsRoute.
func (h *CustomersHandler) OpenAccount(c *gin.Context) {
	principal := getPrincipalFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	account, err := h.svs.OpenAccount(reqCtx, principal, id)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newAccountResponse(account))
}

func newCustomerResponse(customer *domain.Customer) *CustomerResponse {
	return &CustomerResponse{
		ID:        customer.ID,
		CreatedAt: customer.CreatedAt,
		Name:      customer.Name,
		Address:   customer.Address,
		Phone:     customer.Phone,
		Email:     customer.Email,
		CreatedBy: customer.CreatedBy,
	}
}

func newAccountResponse(account *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:         account.ID,
		CreatedAt:  account.CreatedAt,
		CustomerID: account.CustomerID,
		Balance:    account.Balance.InexactFloat64(),
		Status:     string(account.Status),
	}
}
