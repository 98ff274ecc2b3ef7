package api

import (
	"time"

	"github.com/fsdevblog/groph-bank/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	DefaultServiceTimeout = 3 * time.Second
)

const (
	RouteGroup              = "/api"
	CustomersRoute          = "/customers"
	CustomerRoute           = "/customers/:id"
	CustomerAccountsRoute   = "/customers/:id/accounts"
	TransactionsRoute       = "/transactions"
	TransactionRoute        = "/transactions/:id"
	TransactionApproveRoute = "/transactions/:id/approve"
	AuditRoute              = "/audit"
)

type RouterArgs struct {
	Logger             *logrus.Logger
	CustomerService    CustomerServicer
	TransactionService TransactionServicer
	AuditService       AuditServicer
	JWTSecretKey       []byte
}

func New(args RouterArgs) *gin.Engine {
	if err := registerValidators(); err != nil {
		panic(err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	customersHandler := NewCustomersHandler(args.CustomerService)
	transactionsHandler := NewTransactionsHandler(args.TransactionService)
	auditHandler := NewAuditHandler(args.AuditService)

	api := r.Group(RouteGroup)

	api.Use(middlewares.AuthRequired(args.JWTSecretKey))
	// все роуты группы требуют аутентифицированного принципала.
	api.POST(CustomersRoute, customersHandler.Create)
	api.GET(CustomerRoute, customersHandler.Show)
	api.PATCH(CustomerRoute, customersHandler.Update)
	api.POST(CustomerAccountsRoute, customersHandler.OpenAccount)

	api.POST(TransactionsRoute, transactionsHandler.Create)
	api.GET(TransactionRoute, transactionsHandler.Show)
	api.POST(TransactionApproveRoute, transactionsHandler.Approve)

	api.POST(AuditRoute, auditHandler.Record)
	api.GET(AuditRoute, auditHandler.Index)
	return r
}
