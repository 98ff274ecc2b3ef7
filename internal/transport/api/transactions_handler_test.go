package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/logger"
	"github.com/fsdevblog/groph-bank/internal/repository/repoargs"
	"github.com/fsdevblog/groph-bank/internal/transport/api/mocks"
	"github.com/fsdevblog/groph-bank/internal/transport/api/testutils"
	"github.com/fsdevblog/groph-bank/internal/transport/api/tokens"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type TransactionsHandlerTestSuite struct {
	suite.Suite
	mockCtrl               *gomock.Controller
	router                 *gin.Engine
	mockTransactionService *mocks.MockTransactionServicer
	jwtSecret              []byte
}

func TestTransactionsHandlerSuite(t *testing.T) {
	suite.Run(t, new(TransactionsHandlerTestSuite))
}

func (s *TransactionsHandlerTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockTransactionService = mocks.NewMockTransactionServicer(s.mockCtrl)
	s.jwtSecret = []byte("super secret key")

	s.router = New(RouterArgs{
		Logger:             logger.New(os.Stdout),
		TransactionService: s.mockTransactionService,
		JWTSecretKey:       s.jwtSecret,
	})
}

func (s *TransactionsHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *TransactionsHandlerTestSuite) principalToken(principal string) string {
	token, err := tokens.GeneratePrincipalJWT(principal, time.Hour, s.jwtSecret)
	s.Require().NoError(err)
	return token
}

func (s *TransactionsHandlerTestSuite) makeJSONRequest(method, url, token string, payload []byte) *http.Response {
	args := testutils.RequestArgs{
		Router: s.router,
		Method: method,
		URL:    url,
		Body:   bytes.NewReader(payload),
	}
	reqOpts := []func(*testutils.RequestOptions){
		testutils.WithHeader("Content-Type", "application/json"),
	}
	if token != "" {
		reqOpts = append(reqOpts, testutils.WithHeader("Authorization", fmt.Sprintf("Bearer %s", token)))
	}
	res, err := testutils.MakeRequest(args, reqOpts...)
	s.Require().NoError(err)
	return res
}

func (s *TransactionsHandlerTestSuite) TestCreate() {
	tellerToken := s.principalToken("teller-1")
	auditorToken := s.principalToken("auditor-1")

	depositPayload, dErr := json.Marshal(gin.H{
		"account_id": 5,
		"amount":     "150.50",
		"type":       "DEPOSIT",
	})
	s.Require().NoError(dErr)

	overdraftPayload, oErr := json.Marshal(gin.H{
		"account_id": 6,
		"amount":     "9000",
		"type":       "WITHDRAWAL",
	})
	s.Require().NoError(oErr)

	// Моки
	s.mockTransactionService.EXPECT().
		Create(gomock.Any(), "teller-1", gomock.Any()).
		Return(&domain.Transaction{
			ID:     1,
			Amount: decimal.NewFromFloat(150.50),
			Type:   domain.TransactionTypeDeposit,
			Status: domain.TransactionStatusApproved,
		}, nil).Times(1)
	s.mockTransactionService.EXPECT().
		Create(gomock.Any(), "teller-2", gomock.Any()).
		Return(nil, fmt.Errorf("creating transaction: %w",
			domain.NewInsufficientFundsError(6, decimal.NewFromInt(100), decimal.NewFromInt(9000)))).Times(1)
	s.mockTransactionService.EXPECT().
		Create(gomock.Any(), "auditor-1", gomock.Any()).
		Return(nil, fmt.Errorf("creating transaction: %w", domain.ErrUnauthorized)).Times(1)

	teller2Token := s.principalToken("teller-2")

	cases := []struct {
		name       string
		payload    []byte
		jwtToken   string
		wantStatus int
	}{
		{
			name:       "deposit applied",
			payload:    depositPayload,
			jwtToken:   tellerToken,
			wantStatus: http.StatusCreated,
		}, {
			name:       "insufficient funds",
			payload:    overdraftPayload,
			jwtToken:   teller2Token,
			wantStatus: http.StatusPaymentRequired,
		}, {
			name:       "forbidden role",
			payload:    depositPayload,
			jwtToken:   auditorToken,
			wantStatus: http.StatusForbidden,
		}, {
			name:       "unknown type",
			payload:    []byte(`{"account_id":5,"amount":"10","type":"TRANSFER"}`),
			jwtToken:   tellerToken,
			wantStatus: http.StatusBadRequest,
		}, {
			name:       "not authorized",
			payload:    depositPayload,
			wantStatus: http.StatusUnauthorized,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			res := s.makeJSONRequest(http.MethodPost, RouteGroup+TransactionsRoute, t.jwtToken, t.payload)
			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

func (s *TransactionsHandlerTestSuite) TestApprove() {
	managerToken := s.principalToken("manager-1")
	tellerToken := s.principalToken("teller-1")

	approvedBy := "manager-1"
	approvedAt := time.Now()

	s.mockTransactionService.EXPECT().
		Approve(gomock.Any(), "manager-1", int64(7)).
		Return(&domain.Transaction{
			ID:         7,
			Amount:     decimal.NewFromInt(20000),
			Type:       domain.TransactionTypeWithdrawal,
			Status:     domain.TransactionStatusApproved,
			ApprovedBy: &approvedBy,
			ApprovedAt: &approvedAt,
		}, nil).Times(1)
	// повторное утверждение неотличимо от несуществующей транзакции.
	s.mockTransactionService.EXPECT().
		Approve(gomock.Any(), "manager-1", int64(8)).
		Return(nil, fmt.Errorf("approving transaction 8: %w", domain.ErrNotFoundOrNotPending)).Times(1)
	s.mockTransactionService.EXPECT().
		Approve(gomock.Any(), "teller-1", int64(7)).
		Return(nil, fmt.Errorf("approving transaction 7: %w", domain.ErrUnauthorized)).Times(1)

	cases := []struct {
		name       string
		url        string
		jwtToken   string
		wantStatus int
	}{
		{
			name:       "all ok",
			url:        RouteGroup + "/transactions/7/approve",
			jwtToken:   managerToken,
			wantStatus: http.StatusOK,
		}, {
			name:       "already approved",
			url:        RouteGroup + "/transactions/8/approve",
			jwtToken:   managerToken,
			wantStatus: http.StatusConflict,
		}, {
			name:       "forbidden for teller",
			url:        RouteGroup + "/transactions/7/approve",
			jwtToken:   tellerToken,
			wantStatus: http.StatusForbidden,
		}, {
			name:       "malformed id",
			url:        RouteGroup + "/transactions/abc/approve",
			jwtToken:   managerToken,
			wantStatus: http.StatusUnprocessableEntity,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			res := s.makeJSONRequest(http.MethodPost, t.url, t.jwtToken, nil)
			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

func (s *TransactionsHandlerTestSuite) TestShow() {
	auditorToken := s.principalToken("auditor-1")

	details := &repoargs.TransactionDetails{
		Transaction: domain.Transaction{ID: 7, AccountID: 5, Amount: decimal.NewFromInt(10)},
		Account:     domain.Account{ID: 5, CustomerID: 1, Balance: decimal.NewFromInt(100)},
		Customer:    domain.Customer{ID: 1, Name: "Alice"},
	}

	s.mockTransactionService.EXPECT().
		GetDetails(gomock.Any(), "auditor-1", int64(7)).
		Return(details, nil).Times(1)
	s.mockTransactionService.EXPECT().
		GetDetails(gomock.Any(), "auditor-1", int64(404)).
		Return(nil, fmt.Errorf("getting transaction details: %w", domain.ErrRecordNotFound)).Times(1)

	cases := []struct {
		name       string
		url        string
		wantStatus int
	}{
		{
			name:       "all ok",
			url:        RouteGroup + "/transactions/7",
			wantStatus: http.StatusOK,
		}, {
			name:       "not found",
			url:        RouteGroup + "/transactions/404",
			wantStatus: http.StatusNotFound,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			res := s.makeJSONRequest(http.MethodGet, t.url, auditorToken, nil)
			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Equal(t.wantStatus, res.StatusCode)

			if t.wantStatus == http.StatusOK {
				var body TransactionDetailsResponse
				decodeErr := json.NewDecoder(res.Body).Decode(&body)
				s.Require().NoError(decodeErr)
				s.Equal(details.Transaction.ID, body.Transaction.ID)
				s.Equal(details.Customer.Name, body.Customer.Name)
			}
		})
	}
}
