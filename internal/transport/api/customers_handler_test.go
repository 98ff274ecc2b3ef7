package api

import (
	"bytes"
	"context"
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

type CustomersHandlerTestSuite struct {
	suite.Suite
	mockCtrl            *gomock.Controller
	router              *gin.Engine
	mockCustomerService *mocks.MockCustomerServicer
	jwtSecret           []byte
}

func TestCustomersHandlerSuite(t *testing.T) {
	suite.Run(t, new(CustomersHandlerTestSuite))
}

func (s *CustomersHandlerTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockCustomerService = mocks.NewMockCustomerServicer(s.mockCtrl)
	s.jwtSecret = []byte("super secret key")

	s.router = New(RouterArgs{
		Logger:          logger.New(os.Stdout),
		CustomerService: s.mockCustomerService,
		JWTSecretKey:    s.jwtSecret,
	})
}

func (s *CustomersHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *CustomersHandlerTestSuite) principalToken(principal string) string {
	token, err := tokens.GeneratePrincipalJWT(principal, time.Hour, s.jwtSecret)
	s.Require().NoError(err)
	return token
}

func (s *CustomersHandlerTestSuite) makeJSONRequest(method, url, token string, payload []byte) *http.Response {
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

func (s *CustomersHandlerTestSuite) TestCreate() {
	tellerToken := s.principalToken("teller-1")
	auditorToken := s.principalToken("auditor-1")

	validPayload, mErr := json.Marshal(gin.H{
		"name":    "Alice",
		"address": "Baker st. 221b",
		"email":   "alice@example.com",
	})
	s.Require().NoError(mErr)

	// 300 рун эмодзи = 1200 байт: валидатор max_bytes считает байты, а не руны.
	overLongPayload, oErr := json.Marshal(gin.H{"name": testutils.GenerateOverBytesUnderRunes(300)})
	s.Require().NoError(oErr)

	// Моки
	s.mockCustomerService.EXPECT().
		Create(gomock.Any(), "teller-1", gomock.Any()).
		Return(&domain.Customer{ID: 1, Name: "Alice"}, nil).Times(1)
	// Аудитору вставка запрещена.
	s.mockCustomerService.EXPECT().
		Create(gomock.Any(), "auditor-1", gomock.Any()).
		Return(nil, fmt.Errorf("creating customer: %w", domain.ErrUnauthorized)).Times(1)

	cases := []struct {
		name       string
		payload    []byte
		jwtToken   string
		wantStatus int
	}{
		{
			name:       "all ok",
			payload:    validPayload,
			jwtToken:   tellerToken,
			wantStatus: http.StatusCreated,
		}, {
			name:       "forbidden role",
			payload:    validPayload,
			jwtToken:   auditorToken,
			wantStatus: http.StatusForbidden,
		}, {
			name:       "not authorized",
			payload:    validPayload,
			wantStatus: http.StatusUnauthorized,
		}, {
			name:       "missing name",
			payload:    []byte(`{"address":"Baker st. 221b"}`),
			jwtToken:   tellerToken,
			wantStatus: http.StatusBadRequest,
		}, {
			name:       "name over byte limit",
			payload:    overLongPayload,
			jwtToken:   tellerToken,
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			res := s.makeJSONRequest(http.MethodPost, RouteGroup+CustomersRoute, t.jwtToken, t.payload)
			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

func (s *CustomersHandlerTestSuite) TestShow() {
	tellerToken := s.principalToken("teller-1")

	s.mockCustomerService.EXPECT().
		GetDetails(gomock.Any(), "teller-1", int64(1)).
		Return(&domain.Customer{ID: 1, Name: "Alice"}, nil).Times(1)
	s.mockCustomerService.EXPECT().
		GetDetails(gomock.Any(), "teller-1", int64(404)).
		Return(nil, fmt.Errorf("getting customer details: %w", domain.ErrRecordNotFound)).Times(1)

	cases := []struct {
		name       string
		url        string
		jwtToken   string
		wantStatus int
	}{
		{
			name:       "all ok",
			url:        RouteGroup + "/customers/1",
			jwtToken:   tellerToken,
			wantStatus: http.StatusOK,
		}, {
			name:       "not found",
			url:        RouteGroup + "/customers/404",
			jwtToken:   tellerToken,
			wantStatus: http.StatusNotFound,
		}, {
			name:       "malformed id",
			url:        RouteGroup + "/customers/abc",
			jwtToken:   tellerToken,
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "not authorized",
			url:        RouteGroup + "/customers/1",
			wantStatus: http.StatusUnauthorized,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			res := s.makeJSONRequest(http.MethodGet, t.url, t.jwtToken, nil)
			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

func (s *CustomersHandlerTestSuite) TestUpdate() {
	managerToken := s.principalToken("manager-1")
	tellerToken := s.principalToken("teller-1")

	payload := []byte(`{"phone":"+900800700"}`)

	s.mockCustomerService.EXPECT().
		Update(gomock.Any(), "manager-1", int64(1), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ int64, fields repoargs.CustomerUpdateFields) (*domain.Customer, error) {
			// прокидывается только присланное поле.
			s.Require().NotNil(fields.Phone)
			s.Equal("+900800700", *fields.Phone)
			s.Nil(fields.Name)
			s.Nil(fields.Address)
			s.Nil(fields.Email)
			return &domain.Customer{ID: 1, Phone: *fields.Phone}, nil
		}).Times(1)
	s.mockCustomerService.EXPECT().
		Update(gomock.Any(), "teller-1", int64(1), gomock.Any()).
		Return(nil, fmt.Errorf("updating customer 1: %w", domain.ErrUnauthorized)).Times(1)

	cases := []struct {
		name       string
		jwtToken   string
		wantStatus int
	}{
		{
			name:       "all ok",
			jwtToken:   managerToken,
			wantStatus: http.StatusOK,
		}, {
			name:       "forbidden for teller",
			jwtToken:   tellerToken,
			wantStatus: http.StatusForbidden,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			res := s.makeJSONRequest(http.MethodPatch, RouteGroup+"/customers/1", t.jwtToken, payload)
			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

func (s *CustomersHandlerTestSuite) TestOpenAccount() {
	tellerToken := s.principalToken("teller-1")

	s.mockCustomerService.EXPECT().
		OpenAccount(gomock.Any(), "teller-1", int64(1)).
		Return(&domain.Account{
			ID:         5,
			CustomerID: 1,
			Balance:    decimal.Zero,
			Status:     domain.AccountStatusActive,
		}, nil).Times(1)
	s.mockCustomerService.EXPECT().
		OpenAccount(gomock.Any(), "teller-1", int64(404)).
		Return(nil, fmt.Errorf("opening account for customer 404: %w", domain.ErrRecordNotFound)).Times(1)

	cases := []struct {
		name       string
		url        string
		wantStatus int
	}{
		{
			name:       "all ok",
			url:        RouteGroup + "/customers/1/accounts",
			wantStatus: http.StatusCreated,
		}, {
			name:       "customer missing",
			url:        RouteGroup + "/customers/404/accounts",
			wantStatus: http.StatusNotFound,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			res := s.makeJSONRequest(http.MethodPost, t.url, tellerToken, nil)
			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}
