package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/repository/repoargs"
	"github.com/fsdevblog/groph-bank/internal/service"
	"github.com/fsdevblog/groph-bank/internal/service/mocks"
	"github.com/fsdevblog/groph-bank/pkg/uow"
	uowmocks "github.com/fsdevblog/groph-bank/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CustomerServiceTestSuite struct {
	suite.Suite
	mockCtrl         *gomock.Controller
	mockUOW          *uowmocks.MockUOW
	mockTX           *uowmocks.MockTX
	mockCustomerRepo *mocks.MockCustomerRepository
	mockAccountRepo  *mocks.MockAccountRepository
	mockGate         *mocks.MockAuthorizer
	mockAudit        *mocks.MockAuditRecorder
	service          *service.CustomerService
}

func TestCustomerServiceSuite(t *testing.T) {
	suite.Run(t, new(CustomerServiceTestSuite))
}

func (s *CustomerServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockCustomerRepo = mocks.NewMockCustomerRepository(s.mockCtrl)
	s.mockAccountRepo = mocks.NewMockAccountRepository(s.mockCtrl)
	s.mockGate = mocks.NewMockAuthorizer(s.mockCtrl)
	s.mockAudit = mocks.NewMockAuditRecorder(s.mockCtrl)

	s.service = service.NewCustomerService(s.mockUOW, s.mockGate, s.mockAudit)
}

func (s *CustomerServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

// expectDo прокидывает колбек единицы работы на замоканную транзакцию.
func (s *CustomerServiceTestSuite) expectDo() {
	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(s.T().Context(), s.mockTX)
		},
	)
}

func (s *CustomerServiceTestSuite) expectCustomerRepo() {
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.CustomerRepoName)).
		Return(s.mockCustomerRepo, nil)
}

func (s *CustomerServiceTestSuite) TestCreate() {
	principal := "teller-1"
	created := &domain.Customer{
		ID:        10,
		CreatedAt: time.Now(),
		Name:      "Alice",
		Address:   "Baker st. 221b",
		Phone:     "+100200300",
		Email:     "alice@example.com",
		CreatedBy: principal,
	}

	s.mockGate.EXPECT().Authorize(gomock.Any(), principal, service.CapCustomerInsert).Return(nil)
	s.expectDo()
	s.expectCustomerRepo()

	s.mockCustomerRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.CustomerCreate) (*domain.Customer, error) {
			// created_by заполняется учеткой вызывающего.
			s.Equal(principal, args.CreatedBy)
			s.Equal("Alice", args.Name)
			return created, nil
		})

	s.mockAudit.EXPECT().RecordInTx(gomock.Any(), s.mockTX, principal, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uow.TX, _ string, args service.RecordAuditArgs) (*domain.AuditEntry, error) {
			s.Equal(domain.AuditActionCreate, args.Action)
			s.Equal("customers", args.AffectedEntity)
			s.Equal(created.ID, args.AffectedID)
			s.Nil(args.OldValue)
			s.Require().NotNil(args.NewValue)
			s.Equal("name=Alice address=Baker st. 221b phone=+100200300 email=alice@example.com", *args.NewValue)
			return &domain.AuditEntry{ID: 1}, nil
		})

	customer, err := s.service.Create(s.T().Context(), principal, service.CreateCustomerArgs{
		Name:    "Alice",
		Address: "Baker st. 221b",
		Phone:   "+100200300",
		Email:   "alice@example.com",
	})
	s.Require().NoError(err)
	s.Equal(created, customer)
}

func (s *CustomerServiceTestSuite) TestCreate_Unauthorized() {
	principal := "auditor-1"

	// единица работы не запускается, состояние не трогается.
	s.mockGate.EXPECT().
		Authorize(gomock.Any(), principal, service.CapCustomerInsert).
		Return(domain.ErrUnauthorized)

	customer, err := s.service.Create(s.T().Context(), principal, service.CreateCustomerArgs{Name: "Alice"})
	s.Require().ErrorIs(err, domain.ErrUnauthorized)
	s.Nil(customer)
}

func (s *CustomerServiceTestSuite) TestGetDetails() {
	principal := "auditor-1"
	customer := &domain.Customer{ID: 10, Name: "Alice"}

	s.mockGate.EXPECT().Authorize(gomock.Any(), principal, service.CapCustomerRead).Return(nil)
	s.expectDo()
	s.expectCustomerRepo()
	s.mockCustomerRepo.EXPECT().FindByID(gomock.Any(), customer.ID).Return(customer, nil)

	s.mockAudit.EXPECT().RecordInTx(gomock.Any(), s.mockTX, principal, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uow.TX, _ string, args service.RecordAuditArgs) (*domain.AuditEntry, error) {
			s.Equal(domain.AuditActionView, args.Action)
			s.Equal("customers", args.AffectedEntity)
			s.Equal(customer.ID, args.AffectedID)
			return &domain.AuditEntry{ID: 2}, nil
		})

	got, err := s.service.GetDetails(s.T().Context(), principal, customer.ID)
	s.Require().NoError(err)
	s.Equal(customer, got)
}

func (s *CustomerServiceTestSuite) TestGetDetails_AuditFailureFailsRead() {
	principal := "auditor-1"
	auditErr := errors.New("audit insert failed")

	s.mockGate.EXPECT().Authorize(gomock.Any(), principal, service.CapCustomerRead).Return(nil)
	s.expectDo()
	s.expectCustomerRepo()
	s.mockCustomerRepo.EXPECT().FindByID(gomock.Any(), int64(10)).
		Return(&domain.Customer{ID: 10}, nil)

	// ошибка VIEW-записи откатывает единицу работы, чтение не считается успешным.
	s.mockAudit.EXPECT().RecordInTx(gomock.Any(), s.mockTX, principal, gomock.Any()).
		Return(nil, auditErr)

	got, err := s.service.GetDetails(s.T().Context(), principal, 10)
	s.Require().ErrorIs(err, auditErr)
	s.Nil(got)
}

func (s *CustomerServiceTestSuite) TestGetDetails_NotFound() {
	principal := "teller-1"

	s.mockGate.EXPECT().Authorize(gomock.Any(), principal, service.CapCustomerRead).Return(nil)
	s.expectDo()
	s.expectCustomerRepo()
	s.mockCustomerRepo.EXPECT().FindByID(gomock.Any(), int64(404)).
		Return(nil, domain.ErrRecordNotFound)

	got, err := s.service.GetDetails(s.T().Context(), principal, 404)
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
	s.Nil(got)
}

func (s *CustomerServiceTestSuite) TestUpdate_PartialFields() {
	principal := "manager-1"
	current := &domain.Customer{
		ID:      10,
		Name:    "Alice",
		Address: "Baker st. 221b",
		Phone:   "+100200300",
		Email:   "alice@example.com",
	}
	newPhone := "+900800700"

	s.mockGate.EXPECT().Authorize(gomock.Any(), principal, service.CapCustomerUpdate).Return(nil)
	s.expectDo()
	s.expectCustomerRepo()
	s.mockCustomerRepo.EXPECT().FindByIDForUpdate(gomock.Any(), current.ID).Return(current, nil)

	s.mockCustomerRepo.EXPECT().Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, merged domain.Customer) (*domain.Customer, error) {
			// меняется только присланное поле, остальные остаются как были.
			s.Equal(newPhone, merged.Phone)
			s.Equal(current.Name, merged.Name)
			s.Equal(current.Address, merged.Address)
			s.Equal(current.Email, merged.Email)
			return &merged, nil
		})

	s.mockAudit.EXPECT().RecordInTx(gomock.Any(), s.mockTX, principal, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uow.TX, _ string, args service.RecordAuditArgs) (*domain.AuditEntry, error) {
			s.Equal(domain.AuditActionUpdate, args.Action)
			s.Require().NotNil(args.OldValue)
			s.Require().NotNil(args.NewValue)
			s.Contains(*args.OldValue, "phone=+100200300")
			s.Contains(*args.NewValue, "phone=+900800700")
			return &domain.AuditEntry{ID: 3}, nil
		})

	updated, err := s.service.Update(s.T().Context(), principal, current.ID, repoargs.CustomerUpdateFields{
		Phone: &newPhone,
	})
	s.Require().NoError(err)
	s.Equal(newPhone, updated.Phone)
}

func (s *CustomerServiceTestSuite) TestUpdate_NotFound() {
	principal := "manager-1"

	s.mockGate.EXPECT().Authorize(gomock.Any(), principal, service.CapCustomerUpdate).Return(nil)
	s.expectDo()
	s.expectCustomerRepo()
	s.mockCustomerRepo.EXPECT().FindByIDForUpdate(gomock.Any(), int64(404)).
		Return(nil, domain.ErrRecordNotFound)

	name := "Bob"
	updated, err := s.service.Update(s.T().Context(), principal, 404, repoargs.CustomerUpdateFields{Name: &name})
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
	s.Nil(updated)
}

func (s *CustomerServiceTestSuite) TestOpenAccount() {
	principal := "teller-1"
	account := &domain.Account{
		ID:         5,
		CustomerID: 10,
		Balance:    decimal.Zero,
		Status:     domain.AccountStatusActive,
	}

	s.mockGate.EXPECT().Authorize(gomock.Any(), principal, service.CapAccountInsert).Return(nil)
	s.expectDo()
	s.expectCustomerRepo()
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.AccountRepoName)).
		Return(s.mockAccountRepo, nil)

	s.mockCustomerRepo.EXPECT().FindByID(gomock.Any(), account.CustomerID).
		Return(&domain.Customer{ID: account.CustomerID}, nil)
	s.mockAccountRepo.EXPECT().Create(gomock.Any(), account.CustomerID).Return(account, nil)

	s.mockAudit.EXPECT().RecordInTx(gomock.Any(), s.mockTX, principal, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uow.TX, _ string, args service.RecordAuditArgs) (*domain.AuditEntry, error) {
			s.Equal(domain.AuditActionCreate, args.Action)
			s.Equal("accounts", args.AffectedEntity)
			s.Equal(account.ID, args.AffectedID)
			return &domain.AuditEntry{ID: 4}, nil
		})

	got, err := s.service.OpenAccount(s.T().Context(), principal, account.CustomerID)
	s.Require().NoError(err)
	s.Equal(account, got)
}

func (s *CustomerServiceTestSuite) TestOpenAccount_CustomerMissing() {
	principal := "teller-1"

	s.mockGate.EXPECT().Authorize(gomock.Any(), principal, service.CapAccountInsert).Return(nil)
	s.expectDo()
	s.expectCustomerRepo()
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.AccountRepoName)).
		Return(s.mockAccountRepo, nil)

	s.mockCustomerRepo.EXPECT().FindByID(gomock.Any(), int64(404)).
		Return(nil, domain.ErrRecordNotFound)

	got, err := s.service.OpenAccount(s.T().Context(), principal, 404)
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
	s.Nil(got)
}
