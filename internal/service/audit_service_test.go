package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/repository/repoargs"
	"github.com/fsdevblog/groph-bank/internal/service"
	"github.com/fsdevblog/groph-bank/internal/service/mocks"
	"github.com/fsdevblog/groph-bank/pkg/uow"
	uowmocks "github.com/fsdevblog/groph-bank/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type AuditServiceTestSuite struct {
	suite.Suite
	mockCtrl      *gomock.Controller
	mockUOW       *uowmocks.MockUOW
	mockTX        *uowmocks.MockTX
	mockAuditRepo *mocks.MockAuditRepository
	mockGate      *mocks.MockAuthorizer
	service       *service.AuditService
}

func TestAuditServiceSuite(t *testing.T) {
	suite.Run(t, new(AuditServiceTestSuite))
}

func (s *AuditServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockAuditRepo = mocks.NewMockAuditRepository(s.mockCtrl)
	s.mockGate = mocks.NewMockAuthorizer(s.mockCtrl)

	// Настроить возврат AuditRepository в сервисе при инициализации
	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.AuditRepoName)).
		Return(s.mockAuditRepo, nil).AnyTimes()

	var err error
	s.service, err = service.NewAuditService(s.mockUOW, s.mockGate)
	s.Require().NoError(err)
}

func (s *AuditServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

// expectDo прокидывает колбек единицы работы на замоканную транзакцию.
func (s *AuditServiceTestSuite) expectDo() {
	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(s.T().Context(), s.mockTX)
		},
	)
}

func (s *AuditServiceTestSuite) TestRecord() {
	principal := "teller-1"

	s.mockGate.EXPECT().
		Elevate(gomock.Any(), principal, service.CapAuditWrite).
		Return(service.ServicePrincipal, nil)
	s.expectDo()
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.AuditRepoName)).
		Return(s.mockAuditRepo, nil)

	newValue := "name=Alice"
	s.mockAuditRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.AuditEntryCreate) (*domain.AuditEntry, error) {
			// запись идет от имени вызывающего, но с сервисной учеткой в origin.
			s.Equal(principal, args.Principal)
			s.Equal(domain.AuditActionCreate, args.Action)
			s.Equal("customers", args.AffectedEntity)
			s.Equal(int64(42), args.AffectedID)
			s.Require().NotNil(args.Origin)
			s.Equal(service.ServicePrincipal, *args.Origin)
			return &domain.AuditEntry{ID: 1, CreatedAt: time.Now(), Principal: args.Principal}, nil
		})

	entry, err := s.service.Record(s.T().Context(), principal, service.RecordAuditArgs{
		Action:         domain.AuditActionCreate,
		AffectedEntity: "customers",
		AffectedID:     42,
		NewValue:       &newValue,
	})
	s.Require().NoError(err)
	s.NotNil(entry)
}

func (s *AuditServiceTestSuite) TestRecord_Denied() {
	principal := "nobody"

	// единица работы не запускается вовсе.
	s.mockGate.EXPECT().
		Elevate(gomock.Any(), principal, service.CapAuditWrite).
		Return("", fmt.Errorf("principal %q lacks capability: %w", principal, domain.ErrUnauthorized))

	entry, err := s.service.Record(s.T().Context(), principal, service.RecordAuditArgs{
		Action:         domain.AuditActionView,
		AffectedEntity: "customers",
		AffectedID:     1,
	})
	s.Require().ErrorIs(err, domain.ErrUnauthorized)
	s.Nil(entry)
}

func (s *AuditServiceTestSuite) TestRecordInTx() {
	principal := "manager-3"

	// шлюз не опрашивается: внешняя операция уже авторизована.
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.AuditRepoName)).
		Return(s.mockAuditRepo, nil)

	s.mockAuditRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.AuditEntryCreate) (*domain.AuditEntry, error) {
			s.Equal(principal, args.Principal)
			s.Require().NotNil(args.Origin)
			s.Equal(service.ServicePrincipal, *args.Origin)
			return &domain.AuditEntry{ID: 7}, nil
		})

	entry, err := s.service.RecordInTx(s.T().Context(), s.mockTX, principal, service.RecordAuditArgs{
		Action:         domain.AuditActionApprove,
		AffectedEntity: "transactions",
		AffectedID:     5,
	})
	s.Require().NoError(err)
	s.Equal(int64(7), entry.ID)
}

func (s *AuditServiceTestSuite) TestQuery() {
	principal := "auditor-1"
	query := repoargs.AuditQuery{
		Start: time.Now().Add(-time.Hour),
		End:   time.Now(),
	}
	expected := []domain.AuditEntry{{ID: 2}, {ID: 1}}

	s.mockGate.EXPECT().
		Elevate(gomock.Any(), principal, service.CapAuditRead).
		Return(service.ServicePrincipal, nil)
	s.mockAuditRepo.EXPECT().Query(gomock.Any(), query).Return(expected, nil)

	entries, err := s.service.Query(s.T().Context(), principal, query)
	s.Require().NoError(err)
	s.Equal(expected, entries)
}

func (s *AuditServiceTestSuite) TestQuery_Denied() {
	principal := "teller-1"

	s.mockGate.EXPECT().
		Elevate(gomock.Any(), principal, service.CapAuditRead).
		Return("", fmt.Errorf("principal %q lacks capability: %w", principal, domain.ErrUnauthorized))

	entries, err := s.service.Query(s.T().Context(), principal, repoargs.AuditQuery{Start: time.Now()})
	s.Require().ErrorIs(err, domain.ErrUnauthorized)
	s.Nil(entries)
}
