package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jasonhew98/e-commerce-service/internal/model"
	"github.com/jasonhew98/e-commerce-service/internal/remote"
	"github.com/jasonhew98/e-commerce-service/internal/service"
)

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Add(ctx context.Context, cmd service.AddAccountCommand) (string, error) {
	args := m.Called(ctx, cmd)
	return args.String(0), args.Error(1)
}

func (m *MockAccountService) Update(ctx context.Context, cmd service.UpdateAccountCommand) (*service.Updated, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Updated), args.Error(1)
}

func (m *MockAccountService) Get(ctx context.Context, id string) (*service.AccountDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AccountDetail), args.Error(1)
}

func (m *MockAccountService) List(ctx context.Context, q service.ListQuery) ([]service.AccountSummary, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.AccountSummary), args.Error(1)
}

func (m *MockAccountService) PageSize(ctx context.Context, pageSize int) (*service.PageSize, error) {
	args := m.Called(ctx, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PageSize), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Add(ctx context.Context, cmd service.AddUserCommand) (string, error) {
	args := m.Called(ctx, cmd)
	return args.String(0), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, cmd service.UpdateUserCommand) (*service.Updated, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Updated), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, id string) (*service.UserDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UserDetail), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, q service.ListQuery) ([]service.UserSummary, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.UserSummary), args.Error(1)
}

func (m *MockUserService) PageSize(ctx context.Context, pageSize int) (*service.PageSize, error) {
	args := m.Called(ctx, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PageSize), args.Error(1)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Add(ctx context.Context, cmd service.AddProductCommand) (string, error) {
	args := m.Called(ctx, cmd)
	return args.String(0), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, cmd service.UpdateProductCommand) (*service.Updated, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Updated), args.Error(1)
}

func (m *MockProductService) Get(ctx context.Context, id string) (*service.ProductDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ProductDetail), args.Error(1)
}

func (m *MockProductService) List(ctx context.Context, q service.ListQuery) ([]service.ProductSummary, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.ProductSummary), args.Error(1)
}

func (m *MockProductService) PageSize(ctx context.Context, pageSize int) (*service.PageSize, error) {
	args := m.Called(ctx, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PageSize), args.Error(1)
}

type MockOnboardService struct {
	mock.Mock
}

func (m *MockOnboardService) SignUp(ctx context.Context, cmd service.SignUpCommand) (string, error) {
	args := m.Called(ctx, cmd)
	return args.String(0), args.Error(1)
}

func (m *MockOnboardService) Login(ctx context.Context, cmd service.LoginCommand) (*service.LoginResult, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

type MockDriveService struct {
	mock.Mock
}

func (m *MockDriveService) Download(ctx context.Context, cmd service.DownloadDriveFileCommand) (*service.DownloadResult, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DownloadResult), args.Error(1)
}

func (m *MockDriveService) RefreshAccessToken(ctx context.Context, ts model.OAuthTokenSet) (*remote.Token, error) {
	args := m.Called(ctx, ts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*remote.Token), args.Error(1)
}

type MockMicrosoftService struct {
	mock.Mock
}

func (m *MockMicrosoftService) RefreshAccessToken(ctx context.Context, ts model.OAuthTokenSet) (*remote.Token, error) {
	args := m.Called(ctx, ts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*remote.Token), args.Error(1)
}
