package mocks

import (
	"context"

	"linkvault/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, name, email, password string) (string, *model.Identity, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*model.Identity), args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, *model.Identity, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*model.Identity), args.Error(2)
}

func (m *MockAuthService) ValidateToken(token string) (*model.Identity, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Identity), args.Error(1)
}
