package mocks

import (
	"context"
	"time"

	"linkvault/internal/model"
	"linkvault/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockVaultRepository struct {
	mock.Mock
}

func (m *MockVaultRepository) Create(ctx context.Context, entry *model.VaultEntry) (*model.VaultEntry, error) {
	args := m.Called(ctx, entry)
	if f, ok := args.Get(0).(func(context.Context, *model.VaultEntry) *model.VaultEntry); ok {
		return f(ctx, entry), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VaultEntry), args.Error(1)
}

func (m *MockVaultRepository) FindByID(ctx context.Context, id string) (*model.VaultEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VaultEntry), args.Error(1)
}

func (m *MockVaultRepository) RegisterAccess(ctx context.Context, id string, upd repository.AccessUpdate) (*model.VaultEntry, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VaultEntry), args.Error(1)
}

func (m *MockVaultRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockVaultRepository) FindExpiredBefore(ctx context.Context, now time.Time) ([]model.VaultEntry, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.VaultEntry), args.Error(1)
}

func (m *MockVaultRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.VaultEntry, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.VaultEntry), args.Error(1)
}
