package mocks

import (
	"context"
	"time"

	"linkvault/internal/model"
	"linkvault/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockVaultService struct {
	mock.Mock
}

func (m *MockVaultService) Create(ctx context.Context, in service.CreateVaultInput) (*model.VaultEntry, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VaultEntry), args.Error(1)
}

func (m *MockVaultService) View(ctx context.Context, id, password string) (*service.EntryView, error) {
	args := m.Called(ctx, id, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EntryView), args.Error(1)
}

func (m *MockVaultService) Download(ctx context.Context, id, password string) (*service.DownloadResult, error) {
	args := m.Called(ctx, id, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DownloadResult), args.Error(1)
}

func (m *MockVaultService) Delete(ctx context.Context, id string, requester *model.Identity) error {
	args := m.Called(ctx, id, requester)
	return args.Error(0)
}

func (m *MockVaultService) DeleteOwned(ctx context.Context, id, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

func (m *MockVaultService) ListOwned(ctx context.Context, ownerID string) ([]model.VaultSummary, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.VaultSummary), args.Error(1)
}

func (m *MockVaultService) ExpiredBefore(ctx context.Context, now time.Time) ([]model.VaultEntry, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.VaultEntry), args.Error(1)
}

func (m *MockVaultService) Purge(ctx context.Context, entry *model.VaultEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
