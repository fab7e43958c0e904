package mocks

import (
	"context"
	"time"

	"docuvault/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Store(ctx context.Context, content []byte, docID, mimeType string, opt storage.StoreOptions) (*storage.StoredObject, error) {
	args := m.Called(ctx, content, docID, mimeType, opt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.StoredObject), args.Error(1)
}

func (m *MockGateway) PresignUpload(ctx context.Context, docID, mimeType string, opt storage.PresignOptions) (*storage.PresignedUpload, error) {
	args := m.Called(ctx, docID, mimeType, opt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.PresignedUpload), args.Error(1)
}

func (m *MockGateway) PresignDownload(ctx context.Context, urlOrKey string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, urlOrKey, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) Delete(ctx context.Context, urlOrKey string) error {
	args := m.Called(ctx, urlOrKey)
	return args.Error(0)
}

func (m *MockGateway) List(ctx context.Context, prefix string, max int) ([]storage.ObjectInfo, error) {
	args := m.Called(ctx, prefix, max)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.ObjectInfo), args.Error(1)
}

func (m *MockGateway) Head(ctx context.Context, key string) (*storage.ObjectInfo, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ObjectInfo), args.Error(1)
}
