package mocks

import (
	"context"

	"docuvault/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockCommunityService struct {
	mock.Mock
}

func (m *MockCommunityService) List(ctx context.Context) ([]model.Community, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Community), args.Error(1)
}

func (m *MockCommunityService) GetByNumber(ctx context.Context, number int) (*model.Community, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Community), args.Error(1)
}
