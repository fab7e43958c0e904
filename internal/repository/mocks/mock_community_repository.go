package mocks

import (
	"context"

	"docuvault/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockCommunityRepository struct {
	mock.Mock
}

func (m *MockCommunityRepository) List(ctx context.Context) ([]model.Community, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Community), args.Error(1)
}

func (m *MockCommunityRepository) FindByNumber(ctx context.Context, number int) (*model.Community, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Community), args.Error(1)
}
