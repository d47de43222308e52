package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jasonhew98/e-commerce-service/internal/model"
	"github.com/jasonhew98/e-commerce-service/internal/repository"
)

type MockStore[T model.Aggregate] struct {
	mock.Mock
}

func (m *MockStore[T]) Load(ctx context.Context, id string) (T, repository.ConcurrencyToken, error) {
	args := m.Called(ctx, id)
	var zero T
	if args.Get(0) == nil {
		return zero, args.Get(1).(repository.ConcurrencyToken), args.Error(2)
	}
	return args.Get(0).(T), args.Get(1).(repository.ConcurrencyToken), args.Error(2)
}

func (m *MockStore[T]) Insert(ctx context.Context, agg T) error {
	args := m.Called(ctx, agg)
	return args.Error(0)
}

func (m *MockStore[T]) ConditionalUpdate(ctx context.Context, agg T, expected repository.ConcurrencyToken, actor model.Actor) error {
	args := m.Called(ctx, agg, expected, actor)
	return args.Error(0)
}

func (m *MockStore[T]) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockStore[T]) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[T], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[T]), args.Error(1)
}

func (m *MockStore[T]) FindOne(ctx context.Context, filters ...repository.Filter) (T, error) {
	args := m.Called(ctx, filters)
	var zero T
	if args.Get(0) == nil {
		return zero, args.Error(1)
	}
	return args.Get(0).(T), args.Error(1)
}
