package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/clinic-billing/internal/config"
	"github.com/segyhp/clinic-billing/internal/domain"
)

type MockViewCache struct {
	mock.Mock
}

func (m *MockViewCache) GetFinancing(ctx context.Context, id uuid.UUID) (*domain.FinancingDetail, int64, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).(*domain.FinancingDetail), args.Get(1).(int64), args.Error(2)
}

func (m *MockViewCache) SetFinancing(ctx context.Context, detail *domain.FinancingDetail, generation int64) error {
	args := m.Called(ctx, detail, generation)
	return args.Error(0)
}

func (m *MockViewCache) InvalidateFinancings(ctx context.Context, ids ...uuid.UUID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockViewCache) Publish(ctx context.Context, event *domain.ViewEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// expectRefresh accepts any invalidation and publish.
func (m *MockViewCache) expectRefresh() {
	m.On("InvalidateFinancings", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
}

func testConfig() *config.Config {
	return &config.Config{
		Business: config.BusinessConfig{
			DefaultPageSize: 10,
			MaxPageSize:     100,
		},
	}
}

func testLogger() (*logrus.Logger, *test.Hook) {
	return test.NewNullLogger()
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
