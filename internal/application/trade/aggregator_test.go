package trade_test

import (
	"context"
	"errors"
	"testing"

	apptrade "github.com/assistec/backend/internal/application/trade"
	"github.com/assistec/backend/internal/domain/shared"
	"github.com/assistec/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockContainerRepository struct {
	mock.Mock
}

func (m *mockContainerRepository) Lock(ctx context.Context, ref trade.ContainerRef) error {
	return m.Called(ctx, ref).Error(0)
}

func (m *mockContainerRepository) Find(ctx context.Context, ref trade.ContainerRef) (trade.Container, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(trade.Container), args.Error(1)
}

func (m *mockContainerRepository) SaveTotals(ctx context.Context, c trade.Container) error {
	return m.Called(ctx, c).Error(0)
}

type mockLineItemRepository struct {
	mock.Mock
	trade.LineItemRepository
}

func (m *mockLineItemRepository) FindByContainer(ctx context.Context, ref trade.ContainerRef) ([]trade.LineItem, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.LineItem), args.Error(1)
}

// stubRepos only serves the two repositories the aggregator reads
type stubRepos struct {
	apptrade.TransactionalRepositories
	containers *mockContainerRepository
	items      *mockLineItemRepository
}

func (r *stubRepos) Containers() trade.ContainerRepository { return r.containers }
func (r *stubRepos) LineItems() trade.LineItemRepository  { return r.items }

type countingMetrics struct {
	apptrade.Metrics
	failed  int
	skipped int
}

func (m *countingMetrics) AggregationFailed(context.Context, trade.ContainerKind)  { m.failed++ }
func (m *countingMetrics) AggregationSkipped(context.Context, trade.ContainerKind) { m.skipped++ }

func newStubRepos() *stubRepos {
	return &stubRepos{
		containers: new(mockContainerRepository),
		items:      new(mockLineItemRepository),
	}
}

func orderWithItems(t *testing.T, totals ...string) (*trade.ServiceOrder, []trade.LineItem) {
	t.Helper()
	order, err := trade.NewServiceOrder(1001, "1001", uuid.New())
	require.NoError(t, err)
	require.NoError(t, order.SetAdjustments(
		decimal.RequireFromString("5.00"),
		decimal.Zero,
		decimal.RequireFromString("2.00"),
	))

	items := make([]trade.LineItem, 0, len(totals))
	for _, price := range totals {
		item, err := trade.NewLineItem(order.Ref(), trade.ServiceRef(uuid.New()), "", 1, decimal.RequireFromString(price), decimal.Zero)
		require.NoError(t, err)
		items = append(items, *item)
	}
	return order, items
}

func TestAggregator_Recompute(t *testing.T) {
	ctx := context.Background()
	repos := newStubRepos()
	order, items := orderWithItems(t, "30.00", "13.00")

	repos.containers.On("Find", ctx, order.Ref()).Return(order, nil)
	repos.items.On("FindByContainer", ctx, order.Ref()).Return(items, nil)
	repos.containers.On("SaveTotals", ctx, order).Return(nil)

	totals, err := apptrade.NewAggregator(nil, nil).Recompute(ctx, repos, order.Ref())
	require.NoError(t, err)
	require.NotNil(t, totals)

	assert.True(t, decimal.RequireFromString("43.00").Equal(totals.ItemsAmount))
	assert.True(t, decimal.RequireFromString("46.00").Equal(totals.TotalAmount))
	assert.True(t, totals.Equal(order.CurrentTotals()))
	repos.containers.AssertExpectations(t)
	repos.items.AssertExpectations(t)
}

func TestAggregator_Recompute_MissingContainerIsSkipped(t *testing.T) {
	ctx := context.Background()
	repos := newStubRepos()
	metrics := &countingMetrics{}
	ref := trade.SaleRef(uuid.New())

	repos.containers.On("Find", ctx, ref).Return(nil, shared.ErrNotFound)

	totals, err := apptrade.NewAggregator(nil, metrics).Recompute(ctx, repos, ref)
	require.NoError(t, err)
	assert.Nil(t, totals)
	assert.Equal(t, 1, metrics.skipped)
	repos.items.AssertNotCalled(t, "FindByContainer", mock.Anything, mock.Anything)
}

func TestAggregator_Recompute_Failures(t *testing.T) {
	ctx := context.Background()
	dbErr := errors.New("connection reset")

	t.Run("items cannot be read", func(t *testing.T) {
		repos := newStubRepos()
		metrics := &countingMetrics{}
		order, _ := orderWithItems(t)

		repos.containers.On("Find", ctx, order.Ref()).Return(order, nil)
		repos.items.On("FindByContainer", ctx, order.Ref()).Return(nil, dbErr)

		_, err := apptrade.NewAggregator(nil, metrics).Recompute(ctx, repos, order.Ref())
		assert.ErrorIs(t, err, shared.ErrAggregationFailed)
		assert.ErrorIs(t, err, dbErr)
		assert.Equal(t, 1, metrics.failed)
		repos.containers.AssertNotCalled(t, "SaveTotals", mock.Anything, mock.Anything)
	})

	t.Run("totals cannot be written", func(t *testing.T) {
		repos := newStubRepos()
		metrics := &countingMetrics{}
		order, items := orderWithItems(t, "10.00")

		repos.containers.On("Find", ctx, order.Ref()).Return(order, nil)
		repos.items.On("FindByContainer", ctx, order.Ref()).Return(items, nil)
		repos.containers.On("SaveTotals", ctx, order).Return(dbErr)

		_, err := apptrade.NewAggregator(nil, metrics).Recompute(ctx, repos, order.Ref())
		assert.ErrorIs(t, err, shared.ErrAggregationFailed)
		assert.Equal(t, 1, metrics.failed)
	})

	t.Run("container lookup fails", func(t *testing.T) {
		repos := newStubRepos()
		ref := trade.BudgetRef(uuid.New())

		repos.containers.On("Find", ctx, ref).Return(nil, dbErr)

		_, err := apptrade.NewAggregator(nil, nil).Recompute(ctx, repos, ref)
		assert.ErrorIs(t, err, shared.ErrAggregationFailed)
	})
}
