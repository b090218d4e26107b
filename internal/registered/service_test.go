package registered

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"mipastel-pos/internal/backend"
	"mipastel-pos/internal/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockGateway is a mock implementation of the Gateway interface
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) ListOrders(ctx context.Context, kind order.Kind, from, to time.Time, branch string) ([]order.RegisteredOrder, error) {
	args := m.Called(ctx, kind, from, to, branch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.RegisteredOrder), args.Error(1)
}

func (m *MockGateway) UpdateOrder(ctx context.Context, kind order.Kind, id int64, form backend.UpdateForm) error {
	args := m.Called(ctx, kind, id, form)
	return args.Error(0)
}

func (m *MockGateway) DeleteOrder(ctx context.Context, kind order.Kind, id int64) error {
	args := m.Called(ctx, kind, id)
	return args.Error(0)
}

var (
	day   = time.Date(2025, 3, 5, 0, 0, 0, 0, time.Local)
	week  = DateRange{From: day, To: day.AddDate(0, 0, 6)}
	rowOK = order.RegisteredOrder{
		ServerID: 7, Kind: order.KindNormal, Flavor: "Chocolate", Quantity: 2,
		UnitPrice: 50, Total: 100, Editable: true,
	}
	rowLocked = order.RegisteredOrder{
		ServerID: 8, Kind: order.KindNormal, Flavor: "Fresa", Quantity: 1,
		UnitPrice: 75, Total: 75, Editable: false,
	}
	clientRow = order.RegisteredOrder{
		ServerID: 9, Kind: order.KindClient, Flavor: "Vainilla", Quantity: 1,
		UnitPrice: 60, Total: 60, Color: "Azul", Editable: true,
	}
)

func loadedViewModel(t *testing.T, gw *MockGateway) ViewModel {
	t.Helper()
	gw.On("ListOrders", mock.Anything, order.KindNormal, week.From, week.To, "Centro").
		Return([]order.RegisteredOrder{rowOK, rowLocked}, nil)
	gw.On("ListOrders", mock.Anything, order.KindClient, week.From, week.To, "Centro").
		Return([]order.RegisteredOrder{clientRow}, nil)

	vm := NewViewModel(gw, "Centro", zap.NewNop())
	_, err := vm.Load(context.Background(), week, "Centro")
	require.NoError(t, err)
	return vm
}

func TestViewModel_Load(t *testing.T) {
	t.Run("Both kinds loaded into snapshot", func(t *testing.T) {
		gw := new(MockGateway)
		vm := loadedViewModel(t, gw)

		snap := vm.Current()
		assert.Len(t, snap.Normals, 2)
		assert.Len(t, snap.Clients, 1)
		gw.AssertExpectations(t)
	})

	t.Run("List failure propagates, snapshot untouched", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("ListOrders", mock.Anything, order.KindNormal, week.From, week.To, "Centro").
			Return(nil, &backend.APIError{StatusCode: 502, Detail: "bad gateway"})

		vm := NewViewModel(gw, "Centro", zap.NewNop())
		_, err := vm.Load(context.Background(), week, "Centro")

		assert.Error(t, err)
		assert.Empty(t, vm.Current().Normals)
		gw.AssertNotCalled(t, "ListOrders", mock.Anything, order.KindClient,
			mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Refresh before first load defaults to today", func(t *testing.T) {
		gw := new(MockGateway)
		today := SingleDay(time.Now())
		gw.On("ListOrders", mock.Anything, order.KindNormal, today.From, today.To, "Centro").
			Return([]order.RegisteredOrder{}, nil)
		gw.On("ListOrders", mock.Anything, order.KindClient, today.From, today.To, "Centro").
			Return([]order.RegisteredOrder{}, nil)

		vm := NewViewModel(gw, "Centro", zap.NewNop())
		require.NoError(t, vm.Refresh(context.Background()))
		gw.AssertExpectations(t)
	})
}

func TestViewModel_Update(t *testing.T) {
	ctx := context.Background()
	details := "sin azúcar"

	t.Run("Editable row updated then reloaded", func(t *testing.T) {
		gw := new(MockGateway)
		vm := loadedViewModel(t, gw)

		gw.On("UpdateOrder", ctx, order.KindNormal, int64(7), backend.UpdateForm{
			Quantity:     3,
			DeliveryDate: "2025-03-08",
			Details:      &details,
		}).Return(nil)

		err := vm.Update(ctx, order.KindNormal, 7, Patch{
			Quantity:     3,
			DeliveryDate: time.Date(2025, 3, 8, 0, 0, 0, 0, time.Local),
			Details:      &details,
		})

		require.NoError(t, err)
		gw.AssertExpectations(t)
		// reload happened: two ListOrders calls per kind
		gw.AssertNumberOfCalls(t, "ListOrders", 4)
	})

	t.Run("Non-editable row refused before any request", func(t *testing.T) {
		gw := new(MockGateway)
		vm := loadedViewModel(t, gw)

		err := vm.Update(ctx, order.KindNormal, 8, Patch{
			Quantity:     2,
			DeliveryDate: day,
		})

		assert.ErrorIs(t, err, ErrNotEditable)
		gw.AssertNotCalled(t, "UpdateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown row refused", func(t *testing.T) {
		gw := new(MockGateway)
		vm := loadedViewModel(t, gw)

		err := vm.Update(ctx, order.KindNormal, 999, Patch{Quantity: 1, DeliveryDate: day})
		assert.ErrorIs(t, err, ErrUnknownOrder)
	})

	t.Run("Invalid patch refused", func(t *testing.T) {
		gw := new(MockGateway)
		vm := loadedViewModel(t, gw)

		err := vm.Update(ctx, order.KindNormal, 7, Patch{Quantity: 0, DeliveryDate: day})
		assert.ErrorIs(t, err, ErrInvalidPatch)

		err = vm.Update(ctx, order.KindNormal, 7, Patch{Quantity: 1})
		assert.ErrorIs(t, err, ErrInvalidPatch)
	})

	t.Run("Client-only fields sent only for client kind", func(t *testing.T) {
		gw := new(MockGateway)
		vm := loadedViewModel(t, gw)
		color := "Rosa"

		gw.On("UpdateOrder", ctx, order.KindClient, int64(9), mock.MatchedBy(func(f backend.UpdateForm) bool {
			return f.Color != nil && *f.Color == "Rosa"
		})).Return(nil)

		err := vm.Update(ctx, order.KindClient, 9, Patch{
			Quantity:     2,
			DeliveryDate: day,
			Color:        &color,
		})

		require.NoError(t, err)
		gw.AssertExpectations(t)
	})

	t.Run("Backend rejection surfaced verbatim", func(t *testing.T) {
		gw := new(MockGateway)
		vm := loadedViewModel(t, gw)

		gw.On("UpdateOrder", ctx, order.KindNormal, int64(7), mock.Anything).
			Return(&backend.APIError{StatusCode: 409, Detail: "El pedido ya no es editable"})

		err := vm.Update(ctx, order.KindNormal, 7, Patch{Quantity: 2, DeliveryDate: day})

		var apiErr *backend.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "El pedido ya no es editable", apiErr.Detail)
	})
}

func TestViewModel_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Editable row deleted then reloaded", func(t *testing.T) {
		gw := new(MockGateway)
		vm := loadedViewModel(t, gw)

		gw.On("DeleteOrder", ctx, order.KindNormal, int64(7)).Return(nil)

		require.NoError(t, vm.Delete(ctx, order.KindNormal, 7))
		gw.AssertNumberOfCalls(t, "ListOrders", 4)
	})

	t.Run("Non-editable row refused before any DELETE", func(t *testing.T) {
		gw := new(MockGateway)
		vm := loadedViewModel(t, gw)

		err := vm.Delete(ctx, order.KindNormal, 8)

		assert.ErrorIs(t, err, ErrNotEditable)
		gw.AssertNotCalled(t, "DeleteOrder", mock.Anything, mock.Anything, mock.Anything)
	})
}

// countingGateway tallies list calls without testify's bookkeeping, safe
// to poll from the refresh goroutine's perspective.
type countingGateway struct {
	lists atomic.Int64
}

func (g *countingGateway) ListOrders(context.Context, order.Kind, time.Time, time.Time, string) ([]order.RegisteredOrder, error) {
	g.lists.Add(1)
	return []order.RegisteredOrder{}, nil
}

func (g *countingGateway) UpdateOrder(context.Context, order.Kind, int64, backend.UpdateForm) error {
	return nil
}

func (g *countingGateway) DeleteOrder(context.Context, order.Kind, int64) error {
	return nil
}

func TestViewModel_AutoRefresh(t *testing.T) {
	gw := new(countingGateway)
	vm := NewViewModel(gw, "Centro", zap.NewNop())

	_, err := vm.Load(context.Background(), week, "Centro")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	vm.AutoRefresh(ctx, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		// initial load is 2 list calls; any value beyond proves a tick fired
		return gw.lists.Load() >= 4
	}, time.Second, 5*time.Millisecond)
}
