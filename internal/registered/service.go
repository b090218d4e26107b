package registered

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mipastel-pos/internal/backend"
	"mipastel-pos/internal/order"

	"go.uber.org/zap"
)

// Gateway is the backend surface the view model reads and writes through.
type Gateway interface {
	ListOrders(ctx context.Context, kind order.Kind, from, to time.Time, branch string) ([]order.RegisteredOrder, error)
	UpdateOrder(ctx context.Context, kind order.Kind, id int64, form backend.UpdateForm) error
	DeleteOrder(ctx context.Context, kind order.Kind, id int64) error
}

type DateRange struct {
	From time.Time
	To   time.Time
}

// SingleDay is the one-day range, the common case on the orders tab.
func SingleDay(day time.Time) DateRange {
	day = order.StartOfDay(day)
	return DateRange{From: day, To: day}
}

// Patch carries the only fields editable after registration. Nil
// optionals are omitted from the request.
type Patch struct {
	Quantity     int
	DeliveryDate time.Time
	Details      *string
	Color        *string
	Dedication   *string
}

// Snapshot is one consistent read of both registered-order tables.
type Snapshot struct {
	Normals []order.RegisteredOrder
	Clients []order.RegisteredOrder
}

// ViewModel mirrors the server's registered orders for a date range and
// gates edits on the server-computed editable flag. The gate is a
// courtesy; the backend re-checks every mutation.
type ViewModel interface {
	Load(ctx context.Context, r DateRange, branch string) (Snapshot, error)
	Refresh(ctx context.Context) error
	Current() Snapshot
	Update(ctx context.Context, kind order.Kind, serverID int64, p Patch) error
	Delete(ctx context.Context, kind order.Kind, serverID int64) error
	AutoRefresh(ctx context.Context, interval time.Duration)
}

type viewModel struct {
	gateway       Gateway
	defaultBranch string
	now           func() time.Time
	log           *zap.Logger

	mu       sync.Mutex
	loaded   bool
	snapshot Snapshot
	r        DateRange
	branch   string
}

func NewViewModel(gateway Gateway, defaultBranch string, log *zap.Logger) ViewModel {
	return &viewModel{
		gateway:       gateway,
		defaultBranch: defaultBranch,
		now:           time.Now,
		log:           log,
	}
}

func (vm *viewModel) Load(ctx context.Context, r DateRange, branch string) (Snapshot, error) {
	normals, err := vm.gateway.ListOrders(ctx, order.KindNormal, r.From, r.To, branch)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load normales: %w", err)
	}
	clients, err := vm.gateway.ListOrders(ctx, order.KindClient, r.From, r.To, branch)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load clientes: %w", err)
	}

	snapshot := Snapshot{Normals: normals, Clients: clients}

	vm.mu.Lock()
	vm.snapshot = snapshot
	vm.r = r
	vm.branch = branch
	vm.loaded = true
	vm.mu.Unlock()

	vm.log.Debug("registered orders loaded",
		zap.Int("normales", len(normals)),
		zap.Int("clientes", len(clients)),
		zap.String("sucursal", branch),
	)
	return snapshot, nil
}

// Refresh reloads the last requested range, or today for the default
// branch when nothing was loaded yet.
func (vm *viewModel) Refresh(ctx context.Context) error {
	vm.mu.Lock()
	r, branch, loaded := vm.r, vm.branch, vm.loaded
	vm.mu.Unlock()

	if !loaded {
		r = SingleDay(vm.now())
		branch = vm.defaultBranch
	}

	_, err := vm.Load(ctx, r, branch)
	return err
}

func (vm *viewModel) Current() Snapshot {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.snapshot
}

// Update patches an editable order and reloads the view. No optimistic
// local patching: the server decides what actually changed.
func (vm *viewModel) Update(ctx context.Context, kind order.Kind, serverID int64, p Patch) error {
	if p.Quantity < 1 {
		return fmt.Errorf("%w: cantidad debe ser mayor a 0", ErrInvalidPatch)
	}
	if p.DeliveryDate.IsZero() {
		return fmt.Errorf("%w: fecha de entrega requerida", ErrInvalidPatch)
	}

	if err := vm.requireEditable(kind, serverID); err != nil {
		return err
	}

	form := backend.UpdateForm{
		Quantity:     p.Quantity,
		DeliveryDate: p.DeliveryDate.Format(order.DateLayout),
		Details:      p.Details,
	}
	if kind == order.KindClient {
		form.Color = p.Color
		form.Dedication = p.Dedication
	}

	if err := vm.gateway.UpdateOrder(ctx, kind, serverID, form); err != nil {
		return err
	}
	return vm.Refresh(ctx)
}

// Delete removes an editable order and reloads the view.
func (vm *viewModel) Delete(ctx context.Context, kind order.Kind, serverID int64) error {
	if err := vm.requireEditable(kind, serverID); err != nil {
		return err
	}

	if err := vm.gateway.DeleteOrder(ctx, kind, serverID); err != nil {
		return err
	}
	return vm.Refresh(ctx)
}

// AutoRefresh reloads on a fixed interval until the context ends.
func (vm *viewModel) AutoRefresh(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := vm.Refresh(ctx); err != nil {
					vm.log.Warn("auto refresh failed", zap.Error(err))
				}
			}
		}
	}()
}

// requireEditable refuses a mutation before any request leaves when the
// cached row is missing or locked.
func (vm *viewModel) requireEditable(kind order.Kind, serverID int64) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	var rows []order.RegisteredOrder
	switch kind {
	case order.KindNormal:
		rows = vm.snapshot.Normals
	case order.KindClient:
		rows = vm.snapshot.Clients
	default:
		return fmt.Errorf("%w: %q", order.ErrInvalidKind, kind)
	}

	for _, row := range rows {
		if row.ServerID == serverID {
			if !row.Editable {
				return fmt.Errorf("%w: %s %d", ErrNotEditable, kind, serverID)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s %d", ErrUnknownOrder, kind, serverID)
}
