package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"mipastel-pos/internal/order"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service is the pending-order queue. Two disjoint ordered lists, one per
// kind; every mutation writes the affected snapshot through before it is
// visible.
type Service interface {
	Add(ctx context.Context, d *order.Draft) error
	RemoveAt(ctx context.Context, kind order.Kind, index int) error
	Clear(ctx context.Context) error
	List(kind order.Kind) []order.Draft
	Count() int
}

type service struct {
	repo Repository
	now  func() time.Time
	log  *zap.Logger

	mu      sync.Mutex
	normals []order.Draft
	clients []order.Draft
}

// NewService hydrates the cart from the last persisted snapshots, so a
// restart reconstructs the exact queue.
func NewService(ctx context.Context, repo Repository, log *zap.Logger) (Service, error) {
	snapshots, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	s := &service{
		repo:    repo,
		now:     time.Now,
		log:     log,
		normals: snapshots[order.KindNormal],
		clients: snapshots[order.KindClient],
	}

	log.Info("cart hydrated",
		zap.Int("normales", len(s.normals)),
		zap.Int("clientes", len(s.clients)),
	)
	return s, nil
}

func (s *service) Add(ctx context.Context, d *order.Draft) error {
	if d.Kind != order.KindNormal && d.Kind != order.KindClient {
		return fmt.Errorf("%w: %q", order.ErrInvalidKind, d.Kind)
	}

	res := order.Validate(d, s.now())
	if !res.Valid {
		return fmt.Errorf("%w: %s", ErrInvalidDraft, strings.Join(res.Errors, "; "))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draft := *d
	if draft.ID == "" {
		draft.ID = uuid.NewString()
	}

	list := append(s.snapshot(draft.Kind), draft)
	if err := s.repo.Save(ctx, draft.Kind, list); err != nil {
		return err
	}
	s.setList(draft.Kind, list)

	s.log.Info("draft added to cart",
		zap.String("tipo", string(draft.Kind)),
		zap.String("sabor", draft.EffectiveFlavor()),
		zap.Int("cantidad", draft.Quantity),
	)
	return nil
}

// RemoveAt drops the draft at a positional index within its kind's list.
// Indices shift after every removal; callers work from a fresh List.
func (s *service) RemoveAt(ctx context.Context, kind order.Kind, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.snapshot(kind)
	if index < 0 || index >= len(list) {
		return fmt.Errorf("%w: %s[%d]", ErrIndexOutOfRange, kind, index)
	}

	list = append(list[:index], list[index+1:]...)
	if err := s.repo.Save(ctx, kind, list); err != nil {
		return err
	}
	s.setList(kind, list)
	return nil
}

// Clear empties both lists and purges both persisted snapshots. The
// destructive-action confirmation belongs to the caller.
func (s *service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Purge(ctx); err != nil {
		return err
	}
	s.normals = nil
	s.clients = nil

	s.log.Info("cart cleared")
	return nil
}

func (s *service) List(kind order.Kind) []order.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(kind)
}

// Count feeds the cart badge: total pending drafts across both kinds.
func (s *service) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.normals) + len(s.clients)
}

// snapshot copies a kind's list so callers never alias internal state.
func (s *service) snapshot(kind order.Kind) []order.Draft {
	var src []order.Draft
	switch kind {
	case order.KindNormal:
		src = s.normals
	case order.KindClient:
		src = s.clients
	}
	out := make([]order.Draft, len(src))
	copy(out, src)
	return out
}

func (s *service) setList(kind order.Kind, list []order.Draft) {
	switch kind {
	case order.KindNormal:
		s.normals = list
	case order.KindClient:
		s.clients = list
	}
}
