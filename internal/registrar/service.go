package registrar

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"mipastel-pos/internal/backend"
	"mipastel-pos/internal/cart"
	"mipastel-pos/internal/order"

	"go.uber.org/zap"
)

// Summary is the batch outcome: counts plus one descriptor per failed
// item, tagged with kind and 1-based position.
type Summary struct {
	Succeeded int
	Failed    int
	Errors    []string
}

// Submitter registers single orders with the backend.
type Submitter interface {
	RegisterNormal(ctx context.Context, form backend.NormalOrderForm) error
	RegisterClient(ctx context.Context, form backend.ClientOrderForm) error
}

// Refresher reloads the registered-orders view after a batch lands.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type Service interface {
	RegisterAll(ctx context.Context) (Summary, error)
	RegisterOne(ctx context.Context, d *order.Draft) error
}

type service struct {
	cart      cart.Service
	submitter Submitter
	refresher Refresher
	log       *zap.Logger
}

// NewService wires the registrar. refresher may be nil when no registered
// view is attached.
func NewService(cartSvc cart.Service, submitter Submitter, refresher Refresher, log *zap.Logger) Service {
	return &service{
		cart:      cartSvc,
		submitter: submitter,
		refresher: refresher,
		log:       log,
	}
}

// RegisterAll submits every queued draft, normals first, each kind in
// insertion order, strictly one at a time so registration timestamps
// follow queue order and failures map to positions. A failure never stops
// the batch. If anything succeeded the whole cart is dropped, failed
// items included; retrying the leftovers would re-register the winners.
func (s *service) RegisterAll(ctx context.Context) (Summary, error) {
	normals := s.cart.List(order.KindNormal)
	clients := s.cart.List(order.KindClient)
	if len(normals)+len(clients) == 0 {
		return Summary{}, ErrEmptyCart
	}

	s.log.Info("batch registration started",
		zap.Int("normales", len(normals)),
		zap.Int("clientes", len(clients)),
	)

	var summary Summary
	for i, d := range normals {
		err := s.submitter.RegisterNormal(ctx, normalForm(d))
		s.record(&summary, "Normal", i, err)
	}
	for i, d := range clients {
		// Photos never ride the batch path; a draft that needs one goes
		// through RegisterOne.
		err := s.submitter.RegisterClient(ctx, clientForm(d, false))
		s.record(&summary, "Cliente", i, err)
	}

	if summary.Succeeded > 0 {
		if err := s.cart.Clear(ctx); err != nil {
			s.log.Error("failed to clear cart after batch", zap.Error(err))
		}
		if s.refresher != nil {
			if err := s.refresher.Refresh(ctx); err != nil {
				s.log.Warn("registered view refresh failed", zap.Error(err))
			}
		}
	}

	s.log.Info("batch registration finished",
		zap.Int("exitosos", summary.Succeeded),
		zap.Int("fallidos", summary.Failed),
	)
	return summary, nil
}

// RegisterOne submits a single draft, the only path that carries a photo.
// When the draft sits in the cart it is removed on success.
func (s *service) RegisterOne(ctx context.Context, d *order.Draft) error {
	var err error
	switch d.Kind {
	case order.KindNormal:
		err = s.submitter.RegisterNormal(ctx, normalForm(*d))
	case order.KindClient:
		err = s.submitter.RegisterClient(ctx, clientForm(*d, true))
	default:
		return fmt.Errorf("%w: %q", order.ErrInvalidKind, d.Kind)
	}
	if err != nil {
		return err
	}

	s.removeFromCart(ctx, d)

	if s.refresher != nil {
		if err := s.refresher.Refresh(ctx); err != nil {
			s.log.Warn("registered view refresh failed", zap.Error(err))
		}
	}
	return nil
}

func (s *service) record(summary *Summary, label string, index int, err error) {
	if err == nil {
		summary.Succeeded++
		return
	}
	summary.Failed++
	summary.Errors = append(summary.Errors,
		fmt.Sprintf("%s %d: %s", label, index+1, errDescriptor(err)))
	s.log.Warn("order registration failed",
		zap.String("item", fmt.Sprintf("%s %d", label, index+1)),
		zap.Error(err),
	)
}

// errDescriptor keeps per-item errors short: the status code for backend
// rejections, the message for everything else.
func errDescriptor(err error) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return strconv.Itoa(apiErr.StatusCode)
	}
	return err.Error()
}

func (s *service) removeFromCart(ctx context.Context, d *order.Draft) {
	for i, queued := range s.cart.List(d.Kind) {
		if queued.ID == d.ID {
			if err := s.cart.RemoveAt(ctx, d.Kind, i); err != nil {
				s.log.Error("failed to remove registered draft from cart", zap.Error(err))
			}
			return
		}
	}
}

func normalForm(d order.Draft) backend.NormalOrderForm {
	return backend.NormalOrderForm{
		Flavor:       d.EffectiveFlavor(),
		Size:         d.Size,
		Quantity:     d.Quantity,
		Branch:       d.Branch,
		DeliveryDate: d.DeliveryDate.Format(order.DateLayout),
		Details:      d.Details,
		CustomFlavor: d.CustomFlavor,
		IsOther:      d.IsOther(),
		Price:        d.UnitPrice,
	}
}

func clientForm(d order.Draft, withPhoto bool) backend.ClientOrderForm {
	form := backend.ClientOrderForm{
		NormalOrderForm: normalForm(d),
		Color:           d.Color,
		Dedication:      d.Dedication,
	}
	if withPhoto && d.SupportsAttachment() {
		form.Photo = d.Photo
		form.PhotoName = d.PhotoName
	}
	return form
}
