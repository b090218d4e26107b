package pricing

import (
	"context"

	"mipastel-pos/internal/backend"
	"mipastel-pos/internal/order"

	"go.uber.org/zap"
)

// Notes mirror the price-label states the entry form shows next to the
// amount. They exist for display only; control flow never branches on
// them.
const (
	NoteManual        = "Manual"
	NoteAwaitingPrice = "Ingresa precio"
	NoteNotFound      = "No encontrado"
	NoteError         = "Error"
)

// Catalog is the flavor×size price lookup port, served by the backend
// client in production.
type Catalog interface {
	LookupPrice(ctx context.Context, flavor, size string) (backend.PriceResult, error)
}

type Input struct {
	Flavor      string
	Size        string
	Quantity    int
	ManualPrice float64
}

// Quote is the resolved price for one line. Pending means the line is not
// addable yet: the user still owes a manual price.
type Quote struct {
	UnitPrice float64
	Total     float64
	Source    order.PriceSource
	Pending   bool
	Note      string
}

// Service resolves unit prices. Resolution is a pure function of its
// inputs; callers re-invoke it on every form change.
type Service interface {
	Resolve(ctx context.Context, in Input) Quote
}

type service struct {
	catalog Catalog
	log     *zap.Logger
}

func NewService(catalog Catalog, log *zap.Logger) Service {
	return &service{catalog: catalog, log: log}
}

func (s *service) Resolve(ctx context.Context, in Input) Quote {
	quantity := in.Quantity
	if quantity < 1 {
		quantity = 1
	}

	// Incomplete selection: nothing to price yet.
	if in.Flavor == "" || in.Size == "" {
		return pendingQuote(NoteAwaitingPrice)
	}

	// Non-catalog flavor or size: the manual price is the only authority.
	if in.Flavor == order.OtherOption || in.Size == order.OtherOption {
		return manualQuote(in.ManualPrice, quantity)
	}

	result, err := s.catalog.LookupPrice(ctx, in.Flavor, in.Size)
	if err != nil {
		s.log.Warn("price lookup failed, falling back to manual",
			zap.String("sabor", in.Flavor),
			zap.String("tamano", in.Size),
			zap.Error(err),
		)
		return degradedQuote(in.ManualPrice, quantity, NoteError)
	}
	if !result.Found || result.Price <= 0 {
		return degradedQuote(in.ManualPrice, quantity, NoteNotFound)
	}

	return Quote{
		UnitPrice: result.Price,
		Total:     result.Price * float64(quantity),
		Source:    order.SourceCatalog,
	}
}

// manualQuote prices a line from the user-entered override, or leaves it
// pending until one arrives.
func manualQuote(manual float64, quantity int) Quote {
	if manual <= 0 {
		return pendingQuote(NoteAwaitingPrice)
	}
	return Quote{
		UnitPrice: manual,
		Total:     manual * float64(quantity),
		Source:    order.SourceManual,
		Note:      NoteManual,
	}
}

// degradedQuote handles catalog misses and transport failures the same
// way, requiring a manual price; only the note shown differs.
func degradedQuote(manual float64, quantity int, note string) Quote {
	q := manualQuote(manual, quantity)
	if q.Pending {
		q.Note = note
	}
	return q
}

func pendingQuote(note string) Quote {
	return Quote{Pending: true, Note: note, Source: order.SourceManual}
}
