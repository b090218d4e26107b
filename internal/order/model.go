package order

import "time"

// Kind partitions orders the same way the two entry forms do.
type Kind string

const (
	KindNormal Kind = "normal"
	KindClient Kind = "cliente"
)

// OtherOption is the sentinel value the flavor and size selectors use for
// entries that are not in the price catalog.
const OtherOption = "Otro"

type PriceSource string

const (
	SourceCatalog PriceSource = "CATALOG"
	SourceManual  PriceSource = "MANUAL"
)

// DateLayout is the calendar-date wire format shared with the backend.
const DateLayout = "2006-01-02"

// Draft is one pending cart line. It exists only locally until the
// registrar hands it to the backend; ID identifies it in the cart, never
// on the server.
type Draft struct {
	ID           string      `json:"id"`
	Kind         Kind        `json:"tipo"`
	Flavor       string      `json:"sabor"`
	CustomFlavor string      `json:"sabor_personalizado,omitempty"`
	Size         string      `json:"tamano"`
	Quantity     int         `json:"cantidad"`
	UnitPrice    float64     `json:"precio"`
	PriceSource  PriceSource `json:"fuente_precio"`
	Branch       string      `json:"sucursal"`
	DeliveryDate time.Time   `json:"fecha_entrega"`
	Details      string      `json:"detalles,omitempty"`

	// Client kind only.
	Color      string `json:"color,omitempty"`
	Dedication string `json:"dedicatoria,omitempty"`
	Photo      []byte `json:"foto,omitempty"`
	PhotoName  string `json:"foto_nombre,omitempty"`
}

// IsOther reports whether the draft needs a manual price because the
// flavor or size fell outside the catalog.
func (d *Draft) IsOther() bool {
	return d.Flavor == OtherOption || d.Size == OtherOption
}

// EffectiveFlavor is the flavor sent to the backend: the custom text when
// the selector resolved to "Otro", the catalog flavor otherwise.
func (d *Draft) EffectiveFlavor() string {
	if d.Flavor == OtherOption && d.CustomFlavor != "" {
		return d.CustomFlavor
	}
	return d.Flavor
}

// Total is the line total, always derived, never stored.
func (d *Draft) Total() float64 {
	return d.UnitPrice * float64(d.Quantity)
}

// SupportsAttachment reports whether a photo may travel with this draft.
// Only client orders carry photos, and only on the single-order
// registration path; the batch path drops them regardless.
func (d *Draft) SupportsAttachment() bool {
	return d.Kind == KindClient
}

// RegisteredOrder is the server-owned counterpart of a draft, read back
// after registration. Editable is computed by the backend; it is never
// derived locally.
type RegisteredOrder struct {
	ServerID     int64
	Kind         Kind
	Flavor       string
	Size         string
	Quantity     int
	UnitPrice    float64
	Total        float64
	Branch       string
	DeliveryDate time.Time
	Details      string
	Color        string
	Dedication   string
	RegisteredAt time.Time
	Editable     bool
}
