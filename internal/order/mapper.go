package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FormInput carries plain form values, already detached from whatever
// rendered the form. The unit price comes in resolved (catalog or manual)
// so the mapper stays free of network concerns.
type FormInput struct {
	Kind         Kind
	Flavor       string
	CustomFlavor string
	Size         string
	Quantity     int
	UnitPrice    float64
	PriceSource  PriceSource
	DeliveryDate string // DateLayout; empty defaults to tomorrow
	Details      string

	// Client kind only.
	Color      string
	Dedication string
	Photo      []byte
	PhotoName  string
}

// DraftFromForm maps form values into a cart draft. Free-text fields pass
// through the sanitizer; a rejected field fails the whole mapping.
func DraftFromForm(in FormInput, branch string, now time.Time) (*Draft, error) {
	if in.Kind != KindNormal && in.Kind != KindClient {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, in.Kind)
	}

	if in.Flavor == OtherOption && strings.TrimSpace(in.CustomFlavor) == "" {
		return nil, ErrMissingFlavor
	}

	customFlavor, err := sanitizeField("sabor_personalizado", in.CustomFlavor)
	if err != nil {
		return nil, err
	}
	details, err := sanitizeField("detalles", in.Details)
	if err != nil {
		return nil, err
	}
	color, err := sanitizeField("color", in.Color)
	if err != nil {
		return nil, err
	}
	dedication, err := sanitizeField("dedicatoria", in.Dedication)
	if err != nil {
		return nil, err
	}

	quantity := in.Quantity
	if quantity < 1 {
		quantity = 1
	}

	deliveryDate := Tomorrow(now)
	if in.DeliveryDate != "" {
		deliveryDate, err = time.ParseInLocation(DateLayout, in.DeliveryDate, now.Location())
		if err != nil {
			return nil, fmt.Errorf("invalid delivery date %q: %w", in.DeliveryDate, err)
		}
	}

	d := &Draft{
		ID:           uuid.NewString(),
		Kind:         in.Kind,
		Flavor:       in.Flavor,
		CustomFlavor: customFlavor,
		Size:         in.Size,
		Quantity:     quantity,
		UnitPrice:    in.UnitPrice,
		PriceSource:  in.PriceSource,
		Branch:       branch,
		DeliveryDate: deliveryDate,
		Details:      details,
	}

	if in.Kind == KindClient {
		d.Color = color
		d.Dedication = dedication
		d.Photo = in.Photo
		d.PhotoName = in.PhotoName
	}

	return d, nil
}

func sanitizeField(name, value string) (string, error) {
	clean, ok := Sanitize(value)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsafeInput, name)
	}
	return clean, nil
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Tomorrow is the default delivery date for new drafts; same-day delivery
// is never offered on entry.
func Tomorrow(now time.Time) time.Time {
	return StartOfDay(now).AddDate(0, 0, 1)
}
