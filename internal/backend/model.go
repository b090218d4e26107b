package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
)

// PriceResult is the catalog lookup answer.
type PriceResult struct {
	Found bool    `json:"encontrado"`
	Price float64 `json:"precio"`
}

// NormalOrderForm is the multipart body of POST /normales/registrar.
// Field names are the backend's contract, hence Spanish.
type NormalOrderForm struct {
	Flavor       string
	Size         string
	Quantity     int
	Branch       string
	DeliveryDate string
	Details      string
	CustomFlavor string
	IsOther      bool
	Price        float64
}

func (f NormalOrderForm) Values() map[string]string {
	return map[string]string{
		"sabor":               f.Flavor,
		"tamano":              f.Size,
		"cantidad":            strconv.Itoa(f.Quantity),
		"sucursal":            f.Branch,
		"fecha_entrega":       f.DeliveryDate,
		"detalles":            f.Details,
		"sabor_personalizado": f.CustomFlavor,
		"es_otro":             strconv.FormatBool(f.IsOther),
		"precio":              strconv.FormatFloat(f.Price, 'f', 2, 64),
	}
}

// ClientOrderForm is the multipart body of POST /clientes/registrar. The
// photo travels only on the single-order path; batch callers leave it
// empty.
type ClientOrderForm struct {
	NormalOrderForm
	Color      string
	Dedication string
	Photo      []byte
	PhotoName  string
}

func (f ClientOrderForm) Values() map[string]string {
	values := f.NormalOrderForm.Values()
	values["color"] = f.Color
	values["dedicatoria"] = f.Dedication
	return values
}

// UpdateForm is the PUT body for a registered order. Only the fields the
// edit flow exposes; flavor, size and price are immutable after
// registration. Nil optionals are left out of the request entirely.
type UpdateForm struct {
	Quantity     int
	DeliveryDate string
	Details      *string
	Color        *string
	Dedication   *string
}

func (f UpdateForm) Values() map[string]string {
	values := map[string]string{
		"cantidad":      strconv.Itoa(f.Quantity),
		"fecha_entrega": f.DeliveryDate,
	}
	if f.Details != nil {
		values["detalles"] = *f.Details
	}
	if f.Color != nil {
		values["color"] = *f.Color
	}
	if f.Dedication != nil {
		values["dedicatoria"] = *f.Dedication
	}
	return values
}

// APIError carries a non-2xx backend answer. Detail is the server's own
// wording and is shown to the user verbatim.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.StatusCode, e.Detail)
}

func newAPIError(resp *resty.Response) *APIError {
	detail := http.StatusText(resp.StatusCode())
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Detail != "" {
		detail = body.Detail
	}
	return &APIError{StatusCode: resp.StatusCode(), Detail: detail}
}
