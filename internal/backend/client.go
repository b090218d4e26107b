package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"mipastel-pos/internal/order"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Outbound throttle. Price lookups fire on every form change upstream, so
// the client paces itself instead of hammering the backend.
const (
	requestRate  = rate.Limit(10)
	requestBurst = 20
)

// AllBranches disables the branch filter on listings.
const AllBranches = "Todas"

// Client is the typed REST client for the bakery backend.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

func NewClient(baseURL string, log *zap.Logger) *Client {
	return &Client{
		http:    resty.New().SetBaseURL(strings.TrimRight(baseURL, "/")),
		limiter: rate.NewLimiter(requestRate, requestBurst),
		log:     log,
	}
}

// LookupPrice queries the flavor×size catalog. A 200 with encontrado=false
// is a miss, not an error; callers decide what a miss means.
func (c *Client) LookupPrice(ctx context.Context, flavor, size string) (PriceResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return PriceResult{}, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"sabor": flavor, "tamano": size}).
		Get("/api/obtener-precio")
	if err != nil {
		return PriceResult{}, err
	}
	if resp.StatusCode() != http.StatusOK {
		return PriceResult{}, newAPIError(resp)
	}

	var result PriceResult
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return PriceResult{}, fmt.Errorf("decode price response: %w", err)
	}
	return result, nil
}

// RegisterNormal submits one store order.
func (c *Client) RegisterNormal(ctx context.Context, form NormalOrderForm) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetMultipartFormData(form.Values()).
		Post("/normales/registrar")
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return newAPIError(resp)
	}

	c.log.Debug("pedido normal registrado",
		zap.String("sabor", form.Flavor),
		zap.Int("cantidad", form.Quantity),
	)
	return nil
}

// RegisterClient submits one custom client order, attaching the photo
// when present.
func (c *Client) RegisterClient(ctx context.Context, form ClientOrderForm) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req := c.http.R().
		SetContext(ctx).
		SetMultipartFormData(form.Values())
	if len(form.Photo) > 0 {
		name := form.PhotoName
		if name == "" {
			name = "foto.jpg"
		}
		req.SetFileReader("foto", name, bytes.NewReader(form.Photo))
	}

	resp, err := req.Post("/clientes/registrar")
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return newAPIError(resp)
	}

	c.log.Debug("pedido de cliente registrado",
		zap.String("sabor", form.Flavor),
		zap.Int("cantidad", form.Quantity),
		zap.Bool("con_foto", len(form.Photo) > 0),
	)
	return nil
}

// ListOrders fetches registered orders of one kind for a date range,
// optionally narrowed to a branch. A single-day range uses the
// single-date query the backend also understands.
func (c *Client) ListOrders(ctx context.Context, kind order.Kind, from, to time.Time, branch string) ([]order.RegisteredOrder, error) {
	path, err := listPath(kind)
	if err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := map[string]string{}
	if from.Equal(to) {
		params["fecha"] = from.Format(order.DateLayout)
	} else {
		params["fecha_inicio"] = from.Format(order.DateLayout)
		params["fecha_fin"] = to.Format(order.DateLayout)
	}
	if branch != "" && branch != AllBranches {
		params["sucursal"] = branch
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, newAPIError(resp)
	}

	var body struct {
		Pedidos []pedidoPayload `json:"pedidos"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}

	registered := make([]order.RegisteredOrder, 0, len(body.Pedidos))
	for _, p := range body.Pedidos {
		registered = append(registered, p.toRegistered(kind))
	}
	return registered, nil
}

// UpdateOrder patches a registered order with the editable field subset.
func (c *Client) UpdateOrder(ctx context.Context, kind order.Kind, id int64, form UpdateForm) error {
	path, err := itemPath(kind, id)
	if err != nil {
		return err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(form.Values()).
		Put(path)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return newAPIError(resp)
	}
	return nil
}

// DeleteOrder removes a registered order.
func (c *Client) DeleteOrder(ctx context.Context, kind order.Kind, id int64) error {
	path, err := itemPath(kind, id)
	if err != nil {
		return err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		Delete(path)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return newAPIError(resp)
	}
	return nil
}

// DailyReportPDF fetches the day's report as raw PDF bytes. Rendering and
// storage stay with the caller.
func (c *Client) DailyReportPDF(ctx context.Context, date time.Time) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("fecha", date.Format(order.DateLayout)).
		Get("/reportes/pdf")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, newAPIError(resp)
	}
	return resp.Body(), nil
}

func listPath(kind order.Kind) (string, error) {
	switch kind {
	case order.KindNormal:
		return "/api/pedidos/normales", nil
	case order.KindClient:
		return "/api/pedidos/clientes", nil
	default:
		return "", fmt.Errorf("%w: %q", order.ErrInvalidKind, kind)
	}
}

func itemPath(kind order.Kind, id int64) (string, error) {
	switch kind {
	case order.KindNormal:
		return fmt.Sprintf("/api/pedidos/normal/%d", id), nil
	case order.KindClient:
		return fmt.Sprintf("/api/pedidos/cliente/%d", id), nil
	default:
		return "", fmt.Errorf("%w: %q", order.ErrInvalidKind, kind)
	}
}

type pedidoPayload struct {
	ID           int64   `json:"id"`
	Sabor        string  `json:"sabor"`
	Tamano       string  `json:"tamano"`
	Cantidad     int     `json:"cantidad"`
	Precio       float64 `json:"precio"`
	Total        float64 `json:"total"`
	FechaEntrega string  `json:"fecha_entrega"`
	Detalles     string  `json:"detalles"`
	Sucursal     string  `json:"sucursal"`
	Color        string  `json:"color"`
	Dedicatoria  string  `json:"dedicatoria"`
	Fecha        string  `json:"fecha"`
	Editable     bool    `json:"editable"`
}

func (p pedidoPayload) toRegistered(kind order.Kind) order.RegisteredOrder {
	total := p.Total
	if total == 0 {
		// older list endpoints omit the total
		total = p.Precio * float64(p.Cantidad)
	}
	return order.RegisteredOrder{
		ServerID:     p.ID,
		Kind:         kind,
		Flavor:       p.Sabor,
		Size:         p.Tamano,
		Quantity:     p.Cantidad,
		UnitPrice:    p.Precio,
		Total:        total,
		Branch:       p.Sucursal,
		DeliveryDate: parseFlexibleDate(p.FechaEntrega),
		Details:      p.Detalles,
		Color:        p.Color,
		Dedication:   p.Dedicatoria,
		RegisteredAt: parseFlexibleDate(p.Fecha),
		Editable:     p.Editable,
	}
}

// parseFlexibleDate accepts both the date-only and the timestamped forms
// the backend has emitted over time. Unparseable input yields a zero time
// rather than failing the whole listing.
func parseFlexibleDate(s string) time.Time {
	for _, layout := range []string{order.DateLayout, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
