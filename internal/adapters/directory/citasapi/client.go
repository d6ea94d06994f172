package citasapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"vet-appointments/internal/domain/appointments"
	"vet-appointments/internal/platform/httpclient"
)

var (
	ErrNotConfigured = errors.New("citas directory not configured")
	ErrUnauthorized  = errors.New("citas directory unauthorized")
)

// Config del cliente del Directorio de citas.
type Config struct {
	BaseURL string
	APIKey  string

	// Si está vacío, se usa "X-Api-Key".
	APIKeyHeader string

	Timeout time.Duration
}

// Client implementa appointments.Directory contra la API JSON de citas.
// Toda la normalización de sobres vive en wire.go.
type Client struct {
	http         *httpclient.Client
	apiKey       string
	apiKeyHeader string
}

var _ appointments.Directory = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrNotConfigured
	}
	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), cfg.Timeout)
	if err != nil {
		return nil, err
	}
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	return &Client{
		http:         hc,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
	}, nil
}

func (c *Client) ListByClient(ctx context.Context, clientID int64) ([]appointments.Detail, error) {
	raw, err := c.get(ctx, "list_by_client", "/citas/cliente/"+strconv.FormatInt(clientID, 10), nil)
	if err != nil {
		return nil, err
	}
	items, err := DecodeAppointments(raw)
	if err != nil {
		return nil, transport("list_by_client", err)
	}
	return items, nil
}

func (c *Client) ListByRange(ctx context.Context, r appointments.DateRange, veterinarianID *int64) ([]appointments.Detail, error) {
	q := rangeQuery(r)
	if veterinarianID != nil {
		q.Set("veterinario", strconv.FormatInt(*veterinarianID, 10))
	}
	raw, err := c.get(ctx, "list_by_range", "/citas/calendario", q)
	if err != nil {
		return nil, err
	}
	items, err := DecodeAppointments(raw)
	if err != nil {
		return nil, transport("list_by_range", err)
	}
	return items, nil
}

func (c *Client) Statistics(ctx context.Context, r appointments.DateRange) (appointments.Statistics, error) {
	raw, err := c.get(ctx, "statistics", "/citas/estadisticas", rangeQuery(r))
	if err != nil {
		return appointments.Statistics{}, err
	}
	st, err := DecodeStatistics(raw)
	if err != nil {
		return appointments.Statistics{}, transport("statistics", err)
	}
	return st, nil
}

func (c *Client) Create(ctx context.Context, in appointments.CreateRequest) (appointments.Detail, error) {
	raw, err := c.do(ctx, "create", http.MethodPost, "/citas", encodeCreate(in))
	if err != nil {
		return appointments.Detail{}, err
	}
	return c.decodeOne("create", raw)
}

func (c *Client) Reschedule(ctx context.Context, id appointments.ID, in appointments.RescheduleRequest) (appointments.Detail, error) {
	raw, err := c.do(ctx, "reschedule", http.MethodPut, citaPath(id, "reprogramar"), encodeReschedule(in))
	if err != nil {
		return appointments.Detail{}, err
	}
	return c.decodeOne("reschedule", raw)
}

func (c *Client) ChangeStatus(ctx context.Context, id appointments.ID, in appointments.StatusChange) (appointments.Detail, error) {
	raw, err := c.do(ctx, "change_status", http.MethodPatch, citaPath(id, "estado"), encodeStatus(in))
	if err != nil {
		return appointments.Detail{}, err
	}
	return c.decodeOne("change_status", raw)
}

// Cancel es un cambio de estado a cancelada en el Directorio.
func (c *Client) Cancel(ctx context.Context, id appointments.ID) error {
	_, err := c.do(ctx, "cancel", http.MethodPatch, citaPath(id, "estado"), encodeStatus(appointments.StatusChange{
		Status: appointments.StatusCancelled,
	}))
	return err
}

func (c *Client) CheckAvailability(ctx context.Context, q appointments.AvailabilityQuery) (appointments.Availability, error) {
	v := url.Values{}
	v.Set("fecha", q.Date.Format(appointments.DateLayout))
	v.Set("hora", q.Time)
	if q.VeterinarianUserID != nil {
		v.Set("veterinario", strconv.FormatInt(*q.VeterinarianUserID, 10))
	}
	raw, err := c.get(ctx, "availability", "/citas/disponibilidad", v)
	if err != nil {
		return appointments.Availability{}, err
	}
	av, err := DecodeAvailability(raw)
	if err != nil {
		return appointments.Availability{}, transport("availability", err)
	}
	return av, nil
}

func (c *Client) ListVeterinarians(ctx context.Context) ([]appointments.Veterinarian, error) {
	raw, err := c.get(ctx, "veterinarians", "/veterinarios", nil)
	if err != nil {
		return nil, err
	}
	items, err := DecodeVeterinarians(raw)
	if err != nil {
		return nil, transport("veterinarians", err)
	}
	return items, nil
}

// decodeOne tolera cuerpo vacío (204): la vista recarga igual después de mutar.
func (c *Client) decodeOne(op string, raw []byte) (appointments.Detail, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return appointments.Detail{}, nil
	}
	d, err := DecodeAppointment(raw)
	if err != nil {
		return appointments.Detail{}, transport(op, err)
	}
	return d, nil
}

func (c *Client) get(ctx context.Context, op, path string, q url.Values) ([]byte, error) {
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return c.do(ctx, op, http.MethodGet, path, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, in any) ([]byte, error) {
	if c == nil || c.http == nil {
		return nil, fmt.Errorf("%w: %w", appointments.ErrTransport, ErrNotConfigured)
	}

	headers := map[string]string{}
	if c.apiKey != "" {
		headers[c.apiKeyHeader] = c.apiKey
	}

	var raw json.RawMessage
	if err := c.http.DoJSON(ctx, method, path, headers, in, &raw); err != nil {
		return nil, mapError(op, err)
	}
	return raw, nil
}

// mapError: 404 => not found, otros 4xx => rechazo con el mensaje del
// Directorio, el resto => falla de transporte.
func mapError(op string, err error) error {
	var he *httpclient.HTTPError
	if errors.As(err, &he) {
		switch {
		case he.StatusCode == http.StatusUnauthorized, he.StatusCode == http.StatusForbidden:
			return fmt.Errorf("%w: %s: %w", appointments.ErrTransport, op, ErrUnauthorized)
		case he.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%s: %w", op, appointments.ErrNotFound)
		case he.IsClientError():
			return &appointments.RejectionError{Op: op, Message: rejectionMessage(he.Body)}
		}
	}
	return transport(op, err)
}

func transport(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", appointments.ErrTransport, op, err)
}

// rejectionMessage toma message/mensaje/error del cuerpo JSON, o el texto plano.
func rejectionMessage(body string) string {
	body = strings.TrimSpace(body)
	var env struct {
		Message string `json:"message"`
		Mensaje string `json:"mensaje"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &env); err == nil {
		for _, m := range []string{env.Message, env.Mensaje, env.Error} {
			if strings.TrimSpace(m) != "" {
				return strings.TrimSpace(m)
			}
		}
		return ""
	}
	return body
}

func rangeQuery(r appointments.DateRange) url.Values {
	q := url.Values{}
	q.Set("fechaInicio", r.Start.Format(appointments.DateLayout))
	q.Set("fechaFin", r.End.Format(appointments.DateLayout))
	return q
}

func citaPath(id appointments.ID, action string) string {
	return "/citas/" + strconv.FormatInt(int64(id), 10) + "/" + action
}
