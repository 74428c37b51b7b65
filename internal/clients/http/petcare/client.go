// Package petcare is the outbound REST client for the pet-care backend that owns pets,
// services, staff, appointments and cart checkout.
package petcare

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 1 << 20
)

// Client calls the pet-care backend.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	token   string
	breaker *gobreaker.CircuitBreaker[*rawResponse]
}

type rawResponse struct {
	status int
	body   []byte
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	token      string
	timeout    time.Duration
	breaker    *gobreaker.Settings
}

// WithHTTPClient replaces the default HTTP client. Its transport is wrapped with otelhttp.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithToken sends Authorization: Bearer <token> on every call.
func WithToken(token string) Option {
	return func(o *clientOptions) { o.token = strings.TrimSpace(token) }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

// WithBreakerSettings overrides the circuit breaker configuration.
func WithBreakerSettings(s gobreaker.Settings) Option {
	return func(o *clientOptions) { o.breaker = &s }
}

// RequestOption configures a single call.
type RequestOption func(*requestOptions)

type requestOptions struct {
	idempotencyKey string
}

// WithIdempotencyKey sets the Idempotency-Key header for the request.
func WithIdempotencyKey(key string) RequestOption {
	return func(opts *requestOptions) {
		opts.idempotencyKey = strings.TrimSpace(key)
	}
}

// NewClient builds a backend client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("pet-care base URL is required")
	}
	parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse pet-care base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("pet-care base URL must be absolute: %q", baseURL)
	}

	options := clientOptions{timeout: defaultTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	httpClient := options.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: options.timeout}
	}
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	instrumented := *httpClient
	instrumented.Transport = otelhttp.NewTransport(base)

	settings := defaultBreakerSettings()
	if options.breaker != nil {
		settings = *options.breaker
	}
	if settings.IsSuccessful == nil {
		settings.IsSuccessful = countsAsSuccess
	}
	return &Client{
		baseURL: parsed,
		http:    &instrumented,
		token:   options.token,
		breaker: gobreaker.NewCircuitBreaker[*rawResponse](settings),
	}, nil
}

// countsAsSuccess keeps calls the caller walked away from out of the failure counts.
func countsAsSuccess(err error) bool {
	return err == nil || errors.Is(err, errAbandoned)
}

func defaultBreakerSettings() gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "petcare-backend",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
}

// ListPets calls GET /api/pets.
func (c *Client) ListPets(ctx context.Context) ([]Pet, error) {
	var pets []Pet
	if err := c.do(ctx, http.MethodGet, "/api/pets", nil, &pets); err != nil {
		return nil, err
	}
	return pets, nil
}

// ListServices calls GET /api/services.
func (c *Client) ListServices(ctx context.Context) ([]Service, error) {
	var services []Service
	if err := c.do(ctx, http.MethodGet, "/api/services", nil, &services); err != nil {
		return nil, err
	}
	return services, nil
}

// ListUsers calls GET /api/admin/users.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/api/admin/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateAppointment calls POST /api/appointments.
func (c *Client) CreateAppointment(ctx context.Context, payload AppointmentPayload) (*Appointment, error) {
	var created Appointment
	if err := c.do(ctx, http.MethodPost, "/api/appointments", payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateAppointment calls PUT /api/appointments/{id}.
func (c *Client) UpdateAppointment(ctx context.Context, id int64, payload AppointmentPayload) (*Appointment, error) {
	pathID, err := runtime.StyleParamWithLocation("simple", false, "id", runtime.ParamLocationPath, id)
	if err != nil {
		return nil, fmt.Errorf("encode appointment id: %w", err)
	}
	var updated Appointment
	if err := c.do(ctx, http.MethodPut, "/api/appointments/"+pathID, payload, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Checkout calls POST /api/cart/checkout. A rejected checkout is a successful call with OK=false.
func (c *Client) Checkout(ctx context.Context, req CheckoutRequest, optFns ...RequestOption) (*CheckoutResponse, error) {
	var resp CheckoutResponse
	if err := c.do(ctx, http.MethodPost, "/api/cart/checkout", req, &resp, optFns...); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, optFns ...RequestOption) error {
	if c == nil || c.http == nil {
		return errors.New("pet-care client not configured")
	}
	var opts requestOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		payload = encoded
	}

	resp, err := c.breaker.Execute(func() (*rawResponse, error) {
		return c.send(ctx, method, path, payload, opts)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return err
	}
	if resp.status < 200 || resp.status >= 300 {
		return newAPIError(resp)
	}
	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// send performs one round trip. Transport failures and 5xx count against the breaker. 4xx and
// calls whose context ended first do not.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, opts requestOptions) (*rawResponse, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if opts.idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", opts.idempotencyKey)
	}

	res, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %s %s: %w", errAbandoned, method, path, ctxErr)
		}
		return nil, fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, path, err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: read %s %s response: %w", errAbandoned, method, path, ctxErr)
		}
		return nil, fmt.Errorf("%w: read %s %s response: %w", ErrUnavailable, method, path, err)
	}
	raw := &rawResponse{status: res.StatusCode, body: data}
	if res.StatusCode >= http.StatusInternalServerError {
		return nil, newAPIError(raw)
	}
	return raw, nil
}

func newAPIError(resp *rawResponse) *APIError {
	apiErr := &APIError{StatusCode: resp.status}
	var body problem
	if err := json.Unmarshal(resp.body, &body); err == nil {
		apiErr.Title = strings.TrimSpace(body.Title)
		apiErr.Detail = strings.TrimSpace(body.Detail)
		if apiErr.Detail == "" {
			apiErr.Detail = strings.TrimSpace(body.Message)
		}
	}
	return apiErr
}
