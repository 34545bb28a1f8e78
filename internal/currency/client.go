package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrConversionFailed is returned when the rate service cannot convert an amount.
var ErrConversionFailed = errors.New("currency conversion failed")

const (
	DefaultBaseURL = "https://api.exchangerate.host"
	DefaultTimeout = 10 * time.Second
)

// Client talks to an exchangerate.host compatible rate service.
type Client struct {
	baseURL   string
	accessKey string
	http      *http.Client
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithAccessKey sends key as the access_key query parameter.
func WithAccessKey(key string) Option {
	return func(c *Client) { c.accessKey = key }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for degraded lookups.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a Client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type symbolsResponse struct {
	Symbols map[string]json.RawMessage `json:"symbols"`
}

type convertResponse struct {
	Success *bool    `json:"success"`
	Result  *float64 `json:"result"`
}

// ListCurrencies returns the currency codes known to the service, sorted.
// Any failure degrades to a short fixed list that starts with base.
func (c *Client) ListCurrencies(ctx context.Context, base string) []string {
	var body symbolsResponse
	if err := c.get(ctx, "/symbols", nil, &body); err != nil {
		c.logger.Warn("currency list unavailable, using fallback", "error", err)
		return Fallback(base)
	}
	if len(body.Symbols) == 0 {
		c.logger.Warn("currency list empty, using fallback")
		return Fallback(base)
	}

	codes := make([]string, 0, len(body.Symbols))
	for code := range body.Symbols {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Convert converts amount from one currency to another. Identical codes
// return amount unchanged without contacting the service.
func (c *Client) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	from, to = Normalize(from), Normalize(to)
	if from == to {
		return amount, nil
	}

	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)
	q.Set("amount", strconv.FormatFloat(amount, 'f', -1, 64))

	var body convertResponse
	if err := c.get(ctx, "/convert", q, &body); err != nil {
		return 0, fmt.Errorf("%w: %s to %s: %v", ErrConversionFailed, from, to, err)
	}
	if body.Success != nil && !*body.Success {
		return 0, fmt.Errorf("%w: %s to %s: service reported failure", ErrConversionFailed, from, to)
	}
	if body.Result == nil {
		return 0, fmt.Errorf("%w: %s to %s: missing result", ErrConversionFailed, from, to)
	}
	return *body.Result, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	if q == nil {
		q = url.Values{}
	}
	if c.accessKey != "" {
		q.Set("access_key", c.accessKey)
	}
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 240))
		return fmt.Errorf("status %d: %q", resp.StatusCode, b)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Fallback returns base followed by USD, EUR and INR without duplicates.
func Fallback(base string) []string {
	codes := make([]string, 0, 4)
	seen := make(map[string]bool, 4)
	for _, code := range []string{Normalize(base), "USD", "EUR", "INR"} {
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes
}

// Normalize trims and upper-cases a currency code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
