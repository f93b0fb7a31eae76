// Package client talks to the food-order backend over REST/JSON. It attaches
// the session's bearer token, maps failures onto apperr kinds and normalizes
// the server's spellings before anything reaches the rest of the storefront.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"food-order-service/internal/apperr"
)

const DefaultTimeout = 10 * time.Second

// IdempotencyHeader carries the client-chosen key of an order creation.
const IdempotencyHeader = "Idempotency-Key"

// TokenSource yields the bearer token of the current session, or "".
type TokenSource interface {
	Token() string
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     zerolog.Logger
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the API rooted at baseURL, e.g.
// "http://localhost:5000/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetTokenSource swaps the token source after construction, for callers
// whose session needs the client to log in first.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

type request struct {
	method  string
	path    string
	body    any
	headers map[string]string
}

// do sends req and decodes a 2xx body into out when out is non-nil. Transport
// failures and timeouts become *apperr.NetworkError; any other status becomes
// a *apperr.RemoteError, or a *apperr.VoucherError when the server names a
// voucher rejection reason.
func (c *Client) do(ctx context.Context, req request, out any) error {
	op := req.method + " " + req.path

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	c.logger.Debug().Str("method", req.method).Str("path", req.path).Msg("api request")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error().Err(err).Str("op", op).Msg("api request failed")
		return apperr.NewNetworkError(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.NewNetworkError(op, err)
	}

	c.logger.Debug().Str("op", op).Int("status", resp.StatusCode).Msg("api response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		c.logger.Warn().Str("op", op).Int("status", resp.StatusCode).Str("error", eb.text()).Msg("api rejected request")
		if reason, ok := apperr.ParseVoucherReason(eb.Reason); ok {
			return apperr.NewVoucherError(reason, eb.text())
		}
		return apperr.NewRemoteError(resp.StatusCode, eb.text())
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
