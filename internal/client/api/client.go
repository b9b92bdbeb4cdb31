// Package api is the storefront's single HTTP gateway to the REST API. It
// attaches the bearer token, speaks JSON, and handles 401 centrally by
// clearing the session before returning ErrUnauthorized.
package api

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

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"storefront/internal/client/session"
)

const (
	DefaultBaseURL   = "http://localhost:8000/api"
	defaultUserAgent = "storefront-client/1.0"
	maxBodyBytes     = 4 << 20

	HeaderRequestID = "X-Request-ID"
)

// Session is the part of the session store the gateway needs.
type Session interface {
	Token() string
	ClearSession(ctx context.Context, reason session.Reason) error
}

type Config struct {
	BaseURL string
	// Timeout bounds a whole request. Zero keeps the transport defaults.
	Timeout   time.Duration
	UserAgent string
	// Transport defaults to http.DefaultTransport. It is always wrapped
	// for tracing.
	Transport http.RoundTripper
}

type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	session   Session
	logger    zerolog.Logger
}

func New(cfg Config, sess Session, logger zerolog.Logger) (*Client, error) {
	if sess == nil {
		return nil, errors.New("api: session is required")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("api: base url %q must be absolute http(s)", base)
	}

	rt := cfg.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	timeout := cfg.Timeout
	if timeout < 0 {
		timeout = 0
	}
	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}

	return &Client{
		baseURL:   base,
		userAgent: ua,
		http:      &http.Client{Transport: otelhttp.NewTransport(rt), Timeout: timeout},
		session:   sess,
		logger:    logger.With().Str("component", "api").Logger(),
	}, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do sends one request. A nil body sends no payload; a nil out discards the
// response. An empty 2xx body leaves out untouched. Once the request is
// sent every failure is an *Error; a body that cannot be encoded or a
// request that cannot be built fails before that with a plain error and
// nothing goes on the wire.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return fmt.Errorf("api: build %s %s: %w", method, path, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(HeaderRequestID, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log := c.logger.With().Str("method", method).Str("path", path).Str("request_id", requestID).Logger()
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug().Err(err).Msg("request failed")
		msg := msgTransport
		if errors.Is(err, context.Canceled) {
			msg = msgCanceled
		}
		return &Error{Kind: KindTransport, Message: msg, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &Error{Kind: KindTransport, Status: resp.StatusCode, Message: msgTransport, Err: err}
	}
	log.Debug().Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("request done")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := statusError(resp.StatusCode, raw)
		if apiErr.Kind == KindUnauthorized {
			c.handleUnauthorized(ctx, log)
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindServer, Status: resp.StatusCode, Message: msgServer, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// handleUnauthorized clears the session before the caller sees the error.
// The clear must finish even if the request context is already done.
func (c *Client) handleUnauthorized(ctx context.Context, log zerolog.Logger) {
	if err := c.session.ClearSession(context.WithoutCancel(ctx), session.ReasonUnauthorized); err != nil {
		log.Warn().Err(err).Msg("clear session after 401")
	}
}

func (c *Client) url(path string) string {
	if path == "" {
		return c.baseURL
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}
