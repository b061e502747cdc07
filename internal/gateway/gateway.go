// ABOUTME: HTTP request gateway that attaches the stored bearer credential
// ABOUTME: Issues one attempt per call and classifies the response into gateway.Error

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/2389/itemdesk/internal/credential"
)

// maxErrorBody caps how much of an error response is read for the detail field.
const maxErrorBody = 64 << 10

// Request describes one call to the catalog service.
type Request struct {
	Method string
	Path   string // joined to the base URL, e.g. "/api/42"
	Body   any    // JSON-encoded when non-nil
	// Auth marks endpoints that require a credential. It changes how a 401
	// is classified; the header is attached whenever a credential exists.
	Auth bool
}

// Gateway issues catalog requests.
type Gateway struct {
	baseURL string
	client  *http.Client
	creds   credential.Store
	logger  *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.client = c }
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.client = &http.Client{Timeout: d} }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) { g.logger = l.With("component", "gateway") }
}

// New creates a Gateway for baseURL that reads credentials from creds.
func New(baseURL string, creds credential.Store, opts ...Option) *Gateway {
	g := &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		creds:   creds,
		logger:  slog.Default().With("component", "gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// BaseURL returns the service origin requests are sent to.
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// Do sends req and decodes a successful JSON body into out (which may be nil).
// Any failure is returned as a *Error.
func (g *Gateway) Do(ctx context.Context, req Request, out any) error {
	requestID := uuid.New().String()
	logger := g.logger.With("method", req.Method, "path", req.Path, "request_id", requestID)

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return transportFailure("encoding request body", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, g.baseURL+req.Path, body)
	if err != nil {
		return transportFailure("creating request", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	// Attach the credential whenever one is stored, even for anonymous endpoints
	if cred, ok := g.creds.Get(); ok {
		httpReq.Header.Set("Authorization", "Bearer "+cred.Token)
	}

	start := time.Now()
	resp, err := g.client.Do(httpReq)
	if err != nil {
		logger.Warn("request failed", "error", err)
		return transportFailure("network error", err)
	}
	defer resp.Body.Close()

	logger.Debug("response received", "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := readDetail(resp.Body)
		if resp.StatusCode == http.StatusUnauthorized && req.Auth {
			return sessionExpired(detail)
		}
		return requestFailed(resp.StatusCode, detail)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportFailure("reading response body", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		logger.Warn("invalid response body", "error", err)
		return transportFailure("invalid response body", err)
	}
	return nil
}

// readDetail extracts the "detail" field of a JSON error body.
// FastAPI-style validation errors carry a list of {msg} objects instead of a string.
func readDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return string(payload.Detail)
}

// AsError converts err into a *Error, wrapping foreign errors as transport failures.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr
	}
	return transportFailure("unexpected error", err)
}
