package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"

	"unlockdesk/pkg/auth"
	"unlockdesk/pkg/logger"
	"unlockdesk/pkg/telemetry"
)

// refreshBypass lists the auth endpoints that must never trigger a
// token refresh, to avoid recursive refresh loops.
var refreshBypass = []string{
	"/auth/login/",
	"/auth/telegram/",
	"/auth/logout/",
	"/auth/bootstrap-admin/",
	"/auth/bootstrap-status/",
	"/auth/refresh/",
}

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, e.g. "https://host/api".
	BaseURL string
	// Tokens supplies and receives the bearer token. Required.
	Tokens *auth.Service
	// Timeout bounds each request when the context has no deadline.
	Timeout time.Duration
	// RPS/Burst rate-limit outgoing requests; zero disables limiting.
	RPS   float64
	Burst int
	// MaxUpload caps attachment size client-side; zero keeps the
	// built-in limit.
	MaxUpload int64
}

// Client is the typed REST client for the marketplace backend. All
// endpoint groups hang off it. A 401 on a non-auth endpoint triggers a
// single-flight token refresh and exactly one retry; a second 401
// propagates to the caller.
type Client struct {
	base      string
	hc        *fasthttp.Client
	tokens    *auth.Service
	limiter   *rate.Limiter
	timeout   time.Duration
	maxUpload int64
}

func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		base:      strings.TrimRight(opts.BaseURL, "/"),
		hc:        &fasthttp.Client{ReadTimeout: timeout, WriteTimeout: timeout},
		tokens:    opts.Tokens,
		timeout:   timeout,
		maxUpload: opts.MaxUpload,
	}
	if opts.RPS > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RPS), burst)
	}
	return c
}

// Tokens exposes the token service (used by the CLI for claims).
func (c *Client) Tokens() *auth.Service { return c.tokens }

type payload struct {
	contentType string
	body        []byte
}

func jsonPayload(v any) (*payload, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return &payload{contentType: "application/json", body: b}, nil
}

// multipartPayload builds a multipart form from string fields plus
// optional file attachments (form field -> local path).
func multipartPayload(fields map[string]string, files map[string]string) (*payload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := w.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	for field, path := range files {
		if path == "" {
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open upload %s: %w", path, err)
		}
		part, err := w.CreateFormFile(field, filepath.Base(path))
		if err == nil {
			_, err = io.Copy(part, f)
		}
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("attach %s: %w", path, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return &payload{contentType: w.FormDataContentType(), body: buf.Bytes()}, nil
}

type callOpts struct {
	onResponse func(*fasthttp.Response)
}

func deadlineFor(ctx context.Context, timeout time.Duration) time.Time {
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	return deadline
}

func decodeJSON(body []byte, out any) error {
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func bypassesRefresh(path string) bool {
	for _, p := range refreshBypass {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// do performs one request with bearer auth and the 401
// refresh-and-retry-once policy. out, when non-nil, receives the decoded
// JSON response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, p *payload, out any, opts *callOpts) error {
	body, err := c.roundTrip(ctx, method, path, query, p, opts, true)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, p *payload, opts *callOpts, allowRetry bool) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	uri := c.base + path
	if len(query) > 0 {
		uri += "?" + query.Encode()
	}
	req.SetRequestURI(uri)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	if p != nil {
		req.Header.SetContentType(p.contentType)
		req.SetBody(p.body)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.hc.DoDeadline(req, resp, deadline); err != nil {
		telemetry.RequestErrors.Inc()
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	status := resp.StatusCode()
	body := append([]byte(nil), resp.Body()...)
	if opts != nil && opts.onResponse != nil {
		opts.onResponse(resp)
	}

	if status == http.StatusUnauthorized && allowRetry && !bypassesRefresh(path) {
		logger.Debug("unauthorized_retrying_after_refresh", "method", method, "path", path)
		if _, err := c.tokens.Refresh(ctx, c.refreshAccessToken); err != nil {
			return nil, newError(status, body)
		}
		return c.roundTrip(ctx, method, path, query, p, opts, false)
	}
	if status >= http.StatusBadRequest {
		return nil, newError(status, body)
	}
	return body, nil
}
