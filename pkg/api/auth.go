package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/valyala/fasthttp"

	"unlockdesk/pkg/models"
	"unlockdesk/pkg/telemetry"
)

// captureRefreshCookie stores the http-only refresh cookie from a login
// or refresh response so subsequent refresh calls can present it.
func (c *Client) captureRefreshCookie(resp *fasthttp.Response) {
	resp.Header.VisitAllCookie(func(key, value []byte) {
		if string(key) != "refresh_token" {
			return
		}
		ck := fasthttp.AcquireCookie()
		defer fasthttp.ReleaseCookie(ck)
		if ck.ParseBytes(value) == nil {
			c.tokens.SetRefreshCookie("refresh_token=" + string(ck.Value()))
		}
	})
}

// refreshAccessToken is the single-flight refresh body: it posts to the
// refresh endpoint (bypassing the 401 layer) and returns the new access
// token.
func (c *Client) refreshAccessToken(ctx context.Context) (string, error) {
	var out models.LoginResult
	if err := c.refreshRoundTrip(ctx, &out); err != nil {
		return "", err
	}
	if out.Access == "" {
		return "", fmt.Errorf("refresh endpoint did not return access token")
	}
	telemetry.TokenRefreshes.Inc()
	return out.Access, nil
}

func (c *Client) refreshRoundTrip(ctx context.Context, out *models.LoginResult) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.base + "/auth/refresh/")
	req.Header.SetMethod(http.MethodPost)
	req.Header.SetContentType("application/json")
	if ck := c.tokens.RefreshCookie(); ck != "" {
		req.Header.Set("Cookie", ck)
	}
	if err := c.hc.DoDeadline(req, resp, deadlineFor(ctx, c.timeout)); err != nil {
		return fmt.Errorf("POST /auth/refresh/: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return newError(resp.StatusCode(), resp.Body())
	}
	c.captureRefreshCookie(resp)
	return decodeJSON(resp.Body(), out)
}

// Login performs password login, stores the access token and captures
// the refresh cookie.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (models.LoginResult, error) {
	var out models.LoginResult
	p, err := jsonPayload(creds)
	if err != nil {
		return out, err
	}
	err = c.do(ctx, http.MethodPost, "/auth/login/", nil, p, &out, &callOpts{onResponse: c.captureRefreshCookie})
	if err != nil {
		return out, err
	}
	c.tokens.SetToken(out.Access)
	return out, nil
}

// TelegramLogin authenticates with a Telegram auth payload.
func (c *Client) TelegramLogin(ctx context.Context, payload map[string]any) (models.LoginResult, error) {
	var out models.LoginResult
	p, err := jsonPayload(payload)
	if err != nil {
		return out, err
	}
	err = c.do(ctx, http.MethodPost, "/auth/telegram/", nil, p, &out, &callOpts{onResponse: c.captureRefreshCookie})
	if err != nil {
		return out, err
	}
	c.tokens.SetToken(out.Access)
	return out, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, creds models.Credentials) (models.LoginResult, error) {
	var out models.LoginResult
	p, err := jsonPayload(creds)
	if err != nil {
		return out, err
	}
	if err := c.do(ctx, http.MethodPost, "/auth/register/", nil, p, &out, nil); err != nil {
		return out, err
	}
	if out.Access != "" {
		c.tokens.SetToken(out.Access)
	}
	return out, nil
}

// Logout invalidates the session server-side and clears local tokens.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/logout/", nil, nil, nil, nil)
	c.tokens.Clear()
	return err
}

// BootstrapStatus reports whether an admin account exists yet.
func (c *Client) BootstrapStatus(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.do(ctx, http.MethodGet, "/auth/bootstrap-status/", nil, nil, &out, nil)
	return out, err
}

// BootstrapAdmin creates the first admin account.
func (c *Client) BootstrapAdmin(ctx context.Context, creds models.Credentials) error {
	p, err := jsonPayload(creds)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/auth/bootstrap-admin/", nil, p, nil, nil)
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	var out models.User
	err := c.do(ctx, http.MethodGet, "/me/", nil, nil, &out, nil)
	return out, err
}

// Dashboard returns the role-aware dashboard summary.
func (c *Client) Dashboard(ctx context.Context) (models.DashboardSummary, error) {
	var out models.DashboardSummary
	err := c.do(ctx, http.MethodGet, "/dashboard/", nil, nil, &out, nil)
	return out, err
}
