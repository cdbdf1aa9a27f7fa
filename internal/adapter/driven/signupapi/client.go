// Package signupapi implements the ActivityAPI port over the signup service's
// HTTP+JSON contract.
package signupapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/signupdesk/internal/domain/model"
	"github.com/ericfisherdev/signupdesk/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ActivityAPI = (*Client)(nil)

const (
	// AdminTokenHeader carries the admin credential on privileged requests.
	AdminTokenHeader = "X-Admin-Token"
	// RequestIDHeader correlates client logs with service logs.
	RequestIDHeader = "X-Request-ID"

	maxBodyBytes = 4 << 20
)

// Client implements driven.ActivityAPI.
type Client struct {
	http    *http.Client
	baseURL string // no trailing slash
	logger  *slog.Logger
}

// Options configures NewClient.
type Options struct {
	// Timeout bounds each request. Zero leaves requests bounded only by ctx.
	Timeout time.Duration
	// Cache enables ETag/Last-Modified revalidation of GET responses.
	// Responses without validators or freshness headers are always re-fetched.
	Cache bool
}

// NewClient creates a Client for the service at baseURL with the transport stack:
//  1. httpcache (conditional GET revalidation, when Options.Cache is set)
//  2. http.DefaultTransport
func NewClient(baseURL string, opts Options, logger *slog.Logger) (*Client, error) {
	var transport http.RoundTripper = http.DefaultTransport
	if opts.Cache {
		cacheTransport := httpcache.NewMemoryCacheTransport()
		cacheTransport.Transport = http.DefaultTransport
		transport = cacheTransport
	}

	return NewClientWithHTTPClient(&http.Client{Transport: transport, Timeout: opts.Timeout}, baseURL, logger)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parsing base URL %q: scheme must be http or https", baseURL)
	}

	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(u.String(), "/"),
		logger:  logger,
	}, nil
}

// ListActivities performs GET /activities.
func (c *Client) ListActivities(ctx context.Context) ([]model.Activity, error) {
	body, err := c.call(ctx, http.MethodGet, "/activities", nil, "")
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	activities, err := decodeActivities(body)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w: %w", driven.ErrTransport, err)
	}
	return activities, nil
}

// Signup performs POST /activities/{name}/signup?email={email}.
func (c *Client) Signup(ctx context.Context, activity, email string) (string, error) {
	path := "/activities/" + url.PathEscape(activity) + "/signup"
	query := url.Values{"email": {email}}

	msg, err := c.callForMessage(ctx, http.MethodPost, path, query, "")
	if err != nil {
		return "", fmt.Errorf("signup for %q: %w", activity, err)
	}
	return msg, nil
}

// Unregister performs DELETE /activities/{name}/unregister?email={email}
// with the admin token header.
func (c *Client) Unregister(ctx context.Context, adminToken, activity, email string) (string, error) {
	path := "/activities/" + url.PathEscape(activity) + "/unregister"
	query := url.Values{"email": {email}}

	msg, err := c.callForMessage(ctx, http.MethodDelete, path, query, adminToken)
	if err != nil {
		return "", fmt.Errorf("unregister from %q: %w", activity, err)
	}
	return msg, nil
}

// Login performs POST /admin/login?password={password}.
func (c *Client) Login(ctx context.Context, password string) (driven.LoginResult, error) {
	body, err := c.call(ctx, http.MethodPost, "/admin/login", url.Values{"password": {password}}, "")
	if err != nil {
		return driven.LoginResult{}, fmt.Errorf("admin login: %w", err)
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return driven.LoginResult{}, fmt.Errorf("admin login: decode response: %w: %w", driven.ErrTransport, err)
	}
	return driven.LoginResult{Token: resp.Token, Message: resp.Message}, nil
}

// Logout performs POST /admin/logout with the admin token header. The status
// and body of the response are ignored; only transport failures are returned.
func (c *Client) Logout(ctx context.Context, adminToken string) error {
	req, reqID, err := c.newRequest(ctx, http.MethodPost, "/admin/logout", nil, adminToken)
	if err != nil {
		return fmt.Errorf("admin logout: %w", err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("admin logout: %w: %w", driven.ErrTransport, err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	_ = resp.Body.Close()

	c.logCall(req, reqID, resp.StatusCode, start)
	return nil
}

// callForMessage performs a mutation and returns the "message" field of a 2xx body.
func (c *Client) callForMessage(ctx context.Context, method, path string, query url.Values, adminToken string) (string, error) {
	body, err := c.call(ctx, method, path, query, adminToken)
	if err != nil {
		return "", err
	}

	var resp messageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode response: %w: %w", driven.ErrTransport, err)
	}
	return resp.Message, nil
}

// call sends a request and returns the body of a 2xx response. A non-2xx
// response with a JSON body becomes a *driven.RejectionError; anything that
// prevents reading a JSON body is wrapped with driven.ErrTransport.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, adminToken string) ([]byte, error) {
	req, reqID, err := c.newRequest(ctx, method, path, query, adminToken)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", driven.ErrTransport, err)
	}
	defer resp.Body.Close()

	c.logCall(req, reqID, resp.StatusCode, start)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w: %w", driven.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err != nil {
			return nil, fmt.Errorf("decode error response (status %d): %w: %w", resp.StatusCode, driven.ErrTransport, err)
		}
		return nil, &driven.RejectionError{Status: resp.StatusCode, Detail: errResp.detailText()}
	}

	return body, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, adminToken string) (*http.Request, string, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}

	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)
	if adminToken != "" {
		req.Header.Set(AdminTokenHeader, adminToken)
	}
	return req, reqID, nil
}

// logCall logs each completed request. Query strings are never logged since
// they can carry the admin password.
func (c *Client) logCall(req *http.Request, reqID string, status int, start time.Time) {
	c.logger.Debug("signup api call",
		"method", req.Method,
		"path", req.URL.EscapedPath(),
		"status", status,
		"request_id", reqID,
		"duration", time.Since(start).Round(time.Microsecond),
	)
}
