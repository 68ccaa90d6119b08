package qonto

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/receiptsync/internal/logger"
)

// errorBodyLimit truncates response bodies quoted in errors.
const errorBodyLimit = 512

// Client performs authenticated, rate-limited, retried requests against
// the Qonto API.
type Client struct {
	http    *retryablehttp.Client
	limiter *rate.Limiter
	baseURL string
	auth    string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client (useful for testing).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http.HTTPClient = hc
	}
}

// WithRetry overrides the retry count and the backoff bounds.
func WithRetry(retries int, waitMin, waitMax time.Duration) ClientOption {
	return func(c *Client) {
		c.http.RetryMax = retries
		c.http.RetryWaitMin = waitMin
		c.http.RetryWaitMax = waitMax
	}
}

// WithRateLimit overrides the sustained request rate.
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewClient creates a client for the configured organisation.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = MaxRetries
	rc.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	rc.Logger = retryLogger{}
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	c := &Client{
		http:    rc,
		limiter: rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 5),
		baseURL: cfg.baseURL(),
		auth:    cfg.Login + ":" + cfg.Secret,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getJSON fetches an API path and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	resp, err := c.do(ctx, u, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// download fetches a pre-signed attachment URL. The API credentials are
// not sent to the file host.
func (c *Client) download(ctx context.Context, fileURL string) ([]byte, error) {
	resp, err := c.do(ctx, fileURL, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read attachment body: %w", err)
	}
	return data, nil
}

func (c *Client) do(ctx context.Context, u string, authenticated bool) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if authenticated {
		req.Header.Set("Authorization", c.auth)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("GET %s: %w", redact(u), err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, newAPIError(resp, redact(u))
	}
	return resp, nil
}

// newAPIError builds an APIError, preferring the API's own error detail.
func newAPIError(resp *http.Response, u string) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	apiErr := &APIError{StatusCode: resp.StatusCode, URL: u}

	var parsed struct {
		Message string `json:"message"`
		Errors  []struct {
			Code   string `json:"code"`
			Detail string `json:"detail"`
		} `json:"errors"`
	}
	switch {
	case json.Unmarshal(body, &parsed) != nil:
		apiErr.Message = strings.TrimSpace(string(body))
	case len(parsed.Errors) > 0 && parsed.Errors[0].Detail != "":
		apiErr.Message = parsed.Errors[0].Detail
	case len(parsed.Errors) > 0:
		apiErr.Message = parsed.Errors[0].Code
	default:
		apiErr.Message = parsed.Message
	}
	return apiErr
}

// redact drops the query string, which carries signatures for
// pre-signed attachment URLs.
func redact(u string) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i]
	}
	return u
}

// retryLogger routes retryablehttp logs to the verbose logger.
type retryLogger struct{}

func (retryLogger) Error(msg string, kv ...any) { logger.Warn("qonto: %s %v", msg, redactKV(kv)) }
func (retryLogger) Warn(msg string, kv ...any)  { logger.Warn("qonto: %s %v", msg, redactKV(kv)) }
func (retryLogger) Info(msg string, kv ...any)  { logger.Debug("qonto: %s %v", msg, redactKV(kv)) }
func (retryLogger) Debug(msg string, kv ...any) { logger.Debug("qonto: %s %v", msg, redactKV(kv)) }

func redactKV(kv []any) []any {
	out := make([]any, len(kv))
	for i, v := range kv {
		switch t := v.(type) {
		case string:
			v = redact(t)
		case *url.URL:
			v = redact(t.String())
		}
		out[i] = v
	}
	return out
}
