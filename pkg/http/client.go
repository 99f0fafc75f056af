package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	MethodGet    = http.MethodGet
	MethodPost   = http.MethodPost
	MethodDelete = http.MethodDelete
)

// ClientOption configures Client.
type ClientOption func(*Client)

// RequestOptions holds HTTP request parameters.
type RequestOptions struct {
	Method      string
	URL         string
	Headers     map[string]string
	QueryParams map[string][]string
	Body        interface{}
}

// StatusError is returned when the remote side answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client is a thin resty wrapper with retry on 429 and 5xx.
type Client struct {
	timeout   time.Duration
	retries   int
	retryWait time.Duration
	baseURL   string
	userAgent string
	rc        *resty.Client
}

// NewClient creates a new HTTP client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout:   30 * time.Second,
		retryWait: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}

	rc := resty.New().
		SetTimeout(c.timeout).
		SetRetryCount(c.retries).
		SetRetryWaitTime(c.retryWait).
		SetRetryMaxWaitTime(8 * c.retryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})
	if c.baseURL != "" {
		rc.SetBaseURL(c.baseURL)
	}
	if c.userAgent != "" {
		rc.SetHeader("User-Agent", c.userAgent)
	}
	c.rc = rc
	return c
}

// SendRequest sends an HTTP request and returns the buffered response.
func (c *Client) SendRequest(ctx context.Context, opts *RequestOptions) (*resty.Response, error) {
	req := c.rc.R().SetContext(ctx)
	if len(opts.Headers) > 0 {
		req.SetHeaders(opts.Headers)
	}
	if len(opts.QueryParams) > 0 {
		req.SetQueryParamsFromValues(url.Values(opts.QueryParams))
	}
	if opts.Body != nil {
		req.SetBody(opts.Body)
	}

	method := opts.Method
	if method == "" {
		method = MethodGet
	}
	resp, err := req.Execute(method, opts.URL)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// SendAndParse sends request and parses JSON response into dest.
// dest may also be *[]byte or an io.Writer to receive the raw body.
func (c *Client) SendAndParse(ctx context.Context, opts *RequestOptions, dest interface{}) error {
	resp, err := c.SendRequest(ctx, opts)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		body := resp.String()
		if len(body) > 512 {
			body = body[:512]
		}
		return &StatusError{StatusCode: resp.StatusCode(), Body: body}
	}
	if dest == nil {
		return nil
	}

	switch v := dest.(type) {
	case *[]byte:
		*v = resp.Body()
	case io.Writer:
		if _, err := v.Write(resp.Body()); err != nil {
			return fmt.Errorf("copy body: %w", err)
		}
	default:
		if err := json.Unmarshal(resp.Body(), dest); err != nil {
			return fmt.Errorf("decode json: %w", err)
		}
	}
	return nil
}

// WithTimeout sets client timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRetries sets how many times a failed request is retried.
func WithRetries(n int, wait time.Duration) ClientOption {
	return func(c *Client) {
		c.retries = n
		if wait > 0 {
			c.retryWait = wait
		}
	}
}

func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}
