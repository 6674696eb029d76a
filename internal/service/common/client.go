//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oshokin/mc-updater/internal/version"
)

// Client wraps an *http.Client with a default per-call timeout and strict
// status handling.
type Client struct {
	// http performs the requests.
	http *http.Client

	// callTimeout is the default timeout for individual requests.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for requests.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

var (
	// ErrRequest is returned when a request cannot be built or completed.
	ErrRequest = errors.New("http request failed")
	// ErrBadHTTPStatus is returned for any response other than 200 OK.
	ErrBadHTTPStatus = errors.New("unexpected http status")
)

// NewClient builds a Client with the provided options.
func NewClient(opts ...Option) *Client {
	client := &Client{
		http: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// GetBytes fetches url and returns the whole response body.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.get(callCtx, url)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", url, ErrRequest, err)
	}

	return body, nil
}

// GetText fetches url and returns the body as a string.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	body, err := c.GetBytes(ctx, url)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// Open starts a GET request and returns the response body for streaming.
// The call timeout is not applied; bound the transfer through ctx instead.
// The caller must close the returned body.
func (c *Client) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	response, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	return response.Body, nil
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w: %w", url, ErrRequest, err)
	}

	req.Header.Set("User-Agent", version.UserAgent())

	response, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w: %w", url, ErrRequest, err)
	}

	if response.StatusCode != http.StatusOK {
		_ = response.Body.Close()

		return nil, fmt.Errorf("%s, %s: %w", url, response.Status, ErrBadHTTPStatus)
	}

	return response, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
