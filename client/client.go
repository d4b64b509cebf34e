package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

// Client wraps the std-lib *http.Client.
// A single Client is built per run and shared by every job;
// it is safe for concurrent use.
type Client struct {
	c           *http.Client
	logger      *slog.Logger
	maxBodySize int64
}

func Build(optFns ...Option) (*Client, error) {
	client := &Client{
		c:      &http.Client{},
		logger: slog.Default(),
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	if opts.client != nil {
		client.c = opts.client
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	if opts.timeout != nil {
		client.c.Timeout = *opts.timeout
	}

	if opts.noFollowRedirects {
		client.c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	client.maxBodySize = opts.maxBodySize

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	client.c.Transport = transport

	return client, nil
}

// Fetch fires a single attempt of req and returns the full response body
// when the server answers with any 2xx status. Non-2xx statuses return an
// [*UnexpectedStatusError]; failures before a status line arrives, or while
// reading the body, return a [*TransportError].
func (c *Client) Fetch(req *http.Request) ([]byte, error) {
	var payload []byte

	fetchFunc := func(resp *http.Response) error {
		var body io.Reader = resp.Body
		if c.maxBodySize > 0 {
			body = io.LimitReader(resp.Body, c.maxBodySize+1)
		}

		b, err := io.ReadAll(body)
		if err != nil {
			return &TransportError{Err: fmt.Errorf("reading body: %w", err)}
		}

		if c.maxBodySize > 0 && int64(len(b)) > c.maxBodySize {
			return fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, c.maxBodySize)
		}

		payload = b

		return nil
	}

	if err := c.exec(req, isSuccess, fetchFunc); err != nil {
		return nil, err
	}

	return payload, nil
}

// Request instantiates an *http.Request with the provided information.
// It's just a convenience method that wraps the public Request func.
func (c *Client) Request(ctx context.Context, reqURL *url.URL, method string, opts ...RequestOption) (*http.Request, error) {
	return Request(ctx, reqURL, method, opts...)
}

// exec runs the request and injected function on success after validating the status code.
func (c *Client) exec(req *http.Request, accept acceptFn, fn execFn) error {
	resp, err := c.c.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}

	discardBody := true
	defer func() {
		if discardBody {
			if _, err = io.Copy(io.Discard, resp.Body); err != nil {
				c.logger.Debug("failed to discard unused body", "error", err)
			}
		}
		if err = resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	if !accept(resp.StatusCode) {
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
		if err != nil {
			b = []byte("unable to read body")
		}

		return statusError(resp.StatusCode, b)
	}

	if err := fn(resp); err != nil {
		discardBody = false
		return fmt.Errorf("exec fn: %w", err)
	}

	return nil
}

// Request instantiates an *http.Request with the provided information.
func Request(ctx context.Context, reqURL *url.URL, method string, opts ...RequestOption) (*http.Request, error) {
	var settings requestOpts
	for _, opt := range opts {
		err := opt(&settings)
		if err != nil {
			return nil, err
		}
	}

	if reqURL == nil {
		return nil, fmt.Errorf("instantiating request: %w", errNilURL)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("instantiating request: %w", err)
	}

	for _, cookie := range settings.cookies {
		req.AddCookie(cookie)
	}

	for k, v := range settings.headers {
		for _, element := range v {
			req.Header.Add(k, element)
		}
	}

	return req, nil
}

func isSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
