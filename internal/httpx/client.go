// Package httpx provides the cookie-aware HTTP requester shared by every
// resolution step.
package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"

	"github.com/rs/zerolog"
	"github.com/vfaronov/httpheader"
)

// ErrBadStatus marks non-2xx responses. The raw body is retained in the
// diagnostic log, not in the error, to keep failure strings short.
var ErrBadStatus = errors.New("unexpected response status")

// Options carries per-request header overrides.
type Options struct {
	Referer       string
	Authorization string
}

// Client wraps http.Client with a shared cookie jar and a fixed user-agent.
// Provider chains depend on cookies set by earlier steps (the event chain's
// bot-mitigation cookie in particular), so all requests of a run go through
// one jar.
type Client struct {
	hc        *http.Client
	userAgent string
	log       zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTransport overrides the underlying round tripper. Tests use this
// to route fixed provider hostnames at local servers.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.hc.Transport = rt }
}

func New(userAgent string, log zerolog.Logger, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	c := &Client{
		hc:        &http.Client{Jar: jar},
		userAgent: userAgent,
		log:       log.With().Str("component", "httpx").Logger(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// FetchText performs a GET and returns the response body as a string.
// Full bodies are only logged at trace level; chain shapes drift as provider
// pages change, and the dumps are what makes the matchers repairable.
func (c *Client) FetchText(ctx context.Context, rawURL string, opts *Options) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", rawURL, err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	if opts != nil {
		if opts.Referer != "" {
			req.Header.Set("Referer", opts.Referer)
		}
		if opts.Authorization != "" {
			req.Header.Set("Authorization", opts.Authorization)
		}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response from %s: %w", rawURL, err)
	}

	mtype, _ := httpheader.ContentType(resp.Header)
	c.log.Trace().
		Str("url", rawURL).
		Int("status", resp.StatusCode).
		Str("media_type", mtype).
		Str("body", string(body)).
		Msg("response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Debug().
			Str("url", rawURL).
			Int("status", resp.StatusCode).
			Str("body", string(body)).
			Msg("request failed")
		return "", fmt.Errorf("GET %s: %w: %s", rawURL, ErrBadStatus, resp.Status)
	}

	return string(body), nil
}
