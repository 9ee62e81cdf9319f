// Package esv fetches recorded chapter audio from the ESV API.
package esv

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the passage audio endpoint.
const DefaultBaseURL = "https://api.esv.org/v3/passage/audio/"

// Client requests chapter audio. The zero value is not usable; call New.
type Client struct {
	http    *resty.Client
	baseURL string
}

// Option customises a Client.
type Option func(*Client)

// WithBaseURL points the client at another endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u = strings.TrimSpace(u); u != "" {
			c.baseURL = u
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// New returns a client with a two minute request timeout.
func New(opts ...Option) *Client {
	c := &Client{
		http:    resty.New().SetTimeout(2 * time.Minute),
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChapterAudio downloads the MP3 for a canonical chapter reference such as
// "Genesis 1". The query encodes spaces as '+'.
func (c *Client) ChapterAudio(ctx context.Context, apiKey, chapter string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Token "+apiKey).
		SetQueryParam("q", chapter).
		Get(c.baseURL)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("unexpected status %s", resp.Status())
	}
	return resp.Body(), nil
}
