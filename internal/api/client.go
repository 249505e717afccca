// Package api implements the upstream producer: a streaming client for
// the assistant's OpenAI-compatible answer API.
package api

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"

	"github.com/mcosta/helpchat/internal/config"
)

// Client talks to the assistant answer API. It implements
// conversation.Producer.
type Client struct {
	httpClient tls_client.HttpClient
	creds      config.Credentials
	model      string
	mu         sync.RWMutex
	closed     bool
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithModel sets the default model for the client
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithHTTPClient injects a prebuilt HTTP client (used by tests).
func WithHTTPClient(httpClient tls_client.HttpClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new Client. Credentials are injected here and
// copied; the client never reads process-wide state.
func NewClient(creds *config.Credentials, opts ...ClientOption) (*Client, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	client := &Client{
		creds: *creds,
		model: config.DefaultConfig().DefaultModel,
	}
	if client.creds.BaseURL == "" {
		client.creds.BaseURL = config.DefaultBaseURL
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(300),
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// Close shuts down the client.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Model returns the default model
func (c *Client) Model() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// SetModel sets the default model
func (c *Client) SetModel(model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = model
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.creds.BaseURL
}

// endpoint returns the chat completions URL.
func (c *Client) endpoint() string {
	return strings.TrimRight(c.creds.BaseURL, "/") + "/chat/completions"
}

// timeout for a single streamed answer; generous, the stream keeps the
// connection open for the whole generation.
const streamTimeout = 300 * time.Second
