// Package siray is the Go client for the Siray AI media generation API.
//
// A Client exposes three namespaces: Image and Video submit asynchronous
// generation tasks and poll their status, Files uploads local files to
// Siray storage using short-lived credentials.
//
//	client, err := siray.New(siray.WithAPIKey("your-api-key"))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	resp, err := client.Image.GenerateAsync(ctx, &siray.GenerationRequest{
//		Model:  "black-forest-labs/flux-1.1-pro-ultra-i2i",
//		Prompt: "A beautiful sunset over mountains",
//	})
package siray

import (
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.siray.ai"
	defaultTimeout = 120 * time.Second

	apiKeyEnv = "SIRAY_API_KEY"
)

// Client is the entry point to the Siray API. Construct it once with New
// and share it; it is immutable after construction.
type Client struct {
	apiKey     string
	baseURL    string
	gatewayURL string
	httpClient *http.Client

	// Image and Video submit generation tasks; Files uploads to storage.
	Image *GenerationService
	Video *GenerationService
	Files *FilesService
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the API key explicitly instead of reading SIRAY_API_KEY.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithBaseURL overrides the API base URL (default https://api.siray.ai).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithGatewayURL overrides the gateway used for credential exchange.
// It defaults to the base URL.
func WithGatewayURL(url string) Option {
	return func(c *Client) { c.gatewayURL = strings.TrimRight(url, "/") }
}

// WithTimeout sets the per-request HTTP timeout (default 120s).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client entirely. The caller
// owns its timeout and transport settings.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client. The API key is taken from WithAPIKey first, then
// the SIRAY_API_KEY environment variable; if neither is set New fails with
// ErrMissingAPIKey before any network call.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.apiKey == "" {
		c.apiKey = os.Getenv(apiKeyEnv)
	}
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if c.gatewayURL == "" {
		c.gatewayURL = c.baseURL
	}

	c.Image = &GenerationService{
		client: c,
		path:   "/v1/images/generations/async",
		action: "imageGenerate",
	}
	c.Video = &GenerationService{
		client: c,
		path:   "/v1/video/generations/async",
		action: "videoGenerate",
	}
	c.Files = &FilesService{client: c}

	return c, nil
}

// APIKey returns the key the client authenticates with.
func (c *Client) APIKey() string { return c.apiKey }

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// GatewayURL returns the credential-exchange gateway URL.
func (c *Client) GatewayURL() string { return c.gatewayURL }
