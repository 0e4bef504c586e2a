package floody

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/floody/internal/shared"
)

const DefaultEndpoint = "http://localhost:8080"

// Credentials supplies per-request identity to the [Client].
type Credentials interface {
	// AccessToken returns a valid OAuth access token, refreshing it if needed.
	AccessToken(ctx context.Context) (string, error)
	// ProfileID returns the currently persisted CM profile id, or "".
	ProfileID() string
}

// Options configures a [Client]. Zero values fall back to defaults.
type Options struct {
	BaseURL     string
	HTTPClient  *http.Client
	Credentials Credentials
	RateLimit   float64
	Logger      *log.Logger
}

// Client calls the Floody backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      Credentials
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewClient creates a new [Client].
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultEndpoint
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		creds:      opts.Credentials,
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		logger:     shared.WithLogger(opts.Logger, "component", "floody"),
	}
}

// BaseURL returns the backend endpoint without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// APIError is returned for any non-2xx backend response.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	msg := strings.TrimSpace(e.Body)
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

func (e *APIError) Unwrap() error { return shared.ErrAPIRequest }

// request describes a single backend call.
type request struct {
	method string
	path   string
	// body is JSON-encoded unless it is a string, which is sent as is.
	body any
	// public requests skip the Authorization and profile headers.
	public bool
}

// doRequest performs a request and returns the raw response body.
func (c *Client) doRequest(ctx context.Context, r request) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var reader io.Reader
	switch b := r.body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if !r.public {
		if c.creds == nil {
			return nil, fmt.Errorf("%w: no credentials configured", shared.ErrNotAuthenticated)
		}
		token, err := c.creds.AccessToken(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("profile", c.creds.ProfileID())
	}

	requestID := shared.GenerateID()
	c.logger.Debug("request", "id", requestID, "method", r.method, "path", r.path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("response", "id", requestID, "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Method: r.method, Path: r.path, StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// doJSON performs a request and decodes the JSON response into result.
func (c *Client) doJSON(ctx context.Context, r request, result any) error {
	body, err := c.doRequest(ctx, r)
	if err != nil {
		return err
	}

	if result == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", r.path, err)
	}
	return nil
}
