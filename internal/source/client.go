// Package source fetches graph batches from a data source over HTTP or from
// local files.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/matsen/bizgraph/internal/graph"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default number of requests per second.
	DefaultRateLimit = 2.0

	// MaxBodySize caps the size of a batch read from any source.
	MaxBodySize = 32 << 20
)

// Fetcher retrieves one batch.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*graph.Batch, error)
}

// Client is a rate-limited batch fetcher.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	userAgent  string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL resolves relative batch URLs against base.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		c.baseURL = base
	}
}

// WithRateLimit sets the maximum requests per second. Zero or negative
// disables limiting.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with requests.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a new source client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		userAgent:  "bizgraph",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves and decodes the batch at raw. http and https URLs are
// fetched with GET; file URLs and plain paths are read from disk.
func (c *Client) Fetch(ctx context.Context, raw string) (*graph.Batch, error) {
	target, err := c.resolve(raw)
	if err != nil {
		return nil, err
	}

	switch target.Scheme {
	case "http", "https":
		return c.fetchHTTP(ctx, target.String())
	case "file":
		return readFile(target.Path)
	case "":
		return readFile(raw)
	default:
		return nil, fmt.Errorf("unsupported URL scheme %q", target.Scheme)
	}
}

func (c *Client) resolve(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing URL %q: %w", raw, err)
	}
	if c.baseURL == "" || u.IsAbs() {
		return u, nil
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL %q: %w", c.baseURL, err)
	}
	return base.ResolveReference(u), nil
}

func (c *Client) fetchHTTP(ctx context.Context, target string) (*graph.Batch, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp, target); err != nil {
		return nil, err
	}

	return decode(resp.Body)
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response, target string) error {
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return &APIError{
			StatusCode: resp.StatusCode,
			URL:        target,
			Message:    http.StatusText(resp.StatusCode),
		}
	}
	return nil
}

func readFile(path string) (*graph.Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("opening batch file: %w", err)
	}
	defer f.Close()
	return decode(f)
}

func decode(r io.Reader) (*graph.Batch, error) {
	b, err := graph.DecodeBatch(io.LimitReader(r, MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return b, nil
}

// BuildURL appends key=value to raw, starting the query string when raw has
// none. Both key and value are escaped.
func BuildURL(raw, key, value string) string {
	sep := "&"
	if !strings.Contains(raw, "?") {
		sep = "?"
	} else if strings.HasSuffix(raw, "?") || strings.HasSuffix(raw, "&") {
		sep = ""
	}
	return raw + sep + escapeComponent(key) + "=" + escapeComponent(value)
}

func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
