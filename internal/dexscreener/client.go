package dexscreener

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/dexvote/internal/cache"
)

// DefaultBaseURL is the token endpoint. The chain is inferred from the
// address.
const DefaultBaseURL = "https://api.dexscreener.com/latest/dex/tokens"

// Store is the subset of the cache the client needs.
type Store interface {
	Load(key string) (cache.Record, bool)
	Store(key string, data []byte) (cache.Record, error)
}

// Client fetches token data, consulting the cache first.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      Store
	limiter    *rate.Limiter
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithStore enables caching.
func WithStore(s Store) Option {
	return func(c *Client) { c.store = s }
}

// WithRateLimit caps API requests per second. Cache hits are not limited.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithClock sets the time source used to stamp uncached results.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient returns a client with the given options applied.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup returns token data for address, or nil if it could not be fetched.
// Failures are logged.
func (c *Client) Lookup(ctx context.Context, address string) *Result {
	res, err := c.Fetch(ctx, address)
	if err != nil {
		log.Error("API error", "address", address, "err", err)
		return nil
	}
	return res
}

// Fetch returns token data for address. A fresh cached payload is returned
// without a request; otherwise the API is called once and a successful
// response is cached.
func (c *Client) Fetch(ctx context.Context, address string) (*Result, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrEmptyAddress
	}
	key := cache.Key(address)

	if c.store != nil {
		if rec, ok := c.store.Load(key); ok {
			res, err := ParseResponse(address, rec.Data)
			if err == nil {
				log.Debug("Using cached data", "address", address)
				res.Cached = true
				res.Fetched = rec.Time()
				return res, nil
			}
			log.Warn("Ignoring unreadable cache record", "address", address, "err", err)
		}
	}

	raw, err := c.get(ctx, address)
	if err != nil {
		return nil, err
	}
	res, err := ParseResponse(address, raw)
	if err != nil {
		return nil, err
	}
	res.Fetched = c.now()

	if !res.HasPairs() {
		log.Warn("No pairs found for token; it may not be indexed on DexScreener yet",
			"address", address)
	}

	if c.store != nil {
		rec, err := c.store.Store(key, raw)
		if err != nil {
			log.Warn("Unable to cache response", "address", address, "err", err)
		} else {
			res.Fetched = rec.Time()
		}
	}
	return res, nil
}

// URL returns the endpoint queried for address.
func (c *Client) URL(address string) string {
	return c.baseURL + "/" + address
}

func (c *Client) get(ctx context.Context, address string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	u := c.URL(address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	log.Debug("Fetching from API", "url", u)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read response: %w", err)
	}
	log.Debug("API response", "address", address, "bytes", len(raw))
	return raw, nil
}
