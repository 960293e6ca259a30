package dexscreener

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dgnsrekt/dexvote/internal/cache"
	"github.com/dgnsrekt/dexvote/internal/rewrite"
)

const usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

const usdcSOL = `{"schemaVersion":"1.0.0","pairs":[{"chainId":"solana","dexId":"raydium",` +
	`"baseToken":{"symbol":"USDC"},"quoteToken":{"symbol":"SOL"},"priceUsd":"1.00",` +
	`"liquidity":{"usd":1234567.5},"fdv":0,"volume":{"h24":98765},"priceChange":{"h24":-0.12}}]}`

type apiServer struct {
	*httptest.Server
	calls atomic.Int32
	paths chan string
}

func newAPIServer(t *testing.T, status int, body string) *apiServer {
	t.Helper()
	s := &apiServer{paths: make(chan string, 16)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		s.paths <- r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body)) //nolint:errcheck
	}))
	t.Cleanup(s.Close)
	return s
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time          { return c.now }
func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestCache(t *testing.T) (*cache.CacheManager, *clock) {
	t.Helper()
	cfg := cache.DefaultCacheConfig()
	cfg.DiskPath = t.TempDir()
	cfg.TTL = time.Minute
	cm, err := cache.NewCacheManager(cfg)
	if err != nil {
		t.Fatalf("NewCacheManager: %v", err)
	}
	t.Cleanup(func() { cm.Close() })

	clk := &clock{now: time.UnixMilli(1700000000000)}
	cm.SetClock(clk.Now)
	return cm, clk
}

func TestFetch_CacheHitSkipsNetwork(t *testing.T) {
	srv := newAPIServer(t, http.StatusOK, usdcSOL)
	store, clk := newTestCache(t)
	c := NewClient(WithBaseURL(srv.URL+"/tokens"), WithStore(store), WithClock(clk.Now))

	first, err := c.Fetch(context.Background(), usdcMint)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if first.Cached {
		t.Error("first fetch should not be served from cache")
	}
	if got := <-srv.paths; got != "/tokens/"+usdcMint {
		t.Errorf("request path = %q", got)
	}

	clk.Advance(59 * time.Second)
	second, err := c.Fetch(context.Background(), usdcMint)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !second.Cached {
		t.Error("second fetch should be served from cache")
	}
	if n := srv.calls.Load(); n != 1 {
		t.Errorf("API called %d times, want 1", n)
	}
	if !second.Fetched.Equal(clk.now.Add(-59 * time.Second)) {
		t.Errorf("Fetched = %v, want time of first request", second.Fetched)
	}
}

func TestFetch_ExpiredEntryTriggersOneCall(t *testing.T) {
	srv := newAPIServer(t, http.StatusOK, usdcSOL)
	store, clk := newTestCache(t)
	c := NewClient(WithBaseURL(srv.URL), WithStore(store))

	c.Fetch(context.Background(), usdcMint)
	clk.Advance(time.Minute)

	res, err := c.Fetch(context.Background(), usdcMint)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.Cached {
		t.Error("expired entry must not be served")
	}
	if n := srv.calls.Load(); n != 2 {
		t.Errorf("API called %d times, want 2", n)
	}

	rec, ok := store.Load(cache.Key(usdcMint))
	if !ok || rec.Timestamp != clk.now.UnixMilli() {
		t.Errorf("cache not refreshed: %+v %v", rec, ok)
	}
}

func TestFetch_APIErrorIsNotCached(t *testing.T) {
	srv := newAPIServer(t, http.StatusTooManyRequests, `{"error":"slow down"}`)
	store, _ := newTestCache(t)
	c := NewClient(WithBaseURL(srv.URL), WithStore(store))

	_, err := c.Fetch(context.Background(), usdcMint)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected APIError 429, got %v", err)
	}
	if _, ok := store.Load(cache.Key(usdcMint)); ok {
		t.Error("failed response must not be cached")
	}

	if res := c.Lookup(context.Background(), usdcMint); res != nil {
		t.Errorf("Lookup should return an empty result on failure, got %+v", res)
	}
	if n := srv.calls.Load(); n != 2 {
		t.Errorf("API called %d times, want 2", n)
	}
}

func TestFetch_NotFound(t *testing.T) {
	srv := newAPIServer(t, http.StatusNotFound, ``)
	c := NewClient(WithBaseURL(srv.URL))

	_, err := c.Fetch(context.Background(), usdcMint)
	if !IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestFetch_NoPairsIsCached(t *testing.T) {
	srv := newAPIServer(t, http.StatusOK, `{"schemaVersion":"1.0.0","pairs":null}`)
	store, _ := newTestCache(t)
	c := NewClient(WithBaseURL(srv.URL), WithStore(store))

	res, err := c.Fetch(context.Background(), usdcMint)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.HasPairs() {
		t.Error("expected no pairs")
	}
	if _, ok := store.Load(cache.Key(usdcMint)); !ok {
		t.Error("empty response should still be cached")
	}
}

func TestFetch_InvalidJSON(t *testing.T) {
	srv := newAPIServer(t, http.StatusOK, `<html>`)
	c := NewClient(WithBaseURL(srv.URL))

	if _, err := c.Fetch(context.Background(), usdcMint); !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestFetch_EmptyAddress(t *testing.T) {
	c := NewClient(WithBaseURL("http://127.0.0.1:0"))
	if _, err := c.Fetch(context.Background(), "   "); !errors.Is(err, ErrEmptyAddress) {
		t.Errorf("expected ErrEmptyAddress, got %v", err)
	}
}

func TestFetch_WithoutStore(t *testing.T) {
	srv := newAPIServer(t, http.StatusOK, usdcSOL)
	c := NewClient(WithBaseURL(srv.URL))

	c.Fetch(context.Background(), usdcMint)
	c.Fetch(context.Background(), usdcMint)
	if n := srv.calls.Load(); n != 2 {
		t.Errorf("API called %d times, want 2", n)
	}
}

func TestFetch_ThroughRewriteTransport(t *testing.T) {
	srv := newAPIServer(t, http.StatusOK, usdcSOL)
	hc := rewrite.Wrap(srv.Client(), []rewrite.Rule{{Match: "/old/", Replace: "/latest/dex/tokens/"}})
	c := NewClient(WithBaseURL(srv.URL+"/old"), WithHTTPClient(hc))

	if _, err := c.Fetch(context.Background(), usdcMint); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := <-srv.paths; got != "/latest/dex/tokens/"+usdcMint {
		t.Errorf("request path = %q", got)
	}
}

func TestFetch_ContextCanceled(t *testing.T) {
	srv := newAPIServer(t, http.StatusOK, usdcSOL)
	c := NewClient(WithBaseURL(srv.URL))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Fetch(ctx, usdcMint); err == nil || !strings.Contains(err.Error(), "context canceled") {
		t.Errorf("expected context error, got %v", err)
	}
}
