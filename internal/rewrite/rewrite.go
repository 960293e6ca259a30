// Package rewrite rewrites outbound request URLs before they are sent.
//
// A Rule replaces the first occurrence of a literal substring with a fixed
// alternative. Rules are applied in order by Transport, an http.RoundTripper
// that wraps any other transport, so every client built by the application
// shares the same rewriting.
package rewrite

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
)

// Rule replaces Match with Replace in a request URL.
type Rule struct {
	Match   string `mapstructure:"match" yaml:"match"`
	Replace string `mapstructure:"replace" yaml:"replace"`
}

// DefaultRules are the rewrites the hosted widget relied on. Matches carry
// the leading slash so an absolute URL keeps a single-slash path.
var DefaultRules = []Rule{
	{Match: "/config.php", Replace: "/api/config.php"},
	{Match: "/secureproxy", Replace: "/api/secureproxy.php"},
}

// Apply returns u with the rule applied. A URL that already contains the
// replacement is left alone, so applying a rule twice changes nothing.
func (r Rule) Apply(u string) string {
	if r.Match == "" || !strings.Contains(u, r.Match) {
		return u
	}
	if r.Replace != "" && strings.Contains(u, r.Replace) {
		return u
	}
	return strings.Replace(u, r.Match, r.Replace, 1)
}

// Rewrite applies rules to u in order.
func Rewrite(u string, rules []Rule) string {
	for _, r := range rules {
		u = r.Apply(u)
	}
	return u
}

// Transport is an http.RoundTripper that rewrites request URLs.
type Transport struct {
	// Base is the underlying transport; nil means http.DefaultTransport.
	Base  http.RoundTripper
	Rules []Rule
}

// NewTransport wraps base with rules.
func NewTransport(base http.RoundTripper, rules []Rule) *Transport {
	return &Transport{Base: base, Rules: rules}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	orig := req.URL.String()
	rewritten := Rewrite(orig, t.Rules)
	if rewritten == orig {
		return base.RoundTrip(req)
	}

	u, err := url.Parse(rewritten)
	if err != nil {
		return nil, fmt.Errorf("rewritten url %q: %w", rewritten, err)
	}
	log.Debug("Rewriting request", "from", orig, "to", rewritten)

	// RoundTrippers must not modify the caller's request.
	out := req.Clone(req.Context())
	out.URL = u
	if req.Host != "" && req.Host == req.URL.Host {
		out.Host = u.Host
	}
	return base.RoundTrip(out)
}

// Wrap returns a copy of client whose transport rewrites with rules.
// A nil client is treated as http.DefaultClient.
func Wrap(client *http.Client, rules []Rule) *http.Client {
	if client == nil {
		client = http.DefaultClient
	}
	c := *client
	c.Transport = NewTransport(client.Transport, rules)
	return &c
}
