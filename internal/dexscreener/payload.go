package dexscreener

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/Jeffail/gabs/v2"
)

// Pair holds the fields of a trading pair that are shown to the user. An
// empty string means the API left the value out.
type Pair struct {
	ChainID     string
	DexID       string
	PairAddress string
	URL         string

	BaseSymbol  string
	QuoteSymbol string

	PriceUSD       string
	LiquidityUSD   string
	FDV            string
	Volume24h      string
	PriceChange24h string
}

// Result is a decoded API response.
type Result struct {
	Address string
	Raw     json.RawMessage
	Pairs   []Pair

	// Fetched is when the payload was retrieved from the API.
	Fetched time.Time
	// Cached is set when the payload came from the cache.
	Cached bool
}

// HasPairs reports whether the response lists at least one pair.
func (r *Result) HasPairs() bool {
	return r != nil && len(r.Pairs) > 0
}

// First returns the pair that gets rendered.
func (r *Result) First() (Pair, bool) {
	if !r.HasPairs() {
		return Pair{}, false
	}
	return r.Pairs[0], true
}

// ParseResponse decodes a raw API payload.
func ParseResponse(address string, raw []byte) (*Result, error) {
	doc, err := gabs.ParseJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	res := &Result{
		Address: address,
		Raw:     json.RawMessage(raw),
	}
	if arr, ok := doc.Search("pairs").Data().([]interface{}); ok {
		for i := range arr {
			res.Pairs = append(res.Pairs, parsePair(doc.S("pairs").Index(i)))
		}
	}
	return res, nil
}

func parsePair(c *gabs.Container) Pair {
	return Pair{
		ChainID:        value(c, "chainId"),
		DexID:          value(c, "dexId"),
		PairAddress:    value(c, "pairAddress"),
		URL:            value(c, "url"),
		BaseSymbol:     value(c, "baseToken", "symbol"),
		QuoteSymbol:    value(c, "quoteToken", "symbol"),
		PriceUSD:       value(c, "priceUsd"),
		LiquidityUSD:   value(c, "liquidity", "usd"),
		FDV:            value(c, "fdv"),
		Volume24h:      value(c, "volume", "h24"),
		PriceChange24h: value(c, "priceChange", "h24"),
	}
}

// value returns the display form of the field at path. Missing, null, empty
// strings, false and numeric zero all come back as "".
func value(c *gabs.Container, path ...string) string {
	if c == nil || !c.Exists(path...) {
		return ""
	}
	switch v := c.Search(path...).Data().(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if !v {
			return ""
		}
		return "true"
	case float64:
		if v == 0 || math.IsNaN(v) {
			return ""
		}
		return formatNumber(v)
	case json.Number:
		if f, err := v.Float64(); err == nil && f == 0 {
			return ""
		}
		return v.String()
	default:
		return c.Search(path...).String()
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
