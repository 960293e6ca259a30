package dexscreener

import (
	"fmt"
	"strings"
)

// Placeholder stands in for a missing field.
const Placeholder = "N/A"

// NoDataMessage is shown when a response lists no pairs.
const NoDataMessage = "No data available. The token may not have active pairs on DexScreener. " +
	"Try a different address (e.g., USDC: EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v)."

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// Title returns the "BASE / QUOTE" heading of p.
func (p Pair) Title() string {
	return fmt.Sprintf("%s / %s", or(p.BaseSymbol, Placeholder), or(p.QuoteSymbol, Placeholder))
}

// Fields returns the labelled value lines of p.
func (p Pair) Fields() []string {
	return []string{
		"Price USD: $" + or(p.PriceUSD, Placeholder),
		"Liquidity USD: $" + or(p.LiquidityUSD, Placeholder),
		"FDV: $" + or(p.FDV, Placeholder),
		"24h Volume: $" + or(p.Volume24h, Placeholder),
		"24h Price Change: " + or(p.PriceChange24h, "0") + "%",
	}
}

// Lines returns the panel for r: the no-data message when there are no
// pairs, otherwise the title followed by the fields of the first pair.
func Lines(r *Result) []string {
	p, ok := r.First()
	if !ok {
		return []string{NoDataMessage}
	}
	return append([]string{p.Title()}, p.Fields()...)
}

// Render returns the panel for r as plain text.
func Render(r *Result) string {
	return strings.Join(Lines(r), "\n")
}

// Markdown returns the panel for r as a markdown document, suitable for
// glamour.
func Markdown(r *Result) string {
	p, ok := r.First()
	if !ok {
		return NoDataMessage + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", p.Title())
	for _, f := range p.Fields() {
		fmt.Fprintf(&b, "%s\n\n", f)
	}
	if p.URL != "" {
		fmt.Fprintf(&b, "[%s](%s)\n", or(p.DexID, "dexscreener"), p.URL)
	}
	return b.String()
}
