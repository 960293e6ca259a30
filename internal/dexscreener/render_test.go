package dexscreener

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustParse(t *testing.T, body string) *Result {
	t.Helper()
	res, err := ParseResponse(usdcMint, []byte(body))
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	return res
}

func TestRender_USDCPair(t *testing.T) {
	got := Lines(mustParse(t, usdcSOL))
	want := []string{
		"USDC / SOL",
		"Price USD: $1.00",
		"Liquidity USD: $1234567.5",
		"FDV: $N/A",
		"24h Volume: $98765",
		"24h Price Change: -0.12%",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_NoData(t *testing.T) {
	for _, body := range []string{
		`{"pairs":[]}`,
		`{"pairs":null}`,
		`{}`,
	} {
		if got := Render(mustParse(t, body)); got != NoDataMessage {
			t.Errorf("Render(%s) = %q", body, got)
		}
	}

	if got := Render(nil); got != NoDataMessage {
		t.Errorf("Render(nil) = %q", got)
	}
}

func TestRender_Placeholders(t *testing.T) {
	res := mustParse(t, `{"pairs":[{"baseToken":{"symbol":"BONK"},"quoteToken":{"symbol":"SOL"},`+
		`"priceUsd":null,"liquidity":{},"fdv":"","priceChange":{"h24":0}}]}`)

	want := []string{
		"BONK / SOL",
		"Price USD: $N/A",
		"Liquidity USD: $N/A",
		"FDV: $N/A",
		"24h Volume: $N/A",
		"24h Price Change: 0%",
	}
	if diff := cmp.Diff(want, Lines(res)); diff != "" {
		t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_StringZeroIsKept(t *testing.T) {
	res := mustParse(t, `{"pairs":[{"baseToken":{"symbol":"A"},"quoteToken":{"symbol":"B"},"priceUsd":"0"}]}`)
	if got := Lines(res)[1]; got != "Price USD: $0" {
		t.Errorf("price line = %q", got)
	}
}

func TestRender_FirstPairOnly(t *testing.T) {
	res := mustParse(t, `{"pairs":[`+
		`{"baseToken":{"symbol":"A"},"quoteToken":{"symbol":"B"},"priceUsd":"2"},`+
		`{"baseToken":{"symbol":"C"},"quoteToken":{"symbol":"D"},"priceUsd":"3"}]}`)
	if len(res.Pairs) != 2 {
		t.Fatalf("parsed %d pairs, want 2", len(res.Pairs))
	}
	if got := Render(res); !strings.HasPrefix(got, "A / B\nPrice USD: $2\n") {
		t.Errorf("Render() = %q", got)
	}
}

func TestRender_MissingSymbols(t *testing.T) {
	res := mustParse(t, `{"pairs":[{}]}`)
	if got := Lines(res)[0]; got != "N/A / N/A" {
		t.Errorf("title = %q", got)
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(mustParse(t, `{"pairs":[{"dexId":"raydium","url":"https://dexscreener.com/solana/x",`+
		`"baseToken":{"symbol":"USDC"},"quoteToken":{"symbol":"SOL"},"priceUsd":"1.00"}]}`))

	for _, want := range []string{
		"## USDC / SOL\n",
		"Price USD: $1.00\n",
		"[raydium](https://dexscreener.com/solana/x)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown() missing %q:\n%s", want, md)
		}
	}

	if got := Markdown(nil); !strings.HasPrefix(got, "No data available.") {
		t.Errorf("Markdown(nil) = %q", got)
	}
}
