// Package solana adapts github.com/gagliardetto/solana-go to the needs of the
// vote widget: address parsing, vote transaction building and an RPC client
// that routes through a caller supplied HTTP client and confirms over a
// websocket subscription.
package solana
