// Package dexscreener looks tokens up on the public DexScreener API.
//
// Responses are cached by token address for a short TTL so that repeated
// searches do not hit the API. The first trading pair of a response is what
// gets rendered.
package dexscreener
