package vote

import (
	"context"

	"github.com/dgnsrekt/dexvote/internal/solana"
)

// Signer signs a vote transaction and returns its wire encoding.
type Signer interface {
	SignTransaction(ctx context.Context, tx *solana.Transaction) ([]byte, error)
}

// SignerFunc adapts a function to Signer.
type SignerFunc func(ctx context.Context, tx *solana.Transaction) ([]byte, error)

// SignTransaction calls f.
func (f SignerFunc) SignTransaction(ctx context.Context, tx *solana.Transaction) ([]byte, error) {
	return f(ctx, tx)
}

// UnavailableSigner is used until a wallet integration is provided. It
// always fails.
type UnavailableSigner struct{}

// SignTransaction implements Signer.
func (UnavailableSigner) SignTransaction(context.Context, *solana.Transaction) ([]byte, error) {
	return nil, ErrSignerUnavailable
}
