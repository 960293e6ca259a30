package solana

import (
	"fmt"
	"strings"

	sol "github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// PublicKeyLength is the size of an account address.
const PublicKeyLength = sol.PublicKeyLength

type (
	// PublicKey is a Solana account address.
	PublicKey = sol.PublicKey

	// Hash is a recent blockhash.
	Hash = sol.Hash

	// Signature is a transaction signature. The first signature of a
	// transaction doubles as its id.
	Signature = sol.Signature
)

// SystemProgramID is the address of the native system program.
var SystemProgramID = sol.SystemProgramID

// ParsePublicKey decodes a base58 account address. Surrounding whitespace is
// ignored.
func ParsePublicKey(s string) (PublicKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PublicKey{}, ErrEmptyKey
	}
	b, err := base58.Decode(s)
	if err != nil {
		return PublicKey{}, fmt.Errorf("invalid base58 %q: %w", s, err)
	}
	if len(b) != PublicKeyLength {
		return PublicKey{}, fmt.Errorf("%w: got %d bytes", ErrInvalidKeyLength, len(b))
	}
	return sol.PublicKeyFromBytes(b), nil
}

// MustParsePublicKey is like ParsePublicKey but panics on error. Intended
// for package level values.
func MustParsePublicKey(s string) PublicKey {
	pk, err := ParsePublicKey(s)
	if err != nil {
		panic(err)
	}
	return pk
}
