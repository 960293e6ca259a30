package solana

import "errors"

var (
	// ErrInvalidKeyLength is returned when a decoded key is not 32 bytes.
	ErrInvalidKeyLength = errors.New("invalid public key length")

	// ErrEmptyKey is returned when parsing an empty string.
	ErrEmptyKey = errors.New("empty public key")

	// ErrNoFeePayer is returned when a transaction is built without a payer.
	ErrNoFeePayer = errors.New("transaction has no fee payer")

	// ErrTransactionFailed is returned when a submitted transaction was
	// processed with an error.
	ErrTransactionFailed = errors.New("transaction failed")
)
