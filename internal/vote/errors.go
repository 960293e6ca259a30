package vote

import "errors"

var (
	// ErrWalletNotConnected is returned when voting without a wallet.
	ErrWalletNotConnected = errors.New("wallet not connected")

	// ErrAlreadyVoted is returned when the wallet has already voted for the
	// selected contract.
	ErrAlreadyVoted = errors.New("already voted")

	// ErrNoContract is returned when voting before a contract is selected.
	ErrNoContract = errors.New("no contract selected")

	// ErrSignerUnavailable is returned by UnavailableSigner.
	ErrSignerUnavailable = errors.New("wallet not connected for signing")
)
