package solana

import (
	"fmt"

	sol "github.com/gagliardetto/solana-go"
)

type (
	// Transaction is a legacy Solana transaction.
	Transaction = sol.Transaction

	// Instruction is a single program invocation.
	Instruction = sol.Instruction

	// AccountMeta describes how an instruction uses an account.
	AccountMeta = sol.AccountMeta
)

// FindProgramAddress returns the canonical program-derived address for seeds
// and its bump seed.
func FindProgramAddress(seeds [][]byte, program PublicKey) (PublicKey, uint8, error) {
	return sol.FindProgramAddress(seeds, program)
}

// NewAccountMeta describes an account used by an instruction.
func NewAccountMeta(pk PublicKey, writable, signer bool) *AccountMeta {
	return sol.NewAccountMeta(pk, writable, signer)
}

// NewInstruction returns an instruction for program with the given accounts
// and data.
func NewInstruction(program PublicKey, accounts []*AccountMeta, data []byte) Instruction {
	return sol.NewInstruction(program, accounts, data)
}

// NewTransaction compiles ixs into an unsigned transaction paid for by payer.
func NewTransaction(payer PublicKey, ixs []Instruction, blockhash Hash) (*Transaction, error) {
	if payer.IsZero() {
		return nil, ErrNoFeePayer
	}
	tx, err := sol.NewTransaction(ixs, blockhash, sol.TransactionPayer(payer))
	if err != nil {
		return nil, fmt.Errorf("unable to build transaction: %w", err)
	}
	return tx, nil
}
