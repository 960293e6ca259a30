package vote

import (
	"encoding/binary"
	"fmt"

	"github.com/dgnsrekt/dexvote/internal/solana"
)

// DefaultProgramID is the placeholder vote program.
var DefaultProgramID = solana.MustParsePublicKey("11111111111111111111111111111111")

// Seeds of the program-derived accounts.
const (
	VoteCountSeed = "vote_count"
	VotedSeed     = "voted"
)

// VoteCountAddress derives the account holding the vote tally of contract.
func VoteCountAddress(program, contract solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		[]byte(VoteCountSeed),
		contract.Bytes(),
	}, program)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("vote count address: %w", err)
	}
	return addr, nil
}

// VotedAddress derives the account whose existence records that voter has
// voted for contract.
func VotedAddress(program, voter, contract solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		[]byte(VotedSeed),
		voter.Bytes(),
		contract.Bytes(),
	}, program)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("voted address: %w", err)
	}
	return addr, nil
}

// DecodeCount reads a tally account. Only 8-byte accounts hold a count;
// anything else reads as zero.
func DecodeCount(info *solana.AccountInfo) uint64 {
	if info == nil || len(info.Data) != 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(info.Data)
}

// NewInstruction builds the vote instruction. Its data is the contract
// address.
func NewInstruction(program, voter, contract solana.PublicKey) (solana.Instruction, error) {
	voteCount, err := VoteCountAddress(program, contract)
	if err != nil {
		return nil, err
	}
	voted, err := VotedAddress(program, voter, contract)
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(program, []*solana.AccountMeta{
		solana.NewAccountMeta(voter, true, true),
		solana.NewAccountMeta(voteCount, true, false),
		solana.NewAccountMeta(voted, true, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}, contract.Bytes()), nil
}

// NewTransaction builds an unsigned vote transaction paid for by voter.
func NewTransaction(program, voter, contract solana.PublicKey, blockhash solana.Hash) (*solana.Transaction, error) {
	ix, err := NewInstruction(program, voter, contract)
	if err != nil {
		return nil, err
	}
	return solana.NewTransaction(voter, []solana.Instruction{ix}, blockhash)
}
