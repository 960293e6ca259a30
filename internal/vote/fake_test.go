package vote

import (
	"context"
	"encoding/binary"
	"errors"

	"github.com/dgnsrekt/dexvote/internal/solana"
)

type fakeChain struct {
	accounts  map[solana.PublicKey]*solana.AccountInfo
	blockhash solana.Hash
	sendSig   solana.Signature

	accountErr error
	sendErr    error
	confirmErr error

	lookups   int
	sent      [][]byte
	confirmed []solana.Signature
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		accounts:  map[solana.PublicKey]*solana.AccountInfo{},
		blockhash: solana.Hash{9, 9, 9},
		sendSig:   solana.Signature{7},
	}
}

func (c *fakeChain) GetAccountInfo(_ context.Context, pk solana.PublicKey) (*solana.AccountInfo, error) {
	c.lookups++
	if c.accountErr != nil {
		return nil, c.accountErr
	}
	return c.accounts[pk], nil
}

func (c *fakeChain) GetLatestBlockhash(context.Context) (solana.Hash, error) {
	return c.blockhash, nil
}

func (c *fakeChain) SendRawTransaction(_ context.Context, raw []byte) (solana.Signature, error) {
	if c.sendErr != nil {
		return solana.Signature{}, c.sendErr
	}
	c.sent = append(c.sent, raw)
	return c.sendSig, nil
}

func (c *fakeChain) ConfirmTransaction(_ context.Context, sig solana.Signature) error {
	c.confirmed = append(c.confirmed, sig)
	return c.confirmErr
}

// setCount stores a tally account for contract.
func (c *fakeChain) setCount(program, contract solana.PublicKey, n uint64) {
	addr, err := VoteCountAddress(program, contract)
	if err != nil {
		panic(err)
	}
	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, n)
	c.accounts[addr] = &solana.AccountInfo{Data: data}
}

// setVoted records that voter has voted for contract.
func (c *fakeChain) setVoted(program, voter, contract solana.PublicKey) {
	addr, err := VotedAddress(program, voter, contract)
	if err != nil {
		panic(err)
	}
	c.accounts[addr] = &solana.AccountInfo{}
}

// fakeSigner attaches a fixed signature.
type fakeSigner struct {
	signed *solana.Transaction
}

func (s *fakeSigner) SignTransaction(_ context.Context, tx *solana.Transaction) ([]byte, error) {
	tx.Signatures = []solana.Signature{{1, 2, 3}}
	s.signed = tx
	return tx.MarshalBinary()
}

var errBoom = errors.New("boom")
