package vote

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/dexvote/internal/solana"
)

// Chain is the subset of the RPC client used by Service.
type Chain interface {
	GetAccountInfo(ctx context.Context, pk solana.PublicKey) (*solana.AccountInfo, error)
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
	SendRawTransaction(ctx context.Context, raw []byte) (solana.Signature, error)
	ConfirmTransaction(ctx context.Context, sig solana.Signature) error
}

// Status is the vote state of a wallet for a contract.
type Status struct {
	HasVoted bool
	Count    uint64
}

// Service reads vote state and submits votes.
type Service struct {
	chain   Chain
	signer  Signer
	program solana.PublicKey
}

// Option configures a Service.
type Option func(*Service)

// WithProgramID sets the vote program.
func WithProgramID(program solana.PublicKey) Option {
	return func(s *Service) { s.program = program }
}

// WithSigner sets the transaction signer.
func WithSigner(signer Signer) Option {
	return func(s *Service) { s.signer = signer }
}

// NewService returns a Service backed by chain. Without WithSigner every
// submission fails with ErrSignerUnavailable.
func NewService(chain Chain, opts ...Option) *Service {
	s := &Service{
		chain:   chain,
		signer:  UnavailableSigner{},
		program: DefaultProgramID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProgramID returns the vote program.
func (s *Service) ProgramID() solana.PublicKey {
	return s.program
}

// HasVoted reports whether voter has voted for contract, i.e. whether the
// voted account exists.
func (s *Service) HasVoted(ctx context.Context, voter, contract solana.PublicKey) (bool, error) {
	addr, err := VotedAddress(s.program, voter, contract)
	if err != nil {
		return false, err
	}
	info, err := s.chain.GetAccountInfo(ctx, addr)
	if err != nil {
		return false, fmt.Errorf("unable to read voted account: %w", err)
	}
	return info != nil, nil
}

// Count returns the number of votes for contract.
func (s *Service) Count(ctx context.Context, contract solana.PublicKey) (uint64, error) {
	addr, err := VoteCountAddress(s.program, contract)
	if err != nil {
		return 0, err
	}
	info, err := s.chain.GetAccountInfo(ctx, addr)
	if err != nil {
		return 0, fmt.Errorf("unable to read vote count: %w", err)
	}
	return DecodeCount(info), nil
}

// Status returns whether voter has voted for contract and the tally.
func (s *Service) Status(ctx context.Context, voter, contract solana.PublicKey) (Status, error) {
	voted, err := s.HasVoted(ctx, voter, contract)
	if err != nil {
		return Status{}, err
	}
	count, err := s.Count(ctx, contract)
	if err != nil {
		return Status{}, err
	}
	return Status{HasVoted: voted, Count: count}, nil
}

// Submit builds the vote transaction, signs it, sends it and waits for
// confirmation. It returns the transaction signature.
func (s *Service) Submit(ctx context.Context, voter, contract solana.PublicKey) (solana.Signature, error) {
	blockhash, err := s.chain.GetLatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("unable to fetch blockhash: %w", err)
	}

	tx, err := NewTransaction(s.program, voter, contract, blockhash)
	if err != nil {
		return solana.Signature{}, err
	}

	raw, err := s.signer.SignTransaction(ctx, tx)
	if err != nil {
		log.Error("Sign error", "err", err)
		return solana.Signature{}, fmt.Errorf("unable to sign vote: %w", err)
	}

	sig, err := s.chain.SendRawTransaction(ctx, raw)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("unable to send vote: %w", err)
	}
	log.Debug("Vote sent", "signature", sig, "contract", contract)

	if err := s.chain.ConfirmTransaction(ctx, sig); err != nil {
		return sig, fmt.Errorf("vote %s not confirmed: %w", sig, err)
	}
	return sig, nil
}
