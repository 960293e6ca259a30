// Package widget holds the state of the token search and vote widget and
// the operations the user can trigger on it. It has no presentation of its
// own; the TUI and the CLI commands drive a Controller and display its
// State.
package widget

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/dexvote/internal/dexscreener"
	"github.com/dgnsrekt/dexvote/internal/solana"
	"github.com/dgnsrekt/dexvote/internal/vote"
)

// Messages shown to the user.
const (
	AlertEnterAddress   = "Enter a valid address"
	AlertConnectWallet  = "Connect wallet"
	AlertAlreadyVoted   = "Already voted"
	AlertSelectContract = "Select a contract"
	AlertVoteFailed     = "Vote failed"

	InvalidAddressMessage = "Invalid address or no data"

	LabelVote         = "Vote"
	LabelAlreadyVoted = "Already Voted"
)

// Lookup fetches token data. A nil result means no data.
type Lookup interface {
	Lookup(ctx context.Context, address string) *dexscreener.Result
}

// Votes reads and submits votes.
type Votes interface {
	Status(ctx context.Context, voter, contract solana.PublicKey) (vote.Status, error)
	Submit(ctx context.Context, voter, contract solana.PublicKey) (solana.Signature, error)
}

// Button is the state of the vote button.
type Button struct {
	Label    string
	Disabled bool
}

// State is everything the widget displays.
type State struct {
	Wallet   solana.PublicKey
	Selected solana.PublicKey

	HasWallet   bool
	HasSelected bool
	HasVoted    bool
	VoteCount   uint64

	// Result is the last lookup; nil when it failed or nothing was searched.
	Result *dexscreener.Result
	// Panel holds the lines of the result panel. An empty panel is hidden.
	Panel []string

	Button Button
}

// CountLabel returns the vote count label.
func (s State) CountLabel() string {
	return fmt.Sprintf("Total Votes: %d", s.VoteCount)
}

// Gate returns the vote preconditions.
func (s State) Gate() vote.Gate {
	return vote.Gate{
		WalletConnected:  s.HasWallet,
		ContractSelected: s.HasSelected,
		HasVoted:         s.HasVoted,
	}
}

// Outcome is the result of a user action.
type Outcome struct {
	// Alert is a message that must be shown to the user, if any.
	Alert string
	// Signature is set after a successful vote.
	Signature solana.Signature
	// Err is the underlying failure, if any.
	Err error
}

// Controller drives the widget.
type Controller struct {
	lookup Lookup
	votes  Votes
	state  State
}

// Option configures a Controller.
type Option func(*Controller)

// WithWallet starts the controller with a connected wallet.
func WithWallet(pk solana.PublicKey) Option {
	return func(c *Controller) {
		c.state.Wallet = pk
		c.state.HasWallet = true
	}
}

// New returns a controller with no selection and a disabled vote button.
func New(lookup Lookup, votes Votes, opts ...Option) *Controller {
	c := &Controller{
		lookup: lookup,
		votes:  votes,
		state: State{
			Button: Button{Label: LabelVote, Disabled: true},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	s := c.state
	s.Panel = append([]string(nil), c.state.Panel...)
	return s
}

// ConnectWallet sets the voting wallet.
func (c *Controller) ConnectWallet(pk solana.PublicKey) {
	c.state.Wallet = pk
	c.state.HasWallet = true
}

// DisconnectWallet clears the voting wallet and disables the button.
func (c *Controller) DisconnectWallet() {
	c.state.Wallet = solana.PublicKey{}
	c.state.HasWallet = false
	c.state.Button.Disabled = true
	c.state.VoteCount = 0
}

// Search validates input, looks the token up, fills the panel and refreshes
// the vote status.
func (c *Controller) Search(ctx context.Context, input string) Outcome {
	address := strings.TrimSpace(input)
	if address == "" {
		return Outcome{Alert: AlertEnterAddress}
	}

	contract, err := solana.ParsePublicKey(address)
	if err != nil {
		log.Error("Search error", "address", address, "err", err)
		c.invalidate()
		return Outcome{Err: err}
	}

	c.state.Selected = contract
	c.state.HasSelected = true
	log.Debug("Searching for token", "address", address)

	c.state.Result = c.lookup.Lookup(ctx, address)
	c.state.Panel = dexscreener.Lines(c.state.Result)

	if err := c.RefreshVoteStatus(ctx); err != nil {
		log.Error("Search error", "address", address, "err", err)
		c.invalidate()
		return Outcome{Err: err}
	}
	return Outcome{}
}

// invalidate shows the invalid address panel and deselects the contract.
func (c *Controller) invalidate() {
	c.state.Selected = solana.PublicKey{}
	c.state.HasSelected = false
	c.state.HasVoted = false
	c.state.Result = nil
	c.state.Panel = []string{InvalidAddressMessage}
	c.state.Button.Disabled = true
	c.state.VoteCount = 0
}

// RefreshVoteStatus reloads whether the wallet has voted for the selected
// contract and the vote count.
func (c *Controller) RefreshVoteStatus(ctx context.Context) error {
	if !c.state.HasWallet || !c.state.HasSelected {
		c.state.HasVoted = false
		c.state.Button.Disabled = true
		c.state.VoteCount = 0
		return nil
	}

	st, err := c.votes.Status(ctx, c.state.Wallet, c.state.Selected)
	if err != nil {
		return err
	}

	c.state.HasVoted = st.HasVoted
	c.state.Button.Disabled = st.HasVoted
	if st.HasVoted {
		c.state.Button.Label = LabelAlreadyVoted
	} else {
		c.state.Button.Label = LabelVote
	}
	c.state.VoteCount = st.Count
	return nil
}

// Vote submits a vote for the selected contract. Unmet preconditions are
// reported as alerts without touching the network.
func (c *Controller) Vote(ctx context.Context) Outcome {
	if err := c.state.Gate().Check(); err != nil {
		return Outcome{Alert: GateAlert(err), Err: err}
	}

	sig, err := c.votes.Submit(ctx, c.state.Wallet, c.state.Selected)
	if err != nil {
		log.Error("Vote error", "err", err)
		return Outcome{Alert: AlertVoteFailed, Err: err}
	}

	if err := c.RefreshVoteStatus(ctx); err != nil {
		log.Error("Unable to refresh vote status", "err", err)
	}
	return Outcome{Alert: "Vote success: " + sig.String(), Signature: sig}
}

// GateAlert returns the alert for an unmet vote precondition.
func GateAlert(err error) string {
	switch {
	case errors.Is(err, vote.ErrWalletNotConnected):
		return AlertConnectWallet
	case errors.Is(err, vote.ErrAlreadyVoted):
		return AlertAlreadyVoted
	case errors.Is(err, vote.ErrNoContract):
		return AlertSelectContract
	}
	return ""
}
