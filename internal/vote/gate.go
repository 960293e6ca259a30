package vote

// Gate holds the preconditions of the vote action.
type Gate struct {
	WalletConnected  bool
	ContractSelected bool
	HasVoted         bool
}

// Enabled reports whether the vote action is available.
func (g Gate) Enabled() bool {
	return g.Check() == nil
}

// Check returns the first unmet precondition, in the order the user is
// told about them.
func (g Gate) Check() error {
	switch {
	case !g.WalletConnected:
		return ErrWalletNotConnected
	case g.HasVoted:
		return ErrAlreadyVoted
	case !g.ContractSelected:
		return ErrNoContract
	}
	return nil
}
