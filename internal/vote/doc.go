// Package vote implements the on-chain vote action: deriving the vote
// accounts of a token, reading their state, gating the action and building
// and submitting the vote transaction.
//
// The vote program is not deployed; DefaultProgramID is a placeholder and
// the default Signer refuses to sign. Both are meant to be replaced by a real
// program id and wallet integration.
package vote
