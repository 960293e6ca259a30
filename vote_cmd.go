package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/dexvote/internal/solana"
	"github.com/dgnsrekt/dexvote/internal/widget"
)

var votesCmd = &cobra.Command{
	Use:     "votes ADDRESS",
	Short:   "Print the vote count of a token",
	Long:    paragraph(fmt.Sprintf("\nPrint the %s recorded for a token and whether the configured wallet voted for it.", keyword("vote count"))),
	Example: paragraph("dexvote votes EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v --wallet <ADDRESS>"),
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		contract, err := solana.ParsePublicKey(args[0])
		if err != nil {
			return fmt.Errorf("%s: %w", widget.InvalidAddressMessage, err)
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close() //nolint:errcheck

		ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("rpc.timeout"))
		defer cancel()

		n, err := a.votes.Count(ctx, contract)
		if err != nil {
			return fmt.Errorf("unable to read vote count: %w", err)
		}
		log.Debug("Read vote count", "program", a.votes.ProgramID(), "contract", contract, "count", n)
		fmt.Println(widget.State{VoteCount: n}.CountLabel())
		if show, _ := cmd.Flags().GetBool("program"); show {
			fmt.Println("Program " + a.votes.ProgramID().String())
		}

		if !a.hasWallet {
			return nil
		}
		voted, err := a.votes.HasVoted(ctx, a.wallet, contract)
		if err != nil {
			return fmt.Errorf("unable to read vote status: %w", err)
		}
		if voted {
			fmt.Println(widget.LabelAlreadyVoted)
		} else {
			fmt.Println("Not voted yet")
		}
		return nil
	},
}

var voteCmd = &cobra.Command{
	Use:     "vote ADDRESS",
	Short:   "Vote for a token",
	Long:    paragraph(fmt.Sprintf("\n%s for a token with the configured wallet. The wallet may vote once per token.", keyword("Vote"))),
	Example: paragraph("dexvote vote EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v --wallet <ADDRESS>"),
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close() //nolint:errcheck

		ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("rpc.timeout"))
		defer cancel()

		return castVote(ctx, a.controller(), args[0])
	},
}

// castVote selects address and votes for it, printing what the widget
// would show.
func castVote(ctx context.Context, ctrl *widget.Controller, address string) error {
	if out := ctrl.Search(ctx, address); out.Alert != "" || out.Err != nil {
		if out.Alert != "" {
			return errors.New(out.Alert)
		}
		return fmt.Errorf("%s: %w", widget.InvalidAddressMessage, out.Err)
	}

	st := ctrl.State()
	for _, line := range st.Panel {
		fmt.Println(line)
	}
	fmt.Println(st.CountLabel())

	out := ctrl.Vote(ctx)
	if out.Err != nil {
		fmt.Fprintln(os.Stderr, errorText(out.Alert))
		return out.Err
	}

	fmt.Println(keyword(out.Alert))
	fmt.Println(ctrl.State().CountLabel())
	return nil
}

func init() {
	votesCmd.Flags().Bool("program", false, "also print the vote program id")
}
