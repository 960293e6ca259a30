package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/dexvote/internal/dexscreener"
	"github.com/dgnsrekt/dexvote/internal/solana"
	"github.com/dgnsrekt/dexvote/internal/widget"
	"github.com/dgnsrekt/dexvote/ui"
)

var errNotIndexed = errors.New("token not indexed by DexScreener")

var (
	lookupPlain bool
	lookupRaw   bool

	lookupCmd = &cobra.Command{
		Use:     "lookup ADDRESS...",
		Short:   "Print token data for one or more addresses",
		Long:    paragraph(fmt.Sprintf("\n%s token data on DexScreener and print the first trading pair. Responses are cached for the duration set by cache.ttl.", keyword("Look up"))),
		Example: paragraph("dexvote lookup EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"),
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck

			var errs []error
			for _, arg := range args {
				if err := lookup(cmd.Context(), a.api, arg, os.Stdout); err != nil {
					fmt.Fprintln(os.Stderr, errorText(err.Error()))
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		},
	}
)

// lookup fetches address and writes its panel to w.
func lookup(ctx context.Context, api *dexscreener.Client, address string, w io.Writer) error {
	address = strings.TrimSpace(address)
	if _, err := solana.ParsePublicKey(address); err != nil {
		log.Error("Search error", "address", address, "err", err)
		return fmt.Errorf("%s: %s", widget.InvalidAddressMessage, address)
	}

	res, err := api.Fetch(ctx, address)
	if dexscreener.IsNotFound(err) {
		return fmt.Errorf("%s: %w", address, errNotIndexed)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", address, err)
	}

	switch {
	case lookupRaw:
		_, err = fmt.Fprintln(w, string(res.Raw))
	case lookupPlain:
		_, err = fmt.Fprintln(w, dexscreener.Render(res))
	default:
		var out string
		out, err = ui.RenderMarkdown(dexscreener.Markdown(res), style, int(width)) //nolint:gosec
		if err == nil {
			_, err = fmt.Fprint(w, out)
		}
	}
	if err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}
	return nil
}

func init() {
	lookupCmd.Flags().BoolVarP(&lookupPlain, "plain", "p", false, "print plain text instead of markdown")
	lookupCmd.Flags().BoolVar(&lookupRaw, "raw", false, "print the raw API response")
}
