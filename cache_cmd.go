package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dgnsrekt/dexvote/internal/cache"
	"github.com/dgnsrekt/dexvote/internal/solana"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the token lookup cache",
	Args:  cobra.NoArgs,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached token lookups",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		cm, err := newCache()
		if err != nil {
			return err
		}
		defer cm.Close() //nolint:errcheck

		listCache(cm, os.Stdout)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [ADDRESS...]",
	Short: "Remove cached token lookups",
	Long:  paragraph("Remove the cached lookups for the given token addresses, or every cached lookup when no address is given."),
	RunE: func(_ *cobra.Command, args []string) error {
		cm, err := newCache()
		if err != nil {
			return err
		}
		defer cm.Close() //nolint:errcheck

		return clearCache(cm, args, os.Stdout)
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired token lookups",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		cm, err := newCache()
		if err != nil {
			return err
		}
		defer cm.Close() //nolint:errcheck

		n := cm.Prune()
		fmt.Fprintf(os.Stdout, "Removed %s.\n", humanize.Comma(int64(n))+" expired "+plural(n, "entry", "entries"))
		return nil
	},
}

func listCache(cm *cache.CacheManager, w io.Writer) {
	entries := cm.List()
	if len(entries) == 0 {
		fmt.Fprintln(w, "Cache is empty.")
		return
	}
	for _, e := range entries {
		state := "fresh"
		if !e.Fresh {
			state = "stale"
		}
		fmt.Fprintf(w, "%-44s  %-5s  %9s  %4d hits  %s\n",
			e.Address, state, humanize.Bytes(uint64(e.Size)), e.Hits, humanize.Time(e.Stored)) //nolint:gosec
	}

	stats := cm.Stats()
	fmt.Fprintf(w, "\n%s on disk, ttl %s\n",
		humanize.Comma(stats.L2.ItemCount)+" "+plural(int(stats.L2.ItemCount), "entry", "entries")+
			" ("+humanize.Bytes(uint64(stats.L2.Size))+")", //nolint:gosec
		cm.TTL())
}

func clearCache(cm *cache.CacheManager, addresses []string, w io.Writer) error {
	if len(addresses) == 0 {
		n := len(cm.List())
		if err := cm.Clear(); err != nil {
			return fmt.Errorf("unable to clear cache: %w", err)
		}
		fmt.Fprintf(w, "Removed %s.\n", humanize.Comma(int64(n))+" "+plural(n, "entry", "entries"))
		return nil
	}

	var errs []error
	for _, addr := range addresses {
		pk, err := solana.ParsePublicKey(addr)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", addr, err))
			continue
		}
		if err := cm.Delete(cache.Key(pk.String())); err != nil {
			errs = append(errs, fmt.Errorf("unable to remove %s: %w", pk, err))
			continue
		}
		fmt.Fprintf(w, "Removed %s.\n", pk)
	}
	return errors.Join(errs...)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func init() {
	cacheCmd.AddCommand(cacheListCmd, cacheClearCmd, cachePruneCmd)
}
