package main

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	homedir "github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/dexvote/internal/cache"
	"github.com/dgnsrekt/dexvote/internal/dexscreener"
	"github.com/dgnsrekt/dexvote/internal/rewrite"
	"github.com/dgnsrekt/dexvote/internal/solana"
	"github.com/dgnsrekt/dexvote/internal/vote"
	"github.com/dgnsrekt/dexvote/internal/widget"
)

// app holds the clients shared by all commands.
type app struct {
	cache *cache.CacheManager
	api   *dexscreener.Client
	rpc   *solana.Client
	votes *vote.Service

	wallet    solana.PublicKey
	hasWallet bool
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	p, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return p
}

func cacheDir() (string, error) {
	if dir := viper.GetString("cache.dir"); dir != "" {
		return expandPath(dir), nil
	}
	dir, err := gap.NewScope(gap.User, "dexvote").CacheDir()
	if err != nil {
		return "", fmt.Errorf("unable to find cache directory: %w", err)
	}
	return filepath.Join(dir, "tokens"), nil
}

func rewriteRules() []rewrite.Rule {
	if !viper.IsSet("rewrite") {
		return rewrite.DefaultRules
	}
	var rules []rewrite.Rule
	if err := viper.UnmarshalKey("rewrite", &rules); err != nil {
		log.Warn("Ignoring invalid rewrite rules", "err", err)
		return rewrite.DefaultRules
	}
	return rules
}

func newCache() (*cache.CacheManager, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, err
	}
	cfg := cache.DefaultCacheConfig()
	cfg.DiskPath = dir
	cfg.TTL = viper.GetDuration("cache.ttl")
	if n := viper.GetInt64("cache.memory_size"); n > 0 {
		cfg.MemoryCapacity = n
	}
	cfg.CompressionLevel = viper.GetInt("cache.compression_level")

	cm, err := cache.NewCacheManager(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to open cache: %w", err)
	}
	return cm, nil
}

func newApp() (*app, error) {
	cm, err := newCache()
	if err != nil {
		return nil, err
	}
	rules := rewriteRules()

	apiHTTP := rewrite.Wrap(&http.Client{Timeout: viper.GetDuration("api.timeout")}, rules)
	api := dexscreener.NewClient(
		dexscreener.WithBaseURL(viper.GetString("api.base")),
		dexscreener.WithHTTPClient(apiHTTP),
		dexscreener.WithStore(cm),
		dexscreener.WithRateLimit(viper.GetFloat64("api.rate_limit"), 1),
	)

	rpcHTTP := rewrite.Wrap(&http.Client{Timeout: viper.GetDuration("rpc.timeout")}, rules)
	rpcOpts := []solana.Option{
		solana.WithHTTPClient(rpcHTTP),
		solana.WithCommitment(solana.Commitment(viper.GetString("rpc.commitment"))),
		solana.WithRateLimit(viper.GetFloat64("rpc.rate_limit"), 1),
	}
	if ws := viper.GetString("rpc.ws_endpoint"); ws != "" {
		rpcOpts = append(rpcOpts, solana.WithWebsocket(ws))
	}
	rpc := solana.NewClient(viper.GetString("rpc.endpoint"), rpcOpts...)

	program := vote.DefaultProgramID
	if id := viper.GetString("program_id"); id != "" {
		program, err = solana.ParsePublicKey(id)
		if err != nil {
			_ = cm.Close()
			return nil, fmt.Errorf("invalid program_id: %w", err)
		}
	}

	a := &app{
		cache: cm,
		api:   api,
		rpc:   rpc,
		votes: vote.NewService(rpc, vote.WithProgramID(program)),
	}

	if w := strings.TrimSpace(viper.GetString("wallet")); w != "" {
		pk, err := solana.ParsePublicKey(w)
		if err != nil {
			_ = cm.Close()
			return nil, fmt.Errorf("invalid wallet: %w", err)
		}
		a.wallet, a.hasWallet = pk, true
	}

	log.Debug("Initialized clients",
		"api", viper.GetString("api.base"),
		"rpc", viper.GetString("rpc.endpoint"),
		"program", program,
		"cache", cm.TTL(),
		"rewrite_rules", len(rules),
	)
	return a, nil
}

// controller returns a widget controller wired to the app's clients.
func (a *app) controller() *widget.Controller {
	var opts []widget.Option
	if a.hasWallet {
		opts = append(opts, widget.WithWallet(a.wallet))
	}
	return widget.New(a.api, a.votes, opts...)
}

func (a *app) Close() error {
	st := a.cache.Stats()
	log.Debug("Cache usage", "hits", st.TotalHits, "misses", st.TotalMisses,
		"expired", st.Expired, "l1_hits", st.L1Hits, "l2_hits", st.L2Hits)
	return a.cache.Close()
}
