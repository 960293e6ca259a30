// Package main provides the entry point for the dexvote CLI application.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dgnsrekt/dexvote/internal/cache"
	"github.com/dgnsrekt/dexvote/internal/dexscreener"
	"github.com/dgnsrekt/dexvote/internal/solana"
	"github.com/dgnsrekt/dexvote/ui"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	style      string
	width      uint
	mouse      bool
	wallet     string
	rpcURL     string

	rootCmd = &cobra.Command{
		Use:   "dexvote [ADDRESS]",
		Short: "Look up Solana tokens and vote on them, from the terminal",
		Long: paragraph(
			fmt.Sprintf("\nLook up Solana tokens on DexScreener and %s on them.", keyword("vote")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

// validateStyle checks if the style is a default style, if not, checks that
// the custom style exists.
func validateStyle(style string) error {
	if style != styles.AutoStyle && styles.DefaultStyles[style] == nil {
		style = expandPath(style)
		if _, err := os.Stat(style); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("specified style does not exist: %s", style)
		} else if err != nil {
			return fmt.Errorf("unable to stat file: %w", err)
		}
	}
	return nil
}

func validateOptions(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("unable to read config file: %w", err)
		}
	}
	if viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}

	// grab config values from Viper
	width = viper.GetUint("width")
	mouse = viper.GetBool("mouse")

	// validate the glamour style
	style = viper.GetString("style")
	if err := validateStyle(style); err != nil {
		return err
	}

	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))
	// We want to use a special no-TTY style, when stdout is not a terminal
	// and there was no specific style passed by arg
	if !isTerminal && !cmd.Flags().Changed("style") {
		style = styles.NoTTYStyle
	}

	// Detect terminal width
	if !cmd.Flags().Changed("width") { //nolint:nestif
		if isTerminal && width == 0 {
			w, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err == nil {
				width = uint(w) //nolint:gosec
			}

			if width > 120 {
				width = 120
			}
		}
		if width == 0 {
			width = 80
		}
	}
	return nil
}

func execute(_ *cobra.Command, args []string) error {
	var address string
	if len(args) == 1 {
		address = strings.TrimSpace(args[0])
	}
	return runTUI(address)
}

func runTUI(address string) error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	// use style set in env, or the configured one if unset or invalid
	if cfg.GlamourStyle == "" || validateStyle(cfg.GlamourStyle) != nil {
		cfg.GlamourStyle = style
	}
	cfg.GlamourMaxWidth = width
	cfg.EnableMouse = mouse
	cfg.Address = address
	cfg.Timeout = max(viper.GetDuration("api.timeout"), viper.GetDuration("rpc.timeout"))

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	p := ui.NewProgram(cfg, a.controller(), a.cache)

	if viper.ConfigFileUsed() != "" {
		current := viper.GetString("wallet")
		viper.OnConfigChange(func(e fsnotify.Event) {
			w := strings.TrimSpace(viper.GetString("wallet"))
			if w == current {
				return
			}
			current = w
			log.Info("Wallet changed in configuration", "path", e.Name, "wallet", w)
			p.Send(ui.WalletMsg{Address: w})
		})
		viper.WatchConfig()
	}

	// Run Bubble Tea program
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().StringVarP(&style, "style", "s", styles.AutoStyle, "style name or JSON path")
	rootCmd.PersistentFlags().UintVarP(&width, "width", "w", 0, "word-wrap at width (set to 0 to detect)")
	rootCmd.PersistentFlags().StringVar(&wallet, "wallet", "", "wallet address used for voting")
	rootCmd.PersistentFlags().StringVar(&rpcURL, "rpc", "", "Solana JSON-RPC endpoint")
	rootCmd.PersistentFlags().Bool("debug", false, "log debug output")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse (TUI-mode only)")
	_ = rootCmd.Flags().MarkHidden("mouse")

	// Config bindings
	_ = viper.BindPFlag("style", rootCmd.PersistentFlags().Lookup("style"))
	_ = viper.BindPFlag("width", rootCmd.PersistentFlags().Lookup("width"))
	_ = viper.BindPFlag("wallet", rootCmd.PersistentFlags().Lookup("wallet"))
	_ = viper.BindPFlag("rpc.endpoint", rootCmd.PersistentFlags().Lookup("rpc"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))

	setDefaults()

	rootCmd.AddCommand(configCmd, manCmd, lookupCmd, votesCmd, voteCmd, cacheCmd)
}

func setDefaults() {
	viper.SetDefault("style", styles.AutoStyle)
	viper.SetDefault("width", 0)
	viper.SetDefault("mouse", false)
	viper.SetDefault("debug", false)
	viper.SetDefault("wallet", "")
	viper.SetDefault("program_id", "")

	viper.SetDefault("api.base", dexscreener.DefaultBaseURL)
	viper.SetDefault("api.timeout", "15s")
	viper.SetDefault("api.rate_limit", 5.0)

	viper.SetDefault("cache.ttl", cache.DefaultTTL.String())
	viper.SetDefault("cache.dir", "")
	viper.SetDefault("cache.memory_size", 4*1024*1024)
	viper.SetDefault("cache.compression_level", 3)

	viper.SetDefault("rpc.endpoint", solana.DevnetRPC)
	viper.SetDefault("rpc.ws_endpoint", solana.DevnetWS)
	viper.SetDefault("rpc.commitment", string(solana.CommitmentConfirmed))
	viper.SetDefault("rpc.timeout", "30s")
	viper.SetDefault("rpc.rate_limit", 10.0)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "dexvote")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "dexvote")}, dirs...)
	}

	if c := os.Getenv("DEXVOTE_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("dexvote")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("dexvote")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "dexvote.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
