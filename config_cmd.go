package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# style name or JSON path (default "auto")
style: "auto"
# mouse support (TUI-mode only)
mouse: false
# word-wrap at width (0 detects the terminal width)
width: 0
# log debug output
debug: false

# wallet address used for voting; leave empty to stay disconnected
wallet: ""
# vote program; empty uses the placeholder program id
program_id: ""

# DexScreener token API
api:
  base: "https://api.dexscreener.com/latest/dex/tokens"
  timeout: "15s"
  # requests per second
  rate_limit: 5

# token lookup cache
cache:
  ttl: "1m"
  # defaults to the user cache directory
  dir: ""
  memory_size: 4194304
  # zstd level, 0 disables compression
  compression_level: 3

# Solana JSON-RPC
rpc:
  endpoint: "https://api.devnet.solana.com"
  ws_endpoint: "wss://api.devnet.solana.com"
  commitment: "confirmed"
  timeout: "30s"
  # requests per second
  rate_limit: 10

# request URL rewrites, first occurrence only
rewrite:
  - match: "/config.php"
    replace: "/api/config.php"
  - match: "/secureproxy"
    replace: "/api/secureproxy.php"
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the dexvote config file",
	Long:    paragraph(fmt.Sprintf("\n%s the dexvote config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("dexvote config\ndexvote config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("dexvote", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
