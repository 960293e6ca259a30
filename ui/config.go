package ui

import "time"

// Config contains TUI-specific configuration.
type Config struct {
	GlamourMaxWidth uint
	GlamourStyle    string `env:"GLAMOUR_STYLE"`
	EnableMouse     bool

	// Timeout bounds a single search or vote. Zero means no limit.
	Timeout time.Duration

	// Address is searched for on start, if set.
	Address string

	// For debugging the UI
	GlamourEnabled bool `env:"DEXVOTE_ENABLE_GLAMOUR" envDefault:"true"`
}
