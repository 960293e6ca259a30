package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/muesli/termenv"

	"github.com/dgnsrekt/dexvote/internal/dexscreener"
)

// GlamourStyle returns the renderer option for a style name or JSON path.
// "auto" picks the dark or light style from the terminal background.
func GlamourStyle(style string) glamour.TermRendererOption {
	if style == "" || style == styles.AutoStyle {
		if termenv.HasDarkBackground() {
			return glamour.WithStandardStyle(styles.DarkStyle)
		}
		return glamour.WithStandardStyle(styles.LightStyle)
	}
	return glamour.WithStylePath(style)
}

// RenderMarkdown renders md with glamour.
func RenderMarkdown(md, style string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		GlamourStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("unable to create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("unable to render markdown: %w", err)
	}
	return out, nil
}

// panelMarkdown returns the markdown of the result panel.
func panelMarkdown(res *dexscreener.Result, panel []string) string {
	if res != nil {
		return dexscreener.Markdown(res)
	}
	return strings.Join(panel, "\n\n") + "\n"
}

// renderPanel renders the result panel for the given width. Without glamour
// the plain panel lines are used.
func renderPanel(cfg Config, res *dexscreener.Result, panel []string, width int) string {
	if len(panel) == 0 {
		return ""
	}
	if !cfg.GlamourEnabled {
		return strings.Join(panel, "\n")
	}

	w := width
	if cfg.GlamourMaxWidth > 0 && int(cfg.GlamourMaxWidth) < w { //nolint:gosec
		w = int(cfg.GlamourMaxWidth) //nolint:gosec
	}
	out, err := RenderMarkdown(panelMarkdown(res, panel), cfg.GlamourStyle, max(0, w))
	if err != nil {
		return strings.Join(panel, "\n")
	}
	return strings.Trim(out, "\n")
}
