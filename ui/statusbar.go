package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/termenv"

	"github.com/dgnsrekt/dexvote/internal/solana"
)

const helpText = " tab focus • enter search/vote • ctrl+y copy • esc quit "

// shortAddress abbreviates an address to its first and last four characters.
func shortAddress(pk solana.PublicKey) string {
	s := pk.String()
	if len(s) <= 10 {
		return s
	}
	return s[:4] + ellipsis + s[len(s)-4:]
}

// statusNote describes the wallet and the freshness of the displayed data.
func (m model) statusNote() string {
	if m.statusMessage != "" {
		return m.statusMessage
	}

	var parts []string
	if m.state.HasWallet {
		parts = append(parts, "wallet "+shortAddress(m.state.Wallet))
	} else {
		parts = append(parts, "no wallet")
	}
	if m.state.HasSelected {
		parts = append(parts, "token "+shortAddress(m.state.Selected))
	}
	if res := m.state.Result; res != nil && !res.Fetched.IsZero() {
		age := "updated " + humanize.Time(res.Fetched)
		if res.Cached {
			age += " (cached)"
		}
		parts = append(parts, age)
	}
	return strings.Join(parts, " • ")
}

func (m model) statusBarView() string {
	logo := logoView()
	help := statusBarHelpStyle(helpText)

	width := m.width
	if width == 0 {
		width = 80
	}

	note := truncate.StringWithTail(" "+m.statusNote()+" ", uint(max(0, //nolint:gosec
		width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(help),
	)), ellipsis)

	style := statusBarNoteStyle
	if m.statusMessage != "" {
		style = statusBarMessageStyle
	}
	note = style(note)

	padding := max(0,
		width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(help),
	)
	emptySpace := style(strings.Repeat(" ", padding))

	return fmt.Sprintf("%s%s%s%s", logo, note, emptySpace, help)
}

// copyTarget returns what ctrl+y copies: the signature of the vote cast for
// the selected token, otherwise the selected address.
func (m model) copyTarget() (text, label string, ok bool) {
	if !m.state.HasSelected {
		return "", "", false
	}
	if m.voteSig != (solana.Signature{}) && m.voteContract == m.state.Selected {
		s := m.voteSig.String()
		return s, "signature " + s[:8] + ellipsis, true
	}
	return m.state.Selected.String(), shortAddress(m.state.Selected), true
}

// copySelection copies the selected address or vote signature to the
// clipboard.
func (m *model) copySelection() tea.Cmd {
	text, label, ok := m.copyTarget()
	if !ok {
		return m.showStatusMessage("Nothing to copy")
	}
	// Copy using OSC 52
	termenv.Copy(text)
	// Copy using native system clipboard
	_ = clipboard.WriteAll(text)
	return m.showStatusMessage("Copied " + label)
}
