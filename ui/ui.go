// Package ui provides the interactive token search and vote widget.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/dexvote/internal/solana"
	"github.com/dgnsrekt/dexvote/internal/widget"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "copied!"
	ellipsis             = "…"
	maxSuggestions       = 5
	keyEsc               = "esc"
)

// History lists previously looked up addresses, most recent first.
type History interface {
	Addresses() []string
}

// NewProgram returns a new Tea program.
func NewProgram(cfg Config, ctrl *widget.Controller, history History) *tea.Program {
	log.Debug(
		"Starting dexvote",
		"glamour",
		cfg.GlamourEnabled,
		"timeout",
		cfg.Timeout,
	)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return tea.NewProgram(newModel(cfg, ctrl, history), opts...)
}

// WalletMsg connects the wallet with the given address. An empty address
// disconnects it.
type WalletMsg struct {
	Address string
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type (
	// actionDoneMsg carries the widget state after a controller operation.
	actionDoneMsg struct {
		state   widget.State
		outcome widget.Outcome
		panel   string
	}
	panelRenderedMsg        string
	statusMessageTimeoutMsg struct{}
)

// focus is the element receiving key presses.
type focus int

const (
	focusInput focus = iota
	focusButton
)

func (f focus) String() string {
	return map[focus]string{
		focusInput:  "address input",
		focusButton: "vote button",
	}[f]
}

type model struct {
	cfg     Config
	ctrl    *widget.Controller
	history History

	width  int
	height int

	input   textinput.Model
	spinner spinner.Model
	focus   focus

	// busy is set while a controller operation runs. The controller is
	// only touched from one command at a time.
	busy     bool
	busyNote string

	// Snapshot of the controller state taken when the last operation ended.
	state widget.State
	panel string

	alert        string
	alertIsError bool

	suggestions []string
	suggestion  int

	statusMessage      string
	statusMessageTimer *time.Timer

	pendingWallet *WalletMsg

	// Last successful vote and the token it was cast for.
	voteSig      solana.Signature
	voteContract solana.PublicKey
}

func newModel(cfg Config, ctrl *widget.Controller, history History) model {
	ti := textinput.New()
	ti.Placeholder = "Solana token address"
	ti.Prompt = "> "
	ti.CharLimit = 64
	ti.Width = 46
	ti.Focus()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(spinnerStyle),
	)

	m := model{
		cfg:        cfg,
		ctrl:       ctrl,
		history:    history,
		input:      ti,
		spinner:    sp,
		focus:      focusInput,
		state:      ctrl.State(),
		suggestion: -1,
	}
	if addr := strings.TrimSpace(cfg.Address); addr != "" {
		m.input.SetValue(addr)
		m.setBusy("Searching")
	}
	return m
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if addr := strings.TrimSpace(m.cfg.Address); addr != "" {
		log.Debug("Searching initial address", "address", addr)
		cmds = append(cmds, m.searchCmd(addr), m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Ctrl+C always quits no matter where in the application you are.
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		// While an alert is up any key dismisses it.
		if m.alert != "" {
			m.alert = ""
			m.alertIsError = false
			return m, nil
		}

		switch msg.String() {
		case keyEsc:
			if len(m.suggestions) > 0 {
				m.clearSuggestions()
				return m, nil
			}
			return m, tea.Quit

		case "tab", "shift+tab":
			return m, m.toggleFocus()

		case "ctrl+y":
			return m, m.copySelection()

		case "ctrl+r":
			if m.busy {
				return m, nil
			}
			m.setBusy("Refreshing")
			return m, tea.Batch(m.refreshCmd(), m.spinner.Tick)
		}

		if m.focus == focusButton {
			switch msg.String() {
			case "enter", " ":
				if m.busy {
					return m, nil
				}
				m.setBusy("Voting")
				return m, tea.Batch(m.voteCmd(), m.spinner.Tick)
			case "q":
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.String() {
		case "up", "ctrl+p":
			m.moveSuggestion(-1)
			return m, nil
		case "down", "ctrl+n":
			m.moveSuggestion(1)
			return m, nil
		case "enter":
			if m.busy {
				return m, nil
			}
			if m.suggestion >= 0 && m.suggestion < len(m.suggestions) {
				m.input.SetValue(m.suggestions[m.suggestion])
				m.input.CursorEnd()
			}
			m.clearSuggestions()
			m.setBusy("Searching")
			return m, tea.Batch(m.searchCmd(m.input.Value()), m.spinner.Tick)
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.updateSuggestions()
		return m, cmd

	// Window size is received when starting up and on every resize
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(10, min(64, msg.Width-8))
		if len(m.state.Panel) > 0 {
			cmds = append(cmds, m.renderPanelCmd())
		}

	case actionDoneMsg:
		m.busy = false
		m.busyNote = ""
		m.state = msg.state
		m.panel = msg.panel
		if msg.outcome.Alert != "" {
			m.alert = msg.outcome.Alert
			m.alertIsError = msg.outcome.Err != nil
		}
		if msg.outcome.Err != nil {
			log.Debug("action failed", "err", msg.outcome.Err)
		}
		if sig := msg.outcome.Signature; sig != (solana.Signature{}) {
			m.voteSig, m.voteContract = sig, msg.state.Selected
		}
		if w := m.pendingWallet; w != nil {
			m.pendingWallet = nil
			m.setBusy("Connecting wallet")
			cmds = append(cmds, m.walletCmd(w.Address), m.spinner.Tick)
		}

	case panelRenderedMsg:
		m.panel = string(msg)

	case WalletMsg:
		if m.busy {
			m.pendingWallet = &msg
			return m, nil
		}
		m.setBusy("Connecting wallet")
		cmds = append(cmds, m.walletCmd(msg.Address), m.spinner.Tick)

	case statusMessageTimeoutMsg:
		m.statusMessage = ""

	case errMsg:
		m.alert = msg.Error()
		m.alertIsError = true

	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *model) setBusy(note string) {
	m.busy = true
	m.busyNote = note
}

func (m *model) toggleFocus() tea.Cmd {
	if m.focus == focusInput {
		m.focus = focusButton
		m.input.Blur()
		m.clearSuggestions()
		return nil
	}
	m.focus = focusInput
	return m.input.Focus()
}

func (m *model) showStatusMessage(msg string) tea.Cmd {
	m.statusMessage = msg
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.statusMessageTimer = time.NewTimer(statusMessageTimeout)
	return waitForStatusMessageTimeout(m.statusMessageTimer)
}

func (m model) View() string {
	if m.alert != "" {
		return alertView(m.alert, m.alertIsError)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", logoView())
	fmt.Fprintf(&b, "  %s\n", labelStyle.Render("Token address"))
	fmt.Fprintf(&b, "  %s", m.input.View())
	if m.busy {
		fmt.Fprintf(&b, " %s%s", m.spinner.View(), subtleStyle.Render(m.busyNote+ellipsis))
	}
	b.WriteString("\n")
	b.WriteString(m.suggestionsView())
	b.WriteString("\n")

	if m.panel != "" {
		b.WriteString(indent(panelStyle.Render(m.panel), 2))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "  %s%s\n", m.buttonView(), countStyle.Render(m.state.CountLabel()))

	body := b.String()
	if m.height > 0 {
		if gap := m.height - lipgloss.Height(body) - 1; gap > 0 {
			body += strings.Repeat("\n", gap)
		}
	}
	return body + m.statusBarView()
}

func (m model) buttonView() string {
	label := m.state.Button.Label
	if label == "" {
		label = widget.LabelVote
	}
	switch {
	case m.state.Button.Disabled:
		return disabledButtonStyle.Render(label)
	case m.focus == focusButton:
		return focusedButtonStyle.Render(label)
	default:
		return buttonStyle.Render(label)
	}
}

func alertView(msg string, isError bool) string {
	title := alertTitleStyle.Render("ALERT")
	if isError {
		title = errorTitleStyle.Render("ERROR")
	}
	s := fmt.Sprintf("%s\n\n%s\n\n%s",
		title,
		msg,
		subtleStyle.Render("press any key to return"),
	)
	return "\n" + indent(s, 3)
}

// COMMANDS

func (m model) context() (context.Context, context.CancelFunc) {
	if m.cfg.Timeout > 0 {
		return context.WithTimeout(context.Background(), m.cfg.Timeout)
	}
	return context.WithCancel(context.Background())
}

func (m model) panelWidth() int {
	if m.width == 0 {
		return 80
	}
	return max(20, m.width-8)
}

// run executes op against the controller and reports the resulting state.
func (m model) run(op func(context.Context) widget.Outcome) tea.Cmd {
	ctrl, cfg, width := m.ctrl, m.cfg, m.panelWidth()
	return func() tea.Msg {
		ctx, cancel := m.context()
		defer cancel()

		out := op(ctx)
		st := ctrl.State()
		return actionDoneMsg{
			state:   st,
			outcome: out,
			panel:   renderPanel(cfg, st.Result, st.Panel, width),
		}
	}
}

func (m model) searchCmd(input string) tea.Cmd {
	ctrl := m.ctrl
	return m.run(func(ctx context.Context) widget.Outcome {
		return ctrl.Search(ctx, input)
	})
}

func (m model) voteCmd() tea.Cmd {
	return m.run(m.ctrl.Vote)
}

func (m model) refreshCmd() tea.Cmd {
	ctrl := m.ctrl
	return m.run(func(ctx context.Context) widget.Outcome {
		if err := ctrl.RefreshVoteStatus(ctx); err != nil {
			return widget.Outcome{Alert: "Unable to refresh vote status: " + err.Error(), Err: err}
		}
		return widget.Outcome{}
	})
}

func (m model) walletCmd(address string) tea.Cmd {
	ctrl := m.ctrl
	return m.run(func(ctx context.Context) widget.Outcome {
		address = strings.TrimSpace(address)
		if address == "" {
			ctrl.DisconnectWallet()
			return widget.Outcome{}
		}
		pk, err := solana.ParsePublicKey(address)
		if err != nil {
			return widget.Outcome{Alert: "Invalid wallet address: " + err.Error(), Err: err}
		}
		ctrl.ConnectWallet(pk)
		if err := ctrl.RefreshVoteStatus(ctx); err != nil {
			return widget.Outcome{Alert: "Unable to refresh vote status: " + err.Error(), Err: err}
		}
		return widget.Outcome{}
	})
}

func (m model) renderPanelCmd() tea.Cmd {
	cfg, st, width := m.cfg, m.state, m.panelWidth()
	return func() tea.Msg {
		return panelRenderedMsg(renderPanel(cfg, st.Result, st.Panel, width))
	}
}

func waitForStatusMessageTimeout(t *time.Timer) tea.Cmd {
	return func() tea.Msg {
		<-t.C
		return statusMessageTimeoutMsg{}
	}
}

// ETC

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}
	return b.String()
}
