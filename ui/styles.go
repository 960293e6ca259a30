package ui

import "github.com/charmbracelet/lipgloss"

// Colors.
var (
	normalDim = lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"}
	gray      = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}
	midGray   = lipgloss.AdaptiveColor{Light: "#B2B2B2", Dark: "#4A4A4A"}
	darkGray  = lipgloss.AdaptiveColor{Light: "#DDDADA", Dark: "#3C3C3C"}
	cream     = lipgloss.AdaptiveColor{Light: "#FFFDF5", Dark: "#FFFDF5"}
	fuchsia   = lipgloss.Color("#EE6FF8")
	green     = lipgloss.Color("#04B575")
	red       = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}

	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}

	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}
)

var (
	logoStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(fuchsia).
			Bold(true)

	errorTitleStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(red).
			Padding(0, 1)

	alertTitleStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(darkGreen).
			Padding(0, 1)

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"})

	labelStyle = lipgloss.NewStyle().
			Foreground(normalDim)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(midGray).
			Padding(0, 1)

	buttonStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(green).
			Padding(0, 2)

	focusedButtonStyle = buttonStyle.
				Background(fuchsia).
				Underline(true)

	disabledButtonStyle = lipgloss.NewStyle().
				Foreground(gray).
				Background(darkGray).
				Padding(0, 2)

	countStyle = lipgloss.NewStyle().
			Foreground(normalDim).
			PaddingLeft(2)

	suggestionStyle = lipgloss.NewStyle().
			Foreground(gray).
			PaddingLeft(2)

	selectedSuggestionStyle = lipgloss.NewStyle().
				Foreground(fuchsia).
				PaddingLeft(2)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(fuchsia)

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen).
				Render

	statusBarHelpStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}).
				Render
)

func logoView() string {
	return logoStyle.Render(" dexvote ")
}
