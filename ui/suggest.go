package ui

import (
	"strings"

	runewidth "github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
)

// updateSuggestions matches the input against previously looked up
// addresses.
func (m *model) updateSuggestions() {
	m.suggestion = -1
	m.suggestions = nil

	query := strings.TrimSpace(m.input.Value())
	if query == "" || m.history == nil {
		return
	}

	for _, match := range fuzzy.Find(query, m.history.Addresses()) {
		if match.Str == query {
			continue
		}
		m.suggestions = append(m.suggestions, match.Str)
		if len(m.suggestions) == maxSuggestions {
			break
		}
	}
}

func (m *model) clearSuggestions() {
	m.suggestions = nil
	m.suggestion = -1
}

// moveSuggestion moves the highlighted suggestion by delta, wrapping
// through "none".
func (m *model) moveSuggestion(delta int) {
	n := len(m.suggestions)
	if n == 0 {
		return
	}
	m.suggestion += delta
	switch {
	case m.suggestion < -1:
		m.suggestion = n - 1
	case m.suggestion >= n:
		m.suggestion = -1
	}
}

func (m model) suggestionsView() string {
	if len(m.suggestions) == 0 {
		return ""
	}

	width := m.width - 6
	if width <= 0 {
		width = 74
	}

	var b strings.Builder
	for i, s := range m.suggestions {
		s = runewidth.Truncate(s, width, ellipsis)
		if i == m.suggestion {
			b.WriteString("  " + selectedSuggestionStyle.Render("› "+s) + "\n")
		} else {
			b.WriteString("  " + suggestionStyle.Render("  "+s) + "\n")
		}
	}
	return b.String()
}
