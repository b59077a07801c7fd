package ui

import tea "github.com/charmbracelet/bubbletea"

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

func helpText(recording bool) string {
	s := "space pause  ←/→ seek  ↑/↓ volume  o loop  "
	if recording {
		s += "r stop rec"
	} else {
		s += "r record"
	}
	s += "  q quit"
	return s
}
