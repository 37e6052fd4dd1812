package ui

import tea "github.com/charmbracelet/bubbletea"

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "ctrl+c":
		return true
	}
	return false
}

func helpText(editing, playing bool) string {
	if editing {
		return "tab next field  enter/esc done  ctrl+c quit"
	}
	s := "o open  "
	if playing {
		s += "enter stop"
	} else {
		s += "enter start"
	}
	return s + "  tab edit  s save images  p preview  q quit"
}
