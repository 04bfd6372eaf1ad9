package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// confirmModel is a one-shot yes/no prompt shown before any mutating batch.
type confirmModel struct {
	summary  string
	cursor   int
	answered bool
	yes      bool
}

func newConfirmModel(summary string) confirmModel {
	return confirmModel{summary: summary, cursor: 1}
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc", "n":
			m.answered = true
			m.yes = false
			return m, tea.Quit
		case "y":
			m.answered = true
			m.yes = true
			return m, tea.Quit
		case "left", "h", "right", "l", "tab":
			m.cursor = 1 - m.cursor
		case "enter":
			m.answered = true
			m.yes = m.cursor == 0
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")).Render("Apply changes?")
	body := lipgloss.NewStyle().Render(m.summary)
	hint := lipgloss.NewStyle().Faint(true).Render("y/n, ←/→ and Enter, Esc aborts")

	yesLabel, noLabel := "  Yes  ", "  No  "
	active := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	idle := lipgloss.NewStyle().Faint(true)
	var row string
	if m.cursor == 0 {
		row = active.Render("> "+yesLabel) + idle.Render("  "+noLabel)
	} else {
		row = idle.Render("  "+yesLabel) + active.Render("> "+noLabel)
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", row, hint))
}

// confirmPrompt runs the interactive confirmation. It is the ConfirmFunc
// installed into the app context; services never touch the terminal directly.
func confirmPrompt(summary string) (bool, error) {
	p := tea.NewProgram(newConfirmModel(summary))
	result, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := result.(confirmModel)
	if !ok || !m.answered {
		return false, nil
	}
	return m.yes, nil
}
