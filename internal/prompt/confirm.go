package prompt

import (
	tea "github.com/charmbracelet/bubbletea"
)

type confirmModel struct {
	question string
	answer   bool
	done     bool
}

func newConfirmModel(question string) confirmModel {
	return confirmModel{question: question}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "y", "Y":
		m.answer = true
		m.done = true
		return m, tea.Quit
	case "n", "N", "enter", "esc", "ctrl+c":
		m.answer = false
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		answer := "No"
		if m.answer {
			answer = "Yes"
		}
		return renderQuestion(m.question) + " " + answerStyle.Render(answer) + "\n"
	}
	return renderQuestion(m.question) + " " + hintStyle.Render("(y/N)") + " "
}
