package prompt

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type inputModel struct {
	question  string
	input     textinput.Model
	secret    bool
	done      bool
	cancelled bool
}

func newInputModel(question string, secret bool) inputModel {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 256
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	ti.Focus()

	return inputModel{
		question: question,
		input:    ti,
		secret:   secret,
	}
}

func (m inputModel) value() string {
	return strings.TrimSpace(m.input.Value())
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.done || m.cancelled {
		shown := m.value()
		if m.secret && shown != "" {
			shown = strings.Repeat("•", 8)
		}
		return renderQuestion(m.question) + " " + answerStyle.Render(shown) + "\n"
	}
	return renderQuestion(m.question) + " " + m.input.View()
}
