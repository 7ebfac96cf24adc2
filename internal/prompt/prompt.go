package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the user aborts an input or selection prompt
var ErrCancelled = errors.New("prompt cancelled")

var (
	questionStyle = lipgloss.NewStyle().Bold(true)
	markStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	hintStyle     = lipgloss.NewStyle().Faint(true)
	answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

// Terminal runs interactive prompts on a terminal
type Terminal struct {
	in  io.Reader
	out io.Writer
}

// NewTerminal creates prompts reading from in and drawing to out
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out}
}

// Confirm asks a yes/no question. Enter, Esc and Ctrl+C answer no.
func (t *Terminal) Confirm(ctx context.Context, question string) (bool, error) {
	final, err := t.run(ctx, newConfirmModel(question))
	if err != nil {
		return false, err
	}
	return final.(confirmModel).answer, nil
}

// Input asks for a line of text. secret masks what is typed.
func (t *Terminal) Input(ctx context.Context, question string, secret bool) (string, error) {
	final, err := t.run(ctx, newInputModel(question, secret))
	if err != nil {
		return "", err
	}

	m := final.(inputModel)
	if m.cancelled {
		return "", ErrCancelled
	}
	return m.value(), nil
}

// Select asks the user to pick one of options and returns its index
func (t *Terminal) Select(ctx context.Context, title string, options []Option) (int, error) {
	if len(options) == 0 {
		return -1, errors.New("no options to select from")
	}

	final, err := t.run(ctx, newSelectModel(title, options))
	if err != nil {
		return -1, err
	}

	m := final.(selectModel)
	if m.chosen < 0 {
		return -1, ErrCancelled
	}
	return m.chosen, nil
}

func (t *Terminal) run(ctx context.Context, model tea.Model) (tea.Model, error) {
	p := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
	)

	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run prompt: %w", err)
	}
	return final, nil
}

func renderQuestion(question string) string {
	return markStyle.Render("?") + " " + questionStyle.Render(question)
}
