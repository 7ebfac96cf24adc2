package prompt

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	listWidth  = 72
	listHeight = 14
)

// Option is one entry of a selection prompt
type Option struct {
	Name        string
	Description string
}

type optionItem struct {
	index int
	name  string
	desc  string
}

func (i optionItem) Title() string       { return i.name }
func (i optionItem) Description() string { return i.desc }
func (i optionItem) FilterValue() string { return i.name }

type selectModel struct {
	list   list.Model
	chosen int
}

func newSelectModel(title string, options []Option) selectModel {
	items := make([]list.Item, len(options))
	for i, opt := range options {
		items[i] = optionItem{index: i, name: opt.Name, desc: opt.Description}
	}

	l := list.New(items, list.NewDefaultDelegate(), listWidth, listHeight)
	l.Title = title
	l.SetShowStatusBar(false)

	return selectModel{list: l, chosen: -1}
}

func (m selectModel) Init() tea.Cmd {
	return nil
}

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.Type {
		case tea.KeyEnter:
			if item, ok := m.list.SelectedItem().(optionItem); ok {
				m.chosen = item.index
			}
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.chosen = -1
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m selectModel) View() string {
	if m.chosen >= 0 {
		if item, ok := m.list.SelectedItem().(optionItem); ok {
			return renderQuestion(m.list.Title) + " " + answerStyle.Render(item.name) + "\n"
		}
	}
	return m.list.View()
}
