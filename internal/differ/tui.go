// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Choice is one selectable model state, typically a replay step.
type Choice struct {
	ID    string
	Label string
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Go     key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Go, k.Quit}
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle: key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "toggle")),
	Go:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "diff")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q/esc", "quit")),
}

var cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#623CE4")).Bold(true)

// SelectPair lets the user pick two states to diff. It returns nil if the
// picker was cancelled.
func SelectPair(items []Choice) ([]Choice, error) {
	p := tea.NewProgram(picker{items: items})
	m, err := p.Run()
	if err != nil {
		return nil, err
	}
	return m.(picker).selected, nil
}

type picker struct {
	items    []Choice
	cursor   int
	selected []Choice
}

func (m picker) Init() tea.Cmd { return nil }

func (m picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(km, keys.Quit):
		m.selected = nil
		return m, tea.Quit
	case key.Matches(km, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case key.Matches(km, keys.Toggle):
		if len(m.items) == 0 {
			break
		}
		cur := m.items[m.cursor]
		if i := indexOf(m.selected, cur); i >= 0 {
			m.selected = append(m.selected[:i], m.selected[i+1:]...)
		} else if len(m.selected) < 2 {
			m.selected = append(m.selected, cur)
		}
	case key.Matches(km, keys.Go):
		if len(m.selected) == 2 {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m picker) View() string {
	var b strings.Builder
	b.WriteString("Select two states:\n\n")
	for i, c := range m.items {
		mark := " "
		if indexOf(m.selected, c) >= 0 {
			mark = "x"
		}
		line := fmt.Sprintf("[%s] %s %s", mark, c.ID, c.Label)
		if m.cursor == i {
			line = cursorStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + help.New().ShortHelpView(keys.ShortHelp()) + "\n")
	return b.String()
}

func indexOf(items []Choice, c Choice) int {
	for i, v := range items {
		if v.ID == c.ID {
			return i
		}
	}
	return -1
}
