package components

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/zirakhr/zirak/internal/ui/theme"
)

// ChoiceKeys are the bindings MultiChoice reacts to.
type ChoiceKeys struct {
	Up     key.Binding
	Down   key.Binding
	Choose key.Binding
}

// DefaultChoiceKeys returns arrow/vim navigation with enter or space to
// choose.
func DefaultChoiceKeys() ChoiceKeys {
	return ChoiceKeys{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Choose: key.NewBinding(key.WithKeys("enter", "space"), key.WithHelp("enter", "choose")),
	}
}

// ChoiceMadeMsg is emitted when an option is chosen.
type ChoiceMadeMsg struct {
	Index int
}

// MultiChoice is a multiple-choice selector. CorrectIndex is -1 until the
// answer key is known; Reveal switches the view to the graded rendering.
type MultiChoice struct {
	Question     string
	Options      []string
	Selected     int
	ChosenIndex  int
	CorrectIndex int
	Revealed     bool

	Keys ChoiceKeys
}

// NewMultiChoice creates a selector. chosen is the previously chosen
// index, or -1.
func NewMultiChoice(question string, options []string, chosen int) MultiChoice {
	sel := 0
	if chosen >= 0 && chosen < len(options) {
		sel = chosen
	}
	return MultiChoice{
		Question:     question,
		Options:      options,
		Selected:     sel,
		ChosenIndex:  chosen,
		CorrectIndex: -1,
		Keys:         DefaultChoiceKeys(),
	}
}

// Reveal marks the correct option for graded rendering.
func (m MultiChoice) Reveal(correct int) MultiChoice {
	m.CorrectIndex = correct
	m.Revealed = true
	return m
}

// Update handles keyboard navigation and selection.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Revealed {
		return m, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(kmsg, m.Keys.Up):
		if m.Selected > 0 {
			m.Selected--
		}
	case key.Matches(kmsg, m.Keys.Down):
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	case key.Matches(kmsg, m.Keys.Choose):
		if len(m.Options) == 0 {
			return m, nil
		}
		m.ChosenIndex = m.Selected
		idx := m.Selected
		return m, func() tea.Msg { return ChoiceMadeMsg{Index: idx} }
	}
	return m, nil
}

// View renders the question and its options.
func (m MultiChoice) View() string {
	var b strings.Builder
	b.WriteString(theme.Body.Bold(true).Render(m.Question))
	b.WriteString("\n\n")

	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected && !m.Revealed {
			prefix = "▸ "
		}
		mark := " "
		if i == m.ChosenIndex {
			mark = "•"
		}
		line := fmt.Sprintf("%s%s %s)  %s", prefix, mark, Label(i), opt)

		switch {
		case m.Revealed && i == m.CorrectIndex:
			line = theme.Correct.Render(line)
		case m.Revealed && i == m.ChosenIndex:
			line = theme.Incorrect.Render(line)
		case m.Revealed:
			line = theme.Subtitle.Render(line)
		case i == m.Selected:
			line = theme.Selected.Render(line)
		default:
			line = theme.Body.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// IsCorrect reports whether the chosen option is the revealed correct one.
func (m MultiChoice) IsCorrect() bool {
	return m.Revealed && m.ChosenIndex >= 0 && m.ChosenIndex == m.CorrectIndex
}

// Label returns the letter shown in front of option i.
func Label(i int) string {
	if i < 0 || i >= 26 {
		return "?"
	}
	return string(rune('A' + i))
}
