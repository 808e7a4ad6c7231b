package views

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"rhystmorgan/phoneterm/internal/theme"
)

const (
	nameCharLimit   = 50
	numberCharLimit = 20
)

func newInput(styles theme.Styles, placeholder string, limit int) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.CharLimit = limit
	input.Prompt = "› "
	input.PromptStyle = styles.Prompt
	input.TextStyle = styles.Text
	input.PlaceholderStyle = styles.Muted
	return input
}

func (m AppModel) renderForm() string {
	row := func(label string, input textinput.Model, focused bool) string {
		box := m.styles.Blurred
		if focused {
			box = m.styles.Focused
		}
		return lipgloss.JoinHorizontal(lipgloss.Center,
			m.styles.Label.Render(label),
			box.Width(32).Render(input.View()),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		row("Name", m.nameInput, m.focus == focusName),
		row("Number", m.numberInput, m.focus == focusNumber),
		m.styles.Button.Render("[enter] Add contact"),
	)
}

func (m *AppModel) resetForm() {
	m.nameInput.Reset()
	m.numberInput.Reset()
}
