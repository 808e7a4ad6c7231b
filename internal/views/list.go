package views

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"rhystmorgan/phoneterm/internal/contactbook"
)

const (
	loadingText      = "Loading . . ."
	emptyText        = "There is no contacts"
	defaultsHint     = "[ctrl+l] Default Contacts"
	noMatchText      = "No contacts with this name"
	filterLabel      = "Find contacts by name"
	deleteHint       = "[d] Delete"
	maxVisibleOnPage = 12
)

func (m AppModel) renderContacts() string {
	var content strings.Builder

	switch {
	case m.state.Status == contactbook.StatusLoading:
		content.WriteString(m.spinner.View() + " " + m.styles.Muted.Render(loadingText))
		return content.String()

	case len(m.state.Contacts) == 0:
		content.WriteString(m.styles.Muted.Render(emptyText))
		content.WriteString("\n")
		content.WriteString(m.styles.Button.Render(defaultsHint))
		return content.String()
	}

	box := m.styles.Blurred
	if m.focus == focusFilter {
		box = m.styles.Focused
	}
	content.WriteString(m.styles.Muted.Render(filterLabel))
	content.WriteString("\n")
	content.WriteString(box.Width(32).Render(m.filterInput.View()))
	content.WriteString("\n")

	if len(m.state.Visible) == 0 {
		content.WriteString(m.styles.Muted.Render(noMatchText))
		return content.String()
	}

	content.WriteString(m.renderContactList())
	return content.String()
}

func (m AppModel) renderContactList() string {
	start := 0
	if m.selected >= maxVisibleOnPage {
		start = m.selected - maxVisibleOnPage + 1
	}
	end := start + maxVisibleOnPage
	if end > len(m.state.Visible) {
		end = len(m.state.Visible)
	}

	items := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		contact := m.state.Visible[i]
		line := lipgloss.JoinHorizontal(lipgloss.Left,
			"• ",
			contact.Name,
			": ",
			m.styles.Number.Render(contact.Number),
		)

		if m.focus == focusList && i == m.selected {
			items = append(items, m.styles.Selected.Render(line+"  "+deleteHint))
		} else {
			items = append(items, m.styles.Item.Render(line))
		}
	}
	return strings.Join(items, "\n")
}

func (m *AppModel) moveSelection(delta int) {
	if len(m.state.Visible) == 0 {
		m.selected = 0
		return
	}
	m.selected += delta
	if m.selected < 0 {
		m.selected = 0
	}
	if m.selected >= len(m.state.Visible) {
		m.selected = len(m.state.Visible) - 1
	}
}

func (m *AppModel) clampSelection() {
	m.moveSelection(0)
}
