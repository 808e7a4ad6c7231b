package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Styles are the lipgloss styles shared by the TUI and the CLI output.
type Styles struct {
	Palette Palette

	Title       lipgloss.Style
	Section     lipgloss.Style
	Label       lipgloss.Style
	Prompt      lipgloss.Style
	Text        lipgloss.Style
	Muted       lipgloss.Style
	Focused     lipgloss.Style
	Blurred     lipgloss.Style
	Item        lipgloss.Style
	Selected    lipgloss.Style
	Number      lipgloss.Style
	Button      lipgloss.Style
	Spinner     lipgloss.Style
	Success     lipgloss.Style
	Failure     lipgloss.Style
	Info        lipgloss.Style
	Help        lipgloss.Style
	FormatError lipgloss.Style
}

// NewStyles builds every style from one palette.
func NewStyles(p Palette) Styles {
	return Styles{
		Palette: p,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.Mauve)).
			Padding(0, 1),

		Section: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.Text)).
			Background(lipgloss.Color(p.Surface0)).
			Padding(0, 1).
			MarginTop(1),

		Label: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Subtext1)).
			Width(8),

		Prompt: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Blue)),
		Text:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.Text)),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.Overlay1)),

		Focused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.Blue)).
			Padding(0, 1),

		Blurred: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.Surface1)).
			Padding(0, 1),

		Item: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Text)).
			Padding(0, 1),

		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Text)).
			Background(lipgloss.Color(p.Surface1)).
			Padding(0, 1),

		Number: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Sapphire)),

		Button: lipgloss.NewStyle().
			Background(lipgloss.Color(p.Green)).
			Foreground(lipgloss.Color(p.Base)).
			Padding(0, 1),

		Spinner: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Yellow)),

		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Green)).
			Bold(true),

		Failure: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Red)).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Blue)).
			Bold(true),

		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Overlay0)).
			MarginTop(1),

		FormatError: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Red)).
			Padding(0, 1),
	}
}

// Table returns a bordered table for command-line listings. The first
// column is rendered as text and the rest muted.
func (s Styles) Table(headers ...string) *table.Table {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(s.Palette.Mauve)).
		Padding(0, 1)
	first := s.Text.Padding(0, 1)
	rest := s.Muted.Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(s.Palette.Overlay0))).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case col == 0:
				return first
			default:
				return rest
			}
		})
}
