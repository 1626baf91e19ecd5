// Package tui provides the interactive day view for daybook.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/daybook/internal/tui/theme"
)

// Styles holds all lipgloss styles for the TUI, derived from a theme.
type Styles struct {
	colorBgSelection lipgloss.Color
	colorFg          lipgloss.Color

	TitleStyle     lipgloss.Style
	DateStyle      lipgloss.Style
	MutedStyle     lipgloss.Style
	SelectedStyle  lipgloss.Style
	CompletedStyle lipgloss.Style
	MovedStyle     lipgloss.Style
	ConflictStyle  lipgloss.Style
	WarningStyle   lipgloss.Style
	PromptStyle    lipgloss.Style
	RuleStyle      lipgloss.Style
}

// NewStyles builds the styles for a theme.
func NewStyles(t *theme.Theme) *Styles {
	s := &Styles{
		colorBgSelection: theme.Color(t.BgSelection),
		colorFg:          theme.Color(t.Fg),
	}

	s.TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(theme.Color(t.Accent))
	s.DateStyle = lipgloss.NewStyle().Bold(true).Foreground(s.colorFg)
	s.MutedStyle = lipgloss.NewStyle().Foreground(theme.Color(t.FgMuted))
	s.SelectedStyle = lipgloss.NewStyle().Background(s.colorBgSelection).Foreground(s.colorFg)
	s.CompletedStyle = lipgloss.NewStyle().Foreground(theme.Color(t.FgMuted)).Strikethrough(true)
	s.MovedStyle = lipgloss.NewStyle().Foreground(theme.Color(t.Moved))
	s.ConflictStyle = lipgloss.NewStyle().Bold(true).Foreground(theme.Color(t.Conflict))
	s.WarningStyle = lipgloss.NewStyle().Foreground(theme.Color(t.Warning))
	s.PromptStyle = lipgloss.NewStyle().Foreground(theme.Color(t.Accent))
	s.RuleStyle = lipgloss.NewStyle().Foreground(theme.Color(t.FgMuted))

	return s
}

// groupStyle returns the title style for a task of a group with the given color.
func (s *Styles) groupStyle(color string) lipgloss.Style {
	style := lipgloss.NewStyle().Foreground(s.colorFg)
	if color != "" {
		style = style.Foreground(lipgloss.Color(color))
	}
	return style
}
