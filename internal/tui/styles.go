package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/shoplist/internal/ui"
)

// ------- styling (Lip Gloss) -------

// styles is the lipgloss rendition of a ui.Theme.
type styles struct {
	title, success, pending, accent, muted, err lipgloss.Style
	selected, bought, help, frame                lipgloss.Style

	boxBought, boxPending string
	symBought, symPending string
}

// newStyles derives the TUI look from theme. With color off only
// attributes (bold, faint, reverse) and borders remain.
func newStyles(theme ui.Theme, color bool) styles {
	fg := func(code string) lipgloss.Style {
		s := lipgloss.NewStyle()
		if color && code != "" {
			s = s.Foreground(lipgloss.Color(code))
		}
		return s
	}
	p := theme.Palette

	border := lipgloss.NormalBorder()
	if theme.Name == "neon" {
		border = lipgloss.RoundedBorder()
	}
	frame := lipgloss.NewStyle().Border(border).Padding(0, 1)
	if color && p.Muted != "" {
		frame = frame.BorderForeground(lipgloss.Color(p.Muted))
	}

	return styles{
		title:    fg(p.Title).Bold(true),
		success:  fg(p.Success),
		pending:  fg(p.Pending),
		accent:   fg(p.Accent),
		muted:    fg(p.Muted).Faint(true),
		err:      fg(p.Error).Bold(true),
		selected: lipgloss.NewStyle().Bold(true).Reverse(true),
		bought:   fg(p.Muted).Faint(true).Strikethrough(true),
		help:     lipgloss.NewStyle().Faint(true),
		frame:    frame,

		boxBought:  theme.BoxBought,
		boxPending: theme.BoxPending,
		symBought:  theme.SymBought,
		symPending: theme.SymPending,
	}
}

// currentStyles follows the theme and colour mode chosen at startup.
func currentStyles() styles {
	return newStyles(ui.Current(), ui.ColorEnabled())
}
