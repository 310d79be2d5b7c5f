package tui

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/ui/style"
)

var (
	titleStyle    = style.Title.Padding(0, 1).Background(style.Ink)
	selectedStyle = lipgloss.NewStyle().Foreground(style.Iris).Bold(true)
	keyStyle      = lipgloss.NewStyle().Width(34)
	ageStyle      = style.Muted.Width(5).Align(lipgloss.Right)
	detailStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(style.Slate).
			Padding(0, 1)
	helpStyle = style.Muted.MarginTop(1)
)

func entryStyle(s domain.EntryStatus) lipgloss.Style {
	switch s {
	case domain.StatusFresh:
		return style.Good
	case domain.StatusFetching:
		return style.Busy
	case domain.StatusErrored:
		return style.Bad
	default:
		return style.Caution
	}
}

func phaseStyle(p domain.ConnPhase) lipgloss.Style {
	switch p {
	case domain.PhaseConnected:
		return style.Good
	case domain.PhaseConnecting, domain.PhaseReconnecting:
		return style.Caution
	case domain.PhaseFailed:
		return style.Bad
	default:
		return style.Muted
	}
}
