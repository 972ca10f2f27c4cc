package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/entrydrive/syncbox/pkg/entrystate"
)

var (
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	gray   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

// renderState colors a sync state for terminal output.
func renderState(s entrystate.SyncState) string {
	switch s {
	case entrystate.StateSynced:
		return green.Render(s.String())
	case entrystate.StateRefresh:
		return yellow.Render(s.String())
	default:
		return gray.Render(s.String())
	}
}
