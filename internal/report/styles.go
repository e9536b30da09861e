package report

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/leefowlercu/compage/component"
)

// Color palette using ANSI colors for broad terminal compatibility.
var (
	primary   = lipgloss.Color("4")   // Blue
	secondary = lipgloss.Color("245") // Light gray
	success   = lipgloss.Color("2")   // Green
	warning   = lipgloss.Color("3")   // Yellow
	failure   = lipgloss.Color("1")   // Red
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primary)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(secondary)

	errorStyle = lipgloss.NewStyle().
			Foreground(failure).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			PaddingLeft(2)
)

// stateStyle colors a lifecycle state by outcome.
func stateStyle(name string) lipgloss.Style {
	s, _ := component.ParseState(name)
	switch {
	case s == component.StateCompletedSuccess:
		return lipgloss.NewStyle().Foreground(success)
	case s == component.StateCompletedFailure || s == component.StateIllegal:
		return lipgloss.NewStyle().Foreground(failure).Bold(true)
	case s == component.StateIdle:
		return mutedStyle
	default:
		return lipgloss.NewStyle().Foreground(warning)
	}
}
