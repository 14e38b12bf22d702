package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/wundervaflja/rat/pkg/models"
)

const logo = "┏━┓┏━┓╺┳╸\n┣┳┛┣━┫ ┃\n╹┗╸╹ ╹ ╹"

var (
	colorGreen  = lipgloss.Color("2")
	colorYellow = lipgloss.Color("3")
	colorRed    = lipgloss.Color("1")
	colorBlue   = lipgloss.Color("4")
	colorCyan   = lipgloss.Color("6")
	colorGray   = lipgloss.Color("8")

	logoStyle  = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	boldStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(colorGray)
	errStyle   = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(colorYellow)
	okStyle    = lipgloss.NewStyle().Foreground(colorGreen)
	cyanStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2)
)

// panel renders content in a rounded border tinted by the given color.
func panel(content string, border lipgloss.Color) string {
	return panelStyle.BorderForeground(border).Render(content)
}

// statusBadge renders a session status in its conventional color.
func statusBadge(status models.SessionStatus) string {
	switch status {
	case models.SessionStatusActive:
		return okStyle.Render(string(status))
	case models.SessionStatusPaused:
		return warnStyle.Render(string(status))
	case models.SessionStatusStopped:
		return errStyle.Render(string(status))
	default:
		return dimStyle.Render(string(status))
	}
}

// statusBorder picks the panel border color for a session status.
func statusBorder(status models.SessionStatus) lipgloss.Color {
	switch status {
	case models.SessionStatusActive:
		return colorGreen
	case models.SessionStatusPaused:
		return colorYellow
	case models.SessionStatusStopped:
		return colorRed
	default:
		return colorBlue
	}
}

// errorf prints a styled error line to the user.
func errorf(format string, args ...any) {
	fmt.Printf("%s %s\n", errStyle.Render("Error:"), fmt.Sprintf(format, args...))
}
