package browser

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/shelf/internal/catalog"
)

var (
	// Base colors
	primaryColor   = lipgloss.Color("212")
	secondaryColor = lipgloss.Color("141")
	mutedColor     = lipgloss.Color("241")
	successColor   = lipgloss.Color("42")
	warningColor   = lipgloss.Color("214")
	errorColor     = lipgloss.Color("196")
	infoColor      = lipgloss.Color("45")

	// Panel styles
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(primaryColor).
				Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Background(lipgloss.Color("237")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondaryColor).
			Padding(0, 1)

	confirmStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(errorColor).
			Padding(1, 2)

	// Text styles
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	subtleStyle = lipgloss.NewStyle().Foreground(mutedColor)
	helpStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	loadStyle   = lipgloss.NewStyle().Foreground(warningColor)
	markStyle   = lipgloss.NewStyle().Foreground(successColor)

	focusedInputStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("255")).
				Background(lipgloss.Color("236"))

	// Selected row style - inverted colors for visibility
	selectedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("237")).
				Foreground(lipgloss.Color("255"))

	// Status line styles per notification severity
	statusStyles = map[catalog.Severity]lipgloss.Style{
		catalog.SeveritySuccess: lipgloss.NewStyle().Foreground(successColor),
		catalog.SeverityError:   lipgloss.NewStyle().Foreground(errorColor).Bold(true),
		catalog.SeverityInfo:    lipgloss.NewStyle().Foreground(infoColor),
	}
)

// formatStatus renders a status message with its severity color
func formatStatus(sev catalog.Severity, msg string) string {
	style, ok := statusStyles[sev]
	if !ok {
		return msg
	}
	return style.Render(msg)
}
