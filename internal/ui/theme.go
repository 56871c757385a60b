package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/i2c-int-monitor/internal/dashboard"
)

// palette maps a row role to the colors its series cycle through.
// Devices get the brighter variant of their controller's hue.
var palette = map[dashboard.Role][]lipgloss.Color{
	dashboard.RoleController: {"4", "5", "1", "3"},
	dashboard.RoleDevice:     {"6", "13", "9", "11"},
	dashboard.RoleTotal:      {"15"},
}

const hiddenColor = lipgloss.Color("240")

func colorFor(role dashboard.Role, index int) lipgloss.Color {
	colors := palette[role]
	if len(colors) == 0 {
		return lipgloss.Color("7")
	}
	return colors[index%len(colors)]
}

// Styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	headerStyle = lipgloss.NewStyle().Bold(true)
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	highBg      = lipgloss.Color("238")
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1)
)
