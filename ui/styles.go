package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ftahirops/lapaudit/engine"
	"github.com/ftahirops/lapaudit/model"
)

var (
	// Colors
	colorRed     = lipgloss.Color("#FF5555")
	colorYellow  = lipgloss.Color("#F1FA8C")
	colorGreen   = lipgloss.Color("#50FA7B")
	colorCyan    = lipgloss.Color("#8BE9FD")
	colorMagenta = lipgloss.Color("#FF79C6")
	colorWhite   = lipgloss.Color("#F8F8F2")
	colorGray    = lipgloss.Color("#6272A4")

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	labelStyle    = lipgloss.NewStyle().Foreground(colorGray)
	valueStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	warnStyle     = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	critStyle     = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(colorGreen)
	headerStyle   = lipgloss.NewStyle().Foreground(colorMagenta).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(colorGray)
)

// testColors are the full-screen fills of the display test, in order.
var testColors = []struct {
	name string
	bg   lipgloss.Color
	fg   lipgloss.Color
}{
	{"White", lipgloss.Color("#FFFFFF"), lipgloss.Color("#000000")},
	{"Red", lipgloss.Color("#FF0000"), lipgloss.Color("#FFFFFF")},
	{"Green", lipgloss.Color("#00FF00"), lipgloss.Color("#000000")},
	{"Blue", lipgloss.Color("#0000FF"), lipgloss.Color("#FFFFFF")},
	{"Black", lipgloss.Color("#000000"), lipgloss.Color("#FFFFFF")},
}

func recommendationStyle(r model.Recommendation) lipgloss.Style {
	switch r {
	case model.RecommendPartsRepair:
		return critStyle
	case model.RecommendHighValue:
		return headerStyle
	case model.RecommendBadBattery:
		return warnStyle
	default:
		return okStyle
	}
}

func smartStyle(s model.SMARTStatus) lipgloss.Style {
	switch s {
	case model.SMARTFailed:
		return critStyle
	case model.SMARTPassed:
		return okStyle
	default:
		return warnStyle
	}
}

func batteryStyle(b model.BatteryPct) lipgloss.Style {
	switch {
	case !b.Known():
		return warnStyle
	case b < engine.BadBatteryPct:
		return critStyle
	case b <= engine.GoodBatteryPct:
		return warnStyle
	default:
		return okStyle
	}
}
