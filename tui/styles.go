package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	PrimaryColor = lipgloss.Color("#7C3AED") // Purple
	AccentColor  = lipgloss.Color("#F59E0B") // Amber

	GainColor    = lipgloss.Color("#10B981") // Green
	LossColor    = lipgloss.Color("#EF4444") // Red
	NeutralColor = lipgloss.Color("#6B7280") // Gray

	BorderColor      = lipgloss.Color("#374151")
	HoldBorderColor  = lipgloss.Color("#10B981")
	TextColor        = lipgloss.Color("#F9FAFB")
	TextMutedColor   = lipgloss.Color("#9CA3AF")
	HiddenNameColor  = lipgloss.Color("#4B5563")
	SignificantColor = lipgloss.Color("#F59E0B")
)

var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	// HoldingPanelStyle frames the chart while a position is open.
	HoldingPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(HoldBorderColor).
				Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextColor)

	HiddenStyle = lipgloss.NewStyle().
			Foreground(HiddenNameColor).
			Italic(true)

	GainStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(GainColor)

	LossStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(LossColor)

	NeutralStyle = lipgloss.NewStyle().
			Foreground(NeutralColor)

	HoldingBadge = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#111827")).
			Background(GainColor).
			Padding(0, 1)

	FlatBadge = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextColor).
			Background(NeutralColor).
			Padding(0, 1)

	SignificantStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(SignificantColor)

	AccentStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentColor)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(LossColor)
)

// signed picks the gain or loss style for v.
func signed(v float64) lipgloss.Style {
	switch {
	case v > 0:
		return GainStyle
	case v < 0:
		return LossStyle
	default:
		return NeutralStyle
	}
}
