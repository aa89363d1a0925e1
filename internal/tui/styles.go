package tui

import "github.com/charmbracelet/lipgloss"

// ─── Color Palette (Catppuccin Mocha) ───────────────────────────────────────

var (
	colorBase     = lipgloss.Color("#1E1E2E") // background
	colorSurface0 = lipgloss.Color("#313244") // unlit segments
	colorSurface1 = lipgloss.Color("#45475A")
	colorText     = lipgloss.Color("#CDD6F4") // lit segments
	colorSubtext  = lipgloss.Color("#A6ADC8")
	colorDim      = lipgloss.Color("#585B70")

	colorAccent   = lipgloss.Color("#CBA6F7")
	colorLavender = lipgloss.Color("#B4BEFE")
	colorGreen    = lipgloss.Color("#39D353") // emphasised last digit
	colorTeal     = lipgloss.Color("#94E2D5")
	colorRed      = lipgloss.Color("#F38BA8")
	colorPeach    = lipgloss.Color("#FAB387")
	colorYellow   = lipgloss.Color("#F9E2AF")
)

// ─── Reusable Styles ────────────────────────────────────────────────────────

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorLavender)

	headerBrandStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorAccent)

	dimStyle = lipgloss.NewStyle().Foreground(colorDim)

	labelStyle = lipgloss.NewStyle().Foreground(colorSubtext)

	segmentOnStyle    = lipgloss.NewStyle().Foreground(colorText)
	segmentGhostStyle = lipgloss.NewStyle().Foreground(colorSurface0)
	segmentLastStyle  = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)

	trendStyle = lipgloss.NewStyle().Foreground(colorTeal)

	errorBannerStyle = lipgloss.NewStyle().
				Foreground(colorBase).
				Background(colorRed).
				Bold(true).
				Padding(0, 1)

	authBannerStyle = errorBannerStyle.Background(colorPeach)

	configBannerStyle = errorBannerStyle.Background(colorYellow)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			BorderTop(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(colorSurface1)
)
