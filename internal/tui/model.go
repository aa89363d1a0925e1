package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/janekbaraniewski/co2meter/internal/core"
)

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(150*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// ReadingMsg delivers the outcome of one aggregation run.
type ReadingMsg core.Reading

// DisplayMsg applies display settings after a config reload.
type DisplayMsg struct {
	ShowTrend   bool
	TrendPoints int
}

const trendHeight = 3

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Model shows the last successful value. A failed run leaves the value in
// place and raises a banner until the next success.
type Model struct {
	width  int
	height int

	value     float64
	hasValue  bool
	last      core.Reading // most recent reading, successful or not
	lastGood  core.Reading
	hasRecent bool

	trend       []float64
	trendPoints int
	showTrend   bool
	showHelp    bool

	animFrame  int
	refreshing bool

	display   SegmentDisplay
	onRefresh func()
}

func NewModel(showTrend bool, trendPoints int) Model {
	if trendPoints <= 0 {
		trendPoints = 60
	}
	return Model{
		showTrend:   showTrend,
		trendPoints: trendPoints,
		refreshing:  true,
		display:     SegmentDisplay{Ghost: true},
	}
}

// SetOnRefresh sets a callback invoked when the user requests a manual refresh.
func (m *Model) SetOnRefresh(fn func()) {
	m.onRefresh = fn
}

func (m Model) Init() tea.Cmd { return tickCmd() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.animFrame++
		return m, tickCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ReadingMsg:
		return m.applyReading(core.Reading(msg)), nil

	case DisplayMsg:
		m.showTrend = msg.ShowTrend
		if msg.TrendPoints > 0 {
			m.trendPoints = msg.TrendPoints
			m.trend = trimTrend(m.trend, m.trendPoints)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) applyReading(r core.Reading) Model {
	m.refreshing = false
	m.last = r
	m.hasRecent = true
	if v, ok := r.Metric(); ok {
		m.value = v
		m.hasValue = true
		m.lastGood = r
		m.trend = trimTrend(append(m.trend, v), m.trendPoints)
	}
	return m
}

func trimTrend(values []float64, limit int) []float64 {
	if len(values) <= limit {
		return values
	}
	return append([]float64(nil), values[len(values)-limit:]...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m = m.requestRefresh()
	case "t":
		m.showTrend = !m.showTrend
	case "?":
		m.showHelp = true
	}
	return m, nil
}

func (m Model) requestRefresh() Model {
	m.refreshing = true
	if m.onRefresh != nil {
		m.onRefresh()
	}
	return m
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.showHelp {
		return m.renderHelp()
	}

	header := m.renderHeader()
	banner := m.renderBanner()
	footer := m.renderFooter()
	trend := ""
	if m.showTrend {
		trend = m.renderTrend()
	}

	used := lipgloss.Height(header) + lipgloss.Height(footer)
	if banner != "" {
		used += lipgloss.Height(banner)
	}
	if trend != "" {
		used += lipgloss.Height(trend)
	}
	bodyH := max(m.height-used, 1)
	body := lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center, m.renderValue())

	parts := []string{header}
	if banner != "" {
		parts = append(parts, banner)
	}
	parts = append(parts, body)
	if trend != "" {
		parts = append(parts, trend)
	}
	parts = append(parts, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	left := headerBrandStyle.Render("co2meter") + " " + headerStyle.Render("CO2 saved")
	right := dimStyle.Render("idle")
	if m.refreshing {
		right = labelStyle.Render(spinnerFrames[m.animFrame%len(spinnerFrames)] + " refreshing")
	}
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return fitWidth(left+strings.Repeat(" ", gap)+right, m.width)
}

// renderBanner is empty unless the most recent run failed.
func (m Model) renderBanner() string {
	if !m.hasRecent || m.last.OK() {
		return ""
	}
	style := errorBannerStyle
	switch m.last.Status {
	case core.StatusAuth:
		style = authBannerStyle
	case core.StatusConfig:
		style = configBannerStyle
	}
	text := fmt.Sprintf("%s: %s", m.last.Status, m.last.Message)
	inner := max(m.width-2, 1)
	return style.Width(m.width).Render(ansi.Truncate(text, inner, "…"))
}

func (m Model) renderValue() string {
	if !m.hasValue {
		return dimStyle.Render("waiting for first reading…")
	}
	unit := labelStyle.Render("tCO2")
	if m.display.Width(m.value) > m.width {
		whole, frac, last := SplitValue(m.value)
		return segmentLastStyle.Render(whole+"."+frac+last) + " " + unit
	}
	return lipgloss.JoinVertical(lipgloss.Right, m.display.Render(m.value), unit)
}

func (m Model) renderTrend() string {
	if len(m.trend) < 2 {
		return ""
	}
	w := min(m.trendPoints, max(m.width-2, 1))
	sl := sparkline.New(w, trendHeight, sparkline.WithStyle(trendStyle))
	for _, v := range m.trend {
		sl.Push(v)
	}
	sl.Draw()
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, sl.View())
}

func (m Model) renderFooter() string {
	var info string
	if m.hasValue {
		r := m.lastGood
		info = fmt.Sprintf("updated %s · %d rows · %d pages · %.1f kg fuel · field %s",
			r.Timestamp.Format("15:04:05"), r.Result.Rows, r.Result.Pages, r.Result.MassKg, r.Result.FieldKey)
	}
	keys := "r refresh · t trend · ? help · q quit"
	line := info
	if line != "" {
		line += "   "
	}
	line += keys
	return footerStyle.Width(m.width).Render(fitWidth(line, m.width))
}

func (m Model) renderHelp() string {
	lines := []string{
		headerStyle.Render("co2meter"),
		"",
		labelStyle.Render("The display shows tonnes of CO2 saved, derived from the fuel"),
		labelStyle.Render("consumption totals of the configured fleet."),
		"",
		"  r        refresh now",
		"  t        toggle the trend line",
		"  ?        this help",
		"  q        quit",
		"",
		dimStyle.Render("press any key to close"),
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, strings.Join(lines, "\n"))
}

func fitWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) > width {
		return ansi.Truncate(s, width, "…")
	}
	return s
}
