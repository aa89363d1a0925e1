package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// FractionDigits is the number of decimals shown on the display.
const FractionDigits = 3

// segments lists, per glyph, whether segments a..g are lit:
//
//	 aaa
//	f   b
//	 ggg
//	e   c
//	 ddd
var segments = map[rune][7]bool{
	'0': {true, true, true, true, true, true, false},
	'1': {false, true, true, false, false, false, false},
	'2': {true, true, false, true, true, false, true},
	'3': {true, true, true, true, false, false, true},
	'4': {false, true, true, false, false, true, true},
	'5': {true, false, true, true, false, true, true},
	'6': {true, false, true, true, true, true, true},
	'7': {true, true, true, false, false, false, false},
	'8': {true, true, true, true, true, true, true},
	'9': {true, true, true, true, false, true, true},
	'-': {false, false, false, false, false, false, true},
}

// Segments reports which of the a..g segments are lit for ch. Unknown glyphs
// are blank.
func Segments(ch rune) [7]bool {
	return segments[ch]
}

// SplitValue formats v with three decimals and splits it into the integer
// part (no leading zeros), the first two decimals and the last decimal.
// NaN and infinities come back as dashes.
func SplitValue(v float64) (whole, frac, last string) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-", strings.Repeat("-", FractionDigits-1), "-"
	}
	s := fmt.Sprintf("%.*f", FractionDigits, v)
	whole, decimals, _ := strings.Cut(s, ".")

	sign := ""
	if strings.HasPrefix(whole, "-") {
		sign, whole = "-", whole[1:]
	}
	whole = strings.TrimLeft(whole, "0")
	if whole == "" {
		whole = "0"
	}
	return sign + whole, decimals[:FractionDigits-1], decimals[FractionDigits-1:]
}

type digitSize struct {
	horiz int // width of a horizontal segment
	vert  int // height of a vertical segment
}

func (s digitSize) width() int  { return s.horiz + 2 }
func (s digitSize) height() int { return 2*s.vert + 3 }

var (
	normalDigit = digitSize{horiz: 2, vert: 1}
	largeDigit  = digitSize{horiz: 3, vert: 2}
)

// SegmentDisplay draws numbers as seven-segment glyphs. With Ghost set, unlit
// segments are drawn dimmed the way a physical display shows them.
type SegmentDisplay struct {
	Ghost bool
}

// Width is the number of columns Render needs for v.
func (d SegmentDisplay) Width(v float64) int {
	whole, frac, _ := SplitValue(v)
	n := len(whole) + len(frac)
	gaps := n + 1 // between glyphs, including the dot and the last digit
	return n*normalDigit.width() + 1 + largeDigit.width() + gaps
}

// Render draws v with three decimals. The last decimal is drawn larger and
// highlighted.
func (d SegmentDisplay) Render(v float64) string {
	whole, frac, last := SplitValue(v)

	var glyphs []string
	for _, ch := range whole {
		glyphs = append(glyphs, d.digit(ch, normalDigit, segmentOnStyle))
	}
	glyphs = append(glyphs, d.dot(normalDigit))
	for _, ch := range frac {
		glyphs = append(glyphs, d.digit(ch, normalDigit, segmentOnStyle))
	}
	glyphs = append(glyphs, d.digit([]rune(last)[0], largeDigit, segmentLastStyle))

	spaced := make([]string, 0, 2*len(glyphs))
	for i, g := range glyphs {
		if i > 0 {
			spaced = append(spaced, " ")
		}
		spaced = append(spaced, g)
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, spaced...)
}

func (d SegmentDisplay) paint(lit bool, s string, on lipgloss.Style) string {
	if lit {
		return on.Render(s)
	}
	if d.Ghost {
		return segmentGhostStyle.Render(s)
	}
	return strings.Repeat(" ", lipgloss.Width(s))
}

func (d SegmentDisplay) digit(ch rune, size digitSize, on lipgloss.Style) string {
	seg := Segments(ch)
	bar := func(lit bool) string {
		return " " + d.paint(lit, strings.Repeat("━", size.horiz), on) + " "
	}
	sides := func(left, right bool) string {
		return d.paint(left, "┃", on) + strings.Repeat(" ", size.horiz) + d.paint(right, "┃", on)
	}

	lines := make([]string, 0, size.height())
	lines = append(lines, bar(seg[0]))
	for range size.vert {
		lines = append(lines, sides(seg[5], seg[1]))
	}
	lines = append(lines, bar(seg[6]))
	for range size.vert {
		lines = append(lines, sides(seg[4], seg[2]))
	}
	lines = append(lines, bar(seg[3]))
	return strings.Join(lines, "\n")
}

// dot is a one-column glyph with the point on the bottom row.
func (d SegmentDisplay) dot(size digitSize) string {
	lines := make([]string, size.height())
	for i := range lines {
		lines[i] = " "
	}
	lines[len(lines)-1] = segmentOnStyle.Render("▪")
	return strings.Join(lines, "\n")
}
