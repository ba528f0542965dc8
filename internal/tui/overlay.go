package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var cardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("36")).
	Padding(1, 2)

// overlay draws card centred over base, keeping the base visible around it.
// Without a known terminal size the card is appended below the base.
func overlay(base, card string, width, height int) string {
	framed := cardStyle.Render(card)
	if width <= 0 || height <= 0 {
		return base + "\n\n" + framed
	}
	under := canvas(base, width, height)
	top := canvas(lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, framed), width, height)
	out := make([]string, height)
	for i := range out {
		start, end, ok := inkBounds(top[i], width)
		if !ok {
			out[i] = under[i]
			continue
		}
		left := ansi.Truncate(under[i], start, "")
		mid := ansi.Truncate(skipCols(top[i], start), end-start, "")
		right := skipCols(under[i], end)
		out[i] = pad(left+mid+right, width)
	}
	return strings.Join(out, "\n")
}

// inkBounds finds the first and last non-blank columns of a rendered line.
func inkBounds(line string, width int) (int, int, bool) {
	plain := ansi.Strip(ansi.Truncate(line, width, ""))
	trimmed := strings.TrimRight(plain, " ")
	start := len(trimmed) - len(strings.TrimLeft(trimmed, " "))
	end := ansi.StringWidth(trimmed)
	if trimmed == "" || start >= end {
		return 0, 0, false
	}
	return start, end, true
}

func canvas(s string, width, height int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i := range lines {
		lines[i] = pad(lines[i], width)
	}
	return lines
}

func skipCols(s string, cols int) string {
	if cols <= 0 {
		return s
	}
	return strings.TrimPrefix(s, ansi.Truncate(s, cols, ""))
}

func pad(s string, width int) string {
	s = ansi.Truncate(s, width, "")
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
