package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Cell is one terminal column of a strip
type Cell struct {
	Rune  rune
	Style lipgloss.Style
	z     int
}

// Strip is a single row of cells. Later layers draw over earlier ones when
// their z is at least as high.
type Strip struct {
	cells []Cell
}

// NewStrip creates a strip of width cells filled with r
func NewStrip(width int, r rune, style lipgloss.Style) *Strip {
	if width < 0 {
		width = 0
	}
	s := &Strip{cells: make([]Cell, width)}
	for i := range s.cells {
		s.cells[i] = Cell{Rune: r, Style: style}
	}
	return s
}

func (s *Strip) Width() int {
	return len(s.cells)
}

// Set draws r at col. Columns outside the strip are ignored.
func (s *Strip) Set(col int, r rune, style lipgloss.Style, z int) {
	if col < 0 || col >= len(s.cells) || z < s.cells[col].z {
		return
	}
	s.cells[col] = Cell{Rune: r, Style: style, z: z}
}

// Fill draws r on [from, to)
func (s *Strip) Fill(from, to int, r rune, style lipgloss.Style, z int) {
	for col := max(from, 0); col < min(to, len(s.cells)); col++ {
		s.Set(col, r, style, z)
	}
}

// Text writes a label starting at col, shifted left to stay inside the strip
func (s *Strip) Text(col int, text string, style lipgloss.Style, z int) {
	runes := []rune(text)
	if over := col + len(runes) - len(s.cells); over > 0 {
		col -= over
	}
	for i, r := range runes {
		s.Set(col+i, r, style, z)
	}
}

// At returns the rune at col, or 0 outside the strip
func (s *Strip) At(col int) rune {
	if col < 0 || col >= len(s.cells) {
		return 0
	}
	return s.cells[col].Rune
}

// String returns the unstyled runes
func (s *Strip) String() string {
	var out strings.Builder
	for _, c := range s.cells {
		out.WriteRune(c.Rune)
	}
	return out.String()
}

// Render returns the styled row
func (s *Strip) Render() string {
	var out strings.Builder
	for _, c := range s.cells {
		out.WriteString(c.Style.Render(string(c.Rune)))
	}
	return out.String()
}
