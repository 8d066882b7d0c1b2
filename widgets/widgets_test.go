package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

func TestStripLayers(t *testing.T) {
	plain := lipgloss.NewStyle()
	s := NewStrip(6, '-', plain)
	s.Set(1, '|', plain, 1)
	s.Set(1, ':', plain, 0) // lower layer loses
	s.Set(2, 'x', plain, 2)
	s.Set(9, 'y', plain, 5)
	s.Fill(4, 10, '=', plain, 1)

	if got := s.String(); got != "-|x-==" {
		t.Fatalf("strip = %q", got)
	}
	if s.At(-1) != 0 || s.At(2) != 'x' {
		t.Fatalf("At mismatch")
	}
}

func TestStripTextStaysInside(t *testing.T) {
	plain := lipgloss.NewStyle()
	s := NewStrip(8, ' ', plain)
	s.Text(6, "abc", plain, 1)
	if got := s.String(); got != "     abc" {
		t.Fatalf("strip = %q", got)
	}
}

func TestRenderKeyHelp(t *testing.T) {
	off := key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "hidden"))
	off.SetEnabled(false)
	out := RenderKeyHelp([]KeySection{{
		Title: "Transport",
		Keys: []key.Binding{
			key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
			off,
		},
	}})
	if !strings.Contains(out, "Transport") || !strings.Contains(out, "space") {
		t.Fatalf("help = %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("disabled binding rendered: %q", out)
	}
}
