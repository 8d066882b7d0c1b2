package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"go-formation/widgets"
)

type keyMap struct {
	Play       key.Binding
	Home       key.Binding
	Resolution key.Binding
	Loop       key.Binding
	Click      key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	Left       key.Binding
	Right      key.Binding
	Add        key.Binding
	Delete     key.Binding
	Save       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Play:       key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "play/pause")),
		Home:       key.NewBinding(key.WithKeys("home", "0"), key.WithHelp("0", "to start")),
		Resolution: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "snap resolution")),
		Loop:       key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "loop trim")),
		Click:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "metronome")),
		ZoomIn:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:    key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "scroll back")),
		Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "scroll forward")),
		Add:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "keyframe at play head")),
		Delete:     key.NewBinding(key.WithKeys("x", "delete", "backspace"), key.WithHelp("x", "delete keyframe")),
		Save:       key.NewBinding(key.WithKeys("s", "ctrl+s"), key.WithHelp("s", "save formation")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Resolution, k.Loop, k.ZoomIn, k.ZoomOut, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	var out [][]key.Binding
	for _, sec := range k.sections() {
		out = append(out, sec.Keys)
	}
	return out
}

func (k keyMap) sections() []widgets.KeySection {
	return []widgets.KeySection{
		{Title: "Transport", Keys: []key.Binding{k.Play, k.Home, k.Click, k.Loop}},
		{Title: "View", Keys: []key.Binding{k.ZoomIn, k.ZoomOut, k.Left, k.Right}},
		{Title: "Keyframes", Keys: []key.Binding{k.Add, k.Delete, k.Resolution, k.Save}},
		{Title: "Mouse", Keys: []key.Binding{
			mouseHelp("click", "seek / select"),
			mouseHelp("drag", "move keyframe or trim handle"),
			mouseHelp("dbl-click", "add keyframe"),
			mouseHelp("wheel", "scroll, ctrl+wheel zoom"),
		}},
		{Keys: []key.Binding{k.Help, k.Quit}},
	}
}

// mouseHelp is a help-only binding; no key message ever matches it
func mouseHelp(gesture, desc string) key.Binding {
	return key.NewBinding(key.WithKeys("mouse:"+gesture), key.WithHelp(gesture, desc))
}
