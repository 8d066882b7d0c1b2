package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-formation/timeline"
	"go-formation/widgets"
)

// draw layers, low to high
const (
	zGrid = iota
	zRegion
	zGuide
	zMarker
	zHandle
	zPlayhead
	zLabel
)

const snappedLabel = "Snapped!"

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	th := m.theme
	sym := th.Symbols
	headerStyle := lipgloss.NewStyle().Foreground(th.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())
	fgStyle := lipgloss.NewStyle().Foreground(th.FG())
	accentStyle := lipgloss.NewStyle().Foreground(th.Accent())
	cursorStyle := lipgloss.NewStyle().Foreground(th.Cursor()).Bold(true)
	glowStyle := lipgloss.NewStyle().Foreground(th.Success()).Bold(true)
	handleStyle := lipgloss.NewStyle().Foreground(th.Warning()).Bold(true)
	playheadStyle := lipgloss.NewStyle().Foreground(th.Active()).Bold(true)
	tooltipStyle := lipgloss.NewStyle().Foreground(th.BG()).Background(th.Success())

	o := m.tl.Overlay()
	cols := m.view.cols
	if cols <= 0 {
		cols = 80
	}

	ruler := widgets.NewStrip(cols, ' ', dimStyle)
	lane := widgets.NewStrip(cols, ' ', dimStyle)
	trim := widgets.NewStrip(cols, sym.Outside, dimStyle)
	status := widgets.NewStrip(cols, ' ', dimStyle)

	for _, b := range o.Beats {
		col := m.column(b.Px)
		if b.Measure {
			ruler.Set(col, sym.Measure, accentStyle, zGrid)
			ruler.Text(col+1, fmt.Sprint(b.Bar), fgStyle, zGrid)
			lane.Set(col, sym.Beat, accentStyle, zGrid)
		} else {
			ruler.Set(col, sym.Beat, dimStyle, zGrid)
			lane.Set(col, sym.Empty, dimStyle, zGrid)
		}
	}

	// trim region
	fill := dimStyle
	if o.Loop {
		fill = accentStyle
	}
	startCol, endCol := m.column(o.TrimStartPx), m.column(o.TrimEndPx)
	trim.Fill(startCol, endCol+1, sym.TrimFill, fill, zRegion)
	startStyle, endStyle := handleStyle, handleStyle
	if o.TrimHeld {
		if o.TrimSide == timeline.TrimStart {
			startStyle = startStyle.Reverse(true)
		} else {
			endStyle = endStyle.Reverse(true)
		}
	}
	trim.Set(startCol, sym.TrimStart, startStyle, zHandle)
	trim.Set(endCol, sym.TrimEnd, endStyle, zHandle)

	if o.Guide {
		col := m.column(o.GuidePx)
		ruler.Set(col, sym.Guide, glowStyle, zGuide)
		lane.Set(col, sym.Guide, glowStyle, zGuide)
	}

	for _, mk := range o.Keyframes {
		col := m.column(mk.Px)
		glyph, style := sym.Keyframe, fgStyle
		switch {
		case mk.Snapped:
			glyph, style = sym.Snapped, glowStyle
		case mk.Selected:
			glyph, style = sym.Selected, cursorStyle
		}
		lane.Set(col, glyph, style, zMarker)
		if mk.Tooltip {
			status.Text(col, snappedLabel, tooltipStyle, zLabel)
		}
	}

	ruler.Set(m.column(o.PlayheadPx), sym.Playhead, playheadStyle, zPlayhead)

	var out strings.Builder
	out.WriteString(headerStyle.Render(m.header()))
	out.WriteString("\n")
	out.WriteString(ruler.Render())
	out.WriteString("\n")
	out.WriteString(lane.Render())
	out.WriteString("\n")
	out.WriteString(trim.Render())
	out.WriteString("\n")
	out.WriteString(status.Render())
	out.WriteString("\n")
	if m.host.status != "" {
		out.WriteString(dimStyle.Render(m.host.status))
	}
	out.WriteString("\n\n")
	if m.showHelp {
		out.WriteString(dimStyle.Render(widgets.RenderKeyHelp(m.keys.sections())))
	} else {
		out.WriteString(m.help.View(m.keys))
	}

	return out.String()
}

func (m Model) header() string {
	p := m.tl.Props()
	state := "STOP"
	if p.Playing {
		state = "PLAY"
	}
	flags := ""
	if p.LoopEnabled {
		flags += " " + string(m.theme.Symbols.Loop)
	}
	if m.host.clickOn {
		flags += " click"
	}
	source := "grid"
	if len(p.BeatMap) > 0 && p.Resolution == timeline.Beat {
		source = "map"
	}
	r := m.tl.Region()
	return fmt.Sprintf("go-formation  %s  %s / %s  %3.0fbpm  snap:%s(%s)  trim:%s-%s  kf:%d%s",
		state,
		formatMs(p.CurrentMs), formatMs(p.DurationMs),
		p.BPM, p.Resolution.Label(), source,
		formatMs(r.StartMs), formatMs(r.EndMs),
		len(p.Keyframes), flags)
}
