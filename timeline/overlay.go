package timeline

// BeatLine is one vertical line of the beat grid
type BeatLine struct {
	Px      float64
	TimeMs  float64
	Measure bool // downbeat, drawn stronger
	Bar     int  // 1-based measure number when Measure is set
}

// Marker is a keyframe as drawn
type Marker struct {
	ID       string
	Px       float64
	TimeMs   float64
	Selected bool
	Dragging bool
	Snapped  bool // glow while the drag is locked onto a beat
	Tooltip  bool // "Snapped!" indicator
}

// Overlay is a per-frame snapshot for the render layer
type Overlay struct {
	WidthPx     float64
	DurationMs  float64
	Beats       []BeatLine
	Keyframes   []Marker
	TrimStartPx float64
	TrimEndPx   float64
	TrimHeld    bool
	TrimSide    TrimSide
	Loop        bool
	PlayheadPx  float64
	Guide       bool // guide line at GuidePx while snapped
	GuidePx     float64
}

// Overlay builds the render snapshot
func (t *Timeline) Overlay() Overlay {
	g := t.Grid()
	r := t.Region()
	o := Overlay{
		WidthPx:     g.WidthPx,
		DurationMs:  g.DurationMs,
		TrimStartPx: g.TimeToPixel(r.StartMs),
		TrimEndPx:   g.TimeToPixel(r.EndMs),
		Loop:        r.LoopEnabled,
		PlayheadPx:  g.TimeToPixel(g.Clamp(t.props.CurrentMs)),
	}
	o.TrimSide, o.TrimHeld = t.trim.Side()

	// measures are every 4 beats, 8 half-beats, or every line at measure resolution
	every := BeatsPerMeasure
	switch g.Resolution {
	case HalfBeat:
		every = 2 * BeatsPerMeasure
	case Measure:
		every = 1
	}
	for i, sec := range g.Beats() {
		ms := sec * 1000
		line := BeatLine{Px: g.TimeToPixel(ms), TimeMs: ms}
		if i%every == 0 {
			line.Measure = true
			line.Bar = i/every + 1
		}
		o.Beats = append(o.Beats, line)
	}

	session, dragging := t.drag.Session()
	for _, kf := range t.props.Keyframes {
		m := Marker{
			ID:       kf.ID,
			TimeMs:   kf.TimestampMs,
			Px:       g.TimeToPixel(kf.TimestampMs),
			Selected: kf.ID == t.selected,
			Tooltip:  t.tooltip.Visible(kf.ID),
		}
		if dragging && kf.ID == session.ID {
			m.Dragging = true
			m.Snapped = session.Snapped
		}
		o.Keyframes = append(o.Keyframes, m)
	}

	if dragging && session.Snapped {
		o.Guide = true
		o.GuidePx = g.TimeToPixel(t.lastMove.TimestampMs)
	}
	return o
}
