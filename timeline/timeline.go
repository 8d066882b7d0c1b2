package timeline

import (
	"math"

	"go-formation/debug"
)

// Hit radii for markers and trim handles
const (
	HitRadiusPx    = 6.0
	HandleRadiusPx = 6.0
)

// Props is everything the host feeds the timeline. The host owns keyframes,
// trim bounds and resolution; the timeline only requests changes.
type Props struct {
	AudioURL    string
	BeatMap     []float64 // seconds; nil when no detection is available
	BPM         float64
	DurationMs  float64
	CurrentMs   float64
	Playing     bool
	Zoom        float64 // pixels per second, owned by the waveform renderer
	Keyframes   []Keyframe
	TrimStartMs float64
	TrimEndMs   float64 // <= 0 means the end of the track
	LoopEnabled bool
	Resolution  Resolution
}

// Handlers are the requests the timeline sends back to the host. Nil fields
// are skipped.
type Handlers struct {
	Seek                 func(ms float64)
	KeyframeMove         func(id string, ms float64)
	KeyframeAdd          func(ms float64)
	KeyframeSelect       func(id string)
	SnapResolutionChange func(res Resolution)
	TrimChange           func(startMs, endMs float64)
	KeyframeSnapped      func(id string)
}

// Lane is the horizontal strip a pointer event landed in
type Lane int

const (
	LaneRuler Lane = iota
	LaneKeyframes
	LaneTrim
)

// Timeline translates pointer input and playback ticks into host requests
type Timeline struct {
	props   Props
	widthPx float64
	on      Handlers

	drag     KeyframeDrag
	lastMove KeyframeMove
	trim     TrimDrag
	loop     Loop
	metro    Metronome
	tooltip  *SnapTooltip
	selected string
}

// New creates a timeline. sched drives the snap tooltip clear and should hand
// callbacks back to the caller's event loop, as ChanScheduler does.
func New(props Props, on Handlers, sched Scheduler) *Timeline {
	if props.Resolution == "" {
		props.Resolution = Beat
	}
	return &Timeline{
		props:   props,
		on:      on,
		tooltip: NewSnapTooltip(sched),
	}
}

// Grid returns the current mapping context
func (t *Timeline) Grid() Grid {
	return Grid{
		DurationMs: t.props.DurationMs,
		WidthPx:    t.widthPx,
		BPM:        t.props.BPM,
		Resolution: t.props.Resolution,
		BeatMap:    t.props.BeatMap,
	}
}

func (t *Timeline) Props() Props {
	return t.props
}

// Region returns the trim region with defaults applied. It may violate the
// minimum width if the host supplied bad bounds.
func (t *Timeline) Region() TrimRegion {
	end := t.props.TrimEndMs
	if end <= 0 {
		end = t.props.DurationMs
	}
	return TrimRegion{
		StartMs:     math.Max(0, t.props.TrimStartMs),
		EndMs:       end,
		LoopEnabled: t.props.LoopEnabled,
	}
}

// SetProps replaces the host inputs. An active keyframe drag is re-evaluated
// when the grid moved underneath it.
func (t *Timeline) SetProps(p Props) {
	if p.Resolution == "" {
		p.Resolution = Beat
	}
	before := t.Grid()
	t.props = p
	t.regrid(before)
}

// Resize sets the container width in pixels
func (t *Timeline) Resize(widthPx float64) {
	if widthPx < 0 || !finite(widthPx) {
		widthPx = 0
	}
	before := t.Grid()
	t.widthPx = widthPx
	t.regrid(before)
}

func (t *Timeline) Width() float64 {
	return t.widthPx
}

func (t *Timeline) regrid(before Grid) {
	g := t.Grid()
	if before.Valid() && g.Valid() {
		// pointer positions held by a drag follow the new px/ms scale
		if k := (g.WidthPx / g.DurationMs) / (before.WidthPx / before.DurationMs); k != 1 {
			t.drag.Rescale(k)
			t.trim.Rescale(k)
		}
	}
	if !t.drag.Active() || before.sameGeometry(g) {
		return
	}
	if mv, ok := t.drag.Reevaluate(g); ok {
		t.emitMove(mv)
	}
}

// CycleResolution requests the next snap resolution from the host
func (t *Timeline) CycleResolution() {
	t.RequestResolution(t.props.Resolution.Next())
}

// RequestResolution asks the host to switch resolution
func (t *Timeline) RequestResolution(res Resolution) {
	debug.Log("snap", "resolution %s -> %s", t.props.Resolution, res)
	if t.on.SnapResolutionChange != nil {
		t.on.SnapResolutionChange(res)
	}
}

// HitKind identifies what a pointer landed on
type HitKind int

const (
	HitNone HitKind = iota
	HitKeyframe
	HitTrimHandle
)

// Hit is the result of HitTest
type Hit struct {
	Kind     HitKind
	Keyframe Keyframe
	Side     TrimSide
}

// HitTest finds the keyframe marker or trim handle under x in lane
func (t *Timeline) HitTest(x float64, lane Lane) Hit {
	g := t.Grid()
	if !g.Valid() {
		return Hit{}
	}
	switch lane {
	case LaneKeyframes:
		best, bestDist := -1, HitRadiusPx
		for i, kf := range t.props.Keyframes {
			d := math.Abs(g.TimeToPixel(kf.TimestampMs) - x)
			if d <= bestDist {
				best, bestDist = i, d
			}
		}
		if best >= 0 {
			return Hit{Kind: HitKeyframe, Keyframe: t.props.Keyframes[best]}
		}
	case LaneTrim:
		r := t.Region()
		ds := math.Abs(g.TimeToPixel(r.StartMs) - x)
		de := math.Abs(g.TimeToPixel(r.EndMs) - x)
		if ds > HandleRadiusPx && de > HandleRadiusPx {
			return Hit{}
		}
		// overlapping handles: the side of the pointer decides
		if ds < de || (ds == de && x <= g.TimeToPixel(r.StartMs)) {
			return Hit{Kind: HitTrimHandle, Side: TrimStart}
		}
		return Hit{Kind: HitTrimHandle, Side: TrimEnd}
	}
	return Hit{}
}

// PointerDown starts a keyframe or trim drag, or seeks on empty space. A press
// while any drag is active is ignored.
func (t *Timeline) PointerDown(x float64, lane Lane) {
	if t.drag.Active() || t.trim.Active() {
		debug.Log("input", "pointer down x=%.1f ignored: drag active", x)
		return
	}

	hit := t.HitTest(x, lane)
	switch hit.Kind {
	case HitKeyframe:
		t.selected = hit.Keyframe.ID
		if t.on.KeyframeSelect != nil {
			t.on.KeyframeSelect(hit.Keyframe.ID)
		}
		t.drag.Begin(hit.Keyframe.ID, x, hit.Keyframe.TimestampMs)
		t.lastMove = KeyframeMove{ID: hit.Keyframe.ID, TimestampMs: hit.Keyframe.TimestampMs}
	case HitTrimHandle:
		t.trim.Begin(hit.Side, x, t.Region())
	default:
		g := t.Grid()
		if !g.Valid() {
			return
		}
		ms := g.PixelToTime(x)
		debug.Log("input", "seek x=%.1f t=%.1f", x, ms)
		if t.on.Seek != nil {
			t.on.Seek(ms)
		}
	}
}

// PointerMove advances whichever drag is active
func (t *Timeline) PointerMove(x float64) {
	g := t.Grid()
	if mv, ok := t.drag.Move(x, g); ok {
		t.emitMove(mv)
		return
	}
	if r, ok := t.trim.Move(x, t.Region(), g); ok {
		t.props.TrimStartMs, t.props.TrimEndMs = r.StartMs, r.EndMs
		if t.on.TrimChange != nil {
			t.on.TrimChange(r.StartMs, r.EndMs)
		}
	}
}

// PointerUp ends the active gesture wherever the pointer is. A release that
// lands on a snapped frame shows the snap tooltip for that keyframe.
func (t *Timeline) PointerUp(x float64) {
	if t.drag.Active() || t.trim.Active() {
		t.PointerMove(x)
	}
	if id, snapped, ok := t.drag.End(); ok {
		if snapped {
			t.tooltip.Show(id)
			if t.on.KeyframeSnapped != nil {
				t.on.KeyframeSnapped(id)
			}
		}
		t.lastMove = KeyframeMove{}
	}
	t.trim.End()
}

// DoubleClick requests a new keyframe at x, magnetized like a drag
func (t *Timeline) DoubleClick(x float64, lane Lane) {
	g := t.Grid()
	if !g.Valid() || t.drag.Active() || t.trim.Active() {
		return
	}
	if lane == LaneKeyframes {
		if hit := t.HitTest(x, lane); hit.Kind == HitKeyframe {
			return
		}
	}
	ms, _ := g.Magnet(g.PixelToTime(x))
	debug.Log("input", "add keyframe x=%.1f t=%.1f", x, ms)
	if t.on.KeyframeAdd != nil {
		t.on.KeyframeAdd(ms)
	}
}

// Tick feeds one playback time from the player. It loops the trim region and
// returns the metronome beats crossed since the previous tick.
func (t *Timeline) Tick(currentMs float64, playing bool) []Click {
	t.props.CurrentMs, t.props.Playing = currentMs, playing

	clicks := t.metro.Tick(currentMs, playing, t.Grid())
	if target, ok := t.loop.Tick(currentMs, playing, t.Region()); ok {
		if t.on.Seek != nil {
			t.on.Seek(target)
		}
	}
	return clicks
}

func (t *Timeline) emitMove(mv KeyframeMove) {
	t.lastMove = mv
	if t.on.KeyframeMove != nil {
		t.on.KeyframeMove(mv.ID, mv.TimestampMs)
	}
}

// Tooltip exposes the snap tooltip state
func (t *Timeline) Tooltip() *SnapTooltip {
	return t.tooltip
}

func (t *Timeline) Selected() string {
	return t.selected
}

func (t *Timeline) Dragging() (DragSession, bool) {
	return t.drag.Session()
}

func (t *Timeline) Trimming() (TrimSide, bool) {
	return t.trim.Side()
}
