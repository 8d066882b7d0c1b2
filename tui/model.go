package tui

import (
	"math"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"go-formation/beatmap"
	"go-formation/config"
	"go-formation/debug"
	"go-formation/metrics"
	"go-formation/midi"
	"go-formation/player"
	"go-formation/project"
	"go-formation/theme"
	"go-formation/timeline"
)

// Screen geometry
const (
	CellPx            = 8.0 // timeline pixels per terminal column
	FrameInterval     = time.Second / 30
	DoubleClickWindow = 400 * time.Millisecond

	rulerRow    = 1
	keyframeRow = 2
	trimRow     = 3

	scrollCells = 8
	zoomStep    = 1.25
	minZoom     = 5.0
	maxZoom     = 800.0
)

// Options wires the model to its collaborators. Clicker and Taps are optional.
type Options struct {
	Config    *config.Config
	BeatMap   beatmap.Map
	Transport *player.Transport
	Metrics   *metrics.Metrics
	Theme     *theme.Theme
	Clicker   *midi.Clicker
	Taps      <-chan midi.NoteEvent
	Devices   <-chan midi.DeviceEvent
	Store     *project.Store     // nil disables saving formations
	Project   string             // project saved to by the save key
	Formation *project.Formation // initial formation, from the last save
	Persist   bool               // save preferences on quit
	Now       func() time.Time
}

type mouseState struct {
	down      bool
	lane      timeline.Lane
	double    bool
	lastPress time.Time
	lastCol   int
	lastLane  timeline.Lane
}

type viewport struct {
	cols     int
	scrollPx float64
}

type Model struct {
	host     *host
	tl       *timeline.Timeline
	timers   chan func()
	cfg      *config.Config
	persist  bool
	theme    *theme.Theme
	clicker  *midi.Clicker
	taps     <-chan midi.NoteEvent
	devices  <-chan midi.DeviceEvent
	store    *project.Store
	project  string
	keys     keyMap
	help     help.Model
	showHelp bool
	view     *viewport
	mouse    *mouseState
	now      func() time.Time
	quitting bool
}

type frameMsg time.Time

// timerMsg carries a scheduled callback back onto the update loop
type timerMsg func()

type tapMsg midi.NoteEvent

type DeviceEventMsg midi.DeviceEvent

func NewModel(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Theme == nil {
		opts.Theme = theme.New(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Transport == nil {
		opts.Transport = player.NewTransport(cfg.Timeline.DurationMs)
	}

	res, err := timeline.ParseResolution(cfg.Timeline.Resolution)
	if err != nil {
		debug.Error("config", "%v, using %s", err, timeline.Beat)
		res = timeline.Beat
	}

	bpm := cfg.Timeline.BPM
	if opts.BeatMap.BPM > 0 {
		bpm = opts.BeatMap.BPM
	}
	duration := opts.Transport.Duration()
	if duration <= 0 {
		duration = cfg.Timeline.DurationMs
		opts.Transport.SetDuration(duration)
	}
	if opts.Transport.Zoom() <= 0 {
		opts.Transport.SetZoom(cfg.Timeline.Zoom)
	}

	props := timeline.Props{
		AudioURL:    opts.Transport.URL(),
		BeatMap:     opts.BeatMap.Beats,
		BPM:         bpm,
		DurationMs:  duration,
		Zoom:        opts.Transport.Zoom(),
		LoopEnabled: cfg.Timeline.LoopEnabled,
		Resolution:  res,
	}

	if f := opts.Formation; f != nil {
		applyFormation(&props, f)
	}

	h := newHost(props, opts.Transport, opts.Metrics)
	h.metrics.SetKeyframes(len(props.Keyframes))
	h.clickOn = opts.Clicker != nil

	timers := make(chan func(), 8)
	tl := timeline.New(h.current(), h.handlers(), timeline.ChanScheduler(timers))

	return Model{
		host:    h,
		tl:      tl,
		timers:  timers,
		cfg:     cfg,
		persist: opts.Persist,
		theme:   opts.Theme,
		clicker: opts.Clicker,
		taps:    opts.Taps,
		devices: opts.Devices,
		store:   opts.Store,
		project: opts.Project,
		keys:    newKeyMap(),
		help:    help.New(),
		view:    &viewport{},
		mouse:   &mouseState{},
		now:     opts.Now,
	}
}

func frameTick() tea.Cmd {
	return tea.Tick(FrameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func ListenForTimers(timers <-chan func()) tea.Cmd {
	return func() tea.Msg {
		return timerMsg(<-timers)
	}
}

func ListenForTaps(taps <-chan midi.NoteEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-taps
		if !ok {
			return nil
		}
		return tapMsg(ev)
	}
}

func ListenForDevices(events <-chan midi.DeviceEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return DeviceEventMsg(ev)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{frameTick(), ListenForTimers(m.timers)}
	if m.taps != nil {
		cmds = append(cmds, ListenForTaps(m.taps))
	}
	if m.devices != nil {
		cmds = append(cmds, ListenForDevices(m.devices))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.view.cols = msg.Width
		m.help.Width = msg.Width
		m.relayout()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)

	case frameMsg:
		m.frame()
		return m, frameTick()

	case timerMsg:
		if msg != nil {
			msg()
		}
		return m, ListenForTimers(m.timers)

	case tapMsg:
		debug.Log("midi", "tap note=%d vel=%d", msg.Note, msg.Velocity)
		m.addAtPlayhead()
		return m, ListenForTaps(m.taps)

	case DeviceEventMsg:
		if msg.Type == midi.DeviceConnected {
			m.host.status = "tap port connected: " + msg.ID
		} else {
			m.host.status = "tap port disconnected: " + msg.ID
		}
		return m, ListenForDevices(m.devices)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.host.transport.Pause()
		m.tl.Tooltip().Cancel()
		m.save()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Play):
		m.host.transport.Toggle()

	case key.Matches(msg, m.keys.Home):
		m.host.seek(0)
		m.view.scrollPx = 0

	case key.Matches(msg, m.keys.Resolution):
		m.tl.CycleResolution()

	case key.Matches(msg, m.keys.Loop):
		m.host.toggleLoop()

	case key.Matches(msg, m.keys.Click):
		if m.clicker == nil {
			m.host.status = "no click port"
		} else {
			m.host.clickOn = !m.host.clickOn
		}

	case key.Matches(msg, m.keys.ZoomIn):
		m.zoom(zoomStep)

	case key.Matches(msg, m.keys.ZoomOut):
		m.zoom(1 / zoomStep)

	case key.Matches(msg, m.keys.Left):
		m.scroll(-scrollCells * CellPx)

	case key.Matches(msg, m.keys.Right):
		m.scroll(scrollCells * CellPx)

	case key.Matches(msg, m.keys.Add):
		m.addAtPlayhead()

	case key.Matches(msg, m.keys.Delete):
		if _, dragging := m.tl.Dragging(); dragging {
			break
		}
		if id := m.tl.Selected(); id != "" {
			m.host.removeKeyframe(id)
		}

	case key.Matches(msg, m.keys.Save):
		m.saveFormation()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	}

	m.sync()
	return m, nil
}

// handleMouse maps terminal cells onto timeline pixels. Presses only count
// inside a lane; moves and releases are followed anywhere so a drag can end
// outside the timeline.
func (m Model) handleMouse(msg tea.MouseMsg) {
	x := m.pointerX(msg.X)

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp, tea.MouseButtonWheelLeft:
			if msg.Ctrl {
				m.zoom(zoomStep)
			} else {
				m.scroll(-scrollCells * CellPx)
			}
		case tea.MouseButtonWheelDown, tea.MouseButtonWheelRight:
			if msg.Ctrl {
				m.zoom(1 / zoomStep)
			} else {
				m.scroll(scrollCells * CellPx)
			}
		case tea.MouseButtonLeft:
			lane, ok := laneAt(msg.Y)
			if !ok || m.mouse.down {
				return
			}
			now := m.now()
			st := m.mouse
			st.double = !st.lastPress.IsZero() &&
				now.Sub(st.lastPress) <= DoubleClickWindow &&
				abs(msg.X-st.lastCol) <= 1 && lane == st.lastLane
			st.down, st.lane = true, lane
			st.lastPress, st.lastCol, st.lastLane = now, msg.X, lane
			m.tl.PointerDown(x, lane)
		}

	case tea.MouseActionMotion:
		if m.mouse.down {
			m.tl.PointerMove(x)
		}

	case tea.MouseActionRelease:
		if !m.mouse.down {
			return
		}
		m.mouse.down = false
		m.tl.PointerUp(x)
		if m.mouse.double {
			m.mouse.double = false
			m.mouse.lastPress = time.Time{}
			m.tl.DoubleClick(x, m.mouse.lane)
		}
	}

	m.sync()
}

// frame advances playback by one tick: metronome clicks, trim looping and
// follow-scroll
func (m Model) frame() {
	tr := m.host.transport
	cur, playing := tr.Sample()

	m.host.seekCause = "loop"
	clicks := m.tl.Tick(cur, playing)
	m.host.seekCause = "click"

	if len(clicks) > 0 && m.host.clickOn && m.clicker != nil {
		for _, c := range clicks {
			if err := m.clicker.Click(c.Accent); err != nil {
				debug.Error("midi", "click: %v", err)
				m.host.status = "click port error"
				m.host.clickOn = false
				break
			}
		}
		m.host.metrics.AddClicks(len(clicks))
	}

	if playing {
		m.follow()
	}
}

func (m Model) addAtPlayhead() {
	g := m.tl.Grid()
	ms, _ := g.Magnet(g.Clamp(m.host.transport.CurrentTime()))
	m.host.addKeyframe(ms)
	m.sync()
}

// sync pushes host state back into the timeline
func (m Model) sync() {
	m.tl.SetProps(m.host.current())
}

// relayout sizes the timeline to the zoomed track, at least one screen wide
func (m Model) relayout() {
	viewPx := float64(m.view.cols) * CellPx
	widthPx := m.host.props.DurationMs / 1000 * m.host.transport.Zoom()
	m.tl.Resize(math.Max(widthPx, viewPx))
	m.scroll(0)
}

func (m Model) zoom(factor float64) {
	tr := m.host.transport
	before := tr.Zoom()
	z := math.Min(maxZoom, math.Max(minZoom, before*factor))
	if z == before {
		return
	}
	// keep the play head column steady
	ms := tr.CurrentTime()
	offset := m.tl.Grid().TimeToPixel(ms) - m.view.scrollPx
	tr.SetZoom(z)
	m.host.props.Zoom = z
	m.relayout()
	m.view.scrollPx = m.tl.Grid().TimeToPixel(ms) - offset
	m.scroll(0)
	debug.Log("view", "zoom %.1f px/s", z)
}

func (m Model) scroll(dpx float64) {
	viewPx := float64(m.view.cols) * CellPx
	maxScroll := math.Max(0, m.tl.Width()-viewPx)
	m.view.scrollPx = math.Min(maxScroll, math.Max(0, m.view.scrollPx+dpx))
}

// follow pages the view when the play head leaves it
func (m Model) follow() {
	if _, dragging := m.tl.Dragging(); dragging {
		return
	}
	viewPx := float64(m.view.cols) * CellPx
	px := m.tl.Grid().TimeToPixel(m.host.transport.CurrentTime())
	if px < m.view.scrollPx || px >= m.view.scrollPx+viewPx {
		m.view.scrollPx = px - viewPx/4
		m.scroll(0)
	}
}

func (m Model) pointerX(col int) float64 {
	return m.view.scrollPx + (float64(col)+0.5)*CellPx
}

func (m Model) column(px float64) int {
	return int(math.Floor((px - m.view.scrollPx) / CellPx))
}

func (m Model) save() {
	if !m.persist {
		return
	}
	p := m.host.props
	m.cfg.Timeline.Resolution = string(p.Resolution)
	m.cfg.Timeline.LoopEnabled = p.LoopEnabled
	m.cfg.Timeline.Zoom = m.host.transport.Zoom()
	if err := m.cfg.Save(); err != nil {
		debug.Error("config", "save: %v", err)
	}
}

func (m Model) saveFormation() {
	if m.store == nil {
		m.host.status = "no project store"
		return
	}
	p := m.host.props
	f := &project.Formation{
		AudioURL:    m.host.transport.URL(),
		BeatMapFile: m.cfg.BeatMapFile,
		BPM:         p.BPM,
		DurationMs:  p.DurationMs,
		Keyframes:   append([]timeline.Keyframe(nil), p.Keyframes...),
		TrimStartMs: p.TrimStartMs,
		TrimEndMs:   p.TrimEndMs,
		LoopEnabled: p.LoopEnabled,
		Resolution:  string(p.Resolution),
	}
	name, err := m.store.Save(m.project, "", f)
	if err != nil {
		debug.Error("project", "save: %v", err)
		m.host.status = "save failed: " + err.Error()
		return
	}
	m.host.status = "saved " + name
	debug.Info("project", "saved %s/%s (%d keyframes)", m.project, name, len(f.Keyframes))
}

// applyFormation seeds host props from a saved formation. The loaded beat map
// and track duration win over the saved BPM and duration.
func applyFormation(p *timeline.Props, f *project.Formation) {
	p.Keyframes = append([]timeline.Keyframe(nil), f.Keyframes...)
	p.TrimStartMs, p.TrimEndMs = f.TrimStartMs, f.TrimEndMs
	p.LoopEnabled = f.LoopEnabled
	if res, err := timeline.ParseResolution(f.Resolution); err == nil {
		p.Resolution = res
	}
	if len(p.BeatMap) == 0 && f.BPM > 0 {
		p.BPM = f.BPM
	}
}

// Keyframes returns the host's keyframes
func (m Model) Keyframes() []timeline.Keyframe {
	return append([]timeline.Keyframe(nil), m.host.props.Keyframes...)
}

// Timeline exposes the embedded timeline
func (m Model) Timeline() *timeline.Timeline {
	return m.tl
}

func laneAt(row int) (timeline.Lane, bool) {
	switch row {
	case rulerRow:
		return timeline.LaneRuler, true
	case keyframeRow:
		return timeline.LaneKeyframes, true
	case trimRow:
		return timeline.LaneTrim, true
	}
	return 0, false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
