package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"go-formation/config"
	"go-formation/metrics"
	"go-formation/midi"
	"go-formation/player"
	"go-formation/project"
	"go-formation/timeline"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// newTestModel lays out 10 s at 100 px/s: 1000 px, 80 columns of 8 px
func newTestModel(t *testing.T) (Model, *fakeClock) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Timeline.DurationMs = 10000
	cfg.Timeline.Zoom = 100
	clock := &fakeClock{t: time.Unix(1000, 0)}
	m := NewModel(Options{Config: cfg, Metrics: metrics.New(), Now: clock.Now})
	m = update(m, tea.WindowSizeMsg{Width: 80, Height: 24})
	if w := m.Timeline().Width(); w != 1000 {
		t.Fatalf("timeline width = %v", w)
	}
	return m, clock
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(col, row int) tea.MouseMsg {
	return tea.MouseMsg{X: col, Y: row, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func motion(col, row int) tea.MouseMsg {
	return tea.MouseMsg{X: col, Y: row, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft}
}

func release(col, row int) tea.MouseMsg {
	return tea.MouseMsg{X: col, Y: row, Action: tea.MouseActionRelease, Button: tea.MouseButtonNone}
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func withKeyframe(m Model, ms float64) Model {
	m.host.addKeyframe(ms)
	m.sync()
	return m
}

func TestClickSeeks(t *testing.T) {
	m, _ := newTestModel(t)

	// column 10 centre is 84 px
	m = update(m, press(10, keyframeRow))
	m = update(m, release(10, keyframeRow))

	if got := m.host.transport.CurrentTime(); got != 840 {
		t.Fatalf("seek = %v, want 840", got)
	}
}

func TestPressOutsideLanesIgnored(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(m, press(10, 0))
	m = update(m, release(10, 0))
	if got := m.host.transport.CurrentTime(); got != 0 {
		t.Fatalf("seek = %v, want 0", got)
	}
}

func TestDoubleClickAddsKeyframe(t *testing.T) {
	m, clock := newTestModel(t)

	// column 12 centre is 100 px = 1000 ms, on a beat
	m = update(m, press(12, keyframeRow))
	m = update(m, release(12, keyframeRow))
	clock.Advance(150 * time.Millisecond)
	m = update(m, press(12, keyframeRow))
	m = update(m, release(12, keyframeRow))

	kfs := m.Keyframes()
	if len(kfs) != 1 {
		t.Fatalf("keyframes = %+v", kfs)
	}
	if kfs[0].TimestampMs != 1000 {
		t.Fatalf("added at %v, want 1000", kfs[0].TimestampMs)
	}
}

func TestSlowClicksDoNotAdd(t *testing.T) {
	m, clock := newTestModel(t)
	m = update(m, press(12, keyframeRow))
	m = update(m, release(12, keyframeRow))
	clock.Advance(time.Second)
	m = update(m, press(12, keyframeRow))
	m = update(m, release(12, keyframeRow))

	if n := len(m.Keyframes()); n != 0 {
		t.Fatalf("keyframes = %d", n)
	}
}

func TestDragSnapsAndTooltipClears(t *testing.T) {
	m, _ := newTestModel(t)
	m = withKeyframe(m, 1000)

	m = update(m, press(12, keyframeRow))
	// column 18 centre is 148 px: 1480 ms, 2 px from the 1500 beat
	m = update(m, motion(18, keyframeRow))
	if got := m.Keyframes()[0].TimestampMs; got != 1500 {
		t.Fatalf("during drag = %v, want 1500", got)
	}
	if !strings.Contains(m.View(), string(m.theme.Symbols.Guide)) {
		t.Error("guide line not drawn while snapped")
	}
	m = update(m, release(18, keyframeRow))

	if got := m.Keyframes()[0].TimestampMs; got != 1500 {
		t.Fatalf("after release = %v, want 1500", got)
	}
	if !m.Timeline().Tooltip().Visible("kf-0") {
		t.Fatal("tooltip not shown after snapped release")
	}
	if !strings.Contains(m.View(), snappedLabel) {
		t.Fatal("view missing tooltip label")
	}

	select {
	case f := <-m.timers:
		m = update(m, timerMsg(f))
	case <-time.After(2 * time.Second):
		t.Fatal("tooltip timer never fired")
	}
	if m.Timeline().Tooltip().Visible("kf-0") {
		t.Fatal("tooltip still visible after timer")
	}
}

func TestReleaseOutsideTimelineEndsDrag(t *testing.T) {
	m, _ := newTestModel(t)
	m = withKeyframe(m, 1000)

	m = update(m, press(12, keyframeRow))
	m = update(m, motion(18, 10))
	m = update(m, release(18, 10))

	if _, dragging := m.Timeline().Dragging(); dragging {
		t.Fatal("drag still active")
	}
	if got := m.Keyframes()[0].TimestampMs; got != 1500 {
		t.Fatalf("keyframe = %v, want 1500", got)
	}
}

func TestTrimDragFromTrimLane(t *testing.T) {
	m, _ := newTestModel(t)

	// column 0 centre is 4 px, inside the start handle radius
	m = update(m, press(0, trimRow))
	m = update(m, motion(20, trimRow))
	m = update(m, release(20, trimRow))

	r := m.Timeline().Region()
	if r.StartMs != 1600 || r.EndMs != 10000 {
		t.Fatalf("region = %+v", r)
	}
	if m.host.props.TrimStartMs != 1600 {
		t.Fatalf("host trim start = %v", m.host.props.TrimStartMs)
	}
}

func TestResolutionKeyCycles(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(m, keyPress("r"))
	if got := m.Timeline().Props().Resolution; got != timeline.HalfBeat {
		t.Fatalf("resolution = %s", got)
	}
	if !strings.Contains(m.View(), "snap:1/2") {
		t.Fatal("header does not show new resolution")
	}
}

func TestDeleteSelectedKeyframe(t *testing.T) {
	m, _ := newTestModel(t)
	m = withKeyframe(m, 1000)
	m = update(m, press(12, keyframeRow))
	m = update(m, release(12, keyframeRow))
	if m.Timeline().Selected() != "kf-0" {
		t.Fatalf("selected = %q", m.Timeline().Selected())
	}

	m = update(m, keyPress("x"))
	if n := len(m.Keyframes()); n != 0 {
		t.Fatalf("keyframes = %d", n)
	}
}

func TestTapAddsAtPlayhead(t *testing.T) {
	m, _ := newTestModel(t)
	m.host.transport.SeekTo(1490)

	m = update(m, tapMsg(midi.NoteEvent{Note: 36, Velocity: 100}))

	kfs := m.Keyframes()
	if len(kfs) != 1 || kfs[0].TimestampMs != 1500 {
		t.Fatalf("keyframes = %+v", kfs)
	}
}

func TestLoopKeyToggles(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(m, keyPress("L"))
	if !m.Timeline().Region().LoopEnabled {
		t.Fatal("loop not enabled")
	}
}

func TestZoomResizesTimeline(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(m, keyPress("+"))
	if got := m.host.transport.Zoom(); got != 125 {
		t.Fatalf("zoom = %v", got)
	}
	if got := m.Timeline().Width(); got != 1250 {
		t.Fatalf("width = %v", got)
	}
}

func TestViewHeader(t *testing.T) {
	m, _ := newTestModel(t)
	v := m.View()
	for _, want := range []string{"go-formation", "STOP", "snap:1/4(grid)", "kf:0"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestQuitPausesAndClears(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(m, keyPress(" "))
	if !m.host.transport.Playing() {
		t.Fatal("space did not start playback")
	}
	next, cmd := m.Update(keyPress("q"))
	m = next.(Model)
	if cmd == nil || m.host.transport.Playing() || m.View() != "" {
		t.Fatal("quit did not stop the model")
	}
}

func TestFormatMs(t *testing.T) {
	if got := formatMs(61234); got != "1:01.234" {
		t.Fatalf("formatMs = %q", got)
	}
}

func TestDeviceEventsShowInStatus(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(m, DeviceEventMsg{Type: midi.DeviceConnected, ID: "Foot Pad"})
	if !strings.Contains(m.View(), "tap port connected: Foot Pad") {
		t.Fatal("status missing connect message")
	}
}

func TestSaveKeyWritesFormation(t *testing.T) {
	store := project.NewStore(t.TempDir())
	cfg := config.DefaultConfig()
	cfg.Timeline.DurationMs = 10000
	cfg.Timeline.Zoom = 100
	m := NewModel(Options{
		Config:  cfg,
		Store:   store,
		Project: "show",
		Formation: &project.Formation{
			Keyframes:   []timeline.Keyframe{{ID: "kf-3", TimestampMs: 2000}},
			LoopEnabled: true,
			Resolution:  "measure",
		},
	})
	m = update(m, tea.WindowSizeMsg{Width: 80, Height: 24})
	if got := m.Timeline().Props().Resolution; got != timeline.Measure {
		t.Fatalf("resolution = %s", got)
	}

	m = update(m, keyPress("a"))
	m = update(m, keyPress("s"))

	f, err := store.Load("show", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(f.Keyframes) != 2 || !f.LoopEnabled {
		t.Fatalf("saved = %+v", f)
	}
	// new ids continue after the loaded ones
	if f.Keyframes[0].ID != "kf-4" || f.Keyframes[0].TimestampMs != 0 {
		t.Fatalf("keyframes = %+v", f.Keyframes)
	}
}

func TestLoopWrapsAtTrackEnd(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Timeline.DurationMs = 300
	cfg.Timeline.LoopEnabled = true
	clock := &fakeClock{t: time.Unix(1000, 0)}
	tr := player.NewTransport(cfg.Timeline.DurationMs)
	tr.SetClock(clock.Now)
	m := NewModel(Options{Config: cfg, Transport: tr, Now: clock.Now})
	m = update(m, tea.WindowSizeMsg{Width: 80, Height: 24})
	if !m.Timeline().Region().LoopEnabled {
		t.Fatal("loop not enabled from config")
	}

	m = update(m, keyPress(" "))
	wraps, prev := 0, tr.CurrentTime()
	for i := 0; i < 48; i++ {
		clock.Advance(25 * time.Millisecond)
		m.frame()
		cur := tr.CurrentTime()
		if cur < prev {
			wraps++
		}
		prev = cur
	}
	if wraps < 3 {
		t.Fatalf("wraps = %d, current = %v", wraps, tr.CurrentTime())
	}
	if !tr.Playing() {
		t.Fatal("playback stopped at the track end")
	}
}

func TestDeleteIgnoredWhileDragging(t *testing.T) {
	m, _ := newTestModel(t)
	m = withKeyframe(m, 1000)
	m = update(m, press(12, keyframeRow))
	m = update(m, motion(14, keyframeRow))

	m = update(m, keyPress("x"))
	if n := len(m.Keyframes()); n != 1 {
		t.Fatalf("keyframes = %d, deleted mid drag", n)
	}

	m = update(m, release(14, keyframeRow))
	m = update(m, keyPress("x"))
	if n := len(m.Keyframes()); n != 0 {
		t.Fatalf("keyframes = %d after release", n)
	}
}
