package timeline

import (
	"math"
	"time"
)

// fakeScheduler runs callbacks synchronously when Advance passes their deadline
type fakeScheduler struct {
	now    time.Duration
	timers []*fakeTimer

	ignoreStop bool // simulate a callback already in flight when Stop is called
}

type fakeTimer struct {
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
	sched   *fakeScheduler
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	if !t.sched.ignoreStop {
		t.stopped = true
	}
	return true
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{at: s.now + d, f: f, sched: s}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) Advance(d time.Duration) {
	s.now += d
	for _, t := range s.timers {
		if !t.stopped && !t.fired && t.at <= s.now {
			t.fired = true
			t.f()
		}
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

// recorder captures every host request
type recorder struct {
	seeks   []float64
	moves   []KeyframeMove
	adds    []float64
	selects []string
	res     []Resolution
	trims   [][2]float64
	snaps   []string
}

func (r *recorder) handlers() Handlers {
	return Handlers{
		Seek:                 func(ms float64) { r.seeks = append(r.seeks, ms) },
		KeyframeMove:         func(id string, ms float64) { r.moves = append(r.moves, KeyframeMove{ID: id, TimestampMs: ms}) },
		KeyframeAdd:          func(ms float64) { r.adds = append(r.adds, ms) },
		KeyframeSelect:       func(id string) { r.selects = append(r.selects, id) },
		SnapResolutionChange: func(res Resolution) { r.res = append(r.res, res) },
		TrimChange:           func(s, e float64) { r.trims = append(r.trims, [2]float64{s, e}) },
		KeyframeSnapped:      func(id string) { r.snaps = append(r.snaps, id) },
	}
}

func (r *recorder) lastMove() KeyframeMove {
	if len(r.moves) == 0 {
		return KeyframeMove{}
	}
	return r.moves[len(r.moves)-1]
}
