package timeline

import (
	"math"

	"go-formation/debug"
)

// MinRegionMs is the smallest allowed active region
const MinRegionMs = 50.0

// TrimSide names a trim handle
type TrimSide int

const (
	TrimStart TrimSide = iota
	TrimEnd
)

func (s TrimSide) String() string {
	if s == TrimEnd {
		return "end"
	}
	return "start"
}

// TrimRegion is the active, loopable sub-range of the track
type TrimRegion struct {
	StartMs     float64
	EndMs       float64
	LoopEnabled bool
}

// Valid reports whether the minimum-width invariant holds
func (r TrimRegion) Valid() bool {
	return r.StartMs+MinRegionMs <= r.EndMs
}

// Normalize restores the invariant for a region that violates it, pushing the
// end out first and the start back when the end would pass durationMs.
// Timelines shorter than MinRegionMs get [0, MinRegionMs].
func (r TrimRegion) Normalize(durationMs float64) TrimRegion {
	if r.StartMs < 0 {
		r.StartMs = 0
	}
	if r.Valid() {
		return r
	}
	if durationMs < MinRegionMs {
		r.StartMs, r.EndMs = 0, MinRegionMs
		return r
	}
	r.EndMs = math.Min(r.StartMs+MinRegionMs, durationMs)
	r.StartMs = math.Max(0, math.Min(r.StartMs, r.EndMs-MinRegionMs))
	return r
}

// TrimSession exists while a trim handle is held
type TrimSession struct {
	Side    TrimSide
	StartX  float64
	StartMs float64 // handle timestamp at gesture start
}

// TrimDrag is the trim handle state machine: idle -> dragging(side) -> idle.
// Both handles share one session.
type TrimDrag struct {
	session *TrimSession
}

// Begin grabs a handle. Returns false if a handle is already held.
func (t *TrimDrag) Begin(side TrimSide, pointerX float64, region TrimRegion) bool {
	if t.session != nil {
		debug.Log("trim", "ignored begin %s: %s still held", side, t.session.Side)
		return false
	}
	startMs := region.StartMs
	if side == TrimEnd {
		startMs = region.EndMs
	}
	t.session = &TrimSession{Side: side, StartX: pointerX, StartMs: startMs}
	debug.Log("trim", "begin %s x=%.1f t=%.1f", side, pointerX, startMs)
	return true
}

// Move returns the region with the held handle moved to pointer x. No snapping
// applies to trim handles.
func (t *TrimDrag) Move(pointerX float64, region TrimRegion, g Grid) (TrimRegion, bool) {
	s := t.session
	if s == nil {
		return region, false
	}
	candidate := g.Clamp(s.StartMs + g.DeltaTime(pointerX-s.StartX))

	switch s.Side {
	case TrimStart:
		region.StartMs = math.Max(0, math.Min(candidate, region.EndMs-MinRegionMs))
	case TrimEnd:
		end := math.Max(candidate, region.StartMs+MinRegionMs)
		if g.DurationMs > 0 {
			end = math.Min(end, g.DurationMs)
		}
		region.EndMs = end
	}
	if !region.Valid() {
		// host handed us bounds that were already broken
		debug.Log("trim", "normalizing region %.1f..%.1f", region.StartMs, region.EndMs)
		region = region.Normalize(g.DurationMs)
	}
	return region, true
}

func (t *TrimDrag) Rescale(k float64) {
	if t.session != nil {
		t.session.StartX *= k
	}
}

// End releases the handle
func (t *TrimDrag) End() (TrimSide, bool) {
	s := t.session
	if s == nil {
		return TrimStart, false
	}
	t.session = nil
	debug.Log("trim", "end %s", s.Side)
	return s.Side, true
}

func (t *TrimDrag) Active() bool {
	return t.session != nil
}

// Side returns the held handle
func (t *TrimDrag) Side() (TrimSide, bool) {
	if t.session == nil {
		return TrimStart, false
	}
	return t.session.Side, true
}
