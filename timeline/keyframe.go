package timeline

import "go-formation/debug"

// Keyframe is the timeline's view of a host formation keyframe
type Keyframe struct {
	ID          string  `json:"id"`
	TimestampMs float64 `json:"timestampMs"`
}

// DragSession exists between pointer-down and pointer-up on a keyframe marker
type DragSession struct {
	ID      string
	StartX  float64 // pointer x at gesture start
	StartMs float64 // keyframe timestamp at gesture start
	LastX   float64 // most recent pointer x, for re-evaluation
	Snapped bool    // current frame locked onto a beat
}

// KeyframeMove is the result of one drag frame
type KeyframeMove struct {
	ID          string
	TimestampMs float64
	Snapped     bool
}

// KeyframeDrag is the keyframe drag state machine: idle -> dragging -> idle.
// The zero value is idle. Only one session exists at a time; Begin while a
// session is active is rejected.
type KeyframeDrag struct {
	session *DragSession
}

// Begin starts a drag of keyframe id. Returns false if a drag is already active.
func (d *KeyframeDrag) Begin(id string, pointerX, timestampMs float64) bool {
	if d.session != nil {
		debug.Log("drag", "ignored begin id=%s: %s still dragging", id, d.session.ID)
		return false
	}
	d.session = &DragSession{
		ID:      id,
		StartX:  pointerX,
		StartMs: timestampMs,
		LastX:   pointerX,
	}
	debug.Log("drag", "begin id=%s x=%.1f t=%.1f", id, pointerX, timestampMs)
	return true
}

// Move computes the keyframe position for pointer x. The result is always
// clamped to the timeline and magnetized when within the snap threshold.
func (d *KeyframeDrag) Move(pointerX float64, g Grid) (KeyframeMove, bool) {
	s := d.session
	if s == nil {
		return KeyframeMove{}, false
	}
	s.LastX = pointerX
	return d.evaluate(g), true
}

// Rescale multiplies the session's pointer positions by k after a zoom
func (d *KeyframeDrag) Rescale(k float64) {
	if d.session == nil {
		return
	}
	d.session.StartX *= k
	d.session.LastX *= k
}

// Reevaluate recomputes the current frame after the grid changed mid-drag
// (snap resolution, tempo, zoom).
func (d *KeyframeDrag) Reevaluate(g Grid) (KeyframeMove, bool) {
	if d.session == nil {
		return KeyframeMove{}, false
	}
	return d.evaluate(g), true
}

func (d *KeyframeDrag) evaluate(g Grid) KeyframeMove {
	s := d.session
	candidate := g.Clamp(s.StartMs + g.DeltaTime(s.LastX-s.StartX))
	ts, snapped := g.Magnet(candidate)
	s.Snapped = snapped
	debug.LogEvery(30, "drag", "move id=%s t=%.1f snapped=%v", s.ID, ts, snapped)
	return KeyframeMove{ID: s.ID, TimestampMs: ts, Snapped: snapped}
}

// End destroys the session. It reports the dragged id and whether the final
// frame was snapped; ok is false if no drag was active.
func (d *KeyframeDrag) End() (id string, snapped bool, ok bool) {
	s := d.session
	if s == nil {
		return "", false, false
	}
	d.session = nil
	debug.Log("drag", "end id=%s snapped=%v", s.ID, s.Snapped)
	return s.ID, s.Snapped, true
}

// Active reports whether a drag is in progress
func (d *KeyframeDrag) Active() bool {
	return d.session != nil
}

// Session returns a copy of the active session
func (d *KeyframeDrag) Session() (DragSession, bool) {
	if d.session == nil {
		return DragSession{}, false
	}
	return *d.session, true
}
