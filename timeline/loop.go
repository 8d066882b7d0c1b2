package timeline

import "go-formation/debug"

// Loop watches playback ticks and requests a seek back to the region start on
// the tick where the play head crosses the region end. Only the crossing tick
// fires; ticks already past the end do not.
type Loop struct {
	last float64
	seen bool
}

// Tick feeds one playback time. It returns the seek target and true when a
// loop-back should happen.
func (l *Loop) Tick(currentMs float64, playing bool, region TrimRegion) (float64, bool) {
	prev, seen := l.last, l.seen
	l.last, l.seen = currentMs, true

	if !seen || !playing || !region.LoopEnabled {
		return 0, false
	}
	if prev < region.EndMs && currentMs >= region.EndMs {
		debug.Log("loop", "crossed end=%.1f (%.1f -> %.1f), seek %.1f", region.EndMs, prev, currentMs, region.StartMs)
		return region.StartMs, true
	}
	return 0, false
}

// Reset forgets the last seen time
func (l *Loop) Reset() {
	l.last, l.seen = 0, false
}
