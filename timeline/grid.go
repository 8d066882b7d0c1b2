package timeline

import "math"

// Grid is the mapping context shared by every timeline computation: duration
// and container width for coordinates, tempo inputs for the beat grid.
type Grid struct {
	DurationMs float64
	WidthPx    float64
	BPM        float64
	Resolution Resolution
	BeatMap    []float64 // seconds, ascending; may be nil
}

// Valid reports whether position math is meaningful
func (g Grid) Valid() bool {
	return g.DurationMs > 0 && g.WidthPx > 0
}

func (g Grid) TimeToPixel(ms float64) float64 {
	return TimeToPixel(ms, g.DurationMs, g.WidthPx)
}

// PixelToTime converts and clamps into the timeline
func (g Grid) PixelToTime(px float64) float64 {
	return ClampTime(PixelToTime(px, g.DurationMs, g.WidthPx), g.DurationMs)
}

// DeltaTime converts a pointer displacement into a time displacement
func (g Grid) DeltaTime(dpx float64) float64 {
	return PixelToTime(dpx, g.DurationMs, g.WidthPx)
}

func (g Grid) Clamp(ms float64) float64 {
	return ClampTime(ms, g.DurationMs)
}

// Beats returns the snap grid at the active resolution, in seconds
func (g Grid) Beats() []float64 {
	if g.BPM <= 0 {
		return nil
	}
	return BeatTimestamps(g.BeatMap, g.DurationMs, g.BPM, g.Resolution)
}

// BeatLevels returns per-beat timestamps in seconds regardless of resolution
func (g Grid) BeatLevels() []float64 {
	if g.BPM <= 0 {
		return nil
	}
	return BeatLevelTimestamps(g.BeatMap, g.DurationMs, g.BPM)
}

// SnapEnabled reports whether magnetism applies at all
func (g Grid) SnapEnabled() bool {
	return g.Valid() && EffectiveBPM(g.BPM, g.Resolution) > 0
}

// Project returns the nearest beat-aligned time for ms, ignoring the threshold
func (g Grid) Project(ms float64) (float64, bool) {
	if !g.SnapEnabled() {
		return ms, false
	}
	if len(g.BeatMap) > 0 && g.Resolution == Beat {
		return g.Clamp(nearestBeatMs(ms, g.BeatMap)), true
	}
	return g.Clamp(SnapToBeat(ms, EffectiveBPM(g.BPM, g.Resolution))), true
}

// Magnet replaces ms with its beat projection when the two are closer than
// SnapThresholdPx on screen. The bool reports whether it snapped.
func (g Grid) Magnet(ms float64) (float64, bool) {
	target, ok := g.Project(ms)
	if !ok {
		return ms, false
	}
	if math.Abs(g.TimeToPixel(target)-g.TimeToPixel(ms)) < SnapThresholdPx {
		return target, true
	}
	return ms, false
}

// sameGeometry reports whether a drag in progress would compute the same
// candidate under both grids
func (g Grid) sameGeometry(o Grid) bool {
	if g.DurationMs != o.DurationMs || g.WidthPx != o.WidthPx || g.BPM != o.BPM || g.Resolution != o.Resolution {
		return false
	}
	if len(g.BeatMap) != len(o.BeatMap) {
		return false
	}
	for i := range g.BeatMap {
		if g.BeatMap[i] != o.BeatMap[i] {
			return false
		}
	}
	return true
}
