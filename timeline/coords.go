package timeline

import "math"

// TimeToPixel maps a timestamp onto the container width.
// Returns 0 when duration or width is not positive.
func TimeToPixel(timeMs, durationMs, widthPx float64) float64 {
	if durationMs <= 0 || widthPx <= 0 || !finite(timeMs) {
		return 0
	}
	return timeMs * widthPx / durationMs
}

// PixelToTime is the inverse of TimeToPixel. The result is not clamped;
// use ClampTime before mutating anything with it.
func PixelToTime(px, durationMs, widthPx float64) float64 {
	if durationMs <= 0 || widthPx <= 0 || !finite(px) {
		return 0
	}
	return px * durationMs / widthPx
}

// ClampTime clamps t into [0, durationMs]
func ClampTime(t, durationMs float64) float64 {
	if durationMs <= 0 || !finite(t) {
		return 0
	}
	return math.Max(0, math.Min(t, durationMs))
}

// BeatTimestamps returns the beat grid in seconds for the given resolution.
// A non-empty beat map is used verbatim at beat resolution; otherwise the grid
// is synthesized from the effective BPM.
func BeatTimestamps(beatMap []float64, durationMs, bpm float64, res Resolution) []float64 {
	if len(beatMap) > 0 && res == Beat {
		return beatMap
	}
	return metronomeGrid(durationMs, EffectiveBPM(bpm, res))
}

// BeatLevelTimestamps always returns per-beat timestamps in seconds, used for
// labels and the metronome. Resolution scaling never applies here.
func BeatLevelTimestamps(beatMap []float64, durationMs, bpm float64) []float64 {
	return BeatTimestamps(beatMap, durationMs, bpm, Beat)
}

func metronomeGrid(durationMs, effectiveBpm float64) []float64 {
	if effectiveBpm <= 0 || durationMs <= 0 || !finite(effectiveBpm) || !finite(durationMs) {
		return nil
	}
	interval := 60 / effectiveBpm
	end := durationMs / 1000

	// multiply instead of accumulating so long tracks don't drift
	var beats []float64
	for i := 0; ; i++ {
		t := float64(i) * interval
		if t >= end {
			break
		}
		beats = append(beats, t)
	}
	return beats
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
