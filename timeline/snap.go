package timeline

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// SnapThresholdPx is the magnetic capture radius. It lives in pixel space so
// the time-domain radius shrinks as zoom increases.
const SnapThresholdPx = 12.0

// Resolution selects the granularity of the snap grid
type Resolution string

const (
	Beat     Resolution = "beat"
	HalfBeat Resolution = "half-beat"
	Measure  Resolution = "measure"
)

// Resolutions in cycling order
var Resolutions = []Resolution{Beat, HalfBeat, Measure}

var ErrUnknownResolution = errors.New("unknown snap resolution")

// ParseResolution parses a config or flag value
func ParseResolution(s string) (Resolution, error) {
	for _, r := range Resolutions {
		if string(r) == s {
			return r, nil
		}
	}
	return Beat, fmt.Errorf("%w: %q", ErrUnknownResolution, s)
}

// Next returns the following resolution, wrapping around
func (r Resolution) Next() Resolution {
	for i, res := range Resolutions {
		if res == r {
			return Resolutions[(i+1)%len(Resolutions)]
		}
	}
	return Beat
}

// Label is the short form shown in the status line
func (r Resolution) Label() string {
	switch r {
	case HalfBeat:
		return "1/2"
	case Measure:
		return "bar"
	default:
		return "1/4"
	}
}

// EffectiveBPM scales bpm for the resolution (4/4 assumed for measures)
func EffectiveBPM(bpm float64, res Resolution) float64 {
	switch res {
	case HalfBeat:
		return bpm * 2
	case Measure:
		return bpm / 4
	default:
		return bpm
	}
}

// SnapToBeat rounds timeMs to the nearest multiple of the beat interval.
// Callers must guard effectiveBpm <= 0.
func SnapToBeat(timeMs, effectiveBpm float64) float64 {
	interval := 60000 / effectiveBpm
	return math.Round(timeMs/interval) * interval
}

// nearestBeatMs finds the closest beat map timestamp (seconds in, ms out).
// beatMap must be ascending.
func nearestBeatMs(timeMs float64, beatMap []float64) float64 {
	sec := timeMs / 1000
	i := sort.SearchFloat64s(beatMap, sec)
	switch {
	case i == 0:
		return beatMap[0] * 1000
	case i == len(beatMap):
		return beatMap[len(beatMap)-1] * 1000
	}
	before, after := beatMap[i-1], beatMap[i]
	// ties go to the earlier beat
	if sec-before <= after-sec {
		return before * 1000
	}
	return after * 1000
}
