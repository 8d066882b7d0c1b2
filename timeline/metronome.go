package timeline

// BeatsPerMeasure is fixed; the timeline assumes 4/4 throughout
const BeatsPerMeasure = 4

// Click is one metronome beat crossed during playback
type Click struct {
	Index  int // beat number from the start of the track
	TimeMs float64
	Accent bool // first beat of a measure
}

// Metronome reports beat crossings between consecutive playback ticks, like
// Loop but over the per-beat grid.
type Metronome struct {
	last float64
	seen bool
}

// Tick returns the beats b with prev < b <= current. Nothing is returned when
// stopped, on the first tick, or when time moved backwards (a seek).
func (m *Metronome) Tick(currentMs float64, playing bool, g Grid) []Click {
	prev, seen := m.last, m.seen
	m.last, m.seen = currentMs, true

	if !seen || !playing || currentMs <= prev {
		return nil
	}

	var clicks []Click
	for i, sec := range g.BeatLevels() {
		ms := sec * 1000
		if ms <= prev {
			continue
		}
		if ms > currentMs {
			break
		}
		clicks = append(clicks, Click{Index: i, TimeMs: ms, Accent: i%BeatsPerMeasure == 0})
	}
	return clicks
}

func (m *Metronome) Reset() {
	m.last, m.seen = 0, false
}
