package beatmap

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"
)

// DefaultBPM is assumed when a file carries no tempo event (SMF default)
const DefaultBPM = 120.0

var ErrTimeFormat = errors.New("beatmap: only metric (ticks per quarter) time format is supported")

// Map is a detected beat map: one timestamp per quarter note
type Map struct {
	BPM        float64   // first tempo in the file
	Beats      []float64 // seconds, ascending
	DurationMs float64
}

// Empty reports whether there is no beat data at all
func (m Map) Empty() bool {
	return len(m.Beats) == 0
}

type tempoChange struct {
	tick uint64
	bpm  float64
}

// LoadFile reads a beat map from a Standard MIDI File on disk
func LoadFile(path string) (Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return Map{}, fmt.Errorf("open beat map: %w", err)
	}
	defer f.Close()
	return ReadSMF(f)
}

// ReadSMF reads a Standard MIDI File and converts its tempo map into beat
// timestamps up to the last event in any track.
func ReadSMF(r io.Reader) (Map, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return Map{}, fmt.Errorf("read smf: %w", err)
	}
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return Map{}, ErrTimeFormat
	}
	ppq := uint64(ticks.Resolution())
	if ppq == 0 {
		return Map{}, ErrTimeFormat
	}

	var tempos []tempoChange
	var lastTick uint64
	for _, track := range s.Tracks {
		var abs uint64
		for _, ev := range track {
			abs += uint64(ev.Delta)
			var bpm float64
			if ev.Message.GetMetaTempo(&bpm) && bpm > 0 {
				tempos = append(tempos, tempoChange{tick: abs, bpm: bpm})
			}
		}
		if abs > lastTick {
			lastTick = abs
		}
	}
	sort.SliceStable(tempos, func(i, j int) bool { return tempos[i].tick < tempos[j].tick })

	tm := newTempoMap(tempos, ppq)
	m := Map{
		BPM:        tm.bpmAt(0),
		DurationMs: tm.ms(lastTick),
	}
	for tick := uint64(0); tick < lastTick; tick += ppq {
		m.Beats = append(m.Beats, tm.ms(tick)/1000)
	}
	return m, nil
}

// tempoMap converts ticks to milliseconds across tempo changes
type tempoMap struct {
	ppq     float64
	changes []tempoChange
	startMs []float64 // ms at each change
}

func newTempoMap(changes []tempoChange, ppq uint64) *tempoMap {
	if len(changes) == 0 || changes[0].tick != 0 {
		changes = append([]tempoChange{{tick: 0, bpm: DefaultBPM}}, changes...)
	}
	tm := &tempoMap{ppq: float64(ppq), changes: changes, startMs: make([]float64, len(changes))}
	for i := 1; i < len(changes); i++ {
		prev := changes[i-1]
		tm.startMs[i] = tm.startMs[i-1] + tm.span(changes[i].tick-prev.tick, prev.bpm)
	}
	return tm
}

func (tm *tempoMap) span(ticks uint64, bpm float64) float64 {
	return float64(ticks) / tm.ppq * 60000 / bpm
}

func (tm *tempoMap) index(tick uint64) int {
	// last change at or before tick
	i := sort.Search(len(tm.changes), func(i int) bool { return tm.changes[i].tick > tick })
	return i - 1
}

func (tm *tempoMap) ms(tick uint64) float64 {
	i := tm.index(tick)
	c := tm.changes[i]
	return tm.startMs[i] + tm.span(tick-c.tick, c.bpm)
}

func (tm *tempoMap) bpmAt(tick uint64) float64 {
	return tm.changes[tm.index(tick)].bpm
}
