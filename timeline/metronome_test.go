package timeline

import "testing"

func TestMetronomeClicksOnCrossedBeats(t *testing.T) {
	g := Grid{DurationMs: 10000, WidthPx: 1000, BPM: 120, Resolution: Measure}
	var m Metronome

	if clicks := m.Tick(0, true, g); len(clicks) != 0 {
		t.Fatalf("first tick clicked: %v", clicks)
	}
	// crosses 500, 1000, 1500, 2000; resolution doesn't thin the clicks
	clicks := m.Tick(2000, true, g)
	if len(clicks) != 4 {
		t.Fatalf("clicks = %v", clicks)
	}
	if clicks[0].Index != 1 || clicks[3].Index != 4 {
		t.Fatalf("indexes = %v", clicks)
	}
	if clicks[0].Accent || !clicks[3].Accent {
		t.Fatalf("accents = %v", clicks)
	}

	if clicks := m.Tick(2100, true, g); len(clicks) != 0 {
		t.Fatalf("no beat between 2000 and 2100, got %v", clicks)
	}
}

func TestMetronomeSilentWhenStoppedOrSeekingBack(t *testing.T) {
	g := Grid{DurationMs: 10000, WidthPx: 1000, BPM: 120}
	var m Metronome
	m.Tick(100, false, g)
	if clicks := m.Tick(900, false, g); len(clicks) != 0 {
		t.Fatalf("paused clicks = %v", clicks)
	}
	m.Tick(4900, true, g)
	if clicks := m.Tick(1000, true, g); len(clicks) != 0 {
		t.Fatalf("backward jump clicked: %v", clicks)
	}
}

func TestMetronomeZeroBPM(t *testing.T) {
	g := Grid{DurationMs: 10000, WidthPx: 1000}
	var m Metronome
	m.Tick(0, true, g)
	if clicks := m.Tick(5000, true, g); len(clicks) != 0 {
		t.Fatalf("clicks = %v", clicks)
	}
}
