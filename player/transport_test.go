package player

import (
	"errors"
	"testing"
	"time"
)

func fakeClock(tr *Transport) *time.Time {
	now := time.Unix(1000, 0)
	tr.now = func() time.Time { return now }
	return &now
}

func TestTransportAdvancesWhilePlaying(t *testing.T) {
	tr := NewTransport(10000)
	now := fakeClock(tr)

	tr.Play()
	*now = now.Add(1500 * time.Millisecond)
	if got := tr.CurrentTime(); got != 1500 {
		t.Fatalf("current = %v", got)
	}

	tr.Pause()
	*now = now.Add(time.Second)
	if got := tr.CurrentTime(); got != 1500 {
		t.Fatalf("paused clock moved: %v", got)
	}
}

func TestTransportSeekWhilePlaying(t *testing.T) {
	tr := NewTransport(10000)
	now := fakeClock(tr)

	tr.Play()
	*now = now.Add(4 * time.Second)
	tr.SeekTo(1000)
	*now = now.Add(250 * time.Millisecond)
	if got := tr.CurrentTime(); got != 1250 {
		t.Fatalf("current = %v", got)
	}

	tr.SeekTo(-5)
	if got := tr.CurrentTime(); got != 0 {
		t.Fatalf("negative seek = %v", got)
	}
	tr.SeekTo(99999)
	if got := tr.CurrentTime(); got != 10000 {
		t.Fatalf("seek past end = %v", got)
	}
}

func TestTransportStopsAtEnd(t *testing.T) {
	tr := NewTransport(2000)
	now := fakeClock(tr)

	tr.Play()
	*now = now.Add(3 * time.Second)
	if tr.Playing() {
		t.Fatal("still playing past the end")
	}
	if got := tr.CurrentTime(); got != 2000 {
		t.Fatalf("current = %v", got)
	}

	// play again from the top
	tr.Toggle()
	if !tr.Playing() || tr.CurrentTime() != 0 {
		t.Fatalf("restart: playing=%v t=%v", tr.Playing(), tr.CurrentTime())
	}
}

func TestTransportLoadTrack(t *testing.T) {
	tr := NewTransport(2000)
	if err := tr.LoadTrack(""); !errors.Is(err, ErrNoTrack) {
		t.Fatalf("err = %v", err)
	}
	tr.SeekTo(700)
	if err := tr.LoadTrack("file:///show.wav"); err != nil {
		t.Fatalf("LoadTrack: %v", err)
	}
	if tr.CurrentTime() != 0 || tr.URL() != "file:///show.wav" {
		t.Fatalf("load did not rewind")
	}
	tr.SetZoom(-3)
	if tr.Zoom() != 0 {
		t.Fatalf("zoom = %v", tr.Zoom())
	}
}

func TestTransportImplementsRenderer(t *testing.T) {
	var _ Renderer = NewTransport(0)
}

func TestTransportSampleReportsEndFrameAsPlaying(t *testing.T) {
	tr := NewTransport(300)
	now := fakeClock(tr)

	tr.Play()
	*now = now.Add(275 * time.Millisecond)
	if ms, playing := tr.Sample(); ms != 275 || !playing {
		t.Fatalf("sample = %v %v", ms, playing)
	}
	*now = now.Add(50 * time.Millisecond)
	if ms, playing := tr.Sample(); ms != 300 || !playing {
		t.Fatalf("end sample = %v %v, want 300 true", ms, playing)
	}
	if tr.Playing() {
		t.Fatal("clock still running past the end")
	}
	if ms, playing := tr.Sample(); ms != 300 || playing {
		t.Fatalf("after end = %v %v", ms, playing)
	}
}
