package player

import (
	"errors"
	"time"

	"go-formation/debug"
)

// Renderer is the capability boundary to a waveform renderer. Anything that
// can load a track, zoom and seek can drive the timeline.
type Renderer interface {
	LoadTrack(url string) error
	SetZoom(pxPerSecond float64)
	SeekTo(ms float64)
}

var ErrNoTrack = errors.New("player: no track url")

// Transport is a playback clock standing in for the audio renderer. It keeps
// time from a start instant and never decodes audio.
type Transport struct {
	url        string
	durationMs float64
	zoom       float64

	playing bool
	t0      time.Time // wall time corresponding to offset
	offset  float64   // ms at t0

	now func() time.Time
}

// NewTransport creates a stopped transport for a track of durationMs
func NewTransport(durationMs float64) *Transport {
	return &Transport{
		durationMs: durationMs,
		now:        time.Now,
	}
}

// SetClock replaces the wall clock
func (t *Transport) SetClock(now func() time.Time) {
	t.now = now
}

// LoadTrack switches tracks and rewinds
func (t *Transport) LoadTrack(url string) error {
	if url == "" {
		return ErrNoTrack
	}
	t.url = url
	t.playing = false
	t.offset = 0
	debug.Info("player", "load %s (%.0f ms)", url, t.durationMs)
	return nil
}

func (t *Transport) URL() string {
	return t.url
}

// SetDuration is used once the track length is known (e.g. from a beat map)
func (t *Transport) SetDuration(ms float64) {
	if ms < 0 {
		ms = 0
	}
	t.durationMs = ms
}

func (t *Transport) Duration() float64 {
	return t.durationMs
}

// SetZoom records the renderer zoom in pixels per second
func (t *Transport) SetZoom(pxPerSecond float64) {
	if pxPerSecond < 0 {
		pxPerSecond = 0
	}
	t.zoom = pxPerSecond
}

func (t *Transport) Zoom() float64 {
	return t.zoom
}

// SeekTo jumps to ms, clamped to the track
func (t *Transport) SeekTo(ms float64) {
	ms = clamp(ms, t.durationMs)
	t.offset = ms
	t.t0 = t.now()
	debug.Log("player", "seek %.1f", ms)
}

func (t *Transport) Play() {
	if t.playing {
		return
	}
	if t.offset >= t.durationMs {
		t.offset = 0
	}
	t.t0 = t.now()
	t.playing = true
}

func (t *Transport) Pause() {
	if !t.playing {
		return
	}
	t.offset = t.CurrentTime()
	t.playing = false
}

func (t *Transport) Toggle() {
	if t.playing {
		t.Pause()
	} else {
		t.Play()
	}
}

// Playing reports whether the clock is running. Reaching the end of the track
// stops it.
func (t *Transport) Playing() bool {
	if t.playing && t.elapsed() >= t.durationMs {
		t.offset = t.durationMs
		t.playing = false
	}
	return t.playing
}

// Sample reads the play head and running state from one clock reading. The
// sample that reaches the track end still reports playing so end crossings
// can be seen; the clock is stopped after it.
func (t *Transport) Sample() (float64, bool) {
	if !t.playing {
		return t.offset, false
	}
	ms := t.elapsed()
	if ms >= t.durationMs {
		t.offset = clamp(ms, t.durationMs)
		t.playing = false
		return t.offset, true
	}
	return clamp(ms, t.durationMs), true
}

// CurrentTime returns the play head in ms
func (t *Transport) CurrentTime() float64 {
	if !t.playing {
		return t.offset
	}
	return clamp(t.elapsed(), t.durationMs)
}

func (t *Transport) elapsed() float64 {
	return t.offset + float64(t.now().Sub(t.t0))/float64(time.Millisecond)
}

func clamp(ms, durationMs float64) float64 {
	if ms < 0 || durationMs <= 0 {
		return 0
	}
	if ms > durationMs {
		return durationMs
	}
	return ms
}
