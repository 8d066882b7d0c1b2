package tui

import (
	"fmt"
	"sort"

	"go-formation/debug"
	"go-formation/metrics"
	"go-formation/player"
	"go-formation/timeline"
)

// host owns the formation state the timeline only requests changes to:
// keyframes, trim bounds, loop flag and snap resolution
type host struct {
	props     timeline.Props
	nextID    int
	transport *player.Transport
	metrics   *metrics.Metrics
	seekCause string
	clickOn   bool
	status    string
}

func newHost(props timeline.Props, transport *player.Transport, m *metrics.Metrics) *host {
	h := &host{
		props:     props,
		transport: transport,
		metrics:   m,
		seekCause: "click",
	}
	for _, kf := range props.Keyframes {
		var n int
		if _, err := fmt.Sscanf(kf.ID, "kf-%d", &n); err == nil && n >= h.nextID {
			h.nextID = n + 1
		}
	}
	return h
}

func (h *host) handlers() timeline.Handlers {
	return timeline.Handlers{
		Seek:                 h.seek,
		KeyframeMove:         h.moveKeyframe,
		KeyframeAdd:          h.addKeyframe,
		KeyframeSelect:       h.selectKeyframe,
		SnapResolutionChange: h.setResolution,
		TrimChange:           h.setTrim,
		KeyframeSnapped:      h.snapped,
	}
}

// current returns the props the timeline should render next
func (h *host) current() timeline.Props {
	p := h.props
	p.Keyframes = append([]timeline.Keyframe(nil), h.props.Keyframes...)
	p.CurrentMs = h.transport.CurrentTime()
	p.Playing = h.transport.Playing()
	p.Zoom = h.transport.Zoom()
	return p
}

func (h *host) seek(ms float64) {
	h.transport.SeekTo(ms)
	if h.seekCause == "loop" && !h.transport.Playing() {
		// the end of the track stopped the clock on the crossing frame
		h.transport.Play()
	}
	h.metrics.IncSeek(h.seekCause)
}

func (h *host) moveKeyframe(id string, ms float64) {
	for i := range h.props.Keyframes {
		if h.props.Keyframes[i].ID == id {
			h.props.Keyframes[i].TimestampMs = ms
			h.metrics.IncMoves()
			return
		}
	}
	debug.Log("host", "move for unknown keyframe %s", id)
}

func (h *host) addKeyframe(ms float64) {
	kf := timeline.Keyframe{ID: fmt.Sprintf("kf-%d", h.nextID), TimestampMs: ms}
	h.nextID++
	h.props.Keyframes = append(h.props.Keyframes, kf)
	sort.SliceStable(h.props.Keyframes, func(i, j int) bool {
		return h.props.Keyframes[i].TimestampMs < h.props.Keyframes[j].TimestampMs
	})
	h.metrics.IncAdds()
	h.metrics.SetKeyframes(len(h.props.Keyframes))
	h.status = fmt.Sprintf("added %s at %s", kf.ID, formatMs(ms))
	debug.Info("host", "add %s at %.1f", kf.ID, ms)
}

func (h *host) removeKeyframe(id string) bool {
	for i, kf := range h.props.Keyframes {
		if kf.ID == id {
			h.props.Keyframes = append(h.props.Keyframes[:i], h.props.Keyframes[i+1:]...)
			h.metrics.SetKeyframes(len(h.props.Keyframes))
			h.status = "deleted " + id
			return true
		}
	}
	return false
}

func (h *host) selectKeyframe(id string) {
	h.status = "selected " + id
}

func (h *host) setResolution(res timeline.Resolution) {
	h.props.Resolution = res
	h.metrics.IncResolution(string(res))
	h.status = "snap " + res.Label()
}

func (h *host) setTrim(startMs, endMs float64) {
	h.props.TrimStartMs, h.props.TrimEndMs = startMs, endMs
	h.metrics.IncTrims()
}

func (h *host) snapped(id string) {
	h.metrics.IncSnaps()
	debug.Log("host", "%s snapped", id)
}

func (h *host) toggleLoop() {
	h.props.LoopEnabled = !h.props.LoopEnabled
}

// formatMs renders ms as m:ss.mmm
func formatMs(ms float64) string {
	total := int64(ms)
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d:%02d.%03d", total/60000, total/1000%60, total%1000)
}
