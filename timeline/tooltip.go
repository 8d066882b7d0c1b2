package timeline

import (
	"sort"
	"time"

	"go-formation/debug"
)

// SnapTooltipDelay is how long the "Snapped!" indicator stays up
const SnapTooltipDelay = 500 * time.Millisecond

// Timer is a pending scheduled callback
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. Implementations decide which goroutine runs f;
// the tooltip assumes it runs on the same event loop as everything else.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// ChanScheduler waits on a timer goroutine but only posts f to the channel.
// The owner's event loop receives and runs it, so the tooltip is never
// touched off that loop.
type ChanScheduler chan func()

func (c ChanScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, func() { c <- f })
}

// heldScheduler never fires; the tooltip stays up until the next Show or Cancel
type heldScheduler struct{}

type heldTimer struct{}

func (heldTimer) Stop() bool { return true }

func (heldScheduler) AfterFunc(time.Duration, func()) Timer {
	return heldTimer{}
}

// SnapTooltip tracks the keyframes showing the "Snapped!" indicator. One
// clear timer is outstanding at most; every Show replaces it.
type SnapTooltip struct {
	ids     map[string]struct{}
	sched   Scheduler
	delay   time.Duration
	pending Timer
	gen     uint64
}

// NewSnapTooltip creates a tooltip cleared SnapTooltipDelay after the last Show.
// A nil sched never clears on its own.
func NewSnapTooltip(sched Scheduler) *SnapTooltip {
	if sched == nil {
		debug.Log("tooltip", "no scheduler, snap indicator will not auto-clear")
		sched = heldScheduler{}
	}
	return &SnapTooltip{
		ids:   make(map[string]struct{}),
		sched: sched,
		delay: SnapTooltipDelay,
	}
}

// Show adds id to the visible set and restarts the clear timer
func (t *SnapTooltip) Show(id string) {
	t.ids[id] = struct{}{}

	if t.pending != nil {
		t.pending.Stop()
	}
	// a callback that already fired but hasn't run yet sees a stale generation
	t.gen++
	gen := t.gen
	t.pending = t.sched.AfterFunc(t.delay, func() {
		if gen != t.gen {
			return
		}
		t.pending = nil
		t.clear()
	})
}

// Visible reports whether id currently shows the indicator
func (t *SnapTooltip) Visible(id string) bool {
	_, ok := t.ids[id]
	return ok
}

// IDs returns the visible ids, sorted
func (t *SnapTooltip) IDs() []string {
	out := make([]string, 0, len(t.ids))
	for id := range t.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (t *SnapTooltip) Len() int {
	return len(t.ids)
}

// Cancel stops the pending timer and hides everything
func (t *SnapTooltip) Cancel() {
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	t.gen++
	t.clear()
}

func (t *SnapTooltip) clear() {
	for id := range t.ids {
		delete(t.ids, id)
	}
}
