package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"go-formation/debug"
)

// DeviceEvent is emitted when the tap port connects/disconnects
type DeviceEvent struct {
	Type DeviceEventType
	ID   string // port name
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// DeviceManager handles hot-plug of the tap input. The port can be plugged in
// after startup or replugged; taps from every connection arrive on one channel.
type DeviceManager struct {
	want     string
	input    *TapInput
	mu       sync.RWMutex
	events   chan DeviceEvent
	taps     chan NoteEvent
	pollRate time.Duration

	listIns func() ([]string, error)
	open    func(name string, out chan NoteEvent) (*TapInput, error)
}

// NewDeviceManager watches for an input port whose name contains portName
// (case-insensitive)
func NewDeviceManager(portName string) *DeviceManager {
	return &DeviceManager{
		want:     portName,
		events:   make(chan DeviceEvent, 16),
		taps:     make(chan NoteEvent, 32),
		pollRate: time.Second,
		listIns: func() ([]string, error) {
			ins, _, err := Ports()
			return ins, err
		},
		open: openTapInput,
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Taps returns note-ons from whichever port is connected
func (dm *DeviceManager) Taps() <-chan NoteEvent {
	return dm.taps
}

// Connected returns the name of the open port, or ""
func (dm *DeviceManager) Connected() string {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	if dm.input == nil {
		return ""
	}
	return dm.input.Name()
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

func (dm *DeviceManager) scan() {
	ins, err := dm.listIns()
	if err != nil {
		// CoreMIDI is hung - skip this scan
		debug.Log("midi", "scan: %v", err)
		return
	}

	var found string
	for _, name := range ins {
		if matchPort(name, dm.want) {
			found = name
			break
		}
	}

	dm.mu.Lock()
	current := dm.input
	dm.mu.Unlock()

	switch {
	case current != nil && current.Name() == found:
		return

	case current != nil:
		current.Close()
		dm.mu.Lock()
		dm.input = nil
		dm.mu.Unlock()
		dm.emit(DeviceEvent{Type: DeviceDisconnected, ID: current.Name()})
		if found == "" {
			return
		}
		fallthrough

	case found != "":
		tap, err := dm.open(found, dm.taps)
		if err != nil {
			debug.Error("midi", "open %s: %v", found, err)
			return
		}
		dm.mu.Lock()
		dm.input = tap
		dm.mu.Unlock()
		dm.emit(DeviceEvent{Type: DeviceConnected, ID: found})
	}
}

func (dm *DeviceManager) emit(ev DeviceEvent) {
	select {
	case dm.events <- ev:
	default:
		debug.Log("midi", "dropped device event for %s", ev.ID)
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if dm.input != nil {
		dm.input.Close()
		dm.input = nil
	}
}

func matchPort(name, want string) bool {
	if want == "" {
		return false
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(want))
}
