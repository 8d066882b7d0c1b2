package midi

import (
	"errors"
	"fmt"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

var (
	ErrPortNotFound = errors.New("midi: port not found")
	ErrPortTimeout  = errors.New("midi: port scan timed out")
)

// scanTimeout bounds port enumeration; CoreMIDI can hang
const scanTimeout = 3 * time.Second

// Ports lists input and output port names
func Ports() (ins, outs []string, err error) {
	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ch <- result{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		for _, p := range r.ins {
			ins = append(ins, p.String())
		}
		for _, p := range r.outs {
			outs = append(outs, p.String())
		}
		return ins, outs, nil
	case <-time.After(scanTimeout):
		// User needs to run: sudo killall coreaudiod midiserver
		return nil, nil, ErrPortTimeout
	}
}

// General MIDI percussion on channel 10
const (
	ClickChannel    uint8 = 9
	ClickNote       uint8 = 76 // hi wood block
	ClickAccentNote uint8 = 77 // lo wood block
	ClickVelocity   uint8 = 90
	AccentVelocity  uint8 = 127
)

// Clicker plays metronome clicks on a MIDI output
type Clicker struct {
	send  func(gomidi.Message) error
	close func() error
}

// NewClicker wraps an arbitrary sender (tests, virtual ports)
func NewClicker(send func(gomidi.Message) error) *Clicker {
	return &Clicker{send: send}
}

// OpenClicker opens the output port with the exact given name
func OpenClicker(portName string) (*Clicker, error) {
	for _, port := range gomidi.GetOutPorts() {
		if port.String() != portName {
			continue
		}
		send, err := gomidi.SendTo(port)
		if err != nil {
			return nil, fmt.Errorf("open %q: %w", portName, err)
		}
		return &Clicker{send: send, close: port.Close}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrPortNotFound, portName)
}

// ClickEvents returns the note pair for one click
func ClickEvents(accent bool) []Event {
	note, vel := ClickNote, ClickVelocity
	if accent {
		note, vel = ClickAccentNote, AccentVelocity
	}
	return []Event{
		{Type: NoteOn, Channel: ClickChannel, Note: note, Velocity: vel},
		{Type: NoteOff, Channel: ClickChannel, Note: note},
	}
}

// Click sends one click. Percussion ignores note length, so the note-off
// follows immediately.
func (c *Clicker) Click(accent bool) error {
	for _, ev := range ClickEvents(accent) {
		if err := c.send(ev.Message()); err != nil {
			return fmt.Errorf("send click: %w", err)
		}
	}
	return nil
}

func (c *Clicker) Close() error {
	if c.close == nil {
		return nil
	}
	return c.close()
}
