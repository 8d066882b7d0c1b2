package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// TapInput turns note-ons from a MIDI input (pad, pedal, keyboard) into taps
// used to drop keyframes at the play head.
type TapInput struct {
	name     string
	stopFunc func()
	close    func() error
	noteChan chan NoteEvent
}

// OpenTapInput listens on the input port with the exact given name
func OpenTapInput(portName string) (*TapInput, error) {
	return openTapInput(portName, make(chan NoteEvent, 32))
}

// openTapInput delivers taps into out, which may outlive the port
func openTapInput(portName string, out chan NoteEvent) (*TapInput, error) {
	for _, port := range gomidi.GetInPorts() {
		if port.String() != portName {
			continue
		}
		tap := &TapInput{
			name:     portName,
			close:    port.Close,
			noteChan: out,
		}
		stop, err := gomidi.ListenTo(port, func(msg gomidi.Message, timestampms int32) {
			tap.handle(msg)
		})
		if err != nil {
			return nil, fmt.Errorf("open input %q: %w", portName, err)
		}
		tap.stopFunc = stop
		return tap, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrPortNotFound, portName)
}

func (t *TapInput) handle(msg gomidi.Message) {
	var channel, note, velocity uint8
	if msg.GetNoteOn(&channel, &note, &velocity) && velocity > 0 {
		select {
		case t.noteChan <- NoteEvent{Note: note, Velocity: velocity, Channel: channel}:
		default:
			// Drop if channel full
		}
	}
}

func (t *TapInput) Name() string {
	return t.name
}

// Taps delivers note-ons; it is never closed while the port is open
func (t *TapInput) Taps() <-chan NoteEvent {
	return t.noteChan
}

func (t *TapInput) Close() error {
	if t.stopFunc != nil {
		t.stopFunc()
	}
	if t.close != nil {
		return t.close()
	}
	return nil
}
