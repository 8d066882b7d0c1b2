package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-formation/beatmap"
	"go-formation/midi"
	"go-formation/timeline"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "list":
		err = listPorts()
	case "beats":
		err = printBeats(os.Args[2:])
	case "click":
		err = clickTest(os.Args[2:])
	case "taps":
		err = tapTempo(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Beat map tools")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                     - List all MIDI ports")
	fmt.Println("  beats <file.mid> [res]   - Print the beat map of a MIDI file (res: beat, half-beat, measure)")
	fmt.Println("  click <port> [bpm] [n]   - Play n metronome clicks on an output port")
	fmt.Println("  taps <port>              - Print tap tempo from an input port")
}

func listPorts() error {
	fmt.Println("(waiting up to 3 seconds...)")
	ins, outs, err := midi.Ports()
	if errors.Is(err, midi.ErrPortTimeout) {
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return err
	}
	if err != nil {
		return err
	}

	fmt.Println("=== MIDI Input Ports ===")
	for i, p := range ins {
		fmt.Printf("  %d: %s\n", i, p)
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range outs {
		fmt.Printf("  %d: %s\n", i, p)
	}
	return nil
}

func printBeats(args []string) error {
	if len(args) < 1 {
		return errors.New("beats: missing file")
	}
	res := timeline.Beat
	if len(args) > 1 {
		var err error
		if res, err = timeline.ParseResolution(args[1]); err != nil {
			return err
		}
	}

	bm, err := beatmap.LoadFile(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s: %.1f bpm, %d beats, %.0f ms\n", args[0], bm.BPM, len(bm.Beats), bm.DurationMs)

	// same grid the timeline snaps to
	for i, sec := range timeline.BeatTimestamps(bm.Beats, bm.DurationMs, bm.BPM, res) {
		fmt.Printf("  %4d  %10.1f ms\n", i, sec*1000)
	}
	return nil
}

func clickTest(args []string) error {
	if len(args) < 1 {
		return errors.New("click: missing port")
	}
	bpm, n := beatmap.DefaultBPM, 8
	if len(args) > 1 {
		v, err := strconv.ParseFloat(args[1], 64)
		if err != nil || v <= 0 {
			return fmt.Errorf("click: bad bpm %q", args[1])
		}
		bpm = v
	}
	if len(args) > 2 {
		v, err := strconv.Atoi(args[2])
		if err != nil || v <= 0 {
			return fmt.Errorf("click: bad count %q", args[2])
		}
		n = v
	}

	c, err := midi.OpenClicker(args[0])
	if err != nil {
		return err
	}
	defer c.Close()

	interval := time.Duration(60 / bpm * float64(time.Second))
	fmt.Printf("Clicking %d beats at %.1f bpm on %s\n", n, bpm, args[0])
	for i := 0; i < n; i++ {
		if err := c.Click(i%timeline.BeatsPerMeasure == 0); err != nil {
			return err
		}
		time.Sleep(interval)
	}
	return nil
}

func tapTempo(args []string) error {
	if len(args) < 1 {
		return errors.New("taps: missing port")
	}
	tap, err := midi.OpenTapInput(args[0])
	if err != nil {
		return err
	}
	defer tap.Close()

	fmt.Printf("Listening on %s. Ctrl+C to exit.\n", tap.Name())
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	var last time.Time
	for {
		select {
		case ev := <-tap.Taps():
			now := time.Now()
			if !last.IsZero() {
				gap := now.Sub(last)
				fmt.Printf("  note %3d  %6.0f ms  %6.1f bpm\n", ev.Note, float64(gap.Milliseconds()), 60/gap.Seconds())
			} else {
				fmt.Printf("  note %3d\n", ev.Note)
			}
			last = now
		case <-stop:
			return nil
		}
	}
}
