package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-formation/beatmap"
	"go-formation/config"
	"go-formation/debug"
	"go-formation/metrics"
	"go-formation/midi"
	"go-formation/player"
	"go-formation/project"
	"go-formation/theme"
	"go-formation/tui"
)

func main() {
	palettePath := flag.String("palette", "", "GIMP palette (.gpl) for the UI")
	audioURL := flag.String("audio", "", "audio track url")
	projectName := flag.String("project", "untitled", "project to load and save formations in")
	flag.Parse()

	if err := config.LoadEnv(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	cfg.ApplyEnv()
	if *audioURL != "" {
		cfg.AudioURL = *audioURL
	}
	if flag.NArg() > 0 {
		cfg.BeatMapFile = flag.Arg(0)
	}

	store, err := project.DefaultStore()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	formation, err := store.Load(*projectName, "")
	switch {
	case errors.Is(err, project.ErrNoSaves):
		formation = nil
	case err != nil:
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	default:
		if cfg.AudioURL == "" {
			cfg.AudioURL = formation.AudioURL
		}
		if cfg.BeatMapFile == "" {
			cfg.BeatMapFile = formation.BeatMapFile
		}
	}

	logPath := cfg.Log.File
	if logPath == "" {
		logPath = debug.DefaultPath()
	}
	if err := debug.Enable(logPath, cfg.Log.Level); err != nil {
		fmt.Printf("Warning: logging disabled: %v\n", err)
	}
	defer debug.Disable()

	// Beat map is optional; without one the grid comes from BPM
	var bm beatmap.Map
	if cfg.BeatMapFile != "" {
		bm, err = beatmap.LoadFile(cfg.BeatMapFile)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		debug.Info("main", "beat map %s: %d beats, %.0f bpm", cfg.BeatMapFile, len(bm.Beats), bm.BPM)
	}

	duration := cfg.Timeline.DurationMs
	if bm.DurationMs > 0 {
		duration = bm.DurationMs
	}
	transport := player.NewTransport(duration)
	transport.SetZoom(cfg.Timeline.Zoom)
	if cfg.AudioURL != "" {
		if err := transport.LoadTrack(cfg.AudioURL); err != nil {
			debug.Error("main", "load track: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.MetricsAddr); err != nil {
				debug.Error("metrics", "serve %s: %v", cfg.MetricsAddr, err)
			}
		}()
	}

	opts := tui.Options{
		Config:    cfg,
		BeatMap:   bm,
		Transport: transport,
		Metrics:   m,
		Theme:     theme.New(theme.LoadOrDefault(*palettePath)),
		Store:     store,
		Project:   *projectName,
		Formation: formation,
		Persist:   true,
	}

	if cfg.MIDI.ClickPort != "" {
		clicker, err := midi.OpenClicker(cfg.MIDI.ClickPort)
		if err != nil {
			fmt.Printf("Warning: click port: %v\n", err)
		} else {
			defer clicker.Close()
			opts.Clicker = clicker
		}
	}
	if cfg.MIDI.TapPort != "" {
		// tap pads are hot-plugged; connect whenever the port shows up
		deviceMgr := midi.NewDeviceManager(cfg.MIDI.TapPort)
		go deviceMgr.Run(ctx)
		opts.Taps = deviceMgr.Taps()
		opts.Devices = deviceMgr.Events()
	}

	p := tea.NewProgram(tui.NewModel(opts), tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
