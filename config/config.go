package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// TimelineConfig stores timeline preferences
type TimelineConfig struct {
	BPM         float64 `json:"bpm"`
	Resolution  string  `json:"resolution"`
	Zoom        float64 `json:"zoom"` // pixels per second
	DurationMs  float64 `json:"durationMs"`
	LoopEnabled bool    `json:"loopEnabled"`
}

// MIDIConfig names the ports used for the metronome and tap input
type MIDIConfig struct {
	ClickPort string `json:"clickPort,omitempty"`
	TapPort   string `json:"tapPort,omitempty"`
}

// LogConfig controls debug logging
type LogConfig struct {
	Level string `json:"level,omitempty"`
	File  string `json:"file,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Timeline    TimelineConfig `json:"timeline"`
	MIDI        MIDIConfig     `json:"midi,omitempty"`
	Log         LogConfig      `json:"log,omitempty"`
	MetricsAddr string         `json:"metricsAddr,omitempty"`
	AudioURL    string         `json:"audioUrl,omitempty"`
	BeatMapFile string         `json:"beatMapFile,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Timeline: TimelineConfig{
			BPM:        120,
			Resolution: "beat",
			Zoom:       50,
			DurationMs: 60000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-formation"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads a config file; missing fields keep their defaults
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating the directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// LoadEnv reads .env files into the environment. A missing file is not an
// error; with no paths, ".env" is used.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ApplyEnv overrides config values from FORMATION_* environment variables
func (c *Config) ApplyEnv() {
	c.Log.Level = GetEnv("FORMATION_LOG_LEVEL", c.Log.Level)
	c.Log.File = GetEnv("FORMATION_LOG_FILE", c.Log.File)
	c.MetricsAddr = GetEnv("FORMATION_METRICS_ADDR", c.MetricsAddr)
	c.MIDI.ClickPort = GetEnv("FORMATION_CLICK_PORT", c.MIDI.ClickPort)
	c.MIDI.TapPort = GetEnv("FORMATION_TAP_PORT", c.MIDI.TapPort)
	c.AudioURL = GetEnv("FORMATION_AUDIO_URL", c.AudioURL)
	c.BeatMapFile = GetEnv("FORMATION_BEATMAP", c.BeatMapFile)
	c.Timeline.BPM = GetEnvFloat("FORMATION_BPM", c.Timeline.BPM)
	c.Timeline.DurationMs = GetEnvFloat("FORMATION_DURATION_MS", c.Timeline.DurationMs)
}

// GetEnv returns the value of the environment variable named by key, or fallback
// if the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of key, or fallback if unset or invalid
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

// GetEnvFloat returns the float value of key, or fallback if unset or invalid
func GetEnvFloat(key string, fallback float64) float64 {
	if s := os.Getenv(key); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return fallback
}
