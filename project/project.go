package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go-formation/timeline"
)

const timestampLayout = "2006-01-02_15-04-05"

var ErrNoSaves = errors.New("project: no saves")

// Formation is one saved choreography: keyframes plus the timeline settings
// they were authored against
type Formation struct {
	AudioURL    string              `json:"audioUrl,omitempty"`
	BeatMapFile string              `json:"beatMapFile,omitempty"`
	BPM         float64             `json:"bpm"`
	DurationMs  float64             `json:"durationMs"`
	Keyframes   []timeline.Keyframe `json:"keyframes"`
	TrimStartMs float64             `json:"trimStartMs"`
	TrimEndMs   float64             `json:"trimEndMs"`
	LoopEnabled bool                `json:"loopEnabled"`
	Resolution  string              `json:"resolution"`
}

// SaveInfo represents a saved formation file (for listing)
type SaveInfo struct {
	Filename  string
	Name      string // parsed from filename (empty if unnamed)
	Timestamp time.Time
}

// Store keeps projects as folders of timestamped JSON saves under Root
type Store struct {
	Root string
	now  func() time.Time
}

func NewStore(root string) *Store {
	return &Store{Root: root, now: time.Now}
}

// DefaultStore returns the store under ~/.config/go-formation/projects
func DefaultStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewStore(filepath.Join(home, ".config", "go-formation", "projects")), nil
}

// ProjectDir returns the path to a specific project
func (s *Store) ProjectDir(projectName string) string {
	return filepath.Join(s.Root, sanitizeFilename(projectName))
}

// ListProjects returns all project folder names
func (s *Store) ListProjects() ([]string, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var projects []string
	for _, entry := range entries {
		if entry.IsDir() {
			projects = append(projects, entry.Name())
		}
	}

	sort.Strings(projects)
	return projects, nil
}

// ListSaves returns timestamped saves for a project, newest first
func (s *Store) ListSaves(projectName string) ([]SaveInfo, error) {
	entries, err := os.ReadDir(s.ProjectDir(projectName))
	if err != nil {
		if os.IsNotExist(err) {
			return []SaveInfo{}, nil
		}
		return nil, err
	}

	var saves []SaveInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if info, ok := parseSaveName(entry.Name()); ok {
			saves = append(saves, info)
		}
	}

	sort.Slice(saves, func(i, j int) bool {
		if saves[i].Timestamp.Equal(saves[j].Timestamp) {
			return saves[i].Filename > saves[j].Filename
		}
		return saves[i].Timestamp.After(saves[j].Timestamp)
	})

	return saves, nil
}

// parseSaveName reads 2024-01-15_14-30-00.json or 2024-01-15_14-30-00_name.json
func parseSaveName(filename string) (SaveInfo, bool) {
	if !strings.HasSuffix(filename, ".json") {
		return SaveInfo{}, false
	}
	base := strings.TrimSuffix(filename, ".json")
	if len(base) < len(timestampLayout) {
		return SaveInfo{}, false
	}
	ts, err := time.Parse(timestampLayout, base[:len(timestampLayout)])
	if err != nil {
		return SaveInfo{}, false
	}

	name := ""
	if rest := base[len(timestampLayout):]; len(rest) > 1 && rest[0] == '_' {
		name = rest[1:]
	}
	return SaveInfo{Filename: filename, Name: name, Timestamp: ts}, true
}

// Save writes f as a new timestamped save and returns its filename. An empty
// project name saves to "untitled".
func (s *Store) Save(projectName, saveName string, f *Formation) (string, error) {
	if projectName == "" {
		projectName = "untitled"
	}

	dir := s.ProjectDir(projectName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return "", err
	}

	filename := s.now().Format(timestampLayout)
	if saveName != "" {
		filename += "_" + sanitizeFilename(saveName)
	}
	filename += ".json"

	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		return "", err
	}
	return filename, nil
}

// Load reads a specific save, or the most recent if filename is empty
func (s *Store) Load(projectName, filename string) (*Formation, error) {
	if filename == "" {
		saves, err := s.ListSaves(projectName)
		if err != nil {
			return nil, err
		}
		if len(saves) == 0 {
			return nil, fmt.Errorf("%w in project %s", ErrNoSaves, projectName)
		}
		filename = saves[0].Filename
	}

	data, err := os.ReadFile(filepath.Join(s.ProjectDir(projectName), filename))
	if err != nil {
		return nil, err
	}

	f := &Formation{}
	if err := json.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return f, nil
}

// DeleteSave deletes a specific save file
func (s *Store) DeleteSave(projectName, filename string) error {
	return os.Remove(filepath.Join(s.ProjectDir(projectName), filename))
}

// RenameSave changes the name part of a save, keeping its timestamp
func (s *Store) RenameSave(projectName, oldFilename, newName string) (string, error) {
	info, ok := parseSaveName(oldFilename)
	if !ok {
		return "", fmt.Errorf("invalid save filename %q", oldFilename)
	}

	newFilename := info.Timestamp.Format(timestampLayout)
	if newName != "" {
		newFilename += "_" + sanitizeFilename(newName)
	}
	newFilename += ".json"

	dir := s.ProjectDir(projectName)
	return newFilename, os.Rename(filepath.Join(dir, oldFilename), filepath.Join(dir, newFilename))
}

// sanitizeFilename removes/replaces characters that are problematic in filenames
func sanitizeFilename(name string) string {
	return strings.NewReplacer(
		" ", "-",
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "",
		"?", "",
		"\"", "",
		"<", "",
		">", "",
		"|", "",
	).Replace(name)
}
