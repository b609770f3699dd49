package manager

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"azote/internal/imageops"
	"azote/internal/logging"
)

// Entry is one display's line in the restore snapshot.
type Entry struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Thumb string `json:"thumb"`
	Mode  string `json:"mode,omitempty"`
}

// LoadSnapshot reads a restore snapshot. A missing file is an empty one.
// Entries without a thumbnail get the one their path implies.
func LoadSnapshot(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].Thumb == "" && imageops.IsDerived(entries[i].Path) {
			entries[i].Thumb = filepath.Join(filepath.Dir(entries[i].Path), imageops.ThumbName(entries[i].Path))
		}
	}
	return entries, nil
}

// SaveSnapshot writes entries as indented JSON.
func SaveSnapshot(path string, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// saveSnapshot records pictures only; colours are not restored.
func (m *Manager) saveSnapshot() error {
	var entries []Entry
	for _, d := range m.displays {
		a := m.assignments[d.Name]
		if a.Path == "" {
			continue
		}
		entries = append(entries, Entry{Name: d.Name, Path: a.Path, Thumb: a.Thumb, Mode: a.Mode})
	}
	path := m.opts.Dirs.RestoreFile(m.opts.Wayland)
	if err := SaveSnapshot(path, entries); err != nil {
		return err
	}
	logging.Debug("Saved %d entr(ies) to %s", len(entries), path)
	return nil
}

// inDir reports whether path sits directly inside dir.
func inDir(path, dir string) bool {
	return dir != "" && filepath.Dir(path) == filepath.Clean(dir)
}
