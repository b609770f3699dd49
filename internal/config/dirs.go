package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dirs is the per-user file layout.
type Dirs struct {
	App          string // $XDG_DATA_HOME/azote
	Thumbnails   string // cached previews named by path hash
	Temp         string // derivatives waiting for a commit; emptied on start
	Backgrounds  string // committed files the painter reads
	Sample       string // seeded default pictures
	LogFile      string
	CmdFile      string // generated swaybg script, ~/.azotebg
	ConfigFile   string // azoterc
	SettingsFile string
}

// NewDirs computes the layout without touching the disk. The backgrounds
// directory is kept separate per painter so that switching between a
// compositor and X11 does not wipe the other one's files.
func NewDirs(wayland bool) (Dirs, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Dirs{}, err
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}
	configFile, err := GetConfigPath()
	if err != nil {
		return Dirs{}, err
	}

	app := filepath.Join(dataHome, AppName)
	bg := "backgrounds-feh"
	if wayland {
		bg = "backgrounds-sway"
	}
	return Dirs{
		App:          app,
		Thumbnails:   filepath.Join(app, "thumbnails"),
		Temp:         filepath.Join(app, "temp"),
		Backgrounds:  filepath.Join(app, bg),
		Sample:       filepath.Join(app, "sample"),
		LogFile:      filepath.Join(app, "log.txt"),
		CmdFile:      filepath.Join(home, ".azotebg"),
		ConfigFile:   configFile,
		SettingsFile: filepath.Join(app, "settings.toml"),
	}, nil
}

// Prepare creates every directory and empties the temporary one. Files that
// cannot be removed from Temp are returned as a joined error but do not stop
// the rest of the cleanup.
func (d Dirs) Prepare() error {
	for _, dir := range []string{d.App, d.Thumbnails, d.Temp, d.Backgrounds, d.Sample} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return ClearDir(d.Temp)
}

// ClearDir removes the regular files directly inside dir.
func ClearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var failed []error
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			failed = append(failed, err)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("clearing %s: %d file(s) left: %w", dir, len(failed), failed[0])
	}
	return nil
}

// RestoreFile is the snapshot of the last apply for the active painter.
func (d Dirs) RestoreFile(wayland bool) string {
	if wayland {
		return filepath.Join(d.App, "swaybg.json")
	}
	return filepath.Join(d.App, "feh.json")
}
