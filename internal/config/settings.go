package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Sorting orders accepted by Settings.Sorting.
const (
	SortNewest = "new"
	SortOldest = "old"
	SortAZ     = "az"
	SortZA     = "za"
)

// Settings are the user preferences that change through the application
// itself, as opposed to Config which is edited by hand.
type Settings struct {
	SrcPath             string `toml:"src_path"              comment:"Folder whose pictures are previewed"`
	Sorting             string `toml:"sorting"               comment:"File order: 'new', 'old', 'az' or 'za'"`
	TrackFiles          bool   `toml:"track_files"           comment:"Refresh thumbnails when the source folder changes"`
	GenericDisplayNames bool   `toml:"generic_display_names" comment:"Address swaybg outputs by make/model/serial instead of port name"`
	Lang                string `toml:"lang"                  comment:"Forced locale, e.g. pl_PL; empty follows $LANG"`

	path string
}

// LoadSettings reads the settings file, creating it with defaults when it
// does not exist. defaultSrc is used when no source folder is stored or the
// stored one has disappeared.
func LoadSettings(path, defaultSrc string) (*Settings, error) {
	s := &Settings{
		SrcPath: defaultSrc,
		Sorting: SortNewest,
		path:    path,
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, s.Save()
		}
		return s, err
	}
	if err := toml.Unmarshal(content, s); err != nil {
		return s, err
	}

	switch s.Sorting {
	case SortNewest, SortOldest, SortAZ, SortZA:
	default:
		s.Sorting = SortNewest
	}
	if s.SrcPath == "" {
		s.SrcPath = defaultSrc
	}
	s.SrcPath = ExpandUser(s.SrcPath)
	if fi, err := os.Stat(s.SrcPath); err != nil || !fi.IsDir() {
		s.SrcPath = defaultSrc
	}
	return s, nil
}

// Save persists the settings to the file they were loaded from.
func (s *Settings) Save() error {
	if s.path == "" {
		return errors.New("settings have no backing file")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	content, err := toml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, content, 0644)
}
