// Package dotfiles reads and edits the colour definitions of terminal
// dotfiles: alacritty configs (YAML or TOML) and X resources.
package dotfiles

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	ErrNoColors   = errors.New("no colour definitions found")
	ErrUnknownKey = errors.New("no such colour")
	ErrFormat     = errors.New("unsupported dotfile")
)

// Color is one definition. Group is empty for X resources.
type Color struct {
	Group string
	Key   string
	Value string // "#rrggbb"
}

// Document is a loaded dotfile whose colours can be changed and written back.
type Document interface {
	Path() string
	Colors() []Color
	Set(group, key, hex string) error
	Bytes() ([]byte, error)
}

// Load picks the parser by file name.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return parseYAML(path, data)
	case ".toml":
		return parseTOML(path, data)
	}
	if strings.Contains(strings.ToLower(filepath.Base(path)), "xresources") {
		return parseXresources(path, data), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrFormat, path)
}

// Save writes doc back to its file.
func Save(doc Document) error {
	data, err := doc.Bytes()
	if err != nil {
		return err
	}
	info, err := os.Stat(doc.Path())
	if err != nil {
		return err
	}
	return os.WriteFile(doc.Path(), data, info.Mode().Perm())
}

// Locate returns the alacritty config and X resources file of the user, or
// empty strings for those that do not exist.
func Locate() (alacritty, xresources string) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", ""
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}
	for _, name := range []string{"alacritty.toml", "alacritty.yml", "alacritty.yaml"} {
		p := filepath.Join(configHome, "alacritty", name)
		if _, err := os.Stat(p); err == nil {
			alacritty = p
			break
		}
	}
	if p := filepath.Join(home, ".Xresources"); fileExists(p) {
		xresources = p
	}
	return alacritty, xresources
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// normalizeHex accepts "#rrggbb" and alacritty's "0xrrggbb" and returns the
// lower-case "#rrggbb" form.
func normalizeHex(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = "#" + s[2:]
	}
	if len(s) != 7 || s[0] != '#' {
		return "", false
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return "", false
	}
	return c.Hex(), true
}

func validHex(hex string) (string, error) {
	v, ok := normalizeHex(hex)
	if !ok {
		return "", fmt.Errorf("invalid colour %q", hex)
	}
	return v, nil
}
