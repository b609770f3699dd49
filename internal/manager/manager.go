// Package manager holds the per-display wallpaper assignments of a session
// and turns them into a running painter. Derived pictures are written to the
// temp directory and only promoted to the backgrounds directory on commit.
package manager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"azote/internal/backend"
	"azote/internal/cache"
	"azote/internal/config"
	"azote/internal/display"
	"azote/internal/imageops"
	"azote/internal/logging"
)

var (
	ErrUnknownDisplay   = errors.New("unknown display")
	ErrInvalidMode      = errors.New("invalid mode")
	ErrInvalidColor     = errors.New("invalid colour")
	ErrColorUnsupported = errors.New("plain colours need swaybg")
	ErrNoneIncluded     = errors.New("no display is included")
	ErrUnassigned       = errors.New("display has no wallpaper")
	ErrNothingToRestore = errors.New("nothing to restore")
)

// Assignment is what one display should show.
type Assignment struct {
	Path    string
	Thumb   string
	Mode    string
	Color   string // "#rrggbb"; only used while Path is empty
	Include bool
}

// Setter paints a list of outputs.
type Setter interface {
	Set(ctx context.Context, outputs []backend.Output) error
}

// Options configure a Manager.
type Options struct {
	Displays     []display.Display
	Wayland      bool
	Dirs         config.Dirs
	ThumbWidth   int
	ThumbHeight  int
	Cache        *cache.Cache
	GenericNames bool   // address swaybg outputs by make/model/serial
	Setter       Setter // defaults to backend.NewSetter
}

// Manager is the assignment set of one session.
type Manager struct {
	opts        Options
	displays    []display.Display
	assignments map[string]*Assignment
	setter      Setter
}

// New creates a manager for opts.Displays and pre-populates it from the
// snapshot of the last apply, for displays that are still connected.
func New(opts Options) (*Manager, error) {
	if len(opts.Displays) == 0 {
		return nil, display.ErrNoDisplays
	}
	displays := append([]display.Display(nil), opts.Displays...)
	display.Sort(displays)

	m := &Manager{
		opts:        opts,
		displays:    displays,
		assignments: make(map[string]*Assignment, len(displays)),
		setter:      opts.Setter,
	}
	if m.setter == nil {
		m.setter = backend.NewSetter(opts.Wayland, opts.Dirs.CmdFile)
	}
	for _, d := range displays {
		m.assignments[d.Name] = &Assignment{Mode: backend.DefaultMode(opts.Wayland), Include: true}
	}

	entries, err := LoadSnapshot(opts.Dirs.RestoreFile(opts.Wayland))
	if err != nil {
		logging.Warn("Could not read restore snapshot: %v", err)
	}
	for _, e := range entries {
		a, ok := m.assignments[e.Name]
		if !ok {
			continue
		}
		if _, err := os.Stat(e.Path); err != nil {
			logging.Warn("Restored wallpaper of %s is gone: %s", e.Name, e.Path)
			continue
		}
		a.Path, a.Thumb = e.Path, e.Thumb
		if e.Mode != "" && backend.ValidMode(opts.Wayland, e.Mode) {
			a.Mode = e.Mode
		}
	}
	return m, nil
}

// Displays returns the displays in canonical order.
func (m *Manager) Displays() []display.Display {
	return append([]display.Display(nil), m.displays...)
}

// Wayland reports whether swaybg is the painter.
func (m *Manager) Wayland() bool { return m.opts.Wayland }

// Assignment returns a copy of the assignment of display name.
func (m *Manager) Assignment(name string) (Assignment, bool) {
	a, ok := m.assignments[name]
	if !ok {
		return Assignment{}, false
	}
	return *a, true
}

func (m *Manager) get(name string) (*Assignment, error) {
	a, ok := m.assignments[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDisplay, name)
	}
	return a, nil
}

// Assign puts the original picture path on display name.
func (m *Manager) Assign(name, path string) error {
	a, err := m.get(name)
	if err != nil {
		return err
	}
	abs, thumb, err := m.original(path)
	if err != nil {
		return err
	}
	a.Path, a.Thumb, a.Color = abs, thumb, ""
	logging.Info("Assigned %s to %s", abs, name)
	return nil
}

// AssignAll puts the original picture path on every display.
func (m *Manager) AssignAll(path string) error {
	abs, thumb, err := m.original(path)
	if err != nil {
		return err
	}
	for _, d := range m.displays {
		a := m.assignments[d.Name]
		a.Path, a.Thumb, a.Color = abs, thumb, ""
	}
	logging.Info("Assigned %s to all displays", abs)
	return nil
}

// original resolves path to the absolute form that is painted and stored,
// and returns its cached thumbnail.
func (m *Manager) original(path string) (string, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", err
	}
	if _, err := os.Stat(abs); err != nil {
		return "", "", err
	}
	if m.opts.Cache == nil {
		return abs, "", nil
	}
	thumb, err := m.opts.Cache.EnsureFile(abs)
	if err != nil {
		// A missing preview does not stop the wallpaper from being set.
		logging.Warn("No thumbnail for %s: %v", abs, err)
		return abs, m.opts.Cache.Path(abs), nil
	}
	return abs, thumb, nil
}

// SetMode changes the scaling mode. feh takes a single mode for all screens,
// so on X11 every assignment changes.
func (m *Manager) SetMode(name, mode string) error {
	a, err := m.get(name)
	if err != nil {
		return err
	}
	if !backend.ValidMode(m.opts.Wayland, mode) {
		return fmt.Errorf("%w %q, want one of %v", ErrInvalidMode, mode, backend.Modes(m.opts.Wayland))
	}
	if m.opts.Wayland {
		a.Mode = mode
		return nil
	}
	for _, other := range m.assignments {
		other.Mode = mode
	}
	return nil
}

// SetColor makes display name show a plain colour instead of a picture.
func (m *Manager) SetColor(name, hex string) error {
	a, err := m.get(name)
	if err != nil {
		return err
	}
	if !m.opts.Wayland {
		return ErrColorUnsupported
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidColor, hex, err)
	}
	a.Color, a.Path, a.Thumb = c.Hex(), "", ""
	return nil
}

// SetInclude decides whether display name gets a strip in Split. Excluded
// displays keep their assignment and are still painted.
func (m *Manager) SetInclude(name string, include bool) error {
	a, err := m.get(name)
	if err != nil {
		return err
	}
	a.Include = include
	return nil
}

func (m *Manager) included() []display.Display {
	var out []display.Display
	for _, d := range m.displays {
		if m.assignments[d.Name].Include {
			out = append(out, d)
		}
	}
	return out
}

// committed is where a temp derivative will live after Commit.
func (m *Manager) committed(tempPath string) string {
	return filepath.Join(m.opts.Dirs.Backgrounds, filepath.Base(tempPath))
}

func (m *Manager) assignDerived(name, full, thumb string) {
	a := m.assignments[name]
	a.Path, a.Thumb, a.Color = m.committed(full), m.committed(thumb), ""
	logging.Info("Assigned %s to %s", a.Path, name)
}

// Flip mirrors src and assigns the result to display name.
func (m *Manager) Flip(name, src string) error {
	if _, err := m.get(name); err != nil {
		return err
	}
	full, thumb, err := imageops.FlipHorizontal(src, m.opts.Dirs.Temp, m.opts.ThumbWidth, m.opts.ThumbHeight)
	if err != nil {
		return err
	}
	m.assignDerived(name, full, thumb)
	return nil
}

// Split cuts src into one strip per included display and assigns the strips
// left to right.
func (m *Manager) Split(src string) error {
	targets := m.included()
	if len(targets) == 0 {
		return ErrNoneIncluded
	}
	parts, err := imageops.Split(src, len(targets), m.opts.Dirs.Temp, m.opts.ThumbWidth, m.opts.ThumbHeight)
	if err != nil {
		return err
	}
	for i, d := range targets {
		m.assignDerived(d.Name, parts[i].Path, parts[i].Thumb)
	}
	return nil
}

// ScaleToDisplay crops src to the exact resolution of display name and
// assigns the result to it. A nil cropper centres the crop.
func (m *Manager) ScaleToDisplay(name, src string, cropper imageops.Cropper) error {
	d, ok := display.Find(m.displays, name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDisplay, name)
	}
	full, thumb, err := imageops.ScaleAndCropWithThumb(src, d.Width, d.Height, m.opts.Dirs.Temp, cropper,
		m.opts.ThumbWidth, m.opts.ThumbHeight)
	if err != nil {
		return err
	}
	m.assignDerived(name, full, thumb)
	return nil
}

// outputs lists what the painter should show. swaybg is restarted for all
// outputs at once, so every display with a picture or colour is listed; feh
// needs a picture for every display, in its own screen order.
func (m *Manager) outputs() ([]backend.Output, error) {
	if m.opts.Wayland {
		var out []backend.Output
		for _, d := range m.displays {
			a := m.assignments[d.Name]
			if a.Path == "" && a.Color == "" {
				continue
			}
			out = append(out, backend.Output{Name: d.Label(m.opts.GenericNames), Path: a.Path, Mode: a.Mode, Color: a.Color})
		}
		if len(out) == 0 {
			return nil, backend.ErrNothingToSet
		}
		return out, nil
	}

	ordered := append([]display.Display(nil), m.displays...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })
	out := make([]backend.Output, 0, len(ordered))
	for _, d := range ordered {
		a := m.assignments[d.Name]
		if a.Path == "" {
			return nil, fmt.Errorf("%w: %s", ErrUnassigned, d.Name)
		}
		out = append(out, backend.Output{Name: d.Name, Path: a.Path, Mode: a.Mode})
	}
	return out, nil
}

// Apply commits the assignments, starts the painter and records what was
// set so that the next session and Restore can bring it back.
func (m *Manager) Apply(ctx context.Context) error {
	out, err := m.outputs()
	if err != nil {
		return err
	}
	if err := m.Commit(); err != nil {
		return err
	}
	if err := m.setter.Set(ctx, out); err != nil {
		return fmt.Errorf("set wallpaper: %w", err)
	}
	return m.saveSnapshot()
}

// ApplyAll shows path on every display with one mode.
func (m *Manager) ApplyAll(ctx context.Context, path, mode string) error {
	if mode == "" {
		mode = backend.DefaultMode(m.opts.Wayland)
	}
	if !backend.ValidMode(m.opts.Wayland, mode) {
		return fmt.Errorf("%w %q, want one of %v", ErrInvalidMode, mode, backend.Modes(m.opts.Wayland))
	}
	if err := m.AssignAll(path); err != nil {
		return err
	}
	for _, a := range m.assignments {
		a.Mode = mode
		a.Include = true
	}
	if !m.opts.Wayland {
		return m.Apply(ctx)
	}

	if err := m.Commit(); err != nil {
		return err
	}
	a := m.assignments[m.displays[0].Name]
	wildcard := []backend.Output{{Name: backend.Wildcard, Path: a.Path, Mode: mode}}
	if err := m.setter.Set(ctx, wildcard); err != nil {
		return fmt.Errorf("set wallpaper: %w", err)
	}
	return m.saveSnapshot()
}

// Restore paints the assignments loaded from the last snapshot again.
func (m *Manager) Restore(ctx context.Context) error {
	stored := false
	for _, a := range m.assignments {
		if a.Path != "" {
			stored = true
			break
		}
	}
	if !stored {
		return ErrNothingToRestore
	}
	return m.Apply(ctx)
}
