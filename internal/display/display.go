// Package display enumerates the connected outputs, asking whichever of
// sway, wlr-randr, i3 or xrandr the session provides.
package display

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"azote/internal/logging"
)

var ErrNoDisplays = errors.New("no displays found")

// Display is one output with its position in the global layout.
type Display struct {
	Name        string
	X           int
	Y           int
	Width       int
	Height      int
	GenericName string // "make model serial" where the source reports it
	Index       int    // position in the source's own listing
}

func (d Display) String() string {
	return fmt.Sprintf("%s %dx%d+%d+%d", d.Name, d.Width, d.Height, d.X, d.Y)
}

// Label is the name shown to the user.
func (d Display) Label(generic bool) string {
	if generic && d.GenericName != "" {
		return d.GenericName
	}
	return d.Name
}

// Runner runs an external command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner is the Runner backed by os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return out, nil
}

// Source lists displays one particular way.
type Source interface {
	Name() string
	Wayland() bool
	Enumerate(ctx context.Context) ([]Display, error)
}

// Env is the part of the environment that decides which sources to try.
type Env struct {
	SwaySock       string
	WaylandDisplay string
	I3Sock         string
	Desktop        string
	X11Display     string
}

// EnvFromOS reads Env from the process environment.
func EnvFromOS() Env {
	return Env{
		SwaySock:       os.Getenv("SWAYSOCK"),
		WaylandDisplay: os.Getenv("WAYLAND_DISPLAY"),
		I3Sock:         os.Getenv("I3SOCK"),
		Desktop:        os.Getenv("XDG_CURRENT_DESKTOP"),
		X11Display:     os.Getenv("DISPLAY"),
	}
}

// lastResort is set when a build includes a toolkit-based source.
var lastResort func(env Env) Source

// Detect returns the sources worth trying, most specific first.
func Detect(env Env, run Runner) []Source {
	if run == nil {
		run = ExecRunner
	}
	var sources []Source
	switch {
	case env.SwaySock != "":
		sources = append(sources, SwaySource{Run: run}, WlrRandrSource{Run: run})
	case env.WaylandDisplay != "":
		sources = append(sources, WlrRandrSource{Run: run}, SwaySource{Run: run})
	}
	if env.SwaySock == "" && (env.I3Sock != "" || strings.Contains(strings.ToLower(env.Desktop), "i3")) {
		sources = append(sources, I3Source{})
	}
	if env.X11Display != "" && env.WaylandDisplay == "" {
		sources = append(sources, XrandrSource{Run: run})
	}
	if lastResort != nil {
		sources = append(sources, lastResort(env))
	}
	return sources
}

// Discover asks each source in turn and returns the first non-empty result
// in canonical order, together with the source that produced it.
func Discover(ctx context.Context, sources []Source) ([]Display, Source, error) {
	for _, src := range sources {
		displays, err := src.Enumerate(ctx)
		if err != nil {
			logging.Debug("Display source %s failed: %v", src.Name(), err)
			continue
		}
		if len(displays) == 0 {
			logging.Debug("Display source %s found no outputs", src.Name())
			continue
		}
		Sort(displays)
		logging.Info("Found %d display(s) via %s", len(displays), src.Name())
		return displays, src, nil
	}
	return nil, nil, ErrNoDisplays
}

// Sort orders displays left to right, then top to bottom.
func Sort(displays []Display) {
	sort.SliceStable(displays, func(i, j int) bool {
		if displays[i].X != displays[j].X {
			return displays[i].X < displays[j].X
		}
		return displays[i].Y < displays[j].Y
	})
}

// Find returns the display called name.
func Find(displays []Display, name string) (Display, bool) {
	for _, d := range displays {
		if d.Name == name {
			return d, true
		}
	}
	return Display{}, false
}

func genericName(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" && p != "Unknown" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
