package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"
	"syscall"

	"azote/internal/logging"
)

var (
	// SwaybgModes are the scaling modes swaybg understands.
	SwaybgModes = []string{"stretch", "fit", "fill", "center", "tile"}
	// FehModes are the --bg-* variants feh understands.
	FehModes = []string{"scale", "max", "fill", "center", "tile"}

	ErrNothingToSet = errors.New("no output has a wallpaper or colour assigned")
)

// Wildcard is the swaybg output name that matches every display.
const Wildcard = "*"

// Modes returns the scaling modes of the active backend.
func Modes(wayland bool) []string {
	if wayland {
		return SwaybgModes
	}
	return FehModes
}

// DefaultMode is fill for swaybg and scale for feh.
func DefaultMode(wayland bool) string {
	if wayland {
		return "fill"
	}
	return "scale"
}

// ValidMode reports whether mode belongs to the active backend.
func ValidMode(wayland bool, mode string) bool {
	return slices.Contains(Modes(wayland), mode)
}

// EscapePath makes p safe inside a double-quoted shell word.
func EscapePath(p string) string {
	r := strings.NewReplacer(`\`, `\\`, `$`, `\$`, "`", "\\`", `"`, `\"`)
	return r.Replace(p)
}

// Output is what one display should show. Color is only used when Path is
// empty.
type Output struct {
	Name  string
	Path  string
	Mode  string
	Color string
}

// SwaybgScript renders the shell script that replaces all running swaybg
// instances with one per output. Outputs with neither image nor colour are
// skipped.
func SwaybgScript(entries []Output) []string {
	lines := []string{"#!/usr/bin/env bash", "pkill swaybg"}
	for _, e := range entries {
		switch {
		case e.Path != "":
			mode := e.Mode
			if mode == "" {
				mode = DefaultMode(true)
			}
			lines = append(lines, fmt.Sprintf("swaybg -o '%s' -i \"%s\" -m %s &", e.Name, EscapePath(e.Path), mode))
		case e.Color != "":
			lines = append(lines, fmt.Sprintf("swaybg -o '%s' -c '%s' &", e.Name, e.Color))
		}
	}
	return lines
}

// WriteScript writes lines to path and marks the file executable.
func WriteScript(path string, lines []string) error {
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	// Same effect as chmod +x.
	return os.Chmod(path, info.Mode().Perm()|0111)
}

// RunScript starts the script at path in its own process group so that the
// swaybg instances it spawns outlive us.
func RunScript(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cmd := exec.Command(path)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		logging.Warn("Could not open %s for detaching process I/O: %v", os.DevNull, err)
	} else {
		cmd.Stdin = devNull
		cmd.Stdout = devNull
		cmd.Stderr = devNull
		defer devNull.Close()
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", path, err)
	}
	logging.Info("Detached %s started with PID %d", path, cmd.Process.Pid)
	return cmd.Process.Release()
}

// FehArgs builds feh's argument list. feh assigns the paths to screens in
// the order given.
func FehArgs(mode string, paths []string) []string {
	if mode == "" {
		mode = DefaultMode(false)
	}
	args := make([]string, 0, len(paths)+1)
	args = append(args, "--bg-"+mode)
	return append(args, paths...)
}

// RunFeh runs feh with args and waits for it.
func RunFeh(ctx context.Context, args []string) error {
	out, err := exec.CommandContext(ctx, "feh", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("feh %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Setter applies a set of outputs with whichever tool fits the session.
type Setter struct {
	wayland    bool
	scriptPath string

	// Replaced in tests.
	runScript func(ctx context.Context, path string) error
	runFeh    func(ctx context.Context, args []string) error
}

// NewSetter creates a Setter. On Wayland the swaybg script is written to
// scriptPath before it runs.
func NewSetter(wayland bool, scriptPath string) *Setter {
	return &Setter{
		wayland:    wayland,
		scriptPath: scriptPath,
		runScript:  RunScript,
		runFeh:     RunFeh,
	}
}

// Set shows outputs. On X11 outputs must already be in screen order; the
// first non-empty mode is used for all of them and colour-only outputs are
// ignored since feh cannot paint plain colours.
func (s *Setter) Set(ctx context.Context, outputs []Output) error {
	if s.wayland {
		lines := SwaybgScript(outputs)
		if len(lines) == 2 {
			return ErrNothingToSet
		}
		if err := WriteScript(s.scriptPath, lines); err != nil {
			return err
		}
		logging.Debug("Running %s:\n%s", s.scriptPath, strings.Join(lines, "\n"))
		return s.runScript(ctx, s.scriptPath)
	}

	var mode string
	var paths []string
	for _, o := range outputs {
		if o.Path == "" {
			continue
		}
		if mode == "" {
			mode = o.Mode
		}
		paths = append(paths, o.Path)
	}
	if len(paths) == 0 {
		return ErrNothingToSet
	}
	args := FehArgs(mode, paths)
	logging.Debug("Running feh %s", strings.Join(args, " "))
	return s.runFeh(ctx, args)
}
