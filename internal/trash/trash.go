// Package trash moves files to the desktop trash through gio or trash-cli.
package trash

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"azote/internal/logging"
)

var ErrUnavailable = errors.New("neither gio nor trash-put is installed")

type tool struct {
	name string
	args []string
}

var tools = []tool{
	{"gio", []string{"trash"}},
	{"trash-put", nil},
}

// Replaced in tests.
var (
	lookPath = exec.LookPath
	run      = func(ctx context.Context, name string, args ...string) error {
		out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
		if err != nil {
			return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
		}
		return nil
	}
)

// Available names the tool Move would use, or "" when there is none.
func Available() string {
	for _, t := range tools {
		if _, err := lookPath(t.name); err == nil {
			return t.name
		}
	}
	return ""
}

// Move sends path to the trash with the first tool that is installed.
func Move(ctx context.Context, path string) error {
	for _, t := range tools {
		bin, err := lookPath(t.name)
		if err != nil {
			continue
		}
		args := append(append([]string(nil), t.args...), path)
		if err := run(ctx, bin, args...); err != nil {
			return err
		}
		logging.Info("Moved %s to trash with %s", path, t.name)
		return nil
	}
	return ErrUnavailable
}
