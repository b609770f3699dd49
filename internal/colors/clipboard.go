package colors

import (
	"errors"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"
)

var ErrNoClipboard = errors.New("clipboard unavailable")

// Copy puts text on the clipboard, falling back to wl-copy when the
// clipboard package finds no X11 helper.
func Copy(text string) error {
	if err := clipboard.WriteAll(text); err == nil {
		return nil
	}
	cmd := exec.Command("wl-copy")
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err == nil {
		return nil
	}
	return ErrNoClipboard
}
