package manager

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"azote/internal/logging"
)

// Commit copies the derivatives that are still assigned from the temp
// directory into the backgrounds directory, then deletes every backgrounds
// file no assignment refers to.
func (m *Manager) Commit() error {
	bg, tmp := m.opts.Dirs.Backgrounds, m.opts.Dirs.Temp
	if err := os.MkdirAll(bg, 0755); err != nil {
		return err
	}

	referenced := map[string]bool{}
	for _, a := range m.assignments {
		for _, p := range []string{a.Path, a.Thumb} {
			if p == "" || !inDir(p, bg) {
				continue
			}
			name := filepath.Base(p)
			referenced[name] = true
			staged := filepath.Join(tmp, name)
			if _, err := os.Stat(staged); err != nil {
				continue
			}
			if err := copyFile(staged, p); err != nil {
				return fmt.Errorf("commit %s: %w", name, err)
			}
		}
	}

	entries, err := os.ReadDir(bg)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || referenced[e.Name()] {
			continue
		}
		if err := os.Remove(filepath.Join(bg, e.Name())); err != nil {
			logging.Warn("Could not remove unused background %s: %v", e.Name(), err)
			continue
		}
		logging.Debug("Removed unused background %s", e.Name())
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
