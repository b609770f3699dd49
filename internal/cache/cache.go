// Package cache keeps one PNG thumbnail per source picture, named after the
// MD5 of the picture's absolute path. Entries are rebuilt when the source is
// modified after the thumbnail was written.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"azote/internal/backend"
	"azote/internal/config"
	"azote/internal/imageops"
	"azote/internal/logging"
)

const ext = ".png"

// Cache is a thumbnail directory plus the geometry and file types it serves.
type Cache struct {
	dir    string
	width  int
	height int
	types  []string
}

// Stats summarises one Ensure pass.
type Stats struct {
	Created   int
	Refreshed int
	Fresh     int
	Failed    int
}

// Total is the number of source files the pass looked at.
func (s Stats) Total() int {
	return s.Created + s.Refreshed + s.Fresh + s.Failed
}

// New returns a cache rooted at dir. The directory is created lazily.
func New(dir string, width, height int, types []string) *Cache {
	return &Cache{dir: dir, width: width, height: height, types: types}
}

// Dir is the directory thumbnails are written to.
func (c *Cache) Dir() string { return c.dir }

// HashName is the hex MD5 of path. Callers pass absolute paths.
func HashName(path string) string {
	sum := md5.Sum([]byte(path))
	return hex.EncodeToString(sum[:])
}

// Path returns where the thumbnail of src lives, whether or not it exists.
func (c *Cache) Path(src string) string {
	if abs, err := filepath.Abs(src); err == nil {
		src = abs
	}
	return filepath.Join(c.dir, HashName(src)+ext)
}

// Ensure brings the thumbnails of every allowed file in folder up to date.
func (c *Cache) Ensure(folder string) (Stats, error) {
	return c.EnsureWithProgress(folder, nil)
}

// EnsureWithProgress is Ensure with a callback invoked after each file.
func (c *Cache) EnsureWithProgress(folder string, progress func(done, total int)) (Stats, error) {
	var stats Stats
	files, err := backend.GetWallpapers(folder, c.types, config.SortAZ)
	if err != nil {
		return stats, fmt.Errorf("scan %s: %w", folder, err)
	}
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return stats, err
	}

	for i, src := range files {
		switch state, err := c.refresh(src); {
		case err != nil:
			logging.Warn("Thumbnail of %s failed: %v", src, err)
			stats.Failed++
		case state == created:
			stats.Created++
		case state == refreshed:
			stats.Refreshed++
		default:
			stats.Fresh++
		}
		if progress != nil {
			progress(i+1, len(files))
		}
	}
	logging.Info("Thumbnails for %s: %d created, %d refreshed, %d fresh, %d failed",
		folder, stats.Created, stats.Refreshed, stats.Fresh, stats.Failed)
	return stats, nil
}

// EnsureFile brings the thumbnail of a single source up to date and returns
// its path.
func (c *Cache) EnsureFile(src string) (string, error) {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return "", err
	}
	if _, err := c.refresh(src); err != nil {
		return "", err
	}
	return c.Path(src), nil
}

type state int

const (
	fresh state = iota
	created
	refreshed
)

func (c *Cache) refresh(src string) (state, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fresh, err
	}
	dest := c.Path(src)

	result := created
	if info, err := os.Stat(dest); err == nil {
		// Equal timestamps count as fresh.
		if !srcInfo.ModTime().After(info.ModTime()) {
			return fresh, nil
		}
		result = refreshed
	}

	img, err := imageops.Open(src)
	if err != nil {
		return result, err
	}
	if err := imageops.WriteThumbnail(img, dest, c.width, c.height); err != nil {
		return result, err
	}
	logging.Debug("Thumbnail %s -> %s", src, dest)
	return result, nil
}

// Clear deletes cached thumbnails and returns how many were removed. With
// all unset only entries that belong to no allowed file in folder go. A
// folder that exists but cannot be read removes nothing.
func (c *Cache) Clear(folder string, all bool) int {
	keep := map[string]bool{}
	if !all {
		files, err := backend.GetWallpapers(folder, c.types, config.SortAZ)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logging.Warn("Scan %s: %v, keeping thumbnails", folder, err)
				return 0
			}
			logging.Warn("Scan %s: %v", folder, err)
		}
		for _, f := range files {
			keep[HashName(f)] = true
		}
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("Read %s: %v", c.dir, err)
		}
		return 0
	}
	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ext {
			continue
		}
		if keep[strings.TrimSuffix(name, ext)] {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, name)); err != nil {
			logging.Warn("Remove %s: %v", name, err)
			continue
		}
		removed++
	}
	logging.Info("Removed %d thumbnail(s) from %s", removed, c.dir)
	return removed
}

// Remove deletes the thumbnail of src, if any.
func (c *Cache) Remove(src string) error {
	err := os.Remove(c.Path(src))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Usage counts the thumbnails and their total size.
func (c *Cache) Usage() (int, int64) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, 0
	}
	var files int
	var size int64
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ext {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files++
		size += info.Size()
	}
	return files, size
}

// FormatBytes renders n the way the status line shows it, e.g. "1.5 MB".
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
