// Package backend finds wallpaper files and turns display assignments into
// swaybg or feh invocations.
package backend

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"azote/internal/config"
)

// DefaultTypes are the extensions accepted when the caller passes none.
var DefaultTypes = []string{"jpg", "jpeg", "png", "webp"}

// Extensions builds the lookup set for a list of allowed types. Entries may
// be given with or without the leading dot, in any case.
func Extensions(types []string) map[string]bool {
	if len(types) == 0 {
		types = DefaultTypes
	}
	exts := make(map[string]bool, len(types))
	for _, t := range types {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if !strings.HasPrefix(t, ".") {
			t = "." + t
		}
		exts[t] = true
	}
	return exts
}

// Allowed reports whether name carries one of the extensions in exts.
func Allowed(name string, exts map[string]bool) bool {
	return exts[strings.ToLower(filepath.Ext(name))]
}

type wallpaper struct {
	path    string
	name    string
	modTime int64
}

// GetWallpapers scans dir (not recursively) and returns the absolute paths of
// all files whose extension is in types, ordered by sorting. Unknown sort
// orders fall back to config.SortNewest.
func GetWallpapers(dir string, types []string, sorting string) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, err
	}

	exts := Extensions(types)
	var found []wallpaper
	for _, entry := range entries {
		if entry.IsDir() || !Allowed(entry.Name(), exts) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		found = append(found, wallpaper{
			path:    filepath.Join(abs, entry.Name()),
			name:    entry.Name(),
			modTime: info.ModTime().UnixNano(),
		})
	}

	sort.SliceStable(found, func(i, j int) bool {
		a, b := found[i], found[j]
		switch sorting {
		case config.SortOldest:
			return a.modTime < b.modTime
		case config.SortAZ:
			return strings.ToLower(a.name) < strings.ToLower(b.name)
		case config.SortZA:
			return strings.ToLower(a.name) > strings.ToLower(b.name)
		default:
			return a.modTime > b.modTime
		}
	})

	paths := make([]string, len(found))
	for i, w := range found {
		paths[i] = w.path
	}
	return paths, nil
}
