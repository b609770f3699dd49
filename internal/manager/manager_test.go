package manager

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"azote/internal/backend"
	"azote/internal/cache"
	"azote/internal/config"
	"azote/internal/display"
	"azote/internal/imageops"
)

type recordingSetter struct {
	calls [][]backend.Output
}

func (r *recordingSetter) Set(_ context.Context, outputs []backend.Output) error {
	r.calls = append(r.calls, outputs)
	return nil
}

func (r *recordingSetter) last() []backend.Output {
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}

// Listed right-to-left so that canonical order and Index differ.
var testDisplays = []display.Display{
	{Name: "DP-2", X: 64, Y: 0, Width: 64, Height: 36, Index: 0, GenericName: "Acme Right 2"},
	{Name: "DP-1", X: 0, Y: 0, Width: 64, Height: 36, Index: 1, GenericName: "Acme Left 1"},
}

func testDirs(t *testing.T) config.Dirs {
	t.Helper()
	app := t.TempDir()
	d := config.Dirs{
		App:         app,
		Thumbnails:  filepath.Join(app, "thumbnails"),
		Temp:        filepath.Join(app, "temp"),
		Backgrounds: filepath.Join(app, "backgrounds-sway"),
		Sample:      filepath.Join(app, "sample"),
		CmdFile:     filepath.Join(app, ".azotebg"),
	}
	require.NoError(t, d.Prepare())
	return d
}

func picture(t *testing.T, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, imaging.Save(imaging.New(w, h, color.NRGBA{G: 128, A: 255}), path))
	return path
}

func newManager(t *testing.T, wayland bool) (*Manager, *recordingSetter, config.Dirs) {
	t.Helper()
	dirs := testDirs(t)
	setter := &recordingSetter{}
	m, err := New(Options{
		Displays:    testDisplays,
		Wayland:     wayland,
		Dirs:        dirs,
		ThumbWidth:  24,
		ThumbHeight: 13,
		Cache:       cache.New(dirs.Thumbnails, 24, 13, nil),
		Setter:      setter,
	})
	require.NoError(t, err)
	return m, setter, dirs
}

func TestNewRequiresDisplays(t *testing.T) {
	_, err := New(Options{})
	assert.ErrorIs(t, err, display.ErrNoDisplays)
}

func TestDisplaysAreCanonical(t *testing.T) {
	m, _, _ := newManager(t, true)
	ds := m.Displays()
	assert.Equal(t, "DP-1", ds[0].Name)
	assert.Equal(t, "DP-2", ds[1].Name)
}

func TestNewRestoresSnapshot(t *testing.T) {
	// Arrange
	dirs := testDirs(t)
	pic := picture(t, "a.png", 32, 18)
	require.NoError(t, SaveSnapshot(dirs.RestoreFile(true), []Entry{
		{Name: "DP-1", Path: pic, Thumb: "/thumbs/a.png", Mode: "tile"},
		{Name: "DP-2", Path: "/gone/b.png", Thumb: "/thumbs/b.png"},
		{Name: "HDMI-A-9", Path: pic, Thumb: "/thumbs/a.png"},
	}))

	// Act
	m, err := New(Options{Displays: testDisplays, Wayland: true, Dirs: dirs, Setter: &recordingSetter{}})

	// Assert
	require.NoError(t, err)
	a, ok := m.Assignment("DP-1")
	require.True(t, ok)
	assert.Equal(t, pic, a.Path)
	assert.Equal(t, "/thumbs/a.png", a.Thumb)
	assert.Equal(t, "tile", a.Mode)
	b, _ := m.Assignment("DP-2")
	assert.Empty(t, b.Path)
	assert.Equal(t, "fill", b.Mode)
}

func TestAssignAndColorAreExclusive(t *testing.T) {
	m, _, _ := newManager(t, true)
	pic := picture(t, "a.png", 32, 18)

	require.NoError(t, m.Assign("DP-1", pic))
	a, _ := m.Assignment("DP-1")
	assert.Equal(t, pic, a.Path)
	assert.FileExists(t, a.Thumb)

	require.NoError(t, m.SetColor("DP-1", "#FF8800"))
	a, _ = m.Assignment("DP-1")
	assert.Empty(t, a.Path)
	assert.Empty(t, a.Thumb)
	assert.Equal(t, "#ff8800", a.Color)

	require.NoError(t, m.Assign("DP-1", pic))
	a, _ = m.Assignment("DP-1")
	assert.Empty(t, a.Color)
}

func TestAssignErrors(t *testing.T) {
	m, _, _ := newManager(t, true)

	assert.ErrorIs(t, m.Assign("VGA-7", picture(t, "a.png", 8, 8)), ErrUnknownDisplay)
	assert.Error(t, m.Assign("DP-1", "/no/such/file.png"))
	assert.ErrorIs(t, m.SetColor("DP-1", "orange"), ErrInvalidColor)
}

func TestColorNeedsWayland(t *testing.T) {
	m, _, _ := newManager(t, false)
	assert.ErrorIs(t, m.SetColor("DP-1", "#000000"), ErrColorUnsupported)
}

func TestSetMode(t *testing.T) {
	m, _, _ := newManager(t, true)
	require.NoError(t, m.SetMode("DP-1", "center"))
	a, _ := m.Assignment("DP-1")
	b, _ := m.Assignment("DP-2")
	assert.Equal(t, "center", a.Mode)
	assert.Equal(t, "fill", b.Mode)
	assert.ErrorIs(t, m.SetMode("DP-1", "max"), ErrInvalidMode)

	// feh shares one mode.
	x, _, _ := newManager(t, false)
	require.NoError(t, x.SetMode("DP-1", "max"))
	b, _ = x.Assignment("DP-2")
	assert.Equal(t, "max", b.Mode)
}

func TestSplitFollowsCanonicalOrder(t *testing.T) {
	// Arrange
	m, _, dirs := newManager(t, true)
	src := picture(t, "wide.png", 200, 50)

	// Act
	require.NoError(t, m.Split(src))

	// Assert
	left, _ := m.Assignment("DP-1")
	right, _ := m.Assignment("DP-2")
	assert.Equal(t, filepath.Join(dirs.Backgrounds, "part0-wide.png"), left.Path)
	assert.Equal(t, filepath.Join(dirs.Backgrounds, "part1-wide.png"), right.Path)
	assert.Equal(t, filepath.Join(dirs.Backgrounds, "thumb-part1-wide.png"), right.Thumb)
	assert.FileExists(t, filepath.Join(dirs.Temp, "part0-wide.png"))
	assert.NoFileExists(t, left.Path, "derivatives stay in temp until commit")
}

func TestSplitSkipsExcluded(t *testing.T) {
	m, _, dirs := newManager(t, true)
	require.NoError(t, m.SetInclude("DP-1", false))

	require.NoError(t, m.Split(picture(t, "wide.png", 200, 50)))

	right, _ := m.Assignment("DP-2")
	left, _ := m.Assignment("DP-1")
	assert.Equal(t, filepath.Join(dirs.Backgrounds, "part0-wide.png"), right.Path)
	assert.Empty(t, left.Path)

	require.NoError(t, m.SetInclude("DP-2", false))
	assert.ErrorIs(t, m.Split(picture(t, "wide.png", 200, 50)), ErrNoneIncluded)
}

func TestScaleToDisplay(t *testing.T) {
	m, _, dirs := newManager(t, true)

	require.NoError(t, m.ScaleToDisplay("DP-1", picture(t, "tall.png", 30, 90), imageops.CenterCrop{}))

	a, _ := m.Assignment("DP-1")
	assert.Equal(t, filepath.Join(dirs.Backgrounds, "scaled-64x36-tall.png"), a.Path)
	img, err := imageops.Open(filepath.Join(dirs.Temp, "scaled-64x36-tall.png"))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 36, img.Bounds().Dy())

	assert.ErrorIs(t, m.ScaleToDisplay("nope", "x.png", nil), ErrUnknownDisplay)
}

func TestApplyWaylandCommitsAndRecords(t *testing.T) {
	// Arrange
	m, setter, dirs := newManager(t, true)
	stale := filepath.Join(dirs.Backgrounds, "flipped-old.png")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0644))
	orig := picture(t, "orig.png", 40, 20)
	require.NoError(t, m.Flip("DP-1", orig))
	require.NoError(t, m.Assign("DP-2", orig))
	require.NoError(t, m.SetMode("DP-2", "fit"))

	// Act
	require.NoError(t, m.Apply(context.Background()))

	// Assert: derivative promoted, unreferenced file removed
	flipped := filepath.Join(dirs.Backgrounds, "flipped-orig.png")
	assert.FileExists(t, flipped)
	assert.FileExists(t, filepath.Join(dirs.Backgrounds, "thumb-flipped-orig.png"))
	assert.NoFileExists(t, stale)

	assert.Equal(t, []backend.Output{
		{Name: "DP-1", Path: flipped, Mode: "fill"},
		{Name: "DP-2", Path: orig, Mode: "fit"},
	}, setter.last())

	entries, err := LoadSnapshot(dirs.RestoreFile(true))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Name: "DP-1", Path: flipped, Thumb: filepath.Join(dirs.Backgrounds, "thumb-flipped-orig.png"), Mode: "fill"}, entries[0])
}

func TestApplyWaylandColorAndGenericNames(t *testing.T) {
	// Arrange
	dirs := testDirs(t)
	setter := &recordingSetter{}
	m, err := New(Options{Displays: testDisplays, Wayland: true, Dirs: dirs, GenericNames: true, Setter: setter})
	require.NoError(t, err)
	pic := picture(t, "left.png", 16, 9)
	require.NoError(t, m.Assign("DP-1", pic))
	require.NoError(t, m.SetInclude("DP-1", false))
	require.NoError(t, m.SetColor("DP-2", "#102030"))

	// Act
	require.NoError(t, m.Apply(context.Background()))

	// Assert: exclusion only affects splitting
	assert.Equal(t, []backend.Output{
		{Name: "Acme Left 1", Path: pic, Mode: "fill"},
		{Name: "Acme Right 2", Color: "#102030", Mode: "fill"},
	}, setter.last())
}

func TestApplyAfterSplitKeepsExcludedWallpaper(t *testing.T) {
	// Arrange
	m, setter, dirs := newManager(t, true)
	keep := picture(t, "keep.png", 16, 9)
	require.NoError(t, m.Assign("DP-1", keep))
	require.NoError(t, m.SetInclude("DP-1", false))
	require.NoError(t, m.Split(picture(t, "wide.png", 200, 50)))

	// Act
	require.NoError(t, m.Apply(context.Background()))

	// Assert: swaybg is restarted for all outputs, so DP-1 must be listed
	part := filepath.Join(dirs.Backgrounds, "part0-wide.png")
	assert.Equal(t, []backend.Output{
		{Name: "DP-1", Path: keep, Mode: "fill"},
		{Name: "DP-2", Path: part, Mode: "fill"},
	}, setter.last())

	entries, err := LoadSnapshot(dirs.RestoreFile(true))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, keep, entries[0].Path)
	assert.Equal(t, part, entries[1].Path)
}

func TestAssignStoresAbsolutePaths(t *testing.T) {
	// Arrange
	m, setter, dirs := newManager(t, true)
	pic := picture(t, "rel.png", 16, 9)
	t.Chdir(filepath.Dir(pic))

	// Act
	require.NoError(t, m.Assign("DP-1", "rel.png"))
	require.NoError(t, m.Apply(context.Background()))

	// Assert
	require.Len(t, setter.last(), 1)
	assert.Equal(t, pic, setter.last()[0].Path)
	entries, err := LoadSnapshot(dirs.RestoreFile(true))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, pic, entries[0].Path)
	assert.True(t, filepath.IsAbs(entries[0].Path))

	require.NoError(t, m.ApplyAll(context.Background(), "./rel.png", ""))
	assert.Equal(t, pic, setter.last()[0].Path)
	for _, name := range []string{"DP-1", "DP-2"} {
		a, _ := m.Assignment(name)
		assert.Equal(t, pic, a.Path, name)
	}
}

func TestApplyNothingAssigned(t *testing.T) {
	m, setter, _ := newManager(t, true)
	assert.ErrorIs(t, m.Apply(context.Background()), backend.ErrNothingToSet)
	assert.Empty(t, setter.calls)
}

func TestApplyX11UsesScreenOrder(t *testing.T) {
	m, setter, _ := newManager(t, false)
	left, right := picture(t, "l.png", 8, 8), picture(t, "r.png", 8, 8)
	require.NoError(t, m.Assign("DP-1", left))

	assert.ErrorIs(t, m.Apply(context.Background()), ErrUnassigned)

	require.NoError(t, m.Assign("DP-2", right))
	require.NoError(t, m.Apply(context.Background()))
	out := setter.last()
	require.Len(t, out, 2)
	// DP-2 comes first in the xrandr listing.
	assert.Equal(t, right, out[0].Path)
	assert.Equal(t, left, out[1].Path)
	assert.Equal(t, "scale", out[0].Mode)
}

func TestApplyAllUsesWildcard(t *testing.T) {
	m, setter, dirs := newManager(t, true)
	pic := picture(t, "all.png", 16, 9)

	require.NoError(t, m.ApplyAll(context.Background(), pic, "stretch"))

	assert.Equal(t, []backend.Output{{Name: backend.Wildcard, Path: pic, Mode: "stretch"}}, setter.last())
	entries, err := LoadSnapshot(dirs.RestoreFile(true))
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	assert.ErrorIs(t, m.ApplyAll(context.Background(), pic, "scale"), ErrInvalidMode)
}

func TestApplyAllX11RepeatsPath(t *testing.T) {
	m, setter, _ := newManager(t, false)
	pic := picture(t, "all.png", 16, 9)

	require.NoError(t, m.ApplyAll(context.Background(), pic, ""))

	out := setter.last()
	require.Len(t, out, 2)
	assert.Equal(t, pic, out[0].Path)
	assert.Equal(t, pic, out[1].Path)
	assert.Equal(t, "scale", out[1].Mode)
}

func TestRestore(t *testing.T) {
	// Nothing stored yet.
	m, _, dirs := newManager(t, true)
	assert.ErrorIs(t, m.Restore(context.Background()), ErrNothingToRestore)

	pic := picture(t, "keep.png", 16, 9)
	require.NoError(t, m.Assign("DP-2", pic))
	require.NoError(t, m.Apply(context.Background()))

	// A new session picks the snapshot up and paints it again.
	setter := &recordingSetter{}
	again, err := New(Options{Displays: testDisplays, Wayland: true, Dirs: dirs, Setter: setter})
	require.NoError(t, err)
	require.NoError(t, again.Restore(context.Background()))
	assert.Equal(t, []backend.Output{{Name: "DP-2", Path: pic, Mode: "fill"}}, setter.last())
}

func TestLoadSnapshotInfersDerivedThumb(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swaybg.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"DP-1","path":"/bg/part1-a.jpg","thumb":""}]`), 0644))

	entries, err := LoadSnapshot(path)

	require.NoError(t, err)
	assert.Equal(t, "/bg/thumb-part1-a.png", entries[0].Thumb)

	entries, err = LoadSnapshot(filepath.Join(t.TempDir(), "none.json"))
	assert.NoError(t, err)
	assert.Empty(t, entries)
}
