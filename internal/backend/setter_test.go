package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapePath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/plain/path.jpg", "/plain/path.jpg"},
		{"/with space/a.png", "/with space/a.png"},
		{`/a\b`, `/a\\b`},
		{"/$HOME/x", `/\$HOME/x`},
		{"/`cmd`", "/\\`cmd\\`"},
		{`/"q"`, `/\"q\"`},
		// Backslashes are escaped before the characters that introduce new ones.
		{`\$`, `\\\$`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapePath(tt.in), tt.in)
	}
}

func TestModes(t *testing.T) {
	assert.Equal(t, "fill", DefaultMode(true))
	assert.Equal(t, "scale", DefaultMode(false))
	assert.True(t, ValidMode(true, "stretch"))
	assert.False(t, ValidMode(true, "scale"))
	assert.True(t, ValidMode(false, "max"))
	assert.False(t, ValidMode(false, "fit"))
}

func TestSwaybgScript(t *testing.T) {
	lines := SwaybgScript([]Output{
		{Name: "DP-1", Path: "/home/u/my $pics/a.jpg", Mode: "fit"},
		{Name: "HDMI-A-1", Color: "#112233"},
		{Name: "eDP-1"},
		{Name: "DP-2", Path: "/b.png", Color: "#ffffff"},
	})

	assert.Equal(t, []string{
		"#!/usr/bin/env bash",
		"pkill swaybg",
		`swaybg -o 'DP-1' -i "/home/u/my \$pics/a.jpg" -m fit &`,
		"swaybg -o 'HDMI-A-1' -c '#112233' &",
		`swaybg -o 'DP-2' -i "/b.png" -m fill &`,
	}, lines)
}

func TestWriteScriptIsExecutable(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".azotebg")

	require.NoError(t, WriteScript(path, []string{"#!/usr/bin/env bash", "pkill swaybg"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "#!/usr/bin/env bash\npkill swaybg\n", string(data))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0111), info.Mode().Perm()&0111)
}

func TestFehArgs(t *testing.T) {
	assert.Equal(t, []string{"--bg-max", "/a.jpg", "/b.jpg"}, FehArgs("max", []string{"/a.jpg", "/b.jpg"}))
	assert.Equal(t, []string{"--bg-scale", "/a.jpg"}, FehArgs("", []string{"/a.jpg"}))
}

func TestSetterWayland(t *testing.T) {
	// Arrange
	script := filepath.Join(t.TempDir(), ".azotebg")
	s := NewSetter(true, script)
	var ran string
	s.runScript = func(_ context.Context, path string) error {
		ran = path
		return nil
	}

	// Act
	err := s.Set(context.Background(), []Output{{Name: Wildcard, Path: "/a.jpg", Mode: "tile"}})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, script, ran)
	data, err := os.ReadFile(script)
	require.NoError(t, err)
	assert.Contains(t, string(data), `swaybg -o '*' -i "/a.jpg" -m tile &`)
}

func TestSetterX11(t *testing.T) {
	s := NewSetter(false, "")
	var got []string
	s.runFeh = func(_ context.Context, args []string) error {
		got = args
		return nil
	}

	err := s.Set(context.Background(), []Output{
		{Name: "VGA-0", Color: "#000000"},
		{Name: "DVI-0", Path: "/left.jpg", Mode: "fill"},
		{Name: "HDMI-0", Path: "/right.jpg", Mode: "tile"},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"--bg-fill", "/left.jpg", "/right.jpg"}, got)
}

func TestSetterNothingToSet(t *testing.T) {
	s := NewSetter(true, filepath.Join(t.TempDir(), "x"))
	assert.ErrorIs(t, s.Set(context.Background(), []Output{{Name: "DP-1"}}), ErrNothingToSet)

	s = NewSetter(false, "")
	assert.ErrorIs(t, s.Set(context.Background(), []Output{{Name: "DP-1", Color: "#fff"}}), ErrNothingToSet)
}
