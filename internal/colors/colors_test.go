package colors

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"azote/internal/display"
)

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// scriptedRunner answers each command name with a canned result.
func scriptedRunner(outputs map[string][]byte) (display.Runner, *[]string) {
	var calls []string
	return func(_ context.Context, name string, args ...string) ([]byte, error) {
		calls = append(calls, name)
		out, ok := outputs[name]
		if !ok {
			return nil, errors.New(name + ": not found")
		}
		return out, nil
	}, &calls
}

func near(t *testing.T, want, got color.NRGBA) {
	t.Helper()
	assert.InDelta(t, int(want.R), int(got.R), 24, "red of %v", got)
	assert.InDelta(t, int(want.G), int(got.G), 24, "green of %v", got)
	assert.InDelta(t, int(want.B), int(got.B), 24, "blue of %v", got)
}

func TestPickWayland(t *testing.T) {
	pixel := imaging.New(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	run, calls := scriptedRunner(map[string][]byte{
		"slurp": []byte("100,200 1x1\n"),
		"grim":  pngBytes(t, pixel),
	})

	c := Picker{Wayland: true, Run: run}.Pick(context.Background())

	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255}, c)
	assert.Equal(t, []string{"slurp", "grim"}, *calls)
}

func TestPickX11Averages(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 100, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 200, A: 255})
	run, _ := scriptedRunner(map[string][]byte{"maim": pngBytes(t, img)})

	c := Picker{Run: run}.Pick(context.Background())

	assert.InDelta(t, 150, int(c.R), 1)
	assert.Equal(t, uint8(0), c.G)
}

func TestPickDefaultsToWhite(t *testing.T) {
	run, calls := scriptedRunner(nil)

	c := Picker{Wayland: true, Run: run}.Pick(context.Background())

	assert.Equal(t, White, c)
	// Point pick first, then the region fallback.
	assert.Equal(t, []string{"slurp", "slurp"}, *calls)
}

func TestPickGarbageOutput(t *testing.T) {
	run, _ := scriptedRunner(map[string][]byte{"maim": []byte("nope")})
	assert.Equal(t, White, Picker{Run: run}.Pick(context.Background()))
}

func TestPaletteSingleColour(t *testing.T) {
	img := imaging.New(40, 40, color.NRGBA{R: 0x33, G: 0x66, B: 0x99, A: 255})

	swatches, err := Palette(img, 1, 10)

	require.NoError(t, err)
	require.Len(t, swatches, 1)
	near(t, color.NRGBA{R: 0x33, G: 0x66, B: 0x99, A: 255}, swatches[0].RGB())
}

func TestPaletteTwoColours(t *testing.T) {
	img := imaging.New(60, 40, color.NRGBA{R: 255, A: 255})
	img = imaging.Paste(img, imaging.New(20, 40, color.NRGBA{B: 255, A: 255}), image.Pt(40, 0))

	swatches, err := Palette(img, 2, 10)

	require.NoError(t, err)
	require.Len(t, swatches, 2)
	// Red covers twice the area of blue. Resampling blends the seam, so
	// the centroids are only close to the pure colours.
	near(t, color.NRGBA{R: 255, A: 255}, swatches[0].RGB())
	near(t, color.NRGBA{B: 255, A: 255}, swatches[1].RGB())
	assert.Greater(t, swatches[0].Count, swatches[1].Count)
}

func TestPaletteEmpty(t *testing.T) {
	_, err := Palette(image.NewNRGBA(image.Rect(0, 0, 0, 0)), 3, 10)
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestPaletteSize(t *testing.T) {
	assert.Equal(t, uint(80), PaletteSize(10))
	assert.Equal(t, uint(800), PaletteSize(0))
	assert.Equal(t, uint(16), PaletteSize(1000))
}

func TestSortByLightness(t *testing.T) {
	swatches := []Swatch{
		{Color: colorful.Color{R: 1, G: 1, B: 1}},
		{Color: colorful.Color{}},
		{Color: colorful.Color{R: 0.5, G: 0.5, B: 0.5}},
	}

	SortByLightness(swatches)

	assert.Equal(t, "#000000 #808080 #ffffff", Hexes(swatches))
}

func TestConversions(t *testing.T) {
	c := color.NRGBA{R: 1, G: 128, B: 255, A: 255}
	assert.Equal(t, c, NRGBA(FromNRGBA(c)))
	assert.Equal(t, "rgb(1, 128, 255)", FormatRGB(c))
}
