// Package colors picks colours off the screen and extracts palettes from
// pictures.
package colors

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sort"
	"strings"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/lucasb-eyer/go-colorful"
)

var ErrEmptyImage = errors.New("image has no pixels")

// Swatch is one palette entry.
type Swatch struct {
	Color colorful.Color
	Count int // pixels of the sampled image in this cluster
}

// Hex is the swatch as "#rrggbb".
func (s Swatch) Hex() string { return s.Color.Hex() }

// RGB is the swatch as 8-bit channels.
func (s Swatch) RGB() color.NRGBA { return NRGBA(s.Color) }

// PaletteSize maps the user-facing quality setting (1 best, higher faster)
// to the edge the image is shrunk to before clustering. Quality 10 gives
// prominentcolor's default.
func PaletteSize(quality int) uint {
	if quality < 1 {
		quality = 1
	}
	size := prominentcolor.DefaultSize * 10 / quality
	return uint(min(max(size, 16), 800))
}

// Palette returns up to n dominant colours of img, most common first.
func Palette(img image.Image, n, quality int) ([]Swatch, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	if n < 1 {
		n = 1
	}
	items, err := prominentcolor.KmeansWithAll(n, img, prominentcolor.ArgumentNoCropping,
		PaletteSize(quality), []prominentcolor.ColorBackgroundMask{})
	if err != nil {
		return nil, fmt.Errorf("palette: %w", err)
	}
	swatches := make([]Swatch, 0, len(items))
	for _, it := range items {
		swatches = append(swatches, Swatch{
			Color: colorful.Color{R: float64(it.Color.R) / 255, G: float64(it.Color.G) / 255, B: float64(it.Color.B) / 255},
			Count: it.Cnt,
		})
	}
	sort.SliceStable(swatches, func(i, j int) bool { return swatches[i].Count > swatches[j].Count })
	return swatches, nil
}

// Dominant is the single most common colour of img.
func Dominant(img image.Image) (color.NRGBA, error) {
	swatches, err := Palette(img, 1, 10)
	if err != nil {
		return color.NRGBA{}, err
	}
	return swatches[0].RGB(), nil
}

// SortByLightness orders swatches from dark to light.
func SortByLightness(swatches []Swatch) {
	sort.SliceStable(swatches, func(i, j int) bool {
		li, _, _ := swatches[i].Color.Lab()
		lj, _, _ := swatches[j].Color.Lab()
		return li < lj
	})
}

// Hexes joins the swatches as space separated "#rrggbb" values.
func Hexes(swatches []Swatch) string {
	out := make([]string, len(swatches))
	for i, s := range swatches {
		out[i] = s.Hex()
	}
	return strings.Join(out, " ")
}

// NRGBA converts c to 8-bit channels, clamping out-of-gamut values.
func NRGBA(c colorful.Color) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}

// FromNRGBA is the inverse of NRGBA.
func FromNRGBA(c color.NRGBA) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// FormatRGB renders c as "rgb(r, g, b)".
func FormatRGB(c color.NRGBA) string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}
