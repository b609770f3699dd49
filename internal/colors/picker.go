package colors

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"strings"

	"github.com/disintegration/imaging"

	"azote/internal/display"
	"azote/internal/logging"
)

// White is what Pick returns when nothing could be sampled.
var White = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// Picker samples a colour the user points at, using grim and slurp on
// Wayland and maim on X11.
type Picker struct {
	Wayland bool
	Run     display.Runner // defaults to display.ExecRunner
}

// Pick never fails: errors are logged and White is returned.
func (p Picker) Pick(ctx context.Context) color.NRGBA {
	if p.Run == nil {
		p.Run = display.ExecRunner
	}
	var c color.NRGBA
	var err error
	if p.Wayland {
		c, err = p.pickWayland(ctx)
	} else {
		c, err = p.pickX11(ctx)
	}
	if err == nil {
		return c
	}
	logging.Warn("Colour pick failed (%v), trying region", err)

	c, err = p.pickRegion(ctx)
	if err != nil {
		logging.Warn("Region pick failed: %v", err)
		return White
	}
	return c
}

func (p Picker) pickWayland(ctx context.Context) (color.NRGBA, error) {
	geom, err := p.Run(ctx, "slurp", "-p")
	if err != nil {
		return color.NRGBA{}, err
	}
	img, err := p.capture(ctx, "grim", "-g", strings.TrimSpace(string(geom)), "-t", "png", "-")
	if err != nil {
		return color.NRGBA{}, err
	}
	b := img.Bounds()
	return color.NRGBAModel.Convert(img.At(b.Min.X, b.Min.Y)).(color.NRGBA), nil
}

// pickX11 averages the area maim returns down to one pixel.
func (p Picker) pickX11(ctx context.Context) (color.NRGBA, error) {
	img, err := p.capture(ctx, "maim", "-st", "0")
	if err != nil {
		return color.NRGBA{}, err
	}
	return imaging.Resize(img, 1, 1, imaging.Box).NRGBAAt(0, 0), nil
}

// pickRegion lets the user draw a rectangle and returns its dominant colour.
func (p Picker) pickRegion(ctx context.Context) (color.NRGBA, error) {
	var img image.Image
	var err error
	if p.Wayland {
		var geom []byte
		if geom, err = p.Run(ctx, "slurp"); err != nil {
			return color.NRGBA{}, err
		}
		img, err = p.capture(ctx, "grim", "-g", strings.TrimSpace(string(geom)), "-t", "png", "-")
	} else {
		img, err = p.capture(ctx, "maim", "-s")
	}
	if err != nil {
		return color.NRGBA{}, err
	}
	return Dominant(img)
}

func (p Picker) capture(ctx context.Context, name string, args ...string) (image.Image, error) {
	out, err := p.Run(ctx, name, args...)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("decode %s output: %w", name, err)
	}
	if img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	return img, nil
}
