package imageops

import (
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"azote/internal/logging"
)

type gradient struct {
	name     string
	from, to color.NRGBA
}

var samples = []gradient{
	{"azote-wallpaper.png", color.NRGBA{0x1d, 0x2b, 0x53, 0xff}, color.NRGBA{0x7e, 0x25, 0x53, 0xff}},
	{"azote-wallpaper1.png", color.NRGBA{0x00, 0x87, 0x51, 0xff}, color.NRGBA{0xff, 0xec, 0x27, 0xff}},
	{"azote-wallpaper2.png", color.NRGBA{0x29, 0xad, 0xff, 0xff}, color.NRGBA{0xff, 0x77, 0xa8, 0xff}},
}

// SeedSamples writes a few gradient pictures into dir unless they are there
// already, so that a fresh install has something to preview.
func SeedSamples(dir string, w, h int) error {
	for _, s := range samples {
		path := filepath.Join(dir, s.name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := imaging.Save(diagonal(w, h, s.from, s.to), path); err != nil {
			return err
		}
		logging.Info("Seeded sample %s", path)
	}
	return nil
}

func diagonal(w, h int, from, to color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	span := w + h - 2
	if span < 1 {
		span = 1
	}
	mix := func(a, b uint8, t int) uint8 {
		return uint8((int(a)*(span-t) + int(b)*t) / span)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t := x + y
			img.SetNRGBA(x, y, color.NRGBA{mix(from.R, to.R, t), mix(from.G, to.G, t), mix(from.B, to.B, t), 0xff})
		}
	}
	return img
}
