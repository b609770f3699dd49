// Package imageops produces thumbnails and derived wallpapers (flipped,
// split, scaled-and-cropped) from source pictures. Sources are only ever
// opened for reading; every result is written to a caller-chosen directory.
package imageops

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"strings"

	// Extra decoders beyond what imaging registers.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"

	"azote/internal/logging"
)

var (
	ErrInvalidParts  = errors.New("number of parts must be at least 1")
	ErrInvalidTarget = errors.New("target dimensions must be positive")
	ErrTooManyParts  = errors.New("more parts than pixels along the split axis")
)

// Checkerboard colours and tile size of the thumbnail padding.
var (
	checkerLight = color.NRGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}
	checkerDark  = color.NRGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xff}
)

const checkerTile = 8

// Open decodes the image at path, applying EXIF orientation.
func Open(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return img, nil
}

// Thumbnail fits img into a w x h box without upscaling and centres it on a
// checkerboard canvas of exactly w x h.
func Thumbnail(img image.Image, w, h int) *image.NRGBA {
	fitted := resize.Thumbnail(uint(w), uint(h), img, resize.Lanczos3)
	return imaging.PasteCenter(Checkerboard(w, h), fitted)
}

// Checkerboard returns a w x h canvas tiled with two greys.
func Checkerboard(w, h int) *image.NRGBA {
	canvas := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: checkerLight}, image.Point{}, draw.Src)
	dark := &image.Uniform{C: checkerDark}
	for y := 0; y < h; y += checkerTile {
		for x := 0; x < w; x += checkerTile {
			if (x/checkerTile+y/checkerTile)%2 == 1 {
				draw.Draw(canvas, image.Rect(x, y, x+checkerTile, y+checkerTile).Intersect(canvas.Bounds()), dark, image.Point{}, draw.Src)
			}
		}
	}
	return canvas
}

// WriteThumbnail renders the thumbnail of img into dest as PNG.
func WriteThumbnail(img image.Image, dest string, w, h int) error {
	return imaging.Save(Thumbnail(img, w, h), dest)
}

// Part is one strip produced by Split.
type Part struct {
	Path  string
	Thumb string
	Rect  image.Rectangle // area of the source this strip covers
}

// FlipHorizontal mirrors src left-right and writes the result plus its
// thumbnail into dir. It returns the paths of both files.
func FlipHorizontal(src, dir string, thumbW, thumbH int) (string, string, error) {
	img, err := Open(src)
	if err != nil {
		return "", "", opError("flip", src, err)
	}
	flipped := imaging.FlipH(img)

	name := FlippedName(filepath.Base(src))
	full := filepath.Join(dir, name)
	if err := save(flipped, full); err != nil {
		return "", "", opError("flip", src, err)
	}
	thumb := filepath.Join(dir, ThumbName(name))
	if err := WriteThumbnail(flipped, thumb, thumbW, thumbH); err != nil {
		return "", "", opError("flip", src, err)
	}
	logging.Info("Flipped %s -> %s", src, full)
	return full, thumb, nil
}

// SplitRects partitions bounds into n strips along its longer axis: vertical
// strips for landscape images, horizontal ones otherwise. The first n-1
// strips share the integer size; the last one runs to the true edge. Every
// strip is at least one pixel wide, so n may not exceed the axis length.
func SplitRects(bounds image.Rectangle, n int) ([]image.Rectangle, error) {
	if n < 1 {
		return nil, ErrInvalidParts
	}
	w, h := bounds.Dx(), bounds.Dy()
	if axis := max(w, h); n > axis {
		return nil, fmt.Errorf("%w: %d parts of %d px", ErrTooManyParts, n, axis)
	}
	rects := make([]image.Rectangle, n)
	if w > h {
		step := w / n
		for i := 0; i < n; i++ {
			x0 := bounds.Min.X + i*step
			x1 := x0 + step
			if i == n-1 {
				x1 = bounds.Max.X
			}
			rects[i] = image.Rect(x0, bounds.Min.Y, x1, bounds.Max.Y)
		}
		return rects, nil
	}
	step := h / n
	for i := 0; i < n; i++ {
		y0 := bounds.Min.Y + i*step
		y1 := y0 + step
		if i == n-1 {
			y1 = bounds.Max.Y
		}
		rects[i] = image.Rect(bounds.Min.X, y0, bounds.Max.X, y1)
	}
	return rects, nil
}

// Split cuts src into n strips (see SplitRects) and writes each strip and its
// thumbnail into dir, ordered by strip index.
func Split(src string, n int, dir string, thumbW, thumbH int) ([]Part, error) {
	if n < 1 {
		return nil, opError("split", src, ErrInvalidParts)
	}
	img, err := Open(src)
	if err != nil {
		return nil, opError("split", src, err)
	}
	rects, err := SplitRects(img.Bounds(), n)
	if err != nil {
		return nil, opError("split", src, err)
	}

	base := filepath.Base(src)
	parts := make([]Part, 0, n)
	for i, r := range rects {
		strip := imaging.Crop(img, r)
		name := PartName(i, base)
		full := filepath.Join(dir, name)
		if err := save(strip, full); err != nil {
			return nil, opError("split", src, err)
		}
		thumb := filepath.Join(dir, ThumbName(name))
		if err := WriteThumbnail(strip, thumb, thumbW, thumbH); err != nil {
			return nil, opError("split", src, err)
		}
		parts = append(parts, Part{Path: full, Thumb: thumb, Rect: r})
	}
	logging.Info("Split %s into %d part(s)", src, n)
	return parts, nil
}

// save encodes img by the extension of path.
func save(img image.Image, path string) error {
	return imaging.Save(img, path, imaging.JPEGQuality(95))
}

func opError(op, src string, err error) error {
	wrapped := fmt.Errorf("%s %s: %w", op, src, err)
	logging.Error("%v", wrapped)
	return wrapped
}

// encodable reports whether imaging can write files with this extension.
func encodable(ext string) bool {
	_, err := imaging.FormatFromExtension(ext)
	return err == nil
}

// derivedBase keeps the source name when it can be re-encoded as is and
// switches the extension to .png otherwise.
func derivedBase(name string) string {
	ext := filepath.Ext(name)
	if encodable(ext) {
		return name
	}
	return strings.TrimSuffix(name, ext) + ".png"
}
