package imageops

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/muesli/smartcrop"
	"github.com/nfnt/resize"

	"azote/internal/logging"
)

// Cropper turns an image into exactly w x h pixels.
type Cropper interface {
	Fit(img image.Image, w, h int) (image.Image, error)
}

// CenterCrop scales the image to cover the target and trims the overflow
// equally from both sides.
type CenterCrop struct{}

// Fit implements Cropper.
func (CenterCrop) Fit(img image.Image, w, h int) (image.Image, error) {
	if w <= 0 || h <= 0 {
		return nil, ErrInvalidTarget
	}
	return imaging.CropCenter(Cover(img, w, h), w, h), nil
}

// SmartCrop lets content analysis pick the crop window, then scales the
// window to the target.
type SmartCrop struct{}

// Fit implements Cropper.
func (SmartCrop) Fit(img image.Image, w, h int) (image.Image, error) {
	if w <= 0 || h <= 0 {
		return nil, ErrInvalidTarget
	}
	analyzer := smartcrop.NewAnalyzer(nfntResizer{})
	crop, err := analyzer.FindBestCrop(img, w, h)
	if err != nil || crop.Empty() {
		logging.Debug("smart crop gave no window (%v), centring instead", err)
		return CenterCrop{}.Fit(img, w, h)
	}
	window := imaging.Crop(img, crop)
	return resize.Resize(uint(w), uint(h), window, filterFor(window.Bounds().Dx(), w)), nil
}

// nfntResizer adapts nfnt/resize to smartcrop's Resizer.
type nfntResizer struct{}

func (nfntResizer) Resize(img image.Image, width, height uint) image.Image {
	return resize.Resize(width, height, img, resize.Bilinear)
}

// Cover scales img preserving its aspect ratio so that it is at least w x h,
// with one side matching the target exactly.
func Cover(img image.Image, w, h int) image.Image {
	sw, sh := img.Bounds().Dx(), img.Bounds().Dy()
	if sw == 0 || sh == 0 {
		return img
	}

	var nw, nh int
	// Compare w/sw with h/sh without floating point.
	if w*sh >= h*sw {
		nw = w
		nh = max((sh*w+sw/2)/sw, h)
	} else {
		nh = h
		nw = max((sw*h+sh/2)/sh, w)
	}
	if nw == sw && nh == sh {
		return img
	}
	return resize.Resize(uint(nw), uint(nh), img, filterFor(sw, nw))
}

// filterFor picks Lanczos when shrinking and the cheaper bilinear filter when
// enlarging.
func filterFor(from, to int) resize.InterpolationFunction {
	if to < from {
		return resize.Lanczos3
	}
	return resize.Bilinear
}

// ScaleAndCrop writes a copy of src cropped to exactly w x h into dir and
// returns its path. A nil cropper means CenterCrop.
func ScaleAndCrop(src string, w, h int, dir string, cropper Cropper) (string, error) {
	if w <= 0 || h <= 0 {
		return "", opError("scale", src, ErrInvalidTarget)
	}
	if cropper == nil {
		cropper = CenterCrop{}
	}
	img, err := Open(src)
	if err != nil {
		return "", opError("scale", src, err)
	}

	out, err := cropper.Fit(img, w, h)
	if err != nil {
		return "", opError("scale", src, err)
	}
	if b := out.Bounds(); b.Dx() != w || b.Dy() != h {
		return "", opError("scale", src, fmt.Errorf("cropper produced %dx%d", b.Dx(), b.Dy()))
	}

	full := filepath.Join(dir, ScaledName(w, h, filepath.Base(src)))
	if err := save(out, full); err != nil {
		return "", opError("scale", src, err)
	}
	logging.Info("Scaled %s -> %s", src, full)
	return full, nil
}

// ScaleAndCropWithThumb is ScaleAndCrop followed by writing the thumbnail of
// the result next to it.
func ScaleAndCropWithThumb(src string, w, h int, dir string, cropper Cropper, thumbW, thumbH int) (string, string, error) {
	full, err := ScaleAndCrop(src, w, h, dir, cropper)
	if err != nil {
		return "", "", err
	}
	img, err := Open(full)
	if err != nil {
		return "", "", opError("scale", src, err)
	}
	thumb := filepath.Join(dir, ThumbName(full))
	if err := WriteThumbnail(img, thumb, thumbW, thumbH); err != nil {
		return "", "", opError("scale", src, err)
	}
	return full, thumb, nil
}
