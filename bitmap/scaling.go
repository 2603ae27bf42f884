package bitmap

import (
	"image"

	"github.com/disintegration/imaging"
)

// FitSize returns the largest size that fits in maxW×maxH box, preserving the
// aspect ratio of srcW×srcH.  Fractions are truncated, each side is at least
// one pixel.
func FitSize(srcW, srcH, maxW, maxH int) (w, h int) {
	if srcW <= 0 || srcH <= 0 {
		return max(maxW, 1), max(maxH, 1)
	}
	if rw := maxH * srcW / srcH; rw <= maxW {
		w, h = rw, maxH
	} else {
		w, h = maxW, maxW*srcH/srcW
	}
	return max(w, 1), max(h, 1)
}

// ScaleToFit resizes the image to fit into maxW×maxH box, maintaining aspect
// ratio.  Smaller images are enlarged.  Pixels are sampled with the nearest
// neighbour filter.
func ScaleToFit(img image.Image, maxW, maxH int) *Bitmap {
	b := img.Bounds()
	w, h := FitSize(b.Dx(), b.Dy(), maxW, maxH)
	return &Bitmap{img: imaging.Resize(img, w, h, imaging.NearestNeighbor)}
}

// Stretch resizes the image to exactly width×height, ignoring the aspect
// ratio.
func Stretch(img image.Image, width, height int) *Bitmap {
	return &Bitmap{img: imaging.Resize(img, max(width, 1), max(height, 1), imaging.NearestNeighbor)}
}
