// Package bitmap provides image decoding, scaling and compositing functions
// for thumbnails.
package bitmap

import (
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"
)

// lightThreshold is the mean luminance above which the image is considered
// light.
const lightThreshold = 128

// Decode decodes PNG or JPEG image.
func Decode(r io.Reader) (image.Image, error) {
	return imaging.Decode(r)
}

// Open loads the image from file.
func Open(filename string) (image.Image, error) {
	return imaging.Open(filename)
}

func ColorToGray(c color.Color) uint8 {
	if gray, ok := c.(color.Gray); ok {
		return gray.Y
	}
	r, g, b, _ := c.RGBA()
	gray := (299*r + 587*g + 114*b) / 1000
	return uint8(gray >> 8)
}

// IsLight reports whether the mean luminance of the image is light.  Large
// images are sampled on a grid.
func IsLight(img image.Image) bool {
	if img == nil {
		return false
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return false
	}
	step := max(1, max(bounds.Dx(), bounds.Dy())/64)
	var sum, n uint64
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			sum += uint64(ColorToGray(img.At(x, y)))
			n++
		}
	}
	return sum/n >= lightThreshold
}
