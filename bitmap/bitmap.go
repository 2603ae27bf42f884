package bitmap

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ErrOutOfBounds is returned when the pixel coordinates are outside of the
// bitmap.
var ErrOutOfBounds = errors.New("coordinates out of bounds")

// Bitmap is a read-only raster with the origin at (0, 0) and non-premultiplied
// colours.
type Bitmap struct {
	img *image.NRGBA
}

// New returns a Bitmap with the copy of the image pixels.
func New(img image.Image) *Bitmap {
	return &Bitmap{img: imaging.Clone(img)}
}

func (b *Bitmap) Width() int {
	return b.img.Rect.Dx()
}

func (b *Bitmap) Height() int {
	return b.img.Rect.Dy()
}

// RGB returns the colour channels of the pixel at x, y.  Alpha is ignored.
func (b *Bitmap) RGB(x, y int) (r, g, bl uint8, err error) {
	if x < 0 || y < 0 || x >= b.Width() || y >= b.Height() {
		return 0, 0, 0, fmt.Errorf("%w: (%d,%d) not in %dx%d", ErrOutOfBounds, x, y, b.Width(), b.Height())
	}
	off := b.img.PixOffset(b.img.Rect.Min.X+x, b.img.Rect.Min.Y+y)
	return b.img.Pix[off], b.img.Pix[off+1], b.img.Pix[off+2], nil
}

// Image returns the underlying image.  It must not be modified.
func (b *Bitmap) Image() *image.NRGBA {
	return b.img
}
