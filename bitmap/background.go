package bitmap

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Backdrop is a procedural background: the base fill, the panel behind the
// thumbnail and the bands behind the text rows.  Nil colours are not drawn.
type Backdrop struct {
	Base  color.Color
	Panel color.Color
	Band  color.Color

	PanelRect image.Rectangle
	BandRects []image.Rectangle
}

// Render renders the backdrop on the width×height canvas.
func (b Backdrop) Render(width, height int) *image.NRGBA {
	base := b.Base
	if base == nil {
		base = color.Transparent
	}
	img := imaging.New(width, height, base)
	for _, r := range b.BandRects {
		fill(img, r, b.Band)
	}
	fill(img, b.PanelRect, b.Panel)
	return img
}

func fill(dst draw.Image, r image.Rectangle, c color.Color) {
	if c == nil || r.Empty() {
		return
	}
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}
