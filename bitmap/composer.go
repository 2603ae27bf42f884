package bitmap

import (
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Align is the horizontal text alignment within the box.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Composer draws images and text on the canvas.
type Composer struct {
	dst *image.NRGBA // destination image (canvas)

	background image.Image
	face       font.Face
	fg         color.Color
}

type ComposerOption func(*Composer)

// WithBackground sets the background image, drawn at the canvas origin.
func WithBackground(img image.Image) ComposerOption {
	return func(c *Composer) {
		c.background = img
	}
}

// WithFace sets the font face for the text.
func WithFace(face font.Face) ComposerOption {
	return func(c *Composer) {
		c.face = face
	}
}

// WithTextColor sets the text colour.
func WithTextColor(col color.Color) ComposerOption {
	return func(c *Composer) {
		if col != nil {
			c.fg = col
		}
	}
}

// NewComposer creates a new composer with the transparent canvas of the given
// size.
func NewComposer(width, height int, opt ...ComposerOption) *Composer {
	c := &Composer{
		dst: imaging.New(width, height, color.Transparent),
		fg:  color.White,
	}
	for _, o := range opt {
		o(c)
	}
	if c.background != nil {
		c.DrawImage(c.background, image.Point{})
	}
	return c
}

// DrawImage draws the image with its top left corner at pt.
func (c *Composer) DrawImage(img image.Image, pt image.Point) {
	if img == nil {
		return
	}
	c.dst = imaging.Overlay(c.dst, img, pt, 1.0)
}

// DrawText draws a single line of text in the box, vertically centred.  Runes
// missing in the font face are skipped.  Without a face it is a no-op.
func (c *Composer) DrawText(text string, box image.Rectangle, align Align) {
	if c.face == nil {
		return
	}
	text = visible(c.face, text)
	if text == "" {
		return
	}
	m := c.face.Metrics()
	w := font.MeasureString(c.face, text)
	var x fixed.Int26_6
	switch align {
	case AlignRight:
		x = fixed.I(box.Max.X) - w
	case AlignCenter:
		x = fixed.I(box.Min.X) + (fixed.I(box.Dx())-w)/2
	default:
		x = fixed.I(box.Min.X)
	}
	y := fixed.I(box.Min.Y) + (fixed.I(box.Dy())+m.Ascent-m.Descent)/2

	d := font.Drawer{
		Dst:  c.dst,
		Src:  image.NewUniform(c.fg),
		Face: c.face,
		Dot:  fixed.Point26_6{X: x, Y: y},
	}
	d.DrawString(text)
}

// Image returns the composed image.
func (c *Composer) Image() *image.NRGBA {
	return c.dst
}

// Bounds returns the canvas rectangle.
func (c *Composer) Bounds() image.Rectangle {
	return c.dst.Bounds()
}

// GlyphChecker is implemented by faces that can tell if the glyph is present
// in the font.  Outline faces map missing runes to the ".notdef" glyph and
// report them as present otherwise.
type GlyphChecker interface {
	HasGlyph(r rune) bool
}

// visible returns the text without runes that the face can't render.
func visible(face font.Face, text string) string {
	has := func(r rune) bool {
		_, ok := face.GlyphAdvance(r)
		return ok
	}
	if gc, ok := face.(GlyphChecker); ok {
		has = gc.HasGlyph
	}
	var sb strings.Builder
	for _, r := range text {
		if has(r) {
			sb.WriteRune(r)
		}
	}
	return strings.TrimSpace(sb.String())
}
