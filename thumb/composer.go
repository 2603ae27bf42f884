package thumb

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/rusq/gcodethumb/bitmap"
)

const (
	DefaultName = "gcodethumb"
	DefaultURL  = "https://github.com/rusq/gcodethumb"

	// DefaultKlipperSmall and DefaultKlipperLarge are the sizes of the
	// Klipper thumbnails.
	DefaultKlipperSmall = 32
	DefaultKlipperLarge = 300
)

// DefaultLayout is the layout that the printer firmware expects.  The legacy
// firmware reads the large image behind the doubled semicolon.
var DefaultLayout = Layout{
	FamilyLegacy: {
		{Width: 100, Height: 100, Marker: ";simage:"},
		{Width: 200, Height: 200, Marker: ";;gimage:"},
	},
	FamilyPacked: {
		{Width: 200, Height: 200, Marker: ";gimage:"},
		{Width: 160, Height: 160, Marker: ";simage:"},
	},
	FamilyJPEG: {
		{Width: 400, Height: 400, Marker: ";gimage:"},
		{Width: 114, Height: 114, Marker: ";simage:"},
	},
}

// Encoder encodes the bitmap into a block, starting with the marker.
type Encoder interface {
	Encode(bmp *bitmap.Bitmap, marker string) (string, error)
}

// EncoderFunc is the function adapter for Encoder.
type EncoderFunc func(bmp *bitmap.Bitmap, marker string) (string, error)

func (f EncoderFunc) Encode(bmp *bitmap.Bitmap, marker string) (string, error) {
	return f(bmp, marker)
}

// Artwork is the set of images that the composer encodes.
type Artwork struct {
	// Thumbnail is the source thumbnail without annotations.
	Thumbnail image.Image
	// Overlay is the annotated thumbnail on the transparent canvas.
	Overlay image.Image
	// Framed is the annotated thumbnail on the family background.
	Framed image.Image
}

func (a Artwork) validate() error {
	if a.Thumbnail == nil || a.Overlay == nil || a.Framed == nil {
		return fmt.Errorf("%w: incomplete artwork", ErrEncoding)
	}
	return nil
}

// Composer composes the thumbnail set for the printer family.
type Composer struct {
	layout       Layout
	encoders     map[Family]Encoder
	footer       string
	klipperSmall int
	klipperLarge int
}

type ComposerOption func(*Composer)

// WithFooter sets the footer that follows the blocks.
func WithFooter(footer string) ComposerOption {
	return func(c *Composer) {
		c.footer = footer
	}
}

// WithKlipperSizes sets the sizes of the Klipper thumbnails.
func WithKlipperSizes(small, large int) ComposerOption {
	return func(c *Composer) {
		if small > 0 {
			c.klipperSmall = small
		}
		if large > 0 {
			c.klipperLarge = large
		}
	}
}

// WithEncoder replaces the encoder for the family.
func WithEncoder(f Family, enc Encoder) ComposerOption {
	return func(c *Composer) {
		if f == FamilyUnknown || enc == nil {
			return
		}
		c.encoders[f] = enc
	}
}

// WithBlockSize sets the firmware read buffer size for the chunked encoders.
func WithBlockSize(n int) ComposerOption {
	return func(c *Composer) {
		if pe, ok := c.encoders[FamilyPacked].(*PackedEncoder); ok {
			pe.BlockSize = n
		}
		if je, ok := c.encoders[FamilyJPEG].(*JPEGEncoder); ok {
			je.BlockSize = n
		}
	}
}

// WithJPEGQuality sets the quality of the JPEG stream.
func WithJPEGQuality(q int) ComposerOption {
	return func(c *Composer) {
		if je, ok := c.encoders[FamilyJPEG].(*JPEGEncoder); ok {
			je.Quality = q
		}
	}
}

// NewComposer creates a new Composer.  If layout is nil, DefaultLayout is
// used.  The packer is used by the packed family encoder.
func NewComposer(layout Layout, packer Packer, opts ...ComposerOption) *Composer {
	if layout == nil {
		layout = DefaultLayout
	}
	c := &Composer{
		layout: layout,
		encoders: map[Family]Encoder{
			FamilyLegacy: EncoderFunc(EncodeLegacy),
			FamilyPacked: &PackedEncoder{Packer: packer, BlockSize: DefaultBlockSize},
			FamilyJPEG:   &JPEGEncoder{Quality: DefaultJPEGQuality, BlockSize: DefaultBlockSize},
		},
		footer:       Footer(DefaultName, DefaultURL),
		klipperSmall: DefaultKlipperSmall,
		klipperLarge: DefaultKlipperLarge,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Targets returns the targets of the family.
func (c *Composer) Targets(f Family) []Target {
	return c.layout[f]
}

// Compose encodes the artwork for the family.  It returns the empty Set and
// ErrUnsupportedPrinter if the family is unknown.
func (c *Composer) Compose(f Family, art Artwork) (Set, error) {
	enc, ok := c.encoders[f]
	if !ok {
		return Set{}, fmt.Errorf("%w: family %s", ErrUnsupportedPrinter, f)
	}
	if err := art.validate(); err != nil {
		return Set{}, err
	}
	targets := c.layout[f]
	set := Set{
		Blocks: make([]string, 0, len(targets)+1),
		Footer: c.footer,
	}
	for _, t := range targets {
		bmp := bitmap.ScaleToFit(art.Framed, t.Width, t.Height)
		blk, err := enc.Encode(bmp, t.Marker)
		if err != nil {
			return Set{}, fmt.Errorf("%s %dx%d: %w", f, t.Width, t.Height, err)
		}
		slog.Debug("encoded block", "family", f, "marker", t.Marker, "width", bmp.Width(), "height", bmp.Height(), "length", len(blk))
		set.Blocks = append(set.Blocks, blk)
	}
	klipper, err := EncodeKlipper(
		bitmap.Stretch(art.Thumbnail, c.klipperSmall, c.klipperSmall).Image(),
		bitmap.Stretch(art.Overlay, c.klipperLarge, c.klipperLarge).Image(),
	)
	if err != nil {
		return Set{}, fmt.Errorf("klipper: %w", err)
	}
	set.Blocks = append(set.Blocks, klipper)
	return set, nil
}
