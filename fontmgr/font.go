// Package fontmgr loads the font faces for the thumbnail annotations.
package fontmgr

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rusq/fontpic"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

const (
	// DefaultFont is the name of the default font.
	DefaultFont = "goregular"
	// DefaultSize is the default font size in points.
	DefaultSize = 60.0
	// DefaultDPI is the resolution of the canvas.
	DefaultDPI = 96.0
)

type Font struct {
	Name string
	// Width and Height are the cell dimensions for bitmap fonts, and the
	// "W" advance and line height at the default size for the outline fonts.
	Width   uint8
	Height  uint8
	Outline bool // true if the font is scalable
}

var embeddedFonts = map[string]font.Face{
	"keyrus16":  fontpic.Face8x16,
	"keyrus14":  fontpic.Face8x14,
	"keyrus8":   fontpic.Face8x8,
	"4x4":       fontpic.Face4x4,
	"4x4bold":   fontpic.Face4x4Bold,
	"4x4italic": fontpic.Face4x4Italic,
	"4x5":       fontpic.Face4x5,
	"6x5":       fontpic.Face6x5,
	"6x5bold":   fontpic.Face6x5Bold,
	"6x5italic": fontpic.Face6x5Italic,
	"robotron":  fontpic.FaceRobotron,
}

var outlineFonts = map[string][]byte{
	"goregular": goregular.TTF,
	"gobold":    gobold.TTF,
	"gomedium":  gomedium.TTF,
	"gomono":    gomono.TTF,
}

var (
	// ErrStop stops ListEmbedded without an error.
	ErrStop     = errors.New("stop")
	ErrNotFound = errors.New("not found")
)

// ListEmbedded calls cb for each built-in font, sorted by name.  If cb
// returns ErrStop, listing stops without an error.
func ListEmbedded(cb func(Font, error) error) error {
	var sorted []Font
	for name, face := range embeddedFonts {
		if face == nil {
			continue
		}
		sorted = append(sorted, describe(name, face, false))
	}
	for name := range outlineFonts {
		face, err := LoadByName(name, DefaultSize, DefaultDPI)
		if err != nil {
			if err := cb(Font{Name: name, Outline: true}, err); err != nil {
				return stopped(err)
			}
			continue
		}
		sorted = append(sorted, describe(name, face, true))
	}
	slices.SortFunc(sorted, func(a, b Font) int {
		return strings.Compare(a.Name, b.Name)
	})
	for _, fnt := range sorted {
		if err := cb(fnt, nil); err != nil {
			return stopped(err)
		}
	}
	return nil
}

func stopped(err error) error {
	if errors.Is(err, ErrStop) {
		return nil
	}
	return err
}

func describe(name string, face font.Face, outline bool) Font {
	adv := font.MeasureString(face, "W")
	return Font{
		Name:    name,
		Height:  uint8(min(face.Metrics().Height.Ceil(), 255)),
		Width:   uint8(min(adv.Ceil(), 255)),
		Outline: outline,
	}
}

// Default returns the default font face of the given size.
func Default(size float64, dpi float64) (font.Face, error) {
	return LoadByName(DefaultFont, size, dpi)
}

// Load loads the font by name, or, if the name has a font file extension,
// from the file.
func Load(name string, size float64, dpi float64) (font.Face, error) {
	if name == "" {
		return Default(size, dpi)
	}
	if _, ok := loadFuncs[strings.ToLower(filepath.Ext(name))]; ok {
		return LoadFromFile(name, size, dpi)
	}
	return LoadByName(name, size, dpi)
}

func LoadFromFile(filename string, size float64, dpi float64) (font.Face, error) {
	ext := filepath.Ext(strings.ToLower(filename))
	loader, ok := loadFuncs[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported font type: %s", ext)
	}
	slog.Debug("loading font", "filename", filename, "size", size, "dpi", dpi)
	return loader(filename, size, dpi)
}

type fontLoadFunc func(filename string, size float64, dpi float64) (font.Face, error)

// loadFuncs maps file extension to appropriate font loader
var loadFuncs = map[string]fontLoadFunc{
	".bin": loadFnt,
	".fnt": loadFnt,
	".ttf": loadTTF,
	".otf": loadTTF,
}

// loadFnt loads the fnt file from disk. The height parameter is truncated to
// integer value, and the width is assumed to be 8 bits.  Font is assumed to
// contain the whole ASCII table of 256 characters.
func loadFnt(filename string, _ float64, _ float64) (font.Face, error) {
	const (
		width                = 8
		minHeight, maxHeight = 2, 32 // [minHeight, maxHeight)
	)

	fi, err := os.Stat(filename)
	if err != nil {
		return nil, err
	}
	if maxHeight*256 < fi.Size() { // 32 bytes per each char
		return nil, fmt.Errorf("unsupported file format: %s", filename)
	}
	height := fi.Size() / 256

	if height <= minHeight || maxHeight < height {
		return nil, fmt.Errorf("unsupported or incorrect dimensions: %s", filename)
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	return fontpic.FntToFace(data, width, int(height)), nil
}

const maxTTFsize = 10 * 1048576 // 10 MB

// loadTTF loads a true type font and returns a face with size points.
func loadTTF(filename string, size float64, dpi float64) (font.Face, error) {
	fi, err := os.Stat(filename)
	if err != nil {
		return nil, err
	}
	if maxTTFsize < fi.Size() {
		return nil, errors.New("font file is too large")
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return parseTTF(data, size, dpi)
}

func parseTTF(data []byte, size float64, dpi float64) (font.Face, error) {
	fnt, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	return &outlineFace{Face: face, fnt: fnt}, nil
}

// outlineFace reports the runes, mapped to the ".notdef" glyph, as missing.
type outlineFace struct {
	font.Face
	fnt *sfnt.Font
	buf sfnt.Buffer
}

func (f *outlineFace) HasGlyph(r rune) bool {
	idx, err := f.fnt.GlyphIndex(&f.buf, r)
	return err == nil && idx != 0
}

func LoadEmbedded(name string) (font.Face, error) {
	face, ok := embeddedFonts[name]
	if !ok {
		return nil, ErrNotFound
	}
	return face, nil
}

// LoadByName loads a built-in font by it's name.  Size and dpi are ignored
// for the bitmap fonts.
func LoadByName(name string, size float64, dpi float64) (font.Face, error) {
	if data, ok := outlineFonts[name]; ok {
		return parseTTF(data, size, dpi)
	}
	face, err := LoadEmbedded(name)
	if err != nil {
		return nil, fmt.Errorf("font %q: %w", name, err)
	}
	return face, nil
}
