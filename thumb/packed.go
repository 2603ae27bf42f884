package thumb

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rusq/gcodethumb/bitmap"
)

// Packer compresses the row-major RGB565 pixels into the textual payload.
// The colpic package provides the implementation used by the firmware.
type Packer interface {
	Pack(pixels []uint16, width, height int) ([]byte, error)
}

// PackerFunc is the function adapter for Packer.
type PackerFunc func(pixels []uint16, width, height int) ([]byte, error)

func (f PackerFunc) Pack(pixels []uint16, width, height int) ([]byte, error) {
	return f(pixels, width, height)
}

// PackedEncoder encodes the bitmap as the packed colour stream, understood by
// the Neptune 3 Pro/Plus/Max and Neptune 4 series firmware.
type PackedEncoder struct {
	Packer Packer
	// BlockSize is the firmware read buffer size, if zero,
	// DefaultBlockSize is used.
	BlockSize int
}

func (e *PackedEncoder) Encode(bmp *bitmap.Bitmap, marker string) (string, error) {
	if e.Packer == nil {
		return "", fmt.Errorf("%w: packer is not set", ErrEncoding)
	}
	px, err := pixels565(bmp)
	if err != nil {
		return "", err
	}
	data, err := e.Packer.Pack(px, bmp.Width(), bmp.Height())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	// zero bytes are buffer padding and terminators.
	payload := string(bytes.ReplaceAll(data, []byte{0}, nil))

	eachMax := lineMax(e.BlockSize)
	appendLen := eachMax - 3 - (len(payload) % eachMax) + 10

	var sb strings.Builder
	sb.Grow(len(payload) + (len(payload)/eachMax+1)*(len(marker)+2) + appendLen + 3)
	wrapChunks(&sb, payload, marker, eachMax)
	sb.WriteString("\r;")
	sb.WriteString(strings.Repeat("0", appendLen))
	sb.WriteByte('\r')
	return sb.String(), nil
}
