package thumb

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/rusq/gcodethumb/bitmap"
)

const (
	// DefaultJPEGQuality is the JPEG quality used when none is given.
	DefaultJPEGQuality = 75
	// klipperLineWidth is the number of base64 characters per Klipper
	// thumbnail line.
	klipperLineWidth = 78
)

// EncodeJPEG encodes the bitmap as the base64 JPEG stream, understood by the
// OrangeStorm Giga firmware.  If quality is zero or negative,
// DefaultJPEGQuality is used.
func EncodeJPEG(bmp *bitmap.Bitmap, marker string, quality int) (string, error) {
	return encodeJPEG(bmp, marker, quality, DefaultBlockSize)
}

// JPEGEncoder is the Encoder for the base64 JPEG stream.
type JPEGEncoder struct {
	Quality   int
	BlockSize int
}

func (e *JPEGEncoder) Encode(bmp *bitmap.Bitmap, marker string) (string, error) {
	return encodeJPEG(bmp, marker, e.Quality, e.BlockSize)
}

func encodeJPEG(bmp *bitmap.Bitmap, marker string, quality int, blockSize int) (string, error) {
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, bmp.Image(), &jpeg.Options{Quality: quality}); err != nil {
		return "", fmt.Errorf("%w: jpeg: %w", ErrEncoding, err)
	}
	payload := base64.StdEncoding.EncodeToString(buf.Bytes())

	var sb strings.Builder
	sb.Grow(len(payload) + 2*len(marker) + len(payload)/lineMax(blockSize)*(len(marker)+2) + 1)
	wrapChunks(&sb, payload, marker, lineMax(blockSize))
	sb.WriteByte('\r')
	return sb.String(), nil
}

// EncodeKlipper encodes the small and large images as the pair of base64 PNG
// thumbnails in the format that PrusaSlicer writes and Klipper firmware
// reads.
func EncodeKlipper(small, large image.Image) (string, error) {
	var sb strings.Builder
	sb.WriteByte('\r')
	for _, img := range []image.Image{small, large} {
		if err := writeKlipper(&sb, img); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func writeKlipper(sb *strings.Builder, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("%w: png: %w", ErrEncoding, err)
	}
	payload := base64.StdEncoding.EncodeToString(buf.Bytes())
	b := img.Bounds()
	fmt.Fprintf(sb, "; thumbnail begin %d %d %d\r", b.Dx(), b.Dy(), len(payload))
	for i := 0; i < len(payload); i += klipperLineWidth {
		sb.WriteString("; ")
		sb.WriteString(payload[i:min(i+klipperLineWidth, len(payload))])
		sb.WriteByte('\r')
	}
	sb.WriteString("; thumbnail end\r\r")
	return nil
}
