package thumb

import (
	"strings"

	"github.com/rusq/gcodethumb/bitmap"
)

const (
	legacyRowEnd = "\rM10086 ;"
	hexdigits    = "0123456789abcdef"
)

// EncodeLegacy encodes the bitmap as the hex row stream, understood by the
// Neptune 2 series firmware.  Each pixel is the RGB565 value written as four
// lowercase hex digits, low byte first.  Every row is terminated with
// "\rM10086 ;" and the whole block with "\r".
func EncodeLegacy(bmp *bitmap.Bitmap, marker string) (string, error) {
	w, h := bmp.Width(), bmp.Height()
	var sb strings.Builder
	sb.Grow(len(marker) + h*(w*4+len(legacyRowEnd)) + 1)
	sb.WriteString(marker)
	for y := range h {
		for x := range w {
			r, g, b, err := bmp.RGB(x, y)
			if err != nil {
				return "", err
			}
			v := Pack565(r, g, b)
			sb.WriteByte(hexdigits[v>>4&0xf])
			sb.WriteByte(hexdigits[v&0xf])
			sb.WriteByte(hexdigits[v>>12])
			sb.WriteByte(hexdigits[v>>8&0xf])
		}
		sb.WriteString(legacyRowEnd)
	}
	sb.WriteByte('\r')
	return sb.String(), nil
}
