package gcode

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/rusq/gcodethumb/bitmap"
)

// Thumbnail is the base64 encoded image, embedded by the slicer.
type Thumbnail struct {
	Width  int
	Height int
	Data   string // base64 encoded image
}

// ExtractThumbnail returns the first thumbnail block with both dimensions at
// least minSize.  The block begins with "; thumbnail begin W H LEN" (or
// "WxH"), each line of payload has a two character comment prefix.
func ExtractThumbnail(text string, minSize int) (*Thumbnail, error) {
	var (
		th *Thumbnail
		sb strings.Builder
	)
	for _, line := range splitLines(text) {
		if th == nil {
			if rest, ok := strings.CutPrefix(line, thumbnailBegin); ok {
				w, h, ok := parseDims(rest)
				if ok && w >= minSize && h >= minSize {
					th = &Thumbnail{Width: w, Height: h}
				}
			}
			continue
		}
		if line == thumbnailEnd {
			th.Data = sb.String()
			return th, nil
		}
		if len(line) > 2 {
			sb.WriteString(line[2:])
		}
	}
	return nil, fmt.Errorf("%w: no thumbnail block of at least %dx%d", ErrThumbnailNotFound, minSize, minSize)
}

// parseDims parses "300x300 1234" or "300 300 1234".
func parseDims(s string) (w, h int, ok bool) {
	f := strings.Fields(strings.ReplaceAll(s, "x", " "))
	if len(f) < 2 {
		return 0, 0, false
	}
	w, err := strconv.Atoi(f[0])
	if err != nil {
		return 0, 0, false
	}
	h, err = strconv.Atoi(f[1])
	if err != nil {
		return 0, 0, false
	}
	return w, h, true
}

// Decode decodes the thumbnail image.
func (t *Thumbnail) Decode() (image.Image, error) {
	data, err := base64.StdEncoding.DecodeString(t.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %w", ErrThumbnailNotFound, err)
	}
	img, err := bitmap.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid image: %w", ErrThumbnailNotFound, err)
	}
	return img, nil
}
