// Package colpic implements the ColPic v3 encoder, the palette run-length
// image format of the Elegoo Neptune 3 and 4 series touch screen firmware.
//
// The encoded image is a 32 byte header, the RGB565 palette of up to 1024
// colours, sorted by frequency, and the run-length encoded palette indices.
// The binary data is then transformed into the printable text, six bits per
// character.
package colpic

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// MaxColors is the maximum number of palette entries.
	MaxColors = 1024
	// OutputFactor is the output buffer capacity in bytes per pixel.
	OutputFactor = 10

	headerSize = 32
	version    = 3
	magic      = 0x05DDC33C
	maxRun     = 255
	shortRun   = 6 // longest run that fits into a single byte
	pageSize   = 32
)

var (
	ErrBufferTooSmall = errors.New("output buffer too small")
	ErrInvalidSize    = errors.New("invalid image size")
)

// Encoder packs the RGB565 pixels into the ColPic text.
type Encoder struct {
	// Colors is the palette size limit.  Zero or values above MaxColors
	// mean MaxColors.
	Colors int
}

// Pack encodes width×height row-major pixels and returns the text payload.
// The returned payload does not contain zero bytes.
func (e Encoder) Pack(pixels []uint16, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 || len(pixels) < width*height {
		return nil, fmt.Errorf("%w: %dx%d with %d pixels", ErrInvalidSize, width, height, len(pixels))
	}
	out := make([]byte, width*height*OutputFactor)
	n, err := EncodeStr(pixels, width, height, out, e.Colors)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

// EncodeStr encodes the pixels into out as the text and returns the text
// length.  The text is followed by a zero byte.
func EncodeStr(pixels []uint16, width, height int, out []byte, colors int) (int, error) {
	n, err := Encode(pixels, width, height, out, colors)
	if err != nil {
		return 0, err
	}
	pad := 3 - n%3
	if n+pad > len(out) {
		return 0, ErrBufferTooSmall
	}
	clear(out[n : n+pad])
	n += pad
	size := n * 4 / 3
	if size >= len(out) {
		return 0, ErrBufferTooSmall
	}
	// expanding backwards, so that the source is not overwritten.
	for src, dst := n, size; src > 0; {
		src -= 3
		dst -= 4
		b0, b1, b2 := out[src], out[src+1], out[src+2]
		out[dst] = sixbit(b0 >> 2)
		out[dst+1] = sixbit((b0&0x03)<<4 | b1>>4)
		out[dst+2] = sixbit((b1&0x0f)<<2 | b2>>6)
		out[dst+3] = sixbit(b2 & 0x3f)
	}
	out[size] = 0
	return size, nil
}

// sixbit maps the six bit value to the printable character.  The backslash
// is replaced with the tilde.
func sixbit(v byte) byte {
	c := v + '0'
	if c == '\\' {
		return '~'
	}
	return c
}

// Encode encodes the pixels into out as binary ColPic data and returns the
// data length.
func Encode(pixels []uint16, width, height int, out []byte, colors int) (int, error) {
	if colors <= 0 || colors > MaxColors {
		colors = MaxColors
	}
	dots := width * height
	if width <= 0 || height <= 0 || len(pixels) < dots {
		return 0, fmt.Errorf("%w: %dx%d with %d pixels", ErrInvalidSize, width, height, len(pixels))
	}
	px := make([]uint16, dots)
	copy(px, pixels)

	pal := buildPalette(px)
	sortPalette(pal)
	pal = reducePalette(pal, px, colors)

	listSize := len(pal) * 2
	if headerSize+listSize > len(out) {
		return 0, ErrBufferTooSmall
	}
	clear(out)
	out[0] = version
	binary.LittleEndian.PutUint32(out[4:], uint32(width))
	binary.LittleEndian.PutUint32(out[8:], uint32(height))
	binary.LittleEndian.PutUint32(out[12:], magic)
	binary.LittleEndian.PutUint32(out[16:], uint32(listSize))
	for i, e := range pal {
		binary.LittleEndian.PutUint16(out[headerSize+2*i:], e.color)
	}
	n := encodeRuns(px, pal, out[headerSize+listSize:])
	binary.LittleEndian.PutUint32(out[20:], uint32(n))
	return headerSize + listSize + n, nil
}

type entry struct {
	color uint16
	count int
}

// distance is the sum of absolute channel differences.
func (e entry) distance(o entry) int {
	return absDiff(e.color>>11&0x1f, o.color>>11&0x1f) +
		absDiff(e.color>>5&0x3f, o.color>>5&0x3f) +
		absDiff(e.color&0x1f, o.color&0x1f)
}

func absDiff(a, b uint16) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// buildPalette collects up to MaxColors distinct colours in the order of
// appearance with their counts.  Colours beyond the limit are not counted.
func buildPalette(px []uint16) []entry {
	var (
		pal   []entry
		index = make(map[uint16]int, MaxColors)
	)
	for _, c := range px {
		if i, ok := index[c]; ok {
			pal[i].count++
			continue
		}
		if len(pal) >= MaxColors {
			continue
		}
		index[c] = len(pal)
		pal = append(pal, entry{color: c, count: 1})
	}
	return pal
}

// sortPalette sorts the palette by count, descending.  Entries with equal
// counts are placed in front of the earlier ones, which the firmware
// encoder does, so the order is reproduced exactly.
func sortPalette(pal []entry) {
	for idx := 1; idx < len(pal); idx++ {
		c := pal[idx]
		for i := 0; i < idx; i++ {
			if c.count >= pal[i].count {
				copy(pal[i+1:idx+1], pal[i:idx])
				pal[i] = c
				break
			}
		}
	}
}

// reducePalette merges the least frequent colours into the nearest of the
// first colors entries, remapping the pixels.
func reducePalette(pal []entry, px []uint16, colors int) []entry {
	for len(pal) > colors {
		last := pal[len(pal)-1]
		best, minDist := -1, 255
		for i := range colors {
			if d := pal[i].distance(last); d < minDist {
				best, minDist = i, d
			}
		}
		if best >= 0 {
			for i := range px {
				if px[i] == last.color {
					px[i] = pal[best].color
				}
			}
		}
		pal = pal[:len(pal)-1]
	}
	return pal
}

// encodeRuns writes the run-length encoded palette indices to dst.  Indices
// are split into pages of 32, a page switch is written as 0xE0|page.  Runs up
// to 6 pixels take one byte (run<<5 | index), longer runs take two (index,
// run).  Output is truncated if dst is too small.
func encodeRuns(px []uint16, pal []entry, dst []byte) int {
	index := make(map[uint16]int, len(pal))
	for i, e := range pal {
		if _, ok := index[e.color]; !ok {
			index[e.color] = i
		}
	}
	var n, lastPage int
	for src := 0; src < len(px); {
		run := 1
		for src+run < len(px) && px[src+run] == px[src] && run < maxRun {
			run++
		}
		idx := index[px[src]] // missing colours map to 0
		tid, page := idx%pageSize, idx/pageSize
		if page != lastPage {
			if n >= len(dst) {
				break
			}
			dst[n] = 7<<5 | byte(page)
			n++
			lastPage = page
		}
		if run <= shortRun {
			if n >= len(dst) {
				break
			}
			dst[n] = byte(run)<<5 | byte(tid)
			n++
		} else {
			if n+2 > len(dst) {
				break
			}
			dst[n] = byte(tid)
			dst[n+1] = byte(run)
			n += 2
		}
		src += run
	}
	return n
}
